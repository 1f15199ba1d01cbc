package oui

//go:generate go run ../cmd/update_manuf -o manuf.txt

import (
	_ "embed"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"slices"
	"strings"
	"sync"
)

//go:embed manuf.txt
var manufRaw string

// Registry is an immutable, loaded copy of the IEEE assignment dataset.
// Both resolvers share its record arena.
type Registry struct {
	records    []Record
	duplicates int
	skipped    int
	generic    *Generic
	native     *Native
}

type Option func(*options)

type options struct {
	logger *slog.Logger
}

// WithLogger sets the logger duplicate prefixes are reported to.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// Build indexes records. When a prefix appears more than once the first
// record wins and the rest are dropped with a warning. Records whose address
// has bits set below the prefix length can never match and are dropped too.
func Build(records []Record, opts ...Option) (*Registry, error) {
	o := options{logger: slog.Default()}
	for _, opt := range opts {
		opt(&o)
	}

	reg := &Registry{records: make([]Record, 0, len(records))}
	seen := make(map[Prefix]int, len(records))
	for _, r := range records {
		if !r.Prefix.Canonical() {
			reg.skipped++
			o.logger.Warn("registry prefix has bits set below its length",
				slog.String("prefix", r.Prefix.String()),
				slog.String("vendor", r.Short))
			continue
		}
		if i, ok := seen[r.Prefix]; ok {
			reg.duplicates++
			o.logger.Warn("duplicate registry prefix",
				slog.String("prefix", r.Prefix.String()),
				slog.String("vendor", r.Short),
				slog.String("kept", reg.records[i].Short))
			continue
		}
		seen[r.Prefix] = len(reg.records)
		reg.records = append(reg.records, r)
	}

	reg.generic = newGeneric(reg.records)
	native, err := newNative(reg.records)
	if err != nil {
		return nil, err
	}
	reg.native = native
	return reg, nil
}

// Load parses a manuf dataset from r and builds a Registry from it.
func Load(r io.Reader, opts ...Option) (*Registry, error) {
	records, err := ParseDataset(r)
	if err != nil {
		return nil, err
	}
	return Build(records, opts...)
}

// Open loads the named manuf file from fsys.
func Open(fsys fs.FS, name string, opts ...Option) (*Registry, error) {
	f, err := fsys.Open(name)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	reg, err := Load(f, opts...)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", name, err)
	}
	return reg, nil
}

var (
	defaultOnce     sync.Once
	defaultRegistry *Registry
	defaultErr      error
)

// Default returns the registry built from the embedded dataset. It is loaded
// on first use and shared afterwards.
func Default() (*Registry, error) {
	defaultOnce.Do(func() {
		defaultRegistry, defaultErr = Load(strings.NewReader(manufRaw))
	})
	return defaultRegistry, defaultErr
}

func (r *Registry) Generic() *Generic {
	return r.generic
}

func (r *Registry) Native() *Native {
	return r.native
}

// Resolver returns the resolver registered under name: "native" or "generic".
func (r *Registry) Resolver(name string) (Resolver, error) {
	switch name {
	case "native", "":
		return r.native, nil
	case "generic":
		return r.generic, nil
	default:
		return nil, fmt.Errorf("unknown resolver %q", name)
	}
}

// Records returns a copy of the deduplicated records in dataset order.
func (r *Registry) Records() []Record {
	return slices.Clone(r.records)
}

func (r *Registry) Len() int {
	return len(r.records)
}

// Duplicates returns the number of duplicate records dropped while building.
func (r *Registry) Duplicates() int {
	return r.duplicates
}

// Skipped returns the number of non-canonical records dropped while building.
func (r *Registry) Skipped() int {
	return r.skipped
}
