package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/goccy/go-yaml"
	"github.com/rivo/tview"

	"github.com/ipastusi/macsql/cache"
	"github.com/ipastusi/macsql/capture"
	"github.com/ipastusi/macsql/cli"
	"github.com/ipastusi/macsql/config"
	"github.com/ipastusi/macsql/mac"
	"github.com/ipastusi/macsql/oui"
	"github.com/ipastusi/macsql/report"
)

func main() {
	flags := cli.GetFlags()
	var cfgData []byte
	var err error
	if flags.ConfigFileName != nil && *flags.ConfigFileName != "" {
		cfgData, err = os.ReadFile(*flags.ConfigFileName)
		exitOnError(err)
	}

	cfg, err := config.GetConfig(cfgData, flags.Overrides())
	if *flags.RenderConfig {
		renderedConfig, errMarshal := yaml.Marshal(cfg)
		fmt.Printf("%v", string(renderedConfig))
		var errs []error
		if err != nil {
			errs = append(errs, err)
		}
		if errMarshal != nil {
			errs = append(errs, errMarshal)
		}
		exitOnErrors(errs)
		os.Exit(0)
	}
	exitOnError(err)

	logFile, err := os.OpenFile(*cfg.LogFileName, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	exitOnError(err)
	defer closeFile(logFile)
	slog.SetDefault(slog.New(slog.NewJSONHandler(logFile, nil)))

	reg, err := loadRegistry(cfg.DatasetFile)
	exitOnError(err)
	resolver, err := reg.Resolver(*cfg.Resolver)
	exitOnError(err)
	style, err := mac.ParseStyle(*cfg.Style)
	exitOnError(err)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	l := lookuper{resolver: resolver, style: style}
	w := report.NewWriter(os.Stdout, *cfg.Json)
	switch {
	case cfg.CaptureConfig.File != nil:
		var summary report.Summary
		summary, err = processCapture(ctx, *cfg.CaptureConfig, l)
		if err == nil && *cfg.CaptureConfig.Ui {
			err = showSummary(tview.NewApplication(), summary, *cfg.CaptureConfig.File)
		} else if err == nil {
			err = w.WriteSummary(summary)
		}
	case len(flags.Args) > 0:
		err = processArgs(flags.Args, l, w)
	default:
		err = processLines(ctx, os.Stdin, l, w)
	}
	exitOnError(err)
}

func exitOnError(err error) {
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func exitOnErrors(errs []error) {
	if len(errs) != 0 {
		fmt.Println(errs)
		os.Exit(1)
	}
}

func closeFile(file *os.File) {
	if err := file.Close(); err != nil {
		fmt.Println(err)
	}
}

// loadRegistry reads the dataset file if one is configured and falls back to
// the embedded dataset otherwise.
func loadRegistry(datasetFile *string) (*oui.Registry, error) {
	if datasetFile == nil {
		return oui.Default()
	}
	file, err := os.Open(*datasetFile)
	if err != nil {
		return nil, err
	}
	defer closeFile(file)

	reg, err := oui.Load(file, oui.WithLogger(slog.Default()))
	if err != nil {
		return nil, fmt.Errorf("load dataset %v: %w", *datasetFile, err)
	}
	slog.Info("dataset loaded", "file", *datasetFile, "records", reg.Len(), "duplicates", reg.Duplicates(), "skipped", reg.Skipped())
	return reg, nil
}

type lookuper struct {
	resolver oui.Resolver
	style    mac.Style
}

func (l lookuper) lookup(input string) report.Lookup {
	addr, err := mac.Parse(input)
	if err != nil {
		slog.Debug("invalid address", "input", input, "error", err)
		return report.Lookup{Input: input}
	}

	result := report.Lookup{
		Input:     input,
		Valid:     true,
		Formatted: addr.Format(l.style),
		Prefix:    oui.Extract(addr).String(),
	}
	if rec, ok := l.resolver.Resolve(addr); ok {
		result.Vendor = rec.Short
		result.VendorLong = rec.Long
		result.Comment = rec.Comment
	}
	return result
}

func (l lookuper) vendor(addr mac.Addr) string {
	rec, _ := l.resolver.Resolve(addr)
	return rec.Short
}

func processArgs(args []string, l lookuper, w *report.Writer) error {
	for _, arg := range args {
		if err := w.WriteLookup(l.lookup(arg)); err != nil {
			return err
		}
	}
	return nil
}

// processLines looks up every non-empty line of r until EOF or ctx is done.
func processLines(ctx context.Context, r io.Reader, l lookuper, w *report.Writer) error {
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return err
		}
		line := scanner.Text()
		if line == "" {
			continue
		}
		if err := w.WriteLookup(l.lookup(line)); err != nil {
			return err
		}
	}
	return scanner.Err()
}

// processCapture tallies the capture file into the persisted summary, if
// any, and returns the updated summary.
func processCapture(ctx context.Context, cfg config.CaptureConfig, l lookuper) (report.Summary, error) {
	var excludedMACs map[mac.Addr]struct{}
	if cfg.ExcludeConfig != nil && cfg.ExcludeConfig.MacFile != nil {
		data, err := os.ReadFile(*cfg.ExcludeConfig.MacFile)
		if err != nil {
			return report.Summary{}, err
		}
		excludedMACs, err = capture.ReadMACs(data)
		if err != nil {
			return report.Summary{}, fmt.Errorf("exclude file %v: %w", *cfg.ExcludeConfig.MacFile, err)
		}
	}

	sightingCache := cache.NewSightingCache()
	if cfg.SummaryFile != nil {
		var err error
		sightingCache, err = readSummary(*cfg.SummaryFile)
		if err != nil {
			return report.Summary{}, err
		}
	}

	file, err := os.Open(*cfg.File)
	if err != nil {
		return report.Summary{}, err
	}
	defer closeFile(file)

	packets, err := capture.Read(ctx, file, capture.NewFilter(excludedMACs), func(s capture.Sighting) {
		if details := sightingCache.Update(s); details.Count == 1 {
			slog.Info("new address", "mac", s.Addr.String(), "source", s.Source.String(), "vendor", l.vendor(s.Addr), "ts", s.Ts)
		}
	})
	switch {
	case errors.Is(err, context.Canceled):
		// keep what was read so far
		slog.Warn("capture interrupted", "file", *cfg.File, "packets", packets)
	case err != nil:
		return report.Summary{}, fmt.Errorf("capture %v: %w", *cfg.File, err)
	}
	slog.Info("capture processed", "file", *cfg.File, "packets", packets, "addresses", len(sightingCache.Items))

	summary := sightingCache.ToSummary(l.vendor)
	if cfg.SummaryFile != nil {
		summaryBytes, err := summary.ToJson()
		if err != nil {
			return report.Summary{}, err
		}
		if err = os.WriteFile(*cfg.SummaryFile, summaryBytes, 0644); err != nil {
			return report.Summary{}, err
		}
	}
	return summary, nil
}

// readSummary loads the summary of an earlier run. A missing file starts an
// empty tally.
func readSummary(summaryFile string) (cache.SightingCache, error) {
	summaryBytes, err := os.ReadFile(summaryFile)
	if errors.Is(err, os.ErrNotExist) {
		return cache.NewSightingCache(), nil
	} else if err != nil {
		return cache.SightingCache{}, err
	}

	if errs := report.ValidateSummary(summaryBytes); len(errs) != 0 {
		return cache.SightingCache{}, fmt.Errorf("summary file %v: %w", summaryFile, errors.Join(errs...))
	}
	summary, err := report.FromJson(summaryBytes)
	if err != nil {
		return cache.SightingCache{}, err
	}
	return cache.FromSummary(summary)
}
