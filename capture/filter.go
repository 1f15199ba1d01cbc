package capture

import (
	"bytes"
	"fmt"

	"github.com/ipastusi/macsql/mac"
)

// Filter drops sightings of excluded addresses.
type Filter struct {
	excludedMACs map[mac.Addr]struct{}
}

func NewFilter(excludedMACs map[mac.Addr]struct{}) Filter {
	return Filter{excludedMACs: excludedMACs}
}

func (f Filter) IsExcluded(addr mac.Addr) bool {
	_, ok := f.excludedMACs[addr]
	return ok
}

// ReadMACs parses an exclude file: one address per line in any notation
// mac.Parse accepts. Blank lines and lines starting with # are skipped.
func ReadMACs(data []byte) (map[mac.Addr]struct{}, error) {
	macs := map[mac.Addr]struct{}{}

	lineNo := 0
	for line := range bytes.Lines(data) {
		lineNo++
		trimmedLine := bytes.TrimSpace(line)
		if len(trimmedLine) == 0 || trimmedLine[0] == '#' {
			continue
		}
		addr, err := mac.Parse(string(trimmedLine))
		if err != nil {
			return nil, fmt.Errorf("line %d: invalid MAC address %q: %w", lineNo, trimmedLine, err)
		}
		macs[addr] = struct{}{}
	}

	return macs, nil
}
