package oui

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/ipastusi/macsql/mac"
)

// Record is one registry entry. Short is the abbreviated manufacturer name,
// Long and Comment may be empty.
type Record struct {
	Prefix  Prefix
	Short   string
	Long    string
	Comment string
}

// ParseDataset reads a Wireshark manuf file:
//
//	# comment line
//	3C:A6:F6	Apple	Apple, Inc.
//	08:00:87	XyplexTe	Xyplex	# terminal servers
//	8C:1C:DA:80:00:00/28	Atol	Atol Llc
//
// Fields are tab separated. Records are returned in file order, duplicates
// included.
func ParseDataset(r io.Reader) ([]Record, error) {
	var records []Record
	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || line[0] == '#' {
			continue
		}
		record, err := parseRecord(line)
		if err != nil {
			return nil, &DatasetError{Line: lineNo, Text: line, Err: err}
		}
		records = append(records, record)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read dataset: %w", err)
	}
	return records, nil
}

func parseRecord(line string) (Record, error) {
	var fields []string
	var comment string
	for field := range strings.SplitSeq(line, "\t") {
		field = strings.TrimSpace(field)
		if field == "" {
			continue
		}
		if field[0] == '#' {
			comment = strings.TrimSpace(strings.TrimLeft(field, "#"))
			break
		}
		fields = append(fields, field)
	}
	if len(fields) < 2 || len(fields) > 3 {
		return Record{}, fmt.Errorf("%w: expected 2 or 3, got %d", ErrFieldCount, len(fields))
	}

	prefix, err := parsePrefix(fields[0])
	if err != nil {
		return Record{}, err
	}
	record := Record{Prefix: prefix, Short: fields[1], Comment: comment}
	if len(fields) == 3 {
		record.Long = fields[2]
	}
	return record, nil
}

// parsePrefix accepts AA:BB:CC, AA-BB-CC and full addresses with an optional
// /bits suffix between 24 and 48. Short forms are zero extended. Bits below
// the prefix length are kept as written; Build drops such records.
func parsePrefix(s string) (Prefix, error) {
	text, bitsText, hasBits := strings.Cut(s, "/")
	bits := 24
	if hasBits {
		var err error
		if bits, err = strconv.Atoi(bitsText); err != nil {
			return Prefix{}, fmt.Errorf("%w: %q", ErrPrefixLength, bitsText)
		}
	}
	if bits < minPrefixBits || bits > maxPrefixBits {
		return Prefix{}, fmt.Errorf("%w: /%d", ErrPrefixLength, bits)
	}

	if len(text) == 8 {
		sep := text[2:3]
		text += sep + "00" + sep + "00" + sep + "00"
	}
	addr, err := mac.Parse(text)
	if err != nil {
		return Prefix{}, fmt.Errorf("%w: %q", ErrPrefix, s)
	}
	return Prefix{Addr: addr, Bits: uint8(bits)}, nil
}
