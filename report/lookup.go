package report

import (
	"encoding/json"
	"io"
	"strconv"
	"strings"
)

const unknownVendor = "Unknown"

// Lookup is the result of resolving one input address.
type Lookup struct {
	Input      string `json:"input"`
	Valid      bool   `json:"valid"`
	Formatted  string `json:"formatted,omitempty"`
	Prefix     string `json:"prefix,omitempty"`
	Vendor     string `json:"vendor,omitempty"`
	VendorLong string `json:"vendorLong,omitempty"`
	Comment    string `json:"comment,omitempty"`
}

// Writer prints lookups either as tab separated lines or as JSON lines.
type Writer struct {
	w       io.Writer
	json    bool
	encoder *json.Encoder
}

func NewWriter(w io.Writer, asJson bool) *Writer {
	return &Writer{w: w, json: asJson, encoder: json.NewEncoder(w)}
}

func (w *Writer) WriteLookup(l Lookup) error {
	if w.json {
		return w.encoder.Encode(l)
	}
	vendor := l.Vendor
	if l.Valid && vendor == "" {
		vendor = unknownVendor
	}
	_, err := io.WriteString(w.w, strings.Join([]string{l.Input, l.Formatted, l.Prefix, vendor}, "\t")+"\n")
	return err
}

func (w *Writer) WriteSummary(s Summary) error {
	if w.json {
		return w.encoder.Encode(s)
	}
	for _, item := range s.Items {
		vendor := item.Vendor
		if vendor == "" {
			vendor = unknownVendor
		}
		line := strings.Join([]string{
			item.Mac,
			vendor,
			strconv.Itoa(item.Count),
			strconv.FormatInt(item.FirstTs, 10),
			strconv.FormatInt(item.LastTs, 10),
		}, "\t")
		if _, err := io.WriteString(w.w, line+"\n"); err != nil {
			return err
		}
	}
	return nil
}
