package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"
	"github.com/google/gopacket/pcapgo"

	"github.com/ipastusi/macsql/config"
	"github.com/ipastusi/macsql/mac"
	"github.com/ipastusi/macsql/oui"
	"github.com/ipastusi/macsql/report"
)

func newLookuper(t *testing.T, resolverName string, style mac.Style) lookuper {
	t.Helper()
	reg, err := oui.Default()
	if err != nil {
		t.Fatal("error loading registry:", err)
	}
	resolver, err := reg.Resolver(resolverName)
	if err != nil {
		t.Fatal("error selecting resolver:", err)
	}
	return lookuper{resolver: resolver, style: style}
}

func Test_lookup(t *testing.T) {
	t.Parallel()

	data := map[string]struct {
		input    string
		style    mac.Style
		expected report.Lookup
	}{
		"apple": {
			input: "3c-a6-f6-c4-34-f8",
			expected: report.Lookup{
				Input: "3c-a6-f6-c4-34-f8", Valid: true, Formatted: "3c:a6:f6:c4:34:f8",
				Prefix: "3C-A6-F6", Vendor: "Apple", VendorLong: "Apple, Inc.",
			},
		},
		"ma-m block": {
			input: "8C1CDA824C2E",
			style: mac.StyleDash,
			expected: report.Lookup{
				Input: "8C1CDA824C2E", Valid: true, Formatted: "8c-1c-da-82-4c-2e",
				Prefix: "8C-1C-DA", Vendor: "Atol", VendorLong: "Atol Llc",
			},
		},
		"unknown vendor": {
			input: "b0:c5:5a:01:02:03",
			style: mac.StyleHex,
			expected: report.Lookup{
				Input: "b0:c5:5a:01:02:03", Valid: true, Formatted: "b0c55a010203", Prefix: "B0-C5-5A",
			},
		},
		"invalid": {
			input:    "b8s:d7:af:8f:zb4:bd",
			expected: report.Lookup{Input: "b8s:d7:af:8f:zb4:bd"},
		},
	}

	for _, resolverName := range []string{"native", "generic"} {
		for name, d := range data {
			t.Run(resolverName+"/"+name, func(t *testing.T) {
				t.Parallel()
				l := newLookuper(t, resolverName, d.style)
				if diff := cmp.Diff(d.expected, l.lookup(d.input)); diff != "" {
					t.Fatalf("unexpected lookup (-expected +actual):\n%s", diff)
				}
			})
		}
	}
}

func Test_processLines(t *testing.T) {
	t.Parallel()

	input := strings.NewReader("3c-a6-f6-c4-34-f8\n\nnot-a-mac\n8c-1c-da-82-4c-2e\nb0:c5:5a:01:02:03\n")
	var out bytes.Buffer
	err := processLines(context.Background(), input, newLookuper(t, "native", mac.StyleDefault), report.NewWriter(&out, false))
	if err != nil {
		t.Fatal("unexpected error:", err)
	}

	expected := "3c-a6-f6-c4-34-f8\t3c:a6:f6:c4:34:f8\t3C-A6-F6\tApple\n" +
		"not-a-mac\t\t\t\n" +
		"8c-1c-da-82-4c-2e\t8c:1c:da:82:4c:2e\t8C-1C-DA\tAtol\n" +
		"b0:c5:5a:01:02:03\tb0:c5:5a:01:02:03\tB0-C5-5A\tUnknown\n"
	if diff := cmp.Diff(expected, out.String()); diff != "" {
		t.Fatalf("unexpected output (-expected +actual):\n%s", diff)
	}
}

func Test_processLinesCanceled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	var out bytes.Buffer
	err := processLines(ctx, strings.NewReader("3c-a6-f6-c4-34-f8\n"), newLookuper(t, "native", mac.StyleDefault), report.NewWriter(&out, false))
	if err != context.Canceled {
		t.Fatal("expected context.Canceled, got:", err)
	}
	if out.Len() != 0 {
		t.Fatal("unexpected output:", out.String())
	}
}

func Test_processArgsJson(t *testing.T) {
	t.Parallel()

	var out bytes.Buffer
	args := []string{"00:00:00:00:00:00", "3c:a6:f6"}
	if err := processArgs(args, newLookuper(t, "generic", mac.StyleLinkLocal), report.NewWriter(&out, true)); err != nil {
		t.Fatal("unexpected error:", err)
	}

	var actual []report.Lookup
	decoder := json.NewDecoder(&out)
	for decoder.More() {
		var l report.Lookup
		if err := decoder.Decode(&l); err != nil {
			t.Fatal("error decoding output:", err)
		}
		actual = append(actual, l)
	}

	expected := []report.Lookup{
		{
			Input: "00:00:00:00:00:00", Valid: true, Formatted: "fe80::200:ff:fe00:0", Prefix: "00-00-00",
			Vendor: "00:00:00", VendorLong: "Officially Xerox, but 0:0:0:0:0:0 is more common",
		},
		{Input: "3c:a6:f6"},
	}
	if diff := cmp.Diff(expected, actual); diff != "" {
		t.Fatalf("unexpected lookups (-expected +actual):\n%s", diff)
	}
}

func arpFrame(t *testing.T, src mac.Addr) []byte {
	t.Helper()
	eth := layers.Ethernet{
		SrcMAC:       src.HardwareAddr(),
		DstMAC:       net.HardwareAddr{0xff, 0xff, 0xff, 0xff, 0xff, 0xff},
		EthernetType: layers.EthernetTypeARP,
	}
	arp := layers.ARP{
		AddrType:          layers.LinkTypeEthernet,
		Protocol:          layers.EthernetTypeIPv4,
		HwAddressSize:     6,
		ProtAddressSize:   4,
		Operation:         layers.ARPRequest,
		SourceHwAddress:   src.HardwareAddr(),
		SourceProtAddress: []byte{192, 168, 1, 100},
		DstHwAddress:      make([]byte, 6),
		DstProtAddress:    []byte{192, 168, 1, 1},
	}
	buf := gopacket.NewSerializeBuffer()
	if err := gopacket.SerializeLayers(buf, gopacket.SerializeOptions{}, &eth, &arp); err != nil {
		t.Fatal("error serializing frame:", err)
	}
	return buf.Bytes()
}

func writeCapture(t *testing.T, path string, ts time.Time, srcs ...mac.Addr) {
	t.Helper()
	var out bytes.Buffer
	w := pcapgo.NewWriter(&out)
	if err := w.WriteFileHeader(65536, layers.LinkTypeEthernet); err != nil {
		t.Fatal("error writing pcap header:", err)
	}
	for i, src := range srcs {
		frame := arpFrame(t, src)
		ci := gopacket.CaptureInfo{
			Timestamp:     ts.Add(time.Duration(i) * time.Millisecond),
			CaptureLength: len(frame),
			Length:        len(frame),
		}
		if err := w.WritePacket(ci, frame); err != nil {
			t.Fatal("error writing packet:", err)
		}
	}
	if err := os.WriteFile(path, out.Bytes(), 0644); err != nil {
		t.Fatal("error writing capture file:", err)
	}
}

func Test_processCapture(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	captureFile := filepath.Join(dir, "arp.pcap")
	macFile := filepath.Join(dir, "exclude.txt")
	summaryFile := filepath.Join(dir, "summary.json")

	rpiMac := mac.MustParse("2c:cf:67:0c:6c:a4")
	hpMac := mac.MustParse("b4:b6:86:01:02:03")
	excludedMac := mac.MustParse("31:0c:8a:00:00:01")
	baseTs := time.UnixMilli(1749913040850)
	writeCapture(t, captureFile, baseTs, rpiMac, hpMac, excludedMac, rpiMac)
	if err := os.WriteFile(macFile, []byte("# lab switch\n31-0c-8a-00-00-01\n"), 0644); err != nil {
		t.Fatal("error writing exclude file:", err)
	}

	cfg := config.CaptureConfig{
		File:          &captureFile,
		SummaryFile:   &summaryFile,
		ExcludeConfig: &config.ExcludeConfig{MacFile: &macFile},
	}
	l := newLookuper(t, "native", mac.StyleDefault)

	summary, err := processCapture(context.Background(), cfg, l)
	if err != nil {
		t.Fatal("unexpected error:", err)
	}
	var out bytes.Buffer
	if err = report.NewWriter(&out, false).WriteSummary(summary); err != nil {
		t.Fatal("unexpected error:", err)
	}
	expected := "2c:cf:67:0c:6c:a4\tRaspberr\t2\t1749913040850\t1749913040853\n" +
		"b4:b6:86:01:02:03\tHewlettP\t1\t1749913040851\t1749913040851\n"
	if diff := cmp.Diff(expected, out.String()); diff != "" {
		t.Fatalf("unexpected output (-expected +actual):\n%s", diff)
	}

	// a second run over a later capture merges into the persisted summary
	writeCapture(t, captureFile, baseTs.Add(time.Minute), hpMac)
	if _, err = processCapture(context.Background(), cfg, l); err != nil {
		t.Fatal("unexpected error:", err)
	}

	summaryBytes, err := os.ReadFile(summaryFile)
	if err != nil {
		t.Fatal("error reading summary file:", err)
	}
	if errs := report.ValidateSummary(summaryBytes); len(errs) != 0 {
		t.Fatal("invalid summary file:", errs)
	}
	summary, err = report.FromJson(summaryBytes)
	if err != nil {
		t.Fatal("error decoding summary file:", err)
	}
	expectedItems := []report.Item{
		{Mac: "2c:cf:67:0c:6c:a4", Vendor: "Raspberr", FirstTs: 1749913040850, LastTs: 1749913040853, Count: 2},
		{Mac: "b4:b6:86:01:02:03", Vendor: "HewlettP", FirstTs: 1749913040851, LastTs: 1749913100850, Count: 2},
	}
	if diff := cmp.Diff(expectedItems, summary.Items); diff != "" {
		t.Fatalf("unexpected summary items (-expected +actual):\n%s", diff)
	}
}

func Test_processCaptureInvalidSummary(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	captureFile := filepath.Join(dir, "arp.pcap")
	summaryFile := filepath.Join(dir, "summary.json")
	writeCapture(t, captureFile, time.UnixMilli(1749913040850), mac.MustParse("2c:cf:67:0c:6c:a4"))
	if err := os.WriteFile(summaryFile, []byte(`{"items":[{"mac":"2C-CF-67-0C-6C-A4","count":0}]}`), 0644); err != nil {
		t.Fatal("error writing summary file:", err)
	}

	cfg := config.CaptureConfig{File: &captureFile, SummaryFile: &summaryFile}
	_, err := processCapture(context.Background(), cfg, newLookuper(t, "native", mac.StyleDefault))
	if err == nil {
		t.Fatal("expected error for invalid summary file")
	}
}
