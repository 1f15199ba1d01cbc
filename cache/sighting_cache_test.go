package cache_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/ipastusi/macsql/cache"
	"github.com/ipastusi/macsql/capture"
	"github.com/ipastusi/macsql/mac"
	"github.com/ipastusi/macsql/report"
)

func Test_FromSummary(t *testing.T) {
	t.Parallel()

	summary := report.NewSummary()
	summary.Items = []report.Item{
		{Mac: "00:00:00:01:02:03", FirstTs: 1749913040850, LastTs: 1749913040850, Count: 1},
		{Mac: "00:00:00:04:05:06", Vendor: "Xerox", FirstTs: 1749913040852, LastTs: 1749913040860, Count: 4},
	}
	sightingCache, err := cache.FromSummary(summary)
	if err != nil {
		t.Fatal("unexpected error:", err)
	}

	expected := map[mac.Addr]cache.SightingDetails{
		mac.MustParse("00:00:00:01:02:03"): {FirstTs: 1749913040850, LastTs: 1749913040850, Count: 1},
		mac.MustParse("00:00:00:04:05:06"): {FirstTs: 1749913040852, LastTs: 1749913040860, Count: 4},
	}
	if diff := cmp.Diff(expected, sightingCache.Items); diff != "" {
		t.Fatalf("unexpected cache items (-expected +actual):\n%s", diff)
	}
}

func Test_FromSummaryInvalid(t *testing.T) {
	t.Parallel()

	summary := report.Summary{Items: []report.Item{{Mac: "b8s:d7:af:8f:zb4:bd", Count: 1}}}
	if _, err := cache.FromSummary(summary); err == nil {
		t.Fatal("expected error for invalid summary address")
	}
}

func Test_Update(t *testing.T) {
	t.Parallel()

	sightingCache := cache.NewSightingCache()
	macA := mac.MustParse("00:00:00:01:02:03")
	macB := mac.MustParse("00:00:00:04:05:06")

	// init address
	sightingCache.Update(capture.Sighting{Addr: macA, Ts: 1749913040850})
	// same address, out of order timestamps
	sightingCache.Update(capture.Sighting{Addr: macA, Ts: 1749913040855, Source: capture.SourceARP})
	details := sightingCache.Update(capture.Sighting{Addr: macA, Ts: 1749913040851})
	// diff address
	sightingCache.Update(capture.Sighting{Addr: macB, Ts: 1749913040852})

	if size := len(sightingCache.Items); size != 2 {
		t.Fatal("unexpected cache size:", size)
	}

	expectedA := cache.SightingDetails{FirstTs: 1749913040850, LastTs: 1749913040855, Count: 3}
	if details != expectedA || sightingCache.Sighting(macA) != expectedA {
		t.Fatalf("unexpected details, expected: %v, actual: %v", expectedA, sightingCache.Sighting(macA))
	}
	expectedB := cache.SightingDetails{FirstTs: 1749913040852, LastTs: 1749913040852, Count: 1}
	if sightingCache.Sighting(macB) != expectedB {
		t.Fatalf("unexpected details, expected: %v, actual: %v", expectedB, sightingCache.Sighting(macB))
	}
}

func Test_ToSummary(t *testing.T) {
	t.Parallel()

	sightingCache := cache.NewSightingCache()
	sightingCache.Items[mac.MustParse("3c:a6:f6:00:00:02")] = cache.SightingDetails{FirstTs: 20, LastTs: 30, Count: 2}
	sightingCache.Items[mac.MustParse("3c:a6:f6:00:00:01")] = cache.SightingDetails{FirstTs: 20, LastTs: 20, Count: 1}
	sightingCache.Items[mac.MustParse("02:00:00:00:00:01")] = cache.SightingDetails{FirstTs: 10, LastTs: 40, Count: 5}

	vendor := func(addr mac.Addr) string {
		if addr.IsLocal() {
			return ""
		}
		return "Apple"
	}
	summary := sightingCache.ToSummary(vendor)

	expected := []report.Item{
		{Mac: "02:00:00:00:00:01", FirstTs: 10, LastTs: 40, Count: 5},
		{Mac: "3c:a6:f6:00:00:01", Vendor: "Apple", FirstTs: 20, LastTs: 20, Count: 1},
		{Mac: "3c:a6:f6:00:00:02", Vendor: "Apple", FirstTs: 20, LastTs: 30, Count: 2},
	}
	if diff := cmp.Diff(expected, summary.Items); diff != "" {
		t.Fatalf("unexpected summary items (-expected +actual):\n%s", diff)
	}
}

func Test_ToSummaryEmpty(t *testing.T) {
	t.Parallel()

	sightingCache := cache.NewSightingCache()
	summary := sightingCache.ToSummary(func(mac.Addr) string { return "" })
	if summary.Items == nil {
		t.Fatal("unexpected nil Items, should be empty")
	}
}
