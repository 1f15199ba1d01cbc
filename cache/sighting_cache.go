package cache

import (
	"cmp"
	"fmt"
	"slices"

	"github.com/ipastusi/macsql/capture"
	"github.com/ipastusi/macsql/mac"
	"github.com/ipastusi/macsql/report"
)

type SightingDetails struct {
	FirstTs int64
	LastTs  int64
	Count   int
}

// SightingCache tallies how often and when each address was seen.
type SightingCache struct {
	Items map[mac.Addr]SightingDetails
}

func NewSightingCache() SightingCache {
	return SightingCache{
		Items: map[mac.Addr]SightingDetails{},
	}
}

// FromSummary seeds a cache from a summary persisted by an earlier run.
func FromSummary(summary report.Summary) (SightingCache, error) {
	cache := NewSightingCache()
	for _, item := range summary.Items {
		addr, err := mac.Parse(item.Mac)
		if err != nil {
			return SightingCache{}, fmt.Errorf("summary item %q: %w", item.Mac, err)
		}
		cache.Items[addr] = SightingDetails{
			FirstTs: item.FirstTs,
			LastTs:  item.LastTs,
			Count:   item.Count,
		}
	}
	return cache, nil
}

// ToSummary renders the cache ordered by first sighting. vendor may return
// "" for unknown addresses.
func (c *SightingCache) ToSummary(vendor func(mac.Addr) string) report.Summary {
	summary := report.NewSummary()
	addrs := make([]mac.Addr, 0, len(c.Items))
	for addr := range c.Items {
		addrs = append(addrs, addr)
	}
	slices.SortFunc(addrs, func(a, b mac.Addr) int {
		if n := cmp.Compare(c.Items[a].FirstTs, c.Items[b].FirstTs); n != 0 {
			return n
		}
		return cmp.Compare(a.Uint64(), b.Uint64())
	})

	for _, addr := range addrs {
		details := c.Items[addr]
		summary.Items = append(summary.Items, report.Item{
			Mac:     addr.String(),
			Vendor:  vendor(addr),
			FirstTs: details.FirstTs,
			LastTs:  details.LastTs,
			Count:   details.Count,
		})
	}
	return summary
}

func (c *SightingCache) Update(sighting capture.Sighting) SightingDetails {
	val := c.Items[sighting.Addr]
	if val.Count == 0 || sighting.Ts < val.FirstTs {
		val.FirstTs = sighting.Ts
	}
	if sighting.Ts > val.LastTs {
		val.LastTs = sighting.Ts
	}
	val.Count++
	c.Items[sighting.Addr] = val
	return val
}

func (c *SightingCache) Sighting(addr mac.Addr) SightingDetails {
	return c.Items[addr]
}
