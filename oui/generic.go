package oui

import (
	"slices"

	"github.com/ipastusi/macsql/mac"
)

type genericKey struct {
	value uint64
	bits  uint8
}

// Generic resolves through a hash map keyed by masked prefix, trying the
// registered prefix lengths from longest to shortest.
type Generic struct {
	records []Record
	index   map[genericKey]int32
	lengths []uint8
}

func newGeneric(records []Record) *Generic {
	g := &Generic{
		records: records,
		index:   make(map[genericKey]int32, len(records)),
	}
	for i, r := range records {
		g.index[genericKey{value: r.Prefix.Addr.Uint64(), bits: r.Prefix.Bits}] = int32(i)
		if !slices.Contains(g.lengths, r.Prefix.Bits) {
			g.lengths = append(g.lengths, r.Prefix.Bits)
		}
	}
	slices.Sort(g.lengths)
	slices.Reverse(g.lengths)
	return g
}

func (g *Generic) Resolve(addr mac.Addr) (Record, bool) {
	v := addr.Uint64()
	for _, bits := range g.lengths {
		if i, ok := g.index[genericKey{value: v & prefixMask(bits), bits: bits}]; ok {
			return g.records[i], true
		}
	}
	return Record{}, false
}
