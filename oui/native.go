package oui

import (
	"encoding/binary"
	"fmt"
	"slices"

	"github.com/cespare/xxhash/v2"

	"github.com/ipastusi/macsql/mac"
)

const (
	slotOccupied = 1 << 24
	maxSeed      = 1 << 20
	noRecord     = -1
)

type nativeSlot struct {
	key   uint32
	rec   int32
	sub28 int32
	sub36 int32
}

// Native resolves through a perfect hash over the registered
// OUIs, built with hash-and-displace. Each OUI slot carries its /24 record
// and optional /28 and /36 child tables, so a lookup costs two hashes and at
// most three array reads. Blocks of any other length live in residual
// tables, one map per length, checked in longest-prefix order around the
// slot reads.
type Native struct {
	records    []Record
	seeds      []uint32
	bucketMask uint64
	slots      []nativeSlot
	slotMask   uint64
	sub28      []*[16]int32
	sub36      []*[4096]int32
	residual   []residualTable
}

// residualTable indexes the blocks of one prefix length by masked address.
type residualTable struct {
	bits  uint8
	index map[uint64]int32
}

type nativeEntry struct {
	key   uint32
	rec   int32
	sub28 *[16]int32
	sub36 *[4096]int32
}

func nativeHash(key, seed uint32) uint64 {
	var buf [8]byte
	binary.LittleEndian.PutUint32(buf[:4], key)
	binary.LittleEndian.PutUint32(buf[4:], seed)
	return xxhash.Sum64(buf[:])
}

func nextPow2(n int) int {
	p := 1
	for p < n {
		p <<= 1
	}
	return p
}

func newNative(records []Record) (*Native, error) {
	entries, residual := groupByOUI(records)

	nbuckets := nextPow2(max(1, (len(entries)+3)/4))
	size := nextPow2(len(entries) + len(entries)/4 + 1)
	n := &Native{
		records:    records,
		seeds:      make([]uint32, nbuckets),
		bucketMask: uint64(nbuckets - 1),
		slots:      make([]nativeSlot, size),
		slotMask:   uint64(size - 1),
		residual:   residual,
	}

	buckets := make([][]*nativeEntry, nbuckets)
	for _, e := range entries {
		b := nativeHash(e.key, 0) & n.bucketMask
		buckets[b] = append(buckets[b], e)
	}
	order := make([]int, nbuckets)
	for i := range order {
		order[i] = i
	}
	slices.SortStableFunc(order, func(a, b int) int {
		return len(buckets[b]) - len(buckets[a])
	})

	taken := make([]bool, size)
	var placed []uint64
	for _, b := range order {
		bucket := buckets[b]
		if len(bucket) == 0 {
			break
		}
		seed, ok := uint32(1), false
		for ; seed <= maxSeed; seed++ {
			placed = placed[:0]
			ok = true
			for _, e := range bucket {
				s := nativeHash(e.key, seed) & n.slotMask
				if taken[s] || slices.Contains(placed, s) {
					ok = false
					break
				}
				placed = append(placed, s)
			}
			if ok {
				break
			}
		}
		if !ok {
			return nil, fmt.Errorf("%w: bucket of %d keys", ErrNativeBuild, len(bucket))
		}
		n.seeds[b] = seed
		for i, e := range bucket {
			taken[placed[i]] = true
			n.slots[placed[i]] = n.slot(e)
		}
	}
	return n, nil
}

func (n *Native) slot(e *nativeEntry) nativeSlot {
	s := nativeSlot{key: e.key | slotOccupied, rec: e.rec, sub28: noRecord, sub36: noRecord}
	if e.sub28 != nil {
		s.sub28 = int32(len(n.sub28))
		n.sub28 = append(n.sub28, e.sub28)
	}
	if e.sub36 != nil {
		s.sub36 = int32(len(n.sub36))
		n.sub36 = append(n.sub36, e.sub36)
	}
	return s
}

func groupByOUI(records []Record) ([]*nativeEntry, []residualTable) {
	byKey := make(map[uint32]*nativeEntry)
	var entries []*nativeEntry
	var residual []residualTable
	for i, r := range records {
		v := r.Prefix.Addr.Uint64()
		bits := r.Prefix.Bits
		if bits != 24 && bits != 28 && bits != 36 {
			j := slices.IndexFunc(residual, func(t residualTable) bool { return t.bits == bits })
			if j < 0 {
				j = len(residual)
				residual = append(residual, residualTable{bits: bits, index: make(map[uint64]int32)})
			}
			residual[j].index[v] = int32(i)
			continue
		}

		key := uint32(r.Prefix.Key())
		e, ok := byKey[key]
		if !ok {
			e = &nativeEntry{key: key, rec: noRecord}
			byKey[key] = e
			entries = append(entries, e)
		}
		switch bits {
		case 24:
			e.rec = int32(i)
		case 28:
			if e.sub28 == nil {
				e.sub28 = new([16]int32)
				fill(e.sub28[:])
			}
			e.sub28[v>>20&0xf] = int32(i)
		case 36:
			if e.sub36 == nil {
				e.sub36 = new([4096]int32)
				fill(e.sub36[:])
			}
			e.sub36[v>>12&0xfff] = int32(i)
		}
	}
	slices.SortFunc(residual, func(a, b residualTable) int {
		return int(b.bits) - int(a.bits)
	})
	return entries, residual
}

func fill(s []int32) {
	for i := range s {
		s[i] = noRecord
	}
}

func (n *Native) Resolve(addr mac.Addr) (Record, bool) {
	v := addr.Uint64()
	i, r := n.residualAbove(v, 0, 36)
	if i != noRecord {
		return n.records[i], true
	}

	s := n.lookup(uint32(Extract(addr)))
	if s != nil && s.sub36 != noRecord {
		if i := n.sub36[s.sub36][v>>12&0xfff]; i != noRecord {
			return n.records[i], true
		}
	}
	if i, r = n.residualAbove(v, r, 28); i != noRecord {
		return n.records[i], true
	}
	if s != nil && s.sub28 != noRecord {
		if i := n.sub28[s.sub28][v>>20&0xf]; i != noRecord {
			return n.records[i], true
		}
	}
	if i, _ = n.residualAbove(v, r, 24); i != noRecord {
		return n.records[i], true
	}
	if s != nil && s.rec != noRecord {
		return n.records[s.rec], true
	}
	return Record{}, false
}

// lookup returns the slot of key, or nil when the OUI has no /24, /28 or /36
// block.
func (n *Native) lookup(key uint32) *nativeSlot {
	seed := n.seeds[nativeHash(key, 0)&n.bucketMask]
	if seed == 0 {
		return nil
	}
	s := &n.slots[nativeHash(key, seed)&n.slotMask]
	if s.key != key|slotOccupied {
		return nil
	}
	return s
}

// residualAbove searches residual tables from index r while their prefix length
// is greater than floor. It returns the matched record, or noRecord and the
// index of the first table it did not search.
func (n *Native) residualAbove(v uint64, r int, floor uint8) (int32, int) {
	for ; r < len(n.residual) && n.residual[r].bits > floor; r++ {
		t := &n.residual[r]
		if i, ok := t.index[v&prefixMask(t.bits)]; ok {
			return i, r
		}
	}
	return noRecord, r
}
