package oui

import (
	"strconv"

	"github.com/ipastusi/macsql/mac"
)

const (
	hexUpper      = "0123456789ABCDEF"
	minPrefixBits = 24
	maxPrefixBits = 48
)

// Key is an Organizationally Unique Identifier: the top 24 bits of a MAC address.
type Key uint32

// Extract returns the OUI of a. Two encodings of the same address always yield
// the same Key.
func Extract(a mac.Addr) Key {
	return Key(a[0])<<16 | Key(a[1])<<8 | Key(a[2])
}

// String returns the canonical registry form, e.g. 3C-A6-F6.
func (k Key) String() string {
	var buf [8]byte
	return string(k.appendText(buf[:0]))
}

func (k Key) appendText(dst []byte) []byte {
	for i, shift := range [3]uint{16, 8, 0} {
		if i > 0 {
			dst = append(dst, '-')
		}
		b := byte(k >> shift)
		dst = append(dst, hexUpper[b>>4], hexUpper[b&0x0f])
	}
	return dst
}

// Addr returns the first address of the OUI block.
func (k Key) Addr() mac.Addr {
	return mac.Addr{byte(k >> 16), byte(k >> 8), byte(k)}
}

// Prefix is an IEEE registry block: MA-L (/24), MA-M (/28), MA-S (/36), or
// any other length from 24 to 48 the dataset assigns. Bits is the prefix length.
type Prefix struct {
	Addr mac.Addr
	Bits uint8
}

// Key returns the OUI the block belongs to, the top 24 bits of Addr.
func (p Prefix) Key() Key {
	return Extract(p.Addr)
}

// Canonical reports whether every bit of Addr below the prefix length is zero.
// A non-canonical prefix never contains any address.
func (p Prefix) Canonical() bool {
	return p.Addr.Uint64()&^prefixMask(p.Bits) == 0
}

// Contains reports whether a falls inside the block.
func (p Prefix) Contains(a mac.Addr) bool {
	m := prefixMask(p.Bits)
	return a.Uint64()&m == p.Addr.Uint64()
}

// String returns the manuf notation: 3C:A6:F6 for /24 blocks and
// 8C:1C:DA:80:00:00/28 otherwise.
func (p Prefix) String() string {
	var buf [20]byte
	dst := buf[:0]
	short := p.Bits == 24 && p.Canonical()
	octets := 6
	if short {
		octets = 3
	}
	for i := range octets {
		if i > 0 {
			dst = append(dst, ':')
		}
		dst = append(dst, hexUpper[p.Addr[i]>>4], hexUpper[p.Addr[i]&0x0f])
	}
	if !short {
		dst = append(dst, '/')
		dst = strconv.AppendUint(dst, uint64(p.Bits), 10)
	}
	return string(dst)
}

func prefixMask(bits uint8) uint64 {
	return (uint64(1)<<bits - 1) << (48 - bits)
}
