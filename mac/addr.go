package mac

import (
	"net"
	"net/netip"
)

// Addr is a 48-bit MAC address (EUI-48), most significant octet first.
// It is a comparable value and can be used as a map key.
type Addr [6]byte

// AddrFromUint64 returns the address held in the low 48 bits of v.
func AddrFromUint64(v uint64) Addr {
	return Addr{
		byte(v >> 40),
		byte(v >> 32),
		byte(v >> 24),
		byte(v >> 16),
		byte(v >> 8),
		byte(v),
	}
}

// Uint64 returns the address as an integer in the range [0, 1<<48).
func (a Addr) Uint64() uint64 {
	return uint64(a[0])<<40 | uint64(a[1])<<32 | uint64(a[2])<<24 |
		uint64(a[3])<<16 | uint64(a[4])<<8 | uint64(a[5])
}

// HardwareAddr returns a copy of a as a net.HardwareAddr.
func (a Addr) HardwareAddr() net.HardwareAddr {
	hw := make(net.HardwareAddr, 6)
	copy(hw, a[:])
	return hw
}

// String returns the default lowercase colon-separated form.
func (a Addr) String() string {
	return a.Format(StyleDefault)
}

// IsUnicast reports whether the I/G bit (bit 0 of the first octet) is clear.
func (a Addr) IsUnicast() bool {
	return a[0]&0x01 == 0
}

// IsMulticast reports whether the I/G bit is set. Broadcast is multicast.
func (a Addr) IsMulticast() bool {
	return a[0]&0x01 != 0
}

// IsUniversal reports whether the U/L bit (bit 1 of the first octet) is clear.
func (a Addr) IsUniversal() bool {
	return a[0]&0x02 == 0
}

// IsLocal reports whether the U/L bit is set.
func (a Addr) IsLocal() bool {
	return a[0]&0x02 != 0
}

// EUI64 returns the modified EUI-64 interface identifier: the U/L bit of the
// first octet is flipped, then ff:fe is inserted between octets 3 and 4.
func (a Addr) EUI64() [8]byte {
	return [8]byte{a[0] ^ 0x02, a[1], a[2], 0xff, 0xfe, a[3], a[4], a[5]}
}

// LinkLocal returns the fe80::/64 address built from the EUI-64 identifier.
func (a Addr) LinkLocal() netip.Addr {
	var ip [16]byte
	ip[0] = 0xfe
	ip[1] = 0x80
	iid := a.EUI64()
	copy(ip[8:], iid[:])
	return netip.AddrFrom16(ip)
}
