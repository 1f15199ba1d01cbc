package oui

import "github.com/ipastusi/macsql/mac"

// Resolver maps an address to the most specific registry block containing it.
// Implementations are immutable after construction and safe for concurrent use.
type Resolver interface {
	Resolve(addr mac.Addr) (Record, bool)
}

// ResolveKey resolves the first address of k, so a longer block starting
// there wins over the /24 record.
func ResolveKey(r Resolver, k Key) (Record, bool) {
	return r.Resolve(k.Addr())
}
