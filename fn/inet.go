package fn

import (
	"database/sql/driver"
	"fmt"
	"net"
	"net/netip"
	"slices"
	"strconv"

	"go4.org/netipx"
)

// inSubnet implements INSUBNET(ip, cidr) and INSUBNET(ip, network, mask).
// The mask is a dotted netmask or a prefix length.
func inSubnet(args []driver.Value) (driver.Value, error) {
	if slices.Contains(args, nil) {
		return nil, nil
	}
	ipText, ok := text(args[0])
	if !ok {
		return nil, fmt.Errorf("%w: ip must be text, got %T", ErrArgument, args[0])
	}
	ip, err := netip.ParseAddr(ipText)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrArgument, err)
	}

	var prefix netip.Prefix
	if len(args) == 2 {
		prefix, err = cidrArg(args[1])
	} else {
		prefix, err = networkMaskArg(args[1], args[2])
	}
	if err != nil {
		return nil, err
	}
	return boolValue(prefix.Masked().Contains(ip.Unmap())), nil
}

func cidrArg(v driver.Value) (netip.Prefix, error) {
	s, ok := text(v)
	if !ok {
		return netip.Prefix{}, fmt.Errorf("%w: subnet must be text, got %T", ErrArgument, v)
	}
	prefix, err := netip.ParsePrefix(s)
	if err != nil {
		return netip.Prefix{}, fmt.Errorf("%w: %w", ErrArgument, err)
	}
	return prefix, nil
}

func networkMaskArg(networkValue, maskValue driver.Value) (netip.Prefix, error) {
	s, ok := text(networkValue)
	if !ok {
		return netip.Prefix{}, fmt.Errorf("%w: network must be text, got %T", ErrArgument, networkValue)
	}
	network, err := netip.ParseAddr(s)
	if err != nil {
		return netip.Prefix{}, fmt.Errorf("%w: %w", ErrArgument, err)
	}

	var bits int
	switch m := maskValue.(type) {
	case int64:
		bits = int(m)
	default:
		maskText, ok := text(maskValue)
		if !ok {
			return netip.Prefix{}, fmt.Errorf("%w: mask must be text or integer, got %T", ErrArgument, maskValue)
		}
		if n, err := strconv.Atoi(maskText); err == nil {
			bits = n
			break
		}
		return maskPrefix(network, maskText)
	}

	prefix := netip.PrefixFrom(network, bits)
	if !prefix.IsValid() {
		return netip.Prefix{}, fmt.Errorf("%w: prefix length %d out of range for %v", ErrArgument, bits, network)
	}
	return prefix, nil
}

func maskPrefix(network netip.Addr, maskText string) (netip.Prefix, error) {
	mask, err := netip.ParseAddr(maskText)
	if err != nil {
		return netip.Prefix{}, fmt.Errorf("%w: mask: %w", ErrArgument, err)
	}
	if mask.Is4() != network.Is4() {
		return netip.Prefix{}, fmt.Errorf("%w: mask %v does not match network %v", ErrArgument, mask, network)
	}
	prefix, ok := netipx.FromStdIPNet(&net.IPNet{
		IP:   network.AsSlice(),
		Mask: net.IPMask(mask.AsSlice()),
	})
	if !ok {
		return netip.Prefix{}, fmt.Errorf("%w: non-contiguous mask %v", ErrArgument, mask)
	}
	return prefix, nil
}
