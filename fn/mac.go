package fn

import (
	"database/sql/driver"
	"fmt"
	"strings"

	"github.com/ipastusi/macsql/mac"
	"github.com/ipastusi/macsql/oui"
)

const (
	// flagNullOnBadMAC is accepted for compatibility; a bad MAC is always NULL.
	flagNullOnBadMAC = '?'
	// flagDefaultOnBadStyle makes unknown styles fall back to the default.
	flagDefaultOnBadStyle = '~'
)

// styleArg resolves the optional style argument of MAC_FORMAT. Leading
// ? and ~ flags may be repeated and mixed.
func styleArg(args []driver.Value) (mac.Style, error) {
	if len(args) < 2 || args[1] == nil {
		return mac.StyleDefault, nil
	}
	token, ok := text(args[1])
	if !ok {
		return mac.StyleDefault, fmt.Errorf("%w: style must be text, got %T", ErrArgument, args[1])
	}

	fallback := false
	rest := strings.TrimLeftFunc(token, func(r rune) bool {
		if r == flagDefaultOnBadStyle {
			fallback = true
		}
		return r == flagDefaultOnBadStyle || r == flagNullOnBadMAC
	})

	style, err := mac.ParseStyle(rest)
	if err != nil {
		if fallback {
			return mac.StyleDefault, nil
		}
		return mac.StyleDefault, fmt.Errorf("%w %q: %w", ErrUnknownStyle, token, err)
	}
	return style, nil
}

func macFormat(args []driver.Value) (driver.Value, error) {
	if args[0] == nil {
		return nil, nil
	}
	style, err := styleArg(args)
	if err != nil {
		return nil, err
	}
	a, ok := addr(args[0])
	if !ok {
		return nil, nil
	}
	return a.Format(style), nil
}

func macPrefix(args []driver.Value) (driver.Value, error) {
	a, ok := addr(args[0])
	if !ok {
		return nil, nil
	}
	return oui.Extract(a).String(), nil
}

func shortName(r oui.Record) string { return r.Short }
func longName(r oui.Record) string  { return r.Long }
func comment(r oui.Record) string   { return r.Comment }

func vendorField(resolver oui.Resolver, field func(oui.Record) string) func([]driver.Value) (driver.Value, error) {
	return func(args []driver.Value) (driver.Value, error) {
		a, ok := addr(args[0])
		if !ok {
			return nil, nil
		}
		record, found := resolver.Resolve(a)
		if !found {
			return nil, nil
		}
		if v := field(record); v != "" {
			return v, nil
		}
		return nil, nil
	}
}

func addrBit(bit func(mac.Addr) bool) func([]driver.Value) (driver.Value, error) {
	return func(args []driver.Value) (driver.Value, error) {
		a, ok := addr(args[0])
		if !ok {
			return nil, nil
		}
		return boolValue(bit(a)), nil
	}
}
