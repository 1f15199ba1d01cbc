// Package fn adapts the address codec and vendor registry to the scalar
// function calling convention of SQL engines: positional driver.Value
// arguments in, a single driver.Value out, nil for SQL NULL.
package fn

import (
	"database/sql/driver"
	"errors"
	"fmt"

	"github.com/ipastusi/macsql/mac"
	"github.com/ipastusi/macsql/oui"
)

var (
	ErrArity        = errors.New("fn: wrong number of arguments")
	ErrUnknownStyle = errors.New("fn: unknown format style")
	ErrArgument     = errors.New("fn: invalid argument")
)

// Function is one scalar function. Call checks arity itself, so hosts that
// register variadic functions can pass arguments through unchanged.
type Function struct {
	Name    string
	MinArgs int
	MaxArgs int
	Call    func(args []driver.Value) (driver.Value, error)
}

// Variadic reports whether the function accepts more than one arity.
func (f Function) Variadic() bool {
	return f.MinArgs != f.MaxArgs
}

// Functions returns the function table bound to reg. MAC_MANUF resolves
// through the generic resolver and MAC_MANUF_NATIVE through the native one.
func Functions(reg *oui.Registry) []Function {
	generic, native := reg.Generic(), reg.Native()
	functions := []Function{
		{Name: "MAC_FORMAT", MinArgs: 1, MaxArgs: 2, Call: macFormat},
		{Name: "MAC_PREFIX", MinArgs: 1, MaxArgs: 1, Call: macPrefix},
		{Name: "MAC_MANUF", MinArgs: 1, MaxArgs: 1, Call: vendorField(generic, shortName)},
		{Name: "MAC_MANUF_NATIVE", MinArgs: 1, MaxArgs: 1, Call: vendorField(native, shortName)},
		{Name: "MAC_MANUFLONG", MinArgs: 1, MaxArgs: 1, Call: vendorField(native, longName)},
		{Name: "MAC_COMMENT", MinArgs: 1, MaxArgs: 1, Call: vendorField(native, comment)},
		{Name: "MAC_ISUNICAST", MinArgs: 1, MaxArgs: 1, Call: addrBit(mac.Addr.IsUnicast)},
		{Name: "MAC_ISMULTICAST", MinArgs: 1, MaxArgs: 1, Call: addrBit(mac.Addr.IsMulticast)},
		{Name: "MAC_ISUNIVERSAL", MinArgs: 1, MaxArgs: 1, Call: addrBit(mac.Addr.IsUniversal)},
		{Name: "MAC_ISLOCAL", MinArgs: 1, MaxArgs: 1, Call: addrBit(mac.Addr.IsLocal)},
		{Name: "INSUBNET", MinArgs: 2, MaxArgs: 3, Call: inSubnet},
	}
	for i := range functions {
		functions[i].Call = withArity(functions[i])
	}
	return functions
}

// Lookup returns the function named name from functions.
func Lookup(functions []Function, name string) (Function, bool) {
	for _, f := range functions {
		if f.Name == name {
			return f, true
		}
	}
	return Function{}, false
}

func withArity(f Function) func([]driver.Value) (driver.Value, error) {
	call := f.Call
	return func(args []driver.Value) (driver.Value, error) {
		if len(args) < f.MinArgs || len(args) > f.MaxArgs {
			if f.Variadic() {
				return nil, fmt.Errorf("%w: %s takes %d to %d, got %d", ErrArity, f.Name, f.MinArgs, f.MaxArgs, len(args))
			}
			return nil, fmt.Errorf("%w: %s takes %d, got %d", ErrArity, f.Name, f.MinArgs, len(args))
		}
		return call(args)
	}
}

// text extracts a TEXT or BLOB argument. ok is false for NULL and every
// other type.
func text(v driver.Value) (string, bool) {
	switch v := v.(type) {
	case string:
		return v, true
	case []byte:
		return string(v), true
	default:
		return "", false
	}
}

// addr parses the MAC argument. Anything that is not parseable text is
// reported as absent.
func addr(v driver.Value) (mac.Addr, bool) {
	s, ok := text(v)
	if !ok {
		return mac.Addr{}, false
	}
	a, err := mac.Parse(s)
	if err != nil {
		return mac.Addr{}, false
	}
	return a, true
}

func boolValue(b bool) driver.Value {
	if b {
		return int64(1)
	}
	return int64(0)
}
