// Package sqlext registers the MAC functions with the pure Go SQLite driver.
// Registration is process wide and applies to every connection opened after
// it, the same way a loaded SQLite extension does.
package sqlext

import (
	"database/sql"
	"database/sql/driver"
	"fmt"
	"log/slog"
	"sync"

	"modernc.org/sqlite"

	"github.com/ipastusi/macsql/fn"
	"github.com/ipastusi/macsql/oui"
)

const DriverName = "sqlite"

var (
	registerOnce sync.Once
	registerErr  error
)

// Register loads the embedded registry and registers every function with the
// driver. The work happens once per process; later calls return the first
// result.
func Register() error {
	registerOnce.Do(func() {
		reg, err := oui.Default()
		if err != nil {
			registerErr = fmt.Errorf("load registry: %w", err)
			return
		}
		registerErr = register(fn.Functions(reg))
		if registerErr == nil {
			slog.Debug("registered sql functions", slog.Int("records", reg.Len()), slog.Int("duplicates", reg.Duplicates()))
		}
	})
	return registerErr
}

func register(functions []fn.Function) error {
	for _, f := range functions {
		nArg := int32(f.MinArgs)
		if f.Variadic() {
			nArg = -1
		}
		call := f.Call
		err := sqlite.RegisterDeterministicScalarFunction(f.Name, nArg,
			func(_ *sqlite.FunctionContext, args []driver.Value) (driver.Value, error) {
				return call(args)
			})
		if err != nil {
			return fmt.Errorf("register %s: %w", f.Name, err)
		}
	}
	return nil
}

// Open registers the functions if needed and opens dsn with the sqlite driver.
func Open(dsn string) (*sql.DB, error) {
	if err := Register(); err != nil {
		return nil, err
	}
	return sql.Open(DriverName, dsn)
}
