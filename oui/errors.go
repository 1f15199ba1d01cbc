package oui

import (
	"errors"
	"fmt"
)

var (
	ErrFieldCount   = errors.New("oui: invalid number of fields")
	ErrPrefix       = errors.New("oui: invalid prefix")
	ErrPrefixLength = errors.New("oui: unsupported prefix length")
	ErrNativeBuild  = errors.New("oui: cannot build perfect hash")
)

// DatasetError reports the dataset line a parse error occurred on.
type DatasetError struct {
	Line int
	Text string
	Err  error
}

func (e *DatasetError) Error() string {
	return fmt.Sprintf("line %d: %v: %q", e.Line, e.Err, e.Text)
}

func (e *DatasetError) Unwrap() error {
	return e.Err
}
