package mac

import "errors"

// Parse errors are returned unwrapped so that rejecting a malformed row does not
// allocate.
var (
	ErrEmpty         = errors.New("mac: empty input")
	ErrInvalidLength = errors.New("mac: invalid length")
	ErrInvalidFormat = errors.New("mac: invalid format")
	ErrUnknownStyle  = errors.New("mac: unknown format style")
)
