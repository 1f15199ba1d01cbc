package mac

import "fmt"

// Parse parses a MAC address in one of these notations, case-insensitively:
//
//	aa:bb:cc:dd:ee:ff
//	aa-bb-cc-dd-ee-ff
//	aabbccddeeff
//	aabb.ccdd.eeff
//	0xaabbccddeeff
//
// Surrounding whitespace is not trimmed.
func Parse(s string) (Addr, error) {
	switch len(s) {
	case 0:
		return Addr{}, ErrEmpty
	case 12:
		return parseBare(s)
	case 14:
		if s[4] == '.' && s[9] == '.' {
			return parseDot(s)
		}
		if s[0] == '0' && (s[1] == 'x' || s[1] == 'X') {
			return parseBare(s[2:])
		}
		return Addr{}, ErrInvalidFormat
	case 17:
		sep := s[2]
		if sep != ':' && sep != '-' {
			return Addr{}, ErrInvalidFormat
		}
		return parseGroups(s, sep)
	default:
		return Addr{}, ErrInvalidLength
	}
}

// MustParse is like Parse but panics on error.
func MustParse(s string) Addr {
	a, err := Parse(s)
	if err != nil {
		panic(fmt.Sprintf("mac.MustParse(%q): %v", s, err))
	}
	return a
}

func parseBare(s string) (Addr, error) {
	var a Addr
	for i := range 6 {
		b, ok := hexByte(s[i*2], s[i*2+1])
		if !ok {
			return Addr{}, ErrInvalidFormat
		}
		a[i] = b
	}
	return a, nil
}

// parseGroups parses xx?xx?xx?xx?xx?xx where every ? must equal sep.
func parseGroups(s string, sep byte) (Addr, error) {
	var a Addr
	for i := range 6 {
		off := i * 3
		if i > 0 && s[off-1] != sep {
			return Addr{}, ErrInvalidFormat
		}
		b, ok := hexByte(s[off], s[off+1])
		if !ok {
			return Addr{}, ErrInvalidFormat
		}
		a[i] = b
	}
	return a, nil
}

func parseDot(s string) (Addr, error) {
	offsets := [6]int{0, 2, 5, 7, 10, 12}
	var a Addr
	for i, off := range offsets {
		b, ok := hexByte(s[off], s[off+1])
		if !ok {
			return Addr{}, ErrInvalidFormat
		}
		a[i] = b
	}
	return a, nil
}

func hexByte(hi, lo byte) (byte, bool) {
	h, l := hexValue(hi), hexValue(lo)
	if h < 0 || l < 0 {
		return 0, false
	}
	return byte(h<<4 | l), true
}

func hexValue(c byte) int {
	switch {
	case '0' <= c && c <= '9':
		return int(c - '0')
	case 'a' <= c && c <= 'f':
		return int(c - 'a' + 10)
	case 'A' <= c && c <= 'F':
		return int(c - 'A' + 10)
	default:
		return -1
	}
}
