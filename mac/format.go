package mac

// Style selects the textual form produced by Addr.Format.
type Style uint8

const (
	StyleDefault Style = iota
	StyleColon
	StyleDash
	StyleHex
	StyleLinkLocal
)

const hexLower = "0123456789abcdef"

// maxFormatLen is the longest Format output: fe80::xxxx:xxff:fexx:xxxx.
const maxFormatLen = 25

// ParseStyle maps a style token to a Style. The vocabulary is case-sensitive:
// "dash", "colon", "hex", "link-local", and "" for the default.
func ParseStyle(token string) (Style, error) {
	switch token {
	case "":
		return StyleDefault, nil
	case "colon":
		return StyleColon, nil
	case "dash":
		return StyleDash, nil
	case "hex":
		return StyleHex, nil
	case "link-local":
		return StyleLinkLocal, nil
	default:
		return StyleDefault, ErrUnknownStyle
	}
}

func (s Style) String() string {
	switch s {
	case StyleColon:
		return "colon"
	case StyleDash:
		return "dash"
	case StyleHex:
		return "hex"
	case StyleLinkLocal:
		return "link-local"
	default:
		return ""
	}
}

// Format renders a in the given style. Unknown Style values render as default.
func (a Addr) Format(style Style) string {
	var buf [maxFormatLen]byte
	return string(a.AppendFormat(buf[:0], style))
}

// AppendFormat appends the formatted address to dst and returns the extended
// buffer.
func (a Addr) AppendFormat(dst []byte, style Style) []byte {
	switch style {
	case StyleDash:
		return appendSep(dst, a, '-')
	case StyleHex:
		for _, b := range a {
			dst = append(dst, hexLower[b>>4], hexLower[b&0x0f])
		}
		return dst
	case StyleLinkLocal:
		return a.LinkLocal().AppendTo(dst)
	default:
		return appendSep(dst, a, ':')
	}
}

func appendSep(dst []byte, a Addr, sep byte) []byte {
	for i, b := range a {
		if i > 0 {
			dst = append(dst, sep)
		}
		dst = append(dst, hexLower[b>>4], hexLower[b&0x0f])
	}
	return dst
}
