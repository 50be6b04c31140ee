package ast

import (
	"errors"
	"strings"
	"unicode/utf8"
)

var (
	ErrNotNarrow = errors.New("not a narrow string literal")
	ErrSyntax    = errors.New("invalid string literal")
)

// Unquote decodes a C string literal as spelled by clang, e.g. "\"%d\\n\"".
// Only narrow literals (no prefix, or u8) are accepted.
func Unquote(lit string) (string, error) {
	lit = strings.TrimPrefix(lit, "u8")
	if len(lit) < 2 || lit[0] != '"' || lit[len(lit)-1] != '"' {
		if len(lit) > 0 && lit[0] != '"' {
			return "", ErrNotNarrow
		}
		return "", ErrSyntax
	}
	s := lit[1 : len(lit)-1]
	if strings.IndexByte(s, '\\') < 0 {
		return s, nil
	}
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); {
		c := s[i]
		if c != '\\' {
			b.WriteByte(c)
			i++
			continue
		}
		if i+1 >= len(s) {
			return "", ErrSyntax
		}
		c = s[i+1]
		i += 2
		switch c {
		case 'a':
			b.WriteByte('\a')
		case 'b':
			b.WriteByte('\b')
		case 'f':
			b.WriteByte('\f')
		case 'n':
			b.WriteByte('\n')
		case 'r':
			b.WriteByte('\r')
		case 't':
			b.WriteByte('\t')
		case 'v':
			b.WriteByte('\v')
		case 'e', 'E': // GNU extension
			b.WriteByte(0x1b)
		case '\\', '\'', '"', '?':
			b.WriteByte(c)
		case '0', '1', '2', '3', '4', '5', '6', '7':
			v := int(c - '0')
			for n := 1; n < 3 && i < len(s) && isOctal(s[i]); n++ {
				v = v<<3 | int(s[i]-'0')
				i++
			}
			b.WriteByte(byte(v))
		case 'x':
			v, n := 0, 0
			for ; i < len(s) && isHex(s[i]); i++ {
				v = v<<4 | unhex(s[i])
				n++
			}
			if n == 0 {
				return "", ErrSyntax
			}
			b.WriteByte(byte(v))
		case 'u', 'U':
			n := 4
			if c == 'U' {
				n = 8
			}
			if i+n > len(s) {
				return "", ErrSyntax
			}
			v := 0
			for _, h := range []byte(s[i : i+n]) {
				if !isHex(h) {
					return "", ErrSyntax
				}
				v = v<<4 | unhex(h)
			}
			i += n
			var buf [utf8.UTFMax]byte
			b.Write(buf[:utf8.EncodeRune(buf[:], rune(v))])
		default:
			return "", ErrSyntax
		}
	}
	return b.String(), nil
}

func isOctal(c byte) bool {
	return c >= '0' && c <= '7'
}

func isHex(c byte) bool {
	return c >= '0' && c <= '9' || c >= 'a' && c <= 'f' || c >= 'A' && c <= 'F'
}

func unhex(c byte) int {
	switch {
	case c >= 'a':
		return int(c-'a') + 10
	case c >= 'A':
		return int(c-'A') + 10
	}
	return int(c - '0')
}
