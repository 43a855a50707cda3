package codegen

import (
	"fmt"
	"strconv"
	"strings"
)

// floatLiteralHex renders v in the hexadecimal floating-point form IFJcode24
// float@ literals use, which Go's strconv already produces in the %x verb.
func floatLiteralHex(v float64) string {
	return strconv.FormatFloat(v, 'x', -1, 64)
}

// escapeString renders s as an IFJcode24 string@ literal body: every byte
// that is whitespace-or-control (<= 0x20), '#' (0x23, the instruction
// comment marker), or '\' (0x5C, the escape marker) is rewritten as a
// three-digit decimal escape \DDD.
func escapeString(s string) string {
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c <= 0x20 || c == '#' || c == '\\' {
			fmt.Fprintf(&b, "\\%03d", c)
			continue
		}
		b.WriteByte(c)
	}
	return b.String()
}
