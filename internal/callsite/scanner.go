// Package callsite splits the argument list of a macro call without parsing
// the host language. It knows about string and character literals, backslash
// escapes and parenthesis nesting, and nothing else.
package callsite

import (
	"errors"
	"fmt"
)

// ErrUnterminatedSpan is returned when the buffer ends before an argument terminator.
var ErrUnterminatedSpan = errors.New("unterminated argument")

// Span is a half-open byte range [Start, End) into a text buffer.
type Span struct {
	Start int
	End   int
}

// Text returns the bytes of text covered by s.
func (s Span) Text(text []byte) []byte {
	return text[s.Start:s.End]
}

// ScanArg returns the offset of the comma or closing parenthesis that ends the
// argument starting at start. Only delimiters outside string and character
// literals and at nesting level zero count. A backslash escapes the following
// byte, so an escaped quote never toggles the literal state.
func ScanArg(text []byte, start int) (int, error) {
	var quote byte // '"' или '\'' пока мы внутри литерала
	depth := 0
	for i := start; i < len(text); i++ {
		switch c := text[i]; {
		case c == '\\':
			i++
		case quote != 0:
			// внутри литерала скобки и запятые ничего не значат
			if c == quote {
				quote = 0
			}
		case c == '"':
			quote = c
		case c == '\'' && OpensChar(text, i):
			quote = c
		case c == '(':
			depth++
		case c == ')':
			if depth == 0 {
				return i, nil
			}
			depth--
		case c == ',' && depth == 0:
			return i, nil
		}
	}
	return 0, fmt.Errorf("%w starting at offset %d", ErrUnterminatedSpan, start)
}

// OpensChar reports whether the apostrophe at i starts a character literal.
// An apostrophe glued to a number (1'000, 0xFF'FF) is a digit separator; an
// encoding prefix (L'x', u8'x') still opens a literal.
func OpensChar(text []byte, i int) bool {
	j := i
	for j > 0 && isWord(text[j-1]) {
		j--
	}
	switch string(text[j:i]) {
	case "", "L", "u", "U", "u8":
		return true
	}
	return false
}

func isWord(c byte) bool {
	return c == '_' || c >= '0' && c <= '9' || c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z'
}
