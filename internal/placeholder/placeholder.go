// Package placeholder replaces printf-style conversions in a format literal
// with stream insertions of the matching arguments.
package placeholder

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	"logport/internal/callsite"
)

var (
	// ErrTooFewArguments is returned when a placeholder has no argument left to consume.
	ErrTooFewArguments = errors.New("more placeholders than arguments")
	// ErrEmptyArgument is returned when a placeholder's argument is blank.
	ErrEmptyArgument = errors.New("empty argument")
)

// Tokens is the closed set of recognised conversions. Anything else starting
// with '%' is left as is.
var Tokens = []string{"%s", "%d", "%u", "%i", "%lu", "%p", "%ld", "%x", "%f", "%c"}

const (
	spaces      = " \t\r\n\v\f"
	openInsert  = `" << `
	closeInsert = ` << "`
)

// ArgSource yields argument items; *callsite.Args implements it.
type ArgSource interface {
	Next() (callsite.Item, error)
}

// Options tune the emitted text.
type Options struct {
	// TrimArgs strips surrounding whitespace from argument text.
	TrimArgs bool
	// Tidy drops the empty literal left when the format starts or ends with a placeholder.
	Tidy bool
}

// Result is the rewritten format text plus the number of substituted placeholders.
type Result struct {
	Text  string
	Count int
	// Missing is the offset of the first placeholder without an argument (ErrTooFewArguments only).
	Missing int
	// Blank is the offset of the blank argument (ErrEmptyArgument only).
	Blank int
}

// Match returns the length of the placeholder token starting at text[i], or 0.
// "%%" is not a placeholder.
func Match(text []byte, i int) int {
	if i+1 >= len(text) || text[i] != '%' {
		return 0
	}
	switch text[i+1] {
	case 's', 'd', 'u', 'i', 'p', 'x', 'f', 'c':
		return 2
	case 'l':
		if i+2 < len(text) && (text[i+2] == 'u' || text[i+2] == 'd') {
			return 3
		}
	}
	return 0
}

// Count returns the number of placeholders in text.
func Count(text []byte) int {
	n := 0
	for i := 0; i < len(text); i++ {
		if text[i] != '%' {
			continue
		}
		if i+1 < len(text) && text[i+1] == '%' {
			i++
			continue
		}
		if l := Match(text, i); l > 0 {
			n++
			i += l - 1
		}
	}
	return n
}

// Substitute rewrites the format span of text left to right. Every placeholder
// consumes the next item from args and becomes `" << arg << "`, splitting the
// surrounding literal. "%%" is emitted as a single '%'. An argument with a
// top-level operator that binds looser than << is wrapped in parentheses.
//
// When args reaches its final item before all placeholders are filled the
// partial text is returned together with ErrTooFewArguments; a blank argument
// gives ErrEmptyArgument. Scanner errors from args are returned unchanged.
func Substitute(text []byte, format callsite.Span, args ArgSource, opts Options) (Result, error) {
	f := format.Text(text)
	base := format.Start
	if opts.TrimArgs {
		trimmed := bytes.TrimLeft(f, spaces)
		base += len(f) - len(trimmed)
		f = bytes.TrimRight(trimmed, spaces)
	}

	var out strings.Builder
	out.Grow(len(f) + 16)

	res := Result{}
	last := 0 // начало ещё не записанного хвоста f
	for i := 0; i < len(f); i++ {
		if f[i] != '%' {
			continue
		}
		if i+1 < len(f) && f[i+1] == '%' {
			out.Write(f[last : i+1])
			i++
			last = i + 1
			continue
		}
		l := Match(f, i)
		if l == 0 {
			continue
		}

		it, err := args.Next()
		if err != nil {
			return res, err
		}
		if it.Final {
			res.Missing = base + i
			res.Text = out.String()
			return res, fmt.Errorf("%w: placeholder %d (%s) has no argument", ErrTooFewArguments, res.Count+1, f[i:i+l])
		}

		arg := it.Span.Text(text)
		if len(bytes.Trim(arg, spaces)) == 0 {
			res.Blank = it.Span.Start
			res.Text = out.String()
			return res, fmt.Errorf("%w: placeholder %d (%s)", ErrEmptyArgument, res.Count+1, f[i:i+l])
		}
		if opts.TrimArgs {
			arg = bytes.Trim(arg, spaces)
		}

		out.Write(f[last:i])
		if opts.Tidy && res.Count == 0 && out.Len() == 1 && i == 1 && f[0] == '"' {
			// формат начинается с плейсхолдера: `"" << x` -> `x`
			out.Reset()
		} else {
			out.WriteString(openInsert)
		}
		if NeedsParens(arg) {
			out.WriteByte('(')
			out.Write(arg)
			out.WriteByte(')')
		} else {
			out.Write(arg)
		}
		out.WriteString(closeInsert)

		res.Count++
		i += l - 1
		last = i + 1
	}

	tail := f[last:]
	if opts.Tidy && res.Count > 0 && string(tail) == `"` && strings.HasSuffix(out.String(), closeInsert) {
		s := out.String()
		res.Text = s[:len(s)-len(closeInsert)]
		return res, nil
	}
	out.Write(tail)
	res.Text = out.String()
	return res, nil
}

// NeedsParens reports whether arg, placed after <<, would bind to the stream
// instead of staying one operand. That is the case for any operator at the top
// level (outside literals and brackets) whose precedence is not higher than
// <<: shifts, relational and equality, bitwise, logical, ?: and assignment.
// "->" is member access and does not count.
func NeedsParens(arg []byte) bool {
	var quote byte
	depth := 0
	for i := 0; i < len(arg); i++ {
		switch c := arg[i]; {
		case c == '\\':
			i++
		case quote != 0:
			if c == quote {
				quote = 0
			}
		case c == '"':
			quote = c
		case c == '\'' && callsite.OpensChar(arg, i):
			quote = c
		case c == '(' || c == '[' || c == '{':
			depth++
		case c == ')' || c == ']' || c == '}':
			depth--
		case depth != 0:
		case c == '>' && i > 0 && arg[i-1] == '-':
			// ->
		case strings.IndexByte("?=<>&|^", c) >= 0:
			return true
		}
	}
	return false
}
