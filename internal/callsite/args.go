package callsite

import (
	"errors"
)

// ErrDone is returned by Args.Next after the final item has been produced.
var ErrDone = errors.New("argument list exhausted")

// Item is one element of a call's argument sequence. The last item of every
// sequence has Final set and spans the whole parenthesised list, from the
// opening to the closing parenthesis inclusive.
type Item struct {
	Span  Span
	Final bool
}

// Args enumerates the arguments of one call lazily. Items are consumed
// positionally: level, format, substitution arguments, then the final item.
type Args struct {
	text []byte
	open int
	cur  int // offset of the last delimiter seen, starts at the opening paren
	done bool
}

// NewArgs prepares enumeration for the call whose opening parenthesis is at open.
func NewArgs(text []byte, open int) *Args {
	return &Args{text: text, open: open, cur: open}
}

// Next returns the next argument span, then the final whole-call item, then ErrDone.
// A scanning error ends the sequence; the call must be abandoned.
func (a *Args) Next() (Item, error) {
	if a.done {
		return Item{}, ErrDone
	}
	if a.cur != a.open && a.text[a.cur] == ')' {
		a.done = true
		return Item{Span: Span{Start: a.open, End: a.cur + 1}, Final: true}, nil
	}

	start := a.cur + 1
	end, err := ScanArg(a.text, start)
	if err != nil {
		a.done = true
		return Item{}, err
	}
	a.cur = end
	return Item{Span: Span{Start: start, End: end}}, nil
}

// Rest drains the sequence, returning the remaining argument spans and the final item.
func (a *Args) Rest() ([]Span, Item, error) {
	var spans []Span
	for {
		it, err := a.Next()
		if err != nil {
			return spans, Item{}, err
		}
		if it.Final {
			return spans, it, nil
		}
		spans = append(spans, it.Span)
	}
}
