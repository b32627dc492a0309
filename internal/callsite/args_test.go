package callsite

import (
	"errors"
	"strings"
	"testing"
)

func collect(t *testing.T, text string) ([]string, Item) {
	t.Helper()
	buf := []byte(text)
	open := strings.IndexByte(text, '(')
	args := NewArgs(buf, open)

	var got []string
	for {
		it, err := args.Next()
		if err != nil {
			t.Fatalf("Next: %v", err)
		}
		if it.Final {
			if _, err := args.Next(); !errors.Is(err, ErrDone) {
				t.Fatalf("expected ErrDone after final item, got %v", err)
			}
			return got, it
		}
		got = append(got, string(it.Span.Text(buf)))
	}
}

func TestArgsSequence(t *testing.T) {
	text := `debug(LOG_ERROR, "Couldn't init: %s", alcGetString(device, err));`
	got, final := collect(t, text)

	want := []string{"LOG_ERROR", ` "Couldn't init: %s"`, " alcGetString(device, err)"}
	if len(got) != len(want) {
		t.Fatalf("got %d args %q, want %d", len(got), got, len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("arg %d = %q, want %q", i, got[i], want[i])
		}
	}
	if string(final.Span.Text([]byte(text))) != `(LOG_ERROR, "Couldn't init: %s", alcGetString(device, err))` {
		t.Errorf("final span = %q", final.Span.Text([]byte(text)))
	}
}

func TestArgsNoTrailingArguments(t *testing.T) {
	got, final := collect(t, `debug(LOG_FATAL, "Unimplemented curve ID")`)
	if len(got) != 2 {
		t.Fatalf("expected level and format only, got %q", got)
	}
	if final.Span.End != len(`debug(LOG_FATAL, "Unimplemented curve ID")`) {
		t.Fatalf("final span must end after the closing paren, got %+v", final.Span)
	}
}

func TestArgsUnterminated(t *testing.T) {
	text := []byte(`debug(LOG_INFO, "broken`)
	args := NewArgs(text, 5)
	if _, err := args.Next(); err != nil {
		t.Fatalf("level should scan fine: %v", err)
	}
	if _, err := args.Next(); !errors.Is(err, ErrUnterminatedSpan) {
		t.Fatalf("expected ErrUnterminatedSpan, got %v", err)
	}
	if _, err := args.Next(); !errors.Is(err, ErrDone) {
		t.Fatalf("sequence must end after an error, got %v", err)
	}
}

func TestArgsRest(t *testing.T) {
	text := []byte(`debug(LOG_INFO, "%d %d", a, f(b, c), "d")`)
	args := NewArgs(text, 5)
	_, _ = args.Next()
	_, _ = args.Next()

	rest, final, err := args.Rest()
	if err != nil {
		t.Fatalf("Rest: %v", err)
	}
	if len(rest) != 3 {
		t.Fatalf("expected 3 remaining args, got %d", len(rest))
	}
	if got := string(rest[1].Text(text)); got != " f(b, c)" {
		t.Errorf("rest[1] = %q", got)
	}
	if !final.Final {
		t.Error("Rest must return the final item")
	}
}
