package callsite

import (
	"errors"
	"testing"
)

func TestScanArg(t *testing.T) {
	tests := []struct {
		name  string
		text  string
		start int
		want  int
	}{
		{name: "comma", text: `LOG_INFO, "x")`, want: 8},
		{name: "closing paren", text: `x)`, want: 1},
		{name: "empty argument", text: `)`, want: 0},
		{name: "comma inside string", text: `"a, b", c)`, want: 6},
		{name: "paren inside string", text: `"a) b")`, want: 6},
		{name: "nested call with comma", text: `alcGetString(device, err))`, want: 25},
		{name: "ternary with parens and strings", text: `(x == nullptr) ? "a" : "b")`, want: 26},
		{name: "escaped quote inside string", text: `"id: \"%s\"", p)`, want: 12},
		{name: "escaped paren outside string", text: `a\), b)`, want: 3},
		{name: "start offset", text: `skip, take)`, start: 5, want: 10},
		{name: "paren char literal", text: `')'); next();`, want: 3},
		{name: "comma char literal", text: `',', x)`, want: 3},
		{name: "escaped apostrophe char literal", text: `'\'', x)`, want: 4},
		{name: "quote char literal", text: `'"', x)`, want: 3},
		{name: "wide char literal", text: `L')')`, want: 4},
		{name: "digit separator", text: `1'000'000, x)`, want: 9},
		{name: "hex digit separator", text: `0xFF'FF)`, want: 7},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ScanArg([]byte(tt.text), tt.start)
			if err != nil {
				t.Fatalf("ScanArg(%q): %v", tt.text, err)
			}
			if got != tt.want {
				t.Fatalf("ScanArg(%q) = %d, want %d", tt.text, got, tt.want)
			}
		})
	}
}

func TestScanArgUnterminated(t *testing.T) {
	tests := []string{
		`"never closed, )`,
		`f(a, b`,
		`trailing backslash \`,
		`'), x)`,
		``,
	}
	for _, text := range tests {
		if _, err := ScanArg([]byte(text), 0); !errors.Is(err, ErrUnterminatedSpan) {
			t.Errorf("ScanArg(%q) err = %v, want ErrUnterminatedSpan", text, err)
		}
	}
}
