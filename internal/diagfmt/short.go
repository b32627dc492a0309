package diagfmt

import (
	"io"

	"logport/internal/diag"
	"logport/internal/source"
)

// Short writes one line per diagnostic: "warning LOG1002 src/a.cpp:3:5 message".
// Notes and fix replacements get their own "note" and "fix" lines.
func Short(w io.Writer, bag *diag.Bag, fs *source.FileSet, opts ShortOpts) error {
	text := diag.FormatLines(bag.Items(), fs, diag.LineOptions{
		PathMode:     pathModeName(opts.PathMode),
		IncludeNotes: opts.IncludeNotes,
		IncludeFixes: opts.IncludeFixes,
	})
	if text == "" {
		return nil
	}
	_, err := io.WriteString(w, text+"\n")
	return err
}
