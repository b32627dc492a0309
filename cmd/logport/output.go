package main

import (
	"fmt"
	"io"
	"os"

	"logport/internal/diag"
	"logport/internal/diagfmt"
	"logport/internal/driver"
	"logport/internal/observ"
)

// printDiagnostics renders warnings and errors for an operator.
func printDiagnostics(w io.Writer, report *driver.Report, colored bool) {
	bag := report.Diagnostics()
	if bag.Len() == 0 {
		return
	}
	diagfmt.Pretty(w, bag, report.FileSet, diagfmt.PrettyOpts{
		Color:     colored,
		Context:   0,
		PathMode:  diagfmt.PathModeRelative,
		ShowNotes: true,
		ShowFixes: true,
	})
}

func printSummary(w io.Writer, report *driver.Report, dryRun bool) {
	t := report.Totals()
	verb := "rewrote"
	if dryRun {
		verb = "would rewrite"
	}
	fmt.Fprintf(w, "%s %d call(s) in %d of %d file(s)", verb, t.Rewritten, t.Changed, t.Files)
	if t.Skipped > 0 {
		fmt.Fprintf(w, ", %d call(s) skipped", t.Skipped)
	}
	if t.Cached > 0 {
		fmt.Fprintf(w, ", %d cached", t.Cached)
	}
	if t.Failed > 0 {
		fmt.Fprintf(w, ", %d failed", t.Failed)
	}
	fmt.Fprintln(w)
}

// printBackups lists the .orig copies written next to rewritten files.
func printBackups(w io.Writer, report *driver.Report) {
	for i := range report.Files {
		if b := report.Files[i].Backup; b != "" {
			fmt.Fprintf(w, "backup: %s\n", b)
		}
	}
}

func printTimings(enabled bool, timer *observ.Timer) {
	if !enabled || timer == nil {
		return
	}
	fmt.Fprint(os.Stderr, timer.Summary())
}

// pendingEdits collects every computed rewrite for previews.
func pendingEdits(report *driver.Report) []diag.TextEdit {
	var edits []diag.TextEdit
	for i := range report.Files {
		edits = append(edits, report.Files[i].Rewrite.Edits...)
	}
	return edits
}
