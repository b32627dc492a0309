package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"logport/internal/diag"
	"logport/internal/diagfmt"
	"logport/internal/driver"
	"logport/internal/observ"
)

var checkCmd = &cobra.Command{
	Use:   "check [paths...]",
	Short: "Report calls that would be rewritten, without writing",
	Long: `Scan the given files or directories and report every call logport would
rewrite or has to skip. Nothing is written. Exits with status 1 when rewrites
are pending or any file failed.`,
	RunE: runCheck,
}

func init() {
	checkCmd.Flags().String("format", "pretty", "output format (pretty|json|short)")
	checkCmd.Flags().Bool("diff", false, "show before/after lines of every pending rewrite")
	checkCmd.Flags().Bool("with-notes", true, "include diagnostic notes in output")
	checkCmd.Flags().String("min-severity", "info", "hide diagnostics below this severity (info|warning|error)")
	checkCmd.Flags().Bool("fullpath", false, "emit absolute file paths in output")
	checkCmd.Flags().Int("jobs", 0, "max parallel workers (0=auto)")
	checkCmd.Flags().Bool("cache", false, "skip files cached as clean")
}

func runCheck(cmd *cobra.Command, args []string) error {
	s, err := loadSettings(cmd)
	if err != nil {
		return err
	}
	format, err := cmd.Flags().GetString("format")
	if err != nil {
		return fmt.Errorf("failed to get format flag: %w", err)
	}
	format = strings.ToLower(format)
	switch format {
	case "pretty", "json", "short":
	default:
		return fmt.Errorf("unknown format: %s", format)
	}
	showDiff, err := cmd.Flags().GetBool("diff")
	if err != nil {
		return fmt.Errorf("failed to get diff flag: %w", err)
	}
	withNotes, err := cmd.Flags().GetBool("with-notes")
	if err != nil {
		return fmt.Errorf("failed to get with-notes flag: %w", err)
	}
	fullPath, err := cmd.Flags().GetBool("fullpath")
	if err != nil {
		return fmt.Errorf("failed to get fullpath flag: %w", err)
	}
	minSevStr, err := cmd.Flags().GetString("min-severity")
	if err != nil {
		return fmt.Errorf("failed to get min-severity flag: %w", err)
	}
	minSev, err := diag.ParseSeverity(minSevStr)
	if err != nil {
		return err
	}
	pathMode := diagfmt.PathModeRelative
	if fullPath {
		pathMode = diagfmt.PathModeAbsolute
	}

	timer := observ.NewTimer()
	files, err := s.sources(args, timer)
	if err != nil {
		return err
	}
	cache := s.openCache()
	defer func() {
		if cache != nil {
			_ = cache.Close()
		}
	}()

	req := s.request()
	req.Paths = files
	req.DryRun = true
	req.ReportRewrites = true
	req.Cache = cache
	req.Timer = timer

	report, err := driver.Run(cmd.Context(), req)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	bag := report.Diagnostics()
	bag.Filter(diag.AtLeast(minSev))
	colored := s.color.enabled(os.Stdout)
	switch format {
	case "pretty":
		diagfmt.Pretty(out, bag, report.FileSet, diagfmt.PrettyOpts{
			Color:     colored,
			PathMode:  pathMode,
			ShowNotes: withNotes,
			ShowFixes: !showDiff,
		})
	case "short":
		if err := diagfmt.Short(out, bag, report.FileSet, diagfmt.ShortOpts{
			PathMode:     pathMode,
			IncludeNotes: withNotes,
			IncludeFixes: showDiff,
		}); err != nil {
			return err
		}
	case "json":
		if s.timings {
			report.AppendTimings(bag)
		}
		if err := diagfmt.JSON(out, bag, report.FileSet, diagfmt.JSONOpts{
			IncludePositions: true,
			PathMode:         pathMode,
			IncludeNotes:     withNotes,
			IncludeFixes:     true,
			IncludePreviews:  showDiff,
		}); err != nil {
			return err
		}
	}
	if showDiff && format == "pretty" {
		diagfmt.Preview(out, report.FileSet, pendingEdits(report), diagfmt.PreviewOpts{
			Color:    colored,
			PathMode: pathMode,
		})
	}
	if format != "json" && !s.quiet {
		printSummary(os.Stderr, report, true)
	}
	printTimings(s.timings, timer)

	t := report.Totals()
	if t.Changed > 0 || t.Failed > 0 || report.HasErrors() {
		return &exitError{code: 1}
	}
	return nil
}
