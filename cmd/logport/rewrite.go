package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"logport/internal/driver"
	"logport/internal/observ"
)

var rewriteCmd = &cobra.Command{
	Use:   "rewrite [paths...]",
	Short: "Rewrite debug(LOG_*, ...) calls in place",
	Long: `Rewrite every debug(LOG_*, ...) call in the given files or directories.
Without paths the [scan].roots of logport.toml (or ".") are used. Use "-" to
read one file from stdin and write the result to stdout.`,
	RunE: runRewrite,
}

func init() {
	rewriteCmd.Flags().Bool("dry-run", false, "compute and verify rewrites without writing files")
	rewriteCmd.Flags().Bool("stdout", false, "print the rewritten file to stdout instead of writing it (single file)")
	rewriteCmd.Flags().Bool("backup", false, "keep the original as <file>.orig")
	rewriteCmd.Flags().Int("jobs", 0, "max parallel workers (0=auto)")
	rewriteCmd.Flags().Bool("cache", false, "skip files cached as clean")
	rewriteCmd.Flags().String("ui", "auto", "progress UI (auto|on|off)")
}

func runRewrite(cmd *cobra.Command, args []string) error {
	s, err := loadSettings(cmd)
	if err != nil {
		return err
	}
	dryRun, err := cmd.Flags().GetBool("dry-run")
	if err != nil {
		return fmt.Errorf("failed to get dry-run flag: %w", err)
	}
	toStdout, err := cmd.Flags().GetBool("stdout")
	if err != nil {
		return fmt.Errorf("failed to get stdout flag: %w", err)
	}
	uiStr, err := cmd.Flags().GetString("ui")
	if err != nil {
		return fmt.Errorf("failed to get ui flag: %w", err)
	}
	mode, err := readUIMode(uiStr)
	if err != nil {
		return err
	}

	if len(args) == 1 && args[0] == "-" {
		return rewriteStdin(cmd, s)
	}
	if toStdout {
		if len(args) != 1 {
			return errors.New("--stdout needs exactly one file")
		}
		return rewriteToStdout(cmd, s, args[0])
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
	req.DryRun = dryRun
	req.Cache = cache
	req.Timer = timer

	report, err := runBatch(cmd.Context(), "Rewriting", mode, s.quiet, req)
	if err != nil {
		return err
	}

	printDiagnostics(os.Stderr, report, s.color.enabled(os.Stderr))
	out := cmd.OutOrStdout()
	if !s.quiet {
		printSummary(out, report, dryRun)
		printBackups(out, report)
	}
	printTimings(s.timings, timer)

	if report.Totals().Failed > 0 {
		return &exitError{code: 1}
	}
	return nil
}

// rewriteStdin reads one translation unit from stdin and prints the result.
func rewriteStdin(cmd *cobra.Command, s *settings) error {
	raw, err := io.ReadAll(cmd.InOrStdin())
	if err != nil {
		return fmt.Errorf("read stdin: %w", err)
	}
	report, err := driver.RewriteInput("<stdin>", raw, s.request())
	if err != nil {
		return err
	}
	return emitRewritten(cmd, s, report)
}

func rewriteToStdout(cmd *cobra.Command, s *settings, path string) error {
	req := s.request()
	req.Paths = []string{path}
	req.DryRun = true
	report, err := driver.Run(cmd.Context(), req)
	if err != nil {
		return err
	}
	return emitRewritten(cmd, s, report)
}

func emitRewritten(cmd *cobra.Command, s *settings, report *driver.Report) error {
	printDiagnostics(os.Stderr, report, s.color.enabled(os.Stderr))
	printTimings(s.timings, report.Timer)
	res := report.Files[0]
	if res.Status == driver.FileFailed {
		return &exitError{code: 1}
	}
	file := report.FileSet.Get(res.FileID)
	text := res.Rewrite.Text
	if text == nil {
		text = file.Content
	}
	if _, err := cmd.OutOrStdout().Write(file.Encoded(text)); err != nil {
		return err
	}
	return nil
}
