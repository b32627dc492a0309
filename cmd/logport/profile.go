package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"logport/internal/logx"
	"logport/internal/prof"
)

// profiling is the session started by the root command; main stops it after
// Execute so profiles are complete even when a command fails.
var profiling *prof.Session

func setupProfiling(cmd *cobra.Command) error {
	var opts prof.Options
	var err error
	if opts.CPU, err = cmd.Flags().GetString("cpu-profile"); err != nil {
		return fmt.Errorf("failed to get cpu-profile flag: %w", err)
	}
	if opts.Mem, err = cmd.Flags().GetString("mem-profile"); err != nil {
		return fmt.Errorf("failed to get mem-profile flag: %w", err)
	}
	if opts.Trace, err = cmd.Flags().GetString("runtime-trace"); err != nil {
		return fmt.Errorf("failed to get runtime-trace flag: %w", err)
	}
	if !opts.Enabled() {
		return nil
	}
	session, err := prof.Start(opts)
	if err != nil {
		return err
	}
	profiling = session
	return nil
}

func stopProfiling() {
	if err := profiling.Stop(); err != nil {
		logx.New("prof").Error("failed to finish profiles", "err", err)
	}
	profiling = nil
}
