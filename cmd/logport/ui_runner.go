package main

import (
	"context"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"logport/internal/driver"
	"logport/internal/ui"
)

type runOutcome struct {
	report *driver.Report
	err    error
}

func runWithUI(ctx context.Context, title string, files []string, req driver.Request) (*driver.Report, error) {
	events := make(chan driver.Event, 256)
	outcomeCh := make(chan runOutcome, 1)

	go func() {
		reqCopy := req
		reqCopy.Progress = driver.ChannelSink{Ch: events}
		report, err := driver.Run(ctx, reqCopy)
		outcomeCh <- runOutcome{report: report, err: err}
		close(events)
	}()

	model := ui.NewProgressModel(title, files, events)
	program := tea.NewProgram(model, tea.WithOutput(os.Stdout))
	_, uiErr := program.Run()
	outcome := <-outcomeCh
	if uiErr != nil {
		return outcome.report, uiErr
	}
	return outcome.report, outcome.err
}

// runBatch picks between the progress view and a plain run.
func runBatch(ctx context.Context, title string, mode uiMode, quiet bool, req driver.Request) (*driver.Report, error) {
	if shouldUseTUI(mode, quiet, len(req.Paths)) {
		return runWithUI(ctx, title, req.Paths, req)
	}
	return driver.Run(ctx, req)
}
