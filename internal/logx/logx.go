// Package logx configures operator-facing logging for logport.
//
// Everything goes to stderr; stdout carries results only (summaries, rendered
// diagnostics, rewritten text for --stdout). Setup must run before New: child
// loggers copy the default logger's state when they are created.
//
//	logx.Setup(verbose, quiet, jsonFormat)
//	logger := logx.New("driver")
//	logger.Debug("rewrote file", "path", path, "calls", n)
package logx

import (
	"io"
	"os"

	"github.com/charmbracelet/log"
)

// Setup sets the global level and formatter. quiet wins over verbose.
func Setup(verbose, quiet, jsonFormat bool) {
	level := log.InfoLevel
	if verbose {
		level = log.DebugLevel
	}
	if quiet {
		level = log.ErrorLevel
	}

	log.SetLevel(level)
	log.SetOutput(os.Stderr)
	log.SetReportTimestamp(jsonFormat)

	if jsonFormat {
		log.SetFormatter(log.JSONFormatter)
	} else {
		log.SetFormatter(log.TextFormatter)
	}
}

// New returns a logger prefixed with component.
func New(component string) *log.Logger {
	return log.WithPrefix(component)
}

// SetOutput redirects the default logger, mostly for tests.
func SetOutput(w io.Writer) {
	log.SetOutput(w)
}
