package diag

import (
	"fmt"
	"strings"
)

// Severity defines the importance of a diagnostic.
type Severity uint8

const (
	// SevInfo marks pending rewrites and timings.
	SevInfo Severity = iota
	// SevWarning marks call sites left untouched.
	SevWarning
	SevError
)

func (s Severity) String() string {
	switch s {
	case SevInfo:
		return "INFO"
	case SevWarning:
		return "WARNING"
	case SevError:
		return "ERROR"
	}
	return "UNKNOWN"
}

// ParseSeverity accepts the lower- or upper-case names printed by String,
// plus "warn".
func ParseSeverity(s string) (Severity, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "info":
		return SevInfo, nil
	case "warning", "warn":
		return SevWarning, nil
	case "error":
		return SevError, nil
	}
	return 0, fmt.Errorf("unknown severity %q (expected info|warning|error)", s)
}

// AtLeast returns a Bag.Filter predicate keeping diagnostics of sev or higher.
func AtLeast(sev Severity) func(*Diagnostic) bool {
	return func(d *Diagnostic) bool { return d.Severity >= sev }
}
