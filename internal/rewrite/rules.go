package rewrite

import (
	"fmt"
	"hash/fnv"
	"strings"
)

// Severities recognised verbatim in the level argument. Anything else is
// logged as INFO with the original level kept as a literal prefix.
var Severities = []string{"ERROR", "WARNING", "INFO", "FATAL"}

const defaultSeverity = "INFO"

// Rules configure which calls are rewritten and how the replacement looks.
type Rules struct {
	// Keyword is the call prefix up to and including the opening parenthesis.
	Keyword string
	// LevelPrefix must follow Keyword immediately; it is stripped from the level.
	LevelPrefix string
	// Tidy drops empty string literals produced at the edges of the format.
	Tidy bool
	// TrimArgs trims whitespace around the format and argument text.
	TrimArgs bool
}

// DefaultRules match `debug(LOG_LEVEL, "format", ...)`.
func DefaultRules() Rules {
	return Rules{
		Keyword:     "debug(",
		LevelPrefix: "LOG_",
		Tidy:        true,
		TrimArgs:    true,
	}
}

// Validate checks that the rules describe a call.
func (r Rules) Validate() error {
	if r.Keyword == "" {
		return fmt.Errorf("rewrite: empty keyword")
	}
	if !strings.HasSuffix(r.Keyword, "(") {
		return fmt.Errorf("rewrite: keyword %q must end with '('", r.Keyword)
	}
	if strings.Count(r.Keyword, "(") != 1 {
		return fmt.Errorf("rewrite: keyword %q must contain exactly one '('", r.Keyword)
	}
	return nil
}

func (r Rules) needle() string {
	return r.Keyword + r.LevelPrefix
}

// Fingerprint identifies rules whose output differs; used to invalidate caches.
func (r Rules) Fingerprint() uint64 {
	h := fnv.New64a()
	fmt.Fprintf(h, "%s\x00%s\x00%t\x00%t", r.Keyword, r.LevelPrefix, r.Tidy, r.TrimArgs)
	return h.Sum64()
}

func knownSeverity(level string) bool {
	for _, s := range Severities {
		if level == s {
			return true
		}
	}
	return false
}
