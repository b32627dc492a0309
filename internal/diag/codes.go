package diag

import (
	"fmt"
)

type Code uint16

const (
	// Неизвестная ошибка - на первое время
	UnknownCode Code = 0

	// Call-site problems found while rewriting
	LogInfo             Code = 1000
	LogUnterminatedSpan Code = 1001
	LogTooManyArguments Code = 1002
	LogTooFewArguments  Code = 1003
	LogMissingFormat    Code = 1004
	LogEmptyArgument    Code = 1005

	// Rewrites (info level, produced by check/dry-run)
	RwInfo      Code = 2000
	RwRewritten Code = 2001

	// I/O
	IOInfo          Code = 5000
	IOLoadFileError Code = 5001
	IOWriteError    Code = 5002
	IOVerifyError   Code = 5003

	ObsInfo    Code = 6000
	ObsTimings Code = 6001
)

var (
	codeDescription = map[Code]string{
		UnknownCode:         "Unknown error",
		LogInfo:             "Call-site information",
		LogUnterminatedSpan: "Unterminated argument list",
		LogTooManyArguments: "More arguments than placeholders",
		LogTooFewArguments:  "More placeholders than arguments",
		LogMissingFormat:    "Call has no format argument",
		LogEmptyArgument:    "Placeholder argument is empty",
		RwInfo:              "Rewrite information",
		RwRewritten:         "Call can be rewritten to stream logging",
		IOInfo:              "I/O information",
		IOLoadFileError:     "I/O load file error",
		IOWriteError:        "I/O write file error",
		IOVerifyError:       "Rewrite verification failed",
		ObsInfo:             "Observability information",
		ObsTimings:          "Pipeline timings",
	}
)

func (c Code) ID() string {
	switch ic := int(c); {
	case ic >= 1000 && ic < 2000:
		return fmt.Sprintf("LOG%04d", ic)
	case ic >= 2000 && ic < 3000:
		return fmt.Sprintf("RW%04d", ic)
	case ic >= 5000 && ic < 6000:
		return fmt.Sprintf("IO%04d", ic)
	case ic >= 6000 && ic < 7000:
		return fmt.Sprintf("OBS%04d", ic)
	}
	return "E0000"
}

func (c Code) Title() string {
	desc, ok := codeDescription[c]
	if !ok {
		return codeDescription[Code(0)]
	}
	return desc
}

func (c Code) String() string {
	return fmt.Sprintf("[%s]: %s", c.ID(), c.Title())
}
