package diagfmt

import "logport/internal/source"

// PathMode specifies how file paths are displayed.
type PathMode uint8

const (
	// PathModeAuto keeps short or relative paths and shortens long absolute ones.
	PathModeAuto PathMode = iota
	// PathModeAbsolute always uses absolute paths.
	PathModeAbsolute
	PathModeRelative
	PathModeBasename
)

// PrettyOpts configures pretty-printing of diagnostics.
type PrettyOpts struct {
	Color       bool
	Context     int8 // строки исходника перед основной
	PathMode    PathMode
	ShowNotes   bool
	ShowFixes   bool
	ShowPreview bool
}

// JSONOpts configures JSON output of diagnostics.
type JSONOpts struct {
	IncludePositions bool // добавить line/col
	PathMode         PathMode
	Max              int // обрезка вывода, не Bag
	IncludeNotes     bool
	IncludeFixes     bool
	IncludePreviews  bool
}

// ShortOpts configures the one-line-per-entry output.
type ShortOpts struct {
	PathMode     PathMode
	IncludeNotes bool
	IncludeFixes bool
}

// PreviewOpts configures before/after rendering of edits.
type PreviewOpts struct {
	Color    bool
	PathMode PathMode
}

func pathModeName(mode PathMode) string {
	switch mode {
	case PathModeAbsolute:
		return "absolute"
	case PathModeRelative:
		return "relative"
	case PathModeBasename:
		return "basename"
	default:
		return "auto"
	}
}

func formatPath(fs *source.FileSet, f *source.File, mode PathMode) string {
	return f.FormatPath(pathModeName(mode), fs.BaseDir())
}
