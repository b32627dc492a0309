package fix

// todo: интеграция с git:
// По умолчанию создавать .orig только для незатрекинных файлов.

import (
	"bytes"
	"crypto/sha256"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"logport/internal/diag"
	"logport/internal/source"
)

// ErrNothingToWrite is returned when no change carried edits.
var ErrNothingToWrite = errors.New("nothing to write")

// DefaultBackupSuffix is appended to the path of the untouched copy.
const DefaultBackupSuffix = ".orig"

// Change is the set of edits computed for one file.
type Change struct {
	File  source.FileID
	Edits []diag.TextEdit // original-file coordinates
	// Want, when set, must equal the content obtained by replaying Edits.
	Want []byte
}

// Options configure write-back.
type Options struct {
	DryRun       bool
	Backup       bool
	BackupSuffix string
}

// FileChange summarises modifications performed on a file.
type FileChange struct {
	Path      string
	EditCount int
	Written   bool   // false on dry run
	Backup    string // path of the .orig copy, if any
}

// SkippedChange captures a file that was not written, with a reason.
type SkippedChange struct {
	Path   string
	Code   diag.Code
	Reason string
}

// ApplyResult aggregates written and skipped files.
type ApplyResult struct {
	Changes []FileChange
	Skipped []SkippedChange
}

// Apply replays every change on its file's original content, checks the
// result and writes it back atomically. A failing file is recorded in
// Skipped and does not stop the others.
func Apply(fs *source.FileSet, changes []Change, opts Options) (*ApplyResult, error) {
	result := &ApplyResult{
		Changes: make([]FileChange, 0, len(changes)),
		Skipped: make([]SkippedChange, 0),
	}
	if fs == nil {
		return result, fmt.Errorf("fix: FileSet is nil")
	}
	if opts.BackupSuffix == "" {
		opts.BackupSuffix = DefaultBackupSuffix
	}

	baseDir := fs.BaseDir()
	pending := 0
	for _, ch := range changes {
		if len(ch.Edits) == 0 {
			continue
		}
		pending++

		file := fs.Get(ch.File)
		if file == nil {
			result.Skipped = append(result.Skipped, SkippedChange{
				Code:   diag.IOVerifyError,
				Reason: fmt.Sprintf("unknown file id %d", ch.File),
			})
			continue
		}
		path := file.FormatPath("relative", baseDir)

		fc, skip := applyOne(file, ch, opts)
		if skip != nil {
			skip.Path = path
			result.Skipped = append(result.Skipped, *skip)
			continue
		}
		fc.Path = path
		result.Changes = append(result.Changes, fc)
	}

	sort.SliceStable(result.Changes, func(i, j int) bool {
		return result.Changes[i].Path < result.Changes[j].Path
	})
	if pending == 0 {
		return result, ErrNothingToWrite
	}
	return result, nil
}

func applyOne(file *source.File, ch Change, opts Options) (FileChange, *SkippedChange) {
	if file.Flags&source.FileVirtual != 0 {
		return FileChange{}, &SkippedChange{Code: diag.IOWriteError, Reason: "target file is virtual"}
	}

	out, err := Replay(file.Content, ch.Edits)
	if err != nil {
		return FileChange{}, &SkippedChange{Code: diag.IOVerifyError, Reason: err.Error()}
	}
	if ch.Want != nil && !bytes.Equal(out, ch.Want) {
		return FileChange{}, &SkippedChange{Code: diag.IOVerifyError, Reason: "replayed edits do not reproduce the rewritten text"}
	}

	// #nosec G304 -- path comes from the FileSet
	raw, err := os.ReadFile(file.Path)
	if err != nil {
		return FileChange{}, &SkippedChange{Code: diag.IOWriteError, Reason: fmt.Sprintf("re-read: %v", err)}
	}
	if onDisk, _, derr := source.Decode(file.Path, raw); derr != nil || sha256.Sum256(onDisk) != file.Hash {
		return FileChange{}, &SkippedChange{Code: diag.IOVerifyError, Reason: "file changed on disk since it was read"}
	}

	fc := FileChange{EditCount: len(ch.Edits)}
	if opts.DryRun {
		return fc, nil
	}

	mode := os.FileMode(0o644)
	if info, err := os.Stat(file.Path); err == nil {
		mode = info.Mode().Perm()
	}
	if opts.Backup {
		backup := file.Path + opts.BackupSuffix
		if err := writeAtomic(backup, raw, mode); err != nil {
			return FileChange{}, &SkippedChange{Code: diag.IOWriteError, Reason: fmt.Sprintf("backup: %v", err)}
		}
		fc.Backup = backup
	}
	if err := writeAtomic(file.Path, file.Encoded(out), mode); err != nil {
		return FileChange{}, &SkippedChange{Code: diag.IOWriteError, Reason: err.Error()}
	}
	fc.Written = true
	return fc, nil
}

// Replay applies edits, given in original coordinates, to content. Overlapping
// edits and guards that do not match the original text are errors.
func Replay(content []byte, edits []diag.TextEdit) ([]byte, error) {
	sorted := make([]diag.TextEdit, len(edits))
	for i, e := range edits {
		sorted[i] = copyEdit(e)
	}
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Span.Start == sorted[j].Span.Start {
			return sorted[i].Span.End < sorted[j].Span.End
		}
		return sorted[i].Span.Start < sorted[j].Span.Start
	})

	working := append([]byte(nil), content...)
	applied := make([]diag.TextEdit, 0, len(sorted))
	for _, edit := range sorted {
		if conflictsWithExisting(applied, []diag.TextEdit{edit}) {
			return nil, fmt.Errorf("edit at %s overlaps a previous edit", edit.Span)
		}
		if int(edit.Span.End) > len(content) || edit.Span.End < edit.Span.Start {
			return nil, fmt.Errorf("edit span %s out of range", edit.Span)
		}
		if edit.OldText != "" && string(content[edit.Span.Start:edit.Span.End]) != edit.OldText {
			return nil, fmt.Errorf("existing text at %s does not match expected content", edit.Span)
		}
		start := int(edit.Span.Start) + cumulativeDelta(applied, int(edit.Span.Start))
		end := int(edit.Span.End) + cumulativeDelta(applied, int(edit.Span.End))
		suffix := append([]byte(nil), working[end:]...)
		working = append(append(working[:start], edit.NewText...), suffix...)
		applied = insertEditSorted(applied, edit)
	}
	return working, nil
}

// writeAtomic writes data next to path and renames it into place.
func writeAtomic(path string, data []byte, mode os.FileMode) error {
	f, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return err
	}
	tmp := f.Name()
	cleanup := func() { _ = os.Remove(tmp) }

	if _, err := f.Write(data); err != nil {
		_ = f.Close()
		cleanup()
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := f.Chmod(mode); err != nil {
		_ = f.Close()
		cleanup()
		return fmt.Errorf("chmod %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		cleanup()
		return fmt.Errorf("close %s: %w", path, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		cleanup()
		return fmt.Errorf("rename %s: %w", path, err)
	}
	return nil
}

func conflictsWithExisting(existing []diag.TextEdit, edits []diag.TextEdit) bool {
	for _, prev := range existing {
		for _, cand := range edits {
			if spansConflict(prev, cand) {
				return true
			}
		}
	}
	return false
}

// spansConflict reports whether two text edits' spans overlap.
// Spans are treated as half-open intervals [Start, End). Two zero-length edits
// (Start == End) never conflict. A zero-length edit conflicts with a non-zero
// span if its position is within that span (Start <= pos < End). For two
// non-zero spans, any overlap yields a conflict.
func spansConflict(a, b diag.TextEdit) bool {
	aStart, aEnd := a.Span.Start, a.Span.End
	bStart, bEnd := b.Span.Start, b.Span.End

	if aStart == aEnd && bStart == bEnd {
		return false
	}
	if aStart == aEnd {
		return bStart <= aStart && aStart < bEnd
	}
	if bStart == bEnd {
		return aStart <= bStart && bStart < aEnd
	}
	return aStart < bEnd && bStart < aEnd
}

func copyEdit(e diag.TextEdit) diag.TextEdit {
	return diag.TextEdit{
		Span:    e.Span,
		NewText: e.NewText,
		OldText: e.OldText,
	}
}

func cumulativeDelta(edits []diag.TextEdit, pos int) int {
	delta := 0
	for _, e := range edits {
		eStart := int(e.Span.Start)
		if eStart > pos {
			break
		}
		eEnd := int(e.Span.End)
		length := eEnd - eStart
		change := len(e.NewText) - length
		if eEnd <= pos {
			delta += change
		}
	}
	return delta
}

func insertEditSorted(edits []diag.TextEdit, edit diag.TextEdit) []diag.TextEdit {
	insertIdx := sort.Search(len(edits), func(i int) bool {
		if edits[i].Span.Start == edit.Span.Start {
			return edits[i].Span.End >= edit.Span.End
		}
		return edits[i].Span.Start > edit.Span.Start
	})
	edits = append(edits, diag.TextEdit{})
	copy(edits[insertIdx+1:], edits[insertIdx:])
	edits[insertIdx] = edit
	return edits
}
