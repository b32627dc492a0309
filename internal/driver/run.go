package driver

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"logport/internal/dcache"
	"logport/internal/diag"
	"logport/internal/fix"
	"logport/internal/logx"
	"logport/internal/observ"
	"logport/internal/rewrite"
	"logport/internal/source"
)

// FileStatus is the final state of one file.
type FileStatus uint8

const (
	// FileClean: no call sites at all.
	FileClean FileStatus = iota
	// FileCached: skipped, the cache knows the content is clean.
	FileCached
	// FileUnchanged: call sites found, none could be rewritten.
	FileUnchanged
	// FilePending: rewrites computed but not written (dry run or check).
	FilePending
	// FileRewritten: rewrites written back.
	FileRewritten
	// FileFailed: load, verification or write failed.
	FileFailed
)

func (s FileStatus) String() string {
	switch s {
	case FileClean:
		return "clean"
	case FileCached:
		return "cached"
	case FileUnchanged:
		return "unchanged"
	case FilePending:
		return "pending"
	case FileRewritten:
		return "rewritten"
	case FileFailed:
		return "failed"
	}
	return "unknown"
}

// Request describes one batch run.
type Request struct {
	Paths          []string
	BaseDir        string
	Rules          rewrite.Rules
	Jobs           int // 0 = GOMAXPROCS
	MaxDiagnostics int
	// DryRun computes and verifies everything but writes nothing.
	DryRun bool
	Backup bool
	// ReportRewrites adds an info diagnostic with a fix for every rewritable call.
	ReportRewrites bool
	Cache          *dcache.Cache
	Progress       ProgressSink
	// Timer collects phases; a fresh one is used when nil.
	Timer *observ.Timer
}

// FileResult is the outcome for one input file.
type FileResult struct {
	Path    string
	FileID  source.FileID
	Status  FileStatus
	Bag     *diag.Bag
	Rewrite rewrite.Result
	Backup  string
	Elapsed time.Duration
}

// Report aggregates a batch run.
type Report struct {
	FileSet *source.FileSet
	Files   []FileResult
	Timer   *observ.Timer
}

// Totals are counters over all files.
type Totals struct {
	Files     int
	Changed   int // files rewritten or pending
	Rewritten int // call sites
	Skipped   int // call sites
	Cached    int
	Failed    int
}

// Run processes req.Paths: files are loaded serially into one FileSet, then
// rewritten by at most req.Jobs workers. A failure on one file is recorded in
// its FileResult; the returned error is only set for cancellation.
func Run(ctx context.Context, req Request) (*Report, error) {
	logger := logx.New("driver")
	if err := req.Rules.Validate(); err != nil {
		return nil, err
	}

	timer := req.Timer
	if timer == nil {
		timer = observ.NewTimer()
	}
	fileSet := source.NewFileSetWithBase(req.BaseDir)
	report := &Report{FileSet: fileSet, Timer: timer}
	if len(req.Paths) == 0 {
		return report, nil
	}

	// Предзагружаем все файлы последовательно: FileSet не потокобезопасен
	loadIdx := timer.Begin("load")
	fileIDs := make(map[string]source.FileID, len(req.Paths))
	loadErrors := make(map[string]error)
	for _, path := range req.Paths {
		emit(req.Progress, Event{File: path, Stage: StageLoad, Status: StatusQueued})
		fileID, err := fileSet.Load(path)
		if err != nil {
			// пустой виртуальный файл, чтобы диагностике было на что сослаться
			fileID = fileSet.Add(path, nil, source.FileVirtual)
			loadErrors[path] = err
		}
		fileIDs[path] = fileID
	}
	timer.End(loadIdx, fmt.Sprintf("%d files", len(req.Paths)))

	jobs := req.Jobs
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}
	fingerprint := req.Rules.Fingerprint()

	// Результаты (индексы уникальны для каждой горутины, мьютекс не нужен)
	results := make([]FileResult, len(req.Paths))

	rewriteIdx := timer.Begin("rewrite")
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(min(jobs, len(req.Paths)))

	for i, path := range req.Paths {
		g.Go(func() error {
			select {
			case <-gctx.Done():
				return gctx.Err()
			default:
			}

			began := time.Now()
			bag := diag.NewBag(req.MaxDiagnostics)
			res := FileResult{Path: path, Bag: bag}

			res.FileID = fileIDs[path]
			if loadErr, hadError := loadErrors[path]; hadError {
				bag.Add(&diag.Diagnostic{
					Severity: diag.SevError,
					Code:     diag.IOLoadFileError,
					Message:  fmt.Sprintf("failed to load file: %v", loadErr),
					Primary:  source.Span{File: res.FileID},
				})
				res.Status = FileFailed
				res.Elapsed = time.Since(began)
				results[i] = res
				emit(req.Progress, Event{File: path, Stage: StageLoad, Status: StatusError, Err: loadErr, Elapsed: res.Elapsed})
				return nil
			}

			file := fileSet.Get(res.FileID)
			processFile(fileSet, file, &res, req, fingerprint, logger)
			res.Elapsed = time.Since(began)
			results[i] = res

			status := StatusDone
			switch res.Status {
			case FileCached:
				status = StatusCached
			case FileFailed:
				status = StatusError
			}
			emit(req.Progress, Event{File: path, Stage: StageWrite, Status: status, Elapsed: res.Elapsed})
			return nil
		})
	}

	err := g.Wait()
	report.Files = results
	timer.End(rewriteIdx, fmt.Sprintf("%d jobs", jobs))
	if err != nil {
		return report, err
	}
	return report, nil
}

func processFile(fileSet *source.FileSet, file *source.File, res *FileResult, req Request, fingerprint uint64, logger *log.Logger) {
	if req.Cache != nil {
		clean, err := req.Cache.IsClean(file.Hash, fingerprint)
		if err != nil {
			logger.Warn("cache lookup failed", "path", res.Path, "err", err)
		}
		if clean {
			res.Status = FileCached
			return
		}
	}

	emit(req.Progress, Event{File: res.Path, Stage: StageRewrite, Status: StatusWorking})
	rw := rewrite.Rewrite(file, req.Rules, diag.BagReporter{Bag: res.Bag})
	res.Rewrite = rw

	if len(rw.Calls) == 0 {
		res.Status = FileClean
		if req.Cache != nil {
			if err := req.Cache.MarkClean(file.Hash, file.Path, fingerprint); err != nil {
				logger.Warn("cache store failed", "path", res.Path, "err", err)
			}
		}
		return
	}
	if req.ReportRewrites {
		reportRewrites(res.Bag, rw)
	}
	if !rw.Changed() {
		res.Status = FileUnchanged
		return
	}

	emit(req.Progress, Event{File: res.Path, Stage: StageWrite, Status: StatusWorking})
	applied, err := fix.Apply(fileSet, []fix.Change{{
		File:  file.ID,
		Edits: rw.Edits,
		Want:  rw.Text,
	}}, fix.Options{DryRun: req.DryRun, Backup: req.Backup})
	if err != nil && !errors.Is(err, fix.ErrNothingToWrite) {
		res.Bag.Add(diag.NewError(diag.IOWriteError, source.Span{File: file.ID}, err.Error()))
		res.Status = FileFailed
		return
	}
	for _, sk := range applied.Skipped {
		res.Bag.Add(diag.NewError(sk.Code, source.Span{File: file.ID}, fmt.Sprintf("%s not written: %s", res.Path, sk.Reason)))
		res.Status = FileFailed
	}
	if res.Status == FileFailed {
		return
	}
	res.Status = FilePending
	for _, ch := range applied.Changes {
		if ch.Written {
			res.Status = FileRewritten
			res.Backup = ch.Backup
		}
	}
	logger.Debug("file processed", "path", res.Path, "status", res.Status, "rewritten", rw.Rewritten(), "skipped", rw.Skipped())
}

func reportRewrites(bag *diag.Bag, rw rewrite.Result) {
	for _, e := range rw.Edits {
		d := diag.New(diag.SevInfo, diag.RwRewritten, e.Span, "call can be rewritten to stream logging")
		d.Fixes = append(d.Fixes, fix.ReplaceSpan("rewrite to stream logging", e.Span, e.NewText, e.OldText))
		bag.Add(d)
	}
}

// Totals sums up the report.
func (r *Report) Totals() Totals {
	var t Totals
	if r == nil {
		return t
	}
	t.Files = len(r.Files)
	for i := range r.Files {
		f := &r.Files[i]
		switch f.Status {
		case FilePending, FileRewritten:
			t.Changed++
		case FileCached:
			t.Cached++
		case FileFailed:
			t.Failed++
		}
		t.Rewritten += f.Rewrite.Rewritten()
		t.Skipped += f.Rewrite.Skipped()
	}
	return t
}

// Diagnostics merges every file's bag into one sorted bag.
func (r *Report) Diagnostics() *diag.Bag {
	out := diag.NewBag(0)
	if r == nil {
		return out
	}
	for i := range r.Files {
		if r.Files[i].Bag != nil {
			out.Merge(r.Files[i].Bag)
		}
	}
	out.Sort()
	return out
}

// HasErrors reports whether any file produced an error diagnostic.
func (r *Report) HasErrors() bool {
	if r == nil {
		return false
	}
	for i := range r.Files {
		if r.Files[i].Bag != nil && r.Files[i].Bag.HasErrors() {
			return true
		}
	}
	return false
}

// RewriteInput rewrites content that does not live on disk, such as stdin.
// Nothing is written; the caller emits Files[0].Rewrite.Text.
func RewriteInput(name string, raw []byte, req Request) (*Report, error) {
	if err := req.Rules.Validate(); err != nil {
		return nil, err
	}
	content, flags, err := source.Decode(name, raw)
	if err != nil {
		return nil, err
	}

	timer := req.Timer
	if timer == nil {
		timer = observ.NewTimer()
	}
	idx := timer.Begin("rewrite")
	fileSet := source.NewFileSetWithBase(req.BaseDir)
	id := fileSet.Add(name, content, flags|source.FileVirtual)
	file := fileSet.Get(id)

	res := FileResult{Path: name, FileID: id, Bag: diag.NewBag(req.MaxDiagnostics)}
	res.Rewrite = rewrite.Rewrite(file, req.Rules, diag.BagReporter{Bag: res.Bag})
	if req.ReportRewrites {
		reportRewrites(res.Bag, res.Rewrite)
	}
	switch {
	case res.Rewrite.Changed():
		res.Status = FilePending
	case len(res.Rewrite.Calls) > 0:
		res.Status = FileUnchanged
	}
	timer.End(idx, "stdin")

	return &Report{FileSet: fileSet, Files: []FileResult{res}, Timer: timer}, nil
}
