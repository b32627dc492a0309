// Package diag defines the diagnostic model shared by the rewriter, the batch
// driver and the CLI.
//
// # Purpose
//
//   - Provide deterministic data structures that capture findings produced
//     while scanning call sites (unterminated argument lists, placeholder and
//     argument count mismatches) and while loading or writing files.
//   - Offer light-weight utilities (Reporter, Bag) that let producers emit
//     diagnostics without coupling to concrete storage or formatting layers.
//   - Model the proposed replacement text as structured edits, so a skipped
//     call still shows what the rewriter would have produced.
//
// # Scope
//
// Package diag does not perform any formatting, IO, CLI integration, or
// interactive behaviour. Rendering lives in internal/diagfmt, write-back in
// internal/fix and orchestration in internal/driver.
//
// # Data model
//
// Diagnostic is the central record:
//
//   - Severity – tri-level enum (Info, Warning, Error).
//   - Code – compact numeric identifier with a stable string form (LOG1002).
//   - Message – human oriented text; keep it short and actionable.
//   - Primary span – the call site (or file) the finding belongs to.
//   - Notes – optional secondary spans, e.g. the first unconsumed argument.
//   - Fixes – optional edits; Applicability says whether they can be applied
//     blindly.
//
// Producers use a Reporter (usually BagReporter) and ReportBuilder chains:
//
//	diag.ReportWarning(r, diag.LogTooManyArguments, call, msg).
//		WithNote(arg, "first unconsumed argument").
//		Emit()
package diag
