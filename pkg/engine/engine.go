// Package engine implements Hauler's copy engine: size accounting, per-file
// streamed copy with resume, directory-tree mirroring, throttled progress
// reporting and per-file error aggregation. It must NOT import any
// adapter-specific code (Wails, HTTP frameworks); adapters drive it through
// Config.Reporter and the context passed to Run.
package engine

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// ErrorLogName is the file appended at the destination root when a tree copy
// finishes with per-file failures.
const ErrorLogName = "hauler_errors.log"

const (
	// DefaultBufferSize is the chunk size for streamed copies.
	DefaultBufferSize = 1 << 20
	// DefaultProgressByteDelta is the new-byte threshold between progress samples.
	DefaultProgressByteDelta = 4 << 20
	// DefaultProgressInterval is the time threshold between progress samples.
	DefaultProgressInterval = 150 * time.Millisecond
)

// Outcome is the terminal state of a copy job. Cancellation is deliberately
// its own outcome, distinguishable from both success and failure.
type Outcome string

const (
	OutcomeCompleted           Outcome = "completed"
	OutcomeCompletedWithErrors Outcome = "completed_with_errors"
	OutcomeCancelled           Outcome = "cancelled"
	OutcomeFailed              Outcome = "failed"
)

// Config describes one copy request. It is immutable once Run starts.
type Config struct {
	SourcePath string
	DestRoot   string
	Resume     bool
	Reporter   ProgressReporter

	// Tuning knobs; zero values take the defaults above.
	BufferSize        int
	ProgressByteDelta int64
	ProgressInterval  time.Duration
}

// FileError is one failed file within an otherwise-continuing tree copy.
type FileError struct {
	RelPath string
	Message string
}

// Result is what one Run produces: the terminal outcome and a short
// human-readable status message for the caller to display.
type Result struct {
	Outcome     Outcome
	Message     string
	Failures    int
	ErrorLog    string
	BytesCopied int64
}

// Engine runs exactly one copy job on a single worker. Create a fresh Engine
// per job; it owns the job's transient state (error list, progress counters)
// for the duration of Run.
type Engine struct {
	config Config
	errors []FileError
}

// New creates an engine for one copy request, filling in default tuning.
func New(config Config) *Engine {
	if config.BufferSize <= 0 {
		config.BufferSize = DefaultBufferSize
	}
	if config.ProgressByteDelta <= 0 {
		config.ProgressByteDelta = DefaultProgressByteDelta
	}
	if config.ProgressInterval <= 0 {
		config.ProgressInterval = DefaultProgressInterval
	}
	return &Engine{config: config}
}

// Run executes the copy job. Preconditions (missing source, unwritable
// destination) abort before any byte is transferred; per-file errors during a
// tree copy are recorded and skipped; cancelling ctx surfaces as
// OutcomeCancelled. Run never panics the caller with partial state: the
// returned Result is always terminal.
func (e *Engine) Run(ctx context.Context) Result {
	info, err := CheckSource(e.config.SourcePath)
	if err != nil {
		return Result{Outcome: OutcomeFailed, Message: "Source path does not exist"}
	}

	if err := ProbeWritable(e.config.DestRoot); err != nil {
		return Result{Outcome: OutcomeFailed, Message: fmt.Sprintf("Destination is not writable: %v", err)}
	}

	em := newProgressEmitter(e.config.Reporter, e.config.ProgressByteDelta, e.config.ProgressInterval)
	if info.IsDir() {
		return e.copyTree(ctx, em)
	}
	return e.copySingle(ctx, info, em)
}

// copySingle handles a plain file source: no tree walk, one streamed copy
// into the destination root.
func (e *Engine) copySingle(ctx context.Context, info os.FileInfo, em *progressEmitter) Result {
	size := info.Size()
	em.SetTotal(size)

	dstPath := filepath.Join(e.config.DestRoot, filepath.Base(e.config.SourcePath))

	var offset int64
	if e.config.Resume {
		offset = ResumeOffset(e.config.SourcePath, dstPath)
		em.Seed(offset)
	}
	em.Emit()

	var copied int64
	if !e.fullyPresent(dstPath, size, offset) {
		var err error
		copied, err = e.copyFile(ctx, e.config.SourcePath, dstPath, size, offset, em)
		if ctx.Err() != nil {
			return Result{Outcome: OutcomeCancelled, Message: "Copy cancelled", BytesCopied: copied}
		}
		if err != nil {
			return Result{Outcome: OutcomeFailed, Message: fmt.Sprintf("Copy failed: %v", err), BytesCopied: copied}
		}
	}

	em.Finish()
	return Result{Outcome: OutcomeCompleted, Message: "Copy completed", BytesCopied: copied}
}

// copyTree mirrors the source directory into the destination root. One bad
// file never aborts the run; its error is recorded and the walk continues.
func (e *Engine) copyTree(ctx context.Context, em *progressEmitter) Result {
	srcRoot := normalizePath(e.config.SourcePath)
	dstRoot := normalizePath(e.config.DestRoot)

	total := TotalSize(e.config.SourcePath)
	em.SetTotal(total)
	if e.config.Resume {
		em.Seed(InitialCopiedEstimate(e.config.SourcePath, e.config.DestRoot))
	}
	em.Emit()

	e.warnOnLowSpace(total - em.Done())

	// Every directory under source must exist under destination before any
	// file beneath it is copied.
	e.mirrorDirectories(srcRoot, dstRoot)

	var copied int64
	cancelled := false
	filepath.Walk(srcRoot, func(path string, info os.FileInfo, err error) error {
		if ctx.Err() != nil {
			cancelled = true
			return filepath.SkipAll
		}
		rel, relErr := filepath.Rel(srcRoot, path)
		if relErr != nil {
			rel = filepath.Base(path)
		}
		if err != nil {
			e.recordError(rel, err)
			return nil
		}
		if info.IsDir() {
			return nil
		}

		n, copyErr := e.copyOne(ctx, path, filepath.Join(dstRoot, rel), info.Size(), em)
		copied += n
		if ctx.Err() != nil {
			cancelled = true
			return filepath.SkipAll
		}
		if copyErr != nil {
			e.recordError(rel, copyErr)
		}
		return nil
	})

	if cancelled {
		return Result{Outcome: OutcomeCancelled, Message: "Copy cancelled", BytesCopied: copied}
	}

	// The terminal sample goes out even when files failed.
	em.Finish()

	if len(e.errors) > 0 {
		logPath, logErr := e.writeErrorLog()
		if logErr != nil {
			e.reportLog("warn", fmt.Sprintf("could not write error log: %v", logErr))
		}
		return Result{
			Outcome:     OutcomeCompletedWithErrors,
			Message:     fmt.Sprintf("Copy completed with %d failures, see %s", len(e.errors), ErrorLogName),
			Failures:    len(e.errors),
			ErrorLog:    logPath,
			BytesCopied: copied,
		}
	}
	return Result{Outcome: OutcomeCompleted, Message: "Copy completed", BytesCopied: copied}
}

// copyOne copies a single file within a tree copy, skipping files the resume
// scan already accounted as fully present.
func (e *Engine) copyOne(ctx context.Context, srcPath, dstPath string, size int64, em *progressEmitter) (int64, error) {
	var offset int64
	if e.config.Resume {
		offset = ResumeOffset(srcPath, dstPath)
		if e.fullyPresent(dstPath, size, offset) {
			// Already counted by the resume seed; nothing to stream.
			return 0, nil
		}
	}
	return e.copyFile(ctx, srcPath, dstPath, size, offset, em)
}

// fullyPresent reports whether the destination file matches the source length
// exactly. A longer destination is NOT fully present: it goes back through the
// stream copier, which discards it and re-copies from zero.
func (e *Engine) fullyPresent(dstPath string, size, offset int64) bool {
	if !e.config.Resume || offset != size {
		return false
	}
	dstInfo, err := os.Stat(normalizePath(dstPath))
	return err == nil && dstInfo.Size() == size
}

// mirrorDirectories recreates the source directory structure under the
// destination. A failure creating one directory is recorded but does not stop
// the run; the files beneath it will fail and be recorded individually.
func (e *Engine) mirrorDirectories(srcRoot, dstRoot string) {
	filepath.Walk(srcRoot, func(path string, info os.FileInfo, err error) error {
		if err != nil || !info.IsDir() {
			return nil
		}
		rel, relErr := filepath.Rel(srcRoot, path)
		if relErr != nil {
			return nil
		}
		if mkErr := os.MkdirAll(filepath.Join(dstRoot, rel), 0755); mkErr != nil {
			e.recordError(rel, newCreateDirectoryError(rel, mkErr))
		}
		return nil
	})
}

// warnOnLowSpace compares the bytes still to copy against the destination's
// free space. Advisory only: estimation errors cut both ways, so the copy
// proceeds regardless.
func (e *Engine) warnOnLowSpace(needed int64) {
	if needed <= 0 {
		return
	}
	free, err := freeSpace(e.config.DestRoot)
	if err != nil {
		return
	}
	if needed > free {
		e.reportLog("warn", fmt.Sprintf("destination may be short on space: need %s, %s available", formatSize(needed), formatSize(free)))
	}
}

func (e *Engine) recordError(relPath string, err error) {
	e.errors = append(e.errors, FileError{RelPath: relPath, Message: err.Error()})
	e.reportLog("warn", fmt.Sprintf("%s: %v", relPath, err))
}

func (e *Engine) reportLog(level, message string) {
	if e.config.Reporter != nil {
		e.config.Reporter.ReportLog(level, message)
	}
}

// writeErrorLog appends this run's failures to the error log at the
// destination root, one "relative_path: message" line per file. Appending
// keeps history across resumed runs.
func (e *Engine) writeErrorLog() (string, error) {
	logPath := filepath.Join(e.config.DestRoot, ErrorLogName)
	f, err := os.OpenFile(normalizePath(logPath), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return logPath, newWriteErrorLogError(logPath, err)
	}
	defer f.Close()

	for _, fe := range e.errors {
		if _, err := fmt.Fprintf(f, "%s: %s\n", fe.RelPath, fe.Message); err != nil {
			return logPath, newWriteErrorLogError(logPath, err)
		}
	}
	return logPath, nil
}

// formatSize formats bytes as a human-readable size.
func formatSize(bytes int64) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}
	div, exp := int64(unit), 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(bytes)/float64(div), "KMGTPE"[exp])
}
