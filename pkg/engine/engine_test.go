package engine

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"
)

// captureReporter records every progress sample and log line for assertions.
type captureReporter struct {
	mu      sync.Mutex
	updates []ProgressUpdate
	logs    []string
	cancel  context.CancelFunc // when set, cancels on the first progress sample
}

func (r *captureReporter) ReportProgress(update ProgressUpdate) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.updates = append(r.updates, update)
	if r.cancel != nil {
		r.cancel()
		r.cancel = nil
	}
}

func (r *captureReporter) ReportLog(level, message string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.logs = append(r.logs, "["+level+"] "+message)
}

func (r *captureReporter) lastUpdate() *ProgressUpdate {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.updates) == 0 {
		return nil
	}
	return &r.updates[len(r.updates)-1]
}

func (r *captureReporter) allUpdates() []ProgressUpdate {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]ProgressUpdate{}, r.updates...)
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("mkdir %s: %v", filepath.Dir(path), err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read %s: %v", path, err)
	}
	return string(data)
}

func TestRun_TreeCopy(t *testing.T) {
	src := t.TempDir()
	dst := t.TempDir()

	writeFile(t, filepath.Join(src, "x.txt"), "hello")
	writeFile(t, filepath.Join(src, "sub", "y.txt"), "0123456789")

	reporter := &captureReporter{}
	e := New(Config{
		SourcePath: src,
		DestRoot:   dst,
		Reporter:   reporter,
	})

	result := e.Run(context.Background())
	if result.Outcome != OutcomeCompleted {
		t.Fatalf("expected completed, got %s (%s)", result.Outcome, result.Message)
	}
	if result.Message != "Copy completed" {
		t.Errorf("unexpected message: %q", result.Message)
	}
	if result.BytesCopied != 15 {
		t.Errorf("expected 15 bytes copied, got %d", result.BytesCopied)
	}

	if got := readFile(t, filepath.Join(dst, "x.txt")); got != "hello" {
		t.Errorf("x.txt content = %q", got)
	}
	if got := readFile(t, filepath.Join(dst, "sub", "y.txt")); got != "0123456789" {
		t.Errorf("sub/y.txt content = %q", got)
	}

	last := reporter.lastUpdate()
	if last == nil {
		t.Fatal("no progress updates emitted")
	}
	if last.Fraction != 1.0 {
		t.Errorf("final fraction = %f, expected exactly 1.0", last.Fraction)
	}
	if last.BytesDone != last.TotalBytes {
		t.Errorf("final bytesDone %d != total %d", last.BytesDone, last.TotalBytes)
	}

	// Fractions must never go backwards
	updates := reporter.allUpdates()
	for i := 1; i < len(updates); i++ {
		if updates[i].Fraction < updates[i-1].Fraction {
			t.Errorf("fraction decreased: %f -> %f", updates[i-1].Fraction, updates[i].Fraction)
		}
	}
}

func TestRun_SingleFile(t *testing.T) {
	src := t.TempDir()
	dst := t.TempDir()

	srcFile := filepath.Join(src, "single.bin")
	writeFile(t, srcFile, strings.Repeat("a", 4096))

	reporter := &captureReporter{}
	e := New(Config{
		SourcePath: srcFile,
		DestRoot:   dst,
		Reporter:   reporter,
	})

	result := e.Run(context.Background())
	if result.Outcome != OutcomeCompleted {
		t.Fatalf("expected completed, got %s (%s)", result.Outcome, result.Message)
	}

	// A single-file source lands at <dest>/<basename>
	got := readFile(t, filepath.Join(dst, "single.bin"))
	if len(got) != 4096 {
		t.Errorf("copied %d bytes, expected 4096", len(got))
	}

	last := reporter.lastUpdate()
	if last == nil || last.Fraction != 1.0 {
		t.Errorf("expected terminal 1.0 sample, got %+v", last)
	}
}

func TestRun_MissingSource(t *testing.T) {
	dst := t.TempDir()
	e := New(Config{
		SourcePath: filepath.Join(dst, "does-not-exist"),
		DestRoot:   dst,
	})

	result := e.Run(context.Background())
	if result.Outcome != OutcomeFailed {
		t.Fatalf("expected failed, got %s", result.Outcome)
	}
	if result.Message != "Source path does not exist" {
		t.Errorf("unexpected message: %q", result.Message)
	}
}

func TestRun_UnwritableDestination(t *testing.T) {
	if os.Geteuid() == 0 {
		t.Skip("permission checks do not apply to root")
	}

	src := t.TempDir()
	writeFile(t, filepath.Join(src, "a.txt"), "data")

	parent := t.TempDir()
	if err := os.Chmod(parent, 0555); err != nil {
		t.Fatalf("chmod: %v", err)
	}
	defer os.Chmod(parent, 0755)

	e := New(Config{
		SourcePath: src,
		DestRoot:   filepath.Join(parent, "out"),
	})

	result := e.Run(context.Background())
	if result.Outcome != OutcomeFailed {
		t.Fatalf("expected failed, got %s", result.Outcome)
	}
	if !strings.HasPrefix(result.Message, "Destination is not writable") {
		t.Errorf("unexpected message: %q", result.Message)
	}
}

func TestRun_PerFileErrorsContinue(t *testing.T) {
	if os.Geteuid() == 0 {
		t.Skip("permission checks do not apply to root")
	}

	src := t.TempDir()
	dst := t.TempDir()

	for _, name := range []string{"a.txt", "b.txt", "c.txt", "d.txt"} {
		writeFile(t, filepath.Join(src, name), "content of "+name)
	}
	blocked := filepath.Join(src, "b.txt")
	if err := os.Chmod(blocked, 0000); err != nil {
		t.Fatalf("chmod: %v", err)
	}
	defer os.Chmod(blocked, 0644)

	reporter := &captureReporter{}
	e := New(Config{
		SourcePath: src,
		DestRoot:   dst,
		Reporter:   reporter,
	})

	result := e.Run(context.Background())
	if result.Outcome != OutcomeCompletedWithErrors {
		t.Fatalf("expected completed_with_errors, got %s (%s)", result.Outcome, result.Message)
	}
	if result.Failures != 1 {
		t.Errorf("expected 1 failure, got %d", result.Failures)
	}
	if !strings.Contains(result.Message, "1 failures") {
		t.Errorf("unexpected message: %q", result.Message)
	}

	// The good files all made it
	for _, name := range []string{"a.txt", "c.txt", "d.txt"} {
		if got := readFile(t, filepath.Join(dst, name)); got != "content of "+name {
			t.Errorf("%s content = %q", name, got)
		}
	}

	// The error log names the failed file
	logContent := readFile(t, filepath.Join(dst, ErrorLogName))
	if !strings.Contains(logContent, "b.txt") {
		t.Errorf("error log missing failed file: %q", logContent)
	}
	if result.ErrorLog != filepath.Join(dst, ErrorLogName) {
		t.Errorf("unexpected error log path: %s", result.ErrorLog)
	}

	// The terminal sample still goes out
	last := reporter.lastUpdate()
	if last == nil || last.Fraction != 1.0 {
		t.Errorf("expected terminal 1.0 sample, got %+v", last)
	}
}

func TestRun_ErrorLogAppends(t *testing.T) {
	if os.Geteuid() == 0 {
		t.Skip("permission checks do not apply to root")
	}

	src := t.TempDir()
	dst := t.TempDir()

	writeFile(t, filepath.Join(src, "bad.txt"), "nope")
	blocked := filepath.Join(src, "bad.txt")
	if err := os.Chmod(blocked, 0000); err != nil {
		t.Fatalf("chmod: %v", err)
	}
	defer os.Chmod(blocked, 0644)

	run := func() {
		e := New(Config{SourcePath: src, DestRoot: dst})
		result := e.Run(context.Background())
		if result.Outcome != OutcomeCompletedWithErrors {
			t.Fatalf("expected completed_with_errors, got %s", result.Outcome)
		}
	}
	run()
	run()

	logContent := readFile(t, filepath.Join(dst, ErrorLogName))
	if got := strings.Count(logContent, "bad.txt"); got != 2 {
		t.Errorf("expected 2 appended entries, got %d: %q", got, logContent)
	}
}

func TestRun_Cancel(t *testing.T) {
	src := t.TempDir()
	dst := t.TempDir()

	// Several multi-chunk files so cancellation lands mid-walk
	payload := strings.Repeat("z", 64*1024)
	for _, name := range []string{"one.bin", "two.bin", "three.bin"} {
		writeFile(t, filepath.Join(src, name), payload)
	}

	ctx, cancel := context.WithCancel(context.Background())
	reporter := &captureReporter{cancel: cancel}

	e := New(Config{
		SourcePath:        src,
		DestRoot:          dst,
		Reporter:          reporter,
		BufferSize:        1024,
		ProgressByteDelta: 1,
		ProgressInterval:  time.Nanosecond,
	})

	result := e.Run(ctx)
	if result.Outcome != OutcomeCancelled {
		t.Fatalf("expected cancelled, got %s (%s)", result.Outcome, result.Message)
	}
	if result.Message != "Copy cancelled" {
		t.Errorf("unexpected message: %q", result.Message)
	}

	// Cancellation is not a failure: no error log
	if _, err := os.Stat(filepath.Join(dst, ErrorLogName)); !os.IsNotExist(err) {
		t.Error("error log should not exist after cancellation")
	}

	// No forced terminal 1.0 after a cancel
	last := reporter.lastUpdate()
	if last != nil && last.Fraction == 1.0 && last.BytesDone == last.TotalBytes {
		t.Error("cancelled run should not report completion")
	}
}

func TestRun_ResumeSkipsCompleteFiles(t *testing.T) {
	src := t.TempDir()
	dst := t.TempDir()

	writeFile(t, filepath.Join(src, "done.txt"), "already there")
	writeFile(t, filepath.Join(src, "missing.txt"), "not yet")
	writeFile(t, filepath.Join(dst, "done.txt"), "already there")

	e := New(Config{
		SourcePath: src,
		DestRoot:   dst,
		Resume:     true,
	})

	result := e.Run(context.Background())
	if result.Outcome != OutcomeCompleted {
		t.Fatalf("expected completed, got %s (%s)", result.Outcome, result.Message)
	}

	// Only the missing file's bytes were streamed
	if result.BytesCopied != int64(len("not yet")) {
		t.Errorf("expected %d bytes copied, got %d", len("not yet"), result.BytesCopied)
	}
	if got := readFile(t, filepath.Join(dst, "missing.txt")); got != "not yet" {
		t.Errorf("missing.txt content = %q", got)
	}
}

func TestRun_ResumeContinuesPartialFile(t *testing.T) {
	src := t.TempDir()
	dst := t.TempDir()

	content := strings.Repeat("0123456789", 1000)
	writeFile(t, filepath.Join(src, "big.bin"), content)
	// Simulate an interrupted previous run: first half already at destination
	writeFile(t, filepath.Join(dst, "big.bin"), content[:5000])

	e := New(Config{
		SourcePath: src,
		DestRoot:   dst,
		Resume:     true,
	})

	result := e.Run(context.Background())
	if result.Outcome != OutcomeCompleted {
		t.Fatalf("expected completed, got %s (%s)", result.Outcome, result.Message)
	}
	if result.BytesCopied != 5000 {
		t.Errorf("expected 5000 resumed bytes, got %d", result.BytesCopied)
	}
	if got := readFile(t, filepath.Join(dst, "big.bin")); got != content {
		t.Error("resumed file content does not match source")
	}
}

func TestRun_WithoutResumeRecopiesEverything(t *testing.T) {
	src := t.TempDir()
	dst := t.TempDir()

	writeFile(t, filepath.Join(src, "a.txt"), "fresh data")
	writeFile(t, filepath.Join(dst, "a.txt"), "stale data")

	e := New(Config{
		SourcePath: src,
		DestRoot:   dst,
	})

	result := e.Run(context.Background())
	if result.Outcome != OutcomeCompleted {
		t.Fatalf("expected completed, got %s", result.Outcome)
	}
	if result.BytesCopied != int64(len("fresh data")) {
		t.Errorf("expected full recopy, got %d bytes", result.BytesCopied)
	}
	if got := readFile(t, filepath.Join(dst, "a.txt")); got != "fresh data" {
		t.Errorf("a.txt content = %q", got)
	}
}

func TestRun_EmptyTree(t *testing.T) {
	src := t.TempDir()
	dst := t.TempDir()

	reporter := &captureReporter{}
	e := New(Config{SourcePath: src, DestRoot: dst, Reporter: reporter})

	result := e.Run(context.Background())
	if result.Outcome != OutcomeCompleted {
		t.Fatalf("expected completed, got %s", result.Outcome)
	}

	// Zero total still ends at a clean 1.0
	last := reporter.lastUpdate()
	if last == nil || last.Fraction != 1.0 {
		t.Errorf("expected terminal 1.0 sample, got %+v", last)
	}
}

func TestRun_MirrorsEmptyDirectories(t *testing.T) {
	src := t.TempDir()
	dst := t.TempDir()

	if err := os.MkdirAll(filepath.Join(src, "empty", "nested"), 0755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	writeFile(t, filepath.Join(src, "file.txt"), "x")

	e := New(Config{SourcePath: src, DestRoot: dst})
	result := e.Run(context.Background())
	if result.Outcome != OutcomeCompleted {
		t.Fatalf("expected completed, got %s", result.Outcome)
	}

	info, err := os.Stat(filepath.Join(dst, "empty", "nested"))
	if err != nil || !info.IsDir() {
		t.Error("empty directory structure was not mirrored")
	}
}

func TestFormatSize(t *testing.T) {
	tests := []struct {
		bytes    int64
		expected string
	}{
		{500, "500 B"},
		{1024, "1.0 KB"},
		{1024 * 1024, "1.0 MB"},
		{1024 * 1024 * 1024, "1.0 GB"},
	}

	for _, tt := range tests {
		result := formatSize(tt.bytes)
		if result != tt.expected {
			t.Errorf("formatSize(%d) = %q, expected %q", tt.bytes, result, tt.expected)
		}
	}
}
