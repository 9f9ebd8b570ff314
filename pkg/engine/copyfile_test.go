package engine

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func newTestEngine() *Engine {
	return New(Config{BufferSize: 1024})
}

func TestStreamCopy_FullFile(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "src.bin")
	dst := filepath.Join(dir, "dst.bin")
	content := strings.Repeat("abc", 2000)
	writeFile(t, src, content)

	e := newTestEngine()
	em := newProgressEmitter(nil, DefaultProgressByteDelta, DefaultProgressInterval)

	written, err := e.streamCopy(context.Background(), src, dst, int64(len(content)), 0, em)
	if err != nil {
		t.Fatalf("streamCopy failed: %v", err)
	}
	if written != int64(len(content)) {
		t.Errorf("written = %d, expected %d", written, len(content))
	}
	if got := readFile(t, dst); got != content {
		t.Error("destination content does not match source")
	}
}

func TestStreamCopy_ResumeFromOffset(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "src.bin")
	dst := filepath.Join(dir, "dst.bin")
	content := strings.Repeat("0123456789", 500)
	writeFile(t, src, content)
	writeFile(t, dst, content[:2000])

	e := newTestEngine()
	em := newProgressEmitter(nil, DefaultProgressByteDelta, DefaultProgressInterval)

	written, err := e.streamCopy(context.Background(), src, dst, int64(len(content)), 2000, em)
	if err != nil {
		t.Fatalf("streamCopy failed: %v", err)
	}
	if written != int64(len(content)-2000) {
		t.Errorf("written = %d, expected %d", written, len(content)-2000)
	}
	if got := readFile(t, dst); got != content {
		t.Error("resumed destination content does not match source")
	}
}

func TestStreamCopy_ShortDestinationResetsOffset(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "src.bin")
	dst := filepath.Join(dir, "dst.bin")
	content := strings.Repeat("x", 3000)
	writeFile(t, src, content)
	writeFile(t, dst, content[:100])

	e := newTestEngine()
	em := newProgressEmitter(nil, DefaultProgressByteDelta, DefaultProgressInterval)

	// Offset larger than what is actually at the destination cannot be
	// trusted; the copy must restart from zero.
	written, err := e.streamCopy(context.Background(), src, dst, int64(len(content)), 2000, em)
	if err != nil {
		t.Fatalf("streamCopy failed: %v", err)
	}
	if written != int64(len(content)) {
		t.Errorf("written = %d, expected full recopy of %d", written, len(content))
	}
	if got := readFile(t, dst); got != content {
		t.Error("destination content does not match source")
	}
}

func TestStreamCopy_LongerDestinationDiscarded(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "src.bin")
	dst := filepath.Join(dir, "dst.bin")
	content := strings.Repeat("s", 1000)
	writeFile(t, src, content)
	writeFile(t, dst, strings.Repeat("junk", 1000)) // 4000 bytes, longer than source

	e := newTestEngine()
	em := newProgressEmitter(nil, DefaultProgressByteDelta, DefaultProgressInterval)

	written, err := e.streamCopy(context.Background(), src, dst, int64(len(content)), int64(len(content)), em)
	if err != nil {
		t.Fatalf("streamCopy failed: %v", err)
	}
	if written != int64(len(content)) {
		t.Errorf("written = %d, expected %d", written, len(content))
	}

	// The stale tail must be gone, not just overwritten at the front
	info, err := os.Stat(dst)
	if err != nil {
		t.Fatalf("stat: %v", err)
	}
	if info.Size() != int64(len(content)) {
		t.Errorf("destination size = %d, expected %d", info.Size(), len(content))
	}
	if got := readFile(t, dst); got != content {
		t.Error("destination content does not match source")
	}
}

func TestStreamCopy_MissingSource(t *testing.T) {
	dir := t.TempDir()

	e := newTestEngine()
	em := newProgressEmitter(nil, DefaultProgressByteDelta, DefaultProgressInterval)

	_, err := e.streamCopy(context.Background(), filepath.Join(dir, "nope"), filepath.Join(dir, "out"), 10, 0, em)
	if err == nil {
		t.Fatal("expected error for missing source")
	}
}

func TestCopyFile_CancelledContextSurfaces(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "src.bin")
	dst := filepath.Join(dir, "dst.bin")
	writeFile(t, src, strings.Repeat("c", 10000))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	e := newTestEngine()
	em := newProgressEmitter(nil, DefaultProgressByteDelta, DefaultProgressInterval)

	_, err := e.copyFile(ctx, src, dst, 10000, 0, em)
	if err != context.Canceled {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestWholeFileCopy(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "src.txt")
	dst := filepath.Join(dir, "dst.txt")
	writeFile(t, src, "fallback payload")
	writeFile(t, dst, "stale and longer content than the source has")

	if err := wholeFileCopy(src, dst); err != nil {
		t.Fatalf("wholeFileCopy failed: %v", err)
	}
	if got := readFile(t, dst); got != "fallback payload" {
		t.Errorf("dst content = %q", got)
	}
}
