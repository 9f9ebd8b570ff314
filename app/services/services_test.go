package services

import (
	"context"
	"log"
	"os"
	"path/filepath"
	"testing"
)

func testLogger() *log.Logger {
	return log.New(os.Stderr, "[Hauler-test] ", log.LstdFlags)
}

func TestConfigService_SaveAndLoad(t *testing.T) {
	dir := t.TempDir()
	svc := &ConfigService{
		configPath: filepath.Join(dir, "config.json"),
		logger:     testLogger(),
		config:     &Config{},
	}

	if err := svc.SetLastSelection("/data/photos", "/backup/photos", true); err != nil {
		t.Fatalf("SetLastSelection failed: %v", err)
	}

	// A fresh service reading the same file sees the saved selection
	reloaded := &ConfigService{
		configPath: svc.configPath,
		logger:     testLogger(),
		config:     &Config{},
	}
	if err := reloaded.Load(); err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	cfg := reloaded.GetConfig()
	if cfg.SourcePath != "/data/photos" {
		t.Errorf("SourcePath = %q", cfg.SourcePath)
	}
	if cfg.DestinationPath != "/backup/photos" {
		t.Errorf("DestinationPath = %q", cfg.DestinationPath)
	}
	if !cfg.Resume {
		t.Error("Resume flag was not persisted")
	}
}

func TestConfigService_LoadMissingFile(t *testing.T) {
	svc := &ConfigService{
		configPath: filepath.Join(t.TempDir(), "nope.json"),
		logger:     testLogger(),
		config:     &Config{},
	}

	// Missing file is not an error, defaults apply
	if err := svc.Load(); err != nil {
		t.Errorf("Load of missing file failed: %v", err)
	}
	if cfg := svc.GetConfig(); cfg.SourcePath != "" {
		t.Errorf("expected empty defaults, got %+v", cfg)
	}
}

func TestLogService_RecentLogs(t *testing.T) {
	svc := NewLogService(context.Background(), testLogger())

	svc.Append("info", "first")
	svc.Append("warn", "second")
	svc.Append("error", "third")

	logs, err := svc.GetRecentLogs(2)
	if err != nil {
		t.Fatalf("GetRecentLogs failed: %v", err)
	}
	if len(logs) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(logs))
	}
	if logs[0].Message != "second" || logs[1].Message != "third" {
		t.Errorf("unexpected entries: %+v", logs)
	}

	// Limit larger than the backlog returns everything
	logs, _ = svc.GetRecentLogs(100)
	if len(logs) != 3 {
		t.Errorf("expected 3 entries, got %d", len(logs))
	}
}
