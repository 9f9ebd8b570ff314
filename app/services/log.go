package services

import (
	"context"
	"log"
	"sync"
	"time"
)

// LogService aggregates log lines for the frontend's log pane.
type LogService struct {
	ctx    context.Context
	logger *log.Logger
	logs   []LogEntry
	mu     sync.Mutex
}

// NewLogService creates a new LogService.
func NewLogService(ctx context.Context, logger *log.Logger) *LogService {
	return &LogService{
		ctx:    ctx,
		logger: logger,
		logs:   []LogEntry{},
	}
}

// SetContext updates the service context.
func (s *LogService) SetContext(ctx context.Context) {
	s.ctx = ctx
}

// LogEntry represents a single log entry.
type LogEntry struct {
	Timestamp time.Time `json:"timestamp"`
	Level     string    `json:"level"` // "info", "warn", "error"
	Message   string    `json:"message"`
}

// Append records a log entry.
func (s *LogService) Append(level, message string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.logs = append(s.logs, LogEntry{Timestamp: time.Now(), Level: level, Message: message})
}

// GetRecentLogs returns the last limit entries.
func (s *LogService) GetRecentLogs(limit int) ([]LogEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	start := 0
	if len(s.logs) > limit {
		start = len(s.logs) - limit
	}
	return s.logs[start:], nil
}
