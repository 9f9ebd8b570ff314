package services

import (
	"context"
	"log"
	"os/exec"
	goruntime "runtime"
)

// SystemService exposes small desktop integrations to the frontend, mainly
// opening the error log after a copy finished with failures.
type SystemService struct {
	ctx    context.Context
	logger *log.Logger
}

// NewSystemService creates a new SystemService.
func NewSystemService(ctx context.Context, logger *log.Logger) *SystemService {
	return &SystemService{
		ctx:    ctx,
		logger: logger,
	}
}

// SetContext updates the service context.
func (s *SystemService) SetContext(ctx context.Context) {
	s.ctx = ctx
}

// OpenPath opens a file or folder in the platform's file manager.
func (s *SystemService) OpenPath(path string) error {
	s.logger.Printf("[SystemService] OpenPath: %s", path)
	var cmd *exec.Cmd

	switch goruntime.GOOS {
	case "windows":
		cmd = exec.Command("explorer", path)
	case "darwin":
		cmd = exec.Command("open", path)
	default: // linux and others
		cmd = exec.Command("xdg-open", path)
	}

	return cmd.Start()
}
