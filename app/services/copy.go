package services

import (
	"context"
	"fmt"
	"log"

	"github.com/wailsapp/wails/v2/pkg/runtime"

	"Hauler/internal/core"
	"Hauler/pkg/engine"
)

// CopyService is the GUI-facing surface of the copy engine: it starts and
// cancels jobs, probes destinations and forwards engine progress into the
// job manager, which fans it out to the frontend.
type CopyService struct {
	ctx           context.Context
	logger        *log.Logger
	jobManager    *core.JobManager
	configService *ConfigService
}

// NewCopyService creates a new CopyService.
func NewCopyService(ctx context.Context, logger *log.Logger, jobManager *core.JobManager) *CopyService {
	return &CopyService{
		ctx:        ctx,
		logger:     logger,
		jobManager: jobManager,
	}
}

// SetContext updates the service context after Wails startup.
func (s *CopyService) SetContext(ctx context.Context) {
	s.ctx = ctx
}

// SetConfig attaches the config service so last-used paths persist.
func (s *CopyService) SetConfig(configService *ConfigService) {
	s.configService = configService
}

// ProbeDestination checks the destination is creatable and writable without
// copying anything, so the frontend can surface problems before a copy starts.
func (s *CopyService) ProbeDestination(dest string) error {
	s.logger.Printf("[CopyService] ProbeDestination: dest=%s", dest)
	return engine.ProbeWritable(dest)
}

// StartCopy starts a copy job on its own worker goroutine and returns the job
// ID immediately. Only one job may run at a time; the JobManager rejects a
// second start.
func (s *CopyService) StartCopy(source, dest string, resume bool) (string, error) {
	s.logger.Printf("[CopyService] StartCopy: source=%s dest=%s resume=%v", source, dest, resume)

	if _, err := engine.CheckSource(source); err != nil {
		return "", fmt.Errorf("source path does not exist: %s", source)
	}

	params := map[string]string{
		"source": source,
		"dest":   dest,
		"resume": fmt.Sprintf("%v", resume),
	}
	jobID, jobCtx, err := s.jobManager.StartJob(s.ctx, "copy", "Preparing copy", params)
	if err != nil {
		return "", err
	}

	if s.configService != nil {
		if err := s.configService.SetLastSelection(source, dest, resume); err != nil {
			s.logger.Printf("[CopyService] StartCopy: could not persist selection: %v", err)
		}
	}

	go s.runCopy(jobCtx, jobID, source, dest, resume)
	return jobID, nil
}

// CancelCopy cancels the running copy job, if any.
func (s *CopyService) CancelCopy() error {
	s.logger.Printf("[CopyService] CancelCopy")
	return s.jobManager.CancelActiveJob()
}

func (s *CopyService) runCopy(ctx context.Context, jobID, source, dest string, resume bool) {
	eng := engine.New(engine.Config{
		SourcePath: source,
		DestRoot:   dest,
		Resume:     resume,
		Reporter:   &jobReporter{jobManager: s.jobManager, jobID: jobID},
	})

	result := eng.Run(ctx)
	s.logger.Printf("[CopyService] runCopy: job=%s outcome=%s message=%q", jobID, result.Outcome, result.Message)

	switch result.Outcome {
	case engine.OutcomeCompleted:
		s.jobManager.CompleteJob(jobID, result.Message)
	case engine.OutcomeCompletedWithErrors:
		s.jobManager.SetArtifact(jobID, core.JobArtifact{
			ErrorLogPath: result.ErrorLog,
			Failures:     result.Failures,
		})
		s.jobManager.CompleteJob(jobID, result.Message)
	case engine.OutcomeCancelled:
		// CancelJob already moved the snapshot to its terminal state.
	default:
		s.jobManager.FailJob(jobID, fmt.Errorf("%s", result.Message), "")
	}
}

// jobReporter adapts engine progress to job manager updates. It runs on the
// copy worker, so it only hands data over and returns.
type jobReporter struct {
	jobManager *core.JobManager
	jobID      string
}

func (r *jobReporter) ReportProgress(update engine.ProgressUpdate) {
	r.jobManager.UpdateProgress(r.jobID, core.JobProgress{
		Phase:      "copying",
		Fraction:   update.Fraction,
		BytesDone:  update.BytesDone,
		BytesTotal: update.TotalBytes,
	}, fmt.Sprintf("Copying... %s", update.Percent()))
}

func (r *jobReporter) ReportLog(level, message string) {
	r.jobManager.EmitLogLine(r.jobID, fmt.Sprintf("[%s] %s", level, message))
}

// WailsEmitter delivers job events to the frontend as Wails runtime events.
type WailsEmitter struct {
	ctx context.Context
}

// NewWailsEmitter creates an emitter bound to the Wails context.
func NewWailsEmitter(ctx context.Context) *WailsEmitter {
	return &WailsEmitter{ctx: ctx}
}

// EmitJobUpdate forwards the event to the frontend.
func (e *WailsEmitter) EmitJobUpdate(event core.JobUpdateEvent) {
	runtime.EventsEmit(e.ctx, "job:update", event)
}
