package main

import (
	"Hauler/internal/adapters/api"
	"Hauler/internal/core"
	"Hauler/pkg/engine"
	"context"
	"fmt"
	"log"
	"os"
)

// runServe runs the HTTP API daemon: copies are started over REST and progress
// streams out over SSE. Blocks until ctx is cancelled or the server dies.
func runServe(ctx context.Context, port int) int {
	logger := log.New(os.Stdout, "[Hauler] ", log.LstdFlags)

	jobManager := core.NewJobManager(nil)
	runner := &jobRunner{logger: logger, jobManager: jobManager}

	server := api.NewServer(port, logger, jobManager,
		api.WithStartCopyFunc(runner.startCopy),
		api.WithProbeFunc(engine.ProbeWritable),
	)
	jobManager.AddEmitter(server)

	server.StartBackground(ctx)
	logger.Printf("serving on http://localhost:%d (Ctrl-C to stop)", port)

	<-ctx.Done()
	if err := jobManager.CancelActiveJob(); err == nil {
		logger.Printf("cancelled active job on shutdown")
	}
	return 0
}

// jobRunner drives copy jobs for the API daemon, mirroring what the GUI's
// CopyService does for Wails.
type jobRunner struct {
	logger     *log.Logger
	jobManager *core.JobManager
}

func (r *jobRunner) startCopy(req api.StartCopyRequest) (string, error) {
	if _, err := engine.CheckSource(req.SourcePath); err != nil {
		return "", fmt.Errorf("source path does not exist: %s", req.SourcePath)
	}

	params := map[string]string{
		"source": req.SourcePath,
		"dest":   req.DestinationPath,
		"resume": fmt.Sprintf("%v", req.Resume),
	}
	jobID, jobCtx, err := r.jobManager.StartJob(context.Background(), "copy", "Preparing copy", params)
	if err != nil {
		return "", err
	}

	go r.runCopy(jobCtx, jobID, req)
	return jobID, nil
}

func (r *jobRunner) runCopy(ctx context.Context, jobID string, req api.StartCopyRequest) {
	eng := engine.New(engine.Config{
		SourcePath: req.SourcePath,
		DestRoot:   req.DestinationPath,
		Resume:     req.Resume,
		Reporter:   &daemonReporter{jobManager: r.jobManager, jobID: jobID},
	})

	result := eng.Run(ctx)
	r.logger.Printf("job=%s outcome=%s message=%q", jobID, result.Outcome, result.Message)

	switch result.Outcome {
	case engine.OutcomeCompleted:
		r.jobManager.CompleteJob(jobID, result.Message)
	case engine.OutcomeCompletedWithErrors:
		r.jobManager.SetArtifact(jobID, core.JobArtifact{
			ErrorLogPath: result.ErrorLog,
			Failures:     result.Failures,
		})
		r.jobManager.CompleteJob(jobID, result.Message)
	case engine.OutcomeCancelled:
		// CancelJob already moved the snapshot to its terminal state.
	default:
		r.jobManager.FailJob(jobID, fmt.Errorf("%s", result.Message), "")
	}
}

// daemonReporter adapts engine progress to job manager updates.
type daemonReporter struct {
	jobManager *core.JobManager
	jobID      string
}

func (r *daemonReporter) ReportProgress(update engine.ProgressUpdate) {
	r.jobManager.UpdateProgress(r.jobID, core.JobProgress{
		Phase:      "copying",
		Fraction:   update.Fraction,
		BytesDone:  update.BytesDone,
		BytesTotal: update.TotalBytes,
	}, fmt.Sprintf("Copying... %s", update.Percent()))
}

func (r *daemonReporter) ReportLog(level, message string) {
	r.jobManager.EmitLogLine(r.jobID, fmt.Sprintf("[%s] %s", level, message))
}
