// Package core provides the job lifecycle layer shared by every Hauler
// boundary (Wails GUI, CLI, HTTP API). It must NOT import adapter-specific
// code; adapters receive events through the JobEventEmitter interface.
//
// Exactly one job runs at a time. The control surface (start/cancel) runs on
// the caller's goroutine while the copy itself runs on its own worker, so a
// cancel request is observed without blocking on I/O.
package core

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// JobState is the lifecycle state of a job.
type JobState string

const (
	JobRunning   JobState = "running"
	JobSucceeded JobState = "succeeded"
	JobFailed    JobState = "failed"
	JobCanceled  JobState = "canceled"
)

// JobProgress carries byte progress for a running copy. Fraction is in
// [0.0, 1.0] and monotonically non-decreasing for one job.
type JobProgress struct {
	Phase      string  `json:"phase"` // "scanning" or "copying"
	Fraction   float64 `json:"fraction"`
	BytesDone  int64   `json:"bytesDone"`
	BytesTotal int64   `json:"bytesTotal"`
}

// JobError describes why a job failed.
type JobError struct {
	Message string `json:"message"`
	Details string `json:"details"`
}

// JobArtifact points at files a job produced, such as the per-file error log.
type JobArtifact struct {
	ErrorLogPath string `json:"errorLogPath,omitempty"`
	Failures     int    `json:"failures,omitempty"`
}

// JobSnapshot is the authoritative state of a job at a point in time. The UI
// derives everything it shows from snapshots and update events.
type JobSnapshot struct {
	JobID     string            `json:"jobId"`
	Seq       int64             `json:"seq"`
	Type      string            `json:"type"`
	State     JobState          `json:"state"`
	Params    map[string]string `json:"params,omitempty"`
	Progress  JobProgress       `json:"progress"`
	Message   string            `json:"message"`
	Error     *JobError         `json:"error,omitempty"`
	Artifact  JobArtifact       `json:"artifact"`
	CreatedAt time.Time         `json:"createdAt"`
	UpdatedAt time.Time         `json:"updatedAt"`
}

// JobUpdateEvent is emitted whenever a job's state changes.
type JobUpdateEvent struct {
	JobID    string      `json:"jobId"`
	Seq      int64       `json:"seq"`
	Type     string      `json:"type"`
	State    JobState    `json:"state"`
	Progress JobProgress `json:"progress"`
	Message  string      `json:"message"`
	LogLine  string      `json:"logLine,omitempty"`
	Error    *JobError   `json:"error,omitempty"`
	Artifact JobArtifact `json:"artifact"`
}

// JobEventEmitter is implemented by adapters to receive job events. Delivery
// is fire-and-forget: implementations must not block the copy worker.
type JobEventEmitter interface {
	EmitJobUpdate(event JobUpdateEvent)
}

// ThrottleConfig controls how often progress updates reach the emitters.
type ThrottleConfig struct {
	MinInterval time.Duration
}

// DefaultThrottleConfig caps event delivery at roughly ten per second.
func DefaultThrottleConfig() ThrottleConfig {
	return ThrottleConfig{MinInterval: 100 * time.Millisecond}
}

// JobManager is the single source of truth for job state.
type JobManager struct {
	mu           sync.Mutex
	jobs         map[string]*JobSnapshot
	activeJob    string
	seqCounter   int64
	cancels      map[string]context.CancelFunc
	emitter      JobEventEmitter
	throttle     ThrottleConfig
	lastEmitTime map[string]time.Time
}

// NewJobManager creates a JobManager with default throttling.
func NewJobManager(emitter JobEventEmitter) *JobManager {
	return NewJobManagerWithThrottle(emitter, DefaultThrottleConfig())
}

// NewJobManagerWithThrottle creates a JobManager with custom throttling.
func NewJobManagerWithThrottle(emitter JobEventEmitter, throttle ThrottleConfig) *JobManager {
	return &JobManager{
		jobs:         make(map[string]*JobSnapshot),
		cancels:      make(map[string]context.CancelFunc),
		emitter:      emitter,
		throttle:     throttle,
		lastEmitTime: make(map[string]time.Time),
	}
}

// AddEmitter registers an additional emitter; events are broadcast to all.
func (jm *JobManager) AddEmitter(emitter JobEventEmitter) {
	jm.mu.Lock()
	defer jm.mu.Unlock()

	if jm.emitter == nil {
		jm.emitter = emitter
		return
	}
	if multi, ok := jm.emitter.(*MultiEmitter); ok {
		multi.Add(emitter)
	} else {
		jm.emitter = &MultiEmitter{emitters: []JobEventEmitter{jm.emitter, emitter}}
	}
}

// MultiEmitter broadcasts events to multiple emitters.
type MultiEmitter struct {
	mu       sync.Mutex
	emitters []JobEventEmitter
}

// Add registers another emitter.
func (m *MultiEmitter) Add(emitter JobEventEmitter) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.emitters = append(m.emitters, emitter)
}

// EmitJobUpdate fans the event out to every registered emitter.
func (m *MultiEmitter) EmitJobUpdate(event JobUpdateEvent) {
	m.mu.Lock()
	emitters := make([]JobEventEmitter, len(m.emitters))
	copy(emitters, m.emitters)
	m.mu.Unlock()

	for _, e := range emitters {
		if e != nil {
			e.EmitJobUpdate(event)
		}
	}
}

// StartJob registers a new job and returns its ID plus the context the worker
// must honor. Starting while another job is running is an error; the boundary
// layers rely on this to disable concurrent starts.
func (jm *JobManager) StartJob(ctx context.Context, jobType string, message string, params map[string]string) (string, context.Context, error) {
	jm.mu.Lock()

	if jm.activeJob != "" {
		active := jm.jobs[jm.activeJob]
		if active != nil && active.State == JobRunning {
			jm.mu.Unlock()
			return "", nil, fmt.Errorf("a job is already running: %s (%s)", active.JobID, active.Type)
		}
	}

	jobID := fmt.Sprintf("%s-%d", jobType, time.Now().UnixNano())
	jobCtx, cancel := context.WithCancel(ctx)

	snapshot := &JobSnapshot{
		JobID:     jobID,
		Type:      jobType,
		State:     JobRunning,
		Params:    params,
		Message:   message,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
		Progress:  JobProgress{Phase: "scanning"},
	}

	jm.jobs[jobID] = snapshot
	jm.cancels[jobID] = cancel
	jm.activeJob = jobID
	jm.mu.Unlock()

	jm.emitUpdate(jobID)
	return jobID, jobCtx, nil
}

func (jm *JobManager) emitUpdate(jobID string) {
	jm.mu.Lock()
	snapshot, exists := jm.jobs[jobID]
	if !exists {
		jm.mu.Unlock()
		return
	}

	jm.seqCounter++
	snapshot.Seq = jm.seqCounter

	event := JobUpdateEvent{
		JobID:    snapshot.JobID,
		Seq:      snapshot.Seq,
		Type:     snapshot.Type,
		State:    snapshot.State,
		Progress: snapshot.Progress,
		Message:  snapshot.Message,
		Error:    snapshot.Error,
		Artifact: snapshot.Artifact,
	}
	emitter := jm.emitter
	jm.mu.Unlock()

	if emitter != nil {
		emitter.EmitJobUpdate(event)
	}
}

// UpdateProgress records new progress and emits it, subject to throttling.
// The internal snapshot always advances even when the event is suppressed.
func (jm *JobManager) UpdateProgress(jobID string, progress JobProgress, message string) {
	jm.mu.Lock()
	snapshot, exists := jm.jobs[jobID]
	if !exists {
		jm.mu.Unlock()
		return
	}

	snapshot.Progress = progress
	if message != "" {
		snapshot.Message = message
	}
	snapshot.UpdatedAt = time.Now()

	now := time.Now()
	shouldEmit := now.Sub(jm.lastEmitTime[jobID]) >= jm.throttle.MinInterval
	if shouldEmit {
		jm.lastEmitTime[jobID] = now
	}
	jm.mu.Unlock()

	if shouldEmit {
		jm.emitUpdate(jobID)
	}
}

// SetArtifact attaches output artifacts (error log path, failure count).
func (jm *JobManager) SetArtifact(jobID string, artifact JobArtifact) {
	jm.mu.Lock()
	if snapshot, exists := jm.jobs[jobID]; exists {
		snapshot.Artifact = artifact
		snapshot.UpdatedAt = time.Now()
	}
	jm.mu.Unlock()
}

// CompleteJob marks a job as succeeded. The terminal event always goes out.
func (jm *JobManager) CompleteJob(jobID string, message string) {
	jm.mu.Lock()
	snapshot, exists := jm.jobs[jobID]
	if exists {
		snapshot.State = JobSucceeded
		if message != "" {
			snapshot.Message = message
		}
		snapshot.Progress.Fraction = 1.0
		snapshot.UpdatedAt = time.Now()
		if jm.activeJob == jobID {
			jm.activeJob = ""
		}
	}
	jm.mu.Unlock()

	if exists {
		jm.emitUpdate(jobID)
	}
}

// FailJob marks a job as failed.
func (jm *JobManager) FailJob(jobID string, err error, details string) {
	jm.mu.Lock()
	snapshot, exists := jm.jobs[jobID]
	if exists {
		snapshot.State = JobFailed
		snapshot.Error = &JobError{Message: err.Error(), Details: details}
		snapshot.UpdatedAt = time.Now()
		if jm.activeJob == jobID {
			jm.activeJob = ""
		}
	}
	jm.mu.Unlock()

	if exists {
		jm.emitUpdate(jobID)
	}
}

// CancelJob cancels a running job. Cancellation is a deliberate terminal
// state, not a failure.
func (jm *JobManager) CancelJob(jobID string) error {
	jm.mu.Lock()
	cancel, cancelExists := jm.cancels[jobID]
	snapshot, snapshotExists := jm.jobs[jobID]
	jm.mu.Unlock()

	if !cancelExists {
		return fmt.Errorf("job not found or not cancellable: %s", jobID)
	}

	cancel()

	if snapshotExists {
		jm.mu.Lock()
		snapshot.State = JobCanceled
		snapshot.Message = "Copy cancelled"
		snapshot.UpdatedAt = time.Now()
		if jm.activeJob == jobID {
			jm.activeJob = ""
		}
		jm.mu.Unlock()
		jm.emitUpdate(jobID)
	}
	return nil
}

// CancelActiveJob cancels the currently running job, if any.
func (jm *JobManager) CancelActiveJob() error {
	jm.mu.Lock()
	active := jm.activeJob
	jm.mu.Unlock()
	if active == "" {
		return fmt.Errorf("no active job to cancel")
	}
	return jm.CancelJob(active)
}

// GetJob returns a copy of a job's snapshot.
func (jm *JobManager) GetJob(jobID string) (*JobSnapshot, error) {
	jm.mu.Lock()
	defer jm.mu.Unlock()

	snapshot, exists := jm.jobs[jobID]
	if !exists {
		return nil, fmt.Errorf("job not found: %s", jobID)
	}
	copySnapshot := *snapshot
	return &copySnapshot, nil
}

// GetActiveJob returns the running job's snapshot, or nil.
func (jm *JobManager) GetActiveJob() *JobSnapshot {
	jm.mu.Lock()
	defer jm.mu.Unlock()

	if jm.activeJob == "" {
		return nil
	}
	snapshot, exists := jm.jobs[jm.activeJob]
	if !exists {
		return nil
	}
	copySnapshot := *snapshot
	return &copySnapshot
}

// EmitLogLine delivers a log line for a job, bypassing progress throttling.
func (jm *JobManager) EmitLogLine(jobID string, logLine string) {
	jm.mu.Lock()
	snapshot, exists := jm.jobs[jobID]
	if !exists {
		jm.mu.Unlock()
		return
	}

	jm.seqCounter++
	snapshot.Seq = jm.seqCounter

	event := JobUpdateEvent{
		JobID:    snapshot.JobID,
		Seq:      snapshot.Seq,
		Type:     snapshot.Type,
		State:    snapshot.State,
		Progress: snapshot.Progress,
		Message:  snapshot.Message,
		LogLine:  logLine,
		Error:    snapshot.Error,
		Artifact: snapshot.Artifact,
	}
	emitter := jm.emitter
	jm.mu.Unlock()

	if emitter != nil {
		emitter.EmitJobUpdate(event)
	}
}
