package engine

import (
	"fmt"
	"sync"
	"time"
)

// ProgressUpdate is a single progress sample for a job. Fraction is in
// [0.0, 1.0] and monotonically non-decreasing within a job.
type ProgressUpdate struct {
	Fraction   float64
	BytesDone  int64
	TotalBytes int64
}

// Percent renders the sample as display text, e.g. "42%".
func (u ProgressUpdate) Percent() string {
	return fmt.Sprintf("%.0f%%", u.Fraction*100)
}

// ProgressReporter receives progress samples and log lines from a running
// job. Implementations must be cheap and must not block: the copy worker
// calls them inline between chunk writes.
type ProgressReporter interface {
	ReportProgress(update ProgressUpdate)
	ReportLog(level, message string)
}

// progressEmitter accumulates byte progress for one job and rate-limits the
// samples delivered to the reporter. A sample goes out when either enough new
// bytes have been written since the last one or enough time has elapsed,
// whichever comes first; this bounds callback overhead on fast storage while
// staying live on slow storage. The first and terminal samples bypass the
// limiter.
type progressEmitter struct {
	mu       sync.Mutex
	reporter ProgressReporter

	total int64
	done  int64

	byteDelta   int64
	minInterval time.Duration

	lastEmitBytes int64
	lastEmitTime  time.Time
	lastFraction  float64
}

func newProgressEmitter(reporter ProgressReporter, byteDelta int64, minInterval time.Duration) *progressEmitter {
	return &progressEmitter{
		reporter:    reporter,
		byteDelta:   byteDelta,
		minInterval: minInterval,
	}
}

// SetTotal fixes the job's byte total. It is computed once per job and never
// revised mid-copy, even if source files change underneath the scan.
func (p *progressEmitter) SetTotal(total int64) {
	p.mu.Lock()
	p.total = total
	p.mu.Unlock()
}

// Seed advances the byte counter without emitting, used to account bytes
// already present at the destination before the first file is touched.
func (p *progressEmitter) Seed(done int64) {
	p.mu.Lock()
	p.done += done
	p.mu.Unlock()
}

// Done returns the bytes accounted so far.
func (p *progressEmitter) Done() int64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.done
}

// Add accounts n new bytes and emits a sample if the limiter allows it.
func (p *progressEmitter) Add(n int64) {
	p.mu.Lock()
	p.done += n
	shouldEmit := p.done-p.lastEmitBytes >= p.byteDelta ||
		time.Since(p.lastEmitTime) >= p.minInterval
	p.mu.Unlock()

	if shouldEmit {
		p.Emit()
	}
}

// Emit sends a sample regardless of throttling state.
func (p *progressEmitter) Emit() {
	p.mu.Lock()
	p.lastEmitBytes = p.done
	p.lastEmitTime = time.Now()
	update := p.sampleLocked()
	reporter := p.reporter
	p.mu.Unlock()

	if reporter != nil {
		reporter.ReportProgress(update)
	}
}

// Finish force-emits the terminal 100% sample.
func (p *progressEmitter) Finish() {
	p.mu.Lock()
	p.done = p.total
	p.lastFraction = 1.0
	update := ProgressUpdate{Fraction: 1.0, BytesDone: p.done, TotalBytes: p.total}
	reporter := p.reporter
	p.mu.Unlock()

	if reporter != nil {
		reporter.ReportProgress(update)
	}
}

// sampleLocked builds the next sample. The raw ratio can transiently exceed
// 1.0 when the scan under-reported the total (unreadable entries count zero)
// or when a fallback copy re-accounts a whole file, so the fraction is clamped
// to 1.0 and kept monotonic.
func (p *progressEmitter) sampleLocked() ProgressUpdate {
	fraction := 1.0
	if p.total > 0 {
		fraction = float64(p.done) / float64(p.total)
	}
	if fraction > 1.0 {
		fraction = 1.0
	}
	if fraction < p.lastFraction {
		fraction = p.lastFraction
	}
	p.lastFraction = fraction
	return ProgressUpdate{Fraction: fraction, BytesDone: p.done, TotalBytes: p.total}
}
