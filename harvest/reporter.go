package harvest

import (
	"sync"
	"time"

	"github.com/fwojciec/plansync"
)

// DefaultReportInterval is how often download progress is reported.
const DefaultReportInterval = time.Minute

// Reporter periodically emits ProgressTick events with a counter snapshot.
// Ticks are skipped while the total is zero, since no percentage exists yet.
type Reporter struct {
	counters *plansync.SyncCounters
	interval time.Duration
	progress plansync.ProgressFunc

	mu      sync.Mutex
	stopCh  chan struct{}
	started bool
	stopped bool
}

// NewReporter creates a Reporter. A non-positive interval uses
// DefaultReportInterval.
func NewReporter(counters *plansync.SyncCounters, interval time.Duration, progress plansync.ProgressFunc) *Reporter {
	if interval <= 0 {
		interval = DefaultReportInterval
	}
	return &Reporter{
		counters: counters,
		interval: interval,
		progress: progress,
		stopCh:   make(chan struct{}),
	}
}

// Start begins reporting in the background. It is a no-op without a
// progress callback or when already started.
func (r *Reporter) Start() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.progress == nil || r.started || r.stopped {
		return
	}
	r.started = true
	go r.loop()
}

// Stop ends reporting. It does not wait for a tick that is being delivered.
func (r *Reporter) Stop() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.stopped {
		return
	}
	r.stopped = true
	close(r.stopCh)
}

func (r *Reporter) loop() {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-r.stopCh:
			return
		case <-ticker.C:
			s := r.counters.Snapshot()
			if s.Total == 0 {
				continue
			}
			r.progress(plansync.ProgressEvent{Type: plansync.ProgressTick, Counters: s})
		}
	}
}
