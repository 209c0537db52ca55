package plansync

import (
	"errors"
	"fmt"
	"strings"
	"sync/atomic"
)

// SyncCounters tracks download progress for one run.
// All methods are safe for concurrent use.
type SyncCounters struct {
	total      atomic.Int64
	checked    atomic.Int64
	downloaded atomic.Int64
	existing   atomic.Int64
	bytes      atomic.Int64
}

// AddTotal adds n plans to the expected total.
func (c *SyncCounters) AddTotal(n int) { c.total.Add(int64(n)) }

// PlanDownloaded records a plan fetched and stored during this run.
func (c *SyncCounters) PlanDownloaded() {
	c.downloaded.Add(1)
	c.checked.Add(1)
}

// PlanExisting records a plan that was already present in the store.
func (c *SyncCounters) PlanExisting() {
	c.existing.Add(1)
	c.checked.Add(1)
}

// AddBytes records n bytes written for downloaded plans.
func (c *SyncCounters) AddBytes(n int64) { c.bytes.Add(n) }

// Bytes returns the bytes written so far.
func (c *SyncCounters) Bytes() int64 { return c.bytes.Load() }

// Snapshot returns a consistent-enough copy of the counters for display.
func (c *SyncCounters) Snapshot() CounterSnapshot {
	return CounterSnapshot{
		Total:      int(c.total.Load()),
		Checked:    int(c.checked.Load()),
		Downloaded: int(c.downloaded.Load()),
		Existing:   int(c.existing.Load()),
	}
}

// CounterSnapshot is a point-in-time copy of SyncCounters.
type CounterSnapshot struct {
	Total      int
	Checked    int
	Downloaded int
	Existing   int
}

// Percent returns checked*100/total using integer division.
// ok is false when the total is zero. Display only.
func (s CounterSnapshot) Percent() (pct int, ok bool) {
	if s.Total <= 0 {
		return 0, false
	}
	return s.Checked * 100 / s.Total, true
}

// String formats the snapshot as a progress line body.
func (s CounterSnapshot) String() string {
	pct, ok := s.Percent()
	if !ok {
		return fmt.Sprintf("%d/%d plans checked, %d downloaded, %d existing.",
			s.Checked, s.Total, s.Downloaded, s.Existing)
	}
	return fmt.Sprintf("%d/%d (%d%%) plans checked, %d downloaded, %d existing.",
		s.Checked, s.Total, pct, s.Downloaded, s.Existing)
}

// RetailerFailure records why a retailer could not be synchronized.
type RetailerFailure struct {
	Brand string
	Stage string
	Err   error
}

func (f RetailerFailure) Error() string {
	return fmt.Sprintf("[%s] %s: %v", f.Brand, f.Stage, f.Err)
}

func (f RetailerFailure) Unwrap() error { return f.Err }

// RunSummary is the outcome of one sync run.
type RunSummary struct {
	Retailers  int
	Plans      int
	Downloaded int
	Existing   int
	Bytes      int64
	Failed     []RetailerFailure
}

// Err joins all retailer failures, or returns nil when every retailer succeeded.
func (s *RunSummary) Err() error {
	if len(s.Failed) == 0 {
		return nil
	}
	errs := make([]error, len(s.Failed))
	brands := make([]string, len(s.Failed))
	for i, f := range s.Failed {
		errs[i] = f
		brands[i] = f.Brand
	}
	return fmt.Errorf("%d of %d retailers failed (%s): %w",
		len(s.Failed), s.Retailers, strings.Join(brands, ", "), errors.Join(errs...))
}
