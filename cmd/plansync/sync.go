package main

import (
	"fmt"
	"io"
	"sync"

	"github.com/fwojciec/plansync"
)

// Run executes the sync command.
func (c *SyncCmd) Run(deps *Dependencies) error {
	retailers, err := deps.Retailers.LoadRetailers(deps.Ctx)
	if err != nil {
		return err
	}

	fmt.Fprintf(deps.Stdout, "Retailer count: %d\n\n", len(retailers))

	p := &progressPrinter{w: deps.Stdout}
	summary, err := deps.Runner.Run(deps.Ctx, retailers, p.print)
	if summary != nil {
		p.summary(summary)
	}
	return err
}

// progressPrinter writes progress events as lines. Ticks arrive from the
// reporter goroutine, so writes are serialized.
type progressPrinter struct {
	mu sync.Mutex
	w  io.Writer
}

func (p *progressPrinter) print(e plansync.ProgressEvent) {
	p.mu.Lock()
	defer p.mu.Unlock()

	switch e.Type {
	case plansync.ProgressCatalogBuilt:
		fmt.Fprintf(p.w, "[%s] Total distinct plans: %d\n", e.Brand, e.Plans)
	case plansync.ProgressRetailerDone:
		fmt.Fprintf(p.w, "%d/%d retailers complete.\n", e.Index, e.Of)
	case plansync.ProgressRetailerFailed:
		fmt.Fprintf(p.w, "[%s] Skipped: %v\n", e.Brand, e.Err)
	case plansync.ProgressTick:
		fmt.Fprintf(p.w, "Progress: %s\n", e.Counters)
	}
}

func (p *progressPrinter) summary(s *plansync.RunSummary) {
	p.mu.Lock()
	defer p.mu.Unlock()

	fmt.Fprintf(p.w, "\nSynced %d retailers: %d plans, %d downloaded (%s), %d existing",
		s.Retailers-len(s.Failed), s.Plans, s.Downloaded, FormatBytes(s.Bytes), s.Existing)
	if len(s.Failed) > 0 {
		fmt.Fprintf(p.w, ", %d retailers failed", len(s.Failed))
	}
	fmt.Fprintln(p.w, ".")
}
