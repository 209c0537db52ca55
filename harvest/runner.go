package harvest

import (
	"context"
	"log/slog"
	"time"

	"github.com/fwojciec/plansync"
)

// Stage names used in failure reports.
const (
	StageListPlans     = "list plans"
	StageDownloadPlans = "download plans"
)

// Runner sequences a sync run over retailers, one retailer at a time.
type Runner struct {
	Catalogs  *CatalogBuilder
	Downloads *Downloader
	Logger    *slog.Logger

	// CollectFirst builds every catalog before any download starts, so the
	// progress total covers the whole run. Otherwise each retailer's
	// downloads follow its catalog immediately.
	CollectFirst bool

	// ReportInterval sets how often ProgressTick events fire.
	ReportInterval time.Duration
}

// Run synchronizes every retailer in order.
//
// A failure for one retailer is logged and recorded in the summary and the
// run moves on, so summary.Err() is the returned error when any retailer
// failed. Cancellation stops the run at the next page or plan and returns
// the context error; plans written so far are kept.
func (rn *Runner) Run(ctx context.Context, retailers []plansync.Retailer, progress plansync.ProgressFunc) (*plansync.RunSummary, error) {
	if progress == nil {
		progress = func(plansync.ProgressEvent) {}
	}
	summary := &plansync.RunSummary{Retailers: len(retailers)}
	counters := &plansync.SyncCounters{}

	var err error
	if rn.CollectFirst {
		err = rn.runCollectFirst(ctx, retailers, counters, summary, progress)
	} else {
		err = rn.runInterleaved(ctx, retailers, counters, summary, progress)
	}

	s := counters.Snapshot()
	summary.Plans = s.Total
	summary.Downloaded = s.Downloaded
	summary.Existing = s.Existing
	summary.Bytes = counters.Bytes()

	if err != nil {
		return summary, err
	}
	return summary, summary.Err()
}

func (rn *Runner) runInterleaved(ctx context.Context, retailers []plansync.Retailer, counters *plansync.SyncCounters, summary *plansync.RunSummary, progress plansync.ProgressFunc) error {
	reporter := NewReporter(counters, rn.ReportInterval, progress)
	reporter.Start()
	defer reporter.Stop()

	for i, r := range retailers {
		if err := ctx.Err(); err != nil {
			return err
		}

		catalog, ok, err := rn.buildCatalog(ctx, r, i, len(retailers), summary, progress)
		if err != nil {
			return err
		}
		if !ok {
			continue
		}
		counters.AddTotal(len(catalog.PlanIDs))

		if err := rn.download(ctx, catalog, i, len(retailers), counters, summary, progress); err != nil {
			return err
		}
	}
	return nil
}

func (rn *Runner) runCollectFirst(ctx context.Context, retailers []plansync.Retailer, counters *plansync.SyncCounters, summary *plansync.RunSummary, progress plansync.ProgressFunc) error {
	catalogs := make([]*plansync.Catalog, len(retailers))
	for i, r := range retailers {
		if err := ctx.Err(); err != nil {
			return err
		}
		catalog, ok, err := rn.buildCatalog(ctx, r, i, len(retailers), summary, progress)
		if err != nil {
			return err
		}
		if ok {
			catalogs[i] = catalog
			counters.AddTotal(len(catalog.PlanIDs))
		}
	}

	reporter := NewReporter(counters, rn.ReportInterval, progress)
	reporter.Start()
	defer reporter.Stop()

	for i, catalog := range catalogs {
		if catalog == nil {
			continue
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := rn.download(ctx, catalog, i, len(retailers), counters, summary, progress); err != nil {
			return err
		}
	}
	return nil
}

// buildCatalog returns ok=false when the retailer failed and was recorded.
// A non-nil error means the run itself must stop.
func (rn *Runner) buildCatalog(ctx context.Context, r plansync.Retailer, i, n int, summary *plansync.RunSummary, progress plansync.ProgressFunc) (*plansync.Catalog, bool, error) {
	catalog, err := rn.Catalogs.BuildCatalog(ctx, r)
	if err != nil {
		if ctx.Err() != nil {
			return nil, false, ctx.Err()
		}
		rn.fail(r, StageListPlans, err, i, n, summary, progress)
		return nil, false, nil
	}
	progress(plansync.ProgressEvent{
		Type:  plansync.ProgressCatalogBuilt,
		Brand: r.Brand,
		Plans: len(catalog.PlanIDs),
		Index: i + 1,
		Of:    n,
	})
	return catalog, true, nil
}

func (rn *Runner) download(ctx context.Context, catalog *plansync.Catalog, i, n int, counters *plansync.SyncCounters, summary *plansync.RunSummary, progress plansync.ProgressFunc) error {
	r := catalog.Retailer
	if err := rn.Downloads.Sync(ctx, catalog, counters); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		rn.fail(r, StageDownloadPlans, err, i, n, summary, progress)
		return nil
	}
	progress(plansync.ProgressEvent{
		Type:     plansync.ProgressRetailerDone,
		Brand:    r.Brand,
		Index:    i + 1,
		Of:       n,
		Counters: counters.Snapshot(),
	})
	return nil
}

func (rn *Runner) fail(r plansync.Retailer, stage string, err error, i, n int, summary *plansync.RunSummary, progress plansync.ProgressFunc) {
	rn.logger().Error("retailer failed",
		"brand", r.Brand,
		"stage", stage,
		"baseURL", r.BaseURL,
		"err", err,
	)
	summary.Failed = append(summary.Failed, plansync.RetailerFailure{Brand: r.Brand, Stage: stage, Err: err})
	progress(plansync.ProgressEvent{
		Type:  plansync.ProgressRetailerFailed,
		Brand: r.Brand,
		Index: i + 1,
		Of:    n,
		Err:   err,
	})
}

func (rn *Runner) logger() *slog.Logger {
	if rn.Logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return rn.Logger
}
