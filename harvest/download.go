package harvest

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/cespare/xxhash/v2"
	"github.com/fwojciec/plansync"
	"golang.org/x/sync/errgroup"
)

// Downloader ensures every plan in a catalog exists in the store, fetching
// only the ones that are missing.
type Downloader struct {
	Client      plansync.PlanClient
	Store       plansync.PlanStore
	Index       plansync.PlanIndex // optional
	RateLimiter plansync.DomainLimiter
	Logger      *slog.Logger

	// Workers bounds concurrent fetches within one retailer. Values below 1
	// mean one plan at a time.
	Workers int
}

// Sync downloads the catalog's missing plans and updates counters.
//
// The first fetch or store error stops the retailer: no new plans are
// started and the error is returned once in-flight plans finish. Plans
// already written stay in place so a later run resumes where this one
// stopped.
func (d *Downloader) Sync(ctx context.Context, catalog *plansync.Catalog, counters *plansync.SyncCounters) error {
	r := catalog.Retailer
	if err := d.Store.Prepare(ctx, r.Brand); err != nil {
		return fmt.Errorf("prepare %s: %w", r.Brand, err)
	}

	workers := d.Workers
	if workers < 1 {
		workers = 1
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for _, id := range catalog.PlanIDs {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			return d.syncPlan(gctx, r, id, counters)
		})
	}

	if err := g.Wait(); err != nil {
		return err
	}
	return ctx.Err()
}

// syncPlan checks one plan and downloads it when absent.
func (d *Downloader) syncPlan(ctx context.Context, r plansync.Retailer, planID string, counters *plansync.SyncCounters) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	exists, err := d.Store.Exists(ctx, r.Brand, planID)
	if err != nil {
		return fmt.Errorf("check plan %s: %w", planID, err)
	}
	if exists {
		counters.PlanExisting()
		return nil
	}

	if err := wait(ctx, d.RateLimiter, r); err != nil {
		return err
	}

	body, err := d.Client.FetchPlan(ctx, r, planID)
	if err != nil {
		return fmt.Errorf("fetch plan %s: %w", planID, err)
	}
	defer body.Close()

	h := xxhash.New()
	n, err := d.Store.Create(ctx, r.Brand, planID, io.TeeReader(body, h))
	if plansync.ErrorCode(err) == plansync.ECONFLICT {
		// Another writer stored it first.
		counters.PlanExisting()
		return nil
	}
	if err != nil {
		return fmt.Errorf("store plan %s: %w", planID, err)
	}
	counters.PlanDownloaded()
	counters.AddBytes(n)

	if d.Index != nil {
		rec := &plansync.PlanRecord{
			Brand:       r.Brand,
			PlanID:      planID,
			Size:        n,
			ContentHash: fmt.Sprintf("%016x", h.Sum64()),
		}
		if err := d.Index.CreatePlanRecord(ctx, rec); err != nil {
			d.logger().Warn("index plan", "brand", r.Brand, "plan", planID, "err", err)
		}
	}
	return nil
}

func (d *Downloader) logger() *slog.Logger {
	if d.Logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return d.Logger
}
