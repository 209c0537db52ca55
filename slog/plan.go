// Package slog provides logging decorators for plansync services.
package slog

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/fwojciec/plansync"
)

var (
	_ plansync.PlanClient = (*LoggingPlanClient)(nil)
	_ plansync.PlanStore  = (*LoggingPlanStore)(nil)
)

// LoggingPlanClient wraps a PlanClient with request logging.
type LoggingPlanClient struct {
	next   plansync.PlanClient
	logger *slog.Logger
}

// NewLoggingPlanClient creates a new LoggingPlanClient.
func NewLoggingPlanClient(next plansync.PlanClient, logger *slog.Logger) *LoggingPlanClient {
	return &LoggingPlanClient{next: next, logger: logger}
}

// ListPlans delegates to the wrapped client and logs the page.
func (c *LoggingPlanClient) ListPlans(ctx context.Context, r plansync.Retailer, page, pageSize int) (result *plansync.PlanPage, err error) {
	defer func(begin time.Time) {
		attrs := []any{
			"brand", r.Brand,
			"page", page,
			"duration", time.Since(begin),
		}
		if result != nil {
			attrs = append(attrs, "count", len(result.PlanIDs), "totalPages", result.TotalPages)
		}
		if err != nil {
			attrs = append(attrs, "err", err)
		}
		c.logger.Info("list plans", attrs...)
	}(time.Now())
	return c.next.ListPlans(ctx, r, page, pageSize)
}

// FetchPlan delegates to the wrapped client and logs the request.
// The duration covers the response headers, not the body.
func (c *LoggingPlanClient) FetchPlan(ctx context.Context, r plansync.Retailer, planID string) (body io.ReadCloser, err error) {
	defer func(begin time.Time) {
		c.logger.Debug("fetch plan",
			"brand", r.Brand,
			"plan", planID,
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return c.next.FetchPlan(ctx, r, planID)
}

// LoggingPlanStore wraps a PlanStore with logging of writes.
type LoggingPlanStore struct {
	next   plansync.PlanStore
	logger *slog.Logger
}

// NewLoggingPlanStore creates a new LoggingPlanStore.
func NewLoggingPlanStore(next plansync.PlanStore, logger *slog.Logger) *LoggingPlanStore {
	return &LoggingPlanStore{next: next, logger: logger}
}

// Prepare delegates to the wrapped store.
func (s *LoggingPlanStore) Prepare(ctx context.Context, brand string) error {
	return s.next.Prepare(ctx, brand)
}

// Exists delegates to the wrapped store.
func (s *LoggingPlanStore) Exists(ctx context.Context, brand, planID string) (bool, error) {
	return s.next.Exists(ctx, brand, planID)
}

// Create delegates to the wrapped store and logs the write.
func (s *LoggingPlanStore) Create(ctx context.Context, brand, planID string, r io.Reader) (n int64, err error) {
	defer func(begin time.Time) {
		s.logger.Info("create plan",
			"brand", brand,
			"plan", planID,
			"bytes", n,
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return s.next.Create(ctx, brand, planID, r)
}
