package mock

import (
	"context"
	"io"

	"github.com/fwojciec/plansync"
)

var (
	_ plansync.PlanClient = (*PlanClient)(nil)
	_ plansync.PlanStore  = (*PlanStore)(nil)
)

// PlanClient is a mock implementation of plansync.PlanClient.
type PlanClient struct {
	ListPlansFn func(ctx context.Context, r plansync.Retailer, page, pageSize int) (*plansync.PlanPage, error)
	FetchPlanFn func(ctx context.Context, r plansync.Retailer, planID string) (io.ReadCloser, error)
}

func (c *PlanClient) ListPlans(ctx context.Context, r plansync.Retailer, page, pageSize int) (*plansync.PlanPage, error) {
	return c.ListPlansFn(ctx, r, page, pageSize)
}

func (c *PlanClient) FetchPlan(ctx context.Context, r plansync.Retailer, planID string) (io.ReadCloser, error) {
	return c.FetchPlanFn(ctx, r, planID)
}

// PlanStore is a mock implementation of plansync.PlanStore.
type PlanStore struct {
	PrepareFn func(ctx context.Context, brand string) error
	ExistsFn  func(ctx context.Context, brand, planID string) (bool, error)
	CreateFn  func(ctx context.Context, brand, planID string, r io.Reader) (int64, error)
}

func (s *PlanStore) Prepare(ctx context.Context, brand string) error {
	return s.PrepareFn(ctx, brand)
}

func (s *PlanStore) Exists(ctx context.Context, brand, planID string) (bool, error) {
	return s.ExistsFn(ctx, brand, planID)
}

func (s *PlanStore) Create(ctx context.Context, brand, planID string, r io.Reader) (int64, error) {
	return s.CreateFn(ctx, brand, planID, r)
}
