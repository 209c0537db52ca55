package mock

import (
	"context"

	"github.com/fwojciec/plansync"
)

var _ plansync.PlanIndex = (*PlanIndex)(nil)

// PlanIndex is a mock implementation of plansync.PlanIndex.
type PlanIndex struct {
	CreatePlanRecordFn func(ctx context.Context, rec *plansync.PlanRecord) error
	FindPlanRecordsFn  func(ctx context.Context, filter plansync.PlanRecordFilter) ([]*plansync.PlanRecord, error)
}

func (i *PlanIndex) CreatePlanRecord(ctx context.Context, rec *plansync.PlanRecord) error {
	return i.CreatePlanRecordFn(ctx, rec)
}

func (i *PlanIndex) FindPlanRecords(ctx context.Context, filter plansync.PlanRecordFilter) ([]*plansync.PlanRecord, error) {
	return i.FindPlanRecordsFn(ctx, filter)
}
