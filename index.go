package plansync

import (
	"context"
	"time"
)

// PlanRecord describes a plan document downloaded into the store.
type PlanRecord struct {
	ID          string    `json:"id"`
	Brand       string    `json:"brand"`
	PlanID      string    `json:"planId"`
	Size        int64     `json:"size"`
	ContentHash string    `json:"contentHash"`
	FetchedAt   time.Time `json:"fetchedAt"`
}

// Validate returns an error if the record contains invalid fields.
func (r *PlanRecord) Validate() error {
	if r.Brand == "" {
		return Errorf(EINVALID, "plan record brand required")
	}
	if r.PlanID == "" {
		return Errorf(EINVALID, "plan record plan ID required")
	}
	return nil
}

// PlanIndex keeps a queryable log of downloaded plans. It is informational:
// the plan store alone decides whether a plan is already synchronized.
type PlanIndex interface {
	// CreatePlanRecord records a download. ID and FetchedAt are assigned
	// when empty.
	CreatePlanRecord(ctx context.Context, rec *PlanRecord) error

	// FindPlanRecords retrieves records matching the filter, newest first.
	FindPlanRecords(ctx context.Context, filter PlanRecordFilter) ([]*PlanRecord, error)
}

// PlanRecordFilter represents a filter for FindPlanRecords.
type PlanRecordFilter struct {
	Brand  *string `json:"brand"`
	PlanID *string `json:"planId"`

	Offset int `json:"offset"`
	Limit  int `json:"limit"`
}
