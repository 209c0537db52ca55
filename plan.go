package plansync

import (
	"context"
	"io"
)

// DefaultPageSize is large enough that most retailers answer in one page.
const DefaultPageSize = 1000

// PlanPage is one page of a retailer's plan list.
type PlanPage struct {
	PlanIDs    []string
	TotalPages int
}

// PlanClient speaks the CDR energy plan API of a single retailer.
type PlanClient interface {
	// ListPlans returns one page of plan identifiers.
	// Returns EHTTP on a non-success status and EMALFORMED when the body
	// does not carry a data.plans array.
	ListPlans(ctx context.Context, r Retailer, page, pageSize int) (*PlanPage, error)

	// FetchPlan returns the raw plan detail document.
	// The caller must close the returned reader.
	FetchPlan(ctx context.Context, r Retailer, planID string) (io.ReadCloser, error)
}

// Catalog is the distinct set of plan identifiers found for one retailer.
type Catalog struct {
	Retailer Retailer
	PlanIDs  []string
}

// ValidatePlanID returns an error if id cannot be stored as a plan file name.
func ValidatePlanID(id string) error {
	if id == "" {
		return Errorf(EINVALID, "plan ID required")
	}
	if err := validateSegment(id); err != nil {
		return Errorf(EINVALID, "plan ID %q: %s", id, err.Message)
	}
	return nil
}

// PlanStore persists plan documents, one per (brand, plan ID).
type PlanStore interface {
	// Prepare creates the namespace for a brand. It is idempotent.
	Prepare(ctx context.Context, brand string) error

	// Exists reports whether the plan has already been stored.
	Exists(ctx context.Context, brand, planID string) (bool, error)

	// Create stores the plan content exactly as read from r. The plan becomes
	// visible only once the content has been fully written.
	// Returns ECONFLICT if the plan already exists; existing plans are never
	// overwritten.
	Create(ctx context.Context, brand, planID string, r io.Reader) (int64, error)
}
