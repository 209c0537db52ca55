// Package fs provides file-based storage for plan documents and the
// retailer list.
package fs

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"

	"github.com/fwojciec/plansync"
)

// Ensure PlanStore implements plansync.PlanStore at compile time.
var _ plansync.PlanStore = (*PlanStore)(nil)

// PlanStore keeps plans at <root>/<brand>/<planID>.json.
//
// Content is written to a hidden temporary file and hard-linked into place,
// so a plan path either does not exist or holds the complete response.
// Linking fails when the target exists, which makes the existence check and
// the create a single decision even with concurrent writers.
type PlanStore struct {
	root string
}

// NewPlanStore creates a PlanStore rooted at root.
func NewPlanStore(root string) *PlanStore {
	return &PlanStore{root: root}
}

// PlanPath returns the path of a plan relative to the store root.
func PlanPath(brand, planID string) (string, error) {
	if err := plansync.ValidateBrand(brand); err != nil {
		return "", err
	}
	if err := plansync.ValidatePlanID(planID); err != nil {
		return "", err
	}
	rel := filepath.Join(brand, planID+".json")
	if !filepath.IsLocal(rel) {
		return "", plansync.Errorf(plansync.EINVALID, "plan path %q escapes the output directory", rel)
	}
	return rel, nil
}

func (s *PlanStore) path(brand, planID string) (string, error) {
	rel, err := PlanPath(brand, planID)
	if err != nil {
		return "", err
	}
	return filepath.Join(s.root, rel), nil
}

// Prepare creates the brand directory if it does not exist.
func (s *PlanStore) Prepare(ctx context.Context, brand string) error {
	if err := plansync.ValidateBrand(brand); err != nil {
		return err
	}
	return os.MkdirAll(filepath.Join(s.root, brand), 0755)
}

// Exists reports whether the plan file is present.
func (s *PlanStore) Exists(ctx context.Context, brand, planID string) (bool, error) {
	p, err := s.path(brand, planID)
	if err != nil {
		return false, err
	}
	_, err = os.Stat(p)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, os.ErrNotExist):
		return false, nil
	default:
		return false, err
	}
}

// Create writes r to the plan file. Returns ECONFLICT if it already exists.
func (s *PlanStore) Create(ctx context.Context, brand, planID string, r io.Reader) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	p, err := s.path(brand, planID)
	if err != nil {
		return 0, err
	}

	tmp, err := os.CreateTemp(filepath.Dir(p), "."+planID+".*.tmp")
	if err != nil {
		return 0, err
	}
	defer os.Remove(tmp.Name())

	n, err := io.Copy(tmp, r)
	if err != nil {
		tmp.Close()
		return n, err
	}
	if err := tmp.Close(); err != nil {
		return n, err
	}

	if err := os.Link(tmp.Name(), p); err != nil {
		if errors.Is(err, os.ErrExist) {
			return 0, plansync.Errorf(plansync.ECONFLICT, "plan %s/%s already exists", brand, planID)
		}
		return 0, err
	}
	return n, nil
}
