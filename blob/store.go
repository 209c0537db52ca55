// Package blob implements plansync.PlanStore over a gocloud.dev bucket, so
// plans can be synchronized into any bucket URL the linked drivers support.
package blob

import (
	"context"
	"fmt"
	"io"
	"path"

	"github.com/fwojciec/plansync"
	"gocloud.dev/blob"
	"gocloud.dev/gcerrors"
)

var _ plansync.PlanStore = (*PlanStore)(nil)

// PlanStore stores each plan as the object "<prefix><brand>/<planID>.json".
type PlanStore struct {
	bucket *blob.Bucket
	prefix string
}

// NewPlanStore returns a store writing under prefix in bucket. The caller
// owns the bucket and closes it.
func NewPlanStore(bucket *blob.Bucket, prefix string) *PlanStore {
	return &PlanStore{bucket: bucket, prefix: prefix}
}

// Open opens the bucket at bucketURL, for example "file:///srv/plans" or
// "mem://", and returns a store with its close function.
func Open(ctx context.Context, bucketURL string) (*PlanStore, func() error, error) {
	bucket, err := blob.OpenBucket(ctx, bucketURL)
	if err != nil {
		return nil, nil, plansync.Errorf(plansync.EPRECONDITION, "open bucket %s: %v", bucketURL, err)
	}
	return NewPlanStore(bucket, ""), bucket.Close, nil
}

// Key returns the object key of a plan.
func (s *PlanStore) Key(brand, planID string) (string, error) {
	if err := plansync.ValidateBrand(brand); err != nil {
		return "", err
	}
	if err := plansync.ValidatePlanID(planID); err != nil {
		return "", err
	}
	return s.prefix + path.Join(brand, planID+".json"), nil
}

// Prepare validates the brand. Buckets have no directories to create.
func (s *PlanStore) Prepare(ctx context.Context, brand string) error {
	return plansync.ValidateBrand(brand)
}

// Exists reports whether the plan object is present.
func (s *PlanStore) Exists(ctx context.Context, brand, planID string) (bool, error) {
	key, err := s.Key(brand, planID)
	if err != nil {
		return false, err
	}
	return s.bucket.Exists(ctx, key)
}

// Create uploads r as the plan object. The object only becomes visible when
// the upload completes; a failed read aborts it. Returns ECONFLICT if the
// object already exists.
func (s *PlanStore) Create(ctx context.Context, brand, planID string, r io.Reader) (int64, error) {
	key, err := s.Key(brand, planID)
	if err != nil {
		return 0, err
	}

	// Cancelling the writer's context aborts the upload.
	wctx, cancel := context.WithCancel(ctx)
	defer cancel()

	w, err := s.bucket.NewWriter(wctx, key, &blob.WriterOptions{
		ContentType: "application/json",
		IfNotExist:  true,
	})
	if err != nil {
		return 0, s.writeErr(brand, planID, err)
	}

	n, err := io.Copy(w, r)
	if err != nil {
		cancel()
		_ = w.Close()
		return n, fmt.Errorf("upload %s: %w", key, err)
	}
	if err := w.Close(); err != nil {
		return n, s.writeErr(brand, planID, err)
	}
	return n, nil
}

func (s *PlanStore) writeErr(brand, planID string, err error) error {
	if gcerrors.Code(err) == gcerrors.FailedPrecondition {
		return plansync.Errorf(plansync.ECONFLICT, "plan %s/%s already exists", brand, planID)
	}
	return err
}
