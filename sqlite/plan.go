package sqlite

import (
	"context"
	"strings"
	"time"

	"github.com/fwojciec/plansync"
	"github.com/google/uuid"
)

// Compile-time interface verification.
var _ plansync.PlanIndex = (*PlanIndex)(nil)

// PlanIndex implements plansync.PlanIndex using SQLite.
type PlanIndex struct {
	db *DB
}

// NewPlanIndex creates a new PlanIndex.
func NewPlanIndex(db *DB) *PlanIndex {
	return &PlanIndex{db: db}
}

// CreatePlanRecord records a downloaded plan.
func (s *PlanIndex) CreatePlanRecord(ctx context.Context, rec *plansync.PlanRecord) error {
	if err := rec.Validate(); err != nil {
		return err
	}

	if rec.ID == "" {
		rec.ID = uuid.New().String()
	}
	if rec.FetchedAt.IsZero() {
		rec.FetchedAt = time.Now().UTC()
	}
	rec.FetchedAt = rec.FetchedAt.UTC().Truncate(time.Second)

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO plans (id, brand, plan_id, size, content_hash, fetched_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, rec.ID, rec.Brand, rec.PlanID, rec.Size, rec.ContentHash, rec.FetchedAt.Format(time.RFC3339))
	if err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed") {
		return plansync.Errorf(plansync.ECONFLICT, "plan record %s already exists", rec.ID)
	}
	return err
}

// FindPlanRecords retrieves records matching the filter, newest first.
func (s *PlanIndex) FindPlanRecords(ctx context.Context, filter plansync.PlanRecordFilter) ([]*plansync.PlanRecord, error) {
	var query strings.Builder
	var args []any

	query.WriteString("SELECT id, brand, plan_id, size, content_hash, fetched_at FROM plans WHERE 1=1")

	if filter.Brand != nil {
		query.WriteString(" AND brand = ?")
		args = append(args, *filter.Brand)
	}
	if filter.PlanID != nil {
		query.WriteString(" AND plan_id = ?")
		args = append(args, *filter.PlanID)
	}

	query.WriteString(" ORDER BY fetched_at DESC, rowid DESC")

	// SQLite requires LIMIT before OFFSET.
	if filter.Offset > 0 && filter.Limit <= 0 {
		filter.Limit = -1
	}
	appendPagination(&query, &args, filter.Limit, filter.Offset)

	rows, err := s.db.QueryContext(ctx, query.String(), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var recs []*plansync.PlanRecord
	for rows.Next() {
		var rec plansync.PlanRecord
		var fetchedAt string

		if err := rows.Scan(&rec.ID, &rec.Brand, &rec.PlanID, &rec.Size, &rec.ContentHash, &fetchedAt); err != nil {
			return nil, err
		}

		rec.FetchedAt, err = parseRFC3339(fetchedAt, "fetched_at")
		if err != nil {
			return nil, err
		}

		recs = append(recs, &rec)
	}

	return recs, rows.Err()
}
