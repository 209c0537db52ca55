package harvest_test

import (
	"context"
	"testing"

	"github.com/fwojciec/plansync"
	"github.com/fwojciec/plansync/harvest"
	"github.com/fwojciec/plansync/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var acme = plansync.Retailer{Brand: "AcmePower", BaseURL: "https://api.acme.test"}

// pagedClient serves pages[page-1] and records requested pages.
func pagedClient(pages []*plansync.PlanPage, calls *[]int) *mock.PlanClient {
	return &mock.PlanClient{
		ListPlansFn: func(_ context.Context, _ plansync.Retailer, page, _ int) (*plansync.PlanPage, error) {
			*calls = append(*calls, page)
			if page > len(pages) {
				return &plansync.PlanPage{PlanIDs: []string{}, TotalPages: len(pages)}, nil
			}
			return pages[page-1], nil
		},
	}
}

func TestCatalogBuilder_BuildCatalog(t *testing.T) {
	t.Parallel()

	t.Run("collapses identifiers differing only by case", func(t *testing.T) {
		t.Parallel()

		var calls []int
		b := &harvest.CatalogBuilder{Client: pagedClient([]*plansync.PlanPage{
			{PlanIDs: []string{"P1", "p1", "P2"}, TotalPages: 1},
		}, &calls)}

		catalog, err := b.BuildCatalog(context.Background(), acme)

		require.NoError(t, err)
		assert.Equal(t, []string{"P1", "P2"}, catalog.PlanIDs)
		assert.Equal(t, acme, catalog.Retailer)
		assert.Equal(t, []int{1}, calls)
	})

	t.Run("trims identifiers and skips blanks", func(t *testing.T) {
		t.Parallel()

		var calls []int
		b := &harvest.CatalogBuilder{Client: pagedClient([]*plansync.PlanPage{
			{PlanIDs: []string{"  A1 ", "", "   ", "\tB2\n", "a1"}, TotalPages: 1},
		}, &calls)}

		catalog, err := b.BuildCatalog(context.Background(), acme)

		require.NoError(t, err)
		assert.Equal(t, []string{"A1", "B2"}, catalog.PlanIDs)
	})

	t.Run("reads exactly the page count reported first", func(t *testing.T) {
		t.Parallel()

		var calls []int
		b := &harvest.CatalogBuilder{Client: pagedClient([]*plansync.PlanPage{
			{PlanIDs: []string{"A"}, TotalPages: 3},
			{PlanIDs: []string{"B"}, TotalPages: 10},
			{PlanIDs: []string{"C"}, TotalPages: 1},
		}, &calls)}

		catalog, err := b.BuildCatalog(context.Background(), acme)

		require.NoError(t, err)
		assert.Equal(t, []int{1, 2, 3}, calls)
		assert.Equal(t, []string{"A", "B", "C"}, catalog.PlanIDs)
	})

	t.Run("treats missing or non-positive total pages as one", func(t *testing.T) {
		t.Parallel()

		for _, total := range []int{0, -4} {
			var calls []int
			b := &harvest.CatalogBuilder{Client: pagedClient([]*plansync.PlanPage{
				{PlanIDs: []string{"A"}, TotalPages: total},
			}, &calls)}

			_, err := b.BuildCatalog(context.Background(), acme)

			require.NoError(t, err)
			assert.Equal(t, []int{1}, calls, "total=%d", total)
		}
	})

	t.Run("continues past an empty page", func(t *testing.T) {
		t.Parallel()

		var calls []int
		b := &harvest.CatalogBuilder{Client: pagedClient([]*plansync.PlanPage{
			{PlanIDs: []string{"A"}, TotalPages: 3},
			{PlanIDs: []string{}, TotalPages: 3},
			{PlanIDs: []string{"B", "a"}, TotalPages: 3},
		}, &calls)}

		catalog, err := b.BuildCatalog(context.Background(), acme)

		require.NoError(t, err)
		assert.Equal(t, []int{1, 2, 3}, calls)
		assert.Equal(t, []string{"A", "B"}, catalog.PlanIDs)
	})

	t.Run("passes page size and defaults it", func(t *testing.T) {
		t.Parallel()

		var sizes []int
		client := &mock.PlanClient{
			ListPlansFn: func(_ context.Context, _ plansync.Retailer, _, pageSize int) (*plansync.PlanPage, error) {
				sizes = append(sizes, pageSize)
				return &plansync.PlanPage{PlanIDs: []string{}, TotalPages: 1}, nil
			},
		}

		_, err := (&harvest.CatalogBuilder{Client: client}).BuildCatalog(context.Background(), acme)
		require.NoError(t, err)
		_, err = (&harvest.CatalogBuilder{Client: client, PageSize: 25}).BuildCatalog(context.Background(), acme)
		require.NoError(t, err)

		assert.Equal(t, []int{plansync.DefaultPageSize, 25}, sizes)
	})

	t.Run("malformed page halts the build", func(t *testing.T) {
		t.Parallel()

		var calls []int
		client := &mock.PlanClient{
			ListPlansFn: func(_ context.Context, _ plansync.Retailer, page, _ int) (*plansync.PlanPage, error) {
				calls = append(calls, page)
				if page == 2 {
					return nil, plansync.Errorf(plansync.EMALFORMED, "no plans data on page 2")
				}
				return &plansync.PlanPage{PlanIDs: []string{"A"}, TotalPages: 3}, nil
			},
		}

		catalog, err := (&harvest.CatalogBuilder{Client: client}).BuildCatalog(context.Background(), acme)

		require.Error(t, err)
		assert.Nil(t, catalog)
		assert.Equal(t, plansync.EMALFORMED, plansync.ErrorCode(err))
		assert.Contains(t, err.Error(), "list plans page 2")
		assert.Equal(t, []int{1, 2}, calls)
	})

	t.Run("stops when canceled", func(t *testing.T) {
		t.Parallel()

		ctx, cancel := context.WithCancel(context.Background())
		var calls []int
		client := &mock.PlanClient{
			ListPlansFn: func(_ context.Context, _ plansync.Retailer, page, _ int) (*plansync.PlanPage, error) {
				calls = append(calls, page)
				cancel()
				return &plansync.PlanPage{PlanIDs: []string{"A"}, TotalPages: 5}, nil
			},
		}

		_, err := (&harvest.CatalogBuilder{Client: client}).BuildCatalog(ctx, acme)

		require.ErrorIs(t, err, context.Canceled)
		assert.Equal(t, []int{1}, calls)
	})

	t.Run("waits on the rate limiter per page", func(t *testing.T) {
		t.Parallel()

		var hosts []string
		limiter := &recordingLimiter{hosts: &hosts}
		var calls []int
		b := &harvest.CatalogBuilder{
			Client: pagedClient([]*plansync.PlanPage{
				{PlanIDs: []string{"A"}, TotalPages: 2},
				{PlanIDs: []string{"B"}, TotalPages: 2},
			}, &calls),
			RateLimiter: limiter,
		}

		_, err := b.BuildCatalog(context.Background(), acme)

		require.NoError(t, err)
		assert.Equal(t, []string{"api.acme.test", "api.acme.test"}, hosts)
	})
}

type recordingLimiter struct {
	hosts *[]string
}

func (l *recordingLimiter) Wait(_ context.Context, host string) error {
	*l.hosts = append(*l.hosts, host)
	return nil
}
