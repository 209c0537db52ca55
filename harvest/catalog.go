// Package harvest synchronizes retailer plan catalogs into a plan store.
// It enumerates plan identifiers page by page, downloads missing plans and
// reports progress across a run.
package harvest

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/fwojciec/plansync"
	"golang.org/x/text/cases"
)

// CatalogBuilder enumerates the distinct plan identifiers of a retailer.
type CatalogBuilder struct {
	Client      plansync.PlanClient
	PageSize    int
	RateLimiter plansync.DomainLimiter
	Logger      *slog.Logger
}

// BuildCatalog pages through the retailer's plan list until every page
// reported by the first response has been read.
//
// Identifiers are trimmed, blanks are skipped and duplicates are collapsed
// case-insensitively keeping the first spelling seen. Any client error
// aborts the build.
func (b *CatalogBuilder) BuildCatalog(ctx context.Context, r plansync.Retailer) (*plansync.Catalog, error) {
	pageSize := b.PageSize
	if pageSize <= 0 {
		pageSize = plansync.DefaultPageSize
	}

	fold := cases.Fold()
	seen := make(map[string]bool)
	catalog := &plansync.Catalog{Retailer: r, PlanIDs: []string{}}

	page, totalPages := 1, 1
	for page <= totalPages {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if err := wait(ctx, b.RateLimiter, r); err != nil {
			return nil, err
		}

		result, err := b.Client.ListPlans(ctx, r, page, pageSize)
		if err != nil {
			return nil, fmt.Errorf("list plans page %d: %w", page, err)
		}

		for _, id := range result.PlanIDs {
			id = strings.TrimSpace(id)
			if id == "" {
				continue
			}
			key := fold.String(id)
			if seen[key] {
				continue
			}
			seen[key] = true
			catalog.PlanIDs = append(catalog.PlanIDs, id)
		}

		reported := max(result.TotalPages, 1)
		if page == 1 {
			totalPages = reported
		} else if reported != totalPages {
			b.logger().Debug("total pages changed",
				"brand", r.Brand,
				"page", page,
				"first", totalPages,
				"reported", reported,
			)
		}
		page++
	}

	return catalog, nil
}

func (b *CatalogBuilder) logger() *slog.Logger {
	if b.Logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return b.Logger
}
