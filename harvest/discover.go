package harvest

import (
	"context"
	"fmt"

	"github.com/fwojciec/plansync"
)

var _ plansync.RetailerSource = (*Discoverer)(nil)

// Discoverer finds retailers through the regulator's register: it loads the
// register page, follows its PDF link and reads the retailer table.
type Discoverer struct {
	Fetcher plansync.Fetcher
	Links   plansync.LinkFinder
	Tables  plansync.RetailerTableParser

	// PageURL defaults to plansync.RegisterPageURL.
	PageURL string
}

// DiscoverRetailers returns the retailers listed in the current register.
func (d *Discoverer) DiscoverRetailers(ctx context.Context) ([]plansync.Retailer, error) {
	pageURL := d.PageURL
	if pageURL == "" {
		pageURL = plansync.RegisterPageURL
	}

	html, err := d.Fetcher.Fetch(ctx, pageURL)
	if err != nil {
		return nil, fmt.Errorf("fetch register page: %w", err)
	}

	pdfURL, err := d.Links.FindPDFLink(html, pageURL)
	if err != nil {
		return nil, fmt.Errorf("find register PDF on %s: %w", pageURL, err)
	}

	pdf, err := d.Fetcher.Fetch(ctx, pdfURL)
	if err != nil {
		return nil, fmt.Errorf("fetch register PDF: %w", err)
	}
	if len(pdf) == 0 {
		return nil, plansync.Errorf(plansync.EMALFORMED, "register PDF %s is empty", pdfURL)
	}

	retailers, err := d.Tables.ParseRetailers(pdf)
	if err != nil {
		return nil, fmt.Errorf("read register PDF %s: %w", pdfURL, err)
	}
	if len(retailers) == 0 {
		return nil, plansync.Errorf(plansync.ENOTFOUND, "no retailers found in register PDF %s", pdfURL)
	}

	seen := make(map[string]string, len(retailers))
	result := make([]plansync.Retailer, 0, len(retailers))
	for i, r := range retailers {
		if err := r.Validate(); err != nil {
			return nil, plansync.Errorf(plansync.EINTEGRITY, "register row %d: %s", i+1, plansync.ErrorMessage(err))
		}
		if prev, ok := seen[r.Brand]; ok {
			if prev != r.BaseURL {
				return nil, plansync.Errorf(plansync.EINTEGRITY, "register lists brand %q with two base URLs", r.Brand)
			}
			continue
		}
		seen[r.Brand] = r.BaseURL
		result = append(result, r)
	}
	return result, nil
}
