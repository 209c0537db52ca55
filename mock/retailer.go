package mock

import (
	"context"

	"github.com/fwojciec/plansync"
)

var (
	_ plansync.RetailerStore       = (*RetailerStore)(nil)
	_ plansync.RetailerSource      = (*RetailerSource)(nil)
	_ plansync.Fetcher             = (*Fetcher)(nil)
	_ plansync.LinkFinder          = (*LinkFinder)(nil)
	_ plansync.RetailerTableParser = (*RetailerTableParser)(nil)
)

// RetailerStore is a mock implementation of plansync.RetailerStore.
type RetailerStore struct {
	LoadRetailersFn func(ctx context.Context) ([]plansync.Retailer, error)
	SaveRetailersFn func(ctx context.Context, retailers []plansync.Retailer) error
}

func (s *RetailerStore) LoadRetailers(ctx context.Context) ([]plansync.Retailer, error) {
	return s.LoadRetailersFn(ctx)
}

func (s *RetailerStore) SaveRetailers(ctx context.Context, retailers []plansync.Retailer) error {
	return s.SaveRetailersFn(ctx, retailers)
}

// RetailerSource is a mock implementation of plansync.RetailerSource.
type RetailerSource struct {
	DiscoverRetailersFn func(ctx context.Context) ([]plansync.Retailer, error)
}

func (s *RetailerSource) DiscoverRetailers(ctx context.Context) ([]plansync.Retailer, error) {
	return s.DiscoverRetailersFn(ctx)
}

// Fetcher is a mock implementation of plansync.Fetcher.
type Fetcher struct {
	FetchFn func(ctx context.Context, url string) ([]byte, error)
}

func (f *Fetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	return f.FetchFn(ctx, url)
}

// LinkFinder is a mock implementation of plansync.LinkFinder.
type LinkFinder struct {
	FindPDFLinkFn func(html []byte, pageURL string) (string, error)
}

func (f *LinkFinder) FindPDFLink(html []byte, pageURL string) (string, error) {
	return f.FindPDFLinkFn(html, pageURL)
}

// RetailerTableParser is a mock implementation of plansync.RetailerTableParser.
type RetailerTableParser struct {
	ParseRetailersFn func(pdf []byte) ([]plansync.Retailer, error)
}

func (p *RetailerTableParser) ParseRetailers(pdf []byte) ([]plansync.Retailer, error) {
	return p.ParseRetailersFn(pdf)
}
