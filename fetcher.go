package plansync

import "context"

// RegisterPageURL is the regulator page linking to the current retailer register PDF.
const RegisterPageURL = "https://www.aer.gov.au/documents/consumer-data-right-energy-retailer-base-uris-and-cdr-brands"

// CDRBaseURLPrefix is the prefix shared by every retailer's CDR base URL.
const CDRBaseURLPrefix = "https://cdr.energymadeeasy.gov.au/"

// Fetcher retrieves raw documents from URLs.
// The context controls timeout and cancellation.
type Fetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

// LinkFinder locates the register PDF link in the regulator's HTML page.
type LinkFinder interface {
	// FindPDFLink returns the absolute URL of the first PDF link in html,
	// resolved against pageURL. Returns ENOTFOUND when there is none.
	FindPDFLink(html []byte, pageURL string) (string, error)
}

// RetailerTableParser extracts retailers from the register PDF.
type RetailerTableParser interface {
	// ParseRetailers returns retailers in document order.
	// Returns EINTEGRITY when a row carries an unusable CDR brand.
	ParseRetailers(pdf []byte) ([]Retailer, error)
}
