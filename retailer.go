package plansync

import (
	"context"
	"net/url"
	"strings"
	"unicode"
)

// RetailerListFile is the name of the retailer list kept in the output root.
const RetailerListFile = "retailers.json"

// Retailer is an energy retailer brand exposing a CDR plan API.
// Brand is used verbatim as a directory name in the plan store.
type Retailer struct {
	Brand   string `json:"Brand"`
	BaseURL string `json:"BaseUrl"`
}

// Validate returns an error if the retailer contains invalid fields.
func (r *Retailer) Validate() error {
	if err := ValidateBrand(r.Brand); err != nil {
		return err
	}
	if r.BaseURL == "" {
		return Errorf(EINVALID, "retailer %q base URL required", r.Brand)
	}
	u, err := url.Parse(r.BaseURL)
	if err != nil {
		return Errorf(EINVALID, "retailer %q base URL: %v", r.Brand, err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return Errorf(EINVALID, "retailer %q base URL %q must be an absolute http(s) URL", r.Brand, r.BaseURL)
	}
	return nil
}

// ValidateBrand returns an error if brand cannot be used as a store directory.
func ValidateBrand(brand string) error {
	if brand == "" {
		return Errorf(EINVALID, "retailer brand required")
	}
	if err := validateSegment(brand); err != nil {
		return Errorf(EINVALID, "retailer brand %q: %s", brand, err.Message)
	}
	if strings.IndexFunc(brand, unicode.IsSpace) >= 0 {
		return Errorf(EINVALID, "retailer brand %q contains whitespace", brand)
	}
	return nil
}

// validateSegment rejects values that cannot be used as a single path segment.
func validateSegment(s string) *Error {
	switch {
	case s == "." || s == "..":
		return Errorf(EINVALID, "reserved path segment")
	case strings.ContainsAny(s, `/\`):
		return Errorf(EINVALID, "contains a path separator")
	case strings.ContainsRune(s, 0):
		return Errorf(EINVALID, "contains a NUL byte")
	}
	return nil
}

// RetailerStore persists the discovered retailer list.
type RetailerStore interface {
	// LoadRetailers returns retailers in list order.
	// Returns EPRECONDITION if the list has not been generated yet.
	LoadRetailers(ctx context.Context) ([]Retailer, error)

	// SaveRetailers replaces the stored list.
	SaveRetailers(ctx context.Context, retailers []Retailer) error
}

// RetailerSource discovers retailers from the regulator's published register.
type RetailerSource interface {
	DiscoverRetailers(ctx context.Context) ([]Retailer, error)
}
