// Package http implements plansync.PlanClient and plansync.Fetcher over
// net/http for the CDR energy plan API and the regulator's register.
package http

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/fwojciec/plansync"
)

// DefaultTimeout bounds every request, including reading the body.
const DefaultTimeout = 30 * time.Second

// DefaultUserAgent identifies the tool to retailer APIs.
const DefaultUserAgent = "open-energy-tracker (https://github.com/zivkan/open-energy-tracker)"

// Version headers required by the CDR energy API.
const (
	listPlansVersion  = "1"
	planDetailVersion = "3"
)

// Ensure Client implements the plansync interfaces at compile time.
var (
	_ plansync.PlanClient = (*Client)(nil)
	_ plansync.Fetcher    = (*Client)(nil)
)

// Client talks to retailer CDR APIs. It keeps no state between calls.
type Client struct {
	client    *http.Client
	timeout   time.Duration
	userAgent string
}

// Option configures a Client.
type Option func(*Client)

// WithTimeout sets the timeout for HTTP requests.
// Defaults to DefaultTimeout if not specified.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.timeout = d
	}
}

// WithUserAgent overrides DefaultUserAgent.
func WithUserAgent(ua string) Option {
	return func(c *Client) {
		c.userAgent = ua
	}
}

// NewClient creates a new Client.
func NewClient(opts ...Option) *Client {
	c := &Client{
		timeout:   DefaultTimeout,
		userAgent: DefaultUserAgent,
	}
	for _, opt := range opts {
		opt(c)
	}

	c.client = &http.Client{
		Timeout: c.timeout,
	}

	return c
}

// plansListResponse mirrors the subset of the plan list body we read.
// Pointers distinguish an absent or null field from an empty one.
type plansListResponse struct {
	Data *struct {
		Plans *[]struct {
			PlanID string `json:"planId"`
		} `json:"plans"`
	} `json:"data"`
	Meta *struct {
		TotalPages int `json:"totalPages"`
	} `json:"meta"`
}

// PlansEndpoint returns the plan list URL for one page.
func PlansEndpoint(baseURL string, page, pageSize int) string {
	return fmt.Sprintf("%s/cds-au/v1/energy/plans?page-size=%d&page=%d",
		strings.TrimRight(baseURL, "/"), pageSize, page)
}

// PlanEndpoint returns the plan detail URL.
func PlanEndpoint(baseURL, planID string) string {
	return strings.TrimRight(baseURL, "/") + "/cds-au/v1/energy/plans/" + url.PathEscape(planID)
}

// ListPlans requests one page of the retailer's plan list.
func (c *Client) ListPlans(ctx context.Context, r plansync.Retailer, page, pageSize int) (*plansync.PlanPage, error) {
	if page < 1 {
		return nil, plansync.Errorf(plansync.EINVALID, "page must be >= 1, got %d", page)
	}
	if pageSize <= 0 {
		pageSize = plansync.DefaultPageSize
	}
	endpoint := PlansEndpoint(r.BaseURL, page, pageSize)

	resp, err := c.get(ctx, endpoint, listPlansVersion)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var body plansListResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, plansync.Errorf(plansync.EMALFORMED, "decoding plan list page %d from %s: %v", page, endpoint, err)
	}
	if body.Data == nil || body.Data.Plans == nil {
		return nil, plansync.Errorf(plansync.EMALFORMED, "no plans data on page %d from %s", page, endpoint)
	}

	result := &plansync.PlanPage{
		PlanIDs: make([]string, 0, len(*body.Data.Plans)),
	}
	for _, p := range *body.Data.Plans {
		result.PlanIDs = append(result.PlanIDs, p.PlanID)
	}
	if body.Meta != nil {
		result.TotalPages = body.Meta.TotalPages
	}
	return result, nil
}

// FetchPlan requests a plan detail document. The body is returned unread so
// it can be stored byte for byte.
func (c *Client) FetchPlan(ctx context.Context, r plansync.Retailer, planID string) (io.ReadCloser, error) {
	resp, err := c.get(ctx, PlanEndpoint(r.BaseURL, planID), planDetailVersion)
	if err != nil {
		return nil, err
	}
	return resp.Body, nil
}

// Fetch retrieves the document at rawURL.
func (c *Client) Fetch(ctx context.Context, rawURL string) ([]byte, error) {
	resp, err := c.get(ctx, rawURL, "")
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", rawURL, err)
	}
	return body, nil
}

// get issues a GET and returns the response when the status is 2xx.
// An empty version omits the CDR headers.
func (c *Client) get(ctx context.Context, endpoint, version string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, plansync.Errorf(plansync.EINVALID, "creating request for %s: %v", endpoint, err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	if version != "" {
		req.Header.Set("Accept", "application/json")
		// Sent in lower case as the API documents it.
		req.Header["x-v"] = []string{version}
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("GET %s: %w", endpoint, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))
		resp.Body.Close()
		return nil, &plansync.HTTPError{Endpoint: endpoint, StatusCode: resp.StatusCode}
	}

	return resp, nil
}
