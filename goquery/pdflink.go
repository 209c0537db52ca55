// Package goquery implements plansync.LinkFinder using goquery CSS selectors.
package goquery

import (
	"bytes"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/fwojciec/plansync"
)

var _ plansync.LinkFinder = (*LinkFinder)(nil)

// pdfLinkSelector matches anchors whose href mentions a PDF, in document order.
const pdfLinkSelector = `a[href*=".pdf"]`

// LinkFinder finds the register PDF link on the regulator's page.
type LinkFinder struct{}

// NewLinkFinder creates a new LinkFinder.
func NewLinkFinder() *LinkFinder {
	return &LinkFinder{}
}

// FindPDFLink returns the first PDF link in html resolved against pageURL.
func (f *LinkFinder) FindPDFLink(html []byte, pageURL string) (string, error) {
	base, err := url.Parse(pageURL)
	if err != nil || !base.IsAbs() {
		return "", plansync.Errorf(plansync.EINVALID, "invalid page URL %q", pageURL)
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(html))
	if err != nil {
		return "", plansync.Errorf(plansync.EMALFORMED, "failed to parse HTML: %v", err)
	}

	var link string
	doc.Find(pdfLinkSelector).EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		href := strings.TrimSpace(sel.AttrOr("href", ""))
		if href == "" || isNonHTTPLink(href) {
			return true
		}
		link = resolveURL(base, href)
		return link == ""
	})

	if link == "" {
		return "", plansync.Errorf(plansync.ENOTFOUND, "no PDF link on %s", pageURL)
	}
	return link, nil
}

func resolveURL(base *url.URL, href string) string {
	ref, err := url.Parse(href)
	if err != nil {
		return ""
	}
	return base.ResolveReference(ref).String()
}

// isNonHTTPLink reports hrefs that cannot be downloaded over HTTP.
func isNonHTTPLink(href string) bool {
	href = strings.ToLower(href)
	return strings.HasPrefix(href, "javascript:") ||
		strings.HasPrefix(href, "mailto:") ||
		strings.HasPrefix(href, "data:")
}
