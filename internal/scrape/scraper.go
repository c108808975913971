// Package scrape holds the platform collaborators: one scraper per review
// platform, all sharing a single polite HTTP session. Scrapers normalize
// review dates through the dateparse chain and gate every record through the
// review-data validator before it reaches the orchestrator.
package scrape

import (
	"context"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/rs/zerolog"

	"github.com/avetrov/reviewscope/internal/dateparse"
	"github.com/avetrov/reviewscope/internal/model"
)

// Scraper is the capability set every platform variant implements.
type Scraper interface {
	// Name returns the platform label ("g2", "capterra", "trustpilot").
	Name() string

	// SearchProduct resolves a company name to the platform's product page URL.
	SearchProduct(ctx context.Context, company string) (string, error)

	// ScrapeReviews walks the product's review pages and returns the records
	// that fall inside [startDate, endDate] (YYYY-MM-DD, inclusive).
	ScrapeReviews(ctx context.Context, company, startDate, endDate string) ([]model.Review, error)

	// ExtractReviewData pulls one review record out of a review container.
	// ok=false means the container held no usable review.
	ExtractReviewData(sel *goquery.Selection) (model.Review, bool)
}

// Registry maps source names to scrapers and fixes the dispatch order.
type Registry struct {
	order    []string
	scrapers map[string]Scraper
}

// NewRegistry builds the registry with all built-in platform scrapers.
func NewRegistry(client *Client, cfg *model.Config, dates *dateparse.Parser, log zerolog.Logger) *Registry {
	r := &Registry{scrapers: make(map[string]Scraper)}
	r.Register(NewG2Scraper(client, cfg, dates, log))
	r.Register(NewCapterraScraper(client, cfg, dates, log))
	r.Register(NewTrustpilotScraper(client, cfg, dates, log))
	return r
}

// Register adds a scraper. Registration order is dispatch order.
func (r *Registry) Register(s Scraper) {
	name := strings.ToLower(s.Name())
	if _, exists := r.scrapers[name]; !exists {
		r.order = append(r.order, name)
	}
	r.scrapers[name] = s
}

// Get returns the scraper for a source name.
func (r *Registry) Get(name string) (Scraper, bool) {
	s, ok := r.scrapers[strings.ToLower(name)]
	return s, ok
}

// Supported lists the valid source arguments, "all" last.
func (r *Registry) Supported() []string {
	return append(append([]string{}, r.order...), "all")
}

// Select resolves a source argument to the list of scrapers to dispatch, in
// fixed order.
func (r *Registry) Select(source string) []string {
	source = strings.ToLower(strings.TrimSpace(source))
	if source == "all" || source == "" {
		return append([]string{}, r.order...)
	}
	return []string{source}
}

// resolveURL joins a possibly relative href against a base URL.
func resolveURL(base, href string) string {
	baseURL, err := url.Parse(base)
	if err != nil {
		return href
	}
	ref, err := url.Parse(href)
	if err != nil {
		return href
	}
	return baseURL.ResolveReference(ref).String()
}

// hostOf extracts the host from a URL, or "" if unparseable.
func hostOf(rawURL string) string {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	return parsed.Host
}
