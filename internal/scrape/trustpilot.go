package scrape

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/rs/zerolog"

	"github.com/avetrov/reviewscope/internal/dateparse"
	"github.com/avetrov/reviewscope/internal/model"
)

// TrustpilotScraper collects reviews from trustpilot.com. Trustpilot renders
// one article element per review with a machine-readable time[datetime]
// attribute and star ratings announced through image alt text.
type TrustpilotScraper struct {
	walker     pageWalker
	baseURL    string
	searchPath string
	dates      *dateparse.Parser
}

func NewTrustpilotScraper(client *Client, cfg *model.Config, dates *dateparse.Parser, log zerolog.Logger) *TrustpilotScraper {
	platform := cfg.Scrape.Platforms["trustpilot"]
	return &TrustpilotScraper{
		walker: pageWalker{
			client:   client,
			dates:    dates,
			maxPages: cfg.Scrape.MaxPages,
			log:      log.With().Str("scraper", "trustpilot").Logger(),
		},
		baseURL:    platform.BaseURL,
		searchPath: platform.SearchPath,
		dates:      dates,
	}
}

func (s *TrustpilotScraper) Name() string { return "trustpilot" }

func (s *TrustpilotScraper) SearchProduct(ctx context.Context, company string) (string, error) {
	searchURL := fmt.Sprintf("%s%s?query=%s", s.baseURL, s.searchPath, url.QueryEscape(company))
	doc, err := s.walker.client.GetDocument(ctx, searchURL)
	if err != nil {
		return "", fmt.Errorf("trustpilot search: %w", err)
	}

	href := firstAttr(doc.Find("a[href^='/review/']"), "href")
	if href == "" {
		return "", fmt.Errorf("no trustpilot listing found for %q", company)
	}
	return resolveURL(s.baseURL, href), nil
}

func (s *TrustpilotScraper) ScrapeReviews(ctx context.Context, company, startDate, endDate string) ([]model.Review, error) {
	listingURL, err := s.SearchProduct(ctx, company)
	if err != nil {
		return nil, err
	}
	listingURL = strings.TrimSuffix(listingURL, "/")

	pageURL := func(page int) string {
		if page == 1 {
			return listingURL
		}
		return fmt.Sprintf("%s?page=%d", listingURL, page)
	}

	return s.walker.collect(ctx, pageURL, "article", s.ExtractReviewData, startDate, endDate)
}

func (s *TrustpilotScraper) ExtractReviewData(sel *goquery.Selection) (model.Review, bool) {
	title := cleanText(sel.Find("h2").First())
	text := cleanText(sel.Find("p[data-service-review-text-typography], section p").First())
	if title == "" && text == "" {
		return model.Review{}, false
	}

	rev := model.Review{
		Title:    truncate(title, model.MaxTitleLength),
		Text:     truncate(text, model.MaxReviewLength),
		Reviewer: cleanText(sel.Find("[data-consumer-name-typography], aside span").First()),
		Source:   s.Name(),
	}

	rawDate := firstAttr(sel.Find("time"), "datetime")
	if rawDate == "" {
		rawDate = cleanText(sel.Find("time").First())
	}
	if t, ok := s.dates.Parse(rawDate); ok {
		rev.Date = s.dates.Normalize(t)
	}

	// Star widgets carry the value in alt text, "Rated 4 out of 5 stars".
	if alt := firstAttr(sel.Find("img[alt*='out of 5']"), "alt"); alt != "" {
		if v, ok := parseRating(alt); ok {
			rev.Rating = model.Rated(v)
		}
	}

	return rev, true
}
