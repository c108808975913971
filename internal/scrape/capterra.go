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

// CapterraScraper collects reviews from capterra.com. Capterra splits review
// bodies into separate pros and cons sections and renders slash-style dates.
type CapterraScraper struct {
	walker     pageWalker
	baseURL    string
	searchPath string
	dates      *dateparse.Parser
}

func NewCapterraScraper(client *Client, cfg *model.Config, dates *dateparse.Parser, log zerolog.Logger) *CapterraScraper {
	platform := cfg.Scrape.Platforms["capterra"]
	return &CapterraScraper{
		walker: pageWalker{
			client:   client,
			dates:    dates,
			maxPages: cfg.Scrape.MaxPages,
			log:      log.With().Str("scraper", "capterra").Logger(),
		},
		baseURL:    platform.BaseURL,
		searchPath: platform.SearchPath,
		dates:      dates,
	}
}

func (s *CapterraScraper) Name() string { return "capterra" }

func (s *CapterraScraper) SearchProduct(ctx context.Context, company string) (string, error) {
	searchURL := fmt.Sprintf("%s%s?search=%s", s.baseURL, s.searchPath, url.QueryEscape(company))
	doc, err := s.walker.client.GetDocument(ctx, searchURL)
	if err != nil {
		return "", fmt.Errorf("capterra search: %w", err)
	}

	href := firstAttr(doc.Find("a[href*='/p/']"), "href")
	if href == "" {
		return "", fmt.Errorf("no capterra product found for %q", company)
	}
	return resolveURL(s.baseURL, href), nil
}

func (s *CapterraScraper) ScrapeReviews(ctx context.Context, company, startDate, endDate string) ([]model.Review, error) {
	productURL, err := s.SearchProduct(ctx, company)
	if err != nil {
		return nil, err
	}

	reviewsURL := strings.TrimSuffix(productURL, "/")
	if !strings.HasSuffix(reviewsURL, "/reviews") {
		reviewsURL += "/reviews"
	}

	pageURL := func(page int) string {
		if page == 1 {
			return reviewsURL
		}
		return fmt.Sprintf("%s?page=%d", reviewsURL, page)
	}

	return s.walker.collect(ctx, pageURL, "div[data-testid='review-card'], div.review-card", s.ExtractReviewData, startDate, endDate)
}

func (s *CapterraScraper) ExtractReviewData(sel *goquery.Selection) (model.Review, bool) {
	title := cleanText(sel.Find("h3, [data-testid='review-title']").First())
	text := cleanText(sel.Find("[data-testid='review-body'], p.review-text").First())
	if title == "" && text == "" {
		return model.Review{}, false
	}

	rev := model.Review{
		Title:    truncate(title, model.MaxTitleLength),
		Text:     truncate(text, model.MaxReviewLength),
		Reviewer: cleanText(sel.Find("[data-testid='reviewer-name'], span.reviewer-name").First()),
		Pros:     cleanText(sel.Find("[data-testid='review-pros'], div.review-pros").First()),
		Cons:     cleanText(sel.Find("[data-testid='review-cons'], div.review-cons").First()),
		Source:   s.Name(),
	}

	rawDate := cleanText(sel.Find("[data-testid='review-date'], span.review-date, time").First())
	if t, ok := s.dates.Parse(rawDate); ok {
		rev.Date = s.dates.Normalize(t)
	}

	if raw := cleanText(sel.Find("[data-testid='rating'], span.rating").First()); raw != "" {
		if v, ok := parseRating(raw); ok {
			rev.Rating = model.Rated(v)
		}
	}

	return rev, true
}
