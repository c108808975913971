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

// G2Scraper collects reviews from g2.com. G2 marks review containers with
// schema.org microdata, so extraction keys off itemprop attributes.
type G2Scraper struct {
	walker     pageWalker
	baseURL    string
	searchPath string
	dates      *dateparse.Parser
}

func NewG2Scraper(client *Client, cfg *model.Config, dates *dateparse.Parser, log zerolog.Logger) *G2Scraper {
	platform := cfg.Scrape.Platforms["g2"]
	return &G2Scraper{
		walker: pageWalker{
			client:   client,
			dates:    dates,
			maxPages: cfg.Scrape.MaxPages,
			log:      log.With().Str("scraper", "g2").Logger(),
		},
		baseURL:    platform.BaseURL,
		searchPath: platform.SearchPath,
		dates:      dates,
	}
}

func (s *G2Scraper) Name() string { return "g2" }

func (s *G2Scraper) SearchProduct(ctx context.Context, company string) (string, error) {
	searchURL := fmt.Sprintf("%s%s?query=%s", s.baseURL, s.searchPath, url.QueryEscape(company))
	doc, err := s.walker.client.GetDocument(ctx, searchURL)
	if err != nil {
		return "", fmt.Errorf("g2 search: %w", err)
	}

	href := firstAttr(doc.Find("a[href*='/products/']"), "href")
	if href == "" {
		return "", fmt.Errorf("no g2 product found for %q", company)
	}
	return resolveURL(s.baseURL, href), nil
}

func (s *G2Scraper) ScrapeReviews(ctx context.Context, company, startDate, endDate string) ([]model.Review, error) {
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

	return s.walker.collect(ctx, pageURL, "div[itemprop='review']", s.ExtractReviewData, startDate, endDate)
}

func (s *G2Scraper) ExtractReviewData(sel *goquery.Selection) (model.Review, bool) {
	title := cleanText(sel.Find("[itemprop='name']").First())
	text := cleanText(sel.Find("[itemprop='reviewBody']").First())
	if title == "" && text == "" {
		return model.Review{}, false
	}

	rev := model.Review{
		Title:    truncate(title, model.MaxTitleLength),
		Text:     truncate(text, model.MaxReviewLength),
		Reviewer: cleanText(sel.Find("[itemprop='author']").First()),
		Pros:     cleanText(sel.Find("[data-qa='pros']").First()),
		Cons:     cleanText(sel.Find("[data-qa='cons']").First()),
		Source:   s.Name(),
	}

	rawDate := firstAttr(sel.Find("meta[itemprop='datePublished']"), "content")
	if rawDate == "" {
		rawDate = cleanText(sel.Find("time").First())
	}
	if t, ok := s.dates.Parse(rawDate); ok {
		rev.Date = s.dates.Normalize(t)
	}

	if raw := firstAttr(sel.Find("meta[itemprop='ratingValue']"), "content"); raw != "" {
		if v, ok := parseRating(raw); ok {
			rev.Rating = model.Rated(v)
		}
	}

	return rev, true
}
