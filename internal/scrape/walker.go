package scrape

import (
	"context"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/rs/zerolog"

	"github.com/avetrov/reviewscope/internal/dateparse"
	"github.com/avetrov/reviewscope/internal/model"
	"github.com/avetrov/reviewscope/internal/validate"
)

// pageWalker implements the pagination loop shared by all platform scrapers:
// fetch pages in order, extract review containers, normalize and filter by
// date, and stop when a page holds only reviews older than the window
// (platforms list newest first).
type pageWalker struct {
	client   *Client
	dates    *dateparse.Parser
	maxPages int
	log      zerolog.Logger
}

// collect walks review pages until maxPages, an empty page, or a page that
// has aged out of the requested window. A fetch error on the first page is
// fatal; later pages degrade to a partial result.
func (w *pageWalker) collect(
	ctx context.Context,
	pageURL func(page int) string,
	containerSelector string,
	extract func(*goquery.Selection) (model.Review, bool),
	startDate, endDate string,
) ([]model.Review, error) {
	reviews := []model.Review{}
	windowStart := mustDate(startDate)

	for page := 1; page <= w.maxPages; page++ {
		doc, err := w.client.GetDocument(ctx, pageURL(page))
		if err != nil {
			if page == 1 {
				return nil, err
			}
			w.log.Warn().Err(err).Int("page", page).Msg("stopping pagination on fetch error")
			break
		}

		containers := doc.Find(containerSelector)
		if containers.Length() == 0 {
			break
		}

		sawDated := false
		sawCurrent := false

		containers.Each(func(_ int, sel *goquery.Selection) {
			rev, ok := extract(sel)
			if !ok || !validate.ReviewData(rev) {
				return
			}

			if rev.Date == "" {
				// The platform's date string did not parse. Keep the record
				// with an empty date rather than dropping it; it cannot be
				// range-filtered.
				reviews = append(reviews, rev)
				return
			}

			t, err := time.Parse(dateparse.CanonicalFormat, rev.Date)
			if err != nil {
				return
			}
			sawDated = true

			if !t.Before(windowStart) {
				sawCurrent = true
			}
			if w.dates.InRange(t, startDate, endDate) {
				reviews = append(reviews, rev)
			}
		})

		if sawDated && !sawCurrent {
			// Every dated review on this page predates the window.
			break
		}
	}

	return reviews, nil
}

// mustDate parses a validated YYYY-MM-DD bound. Bounds reach the scrapers
// only after validate.DateRange has passed.
func mustDate(s string) time.Time {
	t, _ := time.Parse(dateparse.CanonicalFormat, s)
	return t
}
