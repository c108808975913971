package model

// Per-source outcome states. Partial failure is a normal terminal outcome:
// a failed source never aborts its siblings.
const (
	StatusSuccess = "success"
	StatusFailed  = "failed"
)

// DateRange is the validated, inclusive date window of a scrape request.
type DateRange struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

// SourceResult holds the outcome of scraping a single platform.
type SourceResult struct {
	TotalReviews int      `json:"total_reviews"`
	Reviews      []Review `json:"reviews"`
	Status       string   `json:"status"`
	Error        string   `json:"error,omitempty"`
}

// Report is the aggregated result of one scrape request across all requested
// sources. The orchestrator is its only writer; once every source has been
// attempted the report is final.
type Report struct {
	CompanyName       string                  `json:"company_name"`
	DateRange         DateRange               `json:"date_range"`
	ScrapingTimestamp string                  `json:"scraping_timestamp"`
	Sources           map[string]SourceResult `json:"sources"`

	// Digest is the optional LLM-generated overview. It is produced after
	// aggregation and never alters review data.
	Digest *Digest `json:"digest,omitempty"`
}

// Digest contains an optional LLM-generated overview of the scraped reviews.
type Digest struct {
	Enabled  bool   `json:"enabled"`
	Provider string `json:"provider,omitempty"`
	Model    string `json:"model,omitempty"`
	Summary  string `json:"summary,omitempty"`
}

// TotalReviews sums per-source counts. Failed sources contribute zero.
func (r *Report) TotalReviews() int {
	total := 0
	for _, src := range r.Sources {
		total += src.TotalReviews
	}
	return total
}

// FailedSources returns the names of sources that ended in a failed state.
func (r *Report) FailedSources() []string {
	var failed []string
	for name, src := range r.Sources {
		if src.Status == StatusFailed {
			failed = append(failed, name)
		}
	}
	return failed
}
