package model

// Limits applied to scraped review records
const (
	MinTitleLength  = 3
	MaxTitleLength  = 200
	MinReviewLength = 10
	MaxReviewLength = 10000

	MinRating = 0.0
	MaxRating = 5.0
)

// Review is a single normalized review record produced by a platform scraper.
// The Date field holds the canonical YYYY-MM-DD form, or is empty when the
// platform's date string could not be parsed.
type Review struct {
	Title    string   `json:"title"`
	Text     string   `json:"review"`
	Date     string   `json:"date"`
	Rating   *float64 `json:"rating,omitempty"`
	Reviewer string   `json:"reviewer,omitempty"`
	Pros     string   `json:"pros,omitempty"`
	Cons     string   `json:"cons,omitempty"`
	Source   string   `json:"source"`
}

// Rated is a convenience constructor for the optional rating field.
func Rated(value float64) *float64 {
	return &value
}
