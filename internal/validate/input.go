// Package validate gates every scrape request before any network activity.
// Each check either succeeds silently or fails with a descriptive
// InvalidInputError; none produce partial results.
package validate

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/avetrov/reviewscope/internal/model"
)

// InvalidInputError reports a rejected input with a human-readable reason.
// It is always raised before any side effect and is recoverable by the
// caller correcting the input.
type InvalidInputError struct {
	Field  string
	Reason string
}

func (e *InvalidInputError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

func invalid(field, format string, args ...interface{}) error {
	return &InvalidInputError{Field: field, Reason: fmt.Sprintf(format, args...)}
}

const (
	minCompanyNameLength = 2
	maxCompanyNameLength = 100
	maxOutputPathLength  = 260 // Windows path limit
	maxFilenameLength    = 100

	minStartDate = "2010-01-01"
	maxRangeDays = 3650
)

var (
	companyNameBadChars = regexp.MustCompile(`[<>"'{}\[\]]`)
	dateFormatRe        = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
	outputPathBadChars  = regexp.MustCompile(`[<>:"|?*]`)
	filenameBadChars    = regexp.MustCompile(`[<>:"|?*\\/ ]`)
	underscoreRunRe     = regexp.MustCompile(`_{2,}`)
)

// CompanyName rejects empty, too short, too long, or markup-bearing names.
func CompanyName(name string) error {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return invalid("company name", "must be a non-empty string")
	}
	if utf8.RuneCountInString(trimmed) < minCompanyNameLength {
		return invalid("company name", "must be at least %d characters long", minCompanyNameLength)
	}
	if utf8.RuneCountInString(trimmed) > maxCompanyNameLength {
		return invalid("company name", "must be less than %d characters long", maxCompanyNameLength)
	}
	if companyNameBadChars.MatchString(name) {
		return invalid("company name", "contains invalid characters")
	}
	return nil
}

// DateRange checks a start/end pair against five sequential rules: strict
// format, real calendar dates, ordering, minimum start, maximum future end,
// and a ten-year span cap. The first violated rule determines the reported
// reason.
func DateRange(start, end string, now time.Time) error {
	if !dateFormatRe.MatchString(start) {
		return invalid("start date", "must be in YYYY-MM-DD format")
	}
	if !dateFormatRe.MatchString(end) {
		return invalid("end date", "must be in YYYY-MM-DD format")
	}

	startDate, err := time.Parse("2006-01-02", start)
	if err != nil {
		return invalid("start date", "not a real calendar date: %s", start)
	}
	endDate, err := time.Parse("2006-01-02", end)
	if err != nil {
		return invalid("end date", "not a real calendar date: %s", end)
	}

	if startDate.After(endDate) {
		return invalid("date range", "start date must be before or equal to end date")
	}

	minDate, _ := time.Parse("2006-01-02", minStartDate)
	if startDate.Before(minDate) {
		return invalid("start date", "cannot be before %s", minStartDate)
	}

	maxFuture := now.AddDate(1, 0, 0)
	if endDate.After(maxFuture) {
		return invalid("end date", "cannot be more than 1 year in the future (max: %s)", maxFuture.Format("2006-01-02"))
	}

	if endDate.Sub(startDate) > maxRangeDays*24*time.Hour {
		return invalid("date range", "cannot exceed 10 years")
	}

	return nil
}

// Source checks a requested source against the supported set,
// case-insensitively. The error lists the allowed values.
func Source(source string, supported []string) error {
	trimmed := strings.ToLower(strings.TrimSpace(source))
	if trimmed == "" {
		return invalid("source", "must be a non-empty string")
	}
	for _, s := range supported {
		if trimmed == strings.ToLower(s) {
			return nil
		}
	}
	return invalid("source", "unsupported source %q (supported: %s)", trimmed, strings.Join(supported, ", "))
}

// OutputPath requires a .json path free of filesystem-hostile characters.
func OutputPath(path string) error {
	if strings.TrimSpace(path) == "" {
		return invalid("output path", "must be a non-empty string")
	}
	if !strings.HasSuffix(strings.ToLower(path), ".json") {
		return invalid("output path", "must have .json extension")
	}
	if outputPathBadChars.MatchString(path) {
		return invalid("output path", "contains invalid characters")
	}
	if utf8.RuneCountInString(path) > maxOutputPathLength {
		return invalid("output path", "is too long (max %d characters)", maxOutputPathLength)
	}
	return nil
}

// SanitizeFilename produces a safe filename fragment. It is total (never
// fails) and idempotent: sanitizing an already sanitized name is a no-op.
func SanitizeFilename(name string) string {
	s := filenameBadChars.ReplaceAllString(name, "_")
	s = underscoreRunRe.ReplaceAllString(s, "_")
	s = strings.Trim(s, "_.")
	// Cap in runes, not bytes: a byte slice could cut a multibyte character.
	if utf8.RuneCountInString(s) > maxFilenameLength {
		runes := []rune(s)
		s = strings.Trim(string(runes[:maxFilenameLength]), "_.")
	}
	if s == "" {
		return "reviews"
	}
	return s
}

// ReviewData is a total predicate over a scraped review record: at least one
// of title/text must be non-blank, and a present rating must lie in
// [MinRating, MaxRating]. A missing date is tolerated here; range filtering
// is the scraper's concern.
func ReviewData(r model.Review) bool {
	if strings.TrimSpace(r.Title) == "" && strings.TrimSpace(r.Text) == "" {
		return false
	}
	if r.Rating != nil {
		if *r.Rating < model.MinRating || *r.Rating > model.MaxRating {
			return false
		}
	}
	return true
}

// DefaultReportPath builds the conventional output location for a report:
// <dir>/<sanitized company>_<timestamp>.json.
func DefaultReportPath(dir, company string, now time.Time) string {
	name := SanitizeFilename(strings.ToLower(company))
	return filepath.Join(dir, fmt.Sprintf("%s_%s.json", name, now.Format("20060102_150405")))
}
