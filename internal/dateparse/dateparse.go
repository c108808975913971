// Package dateparse normalizes the date strings review platforms emit into
// canonical calendar dates. Input is best-effort: an unparseable string is a
// normal outcome, not an error.
package dateparse

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	fuzzytime "github.com/araddon/dateparse"
	"github.com/rs/zerolog"
)

// CanonicalFormat is the canonical date layout, timezone-naive.
const CanonicalFormat = "2006-01-02"

// Parser converts arbitrary scraped date fragments into calendar dates by
// trying an ordered chain of strategies, most structured first.
type Parser struct {
	log zerolog.Logger

	// now is sampled once per Parse call so relative phrases within a single
	// input resolve against the same instant. Injectable for tests.
	now func() time.Time
}

// New creates a Parser with the given logging context.
func New(log zerolog.Logger) *Parser {
	return &Parser{
		log: log,
		now: time.Now,
	}
}

// strategy is one parsing attempt of uniform signature. Strategies report
// failure with ok=false; they never return errors.
type strategy func(s string, now time.Time) (time.Time, bool)

// Parse tries each strategy in priority order and returns the first hit.
// Ordering runs from most specific (structured ISO) to most permissive
// (fuzzy free text, bare numeric timestamps): a 10-digit run matches almost
// anything, so the timestamp scan has to go last. Total failure returns
// ok=false and logs a warning; it never panics.
func (p *Parser) Parse(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}

	now := p.now()
	strategies := []strategy{
		parseISO,
		parseRelative,
		parseCommonFormats,
		parseFuzzy,
		parseTimestamp,
	}

	for _, try := range strategies {
		if t, ok := attempt(try, s, now); ok {
			return t, true
		}
	}

	p.log.Warn().Str("input", s).Msg("could not parse date string")
	return time.Time{}, false
}

// attempt runs a single strategy, converting any panic into a miss so the
// chain always proceeds to the next strategy. The fuzzy library has a history
// of panics on exotic numeric input.
func attempt(try strategy, s string, now time.Time) (t time.Time, ok bool) {
	defer func() {
		if r := recover(); r != nil {
			t, ok = time.Time{}, false
		}
	}()
	return try(s, now)
}

// Normalize renders a parsed date as YYYY-MM-DD. The zero value is rejected
// with an empty string.
func (p *Parser) Normalize(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(CanonicalFormat)
}

// InRange reports whether t falls inside [start, end], bounds inclusive.
// start and end must be strict YYYY-MM-DD; malformed bounds or a zero date
// yield false rather than an error. Time-of-day is ignored: the comparison is
// between calendar dates.
func (p *Parser) InRange(t time.Time, start, end string) bool {
	if t.IsZero() {
		return false
	}

	startDate, err := time.Parse(CanonicalFormat, start)
	if err != nil {
		return false
	}
	endDate, err := time.Parse(CanonicalFormat, end)
	if err != nil {
		return false
	}

	day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	return !day.Before(startDate) && !day.After(endDate)
}

// --- strategy 1: ISO-8601 ---

// The second-resolution pattern is tried first so "2023-04-05T06:07:08+02:00"
// matches the full timestamp, not just its date prefix. Any timezone offset
// after the seconds falls outside the match and is discarded: the result is
// naive wall time, a deliberate, lossy simplification.
var isoPatterns = []*regexp.Regexp{
	regexp.MustCompile(`\d{4}-\d{2}-\d{2}T\d{2}:\d{2}:\d{2}`),
	regexp.MustCompile(`\d{4}-\d{2}-\d{2}`),
}

func parseISO(s string, _ time.Time) (time.Time, bool) {
	for _, pat := range isoPatterns {
		match := pat.FindString(s)
		if match == "" {
			continue
		}
		if t, err := time.Parse("2006-01-02T15:04:05", match); err == nil {
			return t, true
		}
		if t, err := time.Parse(CanonicalFormat, match[:10]); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// --- strategy 2: relative phrases ---

type relativePattern struct {
	re   *regexp.Regexp
	unit time.Duration
	// fixed is the implied count for article forms ("a week ago"); zero means
	// the count comes from the first capture group.
	fixed int
}

const (
	day   = 24 * time.Hour
	week  = 7 * day
	month = 30 * day  // approximation, not calendar-aware
	year  = 365 * day // approximation, not calendar-aware
)

var relativePatterns = []relativePattern{
	{regexp.MustCompile(`(\d+)\s*(?:second|sec)s?\s*ago`), time.Second, 0},
	{regexp.MustCompile(`(\d+)\s*(?:minute|min)s?\s*ago`), time.Minute, 0},
	{regexp.MustCompile(`(\d+)\s*(?:hour|hr)s?\s*ago`), time.Hour, 0},
	{regexp.MustCompile(`(\d+)\s*days?\s*ago`), day, 0},
	{regexp.MustCompile(`(\d+)\s*weeks?\s*ago`), week, 0},
	{regexp.MustCompile(`(\d+)\s*months?\s*ago`), month, 0},
	{regexp.MustCompile(`(\d+)\s*years?\s*ago`), year, 0},
	{regexp.MustCompile(`a\s*(?:second|sec)\s*ago`), time.Second, 1},
	{regexp.MustCompile(`a\s*(?:minute|min)\s*ago`), time.Minute, 1},
	{regexp.MustCompile(`an?\s*hour\s*ago`), time.Hour, 1},
	{regexp.MustCompile(`a\s*day\s*ago`), day, 1},
	{regexp.MustCompile(`a\s*week\s*ago`), week, 1},
	{regexp.MustCompile(`a\s*month\s*ago`), month, 1},
	{regexp.MustCompile(`a\s*year\s*ago`), year, 1},
}

func parseRelative(s string, now time.Time) (time.Time, bool) {
	lower := strings.ToLower(s)

	if strings.Contains(lower, "today") || strings.Contains(lower, "just now") {
		return now, true
	}
	if strings.Contains(lower, "yesterday") {
		return now.Add(-day), true
	}

	for _, p := range relativePatterns {
		m := p.re.FindStringSubmatch(lower)
		if m == nil {
			continue
		}
		count := p.fixed
		if count == 0 {
			n, err := strconv.Atoi(m[1])
			if err != nil {
				continue
			}
			count = n
		}
		return now.Add(-time.Duration(count) * p.unit), true
	}

	return time.Time{}, false
}

// --- strategy 3: common fixed formats ---

var (
	commonPrefixRe = regexp.MustCompile(`(?i)(on\s+|posted\s+|reviewed\s+|updated\s+)`)
	parentheticRe  = regexp.MustCompile(`\s*\([^)]*\)\s*`)
)

// commonLayouts uses non-padded day/month tokens so both "1/2/2023" and
// "01/02/2023" parse. US month-first variants precede day-first ones, so
// ambiguous numeric dates resolve US-style. The trailing no-year layouts get
// the current year substituted, which can misdate reviews scraped across a
// year boundary; known limitation, kept as-is.
var commonLayouts = []string{
	"January 2, 2006",
	"Jan 2, 2006",
	"2 January 2006",
	"2 Jan 2006",
	"1/2/2006",
	"2/1/2006",
	"1-2-2006",
	"2-1-2006",
	"2006/1/2",
	"2006-1-2",
	"1/2/06",
	"2/1/06",
	"Jan 2",
	"January 2",
}

func parseCommonFormats(s string, now time.Time) (time.Time, bool) {
	cleaned := commonPrefixRe.ReplaceAllString(s, "")
	cleaned = parentheticRe.ReplaceAllString(cleaned, "")
	cleaned = strings.TrimSpace(cleaned)
	if cleaned == "" {
		return time.Time{}, false
	}

	for _, layout := range commonLayouts {
		t, err := time.Parse(layout, cleaned)
		if err != nil {
			continue
		}
		if t.Year() == 0 {
			t = time.Date(now.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
		}
		return t, true
	}

	return time.Time{}, false
}

// --- strategy 4: fuzzy free text ---

var (
	boilerplateRe = regexp.MustCompile(`(?i)\b(reviewed|posted|updated|on|at)\b|[•|]`)
	whitespaceRe  = regexp.MustCompile(`\s+`)
)

func parseFuzzy(s string, _ time.Time) (time.Time, bool) {
	cleaned := boilerplateRe.ReplaceAllString(s, " ")
	cleaned = whitespaceRe.ReplaceAllString(cleaned, " ")
	cleaned = strings.TrimSpace(cleaned)
	if cleaned == "" {
		return time.Time{}, false
	}

	t, err := fuzzytime.ParseAny(cleaned)
	if err != nil {
		return time.Time{}, false
	}
	return stripOffset(t), true
}

// stripOffset discards any timezone, keeping the wall-clock reading.
func stripOffset(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), 0, time.UTC)
}

// --- strategy 5: numeric unix timestamps ---

var timestampRe = regexp.MustCompile(`\d{10,13}`)

func parseTimestamp(s string, _ time.Time) (time.Time, bool) {
	match := timestampRe.FindString(s)
	if match == "" {
		return time.Time{}, false
	}

	v, err := strconv.ParseInt(match, 10, 64)
	if err != nil {
		return time.Time{}, false
	}

	// 11+ digit values are millisecond timestamps.
	if v > 10_000_000_000 {
		v /= 1000
	}

	return time.Unix(v, 0).UTC(), true
}
