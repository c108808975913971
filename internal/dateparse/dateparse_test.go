package dateparse

import (
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func newTestParser(now time.Time) *Parser {
	p := New(zerolog.Nop())
	p.now = func() time.Time { return now }
	return p
}

var fixedNow = time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC)

func TestParse_ISO(t *testing.T) {
	p := newTestParser(fixedNow)

	cases := []struct {
		input string
		want  string
	}{
		{"2023-06-15", "2023-06-15"},
		{"2023-06-15T10:30:00", "2023-06-15"},
		{"2023-06-15T10:30:00+05:00", "2023-06-15"},
		{"Reviewed on 2023-06-15", "2023-06-15"},
		{"2023-06-15Z extra words", "2023-06-15"},
	}

	for _, tc := range cases {
		got, ok := p.Parse(tc.input)
		if !ok {
			t.Errorf("Parse(%q) failed, want %s", tc.input, tc.want)
			continue
		}
		if norm := p.Normalize(got); norm != tc.want {
			t.Errorf("Parse(%q) = %s, want %s", tc.input, norm, tc.want)
		}
	}
}

func TestParse_ISORoundTrip(t *testing.T) {
	p := newTestParser(fixedNow)

	for _, d := range []string{"2010-01-01", "2020-02-29", "2023-12-31", "2024-06-15"} {
		got, ok := p.Parse(d)
		if !ok {
			t.Fatalf("Parse(%q) failed", d)
		}
		if norm := p.Normalize(got); norm != d {
			t.Errorf("round trip of %q = %q", d, norm)
		}
	}
}

func TestParse_Relative(t *testing.T) {
	p := newTestParser(fixedNow)

	cases := []struct {
		input string
		want  string
	}{
		{"today", "2024-01-10"},
		{"just now", "2024-01-10"},
		{"yesterday", "2024-01-09"},
		{"2 days ago", "2024-01-08"},
		{"3 weeks ago", "2023-12-20"},
		{"2 months ago", "2023-11-11"}, // 60-day approximation
		{"a year ago", "2023-01-10"},   // 365-day approximation
		{"an hour ago", "2024-01-09"},  // fixed now is midnight
		{"a week ago", "2024-01-03"},
		{"5 hours ago", "2024-01-09"},
		{"Posted 2 Days Ago", "2024-01-08"},
	}

	for _, tc := range cases {
		got, ok := p.Parse(tc.input)
		if !ok {
			t.Errorf("Parse(%q) failed, want %s", tc.input, tc.want)
			continue
		}
		if norm := p.Normalize(got); norm != tc.want {
			t.Errorf("Parse(%q) = %s, want %s", tc.input, norm, tc.want)
		}
	}
}

func TestParse_CommonFormats(t *testing.T) {
	p := newTestParser(fixedNow)

	cases := []struct {
		input string
		want  string
	}{
		{"January 5, 2023", "2023-01-05"},
		{"Jan 5, 2023", "2023-01-05"},
		{"5 January 2023", "2023-01-05"},
		{"5 Jan 2023", "2023-01-05"},
		{"06/15/2023", "2023-06-15"},
		{"2023/06/15", "2023-06-15"},
		{"Reviewed January 5, 2023", "2023-01-05"},
		{"posted Jan 5, 2023 (edited)", "2023-01-05"},
	}

	for _, tc := range cases {
		got, ok := p.Parse(tc.input)
		if !ok {
			t.Errorf("Parse(%q) failed, want %s", tc.input, tc.want)
			continue
		}
		if norm := p.Normalize(got); norm != tc.want {
			t.Errorf("Parse(%q) = %s, want %s", tc.input, norm, tc.want)
		}
	}
}

func TestParse_NoYearAssumesCurrentYear(t *testing.T) {
	p := newTestParser(fixedNow)

	got, ok := p.Parse("Jun 15")
	if !ok {
		t.Fatal("Parse failed for month+day with no year")
	}
	if norm := p.Normalize(got); norm != "2024-06-15" {
		t.Errorf("expected current-year substitution, got %s", norm)
	}
}

func TestParse_Timestamp(t *testing.T) {
	p := newTestParser(fixedNow)

	cases := []struct {
		input string
		want  string
	}{
		{"1687000000", "2023-06-17"},    // unix seconds
		{"1687000000000", "2023-06-17"}, // unix milliseconds
	}

	for _, tc := range cases {
		got, ok := p.Parse(tc.input)
		if !ok {
			t.Errorf("Parse(%q) failed, want %s", tc.input, tc.want)
			continue
		}
		if norm := p.Normalize(got); norm != tc.want {
			t.Errorf("Parse(%q) = %s, want %s", tc.input, norm, tc.want)
		}
	}
}

func TestParse_Unparseable(t *testing.T) {
	p := newTestParser(fixedNow)

	for _, input := range []string{"", "   ", "hello world", "no date here", "---", "n/a"} {
		if got, ok := p.Parse(input); ok {
			t.Errorf("Parse(%q) = %v, expected failure", input, got)
		}
	}
}

func TestNormalize_ZeroValue(t *testing.T) {
	p := newTestParser(fixedNow)

	if got := p.Normalize(time.Time{}); got != "" {
		t.Errorf("Normalize(zero) = %q, want empty", got)
	}
}

func TestInRange(t *testing.T) {
	p := newTestParser(fixedNow)

	mid := time.Date(2023, 6, 15, 0, 0, 0, 0, time.UTC)
	if !p.InRange(mid, "2023-01-01", "2023-12-31") {
		t.Error("expected mid-range date to be in range")
	}

	// Bounds are inclusive.
	start := time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)
	if !p.InRange(start, "2023-01-01", "2023-12-31") {
		t.Error("expected start boundary to be in range")
	}
	end := time.Date(2023, 12, 31, 0, 0, 0, 0, time.UTC)
	if !p.InRange(end, "2023-01-01", "2023-12-31") {
		t.Error("expected end boundary to be in range")
	}

	// Time-of-day on the end boundary must not exclude the date.
	lateOnEnd := time.Date(2023, 12, 31, 23, 0, 0, 0, time.UTC)
	if !p.InRange(lateOnEnd, "2023-01-01", "2023-12-31") {
		t.Error("expected end-of-day timestamp on boundary date to be in range")
	}

	outside := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	if p.InRange(outside, "2023-01-01", "2023-12-31") {
		t.Error("expected out-of-range date to be excluded")
	}
}

func TestInRange_MalformedBounds(t *testing.T) {
	p := newTestParser(fixedNow)
	d := time.Date(2023, 6, 15, 0, 0, 0, 0, time.UTC)

	cases := [][2]string{
		{"not-a-date", "2023-12-31"},
		{"2023-01-01", "garbage"},
		{"2023-1-1", "2023-12-31"}, // non-strict format rejected
		{"", ""},
	}

	for _, tc := range cases {
		if p.InRange(d, tc[0], tc[1]) {
			t.Errorf("InRange with bounds (%q, %q) = true, want false", tc[0], tc[1])
		}
	}

	if p.InRange(time.Time{}, "2023-01-01", "2023-12-31") {
		t.Error("InRange with zero date = true, want false")
	}
}

func TestParse_StrategyOrder(t *testing.T) {
	p := newTestParser(fixedNow)

	// An ISO date containing a digit run must hit the ISO strategy, not the
	// timestamp scan.
	got, ok := p.Parse("2023-06-15T10:30:00")
	if !ok {
		t.Fatal("Parse failed")
	}
	if norm := p.Normalize(got); norm != "2023-06-15" {
		t.Errorf("ISO input resolved to %s, timestamp scan likely ran first", norm)
	}
}
