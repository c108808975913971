package pipeline

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/avetrov/reviewscope/internal/model"
	"github.com/avetrov/reviewscope/internal/validate"
)

// newPlatformServer fakes all three platforms behind one host: g2 and
// capterra serve one review each, trustpilot answers 500 on its listing.
func newPlatformServer(t *testing.T, requests *int) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()

	mux.HandleFunc("/robots.txt", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintln(w, "User-agent: *\nAllow: /")
	})
	mux.HandleFunc("/search", func(w http.ResponseWriter, r *http.Request) {
		*requests++
		fmt.Fprintln(w, `<a href="/products/acme">Acme on G2</a>`)
		fmt.Fprintln(w, `<a href="/review/acme.example">Acme on Trustpilot</a>`)
	})
	mux.HandleFunc("/software-search", func(w http.ResponseWriter, r *http.Request) {
		*requests++
		fmt.Fprintln(w, `<a href="/p/1001/acme">Acme on Capterra</a>`)
	})
	mux.HandleFunc("/products/acme/reviews", func(w http.ResponseWriter, r *http.Request) {
		*requests++
		if r.URL.Query().Get("page") != "" {
			return
		}
		fmt.Fprintln(w, `<div itemprop="review">
			<span itemprop="name">Reliable reporting</span>
			<div itemprop="reviewBody">The weekly exports have never failed us.</div>
			<meta itemprop="datePublished" content="2024-02-20">
			<meta itemprop="ratingValue" content="4">
		</div>`)
	})
	mux.HandleFunc("/p/1001/acme/reviews", func(w http.ResponseWriter, r *http.Request) {
		*requests++
		if r.URL.Query().Get("page") != "" {
			return
		}
		fmt.Fprintln(w, `<div data-testid="review-card">
			<h3>Easy onboarding</h3>
			<p data-testid="review-body">New hires are productive within a day.</p>
			<span data-testid="review-date">2/10/2024</span>
			<span data-testid="rating">5.0</span>
		</div>`)
	})
	mux.HandleFunc("/review/acme.example", func(w http.ResponseWriter, r *http.Request) {
		*requests++
		http.Error(w, "upstream error", http.StatusInternalServerError)
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func testOrchestrator(t *testing.T, baseURL string) *Orchestrator {
	t.Helper()
	cfg := model.DefaultConfig()
	cfg.HTTP.Timeout = 5 * time.Second
	cfg.Scrape.Delay = 0
	cfg.Scrape.MaxRetries = 0
	cfg.Scrape.MaxPages = 3
	cfg.RateLimit.RequestsPerSecond = 1000
	cfg.RateLimit.BurstSize = 100
	cfg.Cache.Enabled = false
	cfg.Output.Dir = t.TempDir()
	for name, platform := range cfg.Scrape.Platforms {
		platform.BaseURL = baseURL
		cfg.Scrape.Platforms[name] = platform
	}

	o, err := NewOrchestrator(cfg, zerolog.Nop())
	if err != nil {
		t.Fatalf("NewOrchestrator: %v", err)
	}
	o.now = func() time.Time { return time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC) }
	return o
}

func TestRunPartialFailure(t *testing.T) {
	var requests int
	srv := newPlatformServer(t, &requests)
	o := testOrchestrator(t, srv.URL)

	report, err := o.Run(context.Background(), Request{
		Company:   "Acme",
		StartDate: "2024-01-01",
		EndDate:   "2024-03-31",
		Source:    "all",
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if len(report.Sources) != 3 {
		t.Fatalf("got %d sources, want 3", len(report.Sources))
	}

	g2 := report.Sources["g2"]
	if g2.Status != model.StatusSuccess || g2.TotalReviews != 1 {
		t.Errorf("g2 = %+v", g2)
	}
	capterra := report.Sources["capterra"]
	if capterra.Status != model.StatusSuccess || capterra.TotalReviews != 1 {
		t.Errorf("capterra = %+v", capterra)
	}
	tp := report.Sources["trustpilot"]
	if tp.Status != model.StatusFailed || tp.Error == "" {
		t.Errorf("trustpilot = %+v", tp)
	}

	if got := report.TotalReviews(); got != 2 {
		t.Errorf("TotalReviews = %d, want 2", got)
	}
	if failed := report.FailedSources(); len(failed) != 1 || failed[0] != "trustpilot" {
		t.Errorf("FailedSources = %v", failed)
	}
	if report.ScrapingTimestamp != "2024-06-01T12:00:00Z" {
		t.Errorf("timestamp = %q", report.ScrapingTimestamp)
	}
}

func TestRunSingleSource(t *testing.T) {
	var requests int
	srv := newPlatformServer(t, &requests)
	o := testOrchestrator(t, srv.URL)

	report, err := o.Run(context.Background(), Request{
		Company:   "Acme",
		StartDate: "2024-01-01",
		EndDate:   "2024-03-31",
		Source:    "g2",
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(report.Sources) != 1 {
		t.Fatalf("got sources %v, want only g2", report.Sources)
	}
	if _, ok := report.Sources["g2"]; !ok {
		t.Error("g2 result missing")
	}
}

func TestRunValidatesBeforeAnyRequest(t *testing.T) {
	var requests int
	srv := newPlatformServer(t, &requests)
	o := testOrchestrator(t, srv.URL)

	cases := []Request{
		{Company: "A", StartDate: "2024-01-01", EndDate: "2024-03-31", Source: "all"},
		{Company: "Acme", StartDate: "2024-03-31", EndDate: "2024-01-01", Source: "all"},
		{Company: "Acme", StartDate: "2024-01-01", EndDate: "2024-03-31", Source: "yelp"},
		{Company: "Acme", StartDate: "2024-01-01", EndDate: "2024-03-31", Source: "all", OutputPath: "bad|path.json"},
	}
	for _, req := range cases {
		_, err := o.Run(context.Background(), req)
		var invalid *validate.InvalidInputError
		if !errors.As(err, &invalid) {
			t.Errorf("Run(%+v) error = %v, want InvalidInputError", req, err)
		}
	}
	if requests != 0 {
		t.Errorf("invalid requests reached the network %d times", requests)
	}
}

func TestExecuteWritesReport(t *testing.T) {
	var requests int
	srv := newPlatformServer(t, &requests)
	o := testOrchestrator(t, srv.URL)

	report, path, err := o.Execute(context.Background(), Request{
		Company:   "Acme",
		StartDate: "2024-01-01",
		EndDate:   "2024-03-31",
		Source:    "g2",
	})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}

	if filepath.Base(path) != "acme_20240601_120000.json" {
		t.Errorf("generated path = %q", path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read report: %v", err)
	}
	var loaded model.Report
	if err := json.Unmarshal(data, &loaded); err != nil {
		t.Fatalf("unmarshal report: %v", err)
	}
	if loaded.CompanyName != report.CompanyName || loaded.TotalReviews() != 1 {
		t.Errorf("round-tripped report = %+v", loaded)
	}
	if !strings.Contains(string(data), `"review"`) {
		t.Error("review text should serialize under the \"review\" key")
	}
}

func TestRenderSummary(t *testing.T) {
	report := &model.Report{
		CompanyName: "Acme",
		DateRange:   model.DateRange{Start: "2024-01-01", End: "2024-03-31"},
		Sources: map[string]model.SourceResult{
			"g2":         {TotalReviews: 2, Status: model.StatusSuccess},
			"trustpilot": {Status: model.StatusFailed, Error: "blocked by robots.txt"},
		},
	}

	var buf bytes.Buffer
	NewRenderer(false, zerolog.Nop()).RenderSummary(&buf, report, "out/report.json")

	out := buf.String()
	for _, want := range []string{"g2", "trustpilot", "failed", "blocked by robots.txt", "out/report.json"} {
		if !strings.Contains(out, want) {
			t.Errorf("summary missing %q\n%s", want, out)
		}
	}
}
