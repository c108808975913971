package pipeline

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/rs/zerolog"

	"github.com/avetrov/reviewscope/internal/model"
)

// Renderer writes reports to disk and prints the per-source summary table.
type Renderer struct {
	verbose bool
	log     zerolog.Logger
}

func NewRenderer(verbose bool, log zerolog.Logger) *Renderer {
	return &Renderer{
		verbose: verbose,
		log:     log.With().Str("component", "renderer").Logger(),
	}
}

// WriteReport serializes the report as indented JSON at path, creating parent
// directories as needed.
func (r *Renderer) WriteReport(report *model.Report, path string) error {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create output dir: %w", err)
		}
	}

	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal report: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write report: %w", err)
	}

	r.log.Info().Str("path", path).Int("reviews", report.TotalReviews()).Msg("report written")
	return nil
}

// RenderSummary prints the per-source outcome table.
func (r *Renderer) RenderSummary(w io.Writer, report *model.Report, path string) {
	fmt.Fprintf(w, "\nScrape results for %s (%s to %s)\n",
		report.CompanyName, report.DateRange.Start, report.DateRange.End)

	names := make([]string, 0, len(report.Sources))
	for name := range report.Sources {
		names = append(names, name)
	}
	sort.Strings(names)

	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"Source", "Reviews", "Status", "Detail"})

	for _, name := range names {
		src := report.Sources[name]
		detail := ""
		if src.Status == model.StatusFailed {
			detail = src.Error
		}
		t.AppendRow(table.Row{name, src.TotalReviews, src.Status, detail})
	}
	t.AppendFooter(table.Row{"total", report.TotalReviews(), "", ""})
	t.Render()

	if report.Digest != nil && report.Digest.Enabled {
		fmt.Fprintf(w, "\nDigest (%s):\n%s\n", report.Digest.Provider, report.Digest.Summary)
	}
	fmt.Fprintf(w, "\nReport written to %s\n", path)

	if r.verbose {
		for _, name := range names {
			for _, rev := range report.Sources[name].Reviews {
				fmt.Fprintf(w, "  [%s] %s (%s)\n", name, rev.Title, rev.Date)
			}
		}
	}
}
