package llm

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/avetrov/reviewscope/internal/model"
)

// maxTitlesPerSource bounds the prompt size for review-heavy reports.
const maxTitlesPerSource = 10

// BuildPrompt renders a report into the digest prompt. Only aggregate counts
// and review titles are exposed to the provider, not full review bodies.
func BuildPrompt(report *model.Report) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Company: %s\n", report.CompanyName)
	fmt.Fprintf(&b, "Review window: %s to %s\n", report.DateRange.Start, report.DateRange.End)
	fmt.Fprintf(&b, "Total reviews collected: %d\n\n", report.TotalReviews())

	names := make([]string, 0, len(report.Sources))
	for name := range report.Sources {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		src := report.Sources[name]
		if src.Status == model.StatusFailed {
			fmt.Fprintf(&b, "Source %s: failed (%s)\n", name, src.Error)
			continue
		}
		fmt.Fprintf(&b, "Source %s: %d reviews\n", name, src.TotalReviews)
		for i, rev := range src.Reviews {
			if i >= maxTitlesPerSource {
				break
			}
			if rev.Rating != nil {
				fmt.Fprintf(&b, "  - %q (%.1f/5)\n", rev.Title, *rev.Rating)
			} else {
				fmt.Fprintf(&b, "  - %q\n", rev.Title)
			}
		}
	}

	b.WriteString("\nWrite a short digest of this review data: overall sentiment, " +
		"recurring themes in the titles, and per-source coverage. " +
		"Mention failed sources as gaps in coverage.")
	return b.String()
}

// Summarizer turns a finished report into a digest through a provider.
type Summarizer struct {
	provider Provider
}

// NewSummarizer wraps a provider. A nil provider yields disabled digests.
func NewSummarizer(provider Provider) *Summarizer {
	return &Summarizer{provider: provider}
}

// Summarize generates the digest for a report. Returns a disabled digest when
// no provider is configured.
func (s *Summarizer) Summarize(ctx context.Context, report *model.Report) (*model.Digest, error) {
	if s.provider == nil {
		return &model.Digest{Enabled: false}, nil
	}

	resp, err := s.provider.Summarize(ctx, SummarizeRequest{Prompt: BuildPrompt(report)})
	if err != nil {
		return nil, fmt.Errorf("digest generation: %w", err)
	}

	return &model.Digest{
		Enabled:  true,
		Provider: s.provider.Name(),
		Model:    resp.Model,
		Summary:  resp.Summary,
	}, nil
}
