// Package pipeline orchestrates a scrape request: validate the input, fan the
// request out to the selected platform scrapers, aggregate per-source results
// into a report, and render it.
package pipeline

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/avetrov/reviewscope/internal/dateparse"
	"github.com/avetrov/reviewscope/internal/llm"
	"github.com/avetrov/reviewscope/internal/model"
	"github.com/avetrov/reviewscope/internal/scrape"
	"github.com/avetrov/reviewscope/internal/validate"
)

// Request is one scrape job as the user stated it.
type Request struct {
	Company    string
	StartDate  string // YYYY-MM-DD
	EndDate    string // YYYY-MM-DD
	Source     string // platform name or "all"
	OutputPath string // empty means a generated path under the output dir
}

// Orchestrator runs scrape requests end to end.
type Orchestrator struct {
	registry   *scrape.Registry
	summarizer *llm.Summarizer
	renderer   *Renderer
	config     *model.Config
	log        zerolog.Logger

	// now is injectable for tests.
	now func() time.Time
}

// NewOrchestrator wires the scrape client, platform registry, and optional
// digest provider from configuration.
func NewOrchestrator(cfg *model.Config, log zerolog.Logger) (*Orchestrator, error) {
	client := scrape.NewClient(cfg, log)
	dates := dateparse.New(log)

	var summarizer *llm.Summarizer
	if cfg.LLM.Provider != "" {
		provider, err := llm.NewProvider(llm.ConfigFromModel(cfg.LLM))
		if err != nil {
			return nil, err
		}
		summarizer = llm.NewSummarizer(provider)
	}

	return &Orchestrator{
		registry:   scrape.NewRegistry(client, cfg, dates, log),
		summarizer: summarizer,
		renderer:   NewRenderer(cfg.Output.Verbose, log),
		config:     cfg,
		log:        log.With().Str("component", "orchestrator").Logger(),
		now:        time.Now,
	}, nil
}

// Validate checks every request field before any network or filesystem work.
// The first failing rule wins; a request that fails validation has no side
// effects.
func (o *Orchestrator) Validate(req Request) error {
	if err := validate.CompanyName(req.Company); err != nil {
		return err
	}
	if err := validate.DateRange(req.StartDate, req.EndDate, o.now()); err != nil {
		return err
	}
	if err := validate.Source(req.Source, o.registry.Supported()); err != nil {
		return err
	}
	if req.OutputPath != "" {
		if err := validate.OutputPath(req.OutputPath); err != nil {
			return err
		}
	}
	return nil
}

// Run executes one scrape request and returns the aggregated report. Sources
// run sequentially in registry order; a source failure is recorded in the
// report and never aborts the remaining sources. The returned error is
// non-nil only for invalid input.
func (o *Orchestrator) Run(ctx context.Context, req Request) (*model.Report, error) {
	if err := o.Validate(req); err != nil {
		return nil, err
	}

	report := &model.Report{
		CompanyName:       req.Company,
		DateRange:         model.DateRange{Start: req.StartDate, End: req.EndDate},
		ScrapingTimestamp: o.now().UTC().Format(time.RFC3339),
		Sources:           make(map[string]model.SourceResult),
	}

	for _, name := range o.registry.Select(req.Source) {
		scraper, ok := o.registry.Get(name)
		if !ok {
			// Validate guarantees registered sources; unreachable in practice.
			continue
		}

		log := o.log.With().Str("source", name).Str("company", req.Company).Logger()
		log.Info().Msg("scraping source")

		reviews, err := scraper.ScrapeReviews(ctx, req.Company, req.StartDate, req.EndDate)
		if err != nil {
			log.Warn().Err(err).Msg("source failed")
			report.Sources[name] = model.SourceResult{
				Reviews: []model.Review{},
				Status:  model.StatusFailed,
				Error:   err.Error(),
			}
			continue
		}

		log.Info().Int("reviews", len(reviews)).Msg("source complete")
		report.Sources[name] = model.SourceResult{
			TotalReviews: len(reviews),
			Reviews:      reviews,
			Status:       model.StatusSuccess,
		}
	}

	o.attachDigest(ctx, report)

	return report, nil
}

// Execute runs a request, writes the report to its output path, and prints
// the summary table. Returns the report and the path it was written to.
func (o *Orchestrator) Execute(ctx context.Context, req Request) (*model.Report, string, error) {
	report, err := o.Run(ctx, req)
	if err != nil {
		return nil, "", err
	}

	path := req.OutputPath
	if path == "" {
		path = validate.DefaultReportPath(o.config.Output.Dir, req.Company, o.now())
	}

	if err := o.renderer.WriteReport(report, path); err != nil {
		return report, "", err
	}
	return report, path, nil
}

// Renderer exposes the orchestrator's renderer for CLI summary output.
func (o *Orchestrator) Renderer() *Renderer {
	return o.renderer
}

// attachDigest adds the optional digest. Digest failures degrade to a report
// without one.
func (o *Orchestrator) attachDigest(ctx context.Context, report *model.Report) {
	if o.summarizer == nil {
		return
	}
	digest, err := o.summarizer.Summarize(ctx, report)
	if err != nil {
		o.log.Warn().Err(err).Msg("digest generation failed, continuing without")
		return
	}
	report.Digest = digest
}
