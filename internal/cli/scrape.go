package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/avetrov/reviewscope/internal/model"
	"github.com/avetrov/reviewscope/internal/pipeline"
)

var (
	company     string
	startDate   string
	endDate     string
	source      string
	outputPath  string
	httpTimeout time.Duration
	userAgent   string
	delay       time.Duration
	maxPages    int
	noCache     bool
	insecureTLS bool
	httpProxy   string
	httpsProxy  string
	llmEnabled  bool
	llmModel    string
)

// scrapeCmd represents the scrape command
var scrapeCmd = &cobra.Command{
	Use:   "scrape",
	Short: "Scrape reviews for a company across review platforms",
	Long: `Scrape collects reviews for one company over a date range and writes an
aggregated JSON report. Platforms are scraped sequentially; a failed platform
is recorded in the report and never aborts the others.

Example:
  reviewscope scrape --company "Slack" --start-date 2024-01-01 --end-date 2024-06-30
  reviewscope scrape --company "Zoom" --start-date 2024-01-01 --end-date 2024-03-31 --source g2
  reviewscope scrape --company "Notion" --start-date 2024-01-01 --end-date 2024-06-30 --llm --output notion.json`,
	Args: cobra.NoArgs,
	RunE: runScrape,
}

func init() {
	rootCmd.AddCommand(scrapeCmd)

	scrapeCmd.Flags().StringVar(&company, "company", "", "company name to scrape reviews for (required)")
	scrapeCmd.Flags().StringVar(&startDate, "start-date", "", "start of the review window, YYYY-MM-DD (required)")
	scrapeCmd.Flags().StringVar(&endDate, "end-date", "", "end of the review window, YYYY-MM-DD (required)")
	scrapeCmd.Flags().StringVar(&source, "source", "all", "review platform: g2, capterra, trustpilot or all")
	scrapeCmd.Flags().StringVar(&outputPath, "output", "", "report path (default: <output-dir>/<company>_<timestamp>.json)")
	_ = scrapeCmd.MarkFlagRequired("company")
	_ = scrapeCmd.MarkFlagRequired("start-date")
	_ = scrapeCmd.MarkFlagRequired("end-date")

	// HTTP flags
	scrapeCmd.Flags().DurationVar(&httpTimeout, "timeout", 30*time.Second, "per-request HTTP timeout")
	scrapeCmd.Flags().StringVar(&userAgent, "ua", model.DefaultUserAgent, "HTTP User-Agent")
	scrapeCmd.Flags().DurationVar(&delay, "delay", 2*time.Second, "pause between page requests to the same platform")
	scrapeCmd.Flags().IntVar(&maxPages, "max-pages", 50, "maximum review pages per platform")
	scrapeCmd.Flags().BoolVar(&noCache, "no-cache", false, "disable the page cache (force fresh fetches)")
	scrapeCmd.Flags().BoolVar(&insecureTLS, "insecure", false, "skip TLS certificate verification")
	scrapeCmd.Flags().StringVar(&httpProxy, "http-proxy", "", "HTTP proxy URL (overrides HTTP_PROXY env var)")
	scrapeCmd.Flags().StringVar(&httpsProxy, "https-proxy", "", "HTTPS proxy URL (overrides HTTPS_PROXY env var)")

	// LLM flags
	scrapeCmd.Flags().BoolVar(&llmEnabled, "llm", false, "generate an LLM digest of the scraped reviews")
	scrapeCmd.Flags().StringVar(&llmModel, "llm-model", "gpt-4o-mini", "LLM model name")
}

func runScrape(cmd *cobra.Command, args []string) error {
	cfg, err := buildScrapeConfig(cmd)
	if err != nil {
		return err
	}

	log := newLogger()
	orchestrator, err := pipeline.NewOrchestrator(cfg, log)
	if err != nil {
		return err
	}

	report, path, err := orchestrator.Execute(context.Background(), pipeline.Request{
		Company:    company,
		StartDate:  startDate,
		EndDate:    endDate,
		Source:     source,
		OutputPath: outputPath,
	})
	if err != nil {
		return err
	}

	orchestrator.Renderer().RenderSummary(os.Stdout, report, path)

	// A run where every source failed is still a completed run: the report
	// records each failure and the exit code stays zero.
	if len(report.Sources) > 0 && len(report.FailedSources()) == len(report.Sources) {
		fmt.Fprintf(os.Stderr, "Warning: all sources failed for %q; see %s for details\n", company, path)
	}
	return nil
}

// buildScrapeConfig overlays explicit flags on the loaded configuration.
// Unset flags keep whatever the config file or environment provided.
func buildScrapeConfig(cmd *cobra.Command) (*model.Config, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}

	if cmd.Flags().Changed("timeout") {
		cfg.HTTP.Timeout = httpTimeout
	}
	if cmd.Flags().Changed("ua") {
		cfg.HTTP.UserAgent = userAgent
	}
	if cmd.Flags().Changed("delay") {
		cfg.Scrape.Delay = delay
	}
	if cmd.Flags().Changed("max-pages") {
		cfg.Scrape.MaxPages = maxPages
	}
	if noCache {
		cfg.Cache.Enabled = false
	}
	if insecureTLS {
		cfg.HTTP.InsecureTLS = true
	}
	if httpProxy != "" {
		cfg.HTTP.HTTPProxy = httpProxy
	}
	if httpsProxy != "" {
		cfg.HTTP.HTTPSProxy = httpsProxy
	}

	if llmEnabled {
		if cfg.LLM.Provider == "" {
			cfg.LLM.Provider = "openai"
		}
		if cmd.Flags().Changed("llm-model") || cfg.LLM.Model == "" {
			cfg.LLM.Model = llmModel
		}
		cfg.LLM.APIKey = os.Getenv("OPENAI_API_KEY")
		if cfg.LLM.APIKey == "" {
			return nil, fmt.Errorf("OPENAI_API_KEY environment variable not set")
		}
	} else {
		cfg.LLM.Provider = ""
	}

	return cfg, nil
}
