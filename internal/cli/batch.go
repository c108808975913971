package cli

import (
	"context"
	"fmt"
	"os"
	"runtime"
	"time"

	"github.com/spf13/cobra"

	"github.com/avetrov/reviewscope/internal/model"
	"github.com/avetrov/reviewscope/internal/pipeline"
	"github.com/avetrov/reviewscope/internal/worker"
)

var (
	concurrency  int
	outputDir    string
	batchTimeout time.Duration
	batchSource  string
)

// batchCmd represents the batch command
var batchCmd = &cobra.Command{
	Use:   "batch <file>",
	Short: "Scrape reviews for multiple companies from a file",
	Long: `Batch reads company names from a file (one per line, #-comments and blank
lines skipped) and scrapes each over the same date range. Companies run in
parallel; the shared per-domain rate limiter keeps platform politeness across
workers. Each company gets its own report file under the output directory.

Example:
  reviewscope batch companies.txt --start-date 2024-01-01 --end-date 2024-06-30
  reviewscope batch companies.txt --start-date 2024-01-01 --end-date 2024-06-30 --concurrency 2 --output-dir ./reports`,
	Args: cobra.ExactArgs(1),
	RunE: runBatch,
}

func init() {
	rootCmd.AddCommand(batchCmd)

	batchCmd.Flags().StringVar(&startDate, "start-date", "", "start of the review window, YYYY-MM-DD (required)")
	batchCmd.Flags().StringVar(&endDate, "end-date", "", "end of the review window, YYYY-MM-DD (required)")
	batchCmd.Flags().StringVar(&batchSource, "source", "all", "review platform: g2, capterra, trustpilot or all")
	batchCmd.Flags().IntVar(&concurrency, "concurrency", runtime.NumCPU(), "number of concurrent company scrapes")
	batchCmd.Flags().StringVar(&outputDir, "output-dir", "", "report directory (default: configured output dir)")
	batchCmd.Flags().DurationVar(&batchTimeout, "timeout", 30*time.Minute, "total timeout for the batch")
	batchCmd.Flags().BoolVar(&noCache, "no-cache", false, "disable the page cache (force fresh fetches)")
	_ = batchCmd.MarkFlagRequired("start-date")
	_ = batchCmd.MarkFlagRequired("end-date")
}

func runBatch(cmd *cobra.Command, args []string) error {
	file := args[0]

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if noCache {
		cfg.Cache.Enabled = false
	}
	if outputDir != "" {
		cfg.Output.Dir = outputDir
	}
	cfg.LLM.Provider = ""

	log := newLogger()
	orchestrator, err := pipeline.NewOrchestrator(cfg, log)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), batchTimeout)
	defer cancel()

	runner := worker.RunnerFunc(func(ctx context.Context, company string) (*model.Report, error) {
		report, _, err := orchestrator.Execute(ctx, pipeline.Request{
			Company:   company,
			StartDate: startDate,
			EndDate:   endDate,
			Source:    batchSource,
		})
		return report, err
	})

	processor := worker.NewBatchProcessor(runner, concurrency)
	results, err := processor.ProcessFile(ctx, file)
	if err != nil {
		return err
	}

	successCount := 0
	failureCount := 0
	for _, result := range results {
		if result.Error != nil {
			failureCount++
			fmt.Fprintf(os.Stderr, "✗ %s: %v\n", result.Company, result.Error)
			continue
		}
		successCount++
		fmt.Fprintf(os.Stderr, "✓ %s: %d reviews (%d sources failed)\n",
			result.Company, result.Report.TotalReviews(), len(result.Report.FailedSources()))
	}

	fmt.Fprintf(os.Stderr, "\nBatch complete: %d companies, %d succeeded, %d failed, reports in %s\n",
		len(results), successCount, failureCount, cfg.Output.Dir)

	if failureCount > 0 && successCount == 0 {
		return fmt.Errorf("all %d companies failed", failureCount)
	}
	return nil
}
