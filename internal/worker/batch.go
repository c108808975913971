package worker

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/avetrov/reviewscope/internal/model"
)

// Runner executes one full scrape for a company. The pipeline orchestrator
// satisfies this through a small adapter in the CLI layer.
type Runner interface {
	Run(ctx context.Context, company string) (*model.Report, error)
}

// RunnerFunc adapts a function to the Runner interface.
type RunnerFunc func(ctx context.Context, company string) (*model.Report, error)

// Run calls f.
func (f RunnerFunc) Run(ctx context.Context, company string) (*model.Report, error) {
	return f(ctx, company)
}

// CompanyJob scrapes reviews for a single company.
type CompanyJob struct {
	Company string
	Runner  Runner
}

// Execute runs the scrape for the job's company.
func (j *CompanyJob) Execute(ctx context.Context) Result {
	report, err := j.Runner.Run(ctx, j.Company)
	return &CompanyResult{
		Company: j.Company,
		Report:  report,
		Error:   err,
	}
}

// CompanyResult is the outcome of one company scrape in a batch.
type CompanyResult struct {
	Company string
	Report  *model.Report
	Error   error
}

// GetError returns the error from the result.
func (r *CompanyResult) GetError() error {
	return r.Error
}

// BatchProcessor scrapes multiple companies concurrently. Each company is
// still processed sequentially per source; the shared per-domain limiter
// keeps site politeness across workers.
type BatchProcessor struct {
	runner      Runner
	concurrency int
}

// NewBatchProcessor creates a batch processor.
func NewBatchProcessor(runner Runner, concurrency int) *BatchProcessor {
	return &BatchProcessor{
		runner:      runner,
		concurrency: concurrency,
	}
}

// ProcessCompanies scrapes the given companies concurrently.
func (b *BatchProcessor) ProcessCompanies(ctx context.Context, companies []string) []*CompanyResult {
	if len(companies) == 0 {
		return []*CompanyResult{}
	}

	pool := NewPool(b.concurrency)
	pool.Start()

	// Submit concurrently with collection; the queue and results channels
	// are sized for the worker count, not the batch size.
	go func() {
		for _, company := range companies {
			pool.Submit(&CompanyJob{
				Company: company,
				Runner:  b.runner,
			})
		}
		pool.Close()
	}()

	results := pool.Collect()

	companyResults := make([]*CompanyResult, len(results))
	for i, result := range results {
		companyResults[i] = result.(*CompanyResult)
	}

	return companyResults
}

// ProcessFile reads company names from a file and scrapes them concurrently.
func (b *BatchProcessor) ProcessFile(ctx context.Context, filePath string) ([]*CompanyResult, error) {
	companies, err := ReadCompaniesFromFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("read companies: %w", err)
	}

	return b.ProcessCompanies(ctx, companies), nil
}

// ReadCompaniesFromFile reads company names from a file, one per line.
// Blank lines and #-comments are skipped; duplicates are dropped.
func ReadCompaniesFromFile(filePath string) ([]string, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}
	defer func() { _ = file.Close() }()

	var companies []string
	seen := make(map[string]bool)

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())

		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		key := strings.ToLower(line)
		if !seen[key] {
			seen[key] = true
			companies = append(companies, line)
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan file: %w", err)
	}

	return companies, nil
}
