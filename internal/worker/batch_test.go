package worker

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/avetrov/reviewscope/internal/model"
)

func TestReadCompaniesFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "companies.txt")
	content := "Slack\n\n# comment line\nZoom\nslack\nHubSpot\n"
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write file: %v", err)
	}

	companies, err := ReadCompaniesFromFile(path)
	if err != nil {
		t.Fatalf("ReadCompaniesFromFile failed: %v", err)
	}

	want := []string{"Slack", "Zoom", "HubSpot"}
	if len(companies) != len(want) {
		t.Fatalf("expected %d companies, got %d: %v", len(want), len(companies), companies)
	}
	for i, c := range want {
		if companies[i] != c {
			t.Errorf("companies[%d] = %q, want %q", i, companies[i], c)
		}
	}
}

func TestReadCompaniesFromFile_Missing(t *testing.T) {
	if _, err := ReadCompaniesFromFile("/nonexistent/companies.txt"); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestBatchProcessor_ProcessCompanies(t *testing.T) {
	var calls int32
	runner := RunnerFunc(func(ctx context.Context, company string) (*model.Report, error) {
		atomic.AddInt32(&calls, 1)
		if company == "Broken" {
			return nil, errors.New("scrape exploded")
		}
		return &model.Report{CompanyName: company}, nil
	})

	processor := NewBatchProcessor(runner, 3)
	results := processor.ProcessCompanies(context.Background(), []string{"Slack", "Broken", "Zoom"})

	if len(results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(results))
	}
	if got := atomic.LoadInt32(&calls); got != 3 {
		t.Errorf("expected 3 runner calls, got %d", got)
	}

	failures := 0
	for _, r := range results {
		if r.GetError() != nil {
			failures++
			if r.Company != "Broken" {
				t.Errorf("unexpected failure for %q: %v", r.Company, r.Error)
			}
		} else if r.Report == nil || r.Report.CompanyName != r.Company {
			t.Errorf("result for %q carries wrong report", r.Company)
		}
	}
	if failures != 1 {
		t.Errorf("expected exactly 1 failure, got %d", failures)
	}
}

func TestBatchProcessor_LargeBatch(t *testing.T) {
	runner := RunnerFunc(func(ctx context.Context, company string) (*model.Report, error) {
		return &model.Report{CompanyName: company}, nil
	})

	companies := make([]string, 100)
	for i := range companies {
		companies[i] = fmt.Sprintf("company-%d", i)
	}

	results := NewBatchProcessor(runner, 3).ProcessCompanies(context.Background(), companies)
	if len(results) != len(companies) {
		t.Fatalf("expected %d results, got %d", len(companies), len(results))
	}
}

func TestBatchProcessor_Empty(t *testing.T) {
	processor := NewBatchProcessor(RunnerFunc(func(ctx context.Context, company string) (*model.Report, error) {
		return nil, fmt.Errorf("should not be called")
	}), 2)

	results := processor.ProcessCompanies(context.Background(), nil)
	if len(results) != 0 {
		t.Errorf("expected no results, got %d", len(results))
	}
}

func TestPool_ExecutesAllJobs(t *testing.T) {
	var executed int32
	pool := NewPool(4)
	pool.Start()

	for i := 0; i < 20; i++ {
		pool.Submit(&CompanyJob{
			Company: fmt.Sprintf("company-%d", i),
			Runner: RunnerFunc(func(ctx context.Context, company string) (*model.Report, error) {
				atomic.AddInt32(&executed, 1)
				return &model.Report{CompanyName: company}, nil
			}),
		})
	}

	results := pool.Wait()
	if len(results) != 20 {
		t.Errorf("expected 20 results, got %d", len(results))
	}
	if got := atomic.LoadInt32(&executed); got != 20 {
		t.Errorf("expected 20 executions, got %d", got)
	}
}
