package worker

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/ppiankov/celestial/internal/pipeline"
)

// Ingester stores one uploaded batch document
type Ingester interface {
	Ingest(ctx context.Context, req pipeline.IngestRequest) (*pipeline.IngestResult, error)
}

// IngestJob represents one document upload
type IngestJob struct {
	Path     string
	Date     string
	Lang     string
	Ingester Ingester
}

// Execute executes the ingest job
func (j *IngestJob) Execute(ctx context.Context) Result {
	content, err := os.ReadFile(j.Path)
	if err != nil {
		return &IngestResult{Path: j.Path, Error: fmt.Errorf("read %s: %w", j.Path, err)}
	}

	result, err := j.Ingester.Ingest(ctx, pipeline.IngestRequest{
		Name:    j.Path,
		Content: string(content),
		Date:    j.Date,
		Lang:    j.Lang,
	})
	if err != nil {
		return &IngestResult{Path: j.Path, Error: err}
	}
	return &IngestResult{Path: j.Path, Result: result}
}

// IngestResult represents the result of an ingest job
type IngestResult struct {
	Path   string
	Result *pipeline.IngestResult
	Error  error
}

// GetError returns the error from the ingest result
func (r *IngestResult) GetError() error {
	return r.Error
}

// IngestProcessor ingests multiple documents concurrently. Documents that
// share a (date, language) key replace each other in completion order.
type IngestProcessor struct {
	ingester    Ingester
	concurrency int
}

// NewIngestProcessor creates a new ingest processor
func NewIngestProcessor(ingester Ingester, concurrency int) *IngestProcessor {
	return &IngestProcessor{
		ingester:    ingester,
		concurrency: concurrency,
	}
}

// ProcessPaths ingests each path. Date and lang override filename hints
// when set.
func (b *IngestProcessor) ProcessPaths(ctx context.Context, paths []string, date, lang string) []*IngestResult {
	if len(paths) == 0 {
		return []*IngestResult{}
	}

	pool := NewPool(ctx, b.concurrency)
	pool.Start()

	for _, path := range paths {
		job := &IngestJob{
			Path:     path,
			Date:     date,
			Lang:     lang,
			Ingester: b.ingester,
		}
		if !pool.Submit(job) {
			break
		}
	}

	results := pool.Wait()

	ingestResults := make([]*IngestResult, len(results))
	for i, result := range results {
		ingestResults[i] = result.(*IngestResult)
	}

	return ingestResults
}

// ProcessFile reads document paths from a list file and ingests them
func (b *IngestProcessor) ProcessFile(ctx context.Context, listPath, date, lang string) ([]*IngestResult, error) {
	paths, err := ReadPathsFromFile(listPath)
	if err != nil {
		return nil, fmt.Errorf("read paths: %w", err)
	}

	return b.ProcessPaths(ctx, paths, date, lang), nil
}

// ReadPathsFromFile reads document paths from a file (one per line).
// Blank lines and "#" comments are skipped; duplicates are dropped.
func ReadPathsFromFile(filePath string) ([]string, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}
	defer func() { _ = file.Close() }()

	var paths []string
	seen := make(map[string]bool)

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())

		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		if !seen[line] {
			seen[line] = true
			paths = append(paths, line)
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan file: %w", err)
	}

	return paths, nil
}
