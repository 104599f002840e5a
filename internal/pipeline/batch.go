package pipeline

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/felipeandrian/navfep-gopher/internal/model"
	"golang.org/x/sync/errgroup"
)

// BatchProcessor handles concurrent crawling of multiple gopher holes.
// It uses errgroup to manage goroutines and respect concurrency limits.
//
// Design decision: We use a separate BatchProcessor rather than adding batch
// functionality to Pipeline because:
// 1. It keeps the Pipeline focused on single-crawl execution
// 2. It allows different batch strategies (e.g., rate limiting, retries)
// 3. It provides cleaner separation of concerns
type BatchProcessor struct {
	// pipelineFactory creates a new pipeline for each crawl.
	// We use a factory to ensure each crawl gets a fresh pipeline instance.
	pipelineFactory func() *Pipeline

	// concurrency is the maximum number of concurrent crawls.
	concurrency int

	// logger is used for batch-level logging.
	logger *slog.Logger

	// results stores completed crawl reports.
	// Access is synchronized via mutex.
	results []*model.CrawlReport
	mu      sync.Mutex
}

// BatchOption configures a BatchProcessor.
type BatchOption func(*BatchProcessor)

// WithBatchLogger sets a custom logger for batch processing.
func WithBatchLogger(logger *slog.Logger) BatchOption {
	return func(b *BatchProcessor) {
		b.logger = logger
	}
}

// WithConcurrency sets the maximum number of concurrent crawls.
// Default is 4 if not specified.
func WithConcurrency(n int) BatchOption {
	return func(b *BatchProcessor) {
		if n > 0 {
			b.concurrency = n
		}
	}
}

// NewBatchProcessor creates a new BatchProcessor.
//
// The pipelineFactory function is called for each crawl to create a fresh
// pipeline instance. This ensures that pipeline state doesn't leak between
// crawls and allows for per-target customization if needed.
func NewBatchProcessor(pipelineFactory func() *Pipeline, opts ...BatchOption) *BatchProcessor {
	bp := &BatchProcessor{
		pipelineFactory: pipelineFactory,
		concurrency:     4,
		results:         make([]*model.CrawlReport, 0),
	}

	for _, opt := range opts {
		opt(bp)
	}

	if bp.logger == nil {
		bp.logger = slog.Default()
	}

	return bp
}

// newReportForTarget builds the report shell for one target URL.
// Unparseable targets still get a report; the crawl step records the
// parse failure when the pipeline runs.
func newReportForTarget(target string) *model.CrawlReport {
	addr, err := model.ParseAddress(target)
	if err != nil {
		return model.NewCrawlReport(target, "", 0)
	}
	return model.NewCrawlReport(addr.String(), addr.Host(), addr.Port())
}

// ProcessBatch crawls multiple gopher holes concurrently.
// It respects the configured concurrency limit and context cancellation.
//
// Design decision: We use errgroup.SetLimit rather than a worker pool
// because it's simpler and errgroup handles the concurrency correctly.
// Each target gets its own goroutine, but only 'concurrency' goroutines
// run simultaneously.
//
// Returns all reports collected, even for targets that failed.
// The error return indicates if the batch was cancelled or if all crawls failed.
func (bp *BatchProcessor) ProcessBatch(ctx context.Context, targets []string) ([]*model.CrawlReport, error) {
	bp.logger.Info("starting batch processing",
		"total_targets", len(targets),
		"concurrency", bp.concurrency,
	)

	startTime := time.Now()

	// Pre-allocate results slice to maintain order
	bp.results = make([]*model.CrawlReport, len(targets))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(bp.concurrency)

	for i, target := range targets {
		g.Go(func() error {
			// Check for cancellation before starting
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}

			bp.logger.Info("crawling target",
				"target", target,
				"index", i+1,
				"total", len(targets),
			)

			// Create report for this target
			report := newReportForTarget(target)

			// Create and execute pipeline
			pipeline := bp.pipelineFactory()
			err := pipeline.Execute(ctx, report)

			// Store result regardless of error
			// The report contains error information if the crawl failed
			bp.mu.Lock()
			bp.results[i] = report
			bp.mu.Unlock()

			if err != nil {
				bp.logger.Warn("crawl failed",
					"target", target,
					"error", err,
				)
				// Don't return error to errgroup - we want to continue other crawls
				// The error is recorded in the report
				return nil
			}

			bp.logger.Info("crawl completed",
				"target", target,
			)

			return nil
		})
	}

	// Wait for all crawls to complete
	err := g.Wait()

	elapsed := time.Since(startTime)
	bp.logger.Info("batch processing complete",
		"total_targets", len(targets),
		"elapsed", elapsed,
	)

	return bp.results, err
}

// ProcessBatchWithCallback crawls multiple targets and calls a callback
// for each completed crawl. This is useful for streaming results.
//
// The callback receives the report and the index of the target in the
// original slice. The callback is called from the goroutine that completed
// the crawl, so it should be thread-safe if it accesses shared state.
func (bp *BatchProcessor) ProcessBatchWithCallback(
	ctx context.Context,
	targets []string,
	callback func(report *model.CrawlReport, index int),
) error {
	bp.logger.Info("starting batch processing with callback",
		"total_targets", len(targets),
		"concurrency", bp.concurrency,
	)

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(bp.concurrency)

	for i, target := range targets {
		g.Go(func() error {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}

			report := newReportForTarget(target)
			pipeline := bp.pipelineFactory()
			_ = pipeline.Execute(ctx, report) //nolint:errcheck // Error is stored in report

			// Call the callback with the result
			callback(report, i)

			return nil
		})
	}

	return g.Wait()
}
