// Package batch fans a list of download jobs out over a bounded worker pool
// and aggregates their results.
package batch

import (
	"context"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"meetdl/internal/job"
	"meetdl/internal/model"
	"meetdl/internal/progress"
)

// Concurrency bounds; values outside the range are clamped, not rejected.
const (
	MinConcurrency = 1
	MaxConcurrency = 8
)

// Coordinator runs jobs with at most MaxConcurrency in flight. Admission is
// FIFO by input order; one failing job never aborts its siblings.
type Coordinator struct {
	Runner   *job.Runner
	Jobs     int               // requested concurrency, clamped to [1,8]
	Reporter progress.Reporter // optional
}

// ClampConcurrency bounds n to the supported worker-pool range.
func ClampConcurrency(n int) int {
	if n < MinConcurrency {
		return MinConcurrency
	}
	if n > MaxConcurrency {
		return MaxConcurrency
	}
	return n
}

// Run executes every input and returns a summary whose Results preserve the
// original input order. When ctx is cancelled, in-flight jobs are terminated
// and unstarted jobs are recorded as cancelled without ever running.
func (c *Coordinator) Run(ctx context.Context, inputs []model.JobInput) model.BatchSummary {
	start := time.Now()
	results := make([]model.JobResult, len(inputs))

	var g errgroup.Group
	g.SetLimit(ClampConcurrency(c.Jobs))

	for i, in := range inputs {
		i, in := i, in
		g.Go(func() error {
			if ctx.Err() != nil {
				results[i] = model.JobResult{Input: in, Outcome: model.OutcomeCancelled, Err: ctx.Err()}
				return nil
			}
			jobID := uuid.NewString()
			if c.Reporter != nil {
				results[i] = c.Runner.RunReported(ctx, in, jobID, c.Reporter)
			} else {
				results[i] = c.Runner.Run(ctx, in)
			}
			return nil
		})
	}
	_ = g.Wait()

	return Summarize(results, time.Since(start))
}

// Summarize builds a BatchSummary from per-job results.
func Summarize(results []model.JobResult, elapsed time.Duration) model.BatchSummary {
	s := model.BatchSummary{
		Total:   len(results),
		Results: results,
		Elapsed: elapsed,
	}
	for _, r := range results {
		switch r.Outcome {
		case model.OutcomeSuccess:
			s.Succeeded++
		case model.OutcomeCancelled:
			s.Cancelled++
		default:
			s.Failed++
		}
	}
	return s
}
