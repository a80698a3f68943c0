package model

import "time"

// JobInput describes one requested download. Immutable once constructed.
type JobInput struct {
	URL       string // Meeting URL; the meeting ID is the last path segment.
	AuthToken string
	OutputDir string
}

// Outcome is the terminal state of a job.
type Outcome int

const (
	OutcomeSuccess Outcome = iota
	OutcomeFailed
	OutcomeCancelled
)

func (o Outcome) String() string {
	switch o {
	case OutcomeSuccess:
		return "success"
	case OutcomeFailed:
		return "failed"
	case OutcomeCancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// JobResult is produced exactly once per JobInput.
// On success FilePath, Bytes and Elapsed are set; on failure Err carries the
// classified error (meta.Error or one of the downloader error types).
type JobResult struct {
	Input   JobInput
	Outcome Outcome

	FilePath string
	Bytes    int64
	Elapsed  time.Duration

	Err error
}

// BatchSummary aggregates the results of one batch run. Results preserves
// the original input order regardless of completion order.
type BatchSummary struct {
	Total     int
	Succeeded int
	Failed    int
	Cancelled int
	Results   []JobResult
	Elapsed   time.Duration
}
