// Package downloader invokes an external tool to fetch HLS media. Segment
// parsing and muxing are entirely the tool's job; this package only selects
// a backend, runs it, and validates the result.
package downloader

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"meetdl/internal/progress"
	"meetdl/internal/util"
)

const (
	defaultThreads  = 8
	stderrTailLines = 5
)

// Stats describes a completed download.
type Stats struct {
	Bytes   int64
	Elapsed time.Duration
}

// Request describes one download invocation.
type Request struct {
	ManifestURL string
	DestPath    string
	JobID       string            // for reporter correlation; may be empty
	Reporter    progress.Reporter // optional
}

// Invoker runs the selected backend as a subprocess. Zero or one fallback
// attempt happens per job: the fallback is tried only when the primary tool
// cannot start at all. A primary run that starts and then exits non-zero is
// surfaced as a SubprocessError rather than silently retried, so persistent
// tool misconfiguration stays visible.
type Invoker struct {
	Selector *Selector
	Runner   util.CmdRunner
	Timeout  time.Duration // per-job subprocess ceiling; 0 = none
	Threads  int           // segment parallelism for the primary tool
	Verbose  bool
}

// Download fetches the manifest media into req.DestPath. On failure no
// partial output file is left behind.
func (inv *Invoker) Download(ctx context.Context, req Request) (Stats, error) {
	backend, err := inv.Selector.Backend(ctx)
	if err != nil {
		return Stats{}, err
	}

	stats, err := inv.runBackend(ctx, backend, req)
	var se *startError
	if errors.As(err, &se) {
		// The chosen tool could not even start. Try the fallback once; a
		// started-but-failed run never reaches this branch.
		fb, ferr := inv.Selector.Fallback(ctx)
		if ferr != nil || fb.Name() == backend.Name() {
			return Stats{}, fmt.Errorf("%w: %v", ErrToolUnavailable, err)
		}
		stats, err = inv.runBackend(ctx, fb, req)
		if err != nil {
			if errors.As(err, &se) {
				return Stats{}, fmt.Errorf("%w: %v", ErrToolUnavailable, err)
			}
			return Stats{}, err
		}
	}
	return stats, err
}

func (inv *Invoker) runBackend(ctx context.Context, b Backend, req Request) (Stats, error) {
	start := time.Now()

	runCtx := ctx
	if inv.Timeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, inv.Timeout)
		defer cancel()
	}

	threads := inv.Threads
	if threads <= 0 {
		threads = defaultThreads
	}

	spec := util.CmdSpec{
		Path:    b.Path(),
		Args:    b.Args(req.ManifestURL, req.DestPath, threads),
		Verbose: inv.Verbose,
	}
	if req.Reporter != nil {
		spec.StdoutLine = func(line string) {
			if pct, ok := ParsePercent(line); ok {
				req.Reporter.Update(progress.Update{
					JobID:   req.JobID,
					Stage:   progress.StageDownloading,
					Percent: pct,
					Message: "Downloading",
				})
			}
			req.Reporter.Log(progress.Log{JobID: req.JobID, Stream: progress.StreamStdout, Line: line})
		}
		spec.StderrLine = func(line string) {
			req.Reporter.Log(progress.Log{JobID: req.JobID, Stream: progress.StreamStderr, Line: line})
		}
	}

	res, runErr := inv.runner().Run(runCtx, spec)
	if runErr != nil {
		_ = util.RemoveIfExists(req.DestPath)
		if ctx.Err() != nil {
			return Stats{}, ctx.Err()
		}
		if runCtx.Err() == context.DeadlineExceeded {
			return Stats{}, &TimeoutError{Tool: b.Name(), Limit: inv.Timeout}
		}
		if res.Code > 0 {
			return Stats{}, &SubprocessError{
				Tool:       b.Name(),
				ExitCode:   res.Code,
				StderrTail: util.StderrTail(res.Stderr, stderrTailLines),
			}
		}
		return Stats{}, &startError{tool: b.Name(), err: runErr}
	}

	// Exit code 0 alone does not prove success: the file must exist and be
	// non-empty.
	fi, statErr := os.Stat(req.DestPath)
	if statErr != nil || fi.Size() == 0 {
		_ = util.RemoveIfExists(req.DestPath)
		return Stats{}, &SubprocessError{
			Tool:       b.Name(),
			ExitCode:   0,
			StderrTail: "output file missing or empty",
		}
	}

	return Stats{Bytes: fi.Size(), Elapsed: time.Since(start)}, nil
}

func (inv *Invoker) runner() util.CmdRunner {
	if inv.Runner != nil {
		return inv.Runner
	}
	return util.NewDefaultRunner()
}
