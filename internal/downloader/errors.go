package downloader

import (
	"errors"
	"fmt"
	"time"
)

// ErrToolUnavailable means neither backend could be probed successfully.
var ErrToolUnavailable = errors.New("no downloader tool available (N_m3u8DL-RE or ffmpeg)")

// SubprocessError reports a backend that started but did not produce a
// usable output file. ExitCode is 0 when the process exited cleanly but the
// destination file was missing or empty.
type SubprocessError struct {
	Tool       string
	ExitCode   int
	StderrTail string
}

func (e *SubprocessError) Error() string {
	msg := fmt.Sprintf("%s failed (exit %d)", e.Tool, e.ExitCode)
	if e.StderrTail != "" {
		msg += ": " + e.StderrTail
	}
	return msg
}

// TimeoutError reports that a backend exceeded the configured ceiling and
// was killed.
type TimeoutError struct {
	Tool  string
	Limit time.Duration
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("%s timed out after %s", e.Tool, e.Limit)
}

// startError marks an invocation that never got off the ground (binary
// missing, not executable). It triggers the fallback path and is not
// surfaced to callers directly.
type startError struct {
	tool string
	err  error
}

func (e *startError) Error() string {
	return fmt.Sprintf("%s failed to start: %v", e.tool, e.err)
}

func (e *startError) Unwrap() error {
	return e.err
}
