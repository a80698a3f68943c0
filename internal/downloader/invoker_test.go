package downloader

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"meetdl/internal/util"
)

// fakeRunner simulates the two backend tools. Behavior is keyed on the
// binary path and whether the call is a probe (version flag) or a download.
type fakeRunner struct {
	mu    sync.Mutex
	calls []util.CmdSpec

	// behavior returns the result for a download invocation.
	behavior func(spec util.CmdSpec) (util.CmdResult, error)
}

func (f *fakeRunner) Run(ctx context.Context, spec util.CmdSpec) (util.CmdResult, error) {
	f.mu.Lock()
	f.calls = append(f.calls, spec)
	f.mu.Unlock()

	if isProbe(spec) {
		return util.CmdResult{Code: 0}, nil
	}
	return f.behavior(spec)
}

func (f *fakeRunner) countCalls(path string, probe bool) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.calls {
		if c.Path == path && isProbe(c) == probe {
			n++
		}
	}
	return n
}

func isProbe(spec util.CmdSpec) bool {
	for _, a := range spec.Args {
		if a == "--version" || a == "-version" {
			return true
		}
	}
	return false
}

// fakeTools creates stand-in binaries on disk so path resolution succeeds.
func fakeTools(t *testing.T) (primary, fallback string) {
	t.Helper()
	dir := t.TempDir()
	primary = filepath.Join(dir, "N_m3u8DL-RE")
	fallback = filepath.Join(dir, "ffmpeg")
	for _, p := range []string{primary, fallback} {
		if err := os.WriteFile(p, []byte("#!/bin/sh\n"), 0o755); err != nil {
			t.Fatalf("create fake tool: %v", err)
		}
	}
	return primary, fallback
}

func writeDest(t *testing.T, spec util.CmdSpec, size int) string {
	t.Helper()
	dest := destFromArgs(spec)
	if dest == "" {
		t.Fatalf("could not determine dest path from args %v", spec.Args)
	}
	if err := os.WriteFile(dest, make([]byte, size), 0o644); err != nil {
		t.Fatalf("write dest: %v", err)
	}
	return dest
}

// destFromArgs reconstructs the output path from either backend's arguments.
func destFromArgs(spec util.CmdSpec) string {
	var saveName, saveDir string
	for i, a := range spec.Args {
		switch a {
		case "--save-name":
			saveName = spec.Args[i+1]
		case "--save-dir":
			saveDir = spec.Args[i+1]
		case "-y":
			return spec.Args[i+1]
		}
	}
	if saveName != "" && saveDir != "" {
		return filepath.Join(saveDir, saveName+".mp4")
	}
	return ""
}

func newInvoker(primary, fallback string, r util.CmdRunner) *Invoker {
	return &Invoker{
		Selector: &Selector{PrimaryPath: primary, FallbackPath: fallback, Runner: r},
		Runner:   r,
	}
}

func TestDownloadSuccessWithPrimary(t *testing.T) {
	primary, fallback := fakeTools(t)
	r := &fakeRunner{behavior: func(spec util.CmdSpec) (util.CmdResult, error) {
		writeDest(t, spec, 2048)
		return util.CmdResult{Code: 0}, nil
	}}
	inv := newInvoker(primary, fallback, r)

	dest := filepath.Join(t.TempDir(), "2024-03-15_09-30-00_Weekly_Sync.mp4")
	stats, err := inv.Download(context.Background(), Request{ManifestURL: "https://cdn.example.com/x.m3u8", DestPath: dest})
	if err != nil {
		t.Fatalf("Download() error: %v", err)
	}
	if stats.Bytes != 2048 {
		t.Errorf("Bytes = %d, want 2048", stats.Bytes)
	}
	if got := r.countCalls(primary, false); got != 1 {
		t.Errorf("primary download invocations = %d, want 1", got)
	}
	if got := r.countCalls(fallback, false); got != 0 {
		t.Errorf("fallback download invocations = %d, want 0", got)
	}
}

func TestDownloadZeroByteOutputIsFailure(t *testing.T) {
	primary, fallback := fakeTools(t)
	r := &fakeRunner{behavior: func(spec util.CmdSpec) (util.CmdResult, error) {
		writeDest(t, spec, 0)
		return util.CmdResult{Code: 0}, nil
	}}
	inv := newInvoker(primary, fallback, r)

	dest := filepath.Join(t.TempDir(), "meeting.mp4")
	_, err := inv.Download(context.Background(), Request{ManifestURL: "u", DestPath: dest})
	var se *SubprocessError
	if !errors.As(err, &se) {
		t.Fatalf("expected *SubprocessError, got %v", err)
	}
	if se.ExitCode != 0 {
		t.Errorf("ExitCode = %d, want 0", se.ExitCode)
	}
	if _, statErr := os.Stat(dest); !os.IsNotExist(statErr) {
		t.Errorf("zero-byte output file was not removed")
	}
}

func TestDownloadNonZeroExitDoesNotFallBack(t *testing.T) {
	primary, fallback := fakeTools(t)
	r := &fakeRunner{behavior: func(spec util.CmdSpec) (util.CmdResult, error) {
		writeDest(t, spec, 10) // partial output
		res := util.CmdResult{Code: 2, Stderr: []byte("segment fetch failed\nHTTP 403\n")}
		return res, errors.New("command failed (exit 2)")
	}}
	inv := newInvoker(primary, fallback, r)

	dest := filepath.Join(t.TempDir(), "meeting.mp4")
	_, err := inv.Download(context.Background(), Request{ManifestURL: "u", DestPath: dest})
	var se *SubprocessError
	if !errors.As(err, &se) {
		t.Fatalf("expected *SubprocessError, got %v", err)
	}
	if se.ExitCode != 2 {
		t.Errorf("ExitCode = %d, want 2", se.ExitCode)
	}
	if !strings.Contains(se.StderrTail, "HTTP 403") {
		t.Errorf("StderrTail = %q, want stderr tail included", se.StderrTail)
	}
	if got := r.countCalls(fallback, false); got != 0 {
		t.Errorf("fallback was invoked after a started-but-failed primary run")
	}
	if _, statErr := os.Stat(dest); !os.IsNotExist(statErr) {
		t.Errorf("partial output file was not removed")
	}
}

func TestDownloadPrimaryUnavailableUsesFallbackProbeOnce(t *testing.T) {
	_, fallback := fakeTools(t)
	r := &fakeRunner{behavior: func(spec util.CmdSpec) (util.CmdResult, error) {
		writeDest(t, spec, 100)
		return util.CmdResult{Code: 0}, nil
	}}
	// Primary path does not exist, so its probe can never succeed.
	inv := newInvoker(filepath.Join(t.TempDir(), "missing"), fallback, r)

	outDir := t.TempDir()
	for i := 0; i < 3; i++ {
		dest := filepath.Join(outDir, "meeting"+strings.Repeat("x", i)+".mp4")
		if _, err := inv.Download(context.Background(), Request{ManifestURL: "u", DestPath: dest}); err != nil {
			t.Fatalf("Download() #%d error: %v", i, err)
		}
	}

	if got := r.countCalls(fallback, true); got != 1 {
		t.Errorf("fallback probe invocations = %d, want exactly 1 for the whole batch", got)
	}
	if got := r.countCalls(fallback, false); got != 3 {
		t.Errorf("fallback download invocations = %d, want 3", got)
	}
}

func TestDownloadNeitherToolAvailable(t *testing.T) {
	missing := t.TempDir()
	inv := newInvoker(filepath.Join(missing, "a"), filepath.Join(missing, "b"), &fakeRunner{})

	_, err := inv.Download(context.Background(), Request{ManifestURL: "u", DestPath: filepath.Join(missing, "out.mp4")})
	if !errors.Is(err, ErrToolUnavailable) {
		t.Fatalf("expected ErrToolUnavailable, got %v", err)
	}
}

func TestDownloadTimeout(t *testing.T) {
	primary, fallback := fakeTools(t)
	// The fake blocks until the invoker's timeout context expires, then
	// reports the kill the way the real runner would.
	r := &fakeRunner{behavior: func(spec util.CmdSpec) (util.CmdResult, error) {
		time.Sleep(30 * time.Millisecond)
		return util.CmdResult{Code: -1, Err: context.DeadlineExceeded}, context.DeadlineExceeded
	}}
	inv := newInvoker(primary, fallback, r)
	inv.Timeout = 10 * time.Millisecond

	_, err := inv.Download(context.Background(), Request{ManifestURL: "u", DestPath: filepath.Join(t.TempDir(), "out.mp4")})
	var te *TimeoutError
	if !errors.As(err, &te) {
		t.Fatalf("expected *TimeoutError, got %v", err)
	}
}

func TestDownloadPrimaryStartFailureFallsBack(t *testing.T) {
	primary, fallback := fakeTools(t)
	r := &fakeRunner{}
	r.behavior = func(spec util.CmdSpec) (util.CmdResult, error) {
		if spec.Path == primary {
			// Probe passed but the real invocation cannot start.
			return util.CmdResult{Code: -1, Err: os.ErrPermission}, os.ErrPermission
		}
		writeDest(t, spec, 64)
		return util.CmdResult{Code: 0}, nil
	}
	inv := newInvoker(primary, fallback, r)

	dest := filepath.Join(t.TempDir(), "out.mp4")
	stats, err := inv.Download(context.Background(), Request{ManifestURL: "u", DestPath: dest})
	if err != nil {
		t.Fatalf("Download() error: %v", err)
	}
	if stats.Bytes != 64 {
		t.Errorf("Bytes = %d, want 64", stats.Bytes)
	}
	if got := r.countCalls(fallback, false); got != 1 {
		t.Errorf("fallback download invocations = %d, want 1", got)
	}
}
