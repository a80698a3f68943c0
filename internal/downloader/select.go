package downloader

import (
	"context"
	"fmt"
	"sync"
	"time"

	"meetdl/internal/util"
	"meetdl/internal/util/deps"
)

const defaultProbeTimeout = 10 * time.Second

// Selector probes backend availability at most once per tool and caches the
// result for the process lifetime. Safe for concurrent use: the first caller
// probes, everyone else observes the cached result.
type Selector struct {
	PrimaryPath  string // optional explicit path to N_m3u8DL-RE
	FallbackPath string // optional explicit path to ffmpeg
	Runner       util.CmdRunner
	ProbeTimeout time.Duration

	primaryOnce  sync.Once
	primary      Backend
	primaryErr   error
	fallbackOnce sync.Once
	fallback     Backend
	fallbackErr  error
}

// Backend returns the tool to use: the primary when its probe succeeds,
// otherwise the fallback. Returns ErrToolUnavailable when neither runs.
func (s *Selector) Backend(ctx context.Context) (Backend, error) {
	if b, err := s.Primary(ctx); err == nil {
		return b, nil
	}
	if b, err := s.Fallback(ctx); err == nil {
		return b, nil
	}
	return nil, fmt.Errorf("%w: primary: %v; fallback: %v", ErrToolUnavailable, s.primaryErr, s.fallbackErr)
}

// Primary probes N_m3u8DL-RE on first use and caches the outcome.
func (s *Selector) Primary(ctx context.Context) (Backend, error) {
	s.primaryOnce.Do(func() {
		path, err := deps.FindPrimary(s.PrimaryPath)
		if err != nil {
			s.primaryErr = err
			return
		}
		b := primaryBackend{path: path}
		if err := s.probe(ctx, b); err != nil {
			s.primaryErr = err
			return
		}
		s.primary = b
	})
	return s.primary, s.primaryErr
}

// Fallback probes ffmpeg on first use and caches the outcome.
func (s *Selector) Fallback(ctx context.Context) (Backend, error) {
	s.fallbackOnce.Do(func() {
		path, err := deps.FindFallback(s.FallbackPath)
		if err != nil {
			s.fallbackErr = err
			return
		}
		b := fallbackBackend{path: path}
		if err := s.probe(ctx, b); err != nil {
			s.fallbackErr = err
			return
		}
		s.fallback = b
	})
	return s.fallback, s.fallbackErr
}

func (s *Selector) probe(ctx context.Context, b Backend) error {
	timeout := s.ProbeTimeout
	if timeout <= 0 {
		timeout = defaultProbeTimeout
	}
	probeCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	res, err := s.runner().Run(probeCtx, util.CmdSpec{
		Path: b.Path(),
		Args: b.ProbeArgs(),
	})
	if err != nil {
		return fmt.Errorf("%s probe failed: %w", b.Name(), err)
	}
	if res.Code != 0 {
		return fmt.Errorf("%s probe exited with code %d", b.Name(), res.Code)
	}
	return nil
}

func (s *Selector) runner() util.CmdRunner {
	if s.Runner != nil {
		return s.Runner
	}
	return util.NewDefaultRunner()
}
