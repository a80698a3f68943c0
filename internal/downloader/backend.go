package downloader

import (
	"path/filepath"
	"strconv"
	"strings"

	"meetdl/internal/util/deps"
)

// Backend is one of the two interchangeable external downloader tools.
type Backend interface {
	Name() string
	Path() string
	// Args builds the argument list for downloading manifestURL to destPath.
	// threads is the segment parallelism; only the primary tool honors it.
	Args(manifestURL, destPath string, threads int) []string
	// ProbeArgs is a lightweight version invocation used to check the tool runs.
	ProbeArgs() []string
}

// primaryBackend wraps N_m3u8DL-RE, which fetches HLS segments in parallel.
type primaryBackend struct {
	path string
}

func (b primaryBackend) Name() string { return deps.PrimaryTool }
func (b primaryBackend) Path() string { return b.path }

func (b primaryBackend) Args(manifestURL, destPath string, threads int) []string {
	base := filepath.Base(destPath)
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	return []string{
		manifestURL,
		"--save-name", stem,
		"--save-dir", filepath.Dir(destPath),
		"--thread-count", strconv.Itoa(threads),
		"--download-retry-count", "3",
		"--auto-select",
		"--no-log",
	}
}

func (b primaryBackend) ProbeArgs() []string { return []string{"--version"} }

// fallbackBackend wraps ffmpeg, which remuxes the stream serially.
type fallbackBackend struct {
	path string
}

func (b fallbackBackend) Name() string { return deps.FallbackTool }
func (b fallbackBackend) Path() string { return b.path }

func (b fallbackBackend) Args(manifestURL, destPath string, _ int) []string {
	return []string{"-i", manifestURL, "-c", "copy", "-y", destPath}
}

func (b fallbackBackend) ProbeArgs() []string { return []string{"-version"} }
