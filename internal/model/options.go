package model

import "time"

// CLIOptions holds user-configurable runtime options as parsed from flags.
type CLIOptions struct {
	OutDir         string
	AuthToken      string
	PrimaryBinary  string // Optional explicit path to N_m3u8DL-RE
	FallbackBinary string // Optional explicit path to ffmpeg
	Threads        int    // Segment parallelism passed to the primary tool
	Timeout        time.Duration
	DryRun         bool
	Verbose        bool

	NoUI bool // Disable TUI when true
	Jobs int  // Max concurrent download jobs
}
