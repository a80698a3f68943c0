package cmd

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"meetdl/internal/config"
)

const (
	ExitOK         = 0
	ExitCLIError   = 1
	ExitMissingDep = 2
	ExitJobsFailed = 3
)

// ExitError wraps an error with a process exit code.
type ExitError struct {
	Code int
	Err  error
}

func (e *ExitError) Error() string {
	if e.Err == nil {
		return ""
	}
	return e.Err.Error()
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "meetdl [urls...]",
		Short:         "Download tldv meeting recordings",
		Long:          "meetdl fetches recorded meetings from tldv.io. Give it one or more meeting URLs (or a file of them) and it resolves each recording's stream manifest, downloads the video with N_m3u8DL-RE (falling back to ffmpeg), and drops an .mp4 plus a .json metadata sidecar next to it.",
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.ArbitraryArgs, // URLs may also come from --input
		RunE: func(cmd *cobra.Command, args []string) error {
			// Bare `meetdl <url>` behaves like `meetdl run <url>`.
			return runExecute(cmd, args, runMode{})
		},
	}

	// Persistent flags available to all subcommands
	root.PersistentFlags().StringP("out-dir", "o", ".", "Output directory")
	root.PersistentFlags().BoolP("verbose", "v", false, "Show full subprocess commands/output")
	root.PersistentFlags().String("token", "", "tldv auth token (or MEETDL_TOKEN)")
	root.PersistentFlags().String("primary-binary", "", "Path to N_m3u8DL-RE")
	root.PersistentFlags().String("fallback-binary", "", "Path to ffmpeg")
	root.PersistentFlags().Int("jobs", 4, "Max concurrent downloads (1-8)")
	root.PersistentFlags().Duration("timeout", 0, "Per-job timeout (e.g. 30m); 0 disables")

	// Also bind run-specific flags on root, so `meetdl <url>` continues to work.
	bindRunFlags(root.Flags())

	root.AddCommand(newRunCmd())
	root.AddCommand(newPlanCmd())
	root.AddCommand(newTuiCmd())
	root.AddCommand(newDoctorCmd())
	root.AddCommand(newCompletionCmd())

	return root
}

func bindRunFlags(fs *pflag.FlagSet) {
	fs.StringP("input", "i", "", "File of meeting URLs, one per line ('#' comments allowed)")
	fs.Int("threads", 8, "Segment download threads passed to N_m3u8DL-RE")
	fs.Bool("no-ui", false, "Disable TUI; use plain textual output")
}

// Execute runs the CLI with the provided context.
func Execute(ctx context.Context) error {
	root := newRootCmd()
	if err := config.Init(root); err != nil {
		return &ExitError{Code: ExitCLIError, Err: err}
	}
	return root.ExecuteContext(ctx)
}

// Helpers

// settingString resolves a persistent flag through Viper so precedence is
// flag > env > config file > default.
func settingString(key string) string {
	return viper.GetString(key)
}

func settingBool(key string) bool {
	return viper.GetBool(key)
}

func settingInt(key string) int {
	return viper.GetInt(key)
}

func settingDuration(key string) time.Duration {
	return viper.GetDuration(key)
}

func ensureDir(path string) error {
	if path == "" {
		path = "."
	}
	return os.MkdirAll(filepath.Clean(path), 0o755)
}
