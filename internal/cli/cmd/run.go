package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"meetdl/internal/batch"
	"meetdl/internal/downloader"
	"meetdl/internal/job"
	"meetdl/internal/meta"
	"meetdl/internal/model"
	"meetdl/internal/progress"
	"meetdl/internal/ui"
	"meetdl/internal/util"
	"meetdl/internal/util/format"
)

type runMode struct {
	ForceTUI   bool
	DryRunOnly bool
}

func newRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "run [urls...]",
		Short:         "Download meeting recordings",
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.ArbitraryArgs,
		PreRunE:       runPreRun,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExecute(cmd, args, runMode{})
		},
	}
	// Bind same flags as root for explicit subcommand usage
	bindRunFlags(cmd.Flags())
	return cmd
}

type ctxKey string

const runInputsKey ctxKey = "runInputs"

type runInputs struct {
	Jobs    []model.JobInput
	Options model.CLIOptions
}

func runPreRun(cmd *cobra.Command, args []string) error {
	in, err := assembleRunInputs(cmd, args)
	if err != nil {
		return &ExitError{Code: ExitCLIError, Err: err}
	}
	cmd.SetContext(context.WithValue(cmd.Context(), runInputsKey, in))
	return nil
}

func assembleRunInputs(cmd *cobra.Command, args []string) (runInputs, error) {
	// Persistent settings with precedence: flag > env/config > default
	outDir := filepath.Clean(settingString("out_dir"))
	token := settingString("token")
	jobs := settingInt("jobs")
	if jobs <= 0 {
		jobs = 4
	}

	opts := model.CLIOptions{
		OutDir:         outDir,
		AuthToken:      util.NormalizeToken(token),
		PrimaryBinary:  settingString("primary_binary"),
		FallbackBinary: settingString("fallback_binary"),
		Timeout:        settingDuration("timeout"),
		Verbose:        settingBool("verbose"),
		Jobs:           batch.ClampConcurrency(jobs),
	}

	// Run flags
	opts.Threads, _ = cmd.Flags().GetInt("threads")
	opts.NoUI, _ = cmd.Flags().GetBool("no-ui")
	inputFile, _ := cmd.Flags().GetString("input")

	urls := append([]string(nil), args...)
	if inputFile != "" {
		fromFile, err := batch.ReadURLFile(inputFile)
		if err != nil {
			return runInputs{}, err
		}
		urls = append(urls, fromFile...)
	}
	if len(urls) == 0 {
		return runInputs{}, errors.New("no meeting URLs given (pass URLs or --input FILE)")
	}
	if opts.AuthToken == "" {
		return runInputs{}, errors.New("no auth token: set --token, MEETDL_TOKEN, or token in the config file")
	}

	inputs := make([]model.JobInput, 0, len(urls))
	for _, raw := range urls {
		if _, err := util.ExtractMeetingID(raw); err != nil {
			return runInputs{}, err
		}
		inputs = append(inputs, model.JobInput{
			URL:       raw,
			AuthToken: opts.AuthToken,
			OutputDir: opts.OutDir,
		})
	}

	return runInputs{Jobs: inputs, Options: opts}, nil
}

func runExecute(cmd *cobra.Command, args []string, mode runMode) error {
	// Grab inputs from context; if not present (root called without PreRunE),
	// assemble now.
	var in runInputs
	if v := cmd.Context().Value(runInputsKey); v != nil {
		in = v.(runInputs)
	} else {
		assembled, err := assembleRunInputs(cmd, args)
		if err != nil {
			return &ExitError{Code: ExitCLIError, Err: err}
		}
		in = assembled
	}

	if err := ensureDir(in.Options.OutDir); err != nil {
		return &ExitError{Code: ExitCLIError, Err: fmt.Errorf("failed to create output dir: %v", err)}
	}

	if mode.DryRunOnly {
		in.Options.DryRun = true
		in.Options.NoUI = true
		return planExecute(cmd.Context(), in)
	}

	// TUI path (forced or auto if TTY and not disabled)
	useTUI := mode.ForceTUI || (!in.Options.NoUI && isTerminal())
	if useTUI {
		if err := ui.Run(cmd.Context(), in.Jobs, in.Options); err != nil {
			return &ExitError{Code: ExitJobsFailed, Err: err}
		}
		return nil
	}

	return runPlain(cmd.Context(), in)
}

// runPlain executes the batch without the TUI, printing one line per result.
func runPlain(ctx context.Context, in runInputs) error {
	selector := &downloader.Selector{
		PrimaryPath:  in.Options.PrimaryBinary,
		FallbackPath: in.Options.FallbackBinary,
	}
	// Probe up front so a missing tool fails fast instead of per job.
	if _, err := selector.Backend(ctx); err != nil {
		return &ExitError{Code: ExitMissingDep, Err: err}
	}

	coord := &batch.Coordinator{
		Runner: &job.Runner{
			Meta: meta.NewClient(),
			Invoker: &downloader.Invoker{
				Selector: selector,
				Timeout:  in.Options.Timeout,
				Threads:  in.Options.Threads,
				Verbose:  in.Options.Verbose,
			},
		},
		Jobs:     in.Options.Jobs,
		Reporter: &textReporter{verbose: in.Options.Verbose},
	}

	s := coord.Run(ctx, in.Jobs)
	printSummary(s)
	if s.Failed > 0 || s.Cancelled > 0 {
		return &ExitError{
			Code: ExitJobsFailed,
			Err:  fmt.Errorf("%d of %d job(s) did not complete", s.Failed+s.Cancelled, s.Total),
		}
	}
	return nil
}

func printSummary(s model.BatchSummary) {
	for _, r := range s.Results {
		switch r.Outcome {
		case model.OutcomeSuccess:
			fmt.Printf("Saved: %s (%s)\n", r.FilePath, format.HumanizeBytes(r.Bytes))
		case model.OutcomeCancelled:
			fmt.Printf("Cancelled: %s\n", r.Input.URL)
		default:
			fmt.Fprintf(os.Stderr, "Failed: %s: %v\n", r.Input.URL, r.Err)
		}
	}
	fmt.Printf("Done in %s: %d succeeded, %d failed, %d cancelled\n",
		s.Elapsed.Round(time.Millisecond), s.Succeeded, s.Failed, s.Cancelled)
}

func isTerminal() bool {
	return term.IsTerminal(int(os.Stdout.Fd()))
}

// textReporter narrates job progress on stderr in verbose mode. Results are
// printed by printSummary, not here, so lines come out in input order.
type textReporter struct {
	verbose bool
}

func (t *textReporter) Update(u progress.Update) {
	if !t.verbose {
		return
	}
	if u.Percent >= 0 {
		fmt.Fprintf(os.Stderr, "[%s] %s %.1f%%\n", shortID(u.JobID), u.Stage, u.Percent)
		return
	}
	fmt.Fprintf(os.Stderr, "[%s] %s: %s\n", shortID(u.JobID), u.Stage, u.Message)
}

func (t *textReporter) Log(l progress.Log) {
	if !t.verbose {
		return
	}
	fmt.Fprintf(os.Stderr, "[%s] %s\n", shortID(l.JobID), l.Line)
}

func (t *textReporter) Result(r progress.Result) {}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
