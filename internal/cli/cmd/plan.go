package cmd

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"meetdl/internal/job"
	"meetdl/internal/meta"
	"meetdl/internal/util"
)

func newPlanCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "plan [urls...]",
		Short:         "Resolve metadata and show what would be downloaded",
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.ArbitraryArgs,
		PreRunE:       runPreRun,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExecute(cmd, args, runMode{DryRunOnly: true})
		},
	}
	// Reuse same flags; plan never invokes the download tools
	bindRunFlags(cmd.Flags())
	return cmd
}

// planExecute fetches metadata for each meeting and prints the plan without
// touching the download tools.
func planExecute(ctx context.Context, in runInputs) error {
	client := meta.NewClient()
	var failed int
	for _, j := range in.Jobs {
		meetingID, err := util.ExtractMeetingID(j.URL)
		if err != nil {
			fmt.Printf("- %s\n  error: %v\n", j.URL, err)
			failed++
			continue
		}
		rec, err := client.FetchMeeting(ctx, meetingID, j.AuthToken)
		if err != nil {
			fmt.Printf("- %s\n  error: %v\n", j.URL, err)
			failed++
			continue
		}
		dest := filepath.Join(j.OutputDir, job.Basename(rec, 0)+".mp4")
		fmt.Printf("- %s\n", j.URL)
		fmt.Printf("  title:    %s\n", rec.Title)
		if !rec.RecordedAt.IsZero() {
			fmt.Printf("  recorded: %s\n", rec.RecordedAt.Format("2006-01-02 15:04"))
		}
		fmt.Printf("  manifest: %s\n", rec.ManifestURL)
		fmt.Printf("  output:   %s\n", dest)
	}
	if failed > 0 {
		return &ExitError{
			Code: ExitJobsFailed,
			Err:  fmt.Errorf("%d of %d meeting(s) could not be resolved", failed, len(in.Jobs)),
		}
	}
	return nil
}
