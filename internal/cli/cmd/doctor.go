package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"meetdl/internal/downloader"
	"meetdl/internal/util/deps"
)

func newDoctorCmd() *cobra.Command {
	return &cobra.Command{
		Use:           "doctor",
		Short:         "Diagnose external dependencies (N_m3u8DL-RE, ffmpeg)",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			sel := &downloader.Selector{
				PrimaryPath:  settingString("primary_binary"),
				FallbackPath: settingString("fallback_binary"),
			}
			out := cmd.OutOrStdout()

			primary, perr := sel.Primary(cmd.Context())
			if perr != nil {
				fmt.Fprintf(out, "%-12s not available: %v\n", deps.PrimaryTool+":", perr)
			} else {
				fmt.Fprintf(out, "%-12s %s\n", deps.PrimaryTool+":", primary.Path())
			}

			fallback, ferr := sel.Fallback(cmd.Context())
			if ferr != nil {
				fmt.Fprintf(out, "%-12s not available: %v\n", deps.FallbackTool+":", ferr)
			} else {
				fmt.Fprintf(out, "%-12s %s\n", deps.FallbackTool+":", fallback.Path())
			}

			if perr != nil && ferr != nil {
				return &ExitError{Code: ExitMissingDep, Err: fmt.Errorf("no usable download tool found")}
			}
			if perr != nil {
				fmt.Fprintf(out, "downloads will use the %s fallback (no segment parallelism)\n", deps.FallbackTool)
			}
			return nil
		},
	}
}
