// Package ui renders the interactive download dashboard.
package ui

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"meetdl/internal/model"
)

// Run launches the TUI and blocks until every job has finished or the user
// quits. A non-nil error means at least one job did not complete.
func Run(ctx context.Context, inputs []model.JobInput, opts model.CLIOptions) error {
	m := NewModel(ctx, inputs, opts)
	prog := tea.NewProgram(m, tea.WithContext(ctx))
	final, err := prog.Run()
	if err != nil {
		return err
	}
	if fm, ok := final.(Model); ok {
		var failed []string
		for _, id := range fm.jobOrder {
			js := fm.jobs[id]
			if js != nil && js.err != nil {
				if js.url != "" {
					failed = append(failed, fmt.Sprintf("- %s: %s", js.url, js.err.Error()))
				} else {
					failed = append(failed, fmt.Sprintf("- %s", js.err.Error()))
				}
			}
		}
		if len(failed) > 0 {
			return fmt.Errorf("%d job(s) failed:\n%s", len(failed), strings.Join(failed, "\n"))
		}
	}
	return nil
}
