package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/taskforce/pkg/domain/task"
)

var subtasksJSON bool

var subtasksCmd = &cobra.Command{
	Use:   "subtasks <description...>",
	Short: "Break a task description into estimated subtasks",
	Example: `  taskforce subtasks "Plan a birthday party"
  taskforce subtasks --json Write a conference talk`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctrl, err := newController()
		if err != nil {
			return err
		}
		snap, err := fetchSubtasks(cmd.Context(), ctrl, strings.Join(args, " "))
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if subtasksJSON {
			enc := json.NewEncoder(out)
			enc.SetIndent("", "  ")
			return enc.Encode(snap.Subtasks)
		}
		printSubtasks(out, snap.Subtasks)
		return nil
	},
}

func printSubtasks(w io.Writer, subtasks []task.Subtask) {
	if len(subtasks) == 0 {
		_, _ = fmt.Fprintln(w, "No subtasks returned.")
		return
	}
	bold := color.New(color.Bold)
	_, _ = bold.Fprintln(w, "Subtasks:")
	for i, s := range subtasks {
		_, _ = fmt.Fprintf(w, "%s %s - %s\n", color.CyanString("%d.", i+1), s.Description, s.TimeEstimate)
	}

	total, skipped := task.TotalEstimate(subtasks)
	if total.IsZero() {
		return
	}
	line := fmt.Sprintf("Total: %s", total)
	if skipped > 0 {
		line += fmt.Sprintf(" (%d estimate(s) not understood)", skipped)
	}
	_, _ = fmt.Fprintln(w, color.New(color.Faint).Sprint(line))
}

func init() {
	subtasksCmd.Flags().BoolVar(&subtasksJSON, "json", false, "Print subtasks as JSON")
	RootCmd.AddCommand(subtasksCmd)
}
