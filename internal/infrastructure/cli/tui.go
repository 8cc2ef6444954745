package cli

import (
	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/taskforce/internal/infrastructure/tui"
)

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Interactive terminal UI",
	Long:  "Enter a task, pick subtasks from the list and request the overall structure, all in the terminal.",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctrl, err := newController()
		if err != nil {
			return err
		}
		ctx, stop := interruptible(cmd.Context())
		defer stop()
		return tui.Run(ctx, ctrl)
	},
}

func init() {
	RootCmd.AddCommand(tuiCmd)
}
