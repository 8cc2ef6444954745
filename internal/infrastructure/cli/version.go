package cli

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error { return nil },
	RunE: func(cmd *cobra.Command, args []string) error {
		_, err := fmt.Fprintf(cmd.OutOrStdout(), "taskforce %s\ncommit: %s\nbuilt: %s\ngo: %s %s/%s\n",
			Version, Commit, Date, runtime.Version(), runtime.GOOS, runtime.GOARCH)
		return err
	},
}

func init() {
	RootCmd.AddCommand(versionCmd)
}
