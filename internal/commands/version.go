package commands

import (
	"fmt"
	"runtime"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

// set with -ldflags at release time
var (
	version = "dev"
	commit  = "none"
)

func addVersion(topLevel *cobra.Command) {
	shortened := false

	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print the habit-hub version.",
		Run: func(cmd *cobra.Command, _ []string) {
			if shortened {
				fmt.Fprintln(cmd.OutOrStdout(), version)
				return
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s (%s, %s)\n", color.New(color.Bold).Sprint("habit-hub"), version, commit, runtime.Version())
		},
	}

	cmd.Flags().BoolVarP(&shortened, "short", "s", false, "Print just the version number.")

	topLevel.AddCommand(cmd)
}
