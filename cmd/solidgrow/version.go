package main

import (
	"fmt"

	"github.com/chazu/solidgrow/version"
	"github.com/spf13/cobra"
)

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "solidgrow %s\n", version.GetVersion())
			fmt.Fprintf(out, "  commit: %s\n", version.GitCommit)
			fmt.Fprintf(out, "  built:  %s\n", version.BuildDate)
		},
	}
}
