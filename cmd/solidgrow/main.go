// Command solidgrow grows STL solids along an axis and runs solidgrow
// scripts.
package main

import (
	"fmt"
	"os"

	"github.com/chazu/solidgrow/internal/logging"
	"github.com/chazu/solidgrow/version"
	"github.com/spf13/cobra"
)

func newRootCmd() *cobra.Command {
	var level string
	root := &cobra.Command{
		Use:   "solidgrow",
		Short: "Directional shell expansion for polygon meshes",
		Long: `solidgrow grows the faces of a closed mesh that point along one axis,
keeping the result a single watertight solid. It reads and writes binary
or ASCII STL (optionally zstd-compressed) and can export GLB.`,
		Version:       version.GetFullVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return logging.SetLevel(level)
		},
	}
	root.PersistentFlags().StringVar(&level, "log-level", "warn", "log level: panic, fatal, error, warn, info or debug")
	root.AddCommand(newExpandCmd(), newInfoCmd(), newScriptCmd(), newVersionCmd())
	return root
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
