// Package cmd wires the slicerd CLI commands.
package cmd

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/printforge/slicerd/internal/observability"
)

var (
	cfgFile  string
	logLevel string
)

var rootCmd = &cobra.Command{
	Use:   "slicerd",
	Short: "HTTP service wrapping a CLI 3D-printing slicer",
	Long: `slicerd stores printer, process, and filament profiles, merges user
overrides with vendor-bundled base profiles, and drives the external
slicing engine to turn uploaded models into GCODE.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return observability.Init(logLevel)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "Path to config file (optional)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "Log level (debug, info, warn, error)")
}

// Execute runs the root command under the given context.
func Execute(ctx context.Context) error {
	defer observability.Sync()
	return rootCmd.ExecuteContext(ctx)
}
