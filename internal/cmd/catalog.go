package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/printforge/slicerd/internal/config"
	"github.com/printforge/slicerd/internal/observability"
	"github.com/printforge/slicerd/pkg/catalog"
)

var catalogNames bool

var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "Scan and summarize the bundled system profiles",
	Long: `Build the bundled-profile index the same way serve does at startup and
print per-category counts. Useful for verifying a vendor profile tree
before pointing the service at it.

Example:
  slicerd catalog
  slicerd catalog --names
  SLICERD_PATHS_BUNDLED_DIR=/opt/orcaslicer/resources/profiles slicerd catalog`,
	RunE: runCatalog,
}

func init() {
	rootCmd.AddCommand(catalogCmd)
	catalogCmd.Flags().BoolVar(&catalogNames, "names", false, "List indexed profile names per category")
}

func runCatalog(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	system, err := catalog.Build(catalog.Config{
		BundledDir: cfg.Paths.BundledDir,
		Logger:     observability.CLILogger,
	})
	if err != nil {
		return err
	}

	for _, sub := range catalog.Subdirs {
		observability.CLILogger.Info(fmt.Sprintf("%-10s %d profiles", sub, system.Len(sub)),
			zap.String("subdir", sub))
		if catalogNames {
			for _, name := range system.Names(sub) {
				fmt.Printf("  %s\n", name)
			}
		}
	}
	return nil
}
