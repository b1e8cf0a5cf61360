package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/printforge/slicerd/internal/config"
	"github.com/printforge/slicerd/internal/observability"
)

var doctorShowConfig bool

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Run environment diagnostic checks",
	Long: `Check that the deployment environment is usable: the engine binary,
the profile store, the bundled profile tree, and the work directory.

Example:
  slicerd doctor
  slicerd doctor --show-config`,
	RunE: runDoctor,
}

func init() {
	rootCmd.AddCommand(doctorCmd)
	doctorCmd.Flags().BoolVar(&doctorShowConfig, "show-config", false, "Print the effective configuration as YAML")
}

func runDoctor(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log := observability.CLILogger
	log.Info("Running diagnostic checks...")

	failures := 0
	check := func(name string, err error) {
		if err != nil {
			log.Warn(fmt.Sprintf("%-18s FAIL: %v", name, err))
			failures++
			return
		}
		log.Info(fmt.Sprintf("%-18s ok", name))
	}

	check("engine binary", statFile(cfg.Engine.Bin))
	check("profiles dir", statDirWritable(cfg.Paths.ProfilesDir))
	check("bundled dir", statDir(cfg.Paths.BundledDir))
	check("work dir", statDirWritable(cfg.Paths.WorkDir))

	if doctorShowConfig {
		out, err := yaml.Marshal(cfg)
		if err != nil {
			return fmt.Errorf("render config: %w", err)
		}
		fmt.Printf("\n%s", out)
	}

	if failures > 0 {
		return fmt.Errorf("%d check(s) failed", failures)
	}
	log.Info("All checks passed")
	return nil
}

func statFile(path string) error {
	fi, err := os.Stat(path)
	if err != nil {
		return err
	}
	if fi.IsDir() {
		return fmt.Errorf("%s is a directory", path)
	}
	return nil
}

func statDir(path string) error {
	fi, err := os.Stat(path)
	if err != nil {
		return err
	}
	if !fi.IsDir() {
		return fmt.Errorf("%s is not a directory", path)
	}
	return nil
}

func statDirWritable(path string) error {
	if err := os.MkdirAll(path, 0755); err != nil {
		return err
	}
	probe, err := os.CreateTemp(path, ".doctor.*")
	if err != nil {
		return fmt.Errorf("not writable: %v", err)
	}
	name := probe.Name()
	_ = probe.Close()
	_ = os.Remove(name)
	return nil
}
