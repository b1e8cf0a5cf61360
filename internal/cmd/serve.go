package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/printforge/slicerd/internal/config"
	"github.com/printforge/slicerd/internal/observability"
	"github.com/printforge/slicerd/internal/server"
	"github.com/printforge/slicerd/internal/server/handlers"
	"github.com/printforge/slicerd/pkg/catalog"
	"github.com/printforge/slicerd/pkg/profile"
	"github.com/printforge/slicerd/pkg/slicer"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the slicer HTTP service",
	Long: `Run the HTTP service: build the bundled-profile catalog, open the
profile store, and serve the profile and slicing API until interrupted.

Example:
  slicerd serve
  slicerd serve --config /etc/slicerd/slicerd.yaml
  SLICERD_SERVER_PORT=8080 slicerd serve`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	cfg, err := config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if err := observability.Init(cfg.Logging.Level); err != nil {
		return err
	}
	logger := observability.Logger

	store := profile.NewStore(cfg.Paths.ProfilesDir)
	if err := store.EnsureLayout(); err != nil {
		return fmt.Errorf("prepare profile store: %w", err)
	}
	if err := os.MkdirAll(cfg.Paths.WorkDir, 0755); err != nil {
		return fmt.Errorf("prepare work dir: %w", err)
	}

	system, err := catalog.Build(catalog.Config{
		BundledDir: cfg.Paths.BundledDir,
		Logger:     logger.With(zap.String("component", "catalog")),
	})
	if err != nil {
		return fmt.Errorf("build system profile catalog: %w", err)
	}

	orchestrator, err := slicer.New(slicer.Config{
		EngineBin: cfg.Engine.Bin,
		WorkDir:   cfg.Paths.WorkDir,
		Store:     store,
		Timeout:   cfg.Engine.SliceTimeout,
		Logger:    logger.With(zap.String("component", "slicer")),
	})
	if err != nil {
		return fmt.Errorf("init orchestrator: %w", err)
	}

	health := handlers.NewHealthManager(version)
	health.RegisterSoftChecker("engine", engineBinaryChecker{bin: cfg.Engine.Bin})
	health.RegisterChecker("profile_store", storeLayoutChecker{store: store})

	srv := server.New(cfg.Server.Host, cfg.Server.Port, server.Deps{
		Profiles:        handlers.NewProfiles(store, system, logger.With(zap.String("component", "profiles"))),
		Slice:           handlers.NewSlice(orchestrator, logger.With(zap.String("component", "slice"))),
		Health:          health,
		UploadLimiter:   rate.NewLimiter(rate.Limit(cfg.Limits.UploadRPS), cfg.Limits.UploadBurst),
		MaxUploadBytes:  cfg.Limits.MaxUploadBytes,
		Logger:          logger.With(zap.String("component", "http")),
		ReadTimeout:     cfg.Server.ReadTimeout,
		WriteTimeout:    cfg.Server.WriteTimeout,
		IdleTimeout:     cfg.Server.IdleTimeout,
		ShutdownTimeout: cfg.Server.ShutdownTimeout,
	})

	return srv.Start(ctx)
}
