// Package main provides the entry point for the sync daemon.
package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/yourusername/line-edge/internal/artifact"
	"github.com/yourusername/line-edge/internal/cache"
	"github.com/yourusername/line-edge/internal/config"
	"github.com/yourusername/line-edge/internal/database"
	"github.com/yourusername/line-edge/internal/datasource"
	"github.com/yourusername/line-edge/internal/engine"
	"github.com/yourusername/line-edge/internal/health"
	"github.com/yourusername/line-edge/internal/logger"
	"github.com/yourusername/line-edge/internal/metrics"
	"github.com/yourusername/line-edge/internal/models"
	"github.com/yourusername/line-edge/internal/repository"
	"github.com/yourusername/line-edge/internal/scheduler"
)

// Build information - set via ldflags
var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

var (
	configFile string
	appLog     *logrus.Logger
	cfg        *config.Config
	db         *database.DB
	repos      *repository.Repositories
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "./config/config.yaml", "Path to configuration file")
}

var rootCmd = &cobra.Command{
	Use:   "syncd",
	Short: "Run the rating and prediction sync daemon",
	Long:  `Runs recurring sync passes for every enabled sport on its cron schedule, serving health and metrics endpoints between passes.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := loadConfig(); err != nil {
			return fmt.Errorf("failed to load configuration: %w", err)
		}
		if err := setupDependencies(cmd.Context()); err != nil {
			return fmt.Errorf("failed to setup dependencies: %w", err)
		}
		return nil
	},
	Run: func(cmd *cobra.Command, args []string) {
		runDaemon(cmd.Context())
	},
}

func main() {
	// Load .env if present
	_ = godotenv.Load(".env")

	if err := rootCmd.Execute(); err != nil {
		log.Fatalf("Error: %v", err)
	}
}

func loadConfig() error {
	loaded, err := config.LoadWithDefaults(configFile)
	if err != nil {
		return err
	}

	if loaded.Secrets.Enabled {
		if err := config.LoadSecretsFromAWS(loaded, loaded.Secrets.Region, loaded.Secrets.SecretName); err != nil {
			return fmt.Errorf("failed to load secrets: %w", err)
		}
	}

	if err := config.Validate(loaded); err != nil {
		return err
	}

	cfg = loaded
	return nil
}

func setupDependencies(ctx context.Context) error {
	appLog = logger.NewForEnvironment(cfg.App.Environment, cfg.App.LogLevel)

	var err error
	db, err = database.Initialize(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	repos, err = repository.NewRepositories(db)
	if err != nil {
		return fmt.Errorf("failed to initialize repositories: %w", err)
	}

	return nil
}

func runDaemon(baseCtx context.Context) {
	ctx, cancel := context.WithCancel(baseCtx)
	defer cancel()
	defer db.Close()

	appLog.WithFields(logrus.Fields{
		"version":     Version,
		"environment": cfg.App.Environment,
		"log_level":   cfg.App.LogLevel,
	}).Info("Line Edge sync daemon starting")

	providerLog := log.New(os.Stdout, "datasource: ", log.LstdFlags)
	providers := datasource.NewFactory(cfg, providerLog).NewProviders()
	defer func() {
		if err := providers.Close(); err != nil {
			appLog.WithError(err).Error("Failed to close provider clients")
		}
	}()

	cacheMgr := cache.NewManagerWithCleanup(cfg.Cache.SignalTTL(), cfg.Cache.CleanupInterval(), repos.Signal)
	publisher := artifact.NewFilePublisher(cfg.Artifact)

	orchestrator := engine.NewOrchestrator(cfg, repos, engine.Sources{
		Schedule: providers.Schedule,
		Odds:     providers.Odds,
		Weather:  providers.Weather,
		Injuries: providers.Injuries,
	}, cacheMgr, publisher, appLog)

	sched := scheduler.NewScheduler(orchestrator, appLog)
	scheduled := 0
	for _, key := range cfg.EnabledSports() {
		spec := cfg.Sports[key].Schedule
		if spec == "" {
			appLog.WithField("sport", key).Warn("Sport has no sync schedule, skipping")
			continue
		}
		if err := sched.ScheduleSport(models.Sport(key), spec); err != nil {
			appLog.WithError(err).WithField("sport", key).Fatal("Failed to schedule sport")
		}
		scheduled++
	}
	if scheduled == 0 {
		appLog.Fatal("No sports scheduled; enable at least one sport with a sync schedule")
	}

	var metricsServer *http.Server
	if cfg.Metrics.Enabled {
		mux := http.NewServeMux()
		mux.Handle(cfg.Metrics.Path, metrics.Handler())
		metricsServer = &http.Server{
			Addr:    fmt.Sprintf(":%d", cfg.Metrics.Port),
			Handler: mux,
		}
		go func() {
			appLog.WithFields(logrus.Fields{
				"port": cfg.Metrics.Port,
				"path": cfg.Metrics.Path,
			}).Info("Metrics server starting")
			if err := metricsServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				appLog.WithError(err).Error("Metrics server error")
			}
		}()
	}

	healthServer := health.NewServer(health.Config{
		ServiceName: cfg.App.Name,
		Version:     Version,
		Port:        cfg.Metrics.HealthPort,
		Logger:      appLog,
		DB:          db,
	})
	if err := healthServer.Start(ctx); err != nil {
		appLog.WithError(err).Fatal("Failed to start health server")
	}

	if err := sched.Start(); err != nil {
		appLog.WithError(err).Fatal("Failed to start scheduler")
	}
	healthServer.SetReady(true)

	appLog.WithFields(logrus.Fields{
		"sports":   sched.Sports(),
		"next_run": sched.NextRun().Format(time.RFC3339),
	}).Info("Sync daemon running")

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	sig := <-sigChan
	appLog.WithField("signal", sig).Info("Shutdown signal received")

	healthServer.SetReady(false)

	if err := sched.Stop(); err != nil {
		appLog.WithError(err).Error("Error during scheduler shutdown")
	}

	if metricsServer != nil {
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := metricsServer.Shutdown(shutdownCtx); err != nil {
			appLog.WithError(err).Error("Error during metrics server shutdown")
		}
		shutdownCancel()
	}

	if err := healthServer.Shutdown(); err != nil {
		appLog.WithError(err).Error("Error during health server shutdown")
	}

	cancel()

	appLog.Info("Sync daemon shut down successfully")
}
