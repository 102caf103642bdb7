// Package main provides the entry point for the one-shot sync CLI.
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/yourusername/line-edge/internal/artifact"
	"github.com/yourusername/line-edge/internal/cache"
	"github.com/yourusername/line-edge/internal/config"
	"github.com/yourusername/line-edge/internal/database"
	"github.com/yourusername/line-edge/internal/datasource"
	"github.com/yourusername/line-edge/internal/engine"
	"github.com/yourusername/line-edge/internal/logger"
	"github.com/yourusername/line-edge/internal/models"
	"github.com/yourusername/line-edge/internal/repository"
)

func main() {
	// Load .env if present
	_ = godotenv.Load(".env")

	var (
		configPath     = flag.String("config", "config/config.yaml", "Path to config file")
		sportFlag      = flag.String("sport", "", "Sport to sync (nfl, nba, nhl, cbb); empty syncs every enabled sport")
		forceReset     = flag.Bool("force-reset", false, "Discard sync progress and replay the season from scratch")
		season         = flag.Int("season", 0, "Season override (0 derives the season from the current date)")
		refreshSignals = flag.Bool("refresh-signals", false, "Refetch weather and injury signals even when cached")
		backfillDays   = flag.Int("backfill-days", 0, "Schedule backfill window override in days")
	)
	flag.Parse()

	ctx := context.Background()

	cfg := loadConfigWithSecrets(*configPath)
	appLog := logger.NewLogger(cfg.App.LogLevel)

	db, err := database.Initialize(ctx, cfg)
	if err != nil {
		appLog.WithError(err).Fatal("Failed to connect to database")
	}

	orchestrator, closeProviders := buildOrchestrator(cfg, db, appLog)

	failed := false
	for _, sport := range resolveSports(cfg, *sportFlag, appLog) {
		opts := engine.RunOptions{
			Sport:              sport,
			ForceReset:         *forceReset,
			SeasonOverride:     *season,
			ForceSignalRefresh: *refreshSignals,
			BackfillDays:       *backfillDays,
		}

		appLog.WithFields(logrus.Fields{
			"sport":       sport,
			"force_reset": opts.ForceReset,
		}).Info("Starting sync pass")

		summary, err := orchestrator.Run(ctx, opts)
		if err != nil {
			appLog.WithError(err).WithField("sport", sport).Error("Sync pass failed")
			failed = true
			continue
		}
		logSummary(appLog, summary)
	}

	closeProviders()
	db.Close()
	if failed {
		os.Exit(1)
	}
}

func loadConfigWithSecrets(path string) *config.Config {
	cfg, err := config.Load(path)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	if cfg.Secrets.Enabled {
		if err := config.LoadSecretsFromAWS(cfg, cfg.Secrets.Region, cfg.Secrets.SecretName); err != nil {
			log.Fatalf("Failed to load secrets: %v", err)
		}
	}

	if err := config.Validate(cfg); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	return cfg
}

func buildOrchestrator(cfg *config.Config, db *database.DB, appLog *logrus.Logger) (*engine.Orchestrator, func()) {
	repos, err := repository.NewRepositories(db)
	if err != nil {
		appLog.WithError(err).Fatal("Failed to initialize repositories")
	}

	providerLog := log.New(os.Stdout, "datasource: ", log.LstdFlags)
	providers := datasource.NewFactory(cfg, providerLog).NewProviders()

	cacheMgr := cache.NewManagerWithCleanup(cfg.Cache.SignalTTL(), cfg.Cache.CleanupInterval(), repos.Signal)

	orchestrator := engine.NewOrchestrator(cfg, repos, engine.Sources{
		Schedule: providers.Schedule,
		Odds:     providers.Odds,
		Weather:  providers.Weather,
		Injuries: providers.Injuries,
	}, cacheMgr, artifact.NewFilePublisher(cfg.Artifact), appLog)

	return orchestrator, func() {
		if err := providers.Close(); err != nil {
			appLog.WithError(err).Warn("Failed to close provider clients")
		}
	}
}

func resolveSports(cfg *config.Config, flagValue string, appLog *logrus.Logger) []models.Sport {
	if flagValue != "" {
		key := strings.ToLower(strings.TrimSpace(flagValue))
		if _, ok := cfg.Sport(key); !ok {
			appLog.WithField("sport", key).Fatal("Unknown sport")
		}
		return []models.Sport{models.Sport(key)}
	}

	keys := cfg.EnabledSports()
	if len(keys) == 0 {
		appLog.Fatal("No sports enabled in configuration")
	}

	sports := make([]models.Sport, 0, len(keys))
	for _, key := range keys {
		sports = append(sports, models.Sport(key))
	}
	return sports
}

func logSummary(appLog *logrus.Logger, summary *engine.RunSummary) {
	entry := appLog.WithFields(logrus.Fields{
		"sport":           summary.Sport,
		"season":          summary.Season,
		"week":            summary.Week,
		"run_id":          summary.RunID,
		"games_ingested":  summary.GamesIngested,
		"games_processed": summary.GamesProcessed,
		"games_skipped":   summary.GamesSkipped,
		"predictions":     summary.Predictions,
		"lines_locked":    summary.LinesLocked,
		"odds_coverage":   summary.OddsCoverage,
		"duration":        summary.Duration.String(),
	})

	if summary.CoverageWarning {
		entry.Warn("Sync pass completed with thin odds coverage")
		return
	}
	entry.Info("Sync pass completed")
}
