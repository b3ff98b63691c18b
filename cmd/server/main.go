package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/mcoot/wyrgame/internal/api"
	"github.com/mcoot/wyrgame/internal/config"
	"github.com/mcoot/wyrgame/internal/factory"
	"github.com/mcoot/wyrgame/internal/services/auth"
	"github.com/mcoot/wyrgame/internal/services/energy"
	"github.com/mcoot/wyrgame/internal/services/leaderboard"
	"github.com/mcoot/wyrgame/internal/services/progression"
	pgstorage "github.com/mcoot/wyrgame/internal/storage/postgres"
	redisstorage "github.com/mcoot/wyrgame/internal/storage/redis"
)

// sessionSweepInterval is how often expired auth sessions are dropped
const sessionSweepInterval = 10 * time.Minute

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Set up logging with JSON output
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.LogLevel,
	}))
	slog.SetDefault(logger)

	factoryCfg, err := factoryConfig(cfg, logger)
	if err != nil {
		logger.Error("invalid configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Create application factory
	app, err := factory.New(factoryCfg)
	if err != nil {
		logger.Error("failed to create application", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer func() {
		if err := app.Close(); err != nil {
			logger.Warn("failed to close storage", slog.String("error", err.Error()))
		}
	}()

	router := api.NewRouter(api.RouterConfig{
		Logger:            logger,
		Metrics:           app.Metrics,
		Gatherer:          app.Gatherer,
		Location:          app.Location,
		Store:             app.Storage,
		IDs:               app.IDs,
		AuthService:       app.AuthService,
		ExperienceService: app.ExperienceService,
		StreakLedger:      app.StreakLedger,
		Leaderboard:       app.Leaderboard,
		LevelTable:        app.LevelTable,
	})

	serverConfig := api.DefaultServerConfig()
	if serverConfig.Port, err = strconv.Atoi(cfg.Port); err != nil {
		logger.Error("invalid PORT", slog.String("port", cfg.Port))
		os.Exit(1)
	}
	server := api.NewServer(router, serverConfig, logger)

	// Handle graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go sweepSessions(ctx, app.AuthService)

	if err := server.Run(ctx); err != nil {
		logger.Error("server error", slog.String("error", err.Error()))
		os.Exit(1)
	}

	logger.Info("server stopped")
}

// factoryConfig maps environment settings onto the application factory
func factoryConfig(cfg *config.Config, logger *slog.Logger) (factory.Config, error) {
	fc := factory.Config{
		Logger:      logger,
		StorageType: cfg.StorageType,
		Location:    cfg.Location,
		AuthConfig: auth.Config{
			SessionDuration: cfg.SessionDuration,
			AdminUsernames:  cfg.AdminUsernames,
		},
		EnergyPolicy: energy.Policy{
			Max:           cfg.EnergyMax,
			RegenInterval: cfg.EnergyRegenInterval,
			RegenPerTick:  cfg.EnergyRegenPerTick,
		},
		Rules: progression.Rules{
			PlayCost:   cfg.PlayEnergyCost,
			VoteXP:     cfg.VoteXP,
			VotePoints: cfg.VotePoints,
		},
		LeaderboardConfig: leaderboard.Config{
			CacheTTL: cfg.LeaderboardCacheTTL,
		},
	}

	switch cfg.StorageType {
	case factory.StorageTypeRedis:
		if cfg.RedisURL == "" {
			return fc, errRequired("REDIS_URL", cfg.StorageType)
		}
		redisCfg := redisstorage.DefaultConfig()
		redisCfg.URL = cfg.RedisURL
		fc.RedisConfig = &redisCfg
	case factory.StorageTypePostgres:
		if cfg.DatabaseURL == "" {
			return fc, errRequired("DATABASE_URL", cfg.StorageType)
		}
		pgCfg := pgstorage.DefaultConfig()
		pgCfg.DSN = cfg.DatabaseURL
		fc.PostgresConfig = &pgCfg
	}

	return fc, nil
}

func errRequired(key, storageType string) error {
	return fmt.Errorf("%s required when STORAGE_TYPE=%s", key, storageType)
}

func sweepSessions(ctx context.Context, authService *auth.Service) {
	ticker := time.NewTicker(sessionSweepInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			authService.CleanExpiredSessions()
		}
	}
}
