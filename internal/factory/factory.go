package factory

import (
	"errors"
	"io"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/mcoot/wyrgame/internal/dependencies/clock"
	"github.com/mcoot/wyrgame/internal/dependencies/idgen"
	"github.com/mcoot/wyrgame/internal/observability"
	"github.com/mcoot/wyrgame/internal/services/auth"
	"github.com/mcoot/wyrgame/internal/services/energy"
	"github.com/mcoot/wyrgame/internal/services/experience"
	"github.com/mcoot/wyrgame/internal/services/leaderboard"
	"github.com/mcoot/wyrgame/internal/services/level"
	"github.com/mcoot/wyrgame/internal/services/progression"
	"github.com/mcoot/wyrgame/internal/services/scoring"
	"github.com/mcoot/wyrgame/internal/services/streak"
	"github.com/mcoot/wyrgame/internal/storage"
	"github.com/mcoot/wyrgame/internal/storage/memory"
	pgstorage "github.com/mcoot/wyrgame/internal/storage/postgres"
	redisstorage "github.com/mcoot/wyrgame/internal/storage/redis"
)

// Storage type constants
const (
	StorageTypeMemory   = "memory"
	StorageTypeRedis    = "redis"
	StorageTypePostgres = "postgres"
)

// App contains all wired application components
type App struct {
	// Storage
	Storage storage.Storage

	// External dependencies
	Clock    clock.Clock
	IDs      idgen.Generator
	Location *time.Location // calendar days are counted in this zone

	// Observability
	Metrics  *observability.Metrics
	Gatherer prometheus.Gatherer

	// Services
	LevelTable        *level.Table
	ExperienceService *experience.Service
	StreakLedger      *streak.Ledger
	Leaderboard       *leaderboard.Aggregator
	ScoringService    *scoring.Service
	Bootstrapper      *progression.Bootstrapper
	AuthService       *auth.Service

	closer io.Closer
}

// Close releases the storage connection, if any
func (a *App) Close() error {
	if a.closer == nil {
		return nil
	}
	return a.closer.Close()
}

// Config holds configuration for the application factory
type Config struct {
	// AuthConfig holds configuration for the auth service (optional)
	// If zero value, defaults to auth.DefaultConfig()
	AuthConfig auth.Config
	// Logger is the application logger (optional)
	// If nil, a no-op logger is used
	Logger *slog.Logger
	// StorageType selects the storage backend ("memory", "redis" or "postgres")
	// If empty, defaults to "memory"
	StorageType string
	// RedisConfig holds Redis connection settings (required if StorageType is "redis")
	RedisConfig *redisstorage.Config
	// PostgresConfig holds Postgres connection settings (required if StorageType is "postgres")
	PostgresConfig *pgstorage.Config
	// Location decides calendar-day boundaries (optional, defaults to time.Local)
	Location *time.Location

	// Engine tuning; zero values fall back to each package's defaults
	EnergyPolicy      energy.Policy
	Rules             progression.Rules
	StreakConfig      *streak.Config
	LeaderboardConfig leaderboard.Config
	LevelTable        *level.Table
}

// New creates a new application with all dependencies wired
func New(cfg Config) (*App, error) {
	// Use no-op logger if not provided
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}

	// Create storage based on type
	var store storage.Storage
	var closer io.Closer
	storageType := cfg.StorageType
	if storageType == "" {
		storageType = StorageTypeMemory
	}

	switch storageType {
	case StorageTypeMemory:
		store = memory.New()
	case StorageTypeRedis:
		if cfg.RedisConfig == nil {
			return nil, errors.New("RedisConfig required when StorageType is redis")
		}
		redisStore, err := redisstorage.New(*cfg.RedisConfig)
		if err != nil {
			return nil, err
		}
		store, closer = redisStore, redisStore
	case StorageTypePostgres:
		if cfg.PostgresConfig == nil {
			return nil, errors.New("PostgresConfig required when StorageType is postgres")
		}
		pgStore, err := pgstorage.New(*cfg.PostgresConfig)
		if err != nil {
			return nil, err
		}
		store, closer = pgStore, pgStore
	default:
		return nil, errors.New("invalid StorageType: must be 'memory', 'redis' or 'postgres'")
	}

	// Create external dependencies
	clk := clock.NewInLocation(cfg.Location)
	ids := idgen.New()

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	app := newWithDependencies(store, clk, ids, registry, cfg, logger)
	app.Gatherer = registry
	app.Location = clk.Location()
	app.closer = closer
	return app, nil
}

// newWithDependencies creates an App with the given dependencies (useful for testing)
func newWithDependencies(
	store storage.Storage,
	clk clock.Clock,
	ids idgen.Generator,
	reg prometheus.Registerer,
	cfg Config,
	logger *slog.Logger,
) *App {
	metrics := observability.New(reg)

	// Use defaults where configuration was not provided
	authCfg := cfg.AuthConfig
	if authCfg.SessionDuration == 0 {
		authCfg.SessionDuration = auth.DefaultConfig().SessionDuration
	}
	policy := cfg.EnergyPolicy.Normalized()
	rules := cfg.Rules
	if rules == (progression.Rules{}) {
		rules = progression.DefaultRules()
	}
	streakCfg := streak.DefaultConfig()
	if cfg.StreakConfig != nil {
		streakCfg = *cfg.StreakConfig
	}
	table := cfg.LevelTable
	if table == nil {
		table = level.DefaultTable()
	}

	// Create services
	experienceService := experience.New(store, clk, logger, metrics, table, policy.Max)
	streakLedger := streak.New(store, experienceService, clk, logger, metrics, streakCfg)
	scoringService := scoring.New(store, clk, logger, metrics)
	aggregator := leaderboard.New(store, clk, logger, metrics, cfg.LeaderboardConfig)
	bootstrapper := progression.NewBootstrapper(store, experienceService, streakLedger, scoringService, clk, logger, metrics, policy, rules)
	authService := auth.New(store, clk, ids, bootstrapper, logger, authCfg)

	return &App{
		Storage:           store,
		Clock:             clk,
		IDs:               ids,
		Metrics:           metrics,
		LevelTable:        table,
		ExperienceService: experienceService,
		StreakLedger:      streakLedger,
		Leaderboard:       aggregator,
		ScoringService:    scoringService,
		Bootstrapper:      bootstrapper,
		AuthService:       authService,
	}
}
