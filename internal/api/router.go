package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/mcoot/wyrgame/internal/api/handler"
	"github.com/mcoot/wyrgame/internal/api/middleware"
	"github.com/mcoot/wyrgame/internal/dependencies/idgen"
	basemw "github.com/mcoot/wyrgame/internal/middleware"
	"github.com/mcoot/wyrgame/internal/observability"
	"github.com/mcoot/wyrgame/internal/services/auth"
	"github.com/mcoot/wyrgame/internal/services/experience"
	"github.com/mcoot/wyrgame/internal/services/leaderboard"
	"github.com/mcoot/wyrgame/internal/services/level"
	"github.com/mcoot/wyrgame/internal/services/streak"
)

// RouterConfig holds configuration for the API router
type RouterConfig struct {
	Logger   *slog.Logger
	Metrics  *observability.Metrics
	Gatherer prometheus.Gatherer // nil disables /metrics
	Location *time.Location

	Store             handler.AdminStore
	IDs               idgen.Generator
	AuthService       *auth.Service
	ExperienceService *experience.Service
	StreakLedger      *streak.Ledger
	Leaderboard       *leaderboard.Aggregator
	LevelTable        *level.Table
}

// NewRouter creates a new API router with all routes configured
func NewRouter(cfg RouterConfig) http.Handler {
	r := mux.NewRouter()

	// Create handlers
	playerHandler := handler.NewPlayerHandler(cfg.AuthService, cfg.Leaderboard)
	progressionHandler := handler.NewProgressionHandler(cfg.StreakLedger, cfg.Logger)
	leaderboardHandler := handler.NewLeaderboardHandler(cfg.Leaderboard, cfg.LevelTable, cfg.Location)
	adminHandler := handler.NewAdminHandler(cfg.Store, cfg.ExperienceService, cfg.StreakLedger, cfg.IDs, cfg.Logger)

	// Create middleware
	authMiddleware := middleware.Auth(cfg.AuthService)
	loggingMiddleware := basemw.Logging(cfg.Logger, cfg.Metrics)
	recoveryMiddleware := middleware.Recovery(cfg.Logger)

	// API subrouter with common middleware
	api := r.PathPrefix("/api/v1").Subrouter()
	api.Use(recoveryMiddleware)
	api.Use(loggingMiddleware)

	// Player routes (no auth required for registering/logging in)
	api.HandleFunc("/players/register", playerHandler.Register).Methods(http.MethodPost)
	api.HandleFunc("/players/login", playerHandler.Login).Methods(http.MethodPost)

	// Protected player routes
	playerProtected := api.PathPrefix("/players").Subrouter()
	playerProtected.Use(authMiddleware)
	playerProtected.HandleFunc("/me", playerHandler.GetMe).Methods(http.MethodGet)
	playerProtected.HandleFunc("/me", playerHandler.UpdateMe).Methods(http.MethodPatch)

	// The caller's own progression (all require auth)
	me := api.PathPrefix("/me").Subrouter()
	me.Use(authMiddleware)
	me.HandleFunc("/progression", progressionHandler.Get).Methods(http.MethodGet)
	me.HandleFunc("/streak", progressionHandler.GetStreak).Methods(http.MethodGet)
	me.HandleFunc("/energy/spend", progressionHandler.SpendEnergy).Methods(http.MethodPost)
	me.HandleFunc("/energy/refill", progressionHandler.RefillEnergy).Methods(http.MethodPost)
	me.HandleFunc("/plays", progressionHandler.Play).Methods(http.MethodPost)

	// Public boards
	api.HandleFunc("/leaderboard", leaderboardHandler.Get).Methods(http.MethodGet)
	api.HandleFunc("/levels", leaderboardHandler.Levels).Methods(http.MethodGet)

	// Admin routes
	admin := api.PathPrefix("/admin").Subrouter()
	admin.Use(authMiddleware)
	admin.Use(middleware.AdminOnly)
	admin.HandleFunc("/players/{player_id}/xp", adminHandler.GrantXP).Methods(http.MethodPost)
	admin.HandleFunc("/players/{player_id}/streak/rebuild", adminHandler.RebuildStreak).Methods(http.MethodPost)
	admin.HandleFunc("/seasons", adminHandler.CreateSeason).Methods(http.MethodPost)
	admin.HandleFunc("/seasons", adminHandler.ListSeasons).Methods(http.MethodGet)

	// Health check endpoint (no auth)
	api.HandleFunc("/health", healthHandler).Methods(http.MethodGet)

	if cfg.Gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(cfg.Gatherer, promhttp.HandlerOpts{})).Methods(http.MethodGet)
	}

	return r
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}
