package handler

import (
	"log/slog"
	"net/http"

	"github.com/mcoot/wyrgame/internal/api/middleware"
	"github.com/mcoot/wyrgame/internal/api/request"
	"github.com/mcoot/wyrgame/internal/api/response"
	"github.com/mcoot/wyrgame/internal/services/streak"
)

// ProgressionHandler serves the authenticated player's own progression
type ProgressionHandler struct {
	ledger *streak.Ledger
	logger *slog.Logger
}

// NewProgressionHandler creates a new progression handler
func NewProgressionHandler(ledger *streak.Ledger, logger *slog.Logger) *ProgressionHandler {
	return &ProgressionHandler{
		ledger: ledger,
		logger: logger,
	}
}

// Get handles GET /api/v1/me/progression
func (h *ProgressionHandler) Get(w http.ResponseWriter, r *http.Request) {
	session := middleware.MustGetSession(r.Context())

	snap, err := session.Progression.Snapshot(r.Context())
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, snap)
}

// GetStreak handles GET /api/v1/me/streak
func (h *ProgressionHandler) GetStreak(w http.ResponseWriter, r *http.Request) {
	session := middleware.MustGetSession(r.Context())

	status, err := h.ledger.Status(r.Context(), session.PlayerID)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, status)
}

// SpendEnergy handles POST /api/v1/me/energy/spend
func (h *ProgressionHandler) SpendEnergy(w http.ResponseWriter, r *http.Request) {
	var req request.SpendEnergyRequest
	if err := request.Decode(r, &req); err != nil {
		WriteError(w, NewInvalidRequestError(err.Error()))
		return
	}

	session := middleware.MustGetSession(r.Context())
	tracker := session.Progression.Energy()

	// A failed write is already logged; the in-memory value stays authoritative
	// for the rest of the session.
	if _, err := tracker.Spend(r.Context(), req.Amount); err != nil {
		h.logger.Warn("energy spend not persisted", "player_id", session.PlayerID, "error", err)
	}

	response.JSON(w, http.StatusOK, response.EnergyFromState(tracker.State()))
}

// RefillEnergy handles POST /api/v1/me/energy/refill
func (h *ProgressionHandler) RefillEnergy(w http.ResponseWriter, r *http.Request) {
	session := middleware.MustGetSession(r.Context())
	tracker := session.Progression.Energy()

	if _, err := tracker.Refill(r.Context()); err != nil {
		h.logger.Warn("energy refill not persisted", "player_id", session.PlayerID, "error", err)
	}

	response.JSON(w, http.StatusOK, response.EnergyFromState(tracker.State()))
}

// Play handles POST /api/v1/me/plays
func (h *ProgressionHandler) Play(w http.ResponseWriter, r *http.Request) {
	session := middleware.MustGetSession(r.Context())

	result, err := session.Progression.Play(r.Context())
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusCreated, result)
}
