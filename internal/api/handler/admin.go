package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/mcoot/wyrgame/internal/api/middleware"
	"github.com/mcoot/wyrgame/internal/api/request"
	"github.com/mcoot/wyrgame/internal/api/response"
	"github.com/mcoot/wyrgame/internal/dependencies/idgen"
	"github.com/mcoot/wyrgame/internal/model"
	"github.com/mcoot/wyrgame/internal/services/experience"
	"github.com/mcoot/wyrgame/internal/services/streak"
	"github.com/mcoot/wyrgame/internal/storage"
)

// AdminStore is the slice of storage the admin endpoints touch directly
type AdminStore interface {
	GetPlayer(ctx context.Context, id model.PlayerID) (*model.Player, error)
	storage.SeasonStore
}

// AdminHandler handles administrator-only endpoints
type AdminHandler struct {
	store      AdminStore
	experience *experience.Service
	ledger     *streak.Ledger
	ids        idgen.Generator
	logger     *slog.Logger
}

// NewAdminHandler creates a new admin handler
func NewAdminHandler(
	store AdminStore,
	experience *experience.Service,
	ledger *streak.Ledger,
	ids idgen.Generator,
	logger *slog.Logger,
) *AdminHandler {
	return &AdminHandler{
		store:      store,
		experience: experience,
		ledger:     ledger,
		ids:        ids,
		logger:     logger,
	}
}

// GrantXP handles POST /api/v1/admin/players/{player_id}/xp
func (h *AdminHandler) GrantXP(w http.ResponseWriter, r *http.Request) {
	playerID := model.PlayerID(mux.Vars(r)["player_id"])

	var req request.GrantXPRequest
	if err := request.Decode(r, &req); err != nil {
		WriteError(w, NewInvalidRequestError(err.Error()))
		return
	}

	if _, err := h.store.GetPlayer(r.Context(), playerID); err != nil {
		WriteError(w, err)
		return
	}

	reason := req.Reason
	if reason == "" {
		reason = experience.ReasonAdmin
	}

	award, err := h.experience.Award(r.Context(), playerID, req.Amount, reason)
	if err != nil {
		WriteError(w, err)
		return
	}

	h.logger.Info("xp granted",
		"admin_id", middleware.GetPlayer(r.Context()).ID,
		"player_id", playerID,
		"amount", req.Amount,
	)
	response.JSON(w, http.StatusOK, award)
}

// RebuildStreak handles POST /api/v1/admin/players/{player_id}/streak/rebuild
func (h *AdminHandler) RebuildStreak(w http.ResponseWriter, r *http.Request) {
	playerID := model.PlayerID(mux.Vars(r)["player_id"])

	if _, err := h.store.GetPlayer(r.Context(), playerID); err != nil {
		WriteError(w, err)
		return
	}

	summary, err := h.ledger.Rebuild(r.Context(), playerID)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, summary)
}

// CreateSeason handles POST /api/v1/admin/seasons
func (h *AdminHandler) CreateSeason(w http.ResponseWriter, r *http.Request) {
	var req request.CreateSeasonRequest
	if err := request.Decode(r, &req); err != nil {
		WriteError(w, NewInvalidRequestError(err.Error()))
		return
	}
	if !req.EndsAt.After(req.StartsAt) {
		WriteError(w, model.ErrInvalidSeason)
		return
	}

	season := &model.Season{
		ID:       h.ids.NewID("season_"),
		Name:     req.Name,
		StartsAt: req.StartsAt,
		EndsAt:   req.EndsAt,
	}
	if err := h.store.SaveSeason(r.Context(), season); err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusCreated, season)
}

// ListSeasons handles GET /api/v1/admin/seasons
func (h *AdminHandler) ListSeasons(w http.ResponseWriter, r *http.Request) {
	seasons, err := h.store.ListSeasons(r.Context())
	if err != nil {
		WriteError(w, err)
		return
	}
	if seasons == nil {
		seasons = []*model.Season{}
	}

	response.JSON(w, http.StatusOK, response.Seasons{Seasons: seasons})
}
