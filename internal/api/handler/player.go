package handler

import (
	"net/http"

	"github.com/mcoot/wyrgame/internal/api/middleware"
	"github.com/mcoot/wyrgame/internal/api/request"
	"github.com/mcoot/wyrgame/internal/api/response"
	"github.com/mcoot/wyrgame/internal/model"
	"github.com/mcoot/wyrgame/internal/services/auth"
)

// IdentityInvalidator drops cached public identities after a profile change
type IdentityInvalidator interface {
	ForgetPlayer(id model.PlayerID)
}

// PlayerHandler handles player-related endpoints
type PlayerHandler struct {
	authService *auth.Service
	identities  IdentityInvalidator
}

// NewPlayerHandler creates a new player handler
func NewPlayerHandler(authService *auth.Service, identities IdentityInvalidator) *PlayerHandler {
	return &PlayerHandler{
		authService: authService,
		identities:  identities,
	}
}

// Register handles POST /api/v1/players/register
func (h *PlayerHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req request.RegisterRequest
	if err := request.Decode(r, &req); err != nil {
		WriteError(w, NewInvalidRequestError(err.Error()))
		return
	}

	session, err := h.authService.RegisterPlayer(r.Context(), req.Username, req.Password, req.DisplayName)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusCreated, response.AuthResponseFromSession(session))
}

// Login handles POST /api/v1/players/login
func (h *PlayerHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req request.LoginRequest
	if err := request.Decode(r, &req); err != nil {
		WriteError(w, NewInvalidRequestError(err.Error()))
		return
	}

	session, err := h.authService.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.AuthResponseFromSession(session))
}

// GetMe handles GET /api/v1/players/me
func (h *PlayerHandler) GetMe(w http.ResponseWriter, r *http.Request) {
	session := middleware.MustGetSession(r.Context())
	response.JSON(w, http.StatusOK, response.PlayerFromModel(&session.Player))
}

// UpdateMe handles PATCH /api/v1/players/me
func (h *PlayerHandler) UpdateMe(w http.ResponseWriter, r *http.Request) {
	var req request.UpdateProfileRequest
	if err := request.Decode(r, &req); err != nil {
		WriteError(w, NewInvalidRequestError(err.Error()))
		return
	}

	player, err := h.authService.UpdateProfile(r.Context(), middleware.Token(r), req.DisplayName, req.AvatarURL)
	if err != nil {
		WriteError(w, err)
		return
	}
	h.identities.ForgetPlayer(player.ID)

	response.JSON(w, http.StatusOK, response.PlayerFromModel(player))
}
