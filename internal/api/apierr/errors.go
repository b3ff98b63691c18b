package apierr

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/mcoot/wyrgame/internal/model"
	"github.com/mcoot/wyrgame/internal/services/auth"
)

// APIError represents an API error response
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ErrorResponse wraps an APIError
type ErrorResponse struct {
	Error APIError `json:"error"`
}

// Common error codes
const (
	CodeInvalidRequest      = "INVALID_REQUEST"
	CodeInvalidAmount       = "INVALID_AMOUNT"
	CodeInvalidPeriod       = "INVALID_PERIOD"
	CodeInvalidDate         = "INVALID_DATE"
	CodeInvalidSeason       = "INVALID_SEASON"
	CodeUnauthorized        = "UNAUTHORIZED"
	CodeForbidden           = "FORBIDDEN"
	CodeInsufficientEnergy  = "INSUFFICIENT_ENERGY"
	CodePlayerNotFound      = "PLAYER_NOT_FOUND"
	CodeProgressionNotFound = "PROGRESSION_NOT_FOUND"
	CodeSeasonNotFound      = "SEASON_NOT_FOUND"
	CodeUsernameExists      = "USERNAME_EXISTS"
	CodeInvalidCredentials  = "INVALID_CREDENTIALS"
	CodeInternalError       = "INTERNAL_ERROR"
)

// httpError combines an HTTP status code with an APIError
type httpError struct {
	status   int
	apiError APIError
}

// Error implements error interface
func (e *httpError) Error() string {
	return e.apiError.Message
}

// WriteError writes an error response to the response writer
func WriteError(w http.ResponseWriter, err error) {
	he := toHTTPError(err)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(he.status)
	_ = json.NewEncoder(w).Encode(ErrorResponse{Error: he.apiError})
}

// Status returns the HTTP status an error maps to
func Status(err error) int {
	return toHTTPError(err).status
}

// toHTTPError converts an error to an httpError
func toHTTPError(err error) *httpError {
	var he *httpError
	if errors.As(err, &he) {
		return he
	}

	switch {
	// Map model errors
	case errors.Is(err, model.ErrPlayerNotFound):
		return &httpError{http.StatusNotFound, APIError{CodePlayerNotFound, "Player not found"}}
	case errors.Is(err, model.ErrProgressionNotFound):
		return &httpError{http.StatusNotFound, APIError{CodeProgressionNotFound, "Player has no progression yet"}}
	case errors.Is(err, model.ErrSeasonNotFound):
		return &httpError{http.StatusNotFound, APIError{CodeSeasonNotFound, "Season not found"}}
	case errors.Is(err, model.ErrInsufficientEnergy):
		return &httpError{http.StatusConflict, APIError{CodeInsufficientEnergy, "Not enough energy"}}
	case errors.Is(err, model.ErrInvalidAmount):
		return &httpError{http.StatusBadRequest, APIError{CodeInvalidAmount, "Amount must not be negative"}}
	case errors.Is(err, model.ErrInvalidPeriod):
		return &httpError{http.StatusBadRequest, APIError{CodeInvalidPeriod, "Period must be daily, weekly, season or all-time"}}
	case errors.Is(err, model.ErrInvalidDate):
		return &httpError{http.StatusBadRequest, APIError{CodeInvalidDate, "Date must be YYYY-MM-DD"}}
	case errors.Is(err, model.ErrInvalidSeason):
		return &httpError{http.StatusBadRequest, APIError{CodeInvalidSeason, "Season must end after it starts"}}

	// Map auth errors
	case errors.Is(err, auth.ErrInvalidCredentials):
		return &httpError{http.StatusUnauthorized, APIError{CodeInvalidCredentials, "Invalid username or password"}}
	case errors.Is(err, auth.ErrInvalidSession):
		return &httpError{http.StatusUnauthorized, APIError{CodeUnauthorized, "Invalid or expired session"}}
	case errors.Is(err, auth.ErrUsernameExists):
		return &httpError{http.StatusConflict, APIError{CodeUsernameExists, "Username already exists"}}

	default:
		return &httpError{http.StatusInternalServerError, APIError{CodeInternalError, "Internal server error"}}
	}
}

// NewInvalidRequestError creates an invalid request error
func NewInvalidRequestError(message string) error {
	return &httpError{http.StatusBadRequest, APIError{CodeInvalidRequest, message}}
}

// NewUnauthorizedError creates an unauthorized error
func NewUnauthorizedError() error {
	return &httpError{http.StatusUnauthorized, APIError{CodeUnauthorized, "Authentication required"}}
}

// NewForbiddenError creates a forbidden error
func NewForbiddenError() error {
	return &httpError{http.StatusForbidden, APIError{CodeForbidden, "Administrator access required"}}
}

// NewInternalError creates an internal server error
func NewInternalError() error {
	return &httpError{http.StatusInternalServerError, APIError{CodeInternalError, "Internal server error"}}
}
