package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/mcoot/wyrgame/internal/api/response"
	"github.com/mcoot/wyrgame/internal/model"
	"github.com/mcoot/wyrgame/internal/services/leaderboard"
	"github.com/mcoot/wyrgame/internal/services/level"
)

// LeaderboardHandler serves the public leaderboards and level table
type LeaderboardHandler struct {
	aggregator *leaderboard.Aggregator
	levels     *level.Table
	location   *time.Location
}

// NewLeaderboardHandler creates a new leaderboard handler. Date-only as_of
// values are interpreted in loc.
func NewLeaderboardHandler(aggregator *leaderboard.Aggregator, levels *level.Table, loc *time.Location) *LeaderboardHandler {
	if loc == nil {
		loc = time.Local
	}
	return &LeaderboardHandler{
		aggregator: aggregator,
		levels:     levels,
		location:   loc,
	}
}

// Get handles GET /api/v1/leaderboard?period=weekly&limit=10&as_of=2024-01-04
func (h *LeaderboardHandler) Get(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	period := model.PeriodWeekly
	if raw := q.Get("period"); raw != "" {
		p, err := model.ParsePeriod(raw)
		if err != nil {
			WriteError(w, err)
			return
		}
		period = p
	}

	limit := 0
	if raw := q.Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			WriteError(w, NewInvalidRequestError("limit must be a non-negative integer"))
			return
		}
		limit = n
	}

	asOf, err := h.parseAsOf(q.Get("as_of"))
	if err != nil {
		WriteError(w, err)
		return
	}

	lb, err := h.aggregator.GetLeaderboard(r.Context(), period, asOf, limit)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.LeaderboardFromResult(lb))
}

// Levels handles GET /api/v1/levels
func (h *LeaderboardHandler) Levels(w http.ResponseWriter, r *http.Request) {
	response.JSON(w, http.StatusOK, response.Levels{Levels: h.levels.Levels()})
}

// parseAsOf accepts an RFC 3339 timestamp or a bare date; empty means now
func (h *LeaderboardHandler) parseAsOf(raw string) (time.Time, error) {
	if raw == "" {
		return time.Time{}, nil
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t.In(h.location), nil
	}
	d, err := model.ParseDate(raw)
	if err != nil {
		return time.Time{}, err
	}
	return d.Start(h.location)
}
