package api_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcoot/wyrgame/internal/api"
	"github.com/mcoot/wyrgame/internal/api/apierr"
	"github.com/mcoot/wyrgame/internal/api/response"
	"github.com/mcoot/wyrgame/internal/factory"
	"github.com/mcoot/wyrgame/internal/model"
	"github.com/mcoot/wyrgame/internal/services/auth"
	"github.com/mcoot/wyrgame/internal/services/experience"
	"github.com/mcoot/wyrgame/internal/services/progression"
	"github.com/mcoot/wyrgame/internal/services/streak"
	"github.com/mcoot/wyrgame/internal/testutil"
)

// testServer creates a test server with all dependencies
type testServer struct {
	handler http.Handler
	app     *factory.TestApp
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	app := factory.NewTestAppWithConfig(factory.Config{
		AuthConfig: auth.Config{AdminUsernames: []string{"root"}},
	})

	router := api.NewRouter(api.RouterConfig{
		Logger:            testutil.NopLogger(),
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

	return &testServer{handler: router, app: app}
}

func (ts *testServer) request(method, path string, body any, token string) *httptest.ResponseRecorder {
	var reqBody *bytes.Buffer
	if body != nil {
		b, _ := json.Marshal(body)
		reqBody = bytes.NewBuffer(b)
	} else {
		reqBody = bytes.NewBuffer(nil)
	}

	req := httptest.NewRequest(method, path, reqBody)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rr := httptest.NewRecorder()
	ts.handler.ServeHTTP(rr, req)
	return rr
}

// register creates a player and returns the auth response
func (ts *testServer) register(t *testing.T, username string) response.AuthResponse {
	t.Helper()

	body := map[string]string{"username": username, "password": "secret123"}
	rr := ts.request(http.MethodPost, "/api/v1/players/register", body, "")
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())

	var resp response.AuthResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	return resp
}

func decode[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &v), rr.Body.String())
	return v
}

func errorCode(t *testing.T, rr *httptest.ResponseRecorder) string {
	t.Helper()
	return decode[apierr.ErrorResponse](t, rr).Error.Code
}

func TestHealthCheck(t *testing.T) {
	ts := newTestServer(t)

	rr := ts.request(http.MethodGet, "/api/v1/health", nil, "")
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "ok")
}

func TestRegisterAndLogin(t *testing.T) {
	ts := newTestServer(t)

	registerResp := ts.register(t, "alice")
	assert.Equal(t, "alice", registerResp.Player.Username)
	assert.Equal(t, "alice", registerResp.Player.DisplayName)
	assert.NotEmpty(t, registerResp.SessionToken)
	require.NotNil(t, registerResp.LoginReward)
	assert.Equal(t, 1, registerResp.LoginReward.StreakDay)
	assert.Equal(t, 10, registerResp.LoginReward.BonusXP)

	// A second login the same day pays nothing
	loginBody := map[string]string{"username": "alice", "password": "secret123"}
	rr := ts.request(http.MethodPost, "/api/v1/players/login", loginBody, "")
	require.Equal(t, http.StatusOK, rr.Code)

	loginResp := decode[response.AuthResponse](t, rr)
	assert.Equal(t, registerResp.Player.ID, loginResp.Player.ID)
	assert.Nil(t, loginResp.LoginReward)
}

func TestRegisterValidation(t *testing.T) {
	ts := newTestServer(t)

	tests := []struct {
		name string
		body map[string]string
	}{
		{"missing password", map[string]string{"username": "alice"}},
		{"short username", map[string]string{"username": "al", "password": "secret123"}},
		{"punctuation in username", map[string]string{"username": "al!ce", "password": "secret123"}},
		{"short password", map[string]string{"username": "alice", "password": "abc"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := ts.request(http.MethodPost, "/api/v1/players/register", tt.body, "")
			assert.Equal(t, http.StatusBadRequest, rr.Code)
			assert.Equal(t, apierr.CodeInvalidRequest, errorCode(t, rr))
		})
	}
}

func TestDuplicateUsername(t *testing.T) {
	ts := newTestServer(t)
	ts.register(t, "alice")

	body := map[string]string{"username": "alice", "password": "secret123"}
	rr := ts.request(http.MethodPost, "/api/v1/players/register", body, "")
	assert.Equal(t, http.StatusConflict, rr.Code)
	assert.Equal(t, apierr.CodeUsernameExists, errorCode(t, rr))
}

func TestLoginWithWrongPassword(t *testing.T) {
	ts := newTestServer(t)
	ts.register(t, "alice")

	body := map[string]string{"username": "alice", "password": "wrong-password"}
	rr := ts.request(http.MethodPost, "/api/v1/players/login", body, "")
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
	assert.Equal(t, apierr.CodeInvalidCredentials, errorCode(t, rr))
}

func TestUnauthorizedWithoutToken(t *testing.T) {
	ts := newTestServer(t)

	for _, path := range []string{"/api/v1/players/me", "/api/v1/me/progression", "/api/v1/admin/seasons"} {
		rr := ts.request(http.MethodGet, path, nil, "")
		assert.Equal(t, http.StatusUnauthorized, rr.Code, path)
	}

	rr := ts.request(http.MethodPost, "/api/v1/me/plays", nil, "not-a-token")
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestGetAndUpdateMe(t *testing.T) {
	ts := newTestServer(t)
	alice := ts.register(t, "alice")

	rr := ts.request(http.MethodGet, "/api/v1/players/me", nil, alice.SessionToken)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "alice", decode[response.Player](t, rr).Username)

	// Put alice on the board so her identity is cached
	rr = ts.request(http.MethodPost, "/api/v1/me/plays", nil, alice.SessionToken)
	require.Equal(t, http.StatusCreated, rr.Code)
	rr = ts.request(http.MethodGet, "/api/v1/leaderboard?period=daily", nil, "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Empty(t, decode[response.Leaderboard](t, rr).Podium[0].AvatarURL)

	update := map[string]string{"display_name": "Alice A.", "avatar_url": "https://example.com/alice.png"}
	rr = ts.request(http.MethodPatch, "/api/v1/players/me", update, alice.SessionToken)
	require.Equal(t, http.StatusOK, rr.Code)
	me := decode[response.Player](t, rr)
	assert.Equal(t, "Alice A.", me.DisplayName)
	assert.Equal(t, "https://example.com/alice.png", me.AvatarURL)

	// The leaderboard sees the new avatar without waiting for the cache
	rr = ts.request(http.MethodGet, "/api/v1/leaderboard?period=daily", nil, "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "https://example.com/alice.png", decode[response.Leaderboard](t, rr).Podium[0].AvatarURL)

	rr = ts.request(http.MethodPatch, "/api/v1/players/me", map[string]string{"avatar_url": "not a url"}, alice.SessionToken)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestProgressionSnapshot(t *testing.T) {
	ts := newTestServer(t)
	alice := ts.register(t, "alice")

	rr := ts.request(http.MethodGet, "/api/v1/me/progression", nil, alice.SessionToken)
	require.Equal(t, http.StatusOK, rr.Code)

	snap := decode[progression.Snapshot](t, rr)
	assert.Equal(t, 10, snap.XP)
	assert.Equal(t, 1, snap.Level.Current.Level)
	assert.Equal(t, 100, snap.Energy.Current)
	require.NotNil(t, snap.Streak)
	assert.Equal(t, 1, snap.Streak.CurrentStreak)
	assert.True(t, snap.Streak.LoggedInToday)

	rr = ts.request(http.MethodGet, "/api/v1/me/streak", nil, alice.SessionToken)
	require.Equal(t, http.StatusOK, rr.Code)
	status := decode[streak.Status](t, rr)
	assert.Equal(t, 1, status.BestStreak)
	assert.True(t, status.Alive)
}

func TestSpendAndRefillEnergy(t *testing.T) {
	ts := newTestServer(t)
	alice := ts.register(t, "alice")

	rr := ts.request(http.MethodPost, "/api/v1/me/energy/spend", map[string]int{"amount": 30}, alice.SessionToken)
	require.Equal(t, http.StatusOK, rr.Code)
	spent := decode[response.Energy](t, rr)
	assert.Equal(t, 70, spent.Current)
	assert.Equal(t, 100, spent.Max)
	assert.NotNil(t, spent.NextRegenAt)

	// Three whole ticks regenerate; reads never write
	ts.app.MockClock.Advance(9*time.Minute + 30*time.Second)
	rr = ts.request(http.MethodGet, "/api/v1/me/progression", nil, alice.SessionToken)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, 73, decode[progression.Snapshot](t, rr).Energy.Current)

	rr = ts.request(http.MethodPost, "/api/v1/me/energy/refill", nil, alice.SessionToken)
	require.Equal(t, http.StatusOK, rr.Code)
	refilled := decode[response.Energy](t, rr)
	assert.Equal(t, 100, refilled.Current)
	assert.Nil(t, refilled.NextRegenAt)

	rr = ts.request(http.MethodPost, "/api/v1/me/energy/spend", map[string]int{"amount": -5}, alice.SessionToken)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestPlayUntilOutOfEnergy(t *testing.T) {
	ts := newTestServer(t)
	alice := ts.register(t, "alice")

	rr := ts.request(http.MethodPost, "/api/v1/me/plays", nil, alice.SessionToken)
	require.Equal(t, http.StatusCreated, rr.Code)
	result := decode[progression.PlayResult](t, rr)
	assert.Equal(t, 90, result.Energy)
	assert.Equal(t, 10, result.Points)
	require.NotNil(t, result.Award)
	assert.Equal(t, 15, result.Award.After.XP)
	assert.False(t, result.Degraded)

	rr = ts.request(http.MethodPost, "/api/v1/me/energy/spend", map[string]int{"amount": 85}, alice.SessionToken)
	require.Equal(t, http.StatusOK, rr.Code)

	rr = ts.request(http.MethodPost, "/api/v1/me/plays", nil, alice.SessionToken)
	assert.Equal(t, http.StatusConflict, rr.Code)
	assert.Equal(t, apierr.CodeInsufficientEnergy, errorCode(t, rr))
}

func TestLeaderboard(t *testing.T) {
	ts := newTestServer(t)
	players := []response.AuthResponse{
		ts.register(t, "alice"),
		ts.register(t, "bob"),
		ts.register(t, "carol"),
		ts.register(t, "dave"),
	}

	// alice plays 3 times, bob twice, carol and dave once each
	for i, plays := range []int{3, 2, 1, 1} {
		for range plays {
			rr := ts.request(http.MethodPost, "/api/v1/me/plays", nil, players[i].SessionToken)
			require.Equal(t, http.StatusCreated, rr.Code)
		}
	}

	rr := ts.request(http.MethodGet, "/api/v1/leaderboard?period=daily", nil, "")
	require.Equal(t, http.StatusOK, rr.Code)
	lb := decode[response.Leaderboard](t, rr)
	assert.Equal(t, "daily", lb.Period)
	assert.Equal(t, "2024-01-04", lb.Key)
	require.Len(t, lb.Podium, 3)
	assert.Equal(t, "alice", lb.Podium[0].Username)
	assert.Equal(t, 30, lb.Podium[0].Points)
	assert.Equal(t, "bob", lb.Podium[1].Username)
	require.Len(t, lb.Rest, 1)
	assert.Equal(t, 4, lb.Rest[0].Rank)

	rr = ts.request(http.MethodGet, "/api/v1/leaderboard?period=weekly&limit=2", nil, "")
	require.Equal(t, http.StatusOK, rr.Code)
	weekly := decode[response.Leaderboard](t, rr)
	assert.Equal(t, "2024-W01", weekly.Key)
	assert.Len(t, weekly.Podium, 2)
	assert.Empty(t, weekly.Rest)

	rr = ts.request(http.MethodGet, "/api/v1/leaderboard?period=all-time", nil, "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, 30, decode[response.Leaderboard](t, rr).Podium[0].Points)

	// Yesterday's board is empty
	rr = ts.request(http.MethodGet, "/api/v1/leaderboard?period=daily&as_of=2024-01-03", nil, "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Empty(t, decode[response.Leaderboard](t, rr).Podium)
}

func TestLeaderboardRejectsBadQuery(t *testing.T) {
	ts := newTestServer(t)

	rr := ts.request(http.MethodGet, "/api/v1/leaderboard?period=monthly", nil, "")
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, apierr.CodeInvalidPeriod, errorCode(t, rr))

	rr = ts.request(http.MethodGet, "/api/v1/leaderboard?as_of=yesterday", nil, "")
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, apierr.CodeInvalidDate, errorCode(t, rr))

	rr = ts.request(http.MethodGet, "/api/v1/leaderboard?limit=-1", nil, "")
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, apierr.CodeInvalidRequest, errorCode(t, rr))
}

func TestLevels(t *testing.T) {
	ts := newTestServer(t)

	rr := ts.request(http.MethodGet, "/api/v1/levels", nil, "")
	require.Equal(t, http.StatusOK, rr.Code)

	levels := decode[response.Levels](t, rr).Levels
	require.Len(t, levels, 10)
	assert.Equal(t, 0, levels[0].Threshold)
	assert.Equal(t, 20000, levels[9].Threshold)
}

func TestAdminRequiresAdminFlag(t *testing.T) {
	ts := newTestServer(t)
	alice := ts.register(t, "alice")

	rr := ts.request(http.MethodPost, "/api/v1/admin/players/"+alice.Player.ID+"/xp", map[string]int{"amount": 100}, alice.SessionToken)
	assert.Equal(t, http.StatusForbidden, rr.Code)
	assert.Equal(t, apierr.CodeForbidden, errorCode(t, rr))
}

func TestAdminGrantXP(t *testing.T) {
	ts := newTestServer(t)
	root := ts.register(t, "root")
	alice := ts.register(t, "alice")
	require.True(t, root.Player.IsAdmin)

	rr := ts.request(http.MethodPost, "/api/v1/admin/players/"+alice.Player.ID+"/xp", map[string]int{"amount": 290}, root.SessionToken)
	require.Equal(t, http.StatusOK, rr.Code)

	award := decode[experience.Award](t, rr)
	assert.Equal(t, experience.ReasonAdmin, award.Reason)
	assert.Equal(t, 300, award.After.XP)
	assert.Equal(t, 3, award.After.Current.Level)
	assert.True(t, award.LeveledUp)

	rr = ts.request(http.MethodPost, "/api/v1/admin/players/p_missing/xp", map[string]int{"amount": 10}, root.SessionToken)
	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.Equal(t, apierr.CodePlayerNotFound, errorCode(t, rr))

	rr = ts.request(http.MethodPost, "/api/v1/admin/players/"+alice.Player.ID+"/xp", map[string]int{"amount": -10}, root.SessionToken)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestAdminRebuildStreak(t *testing.T) {
	ts := newTestServer(t)
	root := ts.register(t, "root")
	alice := ts.register(t, "alice")

	ts.app.MockClock.AdvanceDays(1)
	loginBody := map[string]string{"username": "alice", "password": "secret123"}
	rr := ts.request(http.MethodPost, "/api/v1/players/login", loginBody, "")
	require.Equal(t, http.StatusOK, rr.Code)

	rr = ts.request(http.MethodPost, "/api/v1/admin/players/"+alice.Player.ID+"/streak/rebuild", nil, root.SessionToken)
	require.Equal(t, http.StatusOK, rr.Code)

	summary := decode[model.StreakSummary](t, rr)
	assert.Equal(t, 2, summary.CurrentStreak)
	assert.Equal(t, 2, summary.BestStreak)
	assert.Equal(t, model.Date("2024-01-05"), summary.LastLoginDate)
}

func TestAdminSeasons(t *testing.T) {
	ts := newTestServer(t)
	root := ts.register(t, "root")

	// No active season yet: the board is empty rather than an error
	rr := ts.request(http.MethodGet, "/api/v1/leaderboard?period=season", nil, "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Nil(t, decode[response.Leaderboard](t, rr).Season)

	ts.app.MockIDs.Queue("season_winter")
	season := map[string]any{
		"name":      "Winter",
		"starts_at": time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		"ends_at":   time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC),
	}
	rr = ts.request(http.MethodPost, "/api/v1/admin/seasons", season, root.SessionToken)
	require.Equal(t, http.StatusCreated, rr.Code)
	assert.Equal(t, "season_winter", decode[model.Season](t, rr).ID)

	rr = ts.request(http.MethodPost, "/api/v1/me/plays", nil, root.SessionToken)
	require.Equal(t, http.StatusCreated, rr.Code)

	rr = ts.request(http.MethodGet, "/api/v1/leaderboard?period=season", nil, "")
	require.Equal(t, http.StatusOK, rr.Code)
	lb := decode[response.Leaderboard](t, rr)
	require.NotNil(t, lb.Season)
	assert.Equal(t, "season_winter", lb.Key)
	require.Len(t, lb.Podium, 1)
	assert.Equal(t, 10, lb.Podium[0].Points)

	backwards := map[string]any{
		"name":      "Backwards",
		"starts_at": time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC),
		"ends_at":   time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	}
	rr = ts.request(http.MethodPost, "/api/v1/admin/seasons", backwards, root.SessionToken)
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = ts.request(http.MethodGet, "/api/v1/admin/seasons", nil, root.SessionToken)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Len(t, decode[response.Seasons](t, rr).Seasons, 1)
}

func TestMetricsEndpoint(t *testing.T) {
	ts := newTestServer(t)

	rr := ts.request(http.MethodGet, "/api/v1/health", nil, "")
	require.Equal(t, http.StatusOK, rr.Code)

	rr = ts.request(http.MethodGet, "/metrics", nil, "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `wyr_http_requests_total{method="GET",route="/api/v1/health",status="200"} 1`)
}
