package e2e_test

import (
	"context"
	"encoding/json"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcoot/wyrgame/internal/api"
	"github.com/mcoot/wyrgame/internal/factory"
	"github.com/mcoot/wyrgame/internal/services/auth"
)

// cliRunner manages CLI binary execution
type cliRunner struct {
	binaryPath string
	serverURL  string
	tokenFile  string
}

func newCLIRunner(t *testing.T, serverURL string) *cliRunner {
	t.Helper()

	// Find project root (where go.mod is)
	projectRoot := findProjectRoot(t)

	// Build the CLI binary
	binaryPath := filepath.Join(projectRoot, "bin", "wyr-test")
	cmd := exec.Command("go", "build", "-o", binaryPath, "./cmd/wyr")
	cmd.Dir = projectRoot
	output, err := cmd.CombinedOutput()
	require.NoError(t, err, "failed to build CLI: %s", string(output))

	return &cliRunner{
		binaryPath: binaryPath,
		serverURL:  serverURL,
		tokenFile:  filepath.Join(t.TempDir(), "token"),
	}
}

func (r *cliRunner) run(args ...string) (string, error) {
	fullArgs := append([]string{
		"--server", r.serverURL,
		"--token-file", r.tokenFile,
		"--output", "json",
	}, args...)

	cmd := exec.Command(r.binaryPath, fullArgs...)
	cmd.Env = append(os.Environ(), "WYR_TOKEN=")
	output, err := cmd.CombinedOutput()
	return string(output), err
}

func (r *cliRunner) runWithToken(token string, args ...string) (string, error) {
	fullArgs := append([]string{
		"--server", r.serverURL,
		"--token", token,
		"--output", "json",
	}, args...)

	cmd := exec.Command(r.binaryPath, fullArgs...)
	output, err := cmd.CombinedOutput()
	return string(output), err
}

func findProjectRoot(t *testing.T) string {
	t.Helper()

	dir, err := os.Getwd()
	require.NoError(t, err)

	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			t.Fatal("could not find project root (go.mod)")
		}
		dir = parent
	}
}

// startTestServer runs the real server stack on a free port until the test ends
func startTestServer(t *testing.T) string {
	t.Helper()

	// Find a free port
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	port := listener.Addr().(*net.TCPAddr).Port
	require.NoError(t, listener.Close())

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))

	app, err := factory.New(factory.Config{
		Logger:     logger,
		AuthConfig: auth.Config{AdminUsernames: []string{"root"}},
	})
	require.NoError(t, err)

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
	serverConfig.Host = "127.0.0.1"
	serverConfig.Port = port
	server := api.NewServer(router, serverConfig, logger)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		if err := server.Run(ctx); err != nil {
			t.Logf("server error: %v", err)
		}
	}()
	t.Cleanup(func() {
		cancel()
		<-done
	})

	// Wait for server to be ready
	serverURL := "http://127.0.0.1:" + strconv.Itoa(port)
	waitForServer(t, serverURL+"/api/v1/health")
	return serverURL
}

func waitForServer(t *testing.T, url string) {
	t.Helper()

	client := &http.Client{Timeout: 100 * time.Millisecond}
	deadline := time.Now().Add(5 * time.Second)

	for time.Now().Before(deadline) {
		resp, err := client.Get(url)
		if err == nil {
			_ = resp.Body.Close()
			if resp.StatusCode == http.StatusOK {
				return
			}
		}
		time.Sleep(50 * time.Millisecond)
	}

	t.Fatal("server did not become ready in time")
}

// Response types for JSON parsing
type authResponse struct {
	Player struct {
		ID       string `json:"id"`
		Username string `json:"username"`
		IsAdmin  bool   `json:"is_admin"`
	} `json:"player"`
	SessionToken string `json:"session_token"`
	LoginReward  *struct {
		StreakDay int `json:"streak_day"`
		BonusXP   int `json:"bonus_xp"`
	} `json:"login_reward"`
}

type playResponse struct {
	Energy int `json:"energy"`
	Points int `json:"points"`
}

type leaderboardResponse struct {
	Period string `json:"period"`
	Podium []struct {
		Username string `json:"username"`
		Points   int    `json:"points"`
		Rank     int    `json:"rank"`
	} `json:"podium"`
}

type healthResponse struct {
	Status string `json:"status"`
}

// Tests

func TestCLI_HealthCheck(t *testing.T) {
	cli := newCLIRunner(t, startTestServer(t))

	output, err := cli.run("health")
	require.NoError(t, err, "output: %s", output)

	var resp healthResponse
	require.NoError(t, json.Unmarshal([]byte(output), &resp))
	assert.Equal(t, "ok", resp.Status)
}

func TestCLI_PlayerCommands(t *testing.T) {
	cli := newCLIRunner(t, startTestServer(t))

	output, err := cli.run("player", "register", "--user", "alice", "--pass", "secret123")
	require.NoError(t, err, "output: %s", output)

	var authResp authResponse
	require.NoError(t, json.Unmarshal([]byte(output), &authResp))
	assert.Equal(t, "alice", authResp.Player.Username)
	assert.NotEmpty(t, authResp.SessionToken)
	require.NotNil(t, authResp.LoginReward)
	assert.Equal(t, 1, authResp.LoginReward.StreakDay)

	// Get me (token should be saved in token file)
	output, err = cli.run("player", "me")
	require.NoError(t, err, "output: %s", output)

	var player struct {
		ID string `json:"id"`
	}
	require.NoError(t, json.Unmarshal([]byte(output), &player))
	assert.Equal(t, authResp.Player.ID, player.ID)
}

func TestCLI_PlayAndLeaderboard(t *testing.T) {
	serverURL := startTestServer(t)
	alice := newCLIRunner(t, serverURL)
	bob := newCLIRunner(t, serverURL)

	_, err := alice.run("player", "register", "--user", "alice", "--pass", "secret123")
	require.NoError(t, err)
	_, err = bob.run("player", "register", "--user", "bob", "--pass", "secret123")
	require.NoError(t, err)

	for range 2 {
		output, err := alice.run("play")
		require.NoError(t, err, "output: %s", output)
	}
	output, err := bob.run("play")
	require.NoError(t, err, "output: %s", output)

	var play playResponse
	require.NoError(t, json.Unmarshal([]byte(output), &play))
	assert.Equal(t, 90, play.Energy)

	output, err = bob.run("leaderboard", "--period", "daily")
	require.NoError(t, err, "output: %s", output)

	var lb leaderboardResponse
	require.NoError(t, json.Unmarshal([]byte(output), &lb))
	require.Len(t, lb.Podium, 2)
	assert.Equal(t, "alice", lb.Podium[0].Username)
	assert.Equal(t, 20, lb.Podium[0].Points)
	assert.Equal(t, 2, lb.Podium[1].Rank)
}

func TestCLI_ErrorHandling(t *testing.T) {
	cli := newCLIRunner(t, startTestServer(t))

	// Progress without auth
	output, err := cli.run("progress")
	assert.Error(t, err)
	assert.Contains(t, strings.ToLower(output), "unauthorized")

	output, err = cli.run("player", "register", "--user", "alice", "--pass", "secret123")
	require.NoError(t, err)
	var auth authResponse
	require.NoError(t, json.Unmarshal([]byte(output), &auth))

	// Administrator commands are refused for ordinary players
	output, err = cli.runWithToken(auth.SessionToken, "admin", "season", "list")
	assert.Error(t, err)
	assert.Contains(t, output, "FORBIDDEN")

	// Drain the tank, then a vote is refused
	_, err = cli.runWithToken(auth.SessionToken, "energy", "spend", "--amount", "100")
	require.NoError(t, err)
	output, err = cli.runWithToken(auth.SessionToken, "play")
	assert.Error(t, err)
	assert.Contains(t, output, "INSUFFICIENT_ENERGY")
}
