package auth

import (
	"context"
	"errors"
	"log/slog"
	"slices"
	"sync"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/mcoot/wyrgame/internal/dependencies/clock"
	"github.com/mcoot/wyrgame/internal/dependencies/idgen"
	"github.com/mcoot/wyrgame/internal/model"
	"github.com/mcoot/wyrgame/internal/services/progression"
	"github.com/mcoot/wyrgame/internal/storage"
)

// Errors
var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidSession     = errors.New("invalid or expired session")
	ErrUsernameExists     = errors.New("username already exists")
)

// Starter begins a progression session for a freshly authenticated player
type Starter interface {
	Start(ctx context.Context, playerID model.PlayerID) *progression.Session
}

// Session represents an authenticated session
type Session struct {
	Token       string
	PlayerID    model.PlayerID
	Player      model.Player
	Progression *progression.Session
	CreatedAt   time.Time
	ExpiresAt   time.Time
}

// Service handles authentication and session management
type Service struct {
	storage   storage.PlayerDirectory
	clock     clock.Clock
	ids       idgen.Generator
	bootstrap Starter
	logger    *slog.Logger

	mu       sync.RWMutex
	sessions map[string]*Session

	sessionDuration time.Duration
	adminUsernames  []string
}

// Config holds configuration for the auth service
type Config struct {
	SessionDuration time.Duration
	// AdminUsernames are granted the admin flag when they log in
	AdminUsernames []string
}

// DefaultConfig returns default auth configuration
func DefaultConfig() Config {
	return Config{
		SessionDuration: 24 * time.Hour,
	}
}

// New creates a new AuthService
func New(
	storage storage.PlayerDirectory,
	clock clock.Clock,
	ids idgen.Generator,
	bootstrap Starter,
	logger *slog.Logger,
	cfg Config,
) *Service {
	if cfg.SessionDuration == 0 {
		cfg.SessionDuration = DefaultConfig().SessionDuration
	}
	return &Service{
		storage:         storage,
		clock:           clock,
		ids:             ids,
		bootstrap:       bootstrap,
		logger:          logger,
		sessions:        make(map[string]*Session),
		sessionDuration: cfg.SessionDuration,
		adminUsernames:  cfg.AdminUsernames,
	}
}

// RegisterPlayer creates a registered player account and session
func (s *Service) RegisterPlayer(ctx context.Context, username, password, displayName string) (*Session, error) {
	// Check if username exists
	_, err := s.storage.GetRegisteredPlayerByUsername(ctx, username)
	if err == nil {
		return nil, ErrUsernameExists
	}
	if !errors.Is(err, model.ErrPlayerNotFound) {
		return nil, err
	}

	// Hash password
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	playerID := model.PlayerID(s.ids.NewID("p_"))
	now := s.clock.Now()

	if displayName == "" {
		displayName = username
	}
	player := &model.Player{
		ID:          playerID,
		Username:    username,
		DisplayName: displayName,
		IsAdmin:     s.isAdmin(username),
		CreatedAt:   now,
	}

	registeredPlayer := &model.RegisteredPlayer{
		PlayerID:     playerID,
		Username:     username,
		PasswordHash: string(hash),
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.storage.SavePlayer(ctx, player); err != nil {
		return nil, err
	}

	if err := s.storage.SaveRegisteredPlayer(ctx, registeredPlayer); err != nil {
		return nil, err
	}

	s.logger.Info("player registered", "player_id", playerID, "username", username)
	return s.createSession(ctx, player), nil
}

// Login authenticates a registered player and creates a session
func (s *Service) Login(ctx context.Context, username, password string) (*Session, error) {
	rp, err := s.storage.GetRegisteredPlayerByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, model.ErrPlayerNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(rp.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	player, err := s.storage.GetPlayer(ctx, rp.PlayerID)
	if err != nil {
		return nil, err
	}
	// admin rights follow the current configuration, not the stored flag
	player.IsAdmin = s.isAdmin(rp.Username)

	return s.createSession(ctx, player), nil
}

// UpdateProfile changes the display name and avatar of the session's player
func (s *Service) UpdateProfile(ctx context.Context, token, displayName, avatarURL string) (*model.Player, error) {
	session, err := s.ValidateSession(token)
	if err != nil {
		return nil, err
	}

	player, err := s.storage.GetPlayer(ctx, session.PlayerID)
	if err != nil {
		return nil, err
	}
	if displayName != "" {
		player.DisplayName = displayName
	}
	player.AvatarURL = avatarURL
	player.IsAdmin = session.Player.IsAdmin

	if err := s.storage.SavePlayer(ctx, player); err != nil {
		return nil, err
	}

	s.mu.Lock()
	for _, other := range s.sessions {
		if other.PlayerID == player.ID {
			other.Player = *player
		}
	}
	s.mu.Unlock()

	return player, nil
}

// ValidateSession checks if a session token is valid and returns the session
func (s *Service) ValidateSession(token string) (*Session, error) {
	s.mu.RLock()
	session, ok := s.sessions[token]
	s.mu.RUnlock()

	if !ok {
		return nil, ErrInvalidSession
	}

	if s.clock.Now().After(session.ExpiresAt) {
		s.mu.Lock()
		delete(s.sessions, token)
		s.mu.Unlock()
		return nil, ErrInvalidSession
	}

	return session, nil
}

// InvalidateSession removes a session
func (s *Service) InvalidateSession(token string) {
	s.mu.Lock()
	delete(s.sessions, token)
	s.mu.Unlock()
}

// GetPlayer returns the player for a session token
func (s *Service) GetPlayer(token string) (*model.Player, error) {
	session, err := s.ValidateSession(token)
	if err != nil {
		return nil, err
	}
	return &session.Player, nil
}

// createSession creates a new session for a player and starts its progression
func (s *Service) createSession(ctx context.Context, player *model.Player) *Session {
	token := s.ids.NewID("sess_")
	now := s.clock.Now()

	session := &Session{
		Token:       token,
		PlayerID:    player.ID,
		Player:      *player,
		Progression: s.bootstrap.Start(ctx, player.ID),
		CreatedAt:   now,
		ExpiresAt:   now.Add(s.sessionDuration),
	}

	s.mu.Lock()
	s.sessions[token] = session
	s.mu.Unlock()

	return session
}

func (s *Service) isAdmin(username string) bool {
	return slices.Contains(s.adminUsernames, username)
}

// CleanExpiredSessions removes expired sessions (call periodically)
func (s *Service) CleanExpiredSessions() {
	now := s.clock.Now()
	s.mu.Lock()
	defer s.mu.Unlock()

	for token, session := range s.sessions {
		if now.After(session.ExpiresAt) {
			delete(s.sessions, token)
		}
	}
}
