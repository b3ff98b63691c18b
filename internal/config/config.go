// Package config loads server settings from the environment and an optional .env file.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port     string
	LogLevel slog.Level
	// Location decides where calendar days begin and end
	Location *time.Location

	StorageType string
	RedisURL    string
	DatabaseURL string

	AdminUsernames  []string
	SessionDuration time.Duration

	EnergyMax           int
	EnergyRegenInterval time.Duration
	EnergyRegenPerTick  int

	PlayEnergyCost int
	VoteXP         int
	VotePoints     int

	LeaderboardCacheTTL time.Duration
}

func Load() (*Config, error) {
	// Don't fail if .env doesn't exist (might be prod env vars)
	_ = godotenv.Load()

	cfg := &Config{
		Port:        getEnv("PORT", "8080"),
		StorageType: getEnv("STORAGE_TYPE", "memory"),
		RedisURL:    os.Getenv("REDIS_URL"),
		DatabaseURL: os.Getenv("DATABASE_URL"),
	}

	if err := cfg.LogLevel.UnmarshalText([]byte(getEnv("LOG_LEVEL", "info"))); err != nil {
		return nil, fmt.Errorf("invalid LOG_LEVEL: %w", err)
	}

	loc, err := time.LoadLocation(getEnv("TIMEZONE", "Local"))
	if err != nil {
		return nil, fmt.Errorf("invalid TIMEZONE: %w", err)
	}
	cfg.Location = loc

	for _, name := range strings.Split(os.Getenv("ADMIN_USERNAMES"), ",") {
		if name = strings.TrimSpace(name); name != "" {
			cfg.AdminUsernames = append(cfg.AdminUsernames, name)
		}
	}

	durations := []struct {
		key      string
		fallback string
		dst      *time.Duration
	}{
		{"SESSION_DURATION", "24h", &cfg.SessionDuration},
		{"ENERGY_REGEN_INTERVAL", "3m", &cfg.EnergyRegenInterval},
		{"LEADERBOARD_CACHE_TTL", "5m", &cfg.LeaderboardCacheTTL},
	}
	for _, d := range durations {
		if *d.dst, err = parsePositiveDuration(getEnv(d.key, d.fallback)); err != nil {
			return nil, fmt.Errorf("invalid %s: %w", d.key, err)
		}
	}

	ints := []struct {
		key      string
		fallback string
		dst      *int
	}{
		{"ENERGY_MAX", "100", &cfg.EnergyMax},
		{"ENERGY_REGEN_PER_TICK", "1", &cfg.EnergyRegenPerTick},
		{"PLAY_ENERGY_COST", "10", &cfg.PlayEnergyCost},
		{"VOTE_XP", "5", &cfg.VoteXP},
		{"VOTE_POINTS", "10", &cfg.VotePoints},
	}
	for _, i := range ints {
		if *i.dst, err = parseNonNegativeInt(getEnv(i.key, i.fallback)); err != nil {
			return nil, fmt.Errorf("invalid %s: %w", i.key, err)
		}
	}

	if cfg.EnergyMax == 0 {
		return nil, fmt.Errorf("invalid ENERGY_MAX: must be positive")
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func parsePositiveDuration(s string) (time.Duration, error) {
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, err
	}
	if d <= 0 {
		return 0, fmt.Errorf("must be positive, got %s", s)
	}
	return d, nil
}

func parseNonNegativeInt(s string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, err
	}
	if n < 0 {
		return 0, fmt.Errorf("must not be negative, got %d", n)
	}
	return n, nil
}
