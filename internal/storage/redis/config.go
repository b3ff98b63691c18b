package redis

import "time"

// Config holds Redis connection and behavior settings
type Config struct {
	// URL is the Redis connection URL (e.g., redis://localhost:6379)
	URL string

	// Pool settings
	PoolSize     int
	MinIdleConns int

	// KeyPrefix namespaces every key written by the store
	KeyPrefix string

	// Retention for period point buckets. Zero keeps a bucket forever.
	// Buckets only need to outlive the following period for rank changes.
	DailyPointsTTL  time.Duration
	WeeklyPointsTTL time.Duration
}

// DefaultConfig returns sensible defaults for Redis configuration
func DefaultConfig() Config {
	return Config{
		URL:             "redis://localhost:6379",
		PoolSize:        10,
		MinIdleConns:    2,
		KeyPrefix:       "wyr",
		DailyPointsTTL:  35 * 24 * time.Hour,
		WeeklyPointsTTL: 120 * 24 * time.Hour,
	}
}
