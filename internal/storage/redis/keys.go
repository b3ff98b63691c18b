package redis

import (
	"fmt"

	"github.com/mcoot/wyrgame/internal/model"
)

// Key generation functions for each entity type

// playerKey returns the key for a Player
func (s *Storage) playerKey(id model.PlayerID) string {
	return fmt.Sprintf("%s:player:%s", s.cfg.KeyPrefix, id)
}

// registeredPlayerKey returns the key for a RegisteredPlayer
func (s *Storage) registeredPlayerKey(playerID model.PlayerID) string {
	return fmt.Sprintf("%s:registered_player:%s", s.cfg.KeyPrefix, playerID)
}

// usernameIndexKey returns the key for the username -> player_id index
func (s *Storage) usernameIndexKey(username string) string {
	return fmt.Sprintf("%s:idx:username:%s", s.cfg.KeyPrefix, username)
}

// progressionKey returns the HASH key for a ProgressionRecord
func (s *Storage) progressionKey(id model.PlayerID) string {
	return fmt.Sprintf("%s:progression:%s", s.cfg.KeyPrefix, id)
}

// progressionIndexKey returns the SET of player IDs that have a progression record
func (s *Storage) progressionIndexKey() string {
	return fmt.Sprintf("%s:idx:progression", s.cfg.KeyPrefix)
}

// loginLogKey returns the HASH (date -> event) holding a player's login log
func (s *Storage) loginLogKey(id model.PlayerID) string {
	return fmt.Sprintf("%s:logins:%s", s.cfg.KeyPrefix, id)
}

// streakKey returns the key for a StreakSummary
func (s *Storage) streakKey(id model.PlayerID) string {
	return fmt.Sprintf("%s:streak:%s", s.cfg.KeyPrefix, id)
}

// periodPointsKey returns the ZSET (player -> points) for one period bucket
func (s *Storage) periodPointsKey(period model.Period, key string) string {
	return fmt.Sprintf("%s:points:%s:%s", s.cfg.KeyPrefix, period, key)
}

// seasonsKey returns the HASH (id -> season) of all seasons
func (s *Storage) seasonsKey() string {
	return fmt.Sprintf("%s:seasons", s.cfg.KeyPrefix)
}
