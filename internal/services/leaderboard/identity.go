package leaderboard

import (
	"context"
	"log/slog"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/mcoot/wyrgame/internal/dependencies/clock"
	"github.com/mcoot/wyrgame/internal/model"
	"github.com/mcoot/wyrgame/internal/observability"
	"github.com/mcoot/wyrgame/internal/storage"
)

type identity struct {
	username  string
	avatarURL string
	storedAt  time.Time
}

// identityCache fills usernames and avatars from the player directory,
// keeping recent lookups in a bounded LRU with a TTL
type identityCache struct {
	directory storage.PlayerDirectory
	clock     clock.Clock
	logger    *slog.Logger
	metrics   *observability.Metrics
	cache     *lru.Cache[model.PlayerID, identity]
	ttl       time.Duration
}

func newIdentityCache(
	directory storage.PlayerDirectory,
	clock clock.Clock,
	logger *slog.Logger,
	metrics *observability.Metrics,
	size int,
	ttl time.Duration,
) *identityCache {
	cache, err := lru.New[model.PlayerID, identity](size)
	if err != nil {
		// only fails on a non-positive size, which Config guards against
		panic(err)
	}
	return &identityCache{
		directory: directory,
		clock:     clock,
		logger:    logger,
		metrics:   metrics,
		cache:     cache,
		ttl:       ttl,
	}
}

// enrich fills Username and AvatarURL in place. Players that cannot be
// looked up keep their ID as the username.
func (c *identityCache) enrich(ctx context.Context, entries []model.LeaderboardEntry) {
	now := c.clock.Now()

	var missing []model.PlayerID
	for i := range entries {
		id := entries[i].PlayerID
		if ident, ok := c.cache.Get(id); ok {
			if now.Sub(ident.storedAt) < c.ttl {
				c.metrics.IncEnrichment("hit")
				entries[i].Username = ident.username
				entries[i].AvatarURL = ident.avatarURL
				continue
			}
			c.cache.Remove(id)
		}
		c.metrics.IncEnrichment("miss")
		missing = append(missing, id)
	}
	if len(missing) == 0 {
		return
	}

	players, err := c.directory.GetPlayers(ctx, missing)
	if err != nil {
		c.metrics.IncEnrichment("error")
		c.logger.Warn("leaderboard enrichment failed", "players", len(missing), "error", err)
		players = nil
	}

	for i := range entries {
		if entries[i].Username != "" {
			continue
		}
		player, ok := players[entries[i].PlayerID]
		if !ok {
			entries[i].Username = string(entries[i].PlayerID)
			continue
		}
		ident := identity{username: displayName(player), avatarURL: player.AvatarURL, storedAt: now}
		c.cache.Add(player.ID, ident)
		entries[i].Username = ident.username
		entries[i].AvatarURL = ident.avatarURL
	}
}

// invalidate drops a cached identity, e.g. after a profile change
func (c *identityCache) invalidate(id model.PlayerID) {
	c.cache.Remove(id)
}

func displayName(p *model.Player) string {
	if p.Username != "" {
		return p.Username
	}
	if p.DisplayName != "" {
		return p.DisplayName
	}
	return string(p.ID)
}
