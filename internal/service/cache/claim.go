package cache

import (
	"context"
	"time"

	"github.com/kapu/liqu-discord-bot/internal/constants"
	"go.uber.org/zap"
)

// Claimer hands each interaction to a single dispatcher when several gateway
// sessions receive the same event. Without a cache every claim is granted.
type Claimer struct {
	cache  *CacheService
	ttl    time.Duration
	owner  string
	logger *zap.Logger
}

func NewClaimer(cache *CacheService, owner string, logger *zap.Logger) *Claimer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Claimer{
		cache:  cache,
		ttl:    constants.RedisConfig.ClaimTTL,
		owner:  owner,
		logger: logger,
	}
}

// Claim reports whether the caller should handle the interaction. Cache
// failures grant the claim.
func (c *Claimer) Claim(ctx context.Context, interactionID string) bool {
	if c == nil || c.cache == nil {
		return true
	}

	key := constants.RedisConfig.KeyPrefix + interactionID
	ok, err := c.cache.SetNX(ctx, key, c.owner, c.ttl)
	if err != nil {
		c.logger.Warn("Interaction claim failed, handling anyway",
			zap.String("interaction_id", interactionID),
			zap.Error(err),
		)
		return true
	}
	if !ok {
		c.logger.Info("Interaction already claimed", zap.String("interaction_id", interactionID))
	}
	return ok
}
