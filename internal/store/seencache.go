package store

import (
	"context"
	"log"

	"github.com/redis/go-redis/v9"
)

const seenKeyPrefix = "postings:seen:"

// SeenCache is a best-effort Redis set of already-ingested
// (source, externalId) pairs. A hit lets the orchestrator skip the
// database round trip for a known duplicate; the postings uniqueness
// constraint stays the authoritative dedup mechanism, and keys are only
// written after the database has confirmed the row exists. Every Redis
// failure degrades to a miss and is logged, never propagated.
type SeenCache struct {
	rdb *redis.Client
}

// NewSeenCache wraps rdb.
func NewSeenCache(rdb *redis.Client) *SeenCache {
	return &SeenCache{rdb: rdb}
}

// Seen reports whether the pair is known to be ingested already.
func (c *SeenCache) Seen(ctx context.Context, source, externalID string) bool {
	ok, err := c.rdb.SIsMember(ctx, seenKeyPrefix+source, externalID).Result()
	if err != nil {
		log.Printf("[seencache] SISMEMBER failed: %v", err)
		return false
	}
	return ok
}

// Mark records the pair as ingested. Called only after the database
// insert returned either inserted or duplicate.
func (c *SeenCache) Mark(ctx context.Context, source, externalID string) {
	if err := c.rdb.SAdd(ctx, seenKeyPrefix+source, externalID).Err(); err != nil {
		log.Printf("[seencache] SADD failed: %v", err)
	}
}
