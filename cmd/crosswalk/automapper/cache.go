package automapper

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

const (
	cacheKeyPrefix  = "crosswalk:suggest:"
	defaultCacheTTL = 15 * time.Minute
)

// SuggestionCache is an optional Redis-backed cache of suggestion rankings,
// keyed by source column and sample values. Correction writes invalidate the
// whole keyspace since any target's score may have shifted.
type SuggestionCache struct {
	client *redis.Client
	ttl    time.Duration
	log    zerolog.Logger
}

// NewSuggestionCache creates a cache backed by the Redis instance at redisURL.
// Returns nil (cache disabled) when redisURL is empty or unparseable.
func NewSuggestionCache(redisURL string, log zerolog.Logger) *SuggestionCache {
	if redisURL == "" {
		return nil
	}

	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		log.Warn().Err(err).Msg("Invalid REDIS_URL, suggestion cache disabled")
		return nil
	}

	return &SuggestionCache{
		client: redis.NewClient(opts),
		ttl:    defaultCacheTTL,
		log:    log.With().Str("component", "suggestion_cache").Logger(),
	}
}

// Get returns the cached ranking for a column, if present.
func (c *SuggestionCache) Get(ctx context.Context, sourceColumn string, sampleValues []string) ([]Suggestion, bool) {
	data, err := c.client.Get(ctx, c.key(sourceColumn, sampleValues)).Bytes()
	if err != nil {
		if err != redis.Nil {
			c.log.Warn().Err(err).Msg("Suggestion cache read failed")
		}
		return nil, false
	}

	var suggestions []Suggestion
	if err := json.Unmarshal(data, &suggestions); err != nil {
		c.log.Warn().Err(err).Msg("Failed to decode cached suggestions")
		return nil, false
	}
	return suggestions, true
}

// Store caches a ranking. Failures are logged and otherwise ignored.
func (c *SuggestionCache) Store(ctx context.Context, sourceColumn string, sampleValues []string, suggestions []Suggestion) {
	data, err := json.Marshal(suggestions)
	if err != nil {
		c.log.Warn().Err(err).Msg("Failed to encode suggestions for cache")
		return
	}
	if err := c.client.Set(ctx, c.key(sourceColumn, sampleValues), data, c.ttl).Err(); err != nil {
		c.log.Warn().Err(err).Msg("Suggestion cache write failed")
	}
}

// Invalidate drops every cached ranking.
func (c *SuggestionCache) Invalidate(ctx context.Context) {
	iter := c.client.Scan(ctx, 0, cacheKeyPrefix+"*", 0).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		c.log.Warn().Err(err).Msg("Suggestion cache scan failed")
		return
	}
	if len(keys) == 0 {
		return
	}
	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		c.log.Warn().Err(err).Msg("Suggestion cache invalidation failed")
		return
	}
	c.log.Debug().Int("keys", len(keys)).Msg("Invalidated suggestion cache")
}

func (c *SuggestionCache) key(sourceColumn string, sampleValues []string) string {
	h := sha256.New()
	h.Write([]byte(strings.ToLower(sourceColumn)))
	for _, v := range sampleValues {
		h.Write([]byte{0})
		h.Write([]byte(v))
	}
	return cacheKeyPrefix + hex.EncodeToString(h.Sum(nil))
}
