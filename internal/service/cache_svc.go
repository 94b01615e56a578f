package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const (
	FeedCacheTTL   = 30 * time.Second
	PromptCacheTTL = 10 * time.Minute
)

// CacheService is a Redis cache-aside layer for feed pages and the daily
// prompt. A CacheService without a client turns every operation into a no-op.
type CacheService struct {
	rdb *redis.Client

	// OnHit and OnMiss, when set, are called on every lookup.
	OnHit  func()
	OnMiss func()
}

// NewCacheService connects to redisURL. If the URL is empty or the server is
// unreachable, caching is disabled rather than failing startup.
func NewCacheService(redisURL string) *CacheService {
	logger := log.With().Str("component", "cache").Logger()
	if redisURL == "" {
		logger.Info().Msg("no redis URL configured, caching disabled")
		return &CacheService{}
	}

	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		logger.Warn().Err(err).Msg("invalid redis URL, caching disabled")
		return &CacheService{}
	}

	rdb := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		logger.Warn().Err(err).Msg("redis connection failed, caching disabled")
		_ = rdb.Close()
		return &CacheService{}
	}

	logger.Info().Msg("redis connected, caching enabled")
	return &CacheService{rdb: rdb}
}

// NewCacheServiceWithClient wraps an existing client.
func NewCacheServiceWithClient(rdb *redis.Client) *CacheService {
	return &CacheService{rdb: rdb}
}

// Client returns the underlying Redis client (for health checks). May be nil.
func (c *CacheService) Client() *redis.Client {
	if c == nil {
		return nil
	}
	return c.rdb
}

func (c *CacheService) enabled() bool {
	return c != nil && c.rdb != nil
}

func (c *CacheService) record(hit bool) {
	if hit && c.OnHit != nil {
		c.OnHit()
	}
	if !hit && c.OnMiss != nil {
		c.OnMiss()
	}
}

// GetFeed loads a cached feed page into dst. It reports false on a miss.
func (c *CacheService) GetFeed(ctx context.Context, promptID, order string, limit int, dst any) (bool, error) {
	if !c.enabled() {
		return false, nil
	}
	data, err := c.rdb.HGet(ctx, feedKey(promptID), feedField(order, limit)).Bytes()
	if errors.Is(err, redis.Nil) {
		c.record(false)
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := json.Unmarshal(data, dst); err != nil {
		return false, err
	}
	c.record(true)
	return true, nil
}

// SetFeed stores a feed page. All pages of a prompt share one hash so a
// single delete invalidates them together.
func (c *CacheService) SetFeed(ctx context.Context, promptID, order string, limit int, page any) error {
	if !c.enabled() {
		return nil
	}
	b, err := json.Marshal(page)
	if err != nil {
		return err
	}
	key := feedKey(promptID)
	_, err = c.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, key, feedField(order, limit), b)
		pipe.Expire(ctx, key, FeedCacheTTL)
		return nil
	})
	return err
}

// InvalidateFeed drops every cached page of a prompt's feed.
func (c *CacheService) InvalidateFeed(ctx context.Context, promptID string) error {
	if !c.enabled() {
		return nil
	}
	return c.rdb.Del(ctx, feedKey(promptID)).Err()
}

// GetPrompt loads the cached prompt for a day into dst.
func (c *CacheService) GetPrompt(ctx context.Context, dayKey string, dst any) (bool, error) {
	if !c.enabled() {
		return false, nil
	}
	data, err := c.rdb.Get(ctx, promptKey(dayKey)).Bytes()
	if errors.Is(err, redis.Nil) {
		c.record(false)
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := json.Unmarshal(data, dst); err != nil {
		return false, err
	}
	c.record(true)
	return true, nil
}

// SetPrompt caches a day's prompt for at most ttl.
func (c *CacheService) SetPrompt(ctx context.Context, dayKey string, prompt any, ttl time.Duration) error {
	if !c.enabled() || ttl <= 0 {
		return nil
	}
	b, err := json.Marshal(prompt)
	if err != nil {
		return err
	}
	return c.rdb.Set(ctx, promptKey(dayKey), b, ttl).Err()
}

// InvalidatePrompt removes a day's cached prompt.
func (c *CacheService) InvalidatePrompt(ctx context.Context, dayKey string) error {
	if !c.enabled() {
		return nil
	}
	return c.rdb.Del(ctx, promptKey(dayKey)).Err()
}

// Close shuts down the Redis connection.
func (c *CacheService) Close() error {
	if !c.enabled() {
		return nil
	}
	return c.rdb.Close()
}

func feedKey(promptID string) string {
	return fmt.Sprintf("feed:%s", promptID)
}

func feedField(order string, limit int) string {
	return fmt.Sprintf("%s:%d", order, limit)
}

func promptKey(dayKey string) string {
	return fmt.Sprintf("prompt:%s", dayKey)
}
