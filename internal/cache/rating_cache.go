package cache

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// TitleRating is the cached aggregate of a title's review scores.
type TitleRating struct {
	Average float64
	Count   int64
}

// RatingCache keeps per-title review aggregates in redis so title listings
// don't recompute AVG(score) on every request. The database stays the
// source of truth; entries expire and are invalidated on review writes.
type RatingCache struct {
	client *redis.Client
	ttl    time.Duration
	ctx    context.Context
}

// NewRatingCache connects to redis and verifies the connection.
func NewRatingCache(addr, password string, ttl time.Duration) (*RatingCache, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:         addr,
		Password:     password,
		DB:           0,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &RatingCache{
		client: rdb,
		ttl:    ttl,
		ctx:    context.Background(),
	}, nil
}

func ratingKey(titleID int64) string {
	return fmt.Sprintf("rating:title:%d", titleID)
}

// Get returns the cached aggregate, or false on a miss. A nil cache always
// misses so callers can run without redis.
func (c *RatingCache) Get(titleID int64) (*TitleRating, bool) {
	if c == nil || c.client == nil {
		return nil, false
	}

	fields, err := c.client.HGetAll(c.ctx, ratingKey(titleID)).Result()
	if err != nil || len(fields) == 0 {
		return nil, false
	}

	avg, err := strconv.ParseFloat(fields["average"], 64)
	if err != nil {
		return nil, false
	}
	count, err := strconv.ParseInt(fields["count"], 10, 64)
	if err != nil {
		return nil, false
	}

	return &TitleRating{Average: avg, Count: count}, true
}

// Set stores the aggregate with the configured TTL.
func (c *RatingCache) Set(titleID int64, rating TitleRating) error {
	if c == nil || c.client == nil {
		return nil
	}

	key := ratingKey(titleID)
	fields := map[string]any{
		"average": rating.Average,
		"count":   rating.Count,
	}

	if err := c.client.HSet(c.ctx, key, fields).Err(); err != nil {
		return err
	}
	return c.client.Expire(c.ctx, key, c.ttl).Err()
}

// Invalidate drops the cached aggregate after a review write.
func (c *RatingCache) Invalidate(titleID int64) error {
	if c == nil || c.client == nil {
		return nil
	}
	return c.client.Del(c.ctx, ratingKey(titleID)).Err()
}

// Close releases the redis connection.
func (c *RatingCache) Close() error {
	if c == nil || c.client == nil {
		return nil
	}
	return c.client.Close()
}
