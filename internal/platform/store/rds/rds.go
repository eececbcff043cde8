// Package rds provides a small redis key value client
package rds

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// Config configures the redis client
type Config struct {
	Addr     string
	Password string
	DB       int
}

// RDS wraps a go-redis client behind a string key value surface
type RDS struct {
	c *redis.Client
}

// Open connects and pings redis
func Open(ctx context.Context, cfg Config) (*RDS, error) {
	if cfg.Addr == "" {
		return nil, errors.New("rds: addr is required")
	}
	c := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := c.Ping(ctx).Err(); err != nil {
		_ = c.Close()
		return nil, err
	}
	return &RDS{c: c}, nil
}

// Get returns the value for key, found is false on a miss
func (r *RDS) Get(ctx context.Context, key string) (string, bool, error) {
	v, err := r.c.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return v, true, nil
}

// Set stores val under key; ttl <= 0 keeps the key without expiry
func (r *RDS) Set(ctx context.Context, key, val string, ttl time.Duration) error {
	if ttl < 0 {
		ttl = 0
	}
	return r.c.Set(ctx, key, val, ttl).Err()
}

// Ping checks connectivity
func (r *RDS) Ping(ctx context.Context) error { return r.c.Ping(ctx).Err() }

// Close releases the connection pool
func (r *RDS) Close() error { return r.c.Close() }
