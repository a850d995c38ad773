// Package cache builds Redis clients from configuration.
// This is part of the platform layer and contains no business logic.
package cache

import (
	"context"
	"crypto/tls"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// NewRedisClient parses redisURL and applies the TLS override. The client
// is pinged once so a bad URL fails at startup.
func NewRedisClient(ctx context.Context, redisURL string, tlsInsecure bool) (*redis.Client, error) {
	if redisURL == "" {
		return nil, fmt.Errorf("redis url not configured")
	}

	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	opt.TLSConfig = TLSConfig(opt.TLSConfig, tlsInsecure)

	client := redis.NewClient(opt)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return client, nil
}

// TLSConfig returns base with certificate checks disabled when insecure is set.
// A nil base stays nil unless insecure forces TLS on.
func TLSConfig(base *tls.Config, insecure bool) *tls.Config {
	if base != nil {
		clone := base.Clone()
		if insecure {
			clone.InsecureSkipVerify = true
		}
		return clone
	}
	if insecure {
		return &tls.Config{InsecureSkipVerify: true}
	}
	return nil
}

// PingAdapter exposes a Redis client as a health checker.
type PingAdapter struct {
	client *redis.Client
}

// NewPingAdapter wraps client for readiness checks.
func NewPingAdapter(client *redis.Client) *PingAdapter {
	return &PingAdapter{client: client}
}

// Ping reports whether Redis answers.
func (a *PingAdapter) Ping(ctx context.Context) error {
	return a.client.Ping(ctx).Err()
}
