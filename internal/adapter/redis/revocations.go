// Package redis keeps revoked refresh tokens in Redis so revocation is
// shared by every instance of the service.
package redis

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

const keyPrefix = "jwt:revoked:"

// Connect parses a redis:// URL and pings the server.
func Connect(ctx context.Context, url string) (*goredis.Client, error) {
	opts, err := goredis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parsing redis url: %w", err)
	}
	client := goredis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("connecting to redis: %w", err)
	}

	slog.InfoContext(ctx, "redis connected", "addr", opts.Addr)
	return client, nil
}

// TokenRevocations stores token hashes with a TTL matching the token's
// remaining lifetime.
type TokenRevocations struct {
	client goredis.UniversalClient
}

// NewTokenRevocations wraps a connected client.
func NewTokenRevocations(client goredis.UniversalClient) *TokenRevocations {
	return &TokenRevocations{client: client}
}

func (r *TokenRevocations) Revoke(ctx context.Context, token string, ttl time.Duration) error {
	if err := r.client.Set(ctx, key(token), "revoked", ttl).Err(); err != nil {
		return fmt.Errorf("revoking token: %w", err)
	}
	return nil
}

func (r *TokenRevocations) IsRevoked(ctx context.Context, token string) (bool, error) {
	n, err := r.client.Exists(ctx, key(token)).Result()
	if err != nil {
		return false, fmt.Errorf("checking token: %w", err)
	}
	return n > 0, nil
}

// Ping reports whether Redis is reachable.
func (r *TokenRevocations) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

// key hashes the token so raw credentials never reach Redis.
func key(token string) string {
	sum := sha256.Sum256([]byte(token))
	return keyPrefix + hex.EncodeToString(sum[:])
}
