// Package auth reads broker session material for the pipeline. Session
// creation and expiry belong to the auth collaborator; this package only
// looks up what it stored, once per request, and caches nothing.
package auth

import (
	"context"
	"fmt"
	"time"

	goredis "github.com/go-redis/redis/v8"

	"tradeterm/internal/model"
)

// RedisProvider implements model.CredentialProvider against the session
// hashes the auth service maintains under "user:{clientID}".
type RedisProvider struct {
	client *goredis.Client
}

// NewRedisProvider wraps an existing redis client.
func NewRedisProvider(client *goredis.Client) *RedisProvider {
	return &RedisProvider{client: client}
}

// Credentials returns the stored access token and API key for clientID,
// or nil when no session hash exists.
func (p *RedisProvider) Credentials(ctx context.Context, clientID string) (*model.Credentials, error) {
	data, err := p.client.HGetAll(ctx, "user:"+clientID).Result()
	if err != nil {
		return nil, fmt.Errorf("redis session lookup: %w", err)
	}
	if len(data) == 0 {
		return nil, nil
	}

	creds := &model.Credentials{
		AccessToken: data["access_token"],
		APIKey:      data["api_key"],
	}
	if creds.AccessToken == "" || creds.APIKey == "" {
		return nil, nil
	}
	return creds, nil
}

// Store writes a session hash with a TTL. Used by the session bootstrap
// in cmd/terminal; the auth collaborator owns this key in production.
func (p *RedisProvider) Store(ctx context.Context, clientID string, creds model.Credentials, ttlSeconds int) error {
	key := "user:" + clientID
	if err := p.client.HSet(ctx, key,
		"access_token", creds.AccessToken,
		"api_key", creds.APIKey,
	).Err(); err != nil {
		return fmt.Errorf("redis session store: %w", err)
	}
	if ttlSeconds > 0 {
		ttl := time.Duration(ttlSeconds) * time.Second
		if err := p.client.Expire(ctx, key, ttl).Err(); err != nil {
			return fmt.Errorf("redis session expire: %w", err)
		}
	}
	return nil
}
