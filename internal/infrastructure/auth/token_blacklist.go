package auth

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// TokenBlacklist revokes JWTs before they expire. Single tokens are revoked
// by jti on logout and refresh; a user's sessions are revoked all at once on
// a password change.
type TokenBlacklist interface {
	RevokeToken(ctx context.Context, jti string, ttl time.Duration) error
	IsTokenRevoked(ctx context.Context, jti string) (bool, error)
	// RevokeSessions rejects every token of userID issued before now
	RevokeSessions(ctx context.Context, userID string, ttl time.Duration) error
	IsSessionRevoked(ctx context.Context, userID string, issuedAt time.Time) (bool, error)
}

const blacklistKeyPrefix = "fincore:auth:"

// RedisTokenBlacklist keeps revocations in Redis so every API instance sees them
type RedisTokenBlacklist struct {
	client *redis.Client
	prefix string
}

// NewRedisTokenBlacklistWithClient uses an already connected client
func NewRedisTokenBlacklistWithClient(client *redis.Client) *RedisTokenBlacklist {
	return &RedisTokenBlacklist{client: client, prefix: blacklistKeyPrefix}
}

func (b *RedisTokenBlacklist) tokenKey(jti string) string {
	return b.prefix + "revoked:" + jti
}

func (b *RedisTokenBlacklist) sessionKey(userID string) string {
	return b.prefix + "sessions:" + userID
}

// RevokeToken stores jti until the token would have expired anyway
func (b *RedisTokenBlacklist) RevokeToken(ctx context.Context, jti string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	if err := b.client.Set(ctx, b.tokenKey(jti), 1, ttl).Err(); err != nil {
		return fmt.Errorf("revoke token: %w", err)
	}
	return nil
}

// IsTokenRevoked reports whether jti was revoked
func (b *RedisTokenBlacklist) IsTokenRevoked(ctx context.Context, jti string) (bool, error) {
	n, err := b.client.Exists(ctx, b.tokenKey(jti)).Result()
	if err != nil {
		return false, fmt.Errorf("check revoked token: %w", err)
	}
	return n > 0, nil
}

// RevokeSessions records the revocation time for userID. ttl should cover
// the longest lived token, after which the record is no longer needed.
func (b *RedisTokenBlacklist) RevokeSessions(ctx context.Context, userID string, ttl time.Duration) error {
	if err := b.client.Set(ctx, b.sessionKey(userID), time.Now().Unix(), ttl).Err(); err != nil {
		return fmt.Errorf("revoke sessions: %w", err)
	}
	return nil
}

// IsSessionRevoked reports whether a token issued at issuedAt predates the
// user's last session revocation
func (b *RedisTokenBlacklist) IsSessionRevoked(ctx context.Context, userID string, issuedAt time.Time) (bool, error) {
	raw, err := b.client.Get(ctx, b.sessionKey(userID)).Result()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("check revoked sessions: %w", err)
	}
	revokedAt, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return false, fmt.Errorf("parse session revocation %q: %w", raw, err)
	}
	// token timestamps have second precision
	return issuedAt.Unix() < revokedAt, nil
}

var _ TokenBlacklist = (*RedisTokenBlacklist)(nil)

// InMemoryTokenBlacklist serves a single instance when Redis is not configured
type InMemoryTokenBlacklist struct {
	mu       sync.Mutex
	tokens   map[string]time.Time // jti -> expiry
	sessions map[string]int64     // user id -> revoked at (unix seconds)
	now      func() time.Time
}

// NewInMemoryTokenBlacklist creates an empty blacklist
func NewInMemoryTokenBlacklist() *InMemoryTokenBlacklist {
	return &InMemoryTokenBlacklist{
		tokens:   make(map[string]time.Time),
		sessions: make(map[string]int64),
		now:      time.Now,
	}
}

func (b *InMemoryTokenBlacklist) RevokeToken(_ context.Context, jti string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.tokens[jti] = b.now().Add(ttl)
	return nil
}

func (b *InMemoryTokenBlacklist) IsTokenRevoked(_ context.Context, jti string) (bool, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	expiry, ok := b.tokens[jti]
	if !ok {
		return false, nil
	}
	if b.now().After(expiry) {
		delete(b.tokens, jti)
		return false, nil
	}
	return true, nil
}

func (b *InMemoryTokenBlacklist) RevokeSessions(_ context.Context, userID string, _ time.Duration) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.sessions[userID] = b.now().Unix()
	return nil
}

func (b *InMemoryTokenBlacklist) IsSessionRevoked(_ context.Context, userID string, issuedAt time.Time) (bool, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	revokedAt, ok := b.sessions[userID]
	return ok && issuedAt.Unix() < revokedAt, nil
}

var _ TokenBlacklist = (*InMemoryTokenBlacklist)(nil)
