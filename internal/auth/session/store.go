// Package session holds live sessions and login-failure counters in
// Redis. Key TTLs, not token contents, decide expiry.
package session

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/BatStateU-CoE/pap-tracker-backend/internal/auth/domain"
)

const (
	sessionKeyPrefix = "auth:sess:"    // auth:sess:{email}:{jti}
	lockoutKeyPrefix = "auth:lockout:" // failed-attempt counter per email
)

type Store struct {
	client *redis.Client
	secret []byte
	ttl    time.Duration

	lockoutAttempts int
	lockoutWindow   time.Duration
}

func NewStore(client *redis.Client, secret string, ttl time.Duration, lockoutAttempts int, lockoutWindow time.Duration) *Store {
	return &Store{
		client:          client,
		secret:          []byte(secret),
		ttl:             ttl,
		lockoutAttempts: lockoutAttempts,
		lockoutWindow:   lockoutWindow,
	}
}

// Create opens a session and returns its token. The token is a signed
// claim set, but callers treat it as opaque; validation always goes back
// to the Redis entry.
func (s *Store) Create(ctx context.Context, user domain.User) (string, error) {
	jti := uuid.New().String()
	now := time.Now().UTC()

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": user.Email,
		"jti": jti,
		"iat": now.Unix(),
	}).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign session token: %w", err)
	}

	sess := domain.Session{User: user, Token: token, IssuedAt: now}
	payload, err := json.Marshal(sess)
	if err != nil {
		return "", fmt.Errorf("marshal session: %w", err)
	}

	if err := s.client.Set(ctx, s.sessionKey(user.Email, jti), payload, s.ttl).Err(); err != nil {
		return "", fmt.Errorf("store session: %w", err)
	}
	return token, nil
}

// Validate returns the live session for (email, token), or
// domain.ErrSessionInvalid for anything missing, expired, forged, or
// mismatched.
func (s *Store) Validate(ctx context.Context, email, token string) (*domain.Session, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || token == "" {
		return nil, domain.ErrSessionInvalid
	}

	jti, sub, err := s.parseToken(token)
	if err != nil || sub != email {
		return nil, domain.ErrSessionInvalid
	}

	raw, err := s.client.Get(ctx, s.sessionKey(email, jti)).Result()
	if err == redis.Nil {
		return nil, domain.ErrSessionInvalid
	}
	if err != nil {
		return nil, err
	}

	var sess domain.Session
	if err := json.Unmarshal([]byte(raw), &sess); err != nil {
		return nil, domain.ErrSessionInvalid
	}
	if sess.User.Email == "" || sess.Token != token {
		return nil, domain.ErrSessionInvalid
	}
	return &sess, nil
}

// Destroy removes the session. Unknown tokens are a no-op.
func (s *Store) Destroy(ctx context.Context, email, token string) error {
	email = strings.ToLower(strings.TrimSpace(email))
	jti, _, err := s.parseToken(token)
	if err != nil {
		return nil
	}
	return s.client.Del(ctx, s.sessionKey(email, jti)).Err()
}

// RecordFailure bumps the failure counter and reports whether the
// account is now locked. The counter expires on its own after the
// lockout window.
func (s *Store) RecordFailure(ctx context.Context, email string) (bool, error) {
	key := lockoutKeyPrefix + strings.ToLower(strings.TrimSpace(email))

	pipe := s.client.Pipeline()
	count := pipe.Incr(ctx, key)
	pipe.Expire(ctx, key, s.lockoutWindow)
	if _, err := pipe.Exec(ctx); err != nil {
		return false, err
	}
	return count.Val() >= int64(s.lockoutAttempts), nil
}

// Locked reports whether the account has hit the failure threshold
// within the current window.
func (s *Store) Locked(ctx context.Context, email string) (bool, error) {
	key := lockoutKeyPrefix + strings.ToLower(strings.TrimSpace(email))

	count, err := s.client.Get(ctx, key).Int64()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return count >= int64(s.lockoutAttempts), nil
}

// ClearFailures resets the counter after a successful login.
func (s *Store) ClearFailures(ctx context.Context, email string) error {
	key := lockoutKeyPrefix + strings.ToLower(strings.TrimSpace(email))
	return s.client.Del(ctx, key).Err()
}

func (s *Store) sessionKey(email, jti string) string {
	return sessionKeyPrefix + email + ":" + jti
}

func (s *Store) parseToken(token string) (jti, sub string, err error) {
	parsed, err := jwt.Parse(token, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil || !parsed.Valid {
		return "", "", domain.ErrSessionInvalid
	}

	claims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		return "", "", domain.ErrSessionInvalid
	}
	jti, _ = claims["jti"].(string)
	sub, _ = claims["sub"].(string)
	if jti == "" || sub == "" {
		return "", "", domain.ErrSessionInvalid
	}
	return jti, sub, nil
}
