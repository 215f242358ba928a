// Package otp keeps one pending verification code per email in Redis.
package otp

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	TTL       = 5 * time.Minute
	keyPrefix = "otp:"
	minCode   = 100000
	codeSpan  = 900000
)

// consumeScript deletes the session only when the stored code matches, so a
// single caller wins under concurrency.
var consumeScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// ErrUnavailable is returned by every call when no Redis is configured.
var ErrUnavailable = errors.New("otp store unavailable: redis is not configured")

type Store struct {
	rdb *redis.Client
}

func NewStore(rdb *redis.Client) *Store {
	return &Store{rdb: rdb}
}

// Generate returns a uniformly random six digit code.
func Generate() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(codeSpan))
	if err != nil {
		return "", fmt.Errorf("generate otp: %w", err)
	}
	return fmt.Sprintf("%06d", n.Int64()+minCode), nil
}

func key(email string) string {
	return keyPrefix + strings.ToLower(email)
}

// Put replaces any pending code for email and restarts its TTL.
func (s *Store) Put(ctx context.Context, email, code string) error {
	if s.rdb == nil {
		return ErrUnavailable
	}
	if err := s.rdb.Set(ctx, key(email), code, TTL).Err(); err != nil {
		return fmt.Errorf("store otp: %w", err)
	}
	return nil
}

// Matches reports whether code is the live code for email without consuming it.
func (s *Store) Matches(ctx context.Context, email, code string) (bool, error) {
	if s.rdb == nil {
		return false, ErrUnavailable
	}
	stored, err := s.rdb.Get(ctx, key(email)).Result()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("read otp: %w", err)
	}
	return code != "" && stored == code, nil
}

// Consume deletes the session iff it matches and reports whether it did.
func (s *Store) Consume(ctx context.Context, email, code string) (bool, error) {
	if s.rdb == nil {
		return false, ErrUnavailable
	}
	if code == "" {
		return false, nil
	}
	n, err := consumeScript.Run(ctx, s.rdb, []string{key(email)}, code).Int()
	if err != nil {
		return false, fmt.Errorf("consume otp: %w", err)
	}
	return n == 1, nil
}
