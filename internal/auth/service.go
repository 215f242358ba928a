package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const tokenTTL = 30 * 24 * time.Hour

var (
	ErrTokenInvalid = errors.New("token invalid")
	// ErrSessionLookup wraps a failure of the session store itself.
	ErrSessionLookup = errors.New("session lookup failed")
)

// Sessions is the slice of the user store the issuer needs: a token is only
// valid while it is still in the user's active list.
type Sessions interface {
	HasToken(ctx context.Context, userID, token string) (bool, error)
}

type Service struct {
	secret   []byte
	sessions Sessions
	now      func() time.Time
}

type Claims struct {
	UserID string `json:"user_id"`
	jwt.RegisteredClaims
}

func NewService(secret string, sessions Sessions) *Service {
	return &Service{
		secret:   []byte(secret),
		sessions: sessions,
		now:      time.Now,
	}
}

// Issue signs a new session token for userID. Callers persist it on the user.
func (s *Service) Issue(userID string) (string, error) {
	now := s.now()
	claims := Claims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			ExpiresAt: jwt.NewNumericDate(now.Add(tokenTTL)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

// Validate checks the signature and that the token is still an active session.
func (s *Service) Validate(ctx context.Context, token string) (string, error) {
	claims, err := s.parseToken(token)
	if err != nil {
		return "", err
	}
	if s.sessions == nil {
		return claims.UserID, nil
	}
	ok, err := s.sessions.HasToken(ctx, claims.UserID, token)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrSessionLookup, err)
	}
	if !ok {
		return "", ErrTokenInvalid
	}
	return claims.UserID, nil
}

func (s *Service) parseToken(token string) (*Claims, error) {
	parsed, err := jwt.ParseWithClaims(token, &Claims{}, func(_ *jwt.Token) (interface{}, error) {
		return s.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, err
	}
	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid || claims.UserID == "" {
		return nil, ErrTokenInvalid
	}
	return claims, nil
}
