package account

import (
	"context"
	"errors"
	"strings"
	"unicode"

	"backend-friendbook/internal/apperr"
	"backend-friendbook/internal/auth"
	"backend-friendbook/internal/metrics"
	"backend-friendbook/internal/store"

	"github.com/google/uuid"
)

const maxUsernameLength = 20

var errEmailNotVerified = apperr.New(apperr.Forbidden, "google account email is not verified")

// GoogleOAuth signs a Google user in, creating the account on first use.
func (s *Service) GoogleOAuth(ctx context.Context, code string) (AuthResult, error) {
	if code == "" {
		return AuthResult{}, apperr.BadRequestf("code is required")
	}
	id, err := s.google.Exchange(ctx, code)
	if err != nil {
		return AuthResult{}, apperr.Wrap(apperr.Unauthorized, "google sign-in failed", err)
	}
	if !id.EmailVerified {
		return AuthResult{}, errEmailNotVerified
	}
	email := normalizeEmail(id.Email)

	u, err := s.st.Users.ByEmail(ctx, email)
	switch {
	case err == nil:
		return s.startSession(ctx, u)
	case !errors.Is(err, store.ErrNotFound):
		return AuthResult{}, apperr.FromStore(err, "load user")
	}

	// Nobody knows this password; the account signs in through Google or
	// a password reset.
	hash, err := auth.HashPassword(uuid.NewString())
	if err != nil {
		return AuthResult{}, apperr.Internalf(err, "hash password")
	}
	u = store.User{
		ID:           uuid.NewString(),
		Username:     usernameFrom(id.Name, email),
		Email:        email,
		PasswordHash: hash,
		AvatarURL:    id.Picture,
	}
	res, err := s.create(ctx, &u)
	if err != nil {
		return AuthResult{}, err
	}
	metrics.Action(metrics.ActionSignup)
	return res, nil
}

const minUsernameLength = 3

// usernameFrom derives a username from a display name, falling back to the
// local part of the email. Short results get a "user_" prefix so the name
// always satisfies the signup length rules.
func usernameFrom(name, email string) string {
	clean := sanitizeUsername(name)
	if len([]rune(clean)) < minUsernameLength {
		local, _, _ := strings.Cut(email, "@")
		clean = sanitizeUsername(local)
	}
	if len([]rune(clean)) < minUsernameLength {
		clean = "user_" + clean
	}
	if r := []rune(clean); len(r) > maxUsernameLength {
		clean = string(r[:maxUsernameLength])
	}
	return clean
}

func sanitizeUsername(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_' || r == '.' {
			return unicode.ToLower(r)
		}
		if unicode.IsSpace(r) {
			return '_'
		}
		return -1
	}, strings.TrimSpace(s))
}
