package auth

import (
	"errors"
	"strings"

	"backend-friendbook/internal/apperr"

	"github.com/gofiber/fiber/v2"
)

const (
	LocalUserID = "user_id"
	LocalToken  = "token"
)

// Middleware validates bearer tokens and stores user_id and token in locals.
func Middleware(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := bearerFromHeader(c.Get("Authorization"))
		if token == "" {
			return fiber.NewError(fiber.StatusUnauthorized, "missing bearer token")
		}

		userID, err := svc.Validate(c.UserContext(), token)
		if errors.Is(err, ErrSessionLookup) {
			return apperr.Internalf(err, "validate session")
		}
		if err != nil {
			return fiber.NewError(fiber.StatusUnauthorized, "please authenticate")
		}

		c.Locals(LocalUserID, userID)
		c.Locals(LocalToken, token)
		return c.Next()
	}
}

// UserID returns the authenticated user stored by Middleware.
func UserID(c *fiber.Ctx) string {
	id, _ := c.Locals(LocalUserID).(string)
	return id
}

// Token returns the bearer token the request was authenticated with.
func Token(c *fiber.Ctx) string {
	token, _ := c.Locals(LocalToken).(string)
	return token
}

func bearerFromHeader(header string) string {
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}
