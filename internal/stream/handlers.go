package stream

import (
	"context"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
)

const localUserID = "stream_user_id"

// TokenValidator resolves a session token to its user.
type TokenValidator interface {
	Validate(ctx context.Context, token string) (string, error)
}

// authorize accepts the connection only for the owner of the stream. Browsers
// cannot set headers on a websocket, so the token comes in the query string.
func authorize(tokens TokenValidator) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := c.Query("token")
		if token == "" {
			return fiber.NewError(fiber.StatusUnauthorized, "missing token")
		}
		userID, err := tokens.Validate(c.UserContext(), token)
		if err != nil || userID != c.Params("userId") {
			return fiber.NewError(fiber.StatusUnauthorized, "please authenticate")
		}
		if !websocket.IsWebSocketUpgrade(c) {
			return fiber.ErrUpgradeRequired
		}
		c.Locals(localUserID, userID)
		return c.Next()
	}
}

func RegisterRoutes(r fiber.Router, hub *Hub, tokens TokenValidator) {
	r.Get("/ws/:userId", authorize(tokens), websocket.New(func(c *websocket.Conn) {
		userID, _ := c.Locals(localUserID).(string)
		client := hub.Register(userID)
		defer hub.Unregister(client)

		go func() {
			for msg := range client.Send {
				if err := c.WriteMessage(websocket.TextMessage, msg); err != nil {
					return
				}
			}
		}()

		for {
			if _, _, err := c.ReadMessage(); err != nil {
				break
			}
		}
	}))
}
