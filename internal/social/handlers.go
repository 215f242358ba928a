package social

import (
	"backend-friendbook/internal/auth"

	"github.com/gofiber/fiber/v2"
)

// RegisterRoutes mounts the relationship endpoints on the user group.
func RegisterRoutes(r fiber.Router, svc *Service, authMiddleware fiber.Handler) {
	r.Get("/all-users", authMiddleware, func(c *fiber.Ctx) error {
		users, err := svc.AllUsers(c.UserContext(), auth.UserID(c))
		if err != nil {
			return err
		}
		return c.JSON(users)
	})

	r.Get("/stories", authMiddleware, func(c *fiber.Ctx) error {
		stories, err := svc.TimelineStories(c.UserContext(), auth.UserID(c))
		if err != nil {
			return err
		}
		return c.JSON(stories)
	})

	r.Get("/follow-status/:userId", authMiddleware, func(c *fiber.Ctx) error {
		status, err := svc.FollowStatus(c.UserContext(), auth.UserID(c), c.Params("userId"))
		if err != nil {
			return err
		}
		return c.JSON(status)
	})

	r.Put("/follow-unfollow/:userId", authMiddleware, func(c *fiber.Ctx) error {
		res, err := svc.FollowOrUnfollow(c.UserContext(), auth.UserID(c), c.Params("userId"))
		if err != nil {
			return err
		}
		return c.JSON(res)
	})

	r.Delete("/friend/:userId", authMiddleware, func(c *fiber.Ctx) error {
		if err := svc.RemoveFriend(c.UserContext(), auth.UserID(c), c.Params("userId")); err != nil {
			return err
		}
		return c.JSON(fiber.Map{"message": "friend removed"})
	})

	r.Get("/friends/:userId", authMiddleware, func(c *fiber.Ctx) error {
		friends, err := svc.Friends(c.UserContext(), c.Params("userId"))
		if err != nil {
			return err
		}
		return c.JSON(friends)
	})

	r.Get("/followers/:userId", authMiddleware, func(c *fiber.Ctx) error {
		users, err := svc.Followers(c.UserContext(), c.Params("userId"))
		if err != nil {
			return err
		}
		return c.JSON(users)
	})

	r.Get("/followings/:userId", authMiddleware, func(c *fiber.Ctx) error {
		users, err := svc.Followings(c.UserContext(), c.Params("userId"))
		if err != nil {
			return err
		}
		return c.JSON(users)
	})

	r.Get("/suggestions", authMiddleware, func(c *fiber.Ctx) error {
		users, err := svc.Suggestions(c.UserContext(), auth.UserID(c))
		if err != nil {
			return err
		}
		return c.JSON(users)
	})
}
