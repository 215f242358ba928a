package engagement

import (
	"backend-friendbook/internal/apperr"
	"backend-friendbook/internal/auth"

	"github.com/gofiber/fiber/v2"
)

// RegisterRoutes mounts /comment and /like under r.
func RegisterRoutes(r fiber.Router, svc *Service, authMiddleware fiber.Handler) {
	comments := r.Group("/comment", authMiddleware)

	comments.Post("/:postId", func(c *fiber.Ctx) error {
		var req CommentInput
		if err := c.BodyParser(&req); err != nil {
			return apperr.BadRequestf("invalid request body")
		}
		res, err := svc.AddComment(c.UserContext(), auth.UserID(c), c.Params("postId"), req.Message)
		if err != nil {
			return err
		}
		return c.Status(fiber.StatusCreated).JSON(res)
	})

	comments.Patch("/:commentId", func(c *fiber.Ctx) error {
		var req CommentInput
		if err := c.BodyParser(&req); err != nil {
			return apperr.BadRequestf("invalid request body")
		}
		comment, err := svc.UpdateComment(c.UserContext(), auth.UserID(c), c.Params("commentId"), req.Message)
		if err != nil {
			return err
		}
		return c.JSON(comment)
	})

	comments.Delete("/:commentId", func(c *fiber.Ctx) error {
		res, err := svc.DeleteComment(c.UserContext(), auth.UserID(c), c.Params("commentId"))
		if err != nil {
			return err
		}
		return c.JSON(res)
	})

	comments.Get("/post/:postId", func(c *fiber.Ctx) error {
		list, err := svc.PostComments(c.UserContext(), c.Params("postId"))
		if err != nil {
			return err
		}
		return c.JSON(list)
	})

	likes := r.Group("/like", authMiddleware)

	likes.Put("/:postId", func(c *fiber.Ctx) error {
		res, err := svc.ToggleLike(c.UserContext(), auth.UserID(c), c.Params("postId"))
		if err != nil {
			return err
		}
		return c.JSON(res)
	})

	likes.Get("/status/:postId", func(c *fiber.Ctx) error {
		res, err := svc.LikeStatus(c.UserContext(), auth.UserID(c), c.Params("postId"))
		if err != nil {
			return err
		}
		return c.JSON(res)
	})
}
