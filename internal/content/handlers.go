package content

import (
	"errors"
	"mime/multipart"

	"backend-friendbook/internal/apperr"
	"backend-friendbook/internal/auth"
	"backend-friendbook/internal/media"

	"github.com/gofiber/fiber/v2"
	"github.com/valyala/fasthttp"
)

const imageField = "image"

// imageUpload returns the optional image of a multipart request.
func imageUpload(c *fiber.Ctx) (*media.Upload, error) {
	fh, err := c.FormFile(imageField)
	if errors.Is(err, fasthttp.ErrMissingFile) || errors.Is(err, fasthttp.ErrNoMultipartForm) {
		return nil, nil
	}
	if err != nil {
		return nil, apperr.BadRequestf("invalid upload")
	}
	return upload(fh)
}

func upload(fh *multipart.FileHeader) (*media.Upload, error) {
	up, err := media.FromFileHeader(fh)
	if err != nil {
		return nil, err
	}
	return &up, nil
}

func RegisterRoutes(r fiber.Router, svc *Service, authMiddleware fiber.Handler) {
	r.Get("/image/:postId", func(c *fiber.Ctx) error {
		img, err := svc.PostImage(c.UserContext(), c.Params("postId"))
		if err != nil {
			return err
		}
		c.Set(fiber.HeaderContentType, img.Mimetype)
		return c.Send(img.Data)
	})

	r.Post("/", authMiddleware, func(c *fiber.Ctx) error {
		var req PostInput
		if err := c.BodyParser(&req); err != nil && !errors.Is(err, fiber.ErrUnprocessableEntity) {
			return apperr.BadRequestf("invalid request body")
		}
		image, err := imageUpload(c)
		if err != nil {
			return err
		}
		post, err := svc.CreatePost(c.UserContext(), auth.UserID(c), req.Message, image)
		if err != nil {
			return err
		}
		return c.Status(fiber.StatusCreated).JSON(post)
	})

	r.Get("/timeline", authMiddleware, func(c *fiber.Ctx) error {
		posts, err := svc.Timeline(c.UserContext())
		if err != nil {
			return err
		}
		return c.JSON(posts)
	})

	r.Get("/user/:userId", authMiddleware, func(c *fiber.Ctx) error {
		posts, err := svc.UserPosts(c.UserContext(), c.Params("userId"))
		if err != nil {
			return err
		}
		return c.JSON(posts)
	})

	r.Patch("/:postId", authMiddleware, func(c *fiber.Ctx) error {
		var req PostInput
		if err := c.BodyParser(&req); err != nil && !errors.Is(err, fiber.ErrUnprocessableEntity) {
			return apperr.BadRequestf("invalid request body")
		}
		image, err := imageUpload(c)
		if err != nil {
			return err
		}
		post, err := svc.UpdatePost(c.UserContext(), auth.UserID(c), c.Params("postId"), req.Message, image)
		if err != nil {
			return err
		}
		return c.JSON(post)
	})

	r.Delete("/:postId", authMiddleware, func(c *fiber.Ctx) error {
		res, err := svc.DeletePost(c.UserContext(), auth.UserID(c), c.Params("postId"))
		if err != nil {
			return err
		}
		return c.JSON(res)
	})
}
