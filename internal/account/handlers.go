package account

import (
	"errors"
	"time"

	"backend-friendbook/internal/apperr"
	"backend-friendbook/internal/auth"
	"backend-friendbook/internal/media"
	"backend-friendbook/internal/store"

	"github.com/gofiber/fiber/v2"
	"github.com/valyala/fasthttp"
)

const (
	storyField          = "story"
	profilePictureField = "profilePicture"
	coverPictureField   = "coverPicture"
	tokenCookie         = "token"
	tokenCookieTTL      = 30 * 24 * time.Hour
)

func parse(c *fiber.Ctx, out any) error {
	if err := c.BodyParser(out); err != nil {
		return apperr.BadRequestf("invalid request body")
	}
	return nil
}

// formUpload returns the optional file sent under field.
func formUpload(c *fiber.Ctx, field string) (*media.Upload, error) {
	fh, err := c.FormFile(field)
	if errors.Is(err, fasthttp.ErrMissingFile) || errors.Is(err, fasthttp.ErrNoMultipartForm) {
		return nil, nil
	}
	if err != nil {
		return nil, apperr.BadRequestf("invalid upload")
	}
	up, err := media.FromFileHeader(fh)
	if err != nil {
		return nil, err
	}
	return &up, nil
}

// profileRequest reads a profile update sent either as JSON or as a
// multipart form with optional pictures.
func profileRequest(c *fiber.Ctx) (map[string]any, ProfileFiles, error) {
	var files ProfileFiles
	fields := map[string]any{}

	form, err := c.MultipartForm()
	if err != nil {
		if len(c.Body()) == 0 {
			return fields, files, nil
		}
		if err := parse(c, &fields); err != nil {
			return nil, files, err
		}
		return fields, files, nil
	}
	for name, values := range form.Value {
		if len(values) > 0 {
			fields[name] = values[0]
		}
	}
	if files.ProfilePicture, err = formUpload(c, profilePictureField); err != nil {
		return nil, files, err
	}
	if files.CoverPicture, err = formUpload(c, coverPictureField); err != nil {
		return nil, files, err
	}
	return fields, files, nil
}

func sendMedia(c *fiber.Ctx, m Media) error {
	if m.RedirectURL != "" {
		return c.Redirect(m.RedirectURL, fiber.StatusFound)
	}
	c.Set(fiber.HeaderContentType, m.Mimetype)
	return c.Send(m.Data)
}

// RegisterRoutes mounts the account endpoints on the user group.
func RegisterRoutes(r fiber.Router, svc *Service, authMiddleware fiber.Handler) {
	r.Post("/send-verification-otp", func(c *fiber.Ctx) error {
		var req EmailInput
		if err := parse(c, &req); err != nil {
			return err
		}
		if err := svc.SendVerificationOtp(c.UserContext(), req); err != nil {
			return err
		}
		return c.JSON(fiber.Map{"message": "OTP sent"})
	})

	r.Post("/register", func(c *fiber.Ctx) error {
		var req RegisterInput
		if err := parse(c, &req); err != nil {
			return err
		}
		res, err := svc.Register(c.UserContext(), req)
		if err != nil {
			return err
		}
		return c.Status(fiber.StatusCreated).JSON(res)
	})

	r.Post("/login", func(c *fiber.Ctx) error {
		var req LoginInput
		if err := parse(c, &req); err != nil {
			return err
		}
		res, err := svc.Login(c.UserContext(), req)
		if err != nil {
			return err
		}
		return c.JSON(res)
	})

	r.Post("/logout", authMiddleware, func(c *fiber.Ctx) error {
		if err := svc.Logout(c.UserContext(), auth.UserID(c), auth.Token(c)); err != nil {
			return err
		}
		return c.JSON(fiber.Map{"message": "logged out"})
	})

	r.Post("/forgot-password", func(c *fiber.Ctx) error {
		var req EmailInput
		if err := parse(c, &req); err != nil {
			return err
		}
		if err := svc.SendForgotOtp(c.UserContext(), req); err != nil {
			return err
		}
		return c.JSON(fiber.Map{"message": "OTP sent"})
	})

	r.Post("/verify-otp", func(c *fiber.Ctx) error {
		var req VerifyOTPInput
		if err := parse(c, &req); err != nil {
			return err
		}
		if err := svc.VerifyOtp(c.UserContext(), req); err != nil {
			return err
		}
		return c.JSON(fiber.Map{"message": "OTP verified"})
	})

	r.Post("/reset-password", func(c *fiber.Ctx) error {
		var req ResetPasswordInput
		if err := parse(c, &req); err != nil {
			return err
		}
		if err := svc.ResetPassword(c.UserContext(), req); err != nil {
			return err
		}
		return c.JSON(fiber.Map{"message": "password updated"})
	})

	r.Get("/", authMiddleware, func(c *fiber.Ctx) error {
		u, err := svc.GetUser(c.UserContext(), c.Query("userId"), c.Query("username"))
		if err != nil {
			return err
		}
		return c.JSON(u)
	})

	r.Get("/me", authMiddleware, func(c *fiber.Ctx) error {
		u, err := svc.Me(c.UserContext(), auth.UserID(c))
		if err != nil {
			return err
		}
		return c.JSON(u)
	})

	r.Patch("/me", authMiddleware, func(c *fiber.Ctx) error {
		fields, files, err := profileRequest(c)
		if err != nil {
			return err
		}
		u, err := svc.UpdateProfile(c.UserContext(), auth.UserID(c), fields, files)
		if err != nil {
			return err
		}
		return c.JSON(u)
	})

	r.Delete("/me", authMiddleware, func(c *fiber.Ctx) error {
		if err := svc.DeleteAccount(c.UserContext(), auth.UserID(c)); err != nil {
			return err
		}
		return c.JSON(fiber.Map{"message": "account deleted"})
	})

	r.Get("/profile-picture/:userId", func(c *fiber.Ctx) error {
		m, err := svc.UserMedia(c.UserContext(), c.Params("userId"), store.MediaProfilePicture)
		if err != nil {
			return err
		}
		return sendMedia(c, m)
	})

	r.Get("/cover-picture/:userId", func(c *fiber.Ctx) error {
		m, err := svc.UserMedia(c.UserContext(), c.Params("userId"), store.MediaCoverPicture)
		if err != nil {
			return err
		}
		return sendMedia(c, m)
	})

	r.Put("/story", authMiddleware, func(c *fiber.Ctx) error {
		file, err := formUpload(c, storyField)
		if err != nil {
			return err
		}
		u, err := svc.SetStory(c.UserContext(), auth.UserID(c), file)
		if err != nil {
			return err
		}
		return c.JSON(u)
	})

	r.Get("/story/:userId", authMiddleware, func(c *fiber.Ctx) error {
		m, err := svc.UserMedia(c.UserContext(), c.Params("userId"), store.MediaStory)
		if err != nil {
			return err
		}
		return sendMedia(c, m)
	})
}

// RegisterOAuthRoutes mounts the Google callback. Both outcomes end in a
// redirect to the frontend at origin.
func RegisterOAuthRoutes(r fiber.Router, svc *Service, origin string) {
	r.Get("/google", func(c *fiber.Ctx) error {
		res, err := svc.GoogleOAuth(c.UserContext(), c.Query("code"))
		if err != nil {
			svc.log.Warn("google sign-in failed", "error", err)
			return c.Redirect(origin+"/oauth/error", fiber.StatusFound)
		}
		c.Cookie(&fiber.Cookie{
			Name:     tokenCookie,
			Value:    res.Token,
			Path:     "/",
			Expires:  time.Now().Add(tokenCookieTTL),
			SameSite: fiber.CookieSameSiteLaxMode,
		})
		return c.Redirect(origin, fiber.StatusFound)
	})
}
