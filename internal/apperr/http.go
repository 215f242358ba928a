package apperr

import (
	"errors"

	"backend-friendbook/internal/logger"

	"github.com/gofiber/fiber/v2"
)

func (k Kind) Status() int {
	switch k {
	case BadRequest:
		return fiber.StatusBadRequest
	case Unauthorized:
		return fiber.StatusUnauthorized
	case Forbidden:
		return fiber.StatusForbidden
	case NotFound:
		return fiber.StatusNotFound
	default:
		return fiber.StatusInternalServerError
	}
}

func kindFromStatus(code int) Kind {
	switch code {
	case fiber.StatusBadRequest, fiber.StatusRequestEntityTooLarge, fiber.StatusUnprocessableEntity:
		return BadRequest
	case fiber.StatusUnauthorized:
		return Unauthorized
	case fiber.StatusForbidden:
		return Forbidden
	case fiber.StatusNotFound, fiber.StatusMethodNotAllowed:
		return NotFound
	}
	return Internal
}

type body struct {
	Error struct {
		Kind    string `json:"kind"`
		Message string `json:"message"`
	} `json:"error"`
}

// ErrorHandler renders every error returned by a handler in one envelope.
// Internal failures are logged and their details withheld.
func ErrorHandler(log *logger.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		var (
			out    body
			status int
			fe     *fiber.Error
		)
		if errors.As(err, &fe) {
			kind := kindFromStatus(fe.Code)
			status = fe.Code
			out.Error.Kind = kind.String()
			out.Error.Message = fe.Message
			if kind == Internal {
				status = fiber.StatusInternalServerError
				out.Error.Message = MessageOf(err)
			}
		} else {
			kind := KindOf(err)
			status = kind.Status()
			out.Error.Kind = kind.String()
			out.Error.Message = MessageOf(err)
		}

		if status >= fiber.StatusInternalServerError {
			log.Error("request failed", "method", c.Method(), "path", c.Path(), "error", err)
		}
		return c.Status(status).JSON(out)
	}
}
