// Package httperr turns domain errors into the {"message": ...} responses the
// UI shows inline or as a toast.
package httperr

import (
	"errors"

	"gearplanner/internal/gear"
	"gearplanner/internal/remote"
	"gearplanner/internal/store"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

const internalMessage = "Something went wrong. Please try again."

// From maps err to a fiber error carrying a user-safe message.
func From(err error) *fiber.Error {
	var fe *fiber.Error
	var re *remote.Error
	var ie *gear.InputError
	switch {
	case err == nil:
		return nil
	case errors.As(err, &fe):
		return fe
	case errors.As(err, &re):
		return fiber.NewError(re.HTTPStatus(), re.Message)
	case errors.As(err, &ie):
		return fiber.NewError(fiber.StatusBadRequest, ie.Message)
	case errors.Is(err, store.ErrNotFound):
		return fiber.NewError(fiber.StatusNotFound, "Gear list not found.")
	default:
		return fiber.NewError(fiber.StatusInternalServerError, internalMessage)
	}
}

// Handler is the app-wide fiber error handler.
func Handler(log *zap.SugaredLogger) fiber.ErrorHandler {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return func(c *fiber.Ctx, err error) error {
		fe := From(err)
		if fe.Code >= fiber.StatusInternalServerError {
			log.Errorw("request failed", "method", c.Method(), "path", c.Path(), "status", fe.Code, "error", err)
		}
		return c.Status(fe.Code).JSON(fiber.Map{"message": fe.Message})
	}
}
