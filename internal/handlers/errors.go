package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/example/pandol/internal/middleware"
	"github.com/example/pandol/internal/report"
	"github.com/example/pandol/internal/repository"
	"github.com/example/pandol/internal/services"
	"github.com/example/pandol/internal/utils"
)

var errorStatuses = []struct {
	err    error
	status int
}{
	{repository.ErrNotFound, fiber.StatusNotFound},
	{repository.ErrDuplicate, fiber.StatusConflict},
	{gorm.ErrDuplicatedKey, fiber.StatusConflict},
	{gorm.ErrForeignKeyViolated, fiber.StatusConflict},
	{services.ErrAlreadyRegistered, fiber.StatusConflict},
	{repository.ErrCreditLimitExceeded, fiber.StatusUnprocessableEntity},
	{repository.ErrNegativeBalance, fiber.StatusUnprocessableEntity},
	{repository.ErrInsufficientStock, fiber.StatusUnprocessableEntity},
	{services.ErrMemberNotActive, fiber.StatusUnprocessableEntity},
	{services.ErrInvalidCredentials, fiber.StatusUnauthorized},
	{services.ErrUnauthenticated, fiber.StatusUnauthorized},
	{repository.ErrInvalidCreditType, fiber.StatusBadRequest},
	{services.ErrInvalidCreditType, fiber.StatusBadRequest},
	{services.ErrInvalidAmount, fiber.StatusBadRequest},
	{services.ErrInvalidResetToken, fiber.StatusBadRequest},
	{services.ErrEmptySale, fiber.StatusBadRequest},
	{services.ErrInvalidQuantity, fiber.StatusBadRequest},
	{services.ErrInvalidPaymentMethod, fiber.StatusBadRequest},
	{services.ErrCreditRequiresMember, fiber.StatusBadRequest},
	{services.ErrInvalidDiscount, fiber.StatusBadRequest},
	{services.ErrInvalidEmail, fiber.StatusBadRequest},
	{services.ErrInvalidProfileImage, fiber.StatusBadRequest},
	{services.ErrProfileImageTooBig, fiber.StatusRequestEntityTooLarge},
	{utils.ErrPasswordTooShort, fiber.StatusBadRequest},
	{report.ErrUnknownKind, fiber.StatusBadRequest},
	{report.ErrUnknownTimeRange, fiber.StatusBadRequest},
}

// StatusFor maps a domain error to an HTTP status. Unknown errors are 500.
func StatusFor(err error) int {
	var fe *fiber.Error
	if errors.As(err, &fe) {
		return fe.Code
	}
	for _, e := range errorStatuses {
		if errors.Is(err, e.err) {
			return e.status
		}
	}
	return fiber.StatusInternalServerError
}

// ErrorHandler renders every error as {"success":false,"message":...}.
// Internal errors are logged and their details hidden.
func ErrorHandler(log logrus.FieldLogger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		status := StatusFor(err)
		message := err.Error()

		var fe *fiber.Error
		if errors.As(err, &fe) {
			message = fe.Message
		} else if status == fiber.StatusInternalServerError {
			middleware.Logger(c, log).WithError(err).Error("request failed")
			message = "internal server error"
		}

		return c.Status(status).JSON(fiber.Map{
			"success": false,
			"message": message,
		})
	}
}

// unavailable is the retry response for member views that could not be built.
func unavailable(c *fiber.Ctx) error {
	return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
		"success": false,
		"message": "data is temporarily unavailable, please try again",
	})
}

func parseID(c *fiber.Ctx) (uint, error) {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return 0, fiber.NewError(fiber.StatusBadRequest, "invalid id")
	}
	return uint(id), nil
}
