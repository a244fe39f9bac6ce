package middleware

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/simlens/simlens/internal/logging"
	"github.com/simlens/simlens/internal/models"
	"github.com/simlens/simlens/internal/services"
)

// StatusForCode maps a service error code to an HTTP status
func StatusForCode(code string) int {
	switch code {
	case services.CodeDataNotFound:
		return fiber.StatusNotFound
	case services.CodeInvalidParameter, services.CodeUnsupportedFormat:
		return fiber.StatusBadRequest
	case services.CodeMalformedCSV, services.CodeNoNumericData:
		return fiber.StatusUnprocessableEntity
	default:
		return fiber.StatusInternalServerError
	}
}

// ErrorHandler renders service errors and fiber errors as the JSON error
// envelope. Anything else is an internal error.
func ErrorHandler(logger *logging.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		status := fiber.StatusInternalServerError
		detail := models.ErrorDetail{
			Code:    services.CodeInternal,
			Message: "Internal Server Error",
		}

		var svcErr *services.ServiceError
		var fiberErr *fiber.Error
		switch {
		case errors.As(err, &svcErr):
			status = StatusForCode(svcErr.Code)
			detail.Code = svcErr.Code
			detail.Message = svcErr.Message
			detail.Details = svcErr.Details
		case errors.As(err, &fiberErr):
			status = fiberErr.Code
			detail.Code = "ERROR"
			detail.Message = fiberErr.Message
			if status == fiber.StatusNotFound {
				detail.Code = "NOT_FOUND"
				detail.Path = c.Path()
			}
		}

		log := logger.WithContext(c.UserContext())
		if status >= fiber.StatusInternalServerError {
			log.Error("Request error",
				"path", c.Path(),
				"method", c.Method(),
				"status", status,
				"error", err,
			)
		} else {
			log.Debug("Request rejected",
				"path", c.Path(),
				"method", c.Method(),
				"status", status,
				"code", detail.Code,
			)
		}

		return c.Status(status).JSON(models.ErrorResponse{Error: detail})
	}
}
