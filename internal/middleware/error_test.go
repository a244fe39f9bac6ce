package middleware

import (
	"encoding/json"
	"errors"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/simlens/simlens/internal/logging"
	"github.com/simlens/simlens/internal/models"
	"github.com/simlens/simlens/internal/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func errorApp(err error) *fiber.App {
	app := fiber.New(fiber.Config{ErrorHandler: ErrorHandler(logging.Nop())})
	app.Get("/fail", func(c *fiber.Ctx) error {
		return err
	})
	return app
}

func decodeError(t *testing.T, app *fiber.App, path string) (int, models.ErrorDetail) {
	t.Helper()
	resp, err := app.Test(httptest.NewRequest("GET", path, nil))
	require.NoError(t, err)

	var body models.ErrorResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	return resp.StatusCode, body.Error
}

func TestStatusForCode(t *testing.T) {
	assert.Equal(t, fiber.StatusNotFound, StatusForCode(services.CodeDataNotFound))
	assert.Equal(t, fiber.StatusBadRequest, StatusForCode(services.CodeInvalidParameter))
	assert.Equal(t, fiber.StatusBadRequest, StatusForCode(services.CodeUnsupportedFormat))
	assert.Equal(t, fiber.StatusUnprocessableEntity, StatusForCode(services.CodeMalformedCSV))
	assert.Equal(t, fiber.StatusInternalServerError, StatusForCode("SOMETHING_ELSE"))
}

func TestErrorHandler_ServiceError(t *testing.T) {
	svcErr := services.NewServiceErrorWithDetails(services.CodeDataNotFound, "no data available",
		map[string]interface{}{"path": "/tmp/run.csv"})

	status, detail := decodeError(t, errorApp(svcErr), "/fail")
	assert.Equal(t, fiber.StatusNotFound, status)
	assert.Equal(t, services.CodeDataNotFound, detail.Code)
	assert.Equal(t, "no data available", detail.Message)
	assert.Equal(t, "/tmp/run.csv", detail.Details["path"])
}

func TestErrorHandler_FiberError(t *testing.T) {
	tests := []struct {
		name   string
		err    *fiber.Error
		status int
		msg    string
	}{
		{"bad request", fiber.ErrBadRequest, fiber.StatusBadRequest, "Bad Request"},
		{"unauthorized", fiber.ErrUnauthorized, fiber.StatusUnauthorized, "Unauthorized"},
		{"custom", fiber.NewError(fiber.StatusTeapot, "short and stout"), fiber.StatusTeapot, "short and stout"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, detail := decodeError(t, errorApp(tt.err), "/fail")
			assert.Equal(t, tt.status, status)
			assert.Equal(t, "ERROR", detail.Code)
			assert.Equal(t, tt.msg, detail.Message)
		})
	}
}

func TestErrorHandler_RouteNotFound(t *testing.T) {
	status, detail := decodeError(t, errorApp(nil), "/nowhere")
	assert.Equal(t, fiber.StatusNotFound, status)
	assert.Equal(t, "NOT_FOUND", detail.Code)
	assert.Equal(t, "/nowhere", detail.Path)
}

func TestErrorHandler_GenericError(t *testing.T) {
	status, detail := decodeError(t, errorApp(errors.New("database exploded")), "/fail")
	assert.Equal(t, fiber.StatusInternalServerError, status)
	assert.Equal(t, services.CodeInternal, detail.Code)
	assert.Equal(t, "Internal Server Error", detail.Message)
}
