package handlers

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/simlens/simlens/internal/logging"
	"github.com/simlens/simlens/internal/services"
	"github.com/simlens/simlens/internal/source"
)

// Handler contains all HTTP handlers
type Handler struct {
	logger   *logging.Logger
	session  *source.Session
	analysis *services.AnalysisService
	export   *services.ExportService
}

// New creates a new handler instance
func New(logger *logging.Logger, session *source.Session,
	analysis *services.AnalysisService, export *services.ExportService,
) *Handler {
	return &Handler{
		logger:   logger,
		session:  session,
		analysis: analysis,
		export:   export,
	}
}

// invalidParameter builds the error returned for an unparseable query value
func invalidParameter(name, value, expected string) error {
	return services.NewServiceErrorWithDetails(services.CodeInvalidParameter,
		name+" must be "+expected,
		map[string]interface{}{"parameter": name, "value": value})
}

// queryInt parses an optional integer query parameter; absent means 0
func queryInt(c *fiber.Ctx, name string) (int, error) {
	raw := c.Query(name)
	if raw == "" {
		return 0, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, invalidParameter(name, raw, "an integer")
	}
	return v, nil
}

// queryFloat parses an optional float query parameter; absent means 0
func queryFloat(c *fiber.Ctx, name string) (float64, error) {
	raw := c.Query(name)
	if raw == "" {
		return 0, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, invalidParameter(name, raw, "a number")
	}
	return v, nil
}
