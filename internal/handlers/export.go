package handlers

import (
	"github.com/gofiber/fiber/v2"
)

// Export downloads the loaded dataset
// GET /v1/export?format=csv|csv.sz|xlsx
func (h *Handler) Export(c *fiber.Ctx) error {
	file, err := h.export.Export(c.UserContext(), c.Query("format"))
	if err != nil {
		return err
	}

	// Attachment guesses the type from the extension; override it after
	c.Attachment(file.Name)
	c.Set(fiber.HeaderContentType, file.ContentType)
	return c.Send(file.Data)
}
