package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/simlens/simlens/internal/models"
)

// GetDataset returns the overview of the loaded run
// GET /v1/dataset
func (h *Handler) GetDataset(c *fiber.Ctx) error {
	ov, err := h.analysis.Overview(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(ov)
}

// ReloadDataset re-reads the simulator output
// POST /v1/dataset/reload
func (h *Handler) ReloadDataset(c *fiber.Ctx) error {
	ov, err := h.analysis.Reload(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(ov)
}

// ListColumns returns every column and the numeric parameters
// GET /v1/columns
func (h *Handler) ListColumns(c *fiber.Ctx) error {
	cat, err := h.analysis.Columns(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(cat)
}

// ListAgents returns the distinct agents
// GET /v1/agents
func (h *Handler) ListAgents(c *fiber.Ctx) error {
	agents, err := h.analysis.Agents(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(models.NewListResponse(agents))
}
