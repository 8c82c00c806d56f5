package server

import (
	"dishswap/internal/middleware"
	"dishswap/internal/models"

	"github.com/gofiber/fiber/v2"
)

// GetFeatureFlags returns the flags evaluated for the caller. Anonymous callers
// only see flags that are switched on for everyone.
// @Summary Feature flags
// @Tags features
// @Produce json
// @Success 200 {object} models.Envelope{data=map[string]bool}
// @Router /features [get]
func (s *Server) GetFeatureFlags(c *fiber.Ctx) error {
	if s.featureFlags == nil {
		return c.JSON(models.Envelope{Success: true, Data: map[string]bool{}})
	}
	return c.JSON(models.Envelope{
		Success: true,
		Data:    s.featureFlags.Snapshot(middleware.UserID(c)),
	})
}
