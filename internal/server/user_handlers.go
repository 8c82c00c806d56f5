package server

import (
	"dishswap/internal/middleware"
	"dishswap/internal/models"

	"github.com/gofiber/fiber/v2"
)

// ProfileResponse is the caller's account with their recipes.
type ProfileResponse struct {
	User    *models.User    `json:"user"`
	Recipes []models.Recipe `json:"recipes"`
}

// GetUsers handles GET /api/users
// @Summary List users
// @Tags users
// @Produce json
// @Param limit query int false "Page size (max 100)"
// @Param offset query int false "Offset"
// @Param page query int false "1-based page, overrides offset"
// @Success 200 {object} models.Envelope{data=[]models.User}
// @Router /users [get]
func (s *Server) GetUsers(c *fiber.Ctx) error {
	p := parsePagination(c, defaultPaginationLimit)
	page, err := s.userService.ListUsers(c.UserContext(), p.Limit, p.Offset)
	if err != nil {
		return respondServiceError(c, err)
	}
	return respondPage(c, page, p)
}

// GetProfile handles GET /api/profile
// @Summary Current user's profile
// @Tags users
// @Produce json
// @Security BearerAuth
// @Success 200 {object} models.Envelope{data=ProfileResponse}
// @Failure 401 {object} models.ErrorResponse
// @Router /profile [get]
func (s *Server) GetProfile(c *fiber.Ctx) error {
	p := parsePagination(c, defaultPaginationLimit)
	profile, err := s.userService.GetProfile(c.UserContext(), middleware.UserID(c), p.Limit, p.Offset)
	if err != nil {
		return respondServiceError(c, err)
	}

	recipes := profile.Recipes.Items
	if recipes == nil {
		recipes = []models.Recipe{}
	}
	return c.JSON(models.Envelope{
		Success: true,
		Data:    ProfileResponse{User: profile.User, Recipes: recipes},
		Meta: &models.PageMeta{
			Total:  profile.Recipes.Total,
			Limit:  p.Limit,
			Offset: p.Offset,
		},
	})
}
