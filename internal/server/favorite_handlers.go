package server

import (
	"dishswap/internal/middleware"
	"dishswap/internal/models"

	"github.com/gofiber/fiber/v2"
)

// FavoriteState is the favorite status of one recipe for the caller.
type FavoriteState struct {
	RecipeID  string `json:"recipeId"`
	Favorited bool   `json:"favorited"`
	Added     *bool  `json:"added,omitempty"`
	Removed   *bool  `json:"removed,omitempty"`
}

type favoriteRequest struct {
	RecipeID string `json:"recipeId"`
}

func (s *Server) favoriteRecipeID(c *fiber.Ctx) (string, error) {
	var req favoriteRequest
	if err := c.BodyParser(&req); err != nil {
		_ = models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
		return "", errResponseWritten
	}
	return parseID(c, req.RecipeID, "recipe")
}

// GetFavorites handles GET /api/favorites
// @Summary Caller's favorite recipes
// @Tags favorites
// @Produce json
// @Security BearerAuth
// @Success 200 {object} models.Envelope{data=[]models.Recipe}
// @Router /favorites [get]
func (s *Server) GetFavorites(c *fiber.Ctx) error {
	recipes, err := s.favoriteService.ListFavorites(c.UserContext(), middleware.UserID(c))
	if err != nil {
		return respondServiceError(c, err)
	}
	return respondData(c, fiber.StatusOK, recipes)
}

// AddFavorite handles POST /api/favorites
// @Summary Add a favorite
// @Description Idempotent; adding an existing favorite is not an error
// @Tags favorites
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body object{recipeId=string} true "Recipe"
// @Success 200 {object} models.Envelope{data=FavoriteState}
// @Failure 404 {object} models.ErrorResponse
// @Router /favorites [post]
func (s *Server) AddFavorite(c *fiber.Ctx) error {
	recipeID, err := s.favoriteRecipeID(c)
	if err != nil {
		return nil
	}
	added, err := s.favoriteService.AddFavorite(c.UserContext(), middleware.UserID(c), recipeID)
	if err != nil {
		return respondServiceError(c, err)
	}
	return respondData(c, fiber.StatusOK, FavoriteState{RecipeID: recipeID, Favorited: true, Added: &added})
}

// ToggleFavorite handles POST /api/favorites/toggle
// @Summary Toggle a favorite
// @Tags favorites
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body object{recipeId=string} true "Recipe"
// @Success 200 {object} models.Envelope{data=FavoriteState}
// @Router /favorites/toggle [post]
func (s *Server) ToggleFavorite(c *fiber.Ctx) error {
	recipeID, err := s.favoriteRecipeID(c)
	if err != nil {
		return nil
	}
	favorited, err := s.favoriteService.ToggleFavorite(c.UserContext(), middleware.UserID(c), recipeID)
	if err != nil {
		return respondServiceError(c, err)
	}
	return respondData(c, fiber.StatusOK, FavoriteState{RecipeID: recipeID, Favorited: favorited})
}

// RemoveFavorite handles DELETE /api/favorites/:id and DELETE /api/favorites?id=
// @Summary Remove a favorite
// @Tags favorites
// @Produce json
// @Security BearerAuth
// @Param id path string true "Recipe ID"
// @Success 200 {object} models.Envelope{data=FavoriteState}
// @Router /favorites/{id} [delete]
func (s *Server) RemoveFavorite(c *fiber.Ctx) error {
	raw := c.Params("id")
	if raw == "" {
		raw = c.Query("id")
	}
	if raw == "" {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Recipe id is required"))
	}
	recipeID, err := parseID(c, raw, "recipe")
	if err != nil {
		return nil
	}

	removed, err := s.favoriteService.RemoveFavorite(c.UserContext(), middleware.UserID(c), recipeID)
	if err != nil {
		return respondServiceError(c, err)
	}
	return respondData(c, fiber.StatusOK, FavoriteState{RecipeID: recipeID, Favorited: false, Removed: &removed})
}

// FavoritesMethodNotAllowed rejects unsupported methods on /api/favorites.
func (s *Server) FavoritesMethodNotAllowed(c *fiber.Ctx) error {
	c.Set(fiber.HeaderAllow, "GET, POST, DELETE")
	return models.RespondWithError(c, fiber.StatusMethodNotAllowed,
		&models.AppError{Code: models.CodeMethodNotAllowed, Message: "Method " + c.Method() + " not allowed"})
}
