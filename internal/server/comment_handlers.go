package server

import (
	"dishswap/internal/middleware"
	"dishswap/internal/models"
	"dishswap/internal/service"

	"github.com/gofiber/fiber/v2"
)

// GetComments handles GET /api/comments?recipeId=
// @Summary Comments of a recipe
// @Description Newest first, each with its author
// @Tags comments
// @Produce json
// @Param recipeId query string true "Recipe ID"
// @Param limit query int false "Page size (max 100)"
// @Param offset query int false "Offset"
// @Success 200 {object} models.Envelope{data=[]models.Comment}
// @Failure 400 {object} models.ErrorResponse
// @Router /comments [get]
func (s *Server) GetComments(c *fiber.Ctx) error {
	raw := c.Query("recipeId")
	if raw == "" {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("recipeId is required"))
	}
	return s.listComments(c, raw)
}

// GetRecipeComments handles GET /api/recipes/:id/comments
// @Summary Comments of a recipe
// @Tags comments
// @Produce json
// @Param id path string true "Recipe ID"
// @Success 200 {object} models.Envelope{data=[]models.Comment}
// @Router /recipes/{id}/comments [get]
func (s *Server) GetRecipeComments(c *fiber.Ctx) error {
	return s.listComments(c, c.Params("id"))
}

func (s *Server) listComments(c *fiber.Ctx, rawRecipeID string) error {
	recipeID, err := parseID(c, rawRecipeID, "recipe")
	if err != nil {
		return nil
	}
	p := parsePagination(c, defaultPaginationLimit)
	page, err := s.commentService.ListComments(c.UserContext(), recipeID, p.Limit, p.Offset)
	if err != nil {
		return respondServiceError(c, err)
	}
	return respondPage(c, page, p)
}

// CreateComment handles POST /api/comments
// @Summary Comment on a recipe
// @Tags comments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body object{recipeId=string,text=string} true "Comment"
// @Success 201 {object} models.Envelope{data=models.Comment}
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /comments [post]
func (s *Server) CreateComment(c *fiber.Ctx) error {
	var req struct {
		RecipeID string `json:"recipeId"`
		Text     string `json:"text"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}
	recipeID, err := parseID(c, req.RecipeID, "recipe")
	if err != nil {
		return nil
	}

	comment, err := s.commentService.CreateComment(c.UserContext(), service.CreateCommentInput{
		UserID:   middleware.UserID(c),
		RecipeID: recipeID,
		Text:     req.Text,
	})
	if err != nil {
		return respondServiceError(c, err)
	}
	return respondData(c, fiber.StatusCreated, comment)
}
