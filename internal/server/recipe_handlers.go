package server

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"

	"dishswap/internal/middleware"
	"dishswap/internal/models"
	"dishswap/internal/repository"
	"dishswap/internal/service"

	"github.com/gofiber/fiber/v2"
)

// flexInt accepts a JSON number or a numeric string; "" decodes as 0.
type flexInt int

func (f *flexInt) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		n, err := atoiOrZero(s)
		if err != nil {
			return err
		}
		*f = flexInt(n)
		return nil
	}
	var n int
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*f = flexInt(n)
	return nil
}

func atoiOrZero(s string) (int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}
	return strconv.Atoi(s)
}

// recipeRequest is the body of a create or update. Absent fields stay nil.
type recipeRequest struct {
	Title       *string  `json:"title"`
	Description *string  `json:"description"`
	Ingredients *string  `json:"ingredients"`
	Cuisine     *string  `json:"cuisine"`
	Difficulty  *string  `json:"difficulty"`
	CookingTime *flexInt `json:"cookingTime"`
	ImageURL    *string  `json:"imageUrl"`
}

// parseRecipeRequest reads multipart form fields or a JSON body.
func parseRecipeRequest(c *fiber.Ctx) (recipeRequest, error) {
	var req recipeRequest

	if strings.HasPrefix(strings.ToLower(c.Get(fiber.HeaderContentType)), fiber.MIMEMultipartForm) {
		form, err := c.MultipartForm()
		if err != nil {
			return req, models.NewValidationError("Invalid multipart form")
		}
		field := func(name string) *string {
			if v, ok := form.Value[name]; ok && len(v) > 0 {
				return &v[0]
			}
			return nil
		}
		req.Title = field("title")
		req.Description = field("description")
		req.Ingredients = field("ingredients")
		req.Cuisine = field("cuisine")
		req.Difficulty = field("difficulty")
		req.ImageURL = field("imageUrl")
		if raw := field("cookingTime"); raw != nil {
			n, err := atoiOrZero(*raw)
			if err != nil {
				return req, models.NewValidationError("cookingTime must be a number")
			}
			ct := flexInt(n)
			req.CookingTime = &ct
		}
		return req, nil
	}

	if len(c.Body()) == 0 {
		return req, nil
	}
	if err := c.BodyParser(&req); err != nil {
		return req, models.NewValidationError("Invalid request body")
	}
	return req, nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func uploadedImage(c *fiber.Ctx) []byte {
	if up := middleware.UploadFrom(c); up != nil {
		return up.Data
	}
	return nil
}

// GetRecipes handles GET /api/recipes
// @Summary List recipes
// @Description Search, filter and paginate recipes
// @Tags recipes
// @Produce json
// @Param q query string false "Search title, description and ingredients"
// @Param cuisine query string false "Cuisine"
// @Param difficulty query string false "easy, medium or hard"
// @Param maxCookingTime query int false "Maximum cooking time in minutes"
// @Param sort query string false "newest, oldest or popular"
// @Param limit query int false "Page size (max 100)"
// @Param offset query int false "Offset"
// @Param page query int false "1-based page, overrides offset"
// @Success 200 {object} models.Envelope{data=[]models.Recipe}
// @Failure 400 {object} models.ErrorResponse
// @Router /recipes [get]
func (s *Server) GetRecipes(c *fiber.Ctx) error {
	p := parsePagination(c, defaultPaginationLimit)
	page, err := s.recipeService.ListRecipes(c.UserContext(), repository.RecipeQuery{
		Search:         c.Query("q"),
		Cuisine:        c.Query("cuisine"),
		Difficulty:     c.Query("difficulty"),
		MaxCookingTime: c.QueryInt("maxCookingTime", 0),
		Sort:           c.Query("sort"),
		Limit:          p.Limit,
		Offset:         p.Offset,
	})
	if err != nil {
		return respondServiceError(c, err)
	}
	return respondPage(c, page, p)
}

// GetMyRecipes handles GET /api/recipes/user
// @Summary Caller's recipes
// @Tags recipes
// @Produce json
// @Security BearerAuth
// @Success 200 {object} models.Envelope{data=[]models.Recipe}
// @Failure 401 {object} models.ErrorResponse
// @Router /recipes/user [get]
func (s *Server) GetMyRecipes(c *fiber.Ctx) error {
	p := parsePagination(c, defaultPaginationLimit)
	page, err := s.recipeService.ListUserRecipes(c.UserContext(), middleware.UserID(c), p.Limit, p.Offset)
	if err != nil {
		return respondServiceError(c, err)
	}
	return respondPage(c, page, p)
}

// GetRecipe handles GET /api/recipes/:id
// @Summary Recipe detail
// @Tags recipes
// @Produce json
// @Param id path string true "Recipe ID"
// @Success 200 {object} models.Envelope{data=models.Recipe}
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /recipes/{id} [get]
func (s *Server) GetRecipe(c *fiber.Ctx) error {
	id, err := parseID(c, c.Params("id"), "recipe")
	if err != nil {
		return nil
	}
	recipe, err := s.recipeService.GetRecipe(c.UserContext(), id)
	if err != nil {
		return respondServiceError(c, err)
	}
	return respondData(c, fiber.StatusOK, recipe)
}

// CreateRecipe handles POST /api/recipes
// @Summary Create recipe
// @Description Multipart form with an optional single "image" file, or JSON with imageUrl
// @Tags recipes
// @Accept multipart/form-data
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param title formData string true "Title"
// @Param image formData file false "Image (JPEG, PNG, GIF or WebP)"
// @Success 201 {object} models.Envelope{data=models.Recipe}
// @Failure 400 {object} models.ErrorResponse
// @Failure 401 {object} models.ErrorResponse
// @Failure 413 {object} models.ErrorResponse
// @Failure 415 {object} models.ErrorResponse
// @Router /recipes [post]
func (s *Server) CreateRecipe(c *fiber.Ctx) error {
	req, err := parseRecipeRequest(c)
	if err != nil {
		return respondServiceError(c, err)
	}

	in := service.CreateRecipeInput{
		UserID:      middleware.UserID(c),
		Title:       deref(req.Title),
		Description: deref(req.Description),
		Ingredients: deref(req.Ingredients),
		Cuisine:     deref(req.Cuisine),
		Difficulty:  deref(req.Difficulty),
		ImageURL:    deref(req.ImageURL),
		Image:       uploadedImage(c),
	}
	if req.CookingTime != nil {
		in.CookingTime = int(*req.CookingTime)
	}

	recipe, err := s.recipeService.CreateRecipe(c.UserContext(), in)
	if err != nil {
		return respondServiceError(c, err)
	}
	return respondData(c, fiber.StatusCreated, recipe)
}

// UpdateRecipe handles PUT /api/recipes/:id
// @Summary Update recipe
// @Description Partial update by the owner; multipart or JSON
// @Tags recipes
// @Accept multipart/form-data
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Recipe ID"
// @Success 200 {object} models.Envelope{data=models.Recipe}
// @Failure 400 {object} models.ErrorResponse
// @Failure 403 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /recipes/{id} [put]
func (s *Server) UpdateRecipe(c *fiber.Ctx) error {
	id, err := parseID(c, c.Params("id"), "recipe")
	if err != nil {
		return nil
	}
	req, err := parseRecipeRequest(c)
	if err != nil {
		return respondServiceError(c, err)
	}

	in := service.UpdateRecipeInput{
		UserID:      middleware.UserID(c),
		RecipeID:    id,
		Title:       req.Title,
		Description: req.Description,
		Ingredients: req.Ingredients,
		Cuisine:     req.Cuisine,
		Difficulty:  req.Difficulty,
		ImageURL:    req.ImageURL,
		Image:       uploadedImage(c),
	}
	if req.CookingTime != nil {
		ct := int(*req.CookingTime)
		in.CookingTime = &ct
	}

	recipe, err := s.recipeService.UpdateRecipe(c.UserContext(), in)
	if err != nil {
		return respondServiceError(c, err)
	}
	return respondData(c, fiber.StatusOK, recipe)
}

// DeleteRecipe handles DELETE /api/recipes/:id
// @Summary Delete recipe
// @Description Owner-only; also removes the recipe's comments and favorites
// @Tags recipes
// @Produce json
// @Security BearerAuth
// @Param id path string true "Recipe ID"
// @Success 200 {object} models.Envelope
// @Failure 403 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /recipes/{id} [delete]
func (s *Server) DeleteRecipe(c *fiber.Ctx) error {
	id, err := parseID(c, c.Params("id"), "recipe")
	if err != nil {
		return nil
	}
	if err := s.recipeService.DeleteRecipe(c.UserContext(), middleware.UserID(c), id); err != nil {
		return respondServiceError(c, err)
	}
	return respondData(c, fiber.StatusOK, fiber.Map{"message": "Recipe deleted", "id": id})
}

// GetReactions handles GET /api/recipes/:id/reactions
// @Summary Reaction counters
// @Tags reactions
// @Produce json
// @Param id path string true "Recipe ID"
// @Success 200 {object} models.Envelope{data=models.Reactions}
// @Failure 404 {object} models.ErrorResponse
// @Router /recipes/{id}/reactions [get]
func (s *Server) GetReactions(c *fiber.Ctx) error {
	id, err := parseID(c, c.Params("id"), "recipe")
	if err != nil {
		return nil
	}
	reactions, err := s.recipeService.GetReactions(c.UserContext(), id)
	if err != nil {
		return respondServiceError(c, err)
	}
	return respondData(c, fiber.StatusOK, reactions)
}

// AddReaction handles POST /api/recipes/:id/reactions
// @Summary React to a recipe
// @Tags reactions
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Recipe ID"
// @Param request body object{reactionType=string} true "Cant_wait, Loved_it or Disliked"
// @Success 200 {object} models.Envelope{data=service.ReactionResult}
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /recipes/{id}/reactions [post]
func (s *Server) AddReaction(c *fiber.Ctx) error {
	id, err := parseID(c, c.Params("id"), "recipe")
	if err != nil {
		return nil
	}
	var req struct {
		ReactionType string `json:"reactionType"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	res, err := s.recipeService.React(c.UserContext(), middleware.UserID(c), id, req.ReactionType)
	if err != nil {
		return respondServiceError(c, err)
	}
	return respondData(c, fiber.StatusOK, res)
}
