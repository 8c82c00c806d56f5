package service

import (
	"context"
	"errors"
	"strings"

	"dishswap/internal/cache"
	"dishswap/internal/events"
	"dishswap/internal/models"
	"dishswap/internal/observability"
	"dishswap/internal/repository"
	"dishswap/internal/validation"

	"go.opentelemetry.io/otel/attribute"
)

type RecipeService struct {
	recipeRepo repository.RecipeRepository
	images     *ImageService
	publisher  events.Publisher
}

type CreateRecipeInput struct {
	UserID      string
	Title       string
	Description string
	Ingredients string
	Cuisine     string
	Difficulty  string
	CookingTime int
	ImageURL    string
	Image       []byte
}

// UpdateRecipeInput carries a partial update; nil fields are left unchanged.
type UpdateRecipeInput struct {
	UserID      string
	RecipeID    string
	Title       *string
	Description *string
	Ingredients *string
	Cuisine     *string
	Difficulty  *string
	CookingTime *int
	ImageURL    *string
	Image       []byte
}

// ReactionResult is the counter value after a reaction was recorded.
type ReactionResult struct {
	ReactionType models.ReactionType `json:"reactionType"`
	Count        int64               `json:"count"`
}

func NewRecipeService(recipeRepo repository.RecipeRepository, images *ImageService, publisher events.Publisher) *RecipeService {
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	return &RecipeService{
		recipeRepo: recipeRepo,
		images:     images,
		publisher:  publisher,
	}
}

func (s *RecipeService) CreateRecipe(ctx context.Context, in CreateRecipeInput) (_ *models.Recipe, err error) {
	ctx, span := observability.StartServiceSpan(ctx, "RecipeService", "CreateRecipe",
		attribute.String("user.id", in.UserID),
	)
	defer func() { observability.EndSpan(span, err) }()

	recipe := &models.Recipe{
		Title:       strings.TrimSpace(in.Title),
		Description: in.Description,
		Ingredients: in.Ingredients,
		Cuisine:     strings.TrimSpace(in.Cuisine),
		Difficulty:  normalizeDifficulty(in.Difficulty),
		CookingTime: in.CookingTime,
		UserID:      in.UserID,
	}
	if err := validateRecipe(recipe); err != nil {
		return nil, err
	}
	if err := s.applyImage(ctx, recipe, in.UserID, in.Image, in.ImageURL); err != nil {
		return nil, err
	}

	if err := s.recipeRepo.Create(ctx, recipe); err != nil {
		return nil, err
	}

	observability.RecipesCreated.Inc()
	events.Emit(ctx, s.publisher, events.New(events.TypeRecipeCreated, in.UserID, recipe.ID, map[string]any{
		"title": recipe.Title,
	}))
	return recipe, nil
}

func (s *RecipeService) GetRecipe(ctx context.Context, id string) (*models.Recipe, error) {
	return s.recipeRepo.GetByID(ctx, id)
}

func (s *RecipeService) ListRecipes(ctx context.Context, q repository.RecipeQuery) (models.Page[models.Recipe], error) {
	q.Difficulty = normalizeDifficulty(q.Difficulty)
	if err := validation.ValidateDifficulty(q.Difficulty); err != nil {
		return models.Page[models.Recipe]{}, models.NewValidationError(err.Error())
	}
	switch q.Sort {
	case "":
		q.Sort = repository.SortNewest
	case repository.SortNewest, repository.SortOldest, repository.SortPopular:
	default:
		return models.Page[models.Recipe]{}, models.NewValidationError("sort must be one of newest, oldest, popular")
	}
	if q.MaxCookingTime < 0 {
		return models.Page[models.Recipe]{}, models.NewValidationError("maxCookingTime must not be negative")
	}
	q.Search = strings.TrimSpace(q.Search)
	q.Cuisine = strings.TrimSpace(q.Cuisine)
	return s.recipeRepo.List(ctx, q)
}

func (s *RecipeService) ListUserRecipes(ctx context.Context, userID string, limit, offset int) (models.Page[models.Recipe], error) {
	return s.recipeRepo.List(ctx, repository.RecipeQuery{
		UserID: userID,
		Sort:   repository.SortNewest,
		Limit:  limit,
		Offset: offset,
	})
}

func (s *RecipeService) UpdateRecipe(ctx context.Context, in UpdateRecipeInput) (_ *models.Recipe, err error) {
	ctx, span := observability.StartServiceSpan(ctx, "RecipeService", "UpdateRecipe",
		attribute.String("recipe.id", in.RecipeID),
	)
	defer func() { observability.EndSpan(span, err) }()

	recipe, err := s.recipeRepo.GetByID(ctx, in.RecipeID)
	if err != nil {
		return nil, err
	}
	if recipe.UserID != in.UserID {
		return nil, models.NewForbiddenError("You can only edit your own recipes")
	}

	if in.Title != nil {
		recipe.Title = strings.TrimSpace(*in.Title)
	}
	if in.Description != nil {
		recipe.Description = *in.Description
	}
	if in.Ingredients != nil {
		recipe.Ingredients = *in.Ingredients
	}
	if in.Cuisine != nil {
		recipe.Cuisine = strings.TrimSpace(*in.Cuisine)
	}
	if in.Difficulty != nil {
		recipe.Difficulty = normalizeDifficulty(*in.Difficulty)
	}
	if in.CookingTime != nil {
		recipe.CookingTime = *in.CookingTime
	}
	if err := validateRecipe(recipe); err != nil {
		return nil, err
	}

	imageURL := ""
	if in.ImageURL != nil {
		imageURL = strings.TrimSpace(*in.ImageURL)
	}
	if err := s.applyImage(ctx, recipe, in.UserID, in.Image, imageURL); err != nil {
		return nil, err
	}

	if err := s.recipeRepo.Update(ctx, recipe); err != nil {
		return nil, err
	}

	events.Emit(ctx, s.publisher, events.New(events.TypeRecipeUpdated, in.UserID, recipe.ID, nil))
	return recipe, nil
}

func (s *RecipeService) DeleteRecipe(ctx context.Context, userID, recipeID string) (err error) {
	ctx, span := observability.StartServiceSpan(ctx, "RecipeService", "DeleteRecipe",
		attribute.String("recipe.id", recipeID),
	)
	defer func() { observability.EndSpan(span, err) }()

	recipe, err := s.recipeRepo.GetByID(ctx, recipeID)
	if err != nil {
		return err
	}
	if recipe.UserID != userID {
		return models.NewForbiddenError("You can only delete your own recipes")
	}
	if err := s.recipeRepo.Delete(ctx, recipeID); err != nil {
		return err
	}

	cache.InvalidateReactions(ctx, recipeID)
	events.Emit(ctx, s.publisher, events.New(events.TypeRecipeDeleted, userID, recipeID, nil))
	return nil
}

// GetReactions returns the counters of a recipe, served from Redis when cached.
func (s *RecipeService) GetReactions(ctx context.Context, recipeID string) (models.Reactions, error) {
	var reactions models.Reactions
	err := cache.Aside(ctx, cache.ReactionsKey(recipeID), &reactions, cache.ReactionsTTL, func() error {
		r, err := s.recipeRepo.GetReactions(ctx, recipeID)
		if err != nil {
			return err
		}
		reactions = r
		return nil
	})
	return reactions, err
}

// React increments one reaction counter. Counters only ever go up.
func (s *RecipeService) React(ctx context.Context, userID, recipeID, reactionType string) (_ *ReactionResult, err error) {
	ctx, span := observability.StartServiceSpan(ctx, "RecipeService", "React",
		attribute.String("recipe.id", recipeID),
		attribute.String("reaction.type", reactionType),
	)
	defer func() { observability.EndSpan(span, err) }()

	rt, err := models.ParseReactionType(reactionType)
	if err != nil {
		return nil, models.NewValidationError("Invalid reaction type")
	}

	count, err := s.recipeRepo.IncrementReaction(ctx, recipeID, rt)
	if err != nil {
		return nil, err
	}

	cache.InvalidateReactions(ctx, recipeID)
	observability.Reactions.WithLabelValues(string(rt)).Inc()
	events.Emit(ctx, s.publisher, events.New(events.TypeRecipeReacted, userID, recipeID, map[string]any{
		"reactionType": string(rt),
		"count":        count,
	}))
	return &ReactionResult{ReactionType: rt, Count: count}, nil
}

// applyImage stores an uploaded blob, or else an external URL when one is given.
func (s *RecipeService) applyImage(ctx context.Context, recipe *models.Recipe, userID string, upload []byte, imageURL string) error {
	if len(upload) > 0 {
		if s.images == nil {
			return models.NewInternalError(errors.New("image processing is not configured"))
		}
		img, err := s.images.Process(ctx, userID, upload)
		if err != nil {
			return err
		}
		recipe.SetImageBlob(img.Data, img.MimeType)
		return nil
	}
	if imageURL = strings.TrimSpace(imageURL); imageURL != "" {
		if err := validation.ValidateImageURL(imageURL); err != nil {
			return models.NewValidationError(err.Error())
		}
		recipe.SetImageURL(imageURL)
	}
	return nil
}

func validateRecipe(r *models.Recipe) error {
	checks := []error{
		validation.ValidateTitle(r.Title),
		validation.MaxLength("description", r.Description, validation.MaxDescriptionLength),
		validation.MaxLength("ingredients", r.Ingredients, validation.MaxIngredientsLength),
		validation.MaxLength("cuisine", r.Cuisine, validation.MaxCuisineLength),
		validation.ValidateDifficulty(r.Difficulty),
		validation.ValidateCookingTime(r.CookingTime),
	}
	for _, err := range checks {
		if err != nil {
			return models.NewValidationError(err.Error())
		}
	}
	return nil
}

func normalizeDifficulty(d string) string {
	return strings.ToLower(strings.TrimSpace(d))
}
