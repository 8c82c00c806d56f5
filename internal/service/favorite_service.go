package service

import (
	"context"

	"dishswap/internal/cache"
	"dishswap/internal/events"
	"dishswap/internal/models"
	"dishswap/internal/observability"
	"dishswap/internal/repository"

	"go.opentelemetry.io/otel/attribute"
)

type FavoriteService struct {
	favoriteRepo repository.FavoriteRepository
	recipeRepo   repository.RecipeRepository
	publisher    events.Publisher
}

func NewFavoriteService(
	favoriteRepo repository.FavoriteRepository,
	recipeRepo repository.RecipeRepository,
	publisher events.Publisher,
) *FavoriteService {
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	return &FavoriteService{
		favoriteRepo: favoriteRepo,
		recipeRepo:   recipeRepo,
		publisher:    publisher,
	}
}

// AddFavorite bookmarks a recipe. It reports whether the favorite is new;
// adding an existing favorite is a no-op.
func (s *FavoriteService) AddFavorite(ctx context.Context, userID, recipeID string) (_ bool, err error) {
	ctx, span := observability.StartServiceSpan(ctx, "FavoriteService", "AddFavorite",
		attribute.String("recipe.id", recipeID),
	)
	defer func() { observability.EndSpan(span, err) }()

	if recipeID == "" {
		return false, models.NewValidationError("recipeId is required")
	}
	if _, err := s.recipeRepo.GetByID(ctx, recipeID); err != nil {
		return false, err
	}

	added, err := s.favoriteRepo.Add(ctx, userID, recipeID)
	if err != nil {
		return false, err
	}
	if added {
		s.changed(ctx, events.TypeFavoriteAdded, "added", userID, recipeID)
	}
	return added, nil
}

// RemoveFavorite reports whether a favorite was removed. Removing a missing
// favorite is not an error.
func (s *FavoriteService) RemoveFavorite(ctx context.Context, userID, recipeID string) (_ bool, err error) {
	ctx, span := observability.StartServiceSpan(ctx, "FavoriteService", "RemoveFavorite",
		attribute.String("recipe.id", recipeID),
	)
	defer func() { observability.EndSpan(span, err) }()

	if recipeID == "" {
		return false, models.NewValidationError("recipeId is required")
	}
	removed, err := s.favoriteRepo.Remove(ctx, userID, recipeID)
	if err != nil {
		return false, err
	}
	if removed {
		s.changed(ctx, events.TypeFavoriteRemoved, "removed", userID, recipeID)
	}
	return removed, nil
}

// ToggleFavorite flips the favorite state and returns the new state.
func (s *FavoriteService) ToggleFavorite(ctx context.Context, userID, recipeID string) (bool, error) {
	if recipeID == "" {
		return false, models.NewValidationError("recipeId is required")
	}
	exists, err := s.favoriteRepo.Exists(ctx, userID, recipeID)
	if err != nil {
		return false, err
	}
	if exists {
		if _, err := s.RemoveFavorite(ctx, userID, recipeID); err != nil {
			return false, err
		}
		return false, nil
	}
	if _, err := s.AddFavorite(ctx, userID, recipeID); err != nil {
		return false, err
	}
	return true, nil
}

// ListFavorites returns the user's favorite recipes, most recently added first.
// Favorites pointing at deleted recipes are skipped.
func (s *FavoriteService) ListFavorites(ctx context.Context, userID string) ([]models.Recipe, error) {
	ids, err := s.favoriteRepo.ListRecipeIDs(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return []models.Recipe{}, nil
	}

	recipes, err := s.recipeRepo.GetByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	byID := make(map[string]models.Recipe, len(recipes))
	for _, r := range recipes {
		byID[r.ID] = r
	}

	out := make([]models.Recipe, 0, len(ids))
	for _, id := range ids {
		if r, ok := byID[id]; ok {
			out = append(out, r)
		}
	}
	return out, nil
}

func (s *FavoriteService) changed(ctx context.Context, eventType, action, userID, recipeID string) {
	cache.InvalidateUser(ctx, userID)
	observability.FavoritesChanged.WithLabelValues(action).Inc()
	events.Emit(ctx, s.publisher, events.New(eventType, userID, recipeID, nil))
}
