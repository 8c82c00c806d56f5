// Package repository provides data access layer implementations for the application.
package repository

import (
	"context"

	"dishswap/internal/models"

	"gorm.io/gorm"
)

// Recipe sort orders accepted by RecipeQuery.
const (
	SortNewest  = "newest"
	SortOldest  = "oldest"
	SortPopular = "popular"
)

// UserRepository defines the interface for user data access.
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByIDs(ctx context.Context, ids []string) ([]models.User, error)
	List(ctx context.Context, limit, offset int) (models.Page[models.User], error)
}

// RecipeQuery filters and pages a recipe listing. Zero values mean "no filter".
type RecipeQuery struct {
	Search         string
	Cuisine        string
	Difficulty     string
	MaxCookingTime int
	UserID         string
	Sort           string
	Limit          int
	Offset         int
}

// RecipeRepository defines the interface for recipe data access.
type RecipeRepository interface {
	Create(ctx context.Context, recipe *models.Recipe) error
	GetByID(ctx context.Context, id string) (*models.Recipe, error)
	GetByIDs(ctx context.Context, ids []string) ([]models.Recipe, error)
	List(ctx context.Context, q RecipeQuery) (models.Page[models.Recipe], error)
	// Update writes the editable fields only; reaction counters are left untouched.
	Update(ctx context.Context, recipe *models.Recipe) error
	// Delete removes the recipe together with its comments and favorites.
	Delete(ctx context.Context, id string) error
	IncrementReaction(ctx context.Context, id string, rt models.ReactionType) (int64, error)
	GetReactions(ctx context.Context, id string) (models.Reactions, error)
}

// CommentRepository defines the interface for comment data access.
type CommentRepository interface {
	Create(ctx context.Context, comment *models.Comment) error
	ListByRecipe(ctx context.Context, recipeID string, limit, offset int) (models.Page[models.Comment], error)
}

// FavoriteRepository defines the interface for a user's bookmarked recipes.
type FavoriteRepository interface {
	// Add reports whether the favorite was newly added.
	Add(ctx context.Context, userID, recipeID string) (bool, error)
	// Remove reports whether a favorite was actually removed.
	Remove(ctx context.Context, userID, recipeID string) (bool, error)
	Exists(ctx context.Context, userID, recipeID string) (bool, error)
	// ListRecipeIDs returns favorite recipe ids, most recently added first.
	ListRecipeIDs(ctx context.Context, userID string) ([]string, error)
}

// Set bundles the repositories of one storage backend.
type Set struct {
	Users     UserRepository
	Recipes   RecipeRepository
	Comments  CommentRepository
	Favorites FavoriteRepository
}

// NewSet returns the gorm-backed repositories sharing db.
func NewSet(db *gorm.DB) Set {
	return Set{
		Users:     NewUserRepository(db),
		Recipes:   NewRecipeRepository(db),
		Comments:  NewCommentRepository(db),
		Favorites: NewFavoriteRepository(db),
	}
}
