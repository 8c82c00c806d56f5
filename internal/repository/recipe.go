package repository

import (
	"context"
	"strings"
	"time"

	"dishswap/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// editableRecipeColumns are the columns Update may change.
var editableRecipeColumns = []string{
	"title", "description", "ingredients", "cuisine", "difficulty", "cooking_time",
	"image_data", "image_type", "image_url", "updated_at",
}

type recipeRepository struct {
	db *gorm.DB
}

// NewRecipeRepository returns a RecipeRepository backed by gorm.
func NewRecipeRepository(db *gorm.DB) RecipeRepository {
	return &recipeRepository{db: db}
}

func (r *recipeRepository) Create(ctx context.Context, recipe *models.Recipe) error {
	if recipe.ID == "" {
		recipe.ID = uuid.NewString()
	}
	if err := r.db.WithContext(ctx).Create(recipe).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *recipeRepository) GetByID(ctx context.Context, id string) (*models.Recipe, error) {
	var recipe models.Recipe
	if err := r.db.WithContext(ctx).First(&recipe, "id = ?", id).Error; err != nil {
		return nil, translate(err, "Recipe", "")
	}
	return &recipe, nil
}

func (r *recipeRepository) GetByIDs(ctx context.Context, ids []string) ([]models.Recipe, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var recipes []models.Recipe
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&recipes).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return recipes, nil
}

// escapeLike escapes LIKE wildcards so user input matches literally.
func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

func (r *recipeRepository) List(ctx context.Context, q RecipeQuery) (models.Page[models.Recipe], error) {
	var page models.Page[models.Recipe]

	db := r.db.WithContext(ctx).Model(&models.Recipe{})
	if q.Search != "" {
		pattern := "%" + escapeLike(strings.ToLower(q.Search)) + "%"
		db = db.Where(
			`LOWER(title) LIKE ? ESCAPE '\' OR LOWER(description) LIKE ? ESCAPE '\' OR LOWER(ingredients) LIKE ? ESCAPE '\'`,
			pattern, pattern, pattern,
		)
	}
	if q.Cuisine != "" {
		db = db.Where("LOWER(cuisine) = ?", strings.ToLower(q.Cuisine))
	}
	if q.Difficulty != "" {
		db = db.Where("difficulty = ?", q.Difficulty)
	}
	if q.MaxCookingTime > 0 {
		db = db.Where("cooking_time <= ?", q.MaxCookingTime)
	}
	if q.UserID != "" {
		db = db.Where("user_id = ?", q.UserID)
	}
	db = db.Session(&gorm.Session{})

	if err := db.Count(&page.Total).Error; err != nil {
		return page, models.NewInternalError(err)
	}

	switch q.Sort {
	case SortOldest:
		db = db.Order("created_at asc")
	case SortPopular:
		db = db.Order("reaction_cant_wait + reaction_loved_it desc").Order("created_at desc")
	default:
		db = db.Order("created_at desc")
	}

	if err := db.Limit(q.Limit).Offset(q.Offset).Find(&page.Items).Error; err != nil {
		return page, models.NewInternalError(err)
	}
	return page, nil
}

func (r *recipeRepository) Update(ctx context.Context, recipe *models.Recipe) error {
	recipe.UpdatedAt = time.Now().UTC()
	res := r.db.WithContext(ctx).
		Model(&models.Recipe{ID: recipe.ID}).
		Select(editableRecipeColumns).
		Updates(recipe)
	if res.Error != nil {
		return models.NewInternalError(res.Error)
	}
	if res.RowsAffected == 0 {
		return models.NewNotFoundError("Recipe", "")
	}
	return nil
}

func (r *recipeRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Delete(&models.Recipe{}, "id = ?", id)
		if res.Error != nil {
			return models.NewInternalError(res.Error)
		}
		if res.RowsAffected == 0 {
			return models.NewNotFoundError("Recipe", "")
		}
		if err := tx.Where("recipe_id = ?", id).Delete(&models.Comment{}).Error; err != nil {
			return models.NewInternalError(err)
		}
		if err := tx.Where("recipe_id = ?", id).Delete(&models.Favorite{}).Error; err != nil {
			return models.NewInternalError(err)
		}
		return nil
	})
}

func (r *recipeRepository) IncrementReaction(ctx context.Context, id string, rt models.ReactionType) (int64, error) {
	col := rt.Column()
	if col == "" {
		return 0, models.NewValidationError("Invalid reaction type")
	}

	var count int64
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Recipe{}).
			Where("id = ?", id).
			UpdateColumn(col, gorm.Expr(col+" + ?", 1))
		if res.Error != nil {
			return models.NewInternalError(res.Error)
		}
		if res.RowsAffected == 0 {
			return models.NewNotFoundError("Recipe", "")
		}
		return tx.Model(&models.Recipe{}).Where("id = ?", id).Select(col).Scan(&count).Error
	})
	if err != nil {
		return 0, translate(err, "Recipe", "")
	}
	return count, nil
}

func (r *recipeRepository) GetReactions(ctx context.Context, id string) (models.Reactions, error) {
	var recipe models.Recipe
	err := r.db.WithContext(ctx).
		Select("id", "reaction_cant_wait", "reaction_loved_it", "reaction_disliked").
		First(&recipe, "id = ?", id).Error
	if err != nil {
		return models.Reactions{}, translate(err, "Recipe", "")
	}
	return recipe.Reactions, nil
}
