package repository

import (
	"context"

	"dishswap/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type commentRepository struct {
	db *gorm.DB
}

// NewCommentRepository creates a new CommentRepository
func NewCommentRepository(db *gorm.DB) CommentRepository {
	return &commentRepository{db: db}
}

func (r *commentRepository) Create(ctx context.Context, comment *models.Comment) error {
	if comment.ID == "" {
		comment.ID = uuid.NewString()
	}
	if err := r.db.WithContext(ctx).Create(comment).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *commentRepository) ListByRecipe(ctx context.Context, recipeID string, limit, offset int) (models.Page[models.Comment], error) {
	var page models.Page[models.Comment]
	db := r.db.WithContext(ctx).Model(&models.Comment{}).Where("recipe_id = ?", recipeID).Session(&gorm.Session{})
	if err := db.Count(&page.Total).Error; err != nil {
		return page, models.NewInternalError(err)
	}
	if err := db.Order("created_at desc").Limit(limit).Offset(offset).Find(&page.Items).Error; err != nil {
		return page, models.NewInternalError(err)
	}
	return page, nil
}
