package mongorepo

import (
	"context"
	"time"

	"dishswap/internal/models"
	"dishswap/internal/repository"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type commentRepository struct {
	coll *mongo.Collection
}

// NewCommentRepository returns a CommentRepository backed by the comments collection.
func NewCommentRepository(db *mongo.Database) repository.CommentRepository {
	return &commentRepository{coll: comments(db)}
}

func (r *commentRepository) Create(ctx context.Context, comment *models.Comment) error {
	if comment.ID == "" {
		comment.ID = uuid.NewString()
	}
	if comment.CreatedAt.IsZero() {
		comment.CreatedAt = time.Now().UTC()
	}
	if _, err := r.coll.InsertOne(ctx, comment); err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *commentRepository) ListByRecipe(ctx context.Context, recipeID string, limit, offset int) (models.Page[models.Comment], error) {
	var page models.Page[models.Comment]
	filter := bson.M{"recipeId": recipeID}

	total, err := r.coll.CountDocuments(ctx, filter)
	if err != nil {
		return page, models.NewInternalError(err)
	}
	page.Total = total

	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}}).
		SetSkip(int64(offset)).
		SetLimit(int64(limit))
	cur, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return page, models.NewInternalError(err)
	}
	if err := cur.All(ctx, &page.Items); err != nil {
		return page, models.NewInternalError(err)
	}
	return page, nil
}
