// Package mongorepo implements the repository interfaces on MongoDB.
package mongorepo

import (
	"errors"
	"regexp"

	"dishswap/internal/database"
	"dishswap/internal/models"
	"dishswap/internal/repository"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// NewSet returns the MongoDB-backed repositories for db.
func NewSet(db *mongo.Database) repository.Set {
	return repository.Set{
		Users:     NewUserRepository(db),
		Recipes:   NewRecipeRepository(db),
		Comments:  NewCommentRepository(db),
		Favorites: NewFavoriteRepository(db),
	}
}

func users(db *mongo.Database) *mongo.Collection    { return db.Collection(database.UsersCollection) }
func recipes(db *mongo.Database) *mongo.Collection  { return db.Collection(database.RecipesCollection) }
func comments(db *mongo.Database) *mongo.Collection { return db.Collection(database.CommentsCollection) }

func translate(err error, resource string) error {
	if err == nil {
		return nil
	}
	var appErr *models.AppError
	if errors.As(err, &appErr) {
		return err
	}
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.NewNotFoundError(resource, "")
	}
	return models.NewInternalError(err)
}

// containsFold matches s anywhere in a field, case-insensitively and literally.
func containsFold(s string) primitive.Regex {
	return primitive.Regex{Pattern: regexp.QuoteMeta(s), Options: "i"}
}

// equalFold matches a field equal to s, case-insensitively.
func equalFold(s string) primitive.Regex {
	return primitive.Regex{Pattern: "^" + regexp.QuoteMeta(s) + "$", Options: "i"}
}
