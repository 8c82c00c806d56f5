package mongorepo

import (
	"context"
	"slices"

	"dishswap/internal/models"
	"dishswap/internal/repository"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// favoriteRepository keeps favorites as an id array on the user document.
type favoriteRepository struct {
	coll *mongo.Collection
}

// NewFavoriteRepository returns a FavoriteRepository storing ids on user documents.
func NewFavoriteRepository(db *mongo.Database) repository.FavoriteRepository {
	return &favoriteRepository{coll: users(db)}
}

func (r *favoriteRepository) Add(ctx context.Context, userID, recipeID string) (bool, error) {
	res, err := r.coll.UpdateOne(ctx,
		bson.M{"_id": userID},
		bson.M{"$addToSet": bson.M{"favorites": recipeID}},
	)
	if err != nil {
		return false, models.NewInternalError(err)
	}
	if res.MatchedCount == 0 {
		return false, models.NewNotFoundError("User", "")
	}
	return res.ModifiedCount > 0, nil
}

func (r *favoriteRepository) Remove(ctx context.Context, userID, recipeID string) (bool, error) {
	res, err := r.coll.UpdateOne(ctx,
		bson.M{"_id": userID},
		bson.M{"$pull": bson.M{"favorites": recipeID}},
	)
	if err != nil {
		return false, models.NewInternalError(err)
	}
	return res.ModifiedCount > 0, nil
}

func (r *favoriteRepository) Exists(ctx context.Context, userID, recipeID string) (bool, error) {
	n, err := r.coll.CountDocuments(ctx, bson.M{"_id": userID, "favorites": recipeID})
	if err != nil {
		return false, models.NewInternalError(err)
	}
	return n > 0, nil
}

func (r *favoriteRepository) ListRecipeIDs(ctx context.Context, userID string) ([]string, error) {
	var doc struct {
		Favorites []string `bson:"favorites"`
	}
	opts := options.FindOne().SetProjection(bson.M{"favorites": 1})
	if err := r.coll.FindOne(ctx, bson.M{"_id": userID}, opts).Decode(&doc); err != nil {
		return nil, translate(err, "User")
	}
	// $addToSet appends, so the newest favorite is last.
	slices.Reverse(doc.Favorites)
	return doc.Favorites, nil
}
