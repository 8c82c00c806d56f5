package mongorepo

import (
	"context"
	"time"

	"dishswap/internal/middleware"
	"dishswap/internal/models"
	"dishswap/internal/repository"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type recipeRepository struct {
	db   *mongo.Database
	coll *mongo.Collection
}

// NewRecipeRepository returns a RecipeRepository backed by the recipes collection.
func NewRecipeRepository(db *mongo.Database) repository.RecipeRepository {
	return &recipeRepository{db: db, coll: recipes(db)}
}

func (r *recipeRepository) Create(ctx context.Context, recipe *models.Recipe) error {
	if recipe.ID == "" {
		recipe.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if recipe.CreatedAt.IsZero() {
		recipe.CreatedAt = now
	}
	recipe.UpdatedAt = now

	if _, err := r.coll.InsertOne(ctx, recipe); err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *recipeRepository) GetByID(ctx context.Context, id string) (*models.Recipe, error) {
	var recipe models.Recipe
	if err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&recipe); err != nil {
		return nil, translate(err, "Recipe")
	}
	return &recipe, nil
}

func (r *recipeRepository) GetByIDs(ctx context.Context, ids []string) ([]models.Recipe, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	cur, err := r.coll.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	var out []models.Recipe
	if err := cur.All(ctx, &out); err != nil {
		return nil, models.NewInternalError(err)
	}
	return out, nil
}

func recipeFilter(q repository.RecipeQuery) bson.M {
	filter := bson.M{}
	if q.Search != "" {
		re := containsFold(q.Search)
		filter["$or"] = bson.A{
			bson.M{"title": re},
			bson.M{"description": re},
			bson.M{"ingredients": re},
		}
	}
	if q.Cuisine != "" {
		filter["cuisine"] = equalFold(q.Cuisine)
	}
	if q.Difficulty != "" {
		filter["difficulty"] = q.Difficulty
	}
	if q.MaxCookingTime > 0 {
		filter["cookingTime"] = bson.M{"$lte": q.MaxCookingTime}
	}
	if q.UserID != "" {
		filter["userId"] = q.UserID
	}
	return filter
}

func (r *recipeRepository) List(ctx context.Context, q repository.RecipeQuery) (models.Page[models.Recipe], error) {
	var page models.Page[models.Recipe]
	filter := recipeFilter(q)

	total, err := r.coll.CountDocuments(ctx, filter)
	if err != nil {
		return page, models.NewInternalError(err)
	}
	page.Total = total

	var cur *mongo.Cursor
	switch q.Sort {
	case repository.SortPopular:
		pipeline := mongo.Pipeline{
			{{Key: "$match", Value: filter}},
			{{Key: "$addFields", Value: bson.M{"popularity": bson.M{"$add": bson.A{"$reactions.Cant_wait", "$reactions.Loved_it"}}}}},
			{{Key: "$sort", Value: bson.D{{Key: "popularity", Value: -1}, {Key: "createdAt", Value: -1}}}},
			{{Key: "$skip", Value: int64(q.Offset)}},
			{{Key: "$limit", Value: int64(q.Limit)}},
			{{Key: "$project", Value: bson.M{"popularity": 0}}},
		}
		cur, err = r.coll.Aggregate(ctx, pipeline)
	default:
		order := -1
		if q.Sort == repository.SortOldest {
			order = 1
		}
		opts := options.Find().
			SetSort(bson.D{{Key: "createdAt", Value: order}}).
			SetSkip(int64(q.Offset)).
			SetLimit(int64(q.Limit))
		cur, err = r.coll.Find(ctx, filter, opts)
	}
	if err != nil {
		return page, models.NewInternalError(err)
	}
	if err := cur.All(ctx, &page.Items); err != nil {
		return page, models.NewInternalError(err)
	}
	return page, nil
}

func (r *recipeRepository) Update(ctx context.Context, recipe *models.Recipe) error {
	recipe.UpdatedAt = time.Now().UTC()
	set := bson.M{
		"title":       recipe.Title,
		"description": recipe.Description,
		"ingredients": recipe.Ingredients,
		"cuisine":     recipe.Cuisine,
		"difficulty":  recipe.Difficulty,
		"cookingTime": recipe.CookingTime,
		"imageData":   recipe.ImageData,
		"imageType":   recipe.ImageType,
		"imageUrl":    recipe.ImageURL,
		"updatedAt":   recipe.UpdatedAt,
	}
	res, err := r.coll.UpdateOne(ctx, bson.M{"_id": recipe.ID}, bson.M{"$set": set})
	if err != nil {
		return models.NewInternalError(err)
	}
	if res.MatchedCount == 0 {
		return models.NewNotFoundError("Recipe", "")
	}
	return nil
}

// Delete removes the recipe, then its comments and any favorites pointing at it.
// The follow-up writes are not transactional; failures there are logged.
func (r *recipeRepository) Delete(ctx context.Context, id string) error {
	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return models.NewInternalError(err)
	}
	if res.DeletedCount == 0 {
		return models.NewNotFoundError("Recipe", "")
	}

	if _, err := comments(r.db).DeleteMany(ctx, bson.M{"recipeId": id}); err != nil {
		middleware.Logger.WarnContext(ctx, "failed to delete comments of removed recipe", "recipe_id", id, "error", err)
	}
	if _, err := users(r.db).UpdateMany(ctx,
		bson.M{"favorites": id},
		bson.M{"$pull": bson.M{"favorites": id}},
	); err != nil {
		middleware.Logger.WarnContext(ctx, "failed to drop favorites of removed recipe", "recipe_id", id, "error", err)
	}
	return nil
}

func (r *recipeRepository) IncrementReaction(ctx context.Context, id string, rt models.ReactionType) (int64, error) {
	if rt.Column() == "" {
		return 0, models.NewValidationError("Invalid reaction type")
	}

	opts := options.FindOneAndUpdate().
		SetReturnDocument(options.After).
		SetProjection(bson.M{"reactions": 1})

	var updated models.Recipe
	err := r.coll.FindOneAndUpdate(ctx,
		bson.M{"_id": id},
		bson.M{"$inc": bson.M{rt.Field(): 1}},
		opts,
	).Decode(&updated)
	if err != nil {
		return 0, translate(err, "Recipe")
	}
	return updated.Reactions.Count(rt), nil
}

func (r *recipeRepository) GetReactions(ctx context.Context, id string) (models.Reactions, error) {
	var recipe models.Recipe
	opts := options.FindOne().SetProjection(bson.M{"reactions": 1})
	if err := r.coll.FindOne(ctx, bson.M{"_id": id}, opts).Decode(&recipe); err != nil {
		return models.Reactions{}, translate(err, "Recipe")
	}
	return recipe.Reactions, nil
}
