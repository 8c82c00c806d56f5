package service

import (
	"context"
	"testing"

	"dishswap/internal/cache"
	"dishswap/internal/events"
	"dishswap/internal/models"
	"dishswap/internal/repository"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestUserService_Register(t *testing.T) {
	t.Parallel()

	t.Run("validation", func(t *testing.T) {
		t.Parallel()
		svc := NewUserService(noopUserRepo(), noopRecipeRepo(), nil, nil, bcrypt.MinCost)
		cases := []RegisterInput{
			{Email: "a@b.co", Password: "secret123"},
			{Name: "Ada", Password: "secret123"},
			{Name: "Ada", Email: "not-an-email", Password: "secret123"},
			{Name: "Ada", Email: "a@b.co", Password: "short1"},
			{Name: "Ada", Email: "a@b.co", Password: "lettersonly"},
		}
		for _, in := range cases {
			_, err := svc.Register(context.Background(), in)
			assertValidationError(t, err)
		}
	})

	t.Run("duplicate email", func(t *testing.T) {
		t.Parallel()
		users := noopUserRepo()
		users.getByEmailFn = func(_ context.Context, email string) (*models.User, error) {
			return &models.User{ID: "existing", Email: email}, nil
		}
		svc := NewUserService(users, noopRecipeRepo(), nil, nil, bcrypt.MinCost)
		_, err := svc.Register(context.Background(), RegisterInput{Name: "Ada", Email: "ada@example.com", Password: "secret123"})
		assertValidationError(t, err)
		assert.Equal(t, "User already exists", err.Error())
	})

	t.Run("success hashes password and emits event", func(t *testing.T) {
		t.Parallel()
		var created *models.User
		users := noopUserRepo()
		users.createFn = func(_ context.Context, u *models.User) error {
			u.ID = "user-9"
			created = u
			return nil
		}
		pub := &recordingPublisher{}
		svc := NewUserService(users, noopRecipeRepo(), nil, pub, bcrypt.MinCost)

		user, err := svc.Register(context.Background(), RegisterInput{
			Name:     "  Ada  ",
			Email:    " Ada@Example.COM ",
			Password: "secret123",
		})
		require.NoError(t, err)
		require.NotNil(t, created)
		assert.Equal(t, "user-9", user.ID)
		assert.Equal(t, "Ada", user.Name)
		assert.Equal(t, "ada@example.com", user.Email)
		assert.NotEqual(t, "secret123", user.Password)
		assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.Password), []byte("secret123")))
		assert.Equal(t, []string{events.TypeUserRegistered}, pub.types())
	})
}

func TestUserService_Login(t *testing.T) {
	t.Parallel()

	hash, err := bcrypt.GenerateFromPassword([]byte("secret123"), bcrypt.MinCost)
	require.NoError(t, err)

	users := noopUserRepo()
	users.getByEmailFn = func(_ context.Context, email string) (*models.User, error) {
		if email != "ada@example.com" {
			return nil, models.NewNotFoundError("User", "")
		}
		return &models.User{ID: "user-1", Email: email, Password: string(hash)}, nil
	}
	svc := NewUserService(users, noopRecipeRepo(), nil, nil, bcrypt.MinCost)
	ctx := context.Background()

	user, err := svc.Login(ctx, LoginInput{Email: "ada@example.com", Password: "secret123"})
	require.NoError(t, err)
	assert.Equal(t, "user-1", user.ID)

	_, err = svc.Login(ctx, LoginInput{Email: "ada@example.com", Password: "wrong-pass1"})
	assertAppErrorCode(t, err, models.CodeUnauthorized)

	_, err = svc.Login(ctx, LoginInput{Email: "nobody@example.com", Password: "secret123"})
	assertAppErrorCode(t, err, models.CodeUnauthorized)

	_, err = svc.Login(ctx, LoginInput{Email: "", Password: ""})
	assertValidationError(t, err)
}

func TestUserService_GetUserIncludesFavorites(t *testing.T) {
	t.Parallel()

	favs := newMemFavoriteRepo()
	_, _ = favs.Add(context.Background(), "user-1", "r1")
	_, _ = favs.Add(context.Background(), "user-1", "r2")

	svc := NewUserService(noopUserRepo(), noopRecipeRepo(), favs, nil, bcrypt.MinCost)
	user, err := svc.GetUser(context.Background(), "user-1")
	require.NoError(t, err)
	assert.Equal(t, []string{"r2", "r1"}, user.Favorites)
}

func TestUserService_CachedUserReflectsRemovedFavorites(t *testing.T) {
	mr := miniredis.RunT(t)
	cache.SetClient(redis.NewClient(&redis.Options{Addr: mr.Addr()}))
	t.Cleanup(func() { cache.SetClient(nil) })

	users := noopUserRepo()
	reads := 0
	users.getByIDFn = func(_ context.Context, id string) (*models.User, error) {
		reads++
		return &models.User{ID: id, Name: "Ada"}, nil
	}
	favs := newMemFavoriteRepo()
	ctx := context.Background()
	_, _ = favs.Add(ctx, "user-1", "r1")

	svc := NewUserService(users, noopRecipeRepo(), favs, nil, bcrypt.MinCost)
	user, err := svc.GetUser(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, []string{"r1"}, user.Favorites)

	cached, err := mr.Get(cache.UserKey("user-1"))
	require.NoError(t, err)
	assert.NotContains(t, cached, "r1")

	// A recipe delete drops its favorites without touching the user's cache entry.
	_, _ = favs.Remove(ctx, "user-1", "r1")

	user, err = svc.GetUser(ctx, "user-1")
	require.NoError(t, err)
	assert.Empty(t, user.Favorites)
	assert.NotNil(t, user.Favorites)
	assert.Equal(t, 1, reads, "user row should come from the cache")
}

func TestUserService_GetProfile(t *testing.T) {
	t.Parallel()

	recipes := noopRecipeRepo()
	var gotQuery repository.RecipeQuery
	recipes.listFn = func(_ context.Context, q repository.RecipeQuery) (models.Page[models.Recipe], error) {
		gotQuery = q
		return models.Page[models.Recipe]{Items: []models.Recipe{{ID: "r1", UserID: "user-1"}}, Total: 1}, nil
	}
	svc := NewUserService(noopUserRepo(), recipes, newMemFavoriteRepo(), nil, bcrypt.MinCost)

	profile, err := svc.GetProfile(context.Background(), "user-1", 10, 0)
	require.NoError(t, err)
	assert.Equal(t, "user-1", profile.User.ID)
	assert.Equal(t, []string{}, profile.User.Favorites)
	assert.Equal(t, int64(1), profile.Recipes.Total)
	assert.Equal(t, "user-1", gotQuery.UserID)
	assert.Equal(t, 10, gotQuery.Limit)
}
