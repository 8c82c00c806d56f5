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
	"golang.org/x/crypto/bcrypt"
)

// errInvalidCredentials is returned for both unknown emails and wrong passwords.
var errInvalidCredentials = models.NewUnauthorizedError("Invalid email or password")

type UserService struct {
	userRepo     repository.UserRepository
	recipeRepo   repository.RecipeRepository
	favoriteRepo repository.FavoriteRepository
	publisher    events.Publisher
	bcryptCost   int
}

type RegisterInput struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Profile is the caller's account with their own recipes.
type Profile struct {
	User    *models.User
	Recipes models.Page[models.Recipe]
}

func NewUserService(
	userRepo repository.UserRepository,
	recipeRepo repository.RecipeRepository,
	favoriteRepo repository.FavoriteRepository,
	publisher events.Publisher,
	bcryptCost int,
) *UserService {
	if bcryptCost < bcrypt.MinCost || bcryptCost > bcrypt.MaxCost {
		bcryptCost = bcrypt.DefaultCost
	}
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	return &UserService{
		userRepo:     userRepo,
		recipeRepo:   recipeRepo,
		favoriteRepo: favoriteRepo,
		publisher:    publisher,
		bcryptCost:   bcryptCost,
	}
}

func (s *UserService) Register(ctx context.Context, in RegisterInput) (_ *models.User, err error) {
	ctx, span := observability.StartServiceSpan(ctx, "UserService", "Register")
	defer func() { observability.EndSpan(span, err) }()

	in.Name = strings.TrimSpace(in.Name)
	in.Email = models.NormalizeEmail(in.Email)

	if in.Name == "" || in.Email == "" || in.Password == "" {
		return nil, models.NewValidationError("Name, email and password are required")
	}
	if err := validation.ValidateName(in.Name); err != nil {
		return nil, models.NewValidationError(err.Error())
	}
	if err := validation.ValidateEmail(in.Email); err != nil {
		return nil, models.NewValidationError(err.Error())
	}
	if err := validation.ValidatePassword(in.Password); err != nil {
		return nil, models.NewValidationError(err.Error())
	}

	existing, err := s.userRepo.GetByEmail(ctx, in.Email)
	if err != nil && !models.IsCode(err, models.CodeNotFound) {
		return nil, err
	}
	if existing != nil {
		return nil, models.NewValidationError("User already exists")
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.bcryptCost)
	if err != nil {
		return nil, models.NewInternalError(err)
	}

	user := &models.User{
		Name:      in.Name,
		Email:     in.Email,
		Password:  string(hashed),
		Favorites: []string{},
	}
	// The unique index still guards the race between lookup and insert.
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}

	events.Emit(ctx, s.publisher, events.New(events.TypeUserRegistered, user.ID, "", map[string]any{
		"name": user.Name,
	}))
	return user, nil
}

func (s *UserService) Login(ctx context.Context, in LoginInput) (_ *models.User, err error) {
	ctx, span := observability.StartServiceSpan(ctx, "UserService", "Login")
	defer func() { observability.EndSpan(span, err) }()

	if strings.TrimSpace(in.Email) == "" || in.Password == "" {
		return nil, models.NewValidationError("Email and password are required")
	}

	// No stored hash can match a password bcrypt refuses to hash.
	if len(in.Password) > validation.MaxPasswordBytes {
		return nil, errInvalidCredentials
	}

	user, err := s.userRepo.GetByEmail(ctx, in.Email)
	if err != nil {
		if models.IsCode(err, models.CodeNotFound) {
			return nil, errInvalidCredentials
		}
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(in.Password)); err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return nil, errInvalidCredentials
		}
		return nil, models.NewInternalError(err)
	}
	return user, nil
}

// GetUser loads a user through the cache and fills in their favorites.
// Favorites are never cached since recipe deletes can remove them from any user.
func (s *UserService) GetUser(ctx context.Context, id string) (*models.User, error) {
	var user models.User
	err := cache.Aside(ctx, cache.UserKey(id), &user, cache.UserTTL, func() error {
		u, err := s.userRepo.GetByID(ctx, id)
		if err != nil {
			return err
		}
		user = *u
		user.Favorites = nil
		return nil
	})
	if err != nil {
		return nil, err
	}

	user.Favorites = []string{}
	if s.favoriteRepo != nil {
		ids, err := s.favoriteRepo.ListRecipeIDs(ctx, id)
		if err != nil {
			return nil, err
		}
		if ids != nil {
			user.Favorites = ids
		}
	}
	return &user, nil
}

func (s *UserService) ListUsers(ctx context.Context, limit, offset int) (models.Page[models.User], error) {
	return s.userRepo.List(ctx, limit, offset)
}

// GetProfile returns the user and a page of the recipes they own.
func (s *UserService) GetProfile(ctx context.Context, userID string, limit, offset int) (_ *Profile, err error) {
	ctx, span := observability.StartServiceSpan(ctx, "UserService", "GetProfile",
		attribute.String("user.id", userID),
	)
	defer func() { observability.EndSpan(span, err) }()

	user, err := s.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	recipes, err := s.recipeRepo.List(ctx, repository.RecipeQuery{
		UserID: userID,
		Sort:   repository.SortNewest,
		Limit:  limit,
		Offset: offset,
	})
	if err != nil {
		return nil, err
	}
	return &Profile{User: user, Recipes: recipes}, nil
}
