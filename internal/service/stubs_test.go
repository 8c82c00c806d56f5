package service

import (
	"context"
	"errors"
	"sync"
	"testing"

	"dishswap/internal/events"
	"dishswap/internal/models"
	"dishswap/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// userRepoStub is a stub for repository.UserRepository.
type userRepoStub struct {
	createFn     func(context.Context, *models.User) error
	getByIDFn    func(context.Context, string) (*models.User, error)
	getByEmailFn func(context.Context, string) (*models.User, error)
	getByIDsFn   func(context.Context, []string) ([]models.User, error)
	listFn       func(context.Context, int, int) (models.Page[models.User], error)
}

func (s *userRepoStub) Create(ctx context.Context, u *models.User) error { return s.createFn(ctx, u) }
func (s *userRepoStub) GetByID(ctx context.Context, id string) (*models.User, error) {
	return s.getByIDFn(ctx, id)
}
func (s *userRepoStub) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.getByEmailFn(ctx, email)
}
func (s *userRepoStub) GetByIDs(ctx context.Context, ids []string) ([]models.User, error) {
	return s.getByIDsFn(ctx, ids)
}
func (s *userRepoStub) List(ctx context.Context, limit, offset int) (models.Page[models.User], error) {
	return s.listFn(ctx, limit, offset)
}

func noopUserRepo() *userRepoStub {
	return &userRepoStub{
		createFn: func(_ context.Context, u *models.User) error {
			u.ID = "user-1"
			return nil
		},
		getByIDFn: func(_ context.Context, id string) (*models.User, error) {
			return &models.User{ID: id, Name: "Ada"}, nil
		},
		getByEmailFn: func(_ context.Context, _ string) (*models.User, error) {
			return nil, models.NewNotFoundError("User", "")
		},
		getByIDsFn: func(_ context.Context, _ []string) ([]models.User, error) { return nil, nil },
		listFn: func(_ context.Context, _, _ int) (models.Page[models.User], error) {
			return models.Page[models.User]{}, nil
		},
	}
}

// recipeRepoStub is a stub for repository.RecipeRepository.
type recipeRepoStub struct {
	createFn       func(context.Context, *models.Recipe) error
	getByIDFn      func(context.Context, string) (*models.Recipe, error)
	getByIDsFn     func(context.Context, []string) ([]models.Recipe, error)
	listFn         func(context.Context, repository.RecipeQuery) (models.Page[models.Recipe], error)
	updateFn       func(context.Context, *models.Recipe) error
	deleteFn       func(context.Context, string) error
	incrementFn    func(context.Context, string, models.ReactionType) (int64, error)
	getReactionsFn func(context.Context, string) (models.Reactions, error)
}

func (s *recipeRepoStub) Create(ctx context.Context, r *models.Recipe) error {
	return s.createFn(ctx, r)
}
func (s *recipeRepoStub) GetByID(ctx context.Context, id string) (*models.Recipe, error) {
	return s.getByIDFn(ctx, id)
}
func (s *recipeRepoStub) GetByIDs(ctx context.Context, ids []string) ([]models.Recipe, error) {
	return s.getByIDsFn(ctx, ids)
}
func (s *recipeRepoStub) List(ctx context.Context, q repository.RecipeQuery) (models.Page[models.Recipe], error) {
	return s.listFn(ctx, q)
}
func (s *recipeRepoStub) Update(ctx context.Context, r *models.Recipe) error {
	return s.updateFn(ctx, r)
}
func (s *recipeRepoStub) Delete(ctx context.Context, id string) error { return s.deleteFn(ctx, id) }
func (s *recipeRepoStub) IncrementReaction(ctx context.Context, id string, rt models.ReactionType) (int64, error) {
	return s.incrementFn(ctx, id, rt)
}
func (s *recipeRepoStub) GetReactions(ctx context.Context, id string) (models.Reactions, error) {
	return s.getReactionsFn(ctx, id)
}

func noopRecipeRepo() *recipeRepoStub {
	return &recipeRepoStub{
		createFn: func(_ context.Context, r *models.Recipe) error {
			r.ID = "recipe-1"
			return nil
		},
		getByIDFn: func(_ context.Context, id string) (*models.Recipe, error) {
			return &models.Recipe{ID: id, Title: "Soup", UserID: "owner"}, nil
		},
		getByIDsFn: func(_ context.Context, _ []string) ([]models.Recipe, error) { return nil, nil },
		listFn: func(_ context.Context, _ repository.RecipeQuery) (models.Page[models.Recipe], error) {
			return models.Page[models.Recipe]{}, nil
		},
		updateFn:    func(_ context.Context, _ *models.Recipe) error { return nil },
		deleteFn:    func(_ context.Context, _ string) error { return nil },
		incrementFn: func(_ context.Context, _ string, _ models.ReactionType) (int64, error) { return 1, nil },
		getReactionsFn: func(_ context.Context, _ string) (models.Reactions, error) {
			return models.Reactions{}, nil
		},
	}
}

func missingRecipe(_ context.Context, _ string) (*models.Recipe, error) {
	return nil, models.NewNotFoundError("Recipe", "")
}

// commentRepoStub is a stub for repository.CommentRepository.
type commentRepoStub struct {
	createFn       func(context.Context, *models.Comment) error
	listByRecipeFn func(context.Context, string, int, int) (models.Page[models.Comment], error)
}

func (s *commentRepoStub) Create(ctx context.Context, c *models.Comment) error {
	return s.createFn(ctx, c)
}
func (s *commentRepoStub) ListByRecipe(ctx context.Context, recipeID string, limit, offset int) (models.Page[models.Comment], error) {
	return s.listByRecipeFn(ctx, recipeID, limit, offset)
}

func noopCommentRepo() *commentRepoStub {
	return &commentRepoStub{
		createFn: func(_ context.Context, c *models.Comment) error {
			c.ID = "comment-1"
			return nil
		},
		listByRecipeFn: func(_ context.Context, _ string, _, _ int) (models.Page[models.Comment], error) {
			return models.Page[models.Comment]{}, nil
		},
	}
}

// memFavoriteRepo is an in-memory repository.FavoriteRepository.
type memFavoriteRepo struct {
	mu    sync.Mutex
	order map[string][]string
}

func newMemFavoriteRepo() *memFavoriteRepo {
	return &memFavoriteRepo{order: map[string][]string{}}
}

func (m *memFavoriteRepo) Add(_ context.Context, userID, recipeID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, id := range m.order[userID] {
		if id == recipeID {
			return false, nil
		}
	}
	m.order[userID] = append(m.order[userID], recipeID)
	return true, nil
}

func (m *memFavoriteRepo) Remove(_ context.Context, userID, recipeID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	ids := m.order[userID]
	for i, id := range ids {
		if id == recipeID {
			m.order[userID] = append(ids[:i:i], ids[i+1:]...)
			return true, nil
		}
	}
	return false, nil
}

func (m *memFavoriteRepo) Exists(_ context.Context, userID, recipeID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, id := range m.order[userID] {
		if id == recipeID {
			return true, nil
		}
	}
	return false, nil
}

func (m *memFavoriteRepo) ListRecipeIDs(_ context.Context, userID string) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	ids := m.order[userID]
	out := make([]string, 0, len(ids))
	for i := len(ids) - 1; i >= 0; i-- {
		out = append(out, ids[i])
	}
	return out, nil
}

// recordingPublisher keeps every published event.
type recordingPublisher struct {
	mu     sync.Mutex
	events []events.Event
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, evt events.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.events = append(p.events, evt)
	return nil
}

func (p *recordingPublisher) Close() error { return nil }

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.EventType)
	}
	return out
}

func assertAppErrorCode(t *testing.T, err error, code string) {
	t.Helper()
	require.Error(t, err)
	var appErr *models.AppError
	require.True(t, errors.As(err, &appErr), "expected AppError, got %T: %v", err, err)
	assert.Equal(t, code, appErr.Code)
}

// assertValidationError asserts that err is an AppError with code VALIDATION_ERROR.
func assertValidationError(t *testing.T, err error) {
	t.Helper()
	assertAppErrorCode(t, err, models.CodeValidation)
}
