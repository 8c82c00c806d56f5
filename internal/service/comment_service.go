package service

import (
	"context"
	"strings"

	"dishswap/internal/events"
	"dishswap/internal/middleware"
	"dishswap/internal/models"
	"dishswap/internal/observability"
	"dishswap/internal/repository"
	"dishswap/internal/validation"

	"go.opentelemetry.io/otel/attribute"
)

type CommentService struct {
	commentRepo repository.CommentRepository
	recipeRepo  repository.RecipeRepository
	userRepo    repository.UserRepository
	publisher   events.Publisher
}

type CreateCommentInput struct {
	UserID   string
	RecipeID string
	Text     string
}

func NewCommentService(
	commentRepo repository.CommentRepository,
	recipeRepo repository.RecipeRepository,
	userRepo repository.UserRepository,
	publisher events.Publisher,
) *CommentService {
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	return &CommentService{
		commentRepo: commentRepo,
		recipeRepo:  recipeRepo,
		userRepo:    userRepo,
		publisher:   publisher,
	}
}

// CreateComment stores a comment authored by the caller on an existing recipe.
func (s *CommentService) CreateComment(ctx context.Context, in CreateCommentInput) (_ *models.Comment, err error) {
	ctx, span := observability.StartServiceSpan(ctx, "CommentService", "CreateComment",
		attribute.String("recipe.id", in.RecipeID),
	)
	defer func() { observability.EndSpan(span, err) }()

	text := strings.TrimSpace(in.Text)
	if err := validation.ValidateComment(text); err != nil {
		return nil, models.NewValidationError(err.Error())
	}
	if in.RecipeID == "" {
		return nil, models.NewValidationError("recipeId is required")
	}
	if _, err := s.recipeRepo.GetByID(ctx, in.RecipeID); err != nil {
		return nil, err
	}

	comment := &models.Comment{
		RecipeID: in.RecipeID,
		UserID:   in.UserID,
		Text:     text,
	}
	if err := s.commentRepo.Create(ctx, comment); err != nil {
		return nil, err
	}

	if author, err := s.userRepo.GetByID(ctx, in.UserID); err == nil {
		comment.Author = &models.Author{ID: author.ID, Name: author.Name}
	} else {
		middleware.Logger.WarnContext(ctx, "comment author lookup failed", "user_id", in.UserID, "error", err)
	}

	events.Emit(ctx, s.publisher, events.New(events.TypeCommentCreated, in.UserID, in.RecipeID, map[string]any{
		"commentId": comment.ID,
	}))
	return comment, nil
}

// ListComments returns a page of a recipe's comments, newest first, with authors attached.
func (s *CommentService) ListComments(ctx context.Context, recipeID string, limit, offset int) (models.Page[models.Comment], error) {
	if recipeID == "" {
		return models.Page[models.Comment]{}, models.NewValidationError("recipeId is required")
	}
	page, err := s.commentRepo.ListByRecipe(ctx, recipeID, limit, offset)
	if err != nil {
		return page, err
	}
	if page.Items == nil {
		page.Items = []models.Comment{}
	}
	if err := s.attachAuthors(ctx, page.Items); err != nil {
		return page, err
	}
	return page, nil
}

func (s *CommentService) attachAuthors(ctx context.Context, comments []models.Comment) error {
	if len(comments) == 0 {
		return nil
	}
	seen := make(map[string]bool, len(comments))
	ids := make([]string, 0, len(comments))
	for _, c := range comments {
		if !seen[c.UserID] {
			seen[c.UserID] = true
			ids = append(ids, c.UserID)
		}
	}

	users, err := s.userRepo.GetByIDs(ctx, ids)
	if err != nil {
		return err
	}
	authors := make(map[string]*models.Author, len(users))
	for _, u := range users {
		authors[u.ID] = &models.Author{ID: u.ID, Name: u.Name}
	}
	for i := range comments {
		comments[i].Author = authors[comments[i].UserID]
	}
	return nil
}
