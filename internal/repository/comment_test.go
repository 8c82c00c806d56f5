package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	"dishswap/internal/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCommentRepository_Create(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewCommentRepository(db)

	comment := &models.Comment{RecipeID: "r-1", UserID: "u-1", Text: "Nice recipe!"}

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO "comments"`)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, repo.Create(context.Background(), comment))
	assert.NotEmpty(t, comment.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCommentRepository_ListByRecipe(t *testing.T) {
	repo := NewCommentRepository(setupSQLiteDB(t))
	ctx := context.Background()
	recipeID := uuid.NewString()
	base := time.Now().UTC().Add(-time.Hour)

	for i, text := range []string{"first", "second", "third"} {
		require.NoError(t, repo.Create(ctx, &models.Comment{
			RecipeID:  recipeID,
			UserID:    uuid.NewString(),
			Text:      text,
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		}))
	}
	require.NoError(t, repo.Create(ctx, &models.Comment{RecipeID: uuid.NewString(), UserID: uuid.NewString(), Text: "elsewhere"}))

	page, err := repo.ListByRecipe(ctx, recipeID, 2, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(3), page.Total)
	require.Len(t, page.Items, 2)
	assert.Equal(t, "third", page.Items[0].Text)
	assert.Equal(t, "second", page.Items[1].Text)
}
