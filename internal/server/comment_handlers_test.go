package server

import (
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type commentBody struct {
	ID       string `json:"id"`
	Text     string `json:"text"`
	RecipeID string `json:"recipeId"`
	UserID   string `json:"userId"`
	Author   *struct {
		ID   string `json:"id"`
		Name string `json:"name"`
	} `json:"author"`
}

func TestComments(t *testing.T) {
	app := newTestServer(t)
	cook := registerUser(t, app, "Cook", "cook@example.com")
	critic := registerUser(t, app, "Critic", "critic@example.com")
	recipe := createRecipe(t, app, cook.Token, map[string]any{"title": "Paella"})

	post := func(token string, body map[string]string) apiResponse {
		return doJSON(t, app, http.MethodPost, "/api/comments", token, body)
	}

	resp := post(critic.Token, map[string]string{"recipeId": recipe.ID, "text": "   "})
	assert.Equal(t, http.StatusBadRequest, resp.Status)
	assert.Equal(t, "Please add a comment", resp.Error)

	resp = post("", map[string]string{"recipeId": recipe.ID, "text": "Nice"})
	assert.Equal(t, http.StatusUnauthorized, resp.Status)

	resp = post(critic.Token, map[string]string{"recipeId": uuid.NewString(), "text": "Nice"})
	assert.Equal(t, http.StatusNotFound, resp.Status)

	resp = post(critic.Token, map[string]string{"recipeId": recipe.ID, "text": "  Needs more saffron  "})
	require.Equal(t, http.StatusCreated, resp.Status, resp.Error)
	var created commentBody
	resp.decode(t, &created)
	assert.Equal(t, "Needs more saffron", created.Text)
	assert.Equal(t, critic.ID, created.UserID)
	require.NotNil(t, created.Author)
	assert.Equal(t, "Critic", created.Author.Name)

	resp = post(cook.Token, map[string]string{"recipeId": recipe.ID, "text": "Noted"})
	require.Equal(t, http.StatusCreated, resp.Status, resp.Error)

	for _, path := range []string{
		"/api/comments?recipeId=" + recipe.ID,
		"/api/recipes/" + recipe.ID + "/comments",
	} {
		resp = doJSON(t, app, http.MethodGet, path, "", nil)
		require.Equal(t, http.StatusOK, resp.Status, path)
		assert.Equal(t, int64(2), resp.Meta.Total)
		var list []commentBody
		resp.decode(t, &list)
		require.Len(t, list, 2)
		for _, c := range list {
			require.NotNil(t, c.Author, path)
			assert.NotEmpty(t, c.Author.Name)
		}
	}

	resp = doJSON(t, app, http.MethodGet, "/api/comments", "", nil)
	assert.Equal(t, http.StatusBadRequest, resp.Status)

	resp = doJSON(t, app, http.MethodGet, "/api/comments?recipeId=xyz", "", nil)
	assert.Equal(t, http.StatusBadRequest, resp.Status)
}
