package server

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"dishswap/internal/models"
	"dishswap/internal/testutil"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecipeCRUD(t *testing.T) {
	app := newTestServer(t)
	owner := registerUser(t, app, "Owner", "owner@example.com")
	other := registerUser(t, app, "Other", "other@example.com")

	created := createRecipe(t, app, owner.Token, map[string]any{
		"title":       "Green Curry",
		"description": "Fragrant and spicy",
		"ingredients": "coconut milk, basil, chicken",
		"cuisine":     "Thai",
		"difficulty":  "medium",
		"cookingTime": "35",
		"imageUrl":    "https://img.example.com/curry.jpg",
	})
	assert.Equal(t, owner.ID, created.UserID)
	assert.Equal(t, 35, created.CookingTime)
	assert.Equal(t, "https://img.example.com/curry.jpg", created.ImageURL)
	assert.Equal(t, map[string]int{"Cant_wait": 0, "Loved_it": 0, "Disliked": 0}, created.Reactions)

	t.Run("get", func(t *testing.T) {
		resp := doJSON(t, app, http.MethodGet, "/api/recipes/"+created.ID, "", nil)
		require.Equal(t, http.StatusOK, resp.Status)
		var got recipeBody
		resp.decode(t, &got)
		assert.Equal(t, "Green Curry", got.Title)
	})

	t.Run("missing recipe is 404", func(t *testing.T) {
		resp := doJSON(t, app, http.MethodGet, "/api/recipes/"+uuid.NewString(), "", nil)
		assert.Equal(t, http.StatusNotFound, resp.Status)
		assert.Equal(t, "Recipe not found", resp.Error)
	})

	t.Run("malformed id is 400", func(t *testing.T) {
		resp := doJSON(t, app, http.MethodGet, "/api/recipes/not-a-uuid", "", nil)
		assert.Equal(t, http.StatusBadRequest, resp.Status)
	})

	t.Run("blank title is 400", func(t *testing.T) {
		resp := doJSON(t, app, http.MethodPost, "/api/recipes", owner.Token, map[string]any{"title": " "})
		assert.Equal(t, http.StatusBadRequest, resp.Status)
	})

	t.Run("non-owner cannot update or delete", func(t *testing.T) {
		resp := doJSON(t, app, http.MethodPut, "/api/recipes/"+created.ID, other.Token, map[string]any{"title": "Mine now"})
		assert.Equal(t, http.StatusForbidden, resp.Status)

		resp = doJSON(t, app, http.MethodDelete, "/api/recipes/"+created.ID, other.Token, nil)
		assert.Equal(t, http.StatusForbidden, resp.Status)
	})

	t.Run("owner partial update", func(t *testing.T) {
		resp := doJSON(t, app, http.MethodPut, "/api/recipes/"+created.ID, owner.Token, map[string]any{
			"title":       "Red Curry",
			"cookingTime": 40,
		})
		require.Equal(t, http.StatusOK, resp.Status, resp.Error)
		var got recipeBody
		resp.decode(t, &got)
		assert.Equal(t, "Red Curry", got.Title)
		assert.Equal(t, 40, got.CookingTime)
		assert.Equal(t, "Fragrant and spicy", got.Description)
		assert.Equal(t, "Thai", got.Cuisine)
	})

	t.Run("caller's recipes", func(t *testing.T) {
		resp := doJSON(t, app, http.MethodGet, "/api/recipes/user", other.Token, nil)
		require.Equal(t, http.StatusOK, resp.Status)
		require.NotNil(t, resp.Meta)
		assert.Equal(t, int64(0), resp.Meta.Total)

		resp = doJSON(t, app, http.MethodGet, "/api/recipes/user", owner.Token, nil)
		require.Equal(t, http.StatusOK, resp.Status)
		assert.Equal(t, int64(1), resp.Meta.Total)
	})
}

func TestRecipeDeleteCascades(t *testing.T) {
	app := newTestServer(t)
	owner := registerUser(t, app, "Owner", "owner@example.com")
	fan := registerUser(t, app, "Fan", "fan@example.com")
	recipe := createRecipe(t, app, owner.Token, map[string]any{"title": "Pancakes"})

	resp := doJSON(t, app, http.MethodPost, "/api/comments", fan.Token, map[string]string{
		"recipeId": recipe.ID,
		"text":     "Fluffy!",
	})
	require.Equal(t, http.StatusCreated, resp.Status, resp.Error)
	resp = doJSON(t, app, http.MethodPost, "/api/favorites", fan.Token, map[string]string{"recipeId": recipe.ID})
	require.Equal(t, http.StatusOK, resp.Status, resp.Error)

	resp = doJSON(t, app, http.MethodDelete, "/api/recipes/"+recipe.ID, owner.Token, nil)
	require.Equal(t, http.StatusOK, resp.Status, resp.Error)

	resp = doJSON(t, app, http.MethodGet, "/api/recipes/"+recipe.ID, "", nil)
	assert.Equal(t, http.StatusNotFound, resp.Status)

	resp = doJSON(t, app, http.MethodGet, "/api/comments?recipeId="+recipe.ID, "", nil)
	require.Equal(t, http.StatusOK, resp.Status)
	assert.Equal(t, int64(0), resp.Meta.Total)

	resp = doJSON(t, app, http.MethodGet, "/api/favorites", fan.Token, nil)
	require.Equal(t, http.StatusOK, resp.Status)
	assert.JSONEq(t, `[]`, string(resp.Data))
}

func TestListRecipesSearchAndPagination(t *testing.T) {
	app := newTestServer(t)
	cook := registerUser(t, app, "Cook", "cook@example.com")

	createRecipe(t, app, cook.Token, map[string]any{"title": "Tomato Soup", "cuisine": "Italian", "difficulty": "easy", "cookingTime": 20})
	createRecipe(t, app, cook.Token, map[string]any{"title": "Beef Stew", "ingredients": "beef, tomato", "cuisine": "Irish", "difficulty": "medium", "cookingTime": 120})
	createRecipe(t, app, cook.Token, map[string]any{"title": "Salad", "cuisine": "Greek", "difficulty": "easy", "cookingTime": 10})

	cases := []struct {
		query string
		total int64
	}{
		{"", 3},
		{"?q=TOMATO", 2},
		{"?cuisine=italian", 1},
		{"?difficulty=easy", 2},
		{"?maxCookingTime=30", 2},
		{"?q=tomato&difficulty=medium", 1},
		{"?q=%25", 0},
	}
	for _, tc := range cases {
		t.Run("filter "+tc.query, func(t *testing.T) {
			resp := doJSON(t, app, http.MethodGet, "/api/recipes"+tc.query, "", nil)
			require.Equal(t, http.StatusOK, resp.Status, resp.Error)
			assert.Equal(t, tc.total, resp.Meta.Total)
		})
	}

	t.Run("page overrides offset", func(t *testing.T) {
		resp := doJSON(t, app, http.MethodGet, "/api/recipes?limit=2&page=2&offset=0", "", nil)
		require.Equal(t, http.StatusOK, resp.Status)
		var items []recipeBody
		resp.decode(t, &items)
		assert.Len(t, items, 1)
		assert.Equal(t, 2, resp.Meta.Limit)
		assert.Equal(t, 2, resp.Meta.Offset)
		assert.Equal(t, int64(3), resp.Meta.Total)
	})

	t.Run("limit is clamped", func(t *testing.T) {
		resp := doJSON(t, app, http.MethodGet, "/api/recipes?limit=1000", "", nil)
		require.Equal(t, http.StatusOK, resp.Status)
		assert.Equal(t, 100, resp.Meta.Limit)
	})

	t.Run("invalid sort", func(t *testing.T) {
		resp := doJSON(t, app, http.MethodGet, "/api/recipes?sort=random", "", nil)
		assert.Equal(t, http.StatusBadRequest, resp.Status)
	})
}

func TestCreateRecipeMultipart(t *testing.T) {
	app := newTestServer(t)
	cook := registerUser(t, app, "Cook", "cook@example.com")

	post := func(files ...testutil.FilePart) apiResponse {
		body, contentType := testutil.MultipartBody(t, map[string]string{
			"title":       "Focaccia",
			"cookingTime": "45",
			"difficulty":  "easy",
		}, files...)
		req := httptest.NewRequest(http.MethodPost, "/api/recipes", body)
		req.Header.Set("Content-Type", contentType)
		return doRequest(t, app, req, cook.Token)
	}

	t.Run("image is resized and stored inline", func(t *testing.T) {
		resp := post(testutil.FilePart{Field: "image", Filename: "bread.png", Data: testutil.TinyPNG(t, 400, 200)})
		require.Equal(t, http.StatusCreated, resp.Status, resp.Error)
		var got recipeBody
		resp.decode(t, &got)
		assert.Equal(t, 45, got.CookingTime)
		assert.True(t, strings.HasPrefix(got.ImageURL, "data:image/jpeg;base64,"), got.ImageURL)
	})

	t.Run("fields without an image", func(t *testing.T) {
		resp := post()
		require.Equal(t, http.StatusCreated, resp.Status, resp.Error)
		var got recipeBody
		resp.decode(t, &got)
		assert.Empty(t, got.ImageURL)
	})

	t.Run("non-image is 415", func(t *testing.T) {
		resp := post(testutil.FilePart{Field: "image", Filename: "notes.txt", Data: []byte("just some text")})
		assert.Equal(t, http.StatusUnsupportedMediaType, resp.Status)
		assert.Equal(t, models.CodeUnsupportedMediaType, resp.Code)
	})

	t.Run("oversized image is 413", func(t *testing.T) {
		big := append(testutil.TinyPNG(t, 8, 8), bytes.Repeat([]byte{0}, 1024*1024)...)
		resp := post(testutil.FilePart{Field: "image", Filename: "big.png", Data: big})
		assert.Equal(t, http.StatusRequestEntityTooLarge, resp.Status)
	})

	t.Run("two files are rejected", func(t *testing.T) {
		png := testutil.TinyPNG(t, 8, 8)
		resp := post(
			testutil.FilePart{Field: "image", Filename: "a.png", Data: png},
			testutil.FilePart{Field: "image", Filename: "b.png", Data: png},
		)
		assert.Equal(t, http.StatusBadRequest, resp.Status)
	})
}

func TestReactions(t *testing.T) {
	app := newTestServer(t)
	cook := registerUser(t, app, "Cook", "cook@example.com")
	recipe := createRecipe(t, app, cook.Token, map[string]any{"title": "Ramen"})
	path := "/api/recipes/" + recipe.ID + "/reactions"

	resp := doJSON(t, app, http.MethodPost, path, cook.Token, map[string]string{"reactionType": "Meh"})
	assert.Equal(t, http.StatusBadRequest, resp.Status)

	for i := 1; i <= 2; i++ {
		resp = doJSON(t, app, http.MethodPost, path, cook.Token, map[string]string{"reactionType": "Loved_it"})
		require.Equal(t, http.StatusOK, resp.Status, resp.Error)
		var res struct {
			ReactionType string `json:"reactionType"`
			Count        int    `json:"count"`
		}
		resp.decode(t, &res)
		assert.Equal(t, "Loved_it", res.ReactionType)
		assert.Equal(t, i, res.Count)
	}

	resp = doJSON(t, app, http.MethodGet, path, "", nil)
	require.Equal(t, http.StatusOK, resp.Status)
	assert.JSONEq(t, `{"Cant_wait":0,"Loved_it":2,"Disliked":0}`, string(resp.Data))

	resp = doJSON(t, app, http.MethodPost, "/api/recipes/"+uuid.NewString()+"/reactions", cook.Token,
		map[string]string{"reactionType": "Disliked"})
	assert.Equal(t, http.StatusNotFound, resp.Status)

	resp = doJSON(t, app, http.MethodPost, "/api/recipes/nope/reactions", cook.Token,
		map[string]string{"reactionType": "Disliked"})
	assert.Equal(t, http.StatusBadRequest, resp.Status)

	t.Run("popular sort uses positive reactions", func(t *testing.T) {
		other := createRecipe(t, app, cook.Token, map[string]any{"title": "Udon"})
		resp := doJSON(t, app, http.MethodGet, "/api/recipes?sort=popular", "", nil)
		require.Equal(t, http.StatusOK, resp.Status)
		var items []recipeBody
		resp.decode(t, &items)
		require.Len(t, items, 2)
		assert.Equal(t, recipe.ID, items[0].ID)
		assert.Equal(t, other.ID, items[1].ID)
	})
}
