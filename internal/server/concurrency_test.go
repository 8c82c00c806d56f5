package server

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const parallelClients = 20

type parallelResult struct {
	status int
	body   apiResponse
	err    error
}

// sendParallel fires n identical JSON requests at once. It avoids require since
// it runs off the test goroutine.
func sendParallel(app *fiber.App, n int, method, path, token string, body any) []parallelResult {
	payload, _ := json.Marshal(body)
	results := make([]parallelResult, n)

	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			req := httptest.NewRequest(method, path, bytes.NewReader(payload))
			req.Header.Set("Content-Type", "application/json")
			req.Header.Set("Authorization", "Bearer "+token)

			resp, err := app.Test(req, -1)
			if err != nil {
				results[i].err = err
				return
			}
			defer func() { _ = resp.Body.Close() }()
			raw, err := io.ReadAll(resp.Body)
			if err != nil {
				results[i].err = err
				return
			}
			results[i].status = resp.StatusCode
			results[i].err = json.Unmarshal(raw, &results[i].body)
		}()
	}
	wg.Wait()
	return results
}

func TestParallelReactionsAreAllCounted(t *testing.T) {
	app := newTestServer(t)
	cook := registerUser(t, app, "Cook", "cook@example.com")
	recipe := createRecipe(t, app, cook.Token, map[string]any{"title": "Pho"})
	path := "/api/recipes/" + recipe.ID + "/reactions"

	results := sendParallel(app, parallelClients, http.MethodPost, path, cook.Token,
		map[string]string{"reactionType": "Loved_it"})

	counts := map[int]bool{}
	for _, r := range results {
		require.NoError(t, r.err)
		require.Equal(t, http.StatusOK, r.status, r.body.Error)
		var res struct {
			Count int `json:"count"`
		}
		r.body.decode(t, &res)
		assert.False(t, counts[res.Count], "count %d reported twice", res.Count)
		counts[res.Count] = true
	}
	assert.Len(t, counts, parallelClients)

	resp := doJSON(t, app, http.MethodGet, path, "", nil)
	require.Equal(t, http.StatusOK, resp.Status)
	var reactions map[string]int
	resp.decode(t, &reactions)
	assert.Equal(t, parallelClients, reactions["Loved_it"])
}

func TestParallelFavoriteAddsStoreOneFavorite(t *testing.T) {
	app := newTestServer(t)
	cook := registerUser(t, app, "Cook", "cook@example.com")
	fan := registerUser(t, app, "Fan", "fan@example.com")
	recipe := createRecipe(t, app, cook.Token, map[string]any{"title": "Paella"})

	results := sendParallel(app, parallelClients, http.MethodPost, "/api/favorites", fan.Token,
		map[string]string{"recipeId": recipe.ID})

	added := 0
	for _, r := range results {
		require.NoError(t, r.err)
		require.Equal(t, http.StatusOK, r.status, r.body.Error)
		var fav favoriteBody
		r.body.decode(t, &fav)
		require.NotNil(t, fav.Added)
		assert.True(t, fav.Favorited)
		if *fav.Added {
			added++
		}
	}
	assert.Equal(t, 1, added, "exactly one request adds the favorite")

	resp := doJSON(t, app, http.MethodGet, "/api/favorites", fan.Token, nil)
	require.Equal(t, http.StatusOK, resp.Status)
	var favorites []recipeBody
	resp.decode(t, &favorites)
	require.Len(t, favorites, 1)
	assert.Equal(t, recipe.ID, favorites[0].ID)
}
