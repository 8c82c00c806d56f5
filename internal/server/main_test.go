package server

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"dishswap/internal/config"
	"dishswap/internal/database"
	"dishswap/internal/repository"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
)

const testJWTSecret = "test-secret-key-12345678901234567890123456789012"

func testConfig() *config.Config {
	return &config.Config{
		Env:                  "test",
		Port:                 "0",
		JWTSecret:            testJWTSecret,
		JWTTTLHour:           1,
		BcryptCost:           bcrypt.MinCost,
		DBDriver:             config.DriverSQLite,
		ImageMaxUploadSizeMB: 1,
		ImageMaxWidth:        200,
	}
}

// newTestServer returns an app backed by a private in-memory SQLite database.
func newTestServer(t *testing.T, mutate ...func(*config.Config)) *fiber.App {
	t.Helper()
	cfg := testConfig()
	for _, m := range mutate {
		m(cfg)
	}

	s, err := NewServer(cfg, newTestDeps(t))
	require.NoError(t, err)
	return s.App()
}

// newTestDeps opens a migrated in-memory SQLite database limited to one connection.
func newTestDeps(t *testing.T) Deps {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := database.Open(sqlite.Open(dsn))
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	return Deps{
		Repos:  repository.NewSet(db),
		PingDB: sqlDB.PingContext,
	}
}

// apiResponse mirrors both the success and the error envelope.
type apiResponse struct {
	Status  int             `json:"-"`
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Meta    *struct {
		Total  int64 `json:"total"`
		Limit  int   `json:"limit"`
		Offset int   `json:"offset"`
	} `json:"meta"`
	Error string `json:"error"`
	Code  string `json:"code"`
}

func (r apiResponse) decode(t *testing.T, dest any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(r.Data, dest), "data: %s", string(r.Data))
}

func doRequest(t *testing.T, app *fiber.App, req *http.Request, token string) apiResponse {
	t.Helper()
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	out := apiResponse{Status: resp.StatusCode}
	if len(raw) > 0 && raw[0] == '{' {
		require.NoError(t, json.Unmarshal(raw, &out), "body: %s", string(raw))
	}
	return out
}

func doJSON(t *testing.T, app *fiber.App, method, path, token string, body any) apiResponse {
	t.Helper()
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return doRequest(t, app, req, token)
}

type testUser struct {
	ID    string
	Token string
}

func registerUser(t *testing.T, app *fiber.App, name, email string) testUser {
	t.Helper()
	resp := doJSON(t, app, http.MethodPost, "/api/users", "", map[string]string{
		"name":     name,
		"email":    email,
		"password": "secret123",
	})
	require.Equal(t, http.StatusCreated, resp.Status, resp.Error)

	var auth struct {
		User struct {
			ID string `json:"id"`
		} `json:"user"`
		Token string `json:"token"`
	}
	resp.decode(t, &auth)
	require.NotEmpty(t, auth.Token)
	return testUser{ID: auth.User.ID, Token: auth.Token}
}

type recipeBody struct {
	ID          string         `json:"id"`
	Title       string         `json:"title"`
	Description string         `json:"description"`
	Cuisine     string         `json:"cuisine"`
	Difficulty  string         `json:"difficulty"`
	CookingTime int            `json:"cookingTime"`
	ImageURL    string         `json:"imageUrl"`
	UserID      string         `json:"userId"`
	Reactions   map[string]int `json:"reactions"`
}

func createRecipe(t *testing.T, app *fiber.App, token string, body map[string]any) recipeBody {
	t.Helper()
	resp := doJSON(t, app, http.MethodPost, "/api/recipes", token, body)
	require.Equal(t, http.StatusCreated, resp.Status, resp.Error)
	var r recipeBody
	resp.decode(t, &r)
	return r
}

