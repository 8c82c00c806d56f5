package models

import (
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseReactionType(t *testing.T) {
	tests := []struct {
		raw     string
		want    ReactionType
		wantErr bool
	}{
		{"Cant_wait", ReactionCantWait, false},
		{"Loved_it", ReactionLovedIt, false},
		{"Disliked", ReactionDisliked, false},
		{"loved_it", "", true},
		{"", "", true},
		{"Meh", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, err := ParseReactionType(tt.raw)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestReactionsJSON(t *testing.T) {
	r := Reactions{CantWait: 2, LovedIt: 5}

	b, err := json.Marshal(r)
	require.NoError(t, err)
	assert.JSONEq(t, `{"Cant_wait":2,"Loved_it":5,"Disliked":0}`, string(b))

	var back Reactions
	require.NoError(t, json.Unmarshal(b, &back))
	assert.Equal(t, r, back)
	assert.Equal(t, int64(7), back.Positive())
	assert.Equal(t, int64(5), back.Count(ReactionLovedIt))
}

func TestRecipeImageSource(t *testing.T) {
	t.Run("blob becomes data uri", func(t *testing.T) {
		r := &Recipe{}
		r.SetImageBlob([]byte("abc"), "image/jpeg")
		assert.Equal(t, "data:image/jpeg;base64,YWJj", r.ImageSource())
	})

	t.Run("external url", func(t *testing.T) {
		r := &Recipe{}
		r.SetImageBlob([]byte("abc"), "image/jpeg")
		r.SetImageURL("https://example.com/pie.jpg")
		assert.Equal(t, "https://example.com/pie.jpg", r.ImageSource())
		assert.Nil(t, r.ImageData)
	})

	t.Run("marshal exposes imageUrl but not blob", func(t *testing.T) {
		r := Recipe{ID: "r1", Title: "Pie", UserID: "u1"}
		r.SetImageBlob([]byte("abc"), "image/png")

		b, err := json.Marshal(r)
		require.NoError(t, err)

		var out map[string]any
		require.NoError(t, json.Unmarshal(b, &out))
		assert.Equal(t, "data:image/png;base64,YWJj", out["imageUrl"])
		assert.Equal(t, "Pie", out["title"])
		assert.NotContains(t, out, "imageData")
		assert.NotContains(t, out, "ImageData")
		assert.Contains(t, out, "reactions")
	})

	t.Run("no image omits imageUrl", func(t *testing.T) {
		b, err := json.Marshal(Recipe{ID: "r1"})
		require.NoError(t, err)
		assert.NotContains(t, string(b), "imageUrl")
	})
}

func TestStatusFor(t *testing.T) {
	assert.Equal(t, http.StatusBadRequest, StatusFor(NewValidationError("x")))
	assert.Equal(t, http.StatusNotFound, StatusFor(NewNotFoundError("Recipe", "")))
	assert.Equal(t, http.StatusForbidden, StatusFor(NewForbiddenError("x")))
	assert.Equal(t, http.StatusRequestEntityTooLarge, StatusFor(NewPayloadTooLargeError("x")))
	assert.Equal(t, http.StatusUnsupportedMediaType, StatusFor(NewUnsupportedMediaTypeError("x")))
	assert.Equal(t, http.StatusInternalServerError, StatusFor(errors.New("boom")))
}

func TestNewNotFoundError(t *testing.T) {
	assert.Equal(t, "Recipe not found", NewNotFoundError("Recipe", "").Error())
	assert.Equal(t, "User with ID abc not found", NewNotFoundError("User", "abc").Error())
	assert.True(t, IsCode(NewNotFoundError("User", nil), CodeNotFound))
}
