package models

import (
	"encoding/base64"
	"encoding/json"
	"time"
)

// Recipe difficulty levels.
const (
	DifficultyEasy   = "easy"
	DifficultyMedium = "medium"
	DifficultyHard   = "hard"
)

// Recipe represents a shared recipe.
type Recipe struct {
	ID          string    `gorm:"type:varchar(36);primaryKey" json:"id" bson:"_id"`
	Title       string    `gorm:"size:200;not null" json:"title" bson:"title"`
	Description string    `gorm:"type:text" json:"description" bson:"description"`
	Ingredients string    `gorm:"type:text" json:"ingredients" bson:"ingredients"`
	Cuisine     string    `gorm:"size:50;index" json:"cuisine" bson:"cuisine,omitempty"`
	Difficulty  string    `gorm:"size:20;index" json:"difficulty" bson:"difficulty,omitempty"`
	CookingTime int       `gorm:"not null;default:0" json:"cookingTime" bson:"cookingTime"`
	ImageData   []byte    `json:"-" bson:"imageData,omitempty"`
	ImageType   string    `gorm:"size:50" json:"-" bson:"imageType,omitempty"`
	ImageURL    string    `gorm:"size:2048" json:"-" bson:"imageUrl,omitempty"`
	UserID      string    `gorm:"type:varchar(36);not null;index" json:"userId" bson:"userId"`
	Reactions   Reactions `gorm:"embedded" json:"reactions" bson:"reactions"`
	CreatedAt   time.Time `gorm:"index" json:"createdAt" bson:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt" bson:"updatedAt"`
}

// ImageSource returns the URL a client can render: an inline data URI for stored
// blobs, otherwise the external URL (possibly empty).
func (r *Recipe) ImageSource() string {
	if len(r.ImageData) > 0 && r.ImageType != "" {
		return "data:" + r.ImageType + ";base64," + base64.StdEncoding.EncodeToString(r.ImageData)
	}
	return r.ImageURL
}

// SetImageBlob replaces any image with an uploaded blob.
func (r *Recipe) SetImageBlob(data []byte, mimeType string) {
	r.ImageData = data
	r.ImageType = mimeType
	r.ImageURL = ""
}

// SetImageURL replaces any image with an external URL.
func (r *Recipe) SetImageURL(url string) {
	r.ImageURL = url
	r.ImageData = nil
	r.ImageType = ""
}

// MarshalJSON adds the resolved imageUrl to the stored fields.
func (r Recipe) MarshalJSON() ([]byte, error) {
	type plain Recipe
	return json.Marshal(struct {
		plain
		ImageURL string `json:"imageUrl,omitempty"`
	}{
		plain:    plain(r),
		ImageURL: r.ImageSource(),
	})
}
