package models

import "time"

// Favorite links a user to a bookmarked recipe. The pair is unique.
type Favorite struct {
	UserID    string    `gorm:"type:varchar(36);primaryKey" json:"userId"`
	RecipeID  string    `gorm:"type:varchar(36);primaryKey;index" json:"recipeId"`
	CreatedAt time.Time `json:"createdAt"`
}
