package models

import "time"

// Comment is a note left by a user on a recipe. Comments are immutable.
type Comment struct {
	ID        string    `gorm:"type:varchar(36);primaryKey" json:"id" bson:"_id"`
	RecipeID  string    `gorm:"type:varchar(36);not null;index" json:"recipeId" bson:"recipeId"`
	UserID    string    `gorm:"type:varchar(36);not null;index" json:"userId" bson:"userId"`
	Text      string    `gorm:"type:text;not null" json:"text" bson:"text"`
	Author    *Author   `gorm:"-" json:"author,omitempty" bson:"-"`
	CreatedAt time.Time `gorm:"index" json:"createdAt" bson:"createdAt"`
}
