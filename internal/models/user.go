// Package models contains data structures for the application's domain models.
package models

import (
	"strings"
	"time"
)

// User represents a registered DishSwap member.
type User struct {
	ID        string    `gorm:"type:varchar(36);primaryKey" json:"id" bson:"_id"`
	Name      string    `gorm:"size:100;not null" json:"name" bson:"name"`
	Email     string    `gorm:"size:254;uniqueIndex;not null" json:"email" bson:"email"`
	Password  string    `gorm:"not null" json:"-" bson:"password"`
	Favorites []string  `gorm:"-" json:"favorites" bson:"favorites"`
	CreatedAt time.Time `json:"createdAt" bson:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt" bson:"updatedAt"`
}

// NormalizeEmail lower-cases and trims an email so uniqueness is case-insensitive.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Author is the public projection of a user embedded in other resources.
type Author struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}
