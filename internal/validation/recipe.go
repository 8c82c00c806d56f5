package validation

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"unicode/utf8"
)

// MaxLength fails when s is longer than limit runes.
func MaxLength(field, s string, limit int) error {
	if utf8.RuneCountInString(s) > limit {
		return fmt.Errorf("%s must be at most %d characters", field, limit)
	}
	return nil
}

// ValidateTitle requires a non-blank title within the length limit.
func ValidateTitle(title string) error {
	if strings.TrimSpace(title) == "" {
		return errors.New("title is required")
	}
	return MaxLength("title", title, MaxTitleLength)
}

// ValidateDifficulty accepts an empty value or easy, medium, hard.
func ValidateDifficulty(d string) error {
	switch d {
	case "", "easy", "medium", "hard":
		return nil
	}
	return fmt.Errorf("difficulty must be one of easy, medium, hard")
}

// ValidateCookingTime rejects negative durations and anything above one week.
func ValidateCookingTime(minutes int) error {
	if minutes < 0 {
		return errors.New("cookingTime must not be negative")
	}
	if minutes > 7*24*60 {
		return errors.New("cookingTime is unrealistically long")
	}
	return nil
}

// ValidateImageURL accepts absolute http and https URLs.
func ValidateImageURL(raw string) error {
	if err := MaxLength("imageUrl", raw, MaxImageURLLength); err != nil {
		return err
	}
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return errors.New("imageUrl must be an absolute http(s) URL")
	}
	return nil
}

// ValidateComment requires non-blank text within the length limit.
func ValidateComment(text string) error {
	if strings.TrimSpace(text) == "" {
		return errors.New("Please add a comment")
	}
	return MaxLength("text", text, MaxCommentLength)
}
