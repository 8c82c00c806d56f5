package cache

import (
	"context"
	"fmt"
	"time"
)

const (
	UserKeyPrefix      = "user:%s"
	ReactionsKeyPrefix = "recipe:%s:reactions"
)

const (
	UserTTL      = 5 * time.Minute
	ReactionsTTL = 1 * time.Minute
)

func UserKey(userID string) string {
	return fmt.Sprintf(UserKeyPrefix, userID)
}

func ReactionsKey(recipeID string) string {
	return fmt.Sprintf(ReactionsKeyPrefix, recipeID)
}

// Invalidate deletes keys, ignoring errors and a missing client.
func Invalidate(ctx context.Context, keys ...string) {
	if client != nil && len(keys) > 0 {
		client.Del(ctx, keys...)
	}
}

func InvalidateUser(ctx context.Context, userID string) {
	Invalidate(ctx, UserKey(userID))
}

func InvalidateReactions(ctx context.Context, recipeID string) {
	Invalidate(ctx, ReactionsKey(recipeID))
}
