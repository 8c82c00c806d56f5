// Package events publishes domain events describing successful mutations.
package events

import (
	"context"
	"time"

	"dishswap/internal/middleware"
	"dishswap/internal/observability"

	"github.com/google/uuid"
)

// Event types
const (
	TypeUserRegistered  = "user.registered"
	TypeRecipeCreated   = "recipe.created"
	TypeRecipeUpdated   = "recipe.updated"
	TypeRecipeDeleted   = "recipe.deleted"
	TypeRecipeReacted   = "recipe.reacted"
	TypeCommentCreated  = "comment.created"
	TypeFavoriteAdded   = "favorite.added"
	TypeFavoriteRemoved = "favorite.removed"
)

// Event is the JSON record written to the events topic.
type Event struct {
	EventID    string         `json:"eventId"`
	EventType  string         `json:"eventType"`
	OccurredAt time.Time      `json:"occurredAt"`
	UserID     string         `json:"userId,omitempty"`
	RecipeID   string         `json:"recipeId,omitempty"`
	Payload    map[string]any `json:"payload,omitempty"`
}

// New returns an event of eventType stamped with a fresh id and the current time.
func New(eventType, userID, recipeID string, payload map[string]any) Event {
	return Event{
		EventID:    uuid.NewString(),
		EventType:  eventType,
		OccurredAt: time.Now().UTC(),
		UserID:     userID,
		RecipeID:   recipeID,
		Payload:    payload,
	}
}

// Key is the partitioning key: the recipe when there is one, otherwise the user.
func (e Event) Key() string {
	if e.RecipeID != "" {
		return e.RecipeID
	}
	return e.UserID
}

// Publisher delivers events to a broker.
type Publisher interface {
	Publish(ctx context.Context, evt Event) error
	Close() error
}

// Emit publishes evt and records the outcome. Failures are logged, never returned.
func Emit(ctx context.Context, p Publisher, evt Event) {
	if p == nil {
		return
	}
	if err := p.Publish(ctx, evt); err != nil {
		observability.EventsPublished.WithLabelValues(evt.EventType, "error").Inc()
		middleware.Logger.WarnContext(ctx, "failed to publish event",
			"event_type", evt.EventType,
			"event_id", evt.EventID,
			"error", err,
		)
		return
	}
	observability.EventsPublished.WithLabelValues(evt.EventType, "ok").Inc()
}

// NopPublisher discards events. It is used when no brokers are configured.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, Event) error { return nil }

func (NopPublisher) Close() error { return nil }
