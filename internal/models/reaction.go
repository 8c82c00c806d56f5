package models

import (
	"encoding/json"
	"fmt"
)

// ReactionType is one of the fixed sentiment tags a user can apply to a recipe.
type ReactionType string

const (
	ReactionCantWait ReactionType = "Cant_wait"
	ReactionLovedIt  ReactionType = "Loved_it"
	ReactionDisliked ReactionType = "Disliked"
)

// ReactionTypes lists every accepted reaction in display order.
var ReactionTypes = []ReactionType{ReactionCantWait, ReactionLovedIt, ReactionDisliked}

// ParseReactionType validates a raw reaction key.
func ParseReactionType(raw string) (ReactionType, error) {
	for _, rt := range ReactionTypes {
		if string(rt) == raw {
			return rt, nil
		}
	}
	return "", fmt.Errorf("invalid reaction type %q", raw)
}

// Column is the SQL column holding the counter for this reaction.
func (rt ReactionType) Column() string {
	switch rt {
	case ReactionCantWait:
		return "reaction_cant_wait"
	case ReactionLovedIt:
		return "reaction_loved_it"
	case ReactionDisliked:
		return "reaction_disliked"
	}
	return ""
}

// Field is the document path holding the counter for this reaction.
func (rt ReactionType) Field() string {
	return "reactions." + string(rt)
}

// Reactions holds the per-recipe counters. All three keys are always present.
type Reactions struct {
	CantWait int64 `gorm:"column:reaction_cant_wait;not null;default:0" bson:"Cant_wait"`
	LovedIt  int64 `gorm:"column:reaction_loved_it;not null;default:0" bson:"Loved_it"`
	Disliked int64 `gorm:"column:reaction_disliked;not null;default:0" bson:"Disliked"`
}

// Count returns the counter for one reaction.
func (r Reactions) Count(rt ReactionType) int64 {
	switch rt {
	case ReactionCantWait:
		return r.CantWait
	case ReactionLovedIt:
		return r.LovedIt
	case ReactionDisliked:
		return r.Disliked
	}
	return 0
}

// Positive is the popularity score used for sorting.
func (r Reactions) Positive() int64 {
	return r.CantWait + r.LovedIt
}

// MarshalJSON renders the counters keyed by their reaction labels.
func (r Reactions) MarshalJSON() ([]byte, error) {
	return json.Marshal(map[ReactionType]int64{
		ReactionCantWait: r.CantWait,
		ReactionLovedIt:  r.LovedIt,
		ReactionDisliked: r.Disliked,
	})
}

// UnmarshalJSON accepts the labelled form produced by MarshalJSON.
func (r *Reactions) UnmarshalJSON(data []byte) error {
	var raw map[ReactionType]int64
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	r.CantWait = raw[ReactionCantWait]
	r.LovedIt = raw[ReactionLovedIt]
	r.Disliked = raw[ReactionDisliked]
	return nil
}
