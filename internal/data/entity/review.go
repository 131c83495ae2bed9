package entity

import (
	"time"

	"github.com/google/uuid"
)

// Review holds at most one rating and one comment per (user, resort) pair.
// At least one of Rating or Comment is set.
type Review struct {
	BaseNoDelete
	UserID   uuid.UUID `db:"user_id"`
	ResortID uuid.UUID `db:"resort_id"`
	Rating   *int      `db:"rating"` // 1-5
	Comment  *string   `db:"comment"`
}

// ReviewDetail is a review joined with the author and resort names.
type ReviewDetail struct {
	Review
	Username   string
	Email      string
	ResortName string
}

// RatingStats summarizes the ratings of one resort. Distribution is indexed
// by star value, so Distribution[5] counts five-star reviews.
type RatingStats struct {
	AverageRating float64
	RatingCount   int64
	ReviewCount   int64
	Distribution  [6]int64
}

// ReviewFact is the flattened row the analytics dashboard aggregates over.
type ReviewFact struct {
	ReviewID    uuid.UUID
	ResortID    uuid.UUID
	ResortName  string
	ResortState string
	Rating      *int
	CreatedAt   time.Time
}
