package response

import (
	"time"

	"ski-portal/internal/data/entity"
	"ski-portal/internal/gravatar"
)

type ReviewResponse struct {
	ID         string    `json:"id"`
	UserID     string    `json:"user_id"`
	Username   string    `json:"username,omitempty"`
	AvatarURL  string    `json:"avatar_url,omitempty"`
	ResortID   string    `json:"resort_id"`
	ResortName string    `json:"resort_name,omitempty"`
	Rating     *int      `json:"rating,omitempty"`
	Comment    *string   `json:"comment,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// Edited reports whether the review changed after it was first posted.
func (r ReviewResponse) Edited() bool {
	return r.UpdatedAt.Sub(r.CreatedAt) > time.Second
}

type ReviewUpsertResponse struct {
	Review  ReviewResponse `json:"review"`
	Created bool           `json:"created"`
}

type RatingBucket struct {
	Stars   int     `json:"stars"`
	Count   int64   `json:"count"`
	Percent float64 `json:"percent"`
}

type ResortReviewStats struct {
	AverageRating float64        `json:"average_rating"`
	RatingCount   int64          `json:"rating_count"`
	ReviewCount   int64          `json:"review_count"`
	Distribution  []RatingBucket `json:"distribution"`
}

// Helper converter
func ReviewToResponse(review *entity.Review, username, resortName, avatarURL string) ReviewResponse {
	return ReviewResponse{
		ID:         review.ID.String(),
		UserID:     review.UserID.String(),
		Username:   username,
		AvatarURL:  avatarURL,
		ResortID:   review.ResortID.String(),
		ResortName: resortName,
		Rating:     review.Rating,
		Comment:    review.Comment,
		CreatedAt:  review.CreatedAt,
		UpdatedAt:  review.UpdatedAt,
	}
}

func ReviewDetailToResponse(d *entity.ReviewDetail, avatars *gravatar.Generator) ReviewResponse {
	return ReviewToResponse(&d.Review, d.Username, d.ResortName, avatars.URL(d.Email))
}

// StatsToResponse expands the distribution from five stars down to one.
func StatsToResponse(stats *entity.RatingStats) ResortReviewStats {
	resp := ResortReviewStats{
		AverageRating: stats.AverageRating,
		RatingCount:   stats.RatingCount,
		ReviewCount:   stats.ReviewCount,
		Distribution:  make([]RatingBucket, 0, 5),
	}
	for stars := 5; stars >= 1; stars-- {
		bucket := RatingBucket{Stars: stars, Count: stats.Distribution[stars]}
		if stats.RatingCount > 0 {
			bucket.Percent = float64(bucket.Count) * 100 / float64(stats.RatingCount)
		}
		resp.Distribution = append(resp.Distribution, bucket)
	}
	return resp
}
