package request

import "strings"

// UpsertReviewRequest creates or replaces the caller's review of a resort.
// At least one of Rating and Comment must be present.
type UpsertReviewRequest struct {
	Rating  *int    `json:"rating,omitempty" validate:"omitempty,min=1,max=5"`
	Comment *string `json:"comment,omitempty" validate:"omitempty,max=2000"`
}

// Normalize trims the comment and drops it when blank.
func (r *UpsertReviewRequest) Normalize() {
	if r.Comment == nil {
		return
	}
	trimmed := strings.TrimSpace(*r.Comment)
	if trimmed == "" {
		r.Comment = nil
		return
	}
	r.Comment = &trimmed
}

// IsEmpty reports whether neither a rating nor a comment was supplied.
func (r *UpsertReviewRequest) IsEmpty() bool {
	return r.Rating == nil && r.Comment == nil
}
