package response

import (
	"time"

	"ski-portal/internal/data/entity"
)

type ResortResponse struct {
	ID              string    `json:"id"`
	Name            string    `json:"name"`
	State           string    `json:"state"`
	City            *string   `json:"city,omitempty"`
	Address         *string   `json:"address,omitempty"`
	Phone           *string   `json:"phone,omitempty"`
	Website         *string   `json:"website,omitempty"`
	Latitude        float64   `json:"latitude"`
	Longitude       float64   `json:"longitude"`
	BaseElevation   *int      `json:"base_elevation,omitempty"`
	SummitElevation *int      `json:"summit_elevation,omitempty"`
	VerticalDrop    *int      `json:"vertical_drop,omitempty"`
	TrailCount      *int      `json:"trail_count,omitempty"`
	LiftCount       *int      `json:"lift_count,omitempty"`
	Description     *string   `json:"description,omitempty"`
	AverageRating   float64   `json:"average_rating"`
	ReviewCount     int       `json:"review_count"`
	CreatedAt       time.Time `json:"created_at"`
}

func ResortToResponse(resort *entity.Resort) ResortResponse {
	return ResortResponse{
		ID:              resort.ID.String(),
		Name:            resort.Name,
		State:           resort.State,
		City:            resort.City,
		Address:         resort.Address,
		Phone:           resort.Phone,
		Website:         resort.Website,
		Latitude:        resort.Latitude,
		Longitude:       resort.Longitude,
		BaseElevation:   resort.BaseElevation,
		SummitElevation: resort.SummitElevation,
		VerticalDrop:    resort.VerticalDrop(),
		TrailCount:      resort.TrailCount,
		LiftCount:       resort.LiftCount,
		Description:     resort.Description,
		AverageRating:   resort.AverageRating,
		ReviewCount:     resort.ReviewCount,
		CreatedAt:       resort.CreatedAt,
	}
}

// Location joins city and state for display.
func (r ResortResponse) Location() string {
	if r.City == nil || *r.City == "" {
		return r.State
	}
	return *r.City + ", " + r.State
}

type ResortListResponse struct {
	*PaginatedResponse[ResortResponse]
	States []string `json:"states"`
}
