package entity

// Resort is a ski area. AverageRating and ReviewCount are denormalized from
// the reviews table and refreshed whenever a review changes.
type Resort struct {
	Base
	Name            string  `db:"name"`
	State           string  `db:"state"`
	City            *string `db:"city"`
	Address         *string `db:"address"`
	Phone           *string `db:"phone"`
	Website         *string `db:"website"`
	Latitude        float64 `db:"latitude"`
	Longitude       float64 `db:"longitude"`
	BaseElevation   *int    `db:"base_elevation"`
	SummitElevation *int    `db:"summit_elevation"`
	TrailCount      *int    `db:"trail_count"`
	LiftCount       *int    `db:"lift_count"`
	Description     *string `db:"description"`
	AverageRating   float64 `db:"average_rating"`
	ReviewCount     int     `db:"review_count"`
}

// VerticalDrop is summit minus base elevation, or nil when either is unknown.
func (r *Resort) VerticalDrop() *int {
	if r.BaseElevation == nil || r.SummitElevation == nil {
		return nil
	}
	drop := *r.SummitElevation - *r.BaseElevation
	return &drop
}

type ResortSort string

const (
	ResortSortName    ResortSort = "name"
	ResortSortRating  ResortSort = "rating"
	ResortSortReviews ResortSort = "reviews"
)

// ResortFilter narrows resort listings. Empty fields are ignored.
type ResortFilter struct {
	Search string
	State  string
	Sort   ResortSort
}
