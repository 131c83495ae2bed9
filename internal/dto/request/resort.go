package request

type ResortRequest struct {
	Name            string   `json:"name" validate:"required,min=2,max=150"`
	State           string   `json:"state" validate:"required,min=2,max=100"`
	City            *string  `json:"city,omitempty" validate:"omitempty,max=100"`
	Address         *string  `json:"address,omitempty" validate:"omitempty,max=300"`
	Phone           *string  `json:"phone,omitempty" validate:"omitempty,max=30"`
	Website         *string  `json:"website,omitempty" validate:"omitempty,url"`
	Latitude        *float64 `json:"latitude" validate:"required,latitude"`
	Longitude       *float64 `json:"longitude" validate:"required,longitude"`
	BaseElevation   *int     `json:"base_elevation,omitempty" validate:"omitempty,gte=0,lte=30000"`
	SummitElevation *int     `json:"summit_elevation,omitempty" validate:"omitempty,gte=0,lte=30000"`
	TrailCount      *int     `json:"trail_count,omitempty" validate:"omitempty,gte=0"`
	LiftCount       *int     `json:"lift_count,omitempty" validate:"omitempty,gte=0"`
	Description     *string  `json:"description,omitempty" validate:"omitempty,max=5000"`
}

type ResortListRequest struct {
	PaginatedRequest
	Search string `json:"search" validate:"omitempty,max=100"`
	State  string `json:"state" validate:"omitempty,max=100"`
	Sort   string `json:"sort" validate:"omitempty,oneof=name rating reviews"`
}
