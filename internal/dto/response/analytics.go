package response

type StateSummary struct {
	State         string  `json:"state"`
	ResortCount   int     `json:"resort_count"`
	ReviewCount   int     `json:"review_count"`
	AverageRating float64 `json:"average_rating"`
}

type ResortSummary struct {
	ResortID      string  `json:"resort_id"`
	Name          string  `json:"name"`
	State         string  `json:"state"`
	ReviewCount   int     `json:"review_count"`
	AverageRating float64 `json:"average_rating"`
}

type MonthlyActivity struct {
	Month       string `json:"month"` // YYYY-MM
	ReviewCount int    `json:"review_count"`
}

type Dashboard struct {
	TotalUsers    int64             `json:"total_users"`
	TotalResorts  int64             `json:"total_resorts"`
	TotalReviews  int64             `json:"total_reviews"`
	AverageRating float64           `json:"average_rating"`
	ByState       []StateSummary    `json:"by_state"`
	TopResorts    []ResortSummary   `json:"top_resorts"`
	Distribution  []RatingBucket    `json:"distribution"`
	Activity      []MonthlyActivity `json:"activity"`
	RecentReviews []ReviewResponse  `json:"recent_reviews"`
}
