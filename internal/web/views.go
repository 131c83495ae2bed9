package web

import (
	"fmt"
	"net/url"
	"strconv"

	"ski-portal/internal/dto/response"
	"ski-portal/internal/scheduler"
)

type HomeView struct {
	Resorts *response.ResortListResponse
	Weather map[string]response.CurrentWeather
	Search  string
	State   string
	Sort    string
}

// PageURL keeps the active filters while moving to another page.
func (v HomeView) PageURL(page int) string {
	query := url.Values{}
	if v.Search != "" {
		query.Set("search", v.Search)
	}
	if v.State != "" {
		query.Set("state", v.State)
	}
	if v.Sort != "" {
		query.Set("sort", v.Sort)
	}
	query.Set("page", strconv.Itoa(page))
	return "/?" + query.Encode()
}

// ConditionsFor returns nil when no weather was fetched for the resort.
func (v HomeView) ConditionsFor(resortID string) *response.CurrentWeather {
	current, ok := v.Weather[resortID]
	if !ok {
		return nil
	}
	return &current
}

type ReviewForm struct {
	Rating  string
	Comment string
	Errors  map[string]string
}

type ResortView struct {
	Resort       *response.ResortResponse
	Weather      *response.WeatherResponse
	WeatherError string
	Reviews      *response.PaginatedResponse[response.ReviewResponse]
	Stats        *response.ResortReviewStats
	OwnReview    *response.ReviewResponse
	Form         ReviewForm
}

func (v ResortView) PageURL(page int) string {
	return fmt.Sprintf("/resorts/%s?page=%d#reviews", v.Resort.ID, page)
}

// RatingOptions lists the select values, with "" meaning no rating.
func (v ResortView) RatingOptions() []string {
	return []string{"", "5", "4", "3", "2", "1"}
}

type AuthForm struct {
	Identifier string
	Username   string
	Email      string
	Next       string
	Errors     map[string]string
}

type ProfileView struct {
	Profile *response.UserResponse
	Reviews *response.PaginatedResponse[response.ReviewResponse]
}

func (v ProfileView) PageURL(page int) string {
	return fmt.Sprintf("/profile?page=%d", page)
}

type DashboardView struct {
	*response.Dashboard
	Jobs        []scheduler.JobInfo
	JobsEnabled bool
}

// ActivityWidth scales a month's count against the busiest month, in percent.
func (v DashboardView) ActivityWidth(count int) int {
	peak := 0
	for _, month := range v.Activity {
		peak = max(peak, month.ReviewCount)
	}
	if peak == 0 {
		return 0
	}
	return count * 100 / peak
}

type AdminUsersView struct {
	Users         *response.PaginatedResponse[response.UserResponse]
	CurrentUserID string
}

func (v AdminUsersView) PageURL(page int) string {
	return fmt.Sprintf("/admin/users?page=%d", page)
}

// ResortForm keeps the raw submitted strings so a rejected form can be
// re-rendered as typed.
type ResortForm struct {
	Values map[string]string
	Errors map[string]string
}

func (f ResortForm) Value(field string) string {
	return f.Values[field]
}

func (f ResortForm) Error(field string) string {
	return f.Errors[field]
}

type ErrorView struct {
	Status  int
	Message string
}
