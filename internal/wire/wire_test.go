package wire

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"ski-portal/internal/data/entity"
	"ski-portal/internal/data/repository/mock"
	"ski-portal/internal/scheduler"
	"ski-portal/pkg/utils"
	"ski-portal/pkg/weather"

	"github.com/stretchr/testify/suite"
	"go.uber.org/zap"
)

const cookieName = "ski_session"

type staticForecasts struct{}

func (staticForecasts) Forecast(_ context.Context, lat, lon float64, days int) (*weather.Forecast, error) {
	daily := make([]weather.Day, days)
	for i := range daily {
		daily[i] = weather.Day{Date: time.Now().AddDate(0, 0, i), HighF: 28, LowF: 12, SnowfallIn: 1.5, Code: 73}
	}
	return &weather.Forecast{
		Latitude:  lat,
		Longitude: lon,
		Current:   weather.Conditions{Time: time.Now(), TemperatureF: 21, SnowfallIn: 0.4, Code: 71},
		Daily:     daily,
	}, nil
}

type envelope struct {
	Status  bool            `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

type RouterTestSuite struct {
	suite.Suite
	store  *mock.Store
	jobs   *scheduler.Scheduler
	server *httptest.Server
	client *http.Client

	skier      *entity.User
	skierToken string
	admin      *entity.User
	adminToken string
	resort     *entity.Resort
}

func (s *RouterTestSuite) SetupTest() {
	s.store = mock.New()

	config := &utils.Config{
		App:       utils.AppConfig{Name: "Ski Portal"},
		Session:   utils.SessionConfig{CookieName: cookieName, ExpiryHours: 1},
		Weather:   utils.WeatherConfig{ForecastDays: 3, CacheTTL: time.Minute, MaxConcurrency: 2},
		Analytics: utils.AnalyticsConfig{TopResorts: 5, TopResortMinimum: 1, RecentReviews: 5},
	}

	jobs, err := scheduler.New(zap.NewNop())
	s.Require().NoError(err)
	s.jobs = jobs

	app, err := Wiring(s.store.Repository(), config, staticForecasts{}, jobs, zap.NewNop())
	s.Require().NoError(err)

	s.Require().NoError(jobs.RegisterJobs(utils.SchedulerConfig{
		Enabled:        true,
		SessionCleanup: "0 * * * *",
		RatingResync:   "30 3 * * *",
	}, s.store.Repository().Session, app.Service.Review))
	jobs.Start()

	s.server = httptest.NewServer(app.Router)
	s.client = &http.Client{
		CheckRedirect: func(*http.Request, []*http.Request) error { return http.ErrUseLastResponse },
	}

	hash, err := utils.HashPassword("powder-day-1")
	s.Require().NoError(err)
	s.skier = s.store.AddUser("skier", "skier@example.com", hash, false)
	s.skierToken = s.store.AddSession(s.skier.ID, time.Hour).Token.String()
	s.admin = s.store.AddUser("patrol", "patrol@example.com", hash, true)
	s.adminToken = s.store.AddSession(s.admin.ID, time.Hour).Token.String()
	s.resort = s.store.AddResort("Alta", "Utah", 40.58, -111.63)
}

func (s *RouterTestSuite) TearDownTest() {
	s.server.Close()
	_ = s.jobs.Stop()
}

func (s *RouterTestSuite) do(method, path, token, contentType string, body io.Reader) *http.Response {
	req, err := http.NewRequest(method, s.server.URL+path, body)
	s.Require().NoError(err)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if token != "" {
		req.AddCookie(&http.Cookie{Name: cookieName, Value: token})
	}
	resp, err := s.client.Do(req)
	s.Require().NoError(err)
	s.T().Cleanup(func() { resp.Body.Close() })
	return resp
}

func (s *RouterTestSuite) api(method, path, bearer, body string) (*http.Response, envelope) {
	req, err := http.NewRequest(method, s.server.URL+path, strings.NewReader(body))
	s.Require().NoError(err)
	req.Header.Set("Content-Type", "application/json")
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	resp, err := s.client.Do(req)
	s.Require().NoError(err)
	defer resp.Body.Close()

	var env envelope
	s.Require().NoError(json.NewDecoder(resp.Body).Decode(&env))
	return resp, env
}

func (s *RouterTestSuite) form(path, token string, values url.Values) *http.Response {
	return s.do(http.MethodPost, path, token, "application/x-www-form-urlencoded", strings.NewReader(values.Encode()))
}

func (s *RouterTestSuite) bodyOf(resp *http.Response) string {
	b, err := io.ReadAll(resp.Body)
	s.Require().NoError(err)
	return string(b)
}

func (s *RouterTestSuite) TestHealth() {
	resp := s.do(http.MethodGet, "/health", "", "", nil)
	s.Equal(http.StatusOK, resp.StatusCode)
	s.Equal("OK", s.bodyOf(resp))
}

func (s *RouterTestSuite) TestPublicResortAPI() {
	resp, env := s.api(http.MethodGet, "/api/resorts?search=alt", "", "")
	s.Equal(http.StatusOK, resp.StatusCode)
	s.True(env.Status)
	s.Contains(string(env.Data), `"name":"Alta"`)
	s.Contains(string(env.Data), `"states":["Utah"]`)

	resp, _ = s.api(http.MethodGet, "/api/resorts/not-a-uuid", "", "")
	s.Equal(http.StatusBadRequest, resp.StatusCode)

	resp, env = s.api(http.MethodGet, "/api/resorts/"+s.resort.ID.String()+"/weather", "", "")
	s.Equal(http.StatusOK, resp.StatusCode)
	s.Contains(string(env.Data), `"resort_name":"Alta"`)

	resp, _ = s.api(http.MethodGet, "/api/nowhere", "", "")
	s.Equal(http.StatusNotFound, resp.StatusCode)
}

func (s *RouterTestSuite) TestProtectedAPIRequiresSession() {
	resp, env := s.api(http.MethodGet, "/api/user/profile", "", "")
	s.Equal(http.StatusUnauthorized, resp.StatusCode)
	s.False(env.Status)

	resp, _ = s.api(http.MethodGet, "/api/user/profile", uuidString(), "")
	s.Equal(http.StatusUnauthorized, resp.StatusCode)

	resp, env = s.api(http.MethodGet, "/api/user/profile", s.skierToken, "")
	s.Equal(http.StatusOK, resp.StatusCode)
	s.Contains(string(env.Data), `"username":"skier"`)
}

func (s *RouterTestSuite) TestRegisterThenReview() {
	resp, env := s.api(http.MethodPost, "/api/register", "",
		`{"username":"newbie","email":"Newbie@Example.com","password":"fresh-tracks"}`)
	s.Require().Equal(http.StatusCreated, resp.StatusCode)

	var auth struct {
		Token string `json:"token"`
	}
	s.Require().NoError(json.Unmarshal(env.Data, &auth))
	s.NotEmpty(auth.Token)

	path := "/api/resorts/" + s.resort.ID.String() + "/review"
	resp, _ = s.api(http.MethodPut, path, auth.Token, `{"rating":4,"comment":"Deep"}`)
	s.Equal(http.StatusCreated, resp.StatusCode)

	resp, _ = s.api(http.MethodPut, path, auth.Token, `{"rating":5}`)
	s.Equal(http.StatusOK, resp.StatusCode)

	resp, _ = s.api(http.MethodPut, path, auth.Token, `{}`)
	s.Equal(http.StatusBadRequest, resp.StatusCode)

	resp, _ = s.api(http.MethodPut, path, auth.Token, `{"rating":9}`)
	s.Equal(http.StatusBadRequest, resp.StatusCode)

	resp, env = s.api(http.MethodGet, "/api/resorts/"+s.resort.ID.String()+"/review-stats", "", "")
	s.Equal(http.StatusOK, resp.StatusCode)
	s.Contains(string(env.Data), `"average_rating":5`)
	s.Equal(1, s.store.ReviewCount())
}

func (s *RouterTestSuite) TestReviewDeleteOwnership() {
	review := s.store.AddReview(s.admin.ID, s.resort.ID, ptr(2), nil, time.Now())

	resp, _ := s.api(http.MethodDelete, "/api/reviews/"+review.ID.String(), s.skierToken, "")
	s.Equal(http.StatusForbidden, resp.StatusCode)

	own := s.store.AddReview(s.skier.ID, s.resort.ID, ptr(4), nil, time.Now())
	resp, _ = s.api(http.MethodDelete, "/api/reviews/"+own.ID.String(), s.skierToken, "")
	s.Equal(http.StatusOK, resp.StatusCode)

	resp, _ = s.api(http.MethodDelete, "/api/reviews/"+review.ID.String(), s.adminToken, "")
	s.Equal(http.StatusOK, resp.StatusCode)
	s.Zero(s.store.ReviewCount())
}

func (s *RouterTestSuite) TestAdminAPI() {
	resp, _ := s.api(http.MethodGet, "/api/admin/analytics", s.skierToken, "")
	s.Equal(http.StatusForbidden, resp.StatusCode)

	resp, env := s.api(http.MethodGet, "/api/admin/analytics", s.adminToken, "")
	s.Equal(http.StatusOK, resp.StatusCode)
	s.Contains(string(env.Data), `"total_users":2`)

	resp, _ = s.api(http.MethodPost, "/api/admin/resorts", s.adminToken,
		`{"name":"Snowbird","state":"Utah","latitude":40.58,"longitude":-111.65}`)
	s.Equal(http.StatusCreated, resp.StatusCode)

	resp, _ = s.api(http.MethodPost, "/api/admin/resorts", s.adminToken, `{"name":"Nowhere","state":"Utah"}`)
	s.Equal(http.StatusBadRequest, resp.StatusCode)

	resp, _ = s.api(http.MethodPut, "/api/admin/users/"+s.admin.ID.String()+"/admin", s.adminToken, `{"is_admin":false}`)
	s.Equal(http.StatusForbidden, resp.StatusCode)

	resp, _ = s.api(http.MethodPut, "/api/admin/users/"+s.skier.ID.String()+"/admin", s.adminToken, `{"is_admin":true}`)
	s.Equal(http.StatusOK, resp.StatusCode)
	s.True(s.store.User(s.skier.ID).IsAdmin)
}

func (s *RouterTestSuite) TestAdminJobs() {
	resp, _ := s.api(http.MethodGet, "/api/admin/jobs", s.skierToken, "")
	s.Equal(http.StatusForbidden, resp.StatusCode)

	resp, env := s.api(http.MethodGet, "/api/admin/jobs", s.adminToken, "")
	s.Equal(http.StatusOK, resp.StatusCode)
	var jobs []scheduler.JobInfo
	s.Require().NoError(json.Unmarshal(env.Data, &jobs))
	s.Require().Len(jobs, 2)
	s.Equal(scheduler.JobRatingResync, jobs[0].ID)

	resp, _ = s.api(http.MethodPost, "/api/admin/jobs/nightly-backup/run", s.adminToken, "")
	s.Equal(http.StatusNotFound, resp.StatusCode)

	resp, _ = s.api(http.MethodPost, "/api/admin/jobs/"+scheduler.JobSessionCleanup+"/run", s.adminToken, "")
	s.Equal(http.StatusAccepted, resp.StatusCode)
	s.Eventually(func() bool {
		info, _ := s.jobs.Job(scheduler.JobSessionCleanup)
		return info.RunCount == 1 && info.Status == scheduler.JobStatusCompleted
	}, 5*time.Second, 10*time.Millisecond)

	page := s.do(http.MethodGet, "/admin", s.adminToken, "", nil)
	s.Equal(http.StatusOK, page.StatusCode)
	body := s.bodyOf(page)
	s.Contains(body, "Background jobs")
	s.Contains(body, "Expired session cleanup")
	s.Contains(body, "/admin/jobs/rating-resync/run")

	resp = s.form("/admin/jobs/"+scheduler.JobRatingResync+"/run", s.adminToken, url.Values{})
	s.Equal(http.StatusSeeOther, resp.StatusCode)
	s.Contains(resp.Header.Get("Location"), "notice=")

	resp = s.form("/admin/jobs/nightly-backup/run", s.adminToken, url.Values{})
	s.Equal(http.StatusSeeOther, resp.StatusCode)
	s.Contains(resp.Header.Get("Location"), "error=")
}

func (s *RouterTestSuite) TestHomePage() {
	resp := s.do(http.MethodGet, "/?sort=rating", "", "", nil)
	s.Equal(http.StatusOK, resp.StatusCode)
	s.Contains(resp.Header.Get("Content-Type"), "text/html")

	body := s.bodyOf(resp)
	s.Contains(body, "Alta")
	s.Contains(body, "Slight snowfall")
	s.Contains(body, "Log in")

	resp = s.do(http.MethodGet, "/?sort=altitude", "", "", nil)
	s.Equal(http.StatusBadRequest, resp.StatusCode)
}

func (s *RouterTestSuite) TestResortPage() {
	s.store.AddReview(s.admin.ID, s.resort.ID, ptr(5), ptr("Best snow on earth"), time.Now().Add(-72*time.Hour))

	resp := s.do(http.MethodGet, "/resorts/"+s.resort.ID.String(), s.skierToken, "", nil)
	s.Equal(http.StatusOK, resp.StatusCode)
	body := s.bodyOf(resp)
	s.Contains(body, "Best snow on earth")
	s.Contains(body, "3 days ago")
	s.Contains(body, "Moderate snowfall")
	s.Contains(body, "Write a review")

	resp = s.do(http.MethodGet, "/resorts/"+uuidString(), "", "", nil)
	s.Equal(http.StatusNotFound, resp.StatusCode)
}

func (s *RouterTestSuite) TestPageGuards() {
	resp := s.do(http.MethodGet, "/profile", "", "", nil)
	s.Equal(http.StatusSeeOther, resp.StatusCode)
	s.Equal("/login?next=%2Fprofile", resp.Header.Get("Location"))

	resp = s.do(http.MethodGet, "/admin", s.skierToken, "", nil)
	s.Equal(http.StatusForbidden, resp.StatusCode)

	resp = s.do(http.MethodGet, "/admin", s.adminToken, "", nil)
	s.Equal(http.StatusOK, resp.StatusCode)
	s.Contains(s.bodyOf(resp), "Dashboard")

	resp = s.do(http.MethodGet, "/no-such-page", "", "", nil)
	s.Equal(http.StatusNotFound, resp.StatusCode)
	s.Contains(resp.Header.Get("Content-Type"), "text/html")
}

func (s *RouterTestSuite) TestLoginPage() {
	resp := s.form("/login", "", url.Values{"identifier": {"skier"}, "password": {"wrong-password"}})
	s.Equal(http.StatusUnauthorized, resp.StatusCode)
	s.Contains(s.bodyOf(resp), "Incorrect email, username, or password.")

	resp = s.form("/login", "", url.Values{
		"identifier": {"skier@example.com"},
		"password":   {"powder-day-1"},
		"next":       {"/resorts/" + s.resort.ID.String()},
	})
	s.Equal(http.StatusSeeOther, resp.StatusCode)
	s.True(strings.HasPrefix(resp.Header.Get("Location"), "/resorts/"+s.resort.ID.String()))

	var session *http.Cookie
	for _, c := range resp.Cookies() {
		if c.Name == cookieName {
			session = c
		}
	}
	s.Require().NotNil(session)
	s.True(session.HttpOnly)

	resp = s.form("/logout", session.Value, url.Values{})
	s.Equal(http.StatusSeeOther, resp.StatusCode)
	resp, _ = s.api(http.MethodGet, "/api/user/profile", session.Value, "")
	s.Equal(http.StatusUnauthorized, resp.StatusCode)
}

func (s *RouterTestSuite) TestLoginRejectsOffsiteNext() {
	for _, next := range []string{"/\t/evil.example", "/\\evil.example", "https://evil.example"} {
		resp := s.form("/login", "", url.Values{
			"identifier": {"skier"},
			"password":   {"powder-day-1"},
			"next":       {next},
		})
		s.Equal(http.StatusSeeOther, resp.StatusCode, next)
		s.True(strings.HasPrefix(resp.Header.Get("Location"), "/?notice="), next)
	}
}

func (s *RouterTestSuite) TestReviewForm() {
	path := "/resorts/" + s.resort.ID.String() + "/review"

	resp := s.form(path, "", url.Values{"rating": {"4"}})
	s.Equal(http.StatusSeeOther, resp.StatusCode)
	s.True(strings.HasPrefix(resp.Header.Get("Location"), "/login"))

	resp = s.form(path, s.skierToken, url.Values{"rating": {""}, "comment": {"   "}})
	s.Equal(http.StatusSeeOther, resp.StatusCode)
	s.Contains(resp.Header.Get("Location"), "error=")
	s.Zero(s.store.ReviewCount())

	resp = s.form(path, s.skierToken, url.Values{"rating": {"4"}, "comment": {"Groomers were great"}})
	s.Equal(http.StatusSeeOther, resp.StatusCode)
	s.Contains(resp.Header.Get("Location"), "notice=")
	s.Equal(1, s.store.ReviewCount())
	s.InDelta(4.0, s.store.Resort(s.resort.ID).AverageRating, 0.001)

	resp = s.form(path+"/delete", s.skierToken, url.Values{})
	s.Equal(http.StatusSeeOther, resp.StatusCode)
	s.Zero(s.store.ReviewCount())
}

func (s *RouterTestSuite) TestAdminResortForm() {
	resp := s.form("/admin/resorts", s.adminToken, url.Values{"name": {"Brighton"}, "state": {"Utah"}, "latitude": {"north"}})
	s.Equal(http.StatusBadRequest, resp.StatusCode)
	body := s.bodyOf(resp)
	s.Contains(body, "Must be a number")
	s.Contains(body, `value="Brighton"`)

	resp = s.form("/admin/resorts", s.adminToken, url.Values{
		"name":           {"Brighton"},
		"state":          {"Utah"},
		"latitude":       {"40.598"},
		"longitude":      {"-111.583"},
		"base_elevation": {"8755"},
	})
	s.Equal(http.StatusSeeOther, resp.StatusCode)
	s.True(strings.HasPrefix(resp.Header.Get("Location"), "/resorts/"))

	resp = s.form("/admin/resorts", s.skierToken, url.Values{"name": {"Sneaky"}})
	s.Equal(http.StatusForbidden, resp.StatusCode)
}

func (s *RouterTestSuite) TestAdminUsersPage() {
	resp := s.do(http.MethodGet, "/admin/users", s.adminToken, "", nil)
	s.Equal(http.StatusOK, resp.StatusCode)
	body := s.bodyOf(resp)
	s.Contains(body, "skier@example.com")
	s.Contains(body, "Make admin")

	resp = s.form("/admin/users/"+s.skier.ID.String()+"/admin", s.adminToken, url.Values{"is_admin": {"true"}})
	s.Equal(http.StatusSeeOther, resp.StatusCode)
	s.Contains(resp.Header.Get("Location"), "notice=")
	s.True(s.store.User(s.skier.ID).IsAdmin)

	resp = s.form("/admin/users/"+s.admin.ID.String()+"/admin", s.adminToken, url.Values{"is_admin": {"false"}})
	s.Equal(http.StatusSeeOther, resp.StatusCode)
	s.Contains(resp.Header.Get("Location"), "error=")
	s.True(s.store.User(s.admin.ID).IsAdmin)
}

func TestRouterTestSuite(t *testing.T) {
	suite.Run(t, new(RouterTestSuite))
}

func ptr[T any](v T) *T { return &v }

func uuidString() string { return "6f1c1f5e-4a7b-4d39-9d63-0d7f5c1f2a10" }
