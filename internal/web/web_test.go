package web

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"ski-portal/internal/data/entity"
	"ski-portal/internal/dto/response"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestRendererLoadsEveryPage(t *testing.T) {
	renderer, err := NewRenderer("Ski Portal", zap.NewNop())
	require.NoError(t, err)

	for _, name := range []string{"home", "resort", "login", "signup", "profile", "admin_dashboard", "admin_users", "resort_form", "error"} {
		assert.True(t, renderer.Has(name), name)
	}
	assert.False(t, renderer.Has("layout"))
}

func TestRenderErrorPage(t *testing.T) {
	renderer, err := NewRenderer("Ski Portal", zap.NewNop())
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	renderer.Render(rec, http.StatusNotFound, "error", Page{
		Title: "Not Found",
		User:  &entity.User{Username: "skier<script>"},
		Flash: Flash{Kind: FlashError, Message: "Nope"},
		Data:  ErrorView{Status: 404, Message: "Resort not found"},
	})

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "text/html; charset=utf-8", rec.Header().Get("Content-Type"))
	body := rec.Body.String()
	assert.Contains(t, body, "<title>Not Found · Ski Portal</title>")
	assert.Contains(t, body, "Resort not found")
	assert.Contains(t, body, `class="flash flash-error"`)
	assert.Contains(t, body, "skier&lt;script&gt;")
	assert.NotContains(t, body, "skier<script>")
}

func TestRenderUnknownTemplate(t *testing.T) {
	renderer, err := NewRenderer("Ski Portal", zap.NewNop())
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	renderer.Render(rec, http.StatusOK, "missing", Page{})
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestRenderHomeWithPager(t *testing.T) {
	renderer, err := NewRenderer("Ski Portal", zap.NewNop())
	require.NoError(t, err)

	city := "Alta"
	resorts := &response.ResortListResponse{
		PaginatedResponse: response.NewPaginatedResponse([]response.ResortResponse{
			{ID: "r1", Name: "Alta Ski Area", State: "Utah", City: &city, AverageRating: 4.6, ReviewCount: 1234},
		}, 2, 1, 3),
		States: []string{"Colorado", "Utah"},
	}

	rec := httptest.NewRecorder()
	renderer.Render(rec, http.StatusOK, "home", Page{Data: HomeView{
		Resorts: resorts,
		Weather: map[string]response.CurrentWeather{"r1": {TemperatureF: 18, Description: "Heavy snowfall", SnowfallIn: 3}},
		State:   "Utah",
		Search:  "alta",
	}})

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "Alta, Utah")
	assert.Contains(t, body, "1,234 reviews")
	assert.Contains(t, body, "★★★★★")
	assert.Contains(t, body, "Heavy snowfall")
	assert.Contains(t, body, `<option value="Utah" selected>`)
	assert.Contains(t, body, "/?page=1&amp;search=alta&amp;state=Utah")
	assert.Contains(t, body, `<span class="current">2</span>`)
}

func TestFormatting(t *testing.T) {
	assert.Equal(t, "1,234,567", FormatCount(1234567))
	assert.Equal(t, "42", FormatCount(int64(42)))
	assert.Equal(t, "", FormatCount((*int)(nil)))
	assert.Equal(t, "3.5", FormatDecimal(3.5, 2))
	assert.Equal(t, "4", FormatDecimal(4.0, 1))
	assert.Equal(t, "33%", FormatPercent(33.3))
	assert.Equal(t, "★★★☆☆", Stars(2.5))
	assert.Equal(t, "☆☆☆☆☆", Stars(0))
	assert.Equal(t, "★★★★★", Stars(7))
	assert.Equal(t, "", StarsOf(nil))
	assert.Equal(t, "3 days ago", FormatRelativeTime(time.Now().Add(-72*time.Hour)))
	assert.Equal(t, "Jan 2, 2026", FormatDate(time.Date(2026, 1, 2, 15, 0, 0, 0, time.UTC)))
}

func TestFlash(t *testing.T) {
	assert.Equal(t, "/resorts/1?notice=Saved", WithFlash("/resorts/1", FlashNotice, "Saved"))
	assert.Equal(t, "/?error=Oops&page=2", WithFlash("/?page=2&notice=old", FlashError, "Oops"))

	req := httptest.NewRequest(http.MethodGet, "/?notice=Hi&error=Bad", nil)
	assert.Equal(t, Flash{Kind: FlashError, Message: "Bad"}, FlashFromRequest(req))

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	assert.True(t, FlashFromRequest(req).Empty())
}

func TestSafeRedirect(t *testing.T) {
	assert.Equal(t, "/profile", SafeRedirect("/profile", "/"))
	assert.Equal(t, "/", SafeRedirect("https://evil.example", "/"))
	assert.Equal(t, "/", SafeRedirect("//evil.example", "/"))
	assert.Equal(t, "/", SafeRedirect("", "/"))
	assert.Equal(t, "/", SafeRedirect("/\t/evil.example", "/"))
	assert.Equal(t, "/", SafeRedirect("/\n/evil.example", "/"))
	assert.Equal(t, "/", SafeRedirect("/\\evil.example", "/"))
	assert.Equal(t, "/", SafeRedirect("/admin\\..\\evil", "/"))
	assert.Equal(t, "/resorts/1?page=2#reviews", SafeRedirect("/resorts/1?page=2#reviews", "/"))

	assert.Equal(t, "/profile?notice=Welcome", WithFlash(SafeRedirect("/\t/evil.example", "/profile"), FlashNotice, "Welcome"))
}

func TestNewPager(t *testing.T) {
	view := ProfileView{}
	pager := NewPager(view, response.PaginationMeta{Page: 1, TotalPages: 6})

	assert.Empty(t, pager.PrevURL)
	assert.Equal(t, "/profile?page=2", pager.NextURL)
	require.Len(t, pager.Links, 3)
	assert.True(t, pager.Links[0].Current)
	assert.Equal(t, "/profile?page=3", pager.Links[2].URL)
}

func TestStaticAssets(t *testing.T) {
	rec := httptest.NewRecorder()
	Static().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/static/style.css", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), ".resort-card")
}
