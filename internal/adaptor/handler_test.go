package adaptor

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestErrorStatus(t *testing.T) {
	tests := []struct {
		err  string
		want int
	}{
		{"weather unavailable for resort x: timeout", http.StatusBadGateway},
		{"resort 123 not found", http.StatusNotFound},
		{"validation failed: a rating or a comment is required", http.StatusBadRequest},
		{"invalid credentials", http.StatusUnauthorized},
		{"unauthorized", http.StatusUnauthorized},
		{"invalid resort ID format abc", http.StatusBadRequest},
		{"forbidden: review belongs to another user", http.StatusForbidden},
		{"email already registered", http.StatusConflict},
		{"create review: connection reset", http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.err, func(t *testing.T) {
			assert.Equal(t, tt.want, errorStatus(errors.New(tt.err)))
		})
	}
}

func TestRespondServiceErrorHidesInternalMessage(t *testing.T) {
	rec := httptest.NewRecorder()
	respondServiceError(zap.NewNop(), rec, errors.New("pq: password authentication failed"), "list resorts")

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "password authentication")

	rec = httptest.NewRecorder()
	respondServiceError(zap.NewNop(), rec, errors.New("resort abc not found"), "get resort")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "resort abc not found")
}

func TestResortRequestFromForm(t *testing.T) {
	req, errs := resortRequestFromForm(map[string]string{
		"name":             "Taos",
		"state":            "New Mexico",
		"city":             "",
		"website":          "https://www.skitaos.com",
		"latitude":         "36.596",
		"longitude":        "-105.454",
		"summit_elevation": "12481",
		"trail_count":      "ten",
	})

	assert.Equal(t, map[string]string{"TrailCount": "Must be a whole number"}, errs)
	assert.Equal(t, "Taos", req.Name)
	assert.Nil(t, req.City)
	require.NotNil(t, req.Latitude)
	assert.InDelta(t, 36.596, *req.Latitude, 0.0001)
	require.NotNil(t, req.SummitElevation)
	assert.Equal(t, 12481, *req.SummitElevation)
	assert.Nil(t, req.BaseElevation)
}

func TestSessionMetaStripsPort(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.RemoteAddr = "203.0.113.9:51234"
	r.Header.Set("User-Agent", "snowcat/1.0")

	meta := sessionMeta(r)
	assert.Equal(t, "203.0.113.9", meta.IPAddress)
	assert.Equal(t, "snowcat/1.0", meta.UserAgent)
}

func TestLoginFailureMessage(t *testing.T) {
	assert.Equal(t, "This account has been deactivated.", loginFailureMessage(errors.New("forbidden: account is deactivated")))
	assert.Equal(t, "Incorrect email, username, or password.", loginFailureMessage(errors.New("invalid credentials")))
}

func TestListJobsWithSchedulerDisabled(t *testing.T) {
	h := NewJobHandler(nil, zap.NewNop())

	rec := httptest.NewRecorder()
	h.ListJobs(rec, httptest.NewRequest(http.MethodGet, "/api/admin/jobs", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"data":[]`)

	_, err := triggerJob(nil, "session-cleanup")
	require.Error(t, err)
	assert.Equal(t, http.StatusNotFound, errorStatus(err))
}
