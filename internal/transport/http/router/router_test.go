package router

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/jiwar-sa/analytics-service/internal/application/analytics"
	"github.com/jiwar-sa/analytics-service/internal/config"
	"github.com/jiwar-sa/analytics-service/internal/transport/http/handlers"
)

type stubClock struct{}

func (stubClock) Now() time.Time { return time.Date(2025, 11, 3, 12, 0, 0, 0, time.UTC) }

func testRouter(t *testing.T) http.Handler {
	t.Helper()
	// nil store: track answers 503, logs answers an empty collection
	svc := analytics.New(nil, nil, nil, stubClock{}, analytics.Options{ConfirmationCode: "x"})
	cfg := &config.Config{RLEnabled: false}
	return New(
		handlers.NewTrackHandler(svc),
		handlers.NewLogsHandler(svc),
		handlers.NewCleanupHandler(svc),
		handlers.NewHealthHandler(),
		cfg,
	)
}

func TestRouter_Routes(t *testing.T) {
	r := testRouter(t)

	t.Run("healthz", func(t *testing.T) {
		rr := httptest.NewRecorder()
		r.ServeHTTP(rr, httptest.NewRequest("GET", "/healthz", nil))
		assert.Equal(t, http.StatusOK, rr.Code)
		assert.Contains(t, rr.Body.String(), "ok")
	})

	t.Run("track_degrades_without_storage", func(t *testing.T) {
		rr := httptest.NewRecorder()
		req := httptest.NewRequest("POST", "/api/track", strings.NewReader(`{"sessionId":"s1"}`))
		r.ServeHTTP(rr, req)
		assert.Equal(t, http.StatusServiceUnavailable, rr.Code)
	})

	t.Run("logs_degrades_to_empty", func(t *testing.T) {
		rr := httptest.NewRecorder()
		r.ServeHTTP(rr, httptest.NewRequest("GET", "/api/logs?t=1", nil))
		assert.Equal(t, http.StatusOK, rr.Code)
		assert.Contains(t, rr.Body.String(), `"count":0`)
	})

	t.Run("stats_wired", func(t *testing.T) {
		rr := httptest.NewRecorder()
		r.ServeHTTP(rr, httptest.NewRequest("GET", "/api/stats", nil))
		assert.Equal(t, http.StatusOK, rr.Code)
	})

	t.Run("cleanup_degrades_without_storage", func(t *testing.T) {
		rr := httptest.NewRecorder()
		req := httptest.NewRequest("POST", "/api/cleanup", strings.NewReader(`{"action":"delete_all","confirmationCode":"x"}`))
		r.ServeHTTP(rr, req)
		assert.Equal(t, http.StatusServiceUnavailable, rr.Code)
	})

	t.Run("unknown_route_is_404", func(t *testing.T) {
		rr := httptest.NewRecorder()
		r.ServeHTTP(rr, httptest.NewRequest("GET", "/api/nope", nil))
		assert.Equal(t, http.StatusNotFound, rr.Code)
	})

	t.Run("security_and_request_id_headers_present", func(t *testing.T) {
		rr := httptest.NewRecorder()
		r.ServeHTTP(rr, httptest.NewRequest("GET", "/healthz", nil))
		assert.NotEmpty(t, rr.Header().Get("X-Request-Id"))
		assert.Equal(t, "nosniff", rr.Header().Get("X-Content-Type-Options"))
	})
}

func TestRouter_RateLimit(t *testing.T) {
	svc := analytics.New(nil, nil, nil, stubClock{}, analytics.Options{ConfirmationCode: "x"})
	cfg := &config.Config{RLEnabled: true, RLLimit: 2, RLWindow: time.Minute}
	r := New(
		handlers.NewTrackHandler(svc),
		handlers.NewLogsHandler(svc),
		handlers.NewCleanupHandler(svc),
		handlers.NewHealthHandler(),
		cfg,
	)

	var last int
	for i := 0; i < 5; i++ {
		rr := httptest.NewRecorder()
		req := httptest.NewRequest("POST", "/api/track", strings.NewReader(`{"sessionId":"s1"}`))
		req.RemoteAddr = "203.0.113.50:1234"
		r.ServeHTTP(rr, req)
		last = rr.Code
	}
	assert.Equal(t, http.StatusTooManyRequests, last)

	// retrieval is not rate limited
	rr := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/api/logs", nil)
	req.RemoteAddr = "203.0.113.50:1234"
	r.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusOK, rr.Code)
}
