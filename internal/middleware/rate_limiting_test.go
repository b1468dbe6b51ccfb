package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/2beens/gymlive/internal/telemetry/metrics"

	"github.com/go-redis/redis_rate/v9"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"go.uber.org/mock/gomock"
)

func TestRateLimit(t *testing.T) {
	testCases := []struct {
		name           string
		path           string
		expectedKey    string
		result         *redis_rate.Result
		err            error
		expectedStatus int
		expectNext     bool
		expectLimited  float64
	}{
		{
			name:           "Allowed",
			path:           "/live/u1/session",
			expectedKey:    "live:u1",
			result:         &redis_rate.Result{Allowed: 1, Remaining: 59},
			expectedStatus: http.StatusOK,
			expectNext:     true,
		},
		{
			name:           "Limited",
			path:           "/live/u2/session",
			expectedKey:    "live:u2",
			result:         &redis_rate.Result{Allowed: 0, RetryAfter: 3 * time.Second},
			expectedStatus: http.StatusTooManyRequests,
			expectLimited:  1,
		},
		{
			name:           "NoUserSharedBucket",
			path:           "/health",
			expectedKey:    "live",
			result:         &redis_rate.Result{Allowed: 1},
			expectedStatus: http.StatusOK,
			expectNext:     true,
		},
		{
			name:           "LimiterError",
			path:           "/live/u1/session",
			expectedKey:    "live:u1",
			err:            errors.New("redis down"),
			expectedStatus: http.StatusInternalServerError,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			limiter := NewMockRequestRateLimiter(ctrl)
			metricsManager := metrics.NewTestManager()

			limiter.EXPECT().
				Allow(gomock.Any(), tc.expectedKey, redis_rate.PerMinute(60)).
				Return(tc.result, tc.err)

			nextCalled := false
			r := mux.NewRouter()
			r.Use(RateLimit(limiter, metricsManager, "live", 60))
			next := func(w http.ResponseWriter, r *http.Request) {
				nextCalled = true
			}
			r.HandleFunc("/live/{userId}/session", next)
			r.HandleFunc("/health", next)

			rec := httptest.NewRecorder()
			r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, tc.path, nil))

			assert.Equal(t, tc.expectedStatus, rec.Code)
			assert.Equal(t, tc.expectNext, nextCalled)
			assert.Equal(t, tc.expectLimited, testutil.ToFloat64(metricsManager.CounterRateLimitedRequests))
			if tc.expectLimited > 0 {
				assert.Equal(t, "3", rec.Header().Get("Retry-After"))
			}
		})
	}
}
