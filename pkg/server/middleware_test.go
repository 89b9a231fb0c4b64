package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"
)

func newMiddlewareServer(limiter *rate.Limiter) *Server {
	return &Server{config: NewConfig(), rateLimiter: limiter}
}

func TestRequestIDMiddleware(t *testing.T) {
	provided := uuid.New().String()

	tests := []struct {
		name   string
		header string
		keep   bool
	}{
		{"generates when missing", "", false},
		{"keeps valid id", provided, true},
		{"replaces invalid id", "invalid-not-a-uuid", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newMiddlewareServer(rate.NewLimiter(100, 200))

			var captured string
			handler := s.requestIDMiddleware(func(w http.ResponseWriter, r *http.Request) {
				captured = requestIDFrom(r.Context())
				w.WriteHeader(http.StatusOK)
			})

			req := httptest.NewRequest(http.MethodGet, "/v1/clusters", nil)
			if tt.header != "" {
				req.Header.Set("X-Request-Id", tt.header)
			}
			rec := httptest.NewRecorder()
			handler(rec, req)

			_, err := uuid.Parse(captured)
			require.NoError(t, err)
			assert.Equal(t, captured, rec.Header().Get("X-Request-Id"))
			if tt.keep {
				assert.Equal(t, tt.header, captured)
			} else {
				assert.NotEqual(t, tt.header, captured)
			}
		})
	}
}

func TestRateLimitMiddleware(t *testing.T) {
	t.Run("allows and sets headers", func(t *testing.T) {
		s := newMiddlewareServer(rate.NewLimiter(100, 200))
		called := false
		handler := s.rateLimitMiddleware(func(w http.ResponseWriter, _ *http.Request) {
			called = true
			w.WriteHeader(http.StatusOK)
		})

		rec := httptest.NewRecorder()
		handler(rec, httptest.NewRequest(http.MethodGet, "/v1/clusters", nil))

		assert.True(t, called)
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.NotEmpty(t, rec.Header().Get("X-RateLimit-Limit"))
		assert.NotEmpty(t, rec.Header().Get("X-RateLimit-Remaining"))
		assert.NotEmpty(t, rec.Header().Get("X-RateLimit-Reset"))
	})

	t.Run("rejects when exhausted", func(t *testing.T) {
		s := newMiddlewareServer(rate.NewLimiter(0, 0))
		called := false
		handler := s.rateLimitMiddleware(func(w http.ResponseWriter, _ *http.Request) {
			called = true
		})

		rec := httptest.NewRecorder()
		handler(rec, httptest.NewRequest(http.MethodPost, "/v1/sync", nil))

		assert.False(t, called)
		assert.Equal(t, http.StatusTooManyRequests, rec.Code)
		assert.Equal(t, "1", rec.Header().Get("Retry-After"))

		var body ErrorResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Equal(t, "RATE_LIMIT_EXCEEDED", body.Code)
		assert.True(t, body.Retryable)
	})
}

func TestPanicRecoveryMiddleware(t *testing.T) {
	s := newMiddlewareServer(rate.NewLimiter(100, 200))
	handler := s.panicRecoveryMiddleware(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	})

	rec := httptest.NewRecorder()
	require.NotPanics(t, func() {
		handler(rec, httptest.NewRequest(http.MethodGet, "/v1/clusters", nil))
	})

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	var body ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "INTERNAL", body.Code)
}

func TestLoggingMiddleware_PassesStatusThrough(t *testing.T) {
	s := newMiddlewareServer(rate.NewLimiter(100, 200))

	for _, status := range []int{http.StatusOK, http.StatusNotFound, http.StatusServiceUnavailable} {
		handler := s.requestIDMiddleware(s.loggingMiddleware(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(status)
		}))

		rec := httptest.NewRecorder()
		handler(rec, httptest.NewRequest(http.MethodGet, "/v1/clusters", nil))
		assert.Equal(t, status, rec.Code)
	}
}

func TestMiddlewareChain(t *testing.T) {
	s := newMiddlewareServer(rate.NewLimiter(100, 200))

	var hasRequestID, hasAPIVersion bool
	handler := s.withMiddleware(func(w http.ResponseWriter, r *http.Request) {
		hasRequestID = requestIDFrom(r.Context()) != ""
		_, hasAPIVersion = r.Context().Value(apiVersionKey).(string)
		w.WriteHeader(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/v1/clusters", nil)
	req.Header.Set("Accept", "application/vnd.clusterscope.v1+json")
	rec := httptest.NewRecorder()
	handler(rec, req)

	assert.True(t, hasRequestID)
	assert.True(t, hasAPIVersion)
	for _, header := range []string{
		"X-Request-Id",
		"X-RateLimit-Limit",
		"X-RateLimit-Remaining",
		"X-RateLimit-Reset",
		"X-API-Version",
	} {
		assert.NotEmpty(t, rec.Header().Get(header), header)
	}
	assert.Equal(t, "v1", rec.Header().Get("X-API-Version"))
}

func TestStatusRecorder(t *testing.T) {
	w := httptest.NewRecorder()
	rec := recordStatus(w)
	assert.Same(t, rec, recordStatus(rec), "nested middleware shares one recorder")

	rec.WriteHeader(http.StatusAccepted)
	rec.WriteHeader(http.StatusInternalServerError)
	_, err := rec.Write([]byte("ok"))
	require.NoError(t, err)

	assert.Equal(t, http.StatusAccepted, rec.status)
	assert.Equal(t, http.StatusAccepted, w.Code)
	assert.Same(t, w, rec.Unwrap())

	implicit := recordStatus(httptest.NewRecorder())
	_, err = implicit.Write([]byte("body"))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, implicit.status)
}

func TestContextAccessorsWithoutMiddleware(t *testing.T) {
	ctx := context.Background()
	assert.Empty(t, requestIDFrom(ctx))
	assert.Equal(t, DefaultAPIVersion, apiVersionFrom(ctx))
}
