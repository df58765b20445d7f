package httpmiddleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func doRequest(handler http.Handler, remoteAddr string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = remoteAddr
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	return w
}

func TestRateLimit_UnderLimit(t *testing.T) {
	handler := RateLimit(RateLimitConfig{Max: 5, Window: time.Minute})(okHandler())

	for i := range 5 {
		w := doRequest(handler, "192.168.1.1:12345")
		assert.Equal(t, http.StatusOK, w.Code, "request %d should pass", i+1)
		assert.Equal(t, "5", w.Header().Get("X-RateLimit-Limit"))
		assert.NotEmpty(t, w.Header().Get("X-RateLimit-Reset"))
	}
}

func TestRateLimit_OverLimit(t *testing.T) {
	handler := RateLimit(RateLimitConfig{Max: 2, Window: time.Minute})(okHandler())

	for range 2 {
		w := doRequest(handler, "10.0.0.1:9999")
		require.Equal(t, http.StatusOK, w.Code)
	}

	w := doRequest(handler, "10.0.0.1:9999")
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "0", w.Header().Get("X-RateLimit-Remaining"))
	assert.NotEmpty(t, w.Header().Get("Retry-After"))
}

func TestRateLimit_KeysAreIndependent(t *testing.T) {
	handler := RateLimit(RateLimitConfig{Max: 1, Window: time.Minute})(okHandler())

	require.Equal(t, http.StatusOK, doRequest(handler, "10.0.0.1:1111").Code)
	assert.Equal(t, http.StatusTooManyRequests, doRequest(handler, "10.0.0.1:2222").Code)
	assert.Equal(t, http.StatusOK, doRequest(handler, "10.0.0.2:1111").Code)
}

func TestRateLimit_ForwardedForKey(t *testing.T) {
	handler := RateLimit(RateLimitConfig{Max: 1, Window: time.Minute})(okHandler())

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "10.0.0.1:1111"
	req.Header.Set("X-Forwarded-For", "203.0.113.7, 10.0.0.1")
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	// Same forwarded client from a different hop shares the budget.
	req2 := httptest.NewRequest(http.MethodGet, "/", nil)
	req2.RemoteAddr = "10.0.0.9:2222"
	req2.Header.Set("X-Forwarded-For", "203.0.113.7")
	w2 := httptest.NewRecorder()
	handler.ServeHTTP(w2, req2)
	assert.Equal(t, http.StatusTooManyRequests, w2.Code)
}

func TestRateLimit_WindowResets(t *testing.T) {
	l := newLimiter(RateLimitConfig{Max: 1, Window: 10 * time.Millisecond})

	now := time.Now()
	_, _, ok := l.allow("k", now)
	require.True(t, ok)
	_, _, ok = l.allow("k", now)
	require.False(t, ok)

	_, _, ok = l.allow("k", now.Add(11*time.Millisecond))
	assert.True(t, ok)
}
