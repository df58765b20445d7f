package health

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-faster/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeStatus(t *testing.T, w *httptest.ResponseRecorder) statusResponse {
	t.Helper()
	var resp statusResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	return resp
}

func TestReadyEndpoint_NotReadyByDefault(t *testing.T) {
	h := New()

	w := httptest.NewRecorder()
	h.ReadyEndpoint(w, httptest.NewRequest(http.MethodGet, "/readyz", nil))

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	resp := decodeStatus(t, w)
	assert.Equal(t, "unhealthy", resp.Status)
	assert.Contains(t, resp.Checks, "_readiness")
}

func TestReadyEndpoint_Ready(t *testing.T) {
	h := New()
	h.SetReady(true)

	w := httptest.NewRecorder()
	h.ReadyEndpoint(w, httptest.NewRequest(http.MethodGet, "/readyz", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ok", decodeStatus(t, w).Status)
}

func TestLiveEndpoint_HealthyWithoutChecks(t *testing.T) {
	h := New()

	w := httptest.NewRecorder()
	h.LiveEndpoint(w, httptest.NewRequest(http.MethodGet, "/livez", nil))

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestCheck_FailureThreshold(t *testing.T) {
	c := &check{
		name:    "flaky",
		timeout: time.Second,
		fn: func(context.Context) error {
			return errors.New("down")
		},
	}

	// One or two failures stay under the threshold.
	c.run(context.Background())
	c.run(context.Background())
	assert.NoError(t, c.failure())

	c.run(context.Background())
	assert.Error(t, c.failure())
}

func TestCheck_RecoversAfterSuccess(t *testing.T) {
	fail := true
	c := &check{
		name:    "db",
		timeout: time.Second,
		fn: func(context.Context) error {
			if fail {
				return errors.New("down")
			}
			return nil
		},
	}

	for range failureThreshold {
		c.run(context.Background())
	}
	require.Error(t, c.failure())

	fail = false
	c.run(context.Background())
	assert.NoError(t, c.failure())
}

func TestGoroutineCountCheck(t *testing.T) {
	assert.NoError(t, GoroutineCountCheck(1_000_000)(context.Background()))
	assert.Error(t, GoroutineCountCheck(0)(context.Background()))
}
