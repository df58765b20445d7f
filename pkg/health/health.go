// Package health provides liveness and readiness probe endpoints. Registered
// checks run periodically in the background; probe handlers report the last
// observed state instead of running checks inline.
package health

import (
	"context"
	"encoding/json"
	"net/http"
	"runtime"
	"sync"
	"time"

	"github.com/go-faster/errors"
)

// CheckFunc reports the health of one component: nil when healthy.
type CheckFunc func(ctx context.Context) error

// failureThreshold is how many consecutive failures flip a check to
// unhealthy, so a single transient error does not flap the probe.
const failureThreshold = 3

type check struct {
	name    string
	timeout time.Duration
	fn      CheckFunc

	mu       sync.Mutex
	failures int
	lastErr  error
}

func (c *check) run(ctx context.Context) {
	checkCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	err := c.fn(checkCtx)

	c.mu.Lock()
	defer c.mu.Unlock()
	if err != nil {
		c.failures++
		c.lastErr = err
		return
	}
	c.failures = 0
	c.lastErr = nil
}

// failure returns the check's error when it has crossed the failure
// threshold, nil otherwise.
func (c *check) failure() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.failures >= failureThreshold {
		return c.lastErr
	}
	return nil
}

// Health manages liveness and readiness checks for a service.
type Health struct {
	mu        sync.Mutex
	ready     bool
	liveness  []*check
	readiness []*check
	cancel    context.CancelFunc
}

// New creates a Health in the not-ready state; call SetReady(true) once
// initialization completes.
func New() *Health {
	return &Health{}
}

// AddLivenessCheck registers a liveness check (is the process functioning).
func (h *Health) AddLivenessCheck(name string, timeout time.Duration, fn CheckFunc) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.liveness = append(h.liveness, &check{name: name, timeout: timeout, fn: fn})
}

// AddReadinessCheck registers a readiness check (can the service take
// traffic).
func (h *Health) AddReadinessCheck(name string, timeout time.Duration, fn CheckFunc) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.readiness = append(h.readiness, &check{name: name, timeout: timeout, fn: fn})
}

// Start runs every registered check in its own goroutine at the given
// interval until Stop is called or ctx is cancelled.
func (h *Health) Start(ctx context.Context, interval time.Duration) {
	ctx, cancel := context.WithCancel(ctx)

	h.mu.Lock()
	h.cancel = cancel
	checks := append(append([]*check(nil), h.liveness...), h.readiness...)
	h.mu.Unlock()

	for _, c := range checks {
		go func(c *check) {
			ticker := time.NewTicker(interval)
			defer ticker.Stop()

			c.run(ctx)
			for {
				select {
				case <-ctx.Done():
					return
				case <-ticker.C:
					c.run(ctx)
				}
			}
		}(c)
	}
}

// Stop cancels the background check goroutines.
func (h *Health) Stop() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.cancel != nil {
		h.cancel()
		h.cancel = nil
	}
}

// SetReady flips the manual readiness gate. Typically set true after startup
// and false at the beginning of graceful shutdown.
func (h *Health) SetReady(ready bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.ready = ready
}

type statusResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}

// LiveEndpoint serves /livez: 200 while all liveness checks pass, 503
// otherwise.
func (h *Health) LiveEndpoint(w http.ResponseWriter, _ *http.Request) {
	h.mu.Lock()
	checks := append([]*check(nil), h.liveness...)
	h.mu.Unlock()

	writeStatus(w, failures(checks))
}

// ReadyEndpoint serves /readyz: 200 when the service is marked ready and all
// readiness checks pass, 503 otherwise.
func (h *Health) ReadyEndpoint(w http.ResponseWriter, _ *http.Request) {
	h.mu.Lock()
	ready := h.ready
	checks := append([]*check(nil), h.readiness...)
	h.mu.Unlock()

	failed := failures(checks)
	if !ready {
		failed["_readiness"] = "service is not ready"
	}
	writeStatus(w, failed)
}

func failures(checks []*check) map[string]string {
	failed := make(map[string]string)
	for _, c := range checks {
		if err := c.failure(); err != nil {
			failed[c.name] = err.Error()
		}
	}
	return failed
}

func writeStatus(w http.ResponseWriter, failed map[string]string) {
	w.Header().Set("Content-Type", "application/json")
	if len(failed) > 0 {
		w.WriteHeader(http.StatusServiceUnavailable)
		_ = json.NewEncoder(w).Encode(statusResponse{Status: "unhealthy", Checks: failed})
		return
	}
	_ = json.NewEncoder(w).Encode(statusResponse{Status: "ok"})
}

// GoroutineCountCheck reports unhealthy when the goroutine count exceeds
// threshold; useful as a liveness check for goroutine leaks.
func GoroutineCountCheck(threshold int) CheckFunc {
	return func(context.Context) error {
		if count := runtime.NumGoroutine(); count > threshold {
			return errors.Errorf("goroutine count %d exceeds threshold %d", count, threshold)
		}
		return nil
	}
}
