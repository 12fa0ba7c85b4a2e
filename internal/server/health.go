package server

import (
	"encoding/json"
	"net/http"
	"sync/atomic"
	"time"
)

const (
	healthOK           = "ok"
	healthNotReady     = "not ready"
	healthShuttingDown = "shutting down"
)

// HealthChecker serves liveness and readiness probes next to the metrics.
type HealthChecker struct {
	sc      *ServerContext
	ready   atomic.Bool
	started time.Time
}

// HealthResponse is the body of /healthz and /readyz.
type HealthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}

// DetailedHealthResponse adds uptime and the default calendar.
type DetailedHealthResponse struct {
	Status   string `json:"status"`
	Uptime   string `json:"uptime"`
	Calendar string `json:"calendar,omitempty"`
	Writes   bool   `json:"writes"`
}

// NewHealthChecker returns a checker that reports ready until SetReady(false).
// sc may be nil.
func NewHealthChecker(sc *ServerContext) *HealthChecker {
	h := &HealthChecker{sc: sc, started: time.Now()}
	h.ready.Store(true)
	return h
}

func (h *HealthChecker) SetReady(ready bool) { h.ready.Store(ready) }

func (h *HealthChecker) IsReady() bool { return h.ready.Load() }

// checks evaluates every readiness condition. The second result is false
// when any of them fails.
func (h *HealthChecker) checks() (map[string]string, bool) {
	result := map[string]string{
		"ready":    healthOK,
		"shutdown": healthOK,
		"google":   healthOK,
	}
	ok := true
	fail := func(name, status string) {
		result[name] = status
		ok = false
	}

	if !h.IsReady() {
		fail("ready", healthNotReady)
	}
	if h.sc != nil && h.sc.IsShutdown() {
		fail("shutdown", healthShuttingDown)
	}
	if h.sc != nil && h.sc.requester == nil {
		fail("google", healthNotReady)
	}
	return result, ok
}

// LivenessHandler serves /healthz: the process is up.
func (h *HealthChecker) LivenessHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeHealth(w, http.StatusOK, HealthResponse{Status: healthOK})
	})
}

// ReadinessHandler serves /readyz with one entry per check.
func (h *HealthChecker) ReadinessHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		checks, ok := h.checks()
		if !ok {
			writeHealth(w, http.StatusServiceUnavailable, HealthResponse{Status: healthNotReady, Checks: checks})
			return
		}
		writeHealth(w, http.StatusOK, HealthResponse{Status: healthOK, Checks: checks})
	})
}

// DetailedHealthHandler serves /healthz/detailed.
func (h *HealthChecker) DetailedHealthHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		resp := DetailedHealthResponse{
			Status: healthOK,
			Uptime: time.Since(h.started).Truncate(time.Second).String(),
		}
		if h.sc != nil {
			resp.Calendar = h.sc.DefaultCalendar()
			resp.Writes = h.sc.AllowWrites()
		}

		code := http.StatusOK
		switch {
		case !h.IsReady():
			resp.Status, code = healthNotReady, http.StatusServiceUnavailable
		case h.sc != nil && h.sc.IsShutdown():
			resp.Status, code = healthShuttingDown, http.StatusServiceUnavailable
		}
		writeHealth(w, code, resp)
	})
}

// RegisterHealthEndpoints mounts /healthz, /readyz and /healthz/detailed.
func (h *HealthChecker) RegisterHealthEndpoints(mux *http.ServeMux) {
	mux.Handle("/healthz", h.LivenessHandler())
	mux.Handle("/readyz", h.ReadinessHandler())
	mux.Handle("/healthz/detailed", h.DetailedHealthHandler())
}

func writeHealth(w http.ResponseWriter, code int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(body)
}
