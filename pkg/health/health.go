package health

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/utafrali/storefront/pkg/httputil"
)

// Checker reports whether a dependency is usable.
type Checker func(ctx context.Context) error

// Status is the health of a component.
type Status string

const (
	StatusUp   Status = "up"
	StatusDown Status = "down"
)

// Response is the JSON body of the health endpoints.
type Response struct {
	Status    Status                 `json:"status"`
	Timestamp time.Time              `json:"timestamp"`
	Checks    map[string]CheckResult `json:"checks,omitempty"`
}

// CheckResult is the result of a single dependency check.
type CheckResult struct {
	Status   Status `json:"status"`
	Error    string `json:"error,omitempty"`
	Optional bool   `json:"optional,omitempty"`
}

type registration struct {
	check    Checker
	optional bool
}

// Handler serves liveness and readiness endpoints.
type Handler struct {
	mu       sync.RWMutex
	checkers map[string]registration
	timeout  time.Duration
}

// NewHandler creates a handler whose readiness checks share a 5s budget.
func NewHandler() *Handler {
	return &Handler{checkers: make(map[string]registration), timeout: 5 * time.Second}
}

// Register adds a required dependency check. A failing required check makes
// the service not ready.
func (h *Handler) Register(name string, checker Checker) {
	h.register(name, registration{check: checker})
}

// RegisterOptional adds a check that is reported but never fails readiness,
// for dependencies the service can run without (cache, event bus).
func (h *Handler) RegisterOptional(name string, checker Checker) {
	h.register(name, registration{check: checker, optional: true})
}

func (h *Handler) register(name string, reg registration) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.checkers[name] = reg
}

// LivenessHandler always answers 200 while the process is running.
func (h *Handler) LivenessHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		httputil.WriteJSON(w, http.StatusOK, Response{Status: StatusUp, Timestamp: time.Now().UTC()})
	}
}

// ReadinessHandler runs all checks concurrently and answers 200 or 503.
func (h *Handler) ReadinessHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
		defer cancel()

		h.mu.RLock()
		regs := make(map[string]registration, len(h.checkers))
		for k, v := range h.checkers {
			regs[k] = v
		}
		h.mu.RUnlock()

		var (
			mu     sync.Mutex
			wg     sync.WaitGroup
			checks = make(map[string]CheckResult, len(regs))
			status = StatusUp
		)
		for name, reg := range regs {
			wg.Add(1)
			go func() {
				defer wg.Done()
				res := CheckResult{Status: StatusUp, Optional: reg.optional}
				if err := reg.check(ctx); err != nil {
					res.Status = StatusDown
					res.Error = err.Error()
				}
				mu.Lock()
				defer mu.Unlock()
				checks[name] = res
				if res.Status == StatusDown && !reg.optional {
					status = StatusDown
				}
			}()
		}
		wg.Wait()

		code := http.StatusOK
		if status == StatusDown {
			code = http.StatusServiceUnavailable
		}
		httputil.WriteJSON(w, code, Response{Status: status, Timestamp: time.Now().UTC(), Checks: checks})
	}
}
