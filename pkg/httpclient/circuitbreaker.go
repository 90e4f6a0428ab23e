package httpclient

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/sony/gobreaker/v2"
)

// CircuitBreakerConfig holds configuration for the circuit breaker.
type CircuitBreakerConfig struct {
	Name string
	// MaxRequests is the number of trial requests allowed while half-open.
	MaxRequests uint32
	// Interval clears the closed-state counts; 0 never clears them.
	Interval time.Duration
	// Timeout is how long the breaker stays open before going half-open.
	Timeout time.Duration
	// FailureRatio trips the breaker once at least MinRequests were seen.
	FailureRatio float64
	MinRequests  uint32
}

// DefaultCircuitBreakerConfig returns defaults for a single backend.
func DefaultCircuitBreakerConfig(name string) CircuitBreakerConfig {
	return CircuitBreakerConfig{
		Name:         name,
		MaxRequests:  1,
		Interval:     60 * time.Second,
		Timeout:      30 * time.Second,
		FailureRatio: 0.5,
		MinRequests:  5,
	}
}

// ErrCircuitOpen is returned while the breaker rejects requests.
var ErrCircuitOpen = gobreaker.ErrOpenState

// errServerFailure marks a 5xx response as a breaker failure while the
// response itself is still handed back to the caller.
var errServerFailure = errors.New("server error")

// BreakerMetrics exposes breaker state as a gauge.
type BreakerMetrics struct {
	state *prometheus.GaugeVec
}

// NewBreakerMetrics registers the breaker gauge with reg.
func NewBreakerMetrics(reg prometheus.Registerer) (*BreakerMetrics, error) {
	state := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "circuit_breaker_state",
		Help: "Current state of the circuit breaker (0=closed, 1=half-open, 2=open)",
	}, []string{"name"})
	if err := reg.Register(state); err != nil {
		return nil, fmt.Errorf("register circuit breaker metrics: %w", err)
	}
	return &BreakerMetrics{state: state}, nil
}

func (m *BreakerMetrics) set(name string, state gobreaker.State) {
	if m == nil {
		return
	}
	v := -1.0
	switch state {
	case gobreaker.StateClosed:
		v = 0
	case gobreaker.StateHalfOpen:
		v = 1
	case gobreaker.StateOpen:
		v = 2
	}
	m.state.WithLabelValues(name).Set(v)
}

// CircuitBreakerClient wraps a Doer with a circuit breaker. Transport errors
// and 5xx responses count as failures.
type CircuitBreakerClient struct {
	next    Doer
	breaker *gobreaker.CircuitBreaker[*http.Response]
}

// NewCircuitBreakerClient wraps next. metrics may be nil.
func NewCircuitBreakerClient(next Doer, cfg CircuitBreakerConfig, metrics *BreakerMetrics, logger *slog.Logger) *CircuitBreakerClient {
	settings := gobreaker.Settings{
		Name:        cfg.Name,
		MaxRequests: cfg.MaxRequests,
		Interval:    cfg.Interval,
		Timeout:     cfg.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < cfg.MinRequests {
				return false
			}
			return float64(counts.TotalFailures)/float64(counts.Requests) >= cfg.FailureRatio
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("circuit breaker state change",
				slog.String("breaker", name),
				slog.String("from", from.String()),
				slog.String("to", to.String()),
			)
			metrics.set(name, to)
		},
	}
	metrics.set(cfg.Name, gobreaker.StateClosed)

	return &CircuitBreakerClient{
		next:    next,
		breaker: gobreaker.NewCircuitBreaker[*http.Response](settings),
	}
}

// Do executes req through the breaker.
func (c *CircuitBreakerClient) Do(ctx context.Context, req *http.Request) (*http.Response, error) {
	resp, err := c.breaker.Execute(func() (*http.Response, error) {
		resp, err := c.next.Do(ctx, req)
		if err != nil {
			return nil, err
		}
		if resp.StatusCode >= 500 {
			return resp, errServerFailure
		}
		return resp, nil
	})
	if errors.Is(err, errServerFailure) {
		return resp, nil
	}
	return resp, err
}

// State returns the current breaker state.
func (c *CircuitBreakerClient) State() gobreaker.State {
	return c.breaker.State()
}
