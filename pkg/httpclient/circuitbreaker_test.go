package httpclient

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/sony/gobreaker/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/utafrali/storefront/pkg/logger"
)

type stubDoer struct {
	status int
	err    error
	calls  int
}

func (s *stubDoer) Do(ctx context.Context, req *http.Request) (*http.Response, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	rec := httptest.NewRecorder()
	rec.WriteHeader(s.status)
	return rec.Result(), nil
}

func breakerConfig() CircuitBreakerConfig {
	return CircuitBreakerConfig{Name: "admin-api", MaxRequests: 1, Timeout: time.Hour, FailureRatio: 0.5, MinRequests: 2}
}

func newRequest(t *testing.T) *http.Request {
	req, err := http.NewRequest(http.MethodGet, "http://admin.test/api/admin/products", nil)
	require.NoError(t, err)
	return req
}

func TestCircuitBreaker_ServerErrorStillReturnsResponse(t *testing.T) {
	stub := &stubDoer{status: http.StatusInternalServerError}
	cb := NewCircuitBreakerClient(stub, breakerConfig(), nil, logger.Discard())

	resp, err := cb.Do(context.Background(), newRequest(t))
	require.NoError(t, err)
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
}

func TestCircuitBreaker_OpensAfterFailures(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics, err := NewBreakerMetrics(reg)
	require.NoError(t, err)

	stub := &stubDoer{err: errors.New("connection refused")}
	cb := NewCircuitBreakerClient(stub, breakerConfig(), metrics, logger.Discard())

	for i := 0; i < 2; i++ {
		_, err := cb.Do(context.Background(), newRequest(t))
		require.Error(t, err)
	}
	assert.Equal(t, gobreaker.StateOpen, cb.State())
	assert.Equal(t, float64(2), testutil.ToFloat64(metrics.state.WithLabelValues("admin-api")))

	_, err = cb.Do(context.Background(), newRequest(t))
	require.ErrorIs(t, err, ErrCircuitOpen)
	assert.Equal(t, 2, stub.calls, "open breaker short-circuits")
}

func TestCircuitBreaker_ClientErrorsDoNotTrip(t *testing.T) {
	stub := &stubDoer{status: http.StatusNotFound}
	cb := NewCircuitBreakerClient(stub, breakerConfig(), nil, logger.Discard())

	for i := 0; i < 5; i++ {
		resp, err := cb.Do(context.Background(), newRequest(t))
		require.NoError(t, err)
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	}
	assert.Equal(t, gobreaker.StateClosed, cb.State())
}

func TestNewBreakerMetrics_DuplicateRegistration(t *testing.T) {
	reg := prometheus.NewRegistry()
	_, err := NewBreakerMetrics(reg)
	require.NoError(t, err)
	_, err = NewBreakerMetrics(reg)
	assert.Error(t, err)
}
