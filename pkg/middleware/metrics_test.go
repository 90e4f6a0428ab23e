package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// findMetric returns the sample of c whose labels include all of labels.
func findMetric(t *testing.T, c prometheus.Collector, labels map[string]string) *dto.Metric {
	t.Helper()
	ch := make(chan prometheus.Metric, 100)
	c.Collect(ch)
	close(ch)

	for m := range ch {
		d := &dto.Metric{}
		if err := m.Write(d); err != nil {
			continue
		}
		got := map[string]string{}
		for _, lp := range d.GetLabel() {
			got[lp.GetName()] = lp.GetValue()
		}
		match := true
		for k, v := range labels {
			if got[k] != v {
				match = false
				break
			}
		}
		if match {
			return d
		}
	}
	return nil
}

func TestHTTPMetrics_LabelsByRoutePattern(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewHTTPMetrics(reg, "storefront")

	r := chi.NewRouter()
	r.Use(m.Middleware)
	r.Get("/api/products/{slug}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	for _, slug := range []string{"a", "b", "c"} {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/products/"+slug, nil))
	}

	got := testutil.ToFloat64(m.requests.WithLabelValues(http.MethodGet, "/api/products/{slug}", "404"))
	assert.Equal(t, float64(3), got)
	assert.Equal(t, float64(0), testutil.ToFloat64(m.inFlight))
}

func TestHTTPMetrics_DurationObservedPerRoute(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewHTTPMetrics(reg, "storefront")

	r := chi.NewRouter()
	r.Use(m.Middleware)
	r.Get("/api/categories/{category}/products", func(w http.ResponseWriter, r *http.Request) {})

	for _, c := range []string{"shirts", "mugs"} {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/categories/"+c+"/products", nil))
	}

	d := findMetric(t, m.duration, map[string]string{
		"method": http.MethodGet,
		"route":  "/api/categories/{category}/products",
		"status": "200",
	})
	require.NotNil(t, d)
	assert.Equal(t, uint64(2), d.GetHistogram().GetSampleCount())
}

func TestHTTPMetrics_UnroutedPath(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewHTTPMetrics(reg, "storefront")

	h := m.Middleware(okHandler())
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/x", nil))

	assert.Equal(t, float64(1), testutil.ToFloat64(m.requests.WithLabelValues(http.MethodGet, "unknown", "200")))
}

func TestHTTPMetrics_Registered(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewHTTPMetrics(reg, "storefront")
	m.requests.WithLabelValues("GET", "/", "200").Inc()
	m.duration.WithLabelValues("GET", "/", "200").Observe(0.1)

	families, err := reg.Gather()
	require.NoError(t, err)

	names := map[string]bool{}
	for _, f := range families {
		names[f.GetName()] = true
	}
	assert.True(t, names["http_requests_total"])
	assert.True(t, names["http_request_duration_seconds"])
	assert.True(t, names["http_requests_in_flight"])
}
