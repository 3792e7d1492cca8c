package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestMetricsMiddlewareUsesRoutePattern(t *testing.T) {
	r := chi.NewRouter()
	r.Use(Metrics)
	r.Get("/v1/sessions/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})

	before := testutil.ToFloat64(HTTPRequestTotals.WithLabelValues("GET", "/v1/sessions/{id}", "418"))

	for _, id := range []string{"a", "b"} {
		req := httptest.NewRequest("GET", "/v1/sessions/"+id, nil)
		r.ServeHTTP(httptest.NewRecorder(), req)
	}

	after := testutil.ToFloat64(HTTPRequestTotals.WithLabelValues("GET", "/v1/sessions/{id}", "418"))
	if after-before != 2 {
		t.Errorf("expected 2 requests under the route pattern, got %v", after-before)
	}
	if got := testutil.ToFloat64(HTTPRequestInFlight); got != 0 {
		t.Errorf("in-flight gauge = %v after requests completed", got)
	}
}

func TestIntakeCounters(t *testing.T) {
	before := testutil.ToFloat64(ReportsGenerated.WithLabelValues("pdf"))
	ReportsGenerated.WithLabelValues("pdf").Inc()
	if got := testutil.ToFloat64(ReportsGenerated.WithLabelValues("pdf")); got != before+1 {
		t.Errorf("reports_generated_total{format=pdf} = %v, want %v", got, before+1)
	}
}
