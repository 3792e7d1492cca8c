package server

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/giygas/fiche-dentaire/metrics"
)

func TestGetTokenCost(t *testing.T) {
	tests := []struct {
		name         string
		method       string
		path         string
		expectedCost int64
	}{
		{"Metrics are free", http.MethodGet, "/metrics", 0},
		{"Health endpoint", http.MethodGet, "/health", 5},
		{"Field catalog", http.MethodGet, "/v1/fields", 5},
		{"Medication lookup", http.MethodGet, "/v1/medicaments/validate", 50},

		{"PDF export", http.MethodPost, "/v1/sessions/abc/exports/pdf", 100},
		{"Hygiene export", http.MethodPost, "/v1/sessions/abc/exports/hygiene", 100},
		{"Text export", http.MethodPost, "/v1/sessions/abc/exports/text", 50},
		{"Edited export", http.MethodPost, "/v1/sessions/abc/exports/edited", 50},
		{"Answer merge", http.MethodPatch, "/v1/sessions/abc/answers", 20},
		{"Answer reset", http.MethodDelete, "/v1/sessions/abc/answers", 10},

		// Default case
		{"Session read", http.MethodGet, "/v1/sessions/abc", 10},
		{"Report", http.MethodGet, "/v1/sessions/abc/report", 10},
		{"Unknown endpoint", http.MethodGet, "/unknown", 10},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.path, nil)
			if cost := getTokenCost(req); cost != tt.expectedCost {
				t.Errorf("Expected cost %d for %s %s, got %d", tt.expectedCost, tt.method, tt.path, cost)
			}
		})
	}
}

func TestRateLimiterMiddleware(t *testing.T) {
	rl := NewRateLimiter(0.001, 100)
	handler := rl.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	send := func(remote, path string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, path, nil)
		req.RemoteAddr = remote
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)
		return rr
	}

	// a PDF export empties the bucket
	rr := send("10.0.0.1", "/v1/sessions/abc/exports/pdf")
	if rr.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rr.Code)
	}
	if rr.Header().Get("X-RateLimit-Remaining") != "0" {
		t.Errorf("Expected 0 remaining, got %s", rr.Header().Get("X-RateLimit-Remaining"))
	}

	rr = send("10.0.0.1", "/v1/sessions/abc/exports/text")
	if rr.Code != http.StatusTooManyRequests {
		t.Errorf("Expected 429, got %d", rr.Code)
	}
	if rr.Header().Get("Retry-After") != "60" {
		t.Error("Expected a Retry-After header")
	}

	// other clients have their own bucket
	if rr = send("10.0.0.2", "/v1/sessions/abc/exports/text"); rr.Code != http.StatusOK {
		t.Errorf("Expected 200 for another client, got %d", rr.Code)
	}

	if got := testutil.ToFloat64(metrics.RateLimiterBucketsTotal); got != 2 {
		t.Errorf("Expected 2 buckets in the gauge, got %v", got)
	}
}

func TestRateLimiterCleanup(t *testing.T) {
	rl := NewRateLimiter(1000, 10)
	rl.getBucket("10.0.0.1")
	rl.getBucket("10.0.0.2").TakeAvailable(10)

	if removed := rl.cleanup(); removed != 1 {
		t.Errorf("Expected the full bucket to be removed, got %d", removed)
	}
	if len(rl.clients) != 1 {
		t.Errorf("Expected 1 client left, got %d", len(rl.clients))
	}

	time.Sleep(50 * time.Millisecond) // 1000 tokens/s refills the drained bucket
	rl.cleanup()
	if len(rl.clients) != 0 {
		t.Errorf("Expected no client left, got %d", len(rl.clients))
	}
	if got := testutil.ToFloat64(metrics.RateLimiterBucketsTotal); got != 0 {
		t.Errorf("Expected the gauge to drop to 0, got %v", got)
	}
}

func TestRateLimiterStopIsIdempotent(t *testing.T) {
	rl := NewRateLimiter(1, 1)
	rl.StartCleanup(time.Millisecond)
	rl.Stop()
	rl.Stop()
}
