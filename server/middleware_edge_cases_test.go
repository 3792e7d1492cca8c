package server

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestRealIPMiddleware_SingleIP(t *testing.T) {
	var got string
	handler := RealIPMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.RemoteAddr
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Forwarded-For", "192.168.1.20, 10.0.0.1")
	handler.ServeHTTP(httptest.NewRecorder(), req)

	if got != "192.168.1.20" {
		t.Errorf("Expected the first forwarded address, got %s", got)
	}
}

func TestRealIPMiddleware_WithoutXForwardedFor(t *testing.T) {
	var got string
	handler := RealIPMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.RemoteAddr
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "127.0.0.1:5555"
	handler.ServeHTTP(httptest.NewRecorder(), req)

	if got != "127.0.0.1:5555" {
		t.Errorf("RemoteAddr should be untouched, got %s", got)
	}
}

func TestLocalNetworkMiddleware(t *testing.T) {
	tests := []struct {
		remote string
		want   int
	}{
		{"127.0.0.1:1234", http.StatusOK},
		{"[::1]:1234", http.StatusOK},
		{"localhost:1234", http.StatusOK},
		{"192.168.1.10:1234", http.StatusOK},
		{"10.1.2.3:1234", http.StatusOK},
		{"172.16.0.5:1234", http.StatusOK},
		{"[fd00::1]:1234", http.StatusOK},
		{"203.0.113.7:1234", http.StatusForbidden},
		{"8.8.8.8", http.StatusForbidden},
		{"garbage", http.StatusForbidden},
	}

	handler := LocalNetworkMiddleware(okHandler())
	for _, tt := range tests {
		t.Run(tt.remote, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = tt.remote
			rr := httptest.NewRecorder()
			handler.ServeHTTP(rr, req)

			if rr.Code != tt.want {
				t.Errorf("Expected %d for %s, got %d", tt.want, tt.remote, rr.Code)
			}
		})
	}
}

func TestLocalNetworkMiddleware_IgnoresForwardedHeaders(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "203.0.113.7:1234"
	req.Header.Set("X-Forwarded-For", "127.0.0.1")
	rr := httptest.NewRecorder()
	LocalNetworkMiddleware(okHandler()).ServeHTTP(rr, req)

	if rr.Code != http.StatusForbidden {
		t.Errorf("A forged X-Forwarded-For must not grant access, got %d", rr.Code)
	}
}

func TestRequestSizeMiddleware_NegativeContentLength(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/", nil)
	req.Header.Set("Content-Length", "-1")
	rr := httptest.NewRecorder()
	RequestSizeMiddleware(testConfig())(okHandler()).ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Errorf("Expected 200, got %d", rr.Code)
	}
}

func TestRequestSizeMiddleware_ExceedsMaxSize(t *testing.T) {
	cfg := testConfig()
	cfg.MaxRequestBody = 10

	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader("01234567890"))
	req.Header.Set("Content-Length", "11")
	rr := httptest.NewRecorder()
	RequestSizeMiddleware(cfg)(okHandler()).ServeHTTP(rr, req)

	if rr.Code != http.StatusRequestEntityTooLarge {
		t.Errorf("Expected 413, got %d", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), `"code":413`) {
		t.Errorf("Expected a JSON error body, got %s", rr.Body.String())
	}
}

func TestRequestSizeMiddleware_ExactlyMaxSize(t *testing.T) {
	cfg := testConfig()
	cfg.MaxRequestBody = 10

	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader("0123456789"))
	req.Header.Set("Content-Length", "10")
	rr := httptest.NewRecorder()
	RequestSizeMiddleware(cfg)(okHandler()).ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Errorf("Expected 200, got %d", rr.Code)
	}
}

func TestRequestSizeMiddleware_NoContentLength(t *testing.T) {
	cfg := testConfig()
	cfg.MaxRequestBody = 10

	var readErr error
	handler := RequestSizeMiddleware(cfg)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		buf := make([]byte, 64)
		for readErr == nil {
			_, readErr = r.Body.Read(buf)
		}
	}))

	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(strings.Repeat("x", 50)))
	req.Header.Del("Content-Length")
	req.ContentLength = -1
	handler.ServeHTTP(httptest.NewRecorder(), req)

	var maxErr *http.MaxBytesError
	if !errors.As(readErr, &maxErr) {
		t.Errorf("Expected the body to be capped, got %v", readErr)
	}
}

func TestRequestSizeMiddleware_HeadersTooLarge(t *testing.T) {
	cfg := testConfig()
	cfg.MaxHeaderSize = 20

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Large", strings.Repeat("a", 50))
	rr := httptest.NewRecorder()
	RequestSizeMiddleware(cfg)(okHandler()).ServeHTTP(rr, req)

	if rr.Code != http.StatusRequestHeaderFieldsTooLarge {
		t.Errorf("Expected 431, got %d", rr.Code)
	}
}
