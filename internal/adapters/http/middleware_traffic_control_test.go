package httpadapter

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/kirillkom/sitedocs/internal/config"
)

func TestRateLimitMiddlewareReturns429(t *testing.T) {
	handler := newTestHandler(t, config.Config{
		APIRateLimitRPS:   1,
		APIRateLimitBurst: 1,
	}, Services{})

	req1 := httptest.NewRequest(http.MethodGet, "/v1/categories", nil)
	res1 := httptest.NewRecorder()
	handler.ServeHTTP(res1, req1)
	if res1.Code != http.StatusOK {
		t.Fatalf("first request expected 200, got %d", res1.Code)
	}

	req2 := httptest.NewRequest(http.MethodGet, "/v1/categories", nil)
	res2 := httptest.NewRecorder()
	handler.ServeHTTP(res2, req2)
	if res2.Code != http.StatusTooManyRequests {
		t.Fatalf("second request expected 429, got %d", res2.Code)
	}
	if res2.Header().Get("Retry-After") == "" {
		t.Fatalf("expected Retry-After header for 429 response")
	}
}

func TestRateLimitMiddlewareReportsRejection(t *testing.T) {
	var reasons []string
	base := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	handler := rateLimitMiddleware(base, 1, 1, func(reason string) { reasons = append(reasons, reason) })

	for range 3 {
		handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/v1/categories", nil))
	}
	if len(reasons) != 2 || reasons[0] != "rate_limited" {
		t.Fatalf("expected two rate_limited rejections, got %v", reasons)
	}
}

func TestBackpressureMiddlewareReturns503WhenSaturated(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	done := make(chan int, 1)

	base := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		started <- struct{}{}
		<-release
		w.WriteHeader(http.StatusNoContent)
	})
	handler := backpressureMiddleware(base, 1, 20*time.Millisecond, nil)

	go func() {
		req := httptest.NewRequest(http.MethodGet, "/v1/documents", nil)
		res := httptest.NewRecorder()
		handler.ServeHTTP(res, req)
		done <- res.Code
	}()

	<-started

	req2 := httptest.NewRequest(http.MethodGet, "/v1/documents", nil)
	res2 := httptest.NewRecorder()
	handler.ServeHTTP(res2, req2)
	if res2.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503 for saturated backpressure gate, got %d", res2.Code)
	}

	var resp map[string]any
	if err := json.NewDecoder(bytes.NewReader(res2.Body.Bytes())).Decode(&resp); err != nil {
		t.Fatalf("decode overload response: %v", err)
	}
	if resp["error"] == "" {
		t.Fatalf("expected overload error message in response")
	}

	close(release)

	select {
	case code := <-done:
		if code != http.StatusNoContent {
			t.Fatalf("first request expected 204, got %d", code)
		}
	case <-time.After(1 * time.Second):
		t.Fatalf("timed out waiting for first request completion")
	}
}

func TestAPIKeyMiddleware(t *testing.T) {
	handler := newTestHandler(t, config.Config{APIKey: "site-secret"}, Services{})

	cases := []struct {
		name   string
		path   string
		header string
		want   int
	}{
		{name: "missing header", path: "/v1/categories", want: http.StatusUnauthorized},
		{name: "wrong key", path: "/v1/categories", header: "Bearer nope", want: http.StatusUnauthorized},
		{name: "wrong scheme", path: "/v1/categories", header: "Basic site-secret", want: http.StatusUnauthorized},
		{name: "valid key", path: "/v1/categories", header: "Bearer site-secret", want: http.StatusOK},
		{name: "health is public", path: "/healthz", want: http.StatusOK},
		{name: "contract is public", path: "/openapi.json", want: http.StatusOK},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tc.path, nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			res := httptest.NewRecorder()
			handler.ServeHTTP(res, req)
			if res.Code != tc.want {
				t.Fatalf("expected %d, got %d: %s", tc.want, res.Code, res.Body.String())
			}
			if tc.want == http.StatusUnauthorized && res.Header().Get("WWW-Authenticate") == "" {
				t.Fatalf("expected WWW-Authenticate header on 401")
			}
		})
	}
}

func TestRequestIDIsEchoed(t *testing.T) {
	handler := newTestHandler(t, config.Config{}, Services{})

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set("X-Request-ID", "req-42")
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)

	if got := res.Header().Get("X-Request-ID"); got != "req-42" {
		t.Fatalf("expected request id to be echoed, got %q", got)
	}
}
