package middleware

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"resort/pkg/logger"
)

func countingHandler(calls *int32, status int) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := atomic.AddInt32(calls, 1)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = io.WriteString(w, `{"call":`+strconv.Itoa(int(n))+`}`)
	})
}

func TestIdempotency(t *testing.T) {
	tests := []struct {
		name      string
		requests  []*http.Request
		status    int
		wantCalls int32
	}{
		{
			name: "replays repeated key",
			requests: []*http.Request{
				withKey(httptest.NewRequest(http.MethodPost, "/api/v1/bookings", nil), "k1"),
				withKey(httptest.NewRequest(http.MethodPost, "/api/v1/bookings", nil), "k1"),
			},
			status:    http.StatusCreated,
			wantCalls: 1,
		},
		{
			name: "same key on another path",
			requests: []*http.Request{
				withKey(httptest.NewRequest(http.MethodPost, "/api/v1/bookings/id/a/confirm", nil), "k1"),
				withKey(httptest.NewRequest(http.MethodPost, "/api/v1/bookings/id/b/confirm", nil), "k1"),
			},
			status:    http.StatusOK,
			wantCalls: 2,
		},
		{
			name: "errors are not cached",
			requests: []*http.Request{
				withKey(httptest.NewRequest(http.MethodPost, "/api/v1/bookings", nil), "k1"),
				withKey(httptest.NewRequest(http.MethodPost, "/api/v1/bookings", nil), "k1"),
			},
			status:    http.StatusConflict,
			wantCalls: 2,
		},
		{
			name: "safe methods pass through",
			requests: []*http.Request{
				withKey(httptest.NewRequest(http.MethodGet, "/api/v1/bookings", nil), "k1"),
				withKey(httptest.NewRequest(http.MethodGet, "/api/v1/bookings", nil), "k1"),
			},
			status:    http.StatusOK,
			wantCalls: 2,
		},
		{
			name: "no key",
			requests: []*http.Request{
				httptest.NewRequest(http.MethodPost, "/api/v1/bookings", nil),
				httptest.NewRequest(http.MethodPost, "/api/v1/bookings", nil),
			},
			status:    http.StatusCreated,
			wantCalls: 2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := NewInMemoryIdempotencyStore(time.Minute)
			defer store.Stop()

			var calls int32
			h := Idempotency(store, "")(countingHandler(&calls, tt.status))

			var bodies []string
			for _, req := range tt.requests {
				rec := httptest.NewRecorder()
				h.ServeHTTP(rec, req)
				if rec.Code != tt.status {
					t.Fatalf("status = %d, want %d", rec.Code, tt.status)
				}
				bodies = append(bodies, rec.Body.String())
			}

			if calls != tt.wantCalls {
				t.Errorf("handler calls = %d, want %d", calls, tt.wantCalls)
			}
			if tt.wantCalls == 1 && bodies[0] != bodies[1] {
				t.Errorf("replayed body = %q, want %q", bodies[1], bodies[0])
			}
		})
	}
}

func withKey(r *http.Request, key string) *http.Request {
	r.Header.Set(DefaultIdempotencyHeader, key)
	return r
}

func TestInMemoryIdempotencyStore_Expiry(t *testing.T) {
	store := NewInMemoryIdempotencyStore(10 * time.Millisecond)
	defer store.Stop()

	ctx := context.Background()
	store.Set(ctx, "k", &CachedResponse{StatusCode: http.StatusOK})
	if _, ok := store.Get(ctx, "k"); !ok {
		t.Fatal("entry missing right after Set")
	}

	time.Sleep(20 * time.Millisecond)
	if _, ok := store.Get(ctx, "k"); ok {
		t.Error("entry should have expired")
	}
}

func TestRateLimit(t *testing.T) {
	limiter := NewClientRateLimiter(2, time.Hour, nil, logger.Discard())
	defer limiter.Stop()

	var calls int32
	h := RateLimit(limiter)(countingHandler(&calls, http.StatusOK))

	send := func(client string) int {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/bookings", nil)
		req.Header.Set(ClientIDHeader, client)
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec.Code
	}

	for i, want := range []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests} {
		if got := send("agent-1"); got != want {
			t.Errorf("request %d status = %d, want %d", i, got, want)
		}
	}
	if got := send("agent-2"); got != http.StatusOK {
		t.Errorf("other client status = %d, want 200", got)
	}
}

func TestDefaultClientExtractor(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "203.0.113.7:51234"
	if got := DefaultClientExtractor(req); got != "203.0.113.7" {
		t.Errorf("client = %q, want remote IP", got)
	}

	req.Header.Set(ClientIDHeader, " agent-9 ")
	if got := DefaultClientExtractor(req); got != "agent-9" {
		t.Errorf("client = %q, want header value", got)
	}
}

func TestContentTypeValidation(t *testing.T) {
	tests := []struct {
		name        string
		method      string
		body        string
		contentType string
		want        int
	}{
		{"json body", http.MethodPost, `{}`, "application/json; charset=utf-8", http.StatusOK},
		{"form body", http.MethodPost, `a=b`, "application/x-www-form-urlencoded", http.StatusUnsupportedMediaType},
		{"bodiless action", http.MethodPost, "", "", http.StatusOK},
		{"get", http.MethodGet, "", "", http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var calls int32
			h := ContentTypeValidation(logger.Discard())(countingHandler(&calls, http.StatusOK))

			req := httptest.NewRequest(tt.method, "/api/v1/bookings/id/x/confirm", strings.NewReader(tt.body))
			if tt.contentType != "" {
				req.Header.Set("Content-Type", tt.contentType)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			if rec.Code != tt.want {
				t.Errorf("status = %d, want %d", rec.Code, tt.want)
			}
		})
	}
}

func TestMaxRequestSize(t *testing.T) {
	h := MaxRequestSize(8)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, err := io.ReadAll(r.Body); err != nil {
			w.WriteHeader(http.StatusRequestEntityTooLarge)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))

	small := httptest.NewRequest(http.MethodPost, "/", strings.NewReader("1234"))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, small)
	if rec.Code != http.StatusOK {
		t.Errorf("small body status = %d", rec.Code)
	}

	large := httptest.NewRequest(http.MethodPost, "/", strings.NewReader("0123456789abcdef"))
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, large)
	if rec.Code != http.StatusRequestEntityTooLarge {
		t.Errorf("large body status = %d, want 413", rec.Code)
	}
}

func TestRequestLogging_RequestID(t *testing.T) {
	var seen string
	h := RequestLogging(logger.Discard())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = requestIDFrom(r)
		if logger.FromContext(r.Context(), nil) == nil {
			t.Error("request logger missing from context")
		}
	}))

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set(RequestIDHeader, "req-123")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if seen != "req-123" || rec.Header().Get(RequestIDHeader) != "req-123" {
		t.Errorf("request id = %q, header = %q", seen, rec.Header().Get(RequestIDHeader))
	}

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	if seen == "" || seen == "req-123" {
		t.Errorf("generated request id = %q", seen)
	}
}

func TestRequestTimeout(t *testing.T) {
	tests := []struct {
		name       string
		delay      time.Duration
		wantStatus int
		wantHeader string
	}{
		{"fast handler", 0, http.StatusCreated, "yes"},
		{"slow handler", 200 * time.Millisecond, http.StatusGatewayTimeout, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := RequestTimeout(20 * time.Millisecond)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				select {
				case <-time.After(tt.delay):
				case <-r.Context().Done():
					return
				}
				w.Header().Set("X-Handled", "yes")
				w.WriteHeader(http.StatusCreated)
			}))

			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/bookings", nil))

			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			if got := rec.Header().Get("X-Handled"); got != tt.wantHeader {
				t.Errorf("X-Handled = %q, want %q", got, tt.wantHeader)
			}
			if tt.wantStatus == http.StatusGatewayTimeout && !strings.Contains(rec.Body.String(), `"TIMEOUT"`) {
				t.Errorf("body = %s", rec.Body.String())
			}
		})
	}
}
