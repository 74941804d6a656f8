package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/chatcartlabs/chatcart-backend/pkg/config"
)

type fakeWindowStore struct {
	counts map[string]int64
}

func (f *fakeWindowStore) FixedWindowAllow(_ context.Context, scope string, limit int64, _ time.Duration) (bool, int64, error) {
	if f.counts == nil {
		f.counts = make(map[string]int64)
	}
	f.counts[scope]++
	return f.counts[scope] <= limit, f.counts[scope], nil
}

func TestRateLimitBlocksAfterLimit(t *testing.T) {
	cfg := config.RateLimitConfig{Window: time.Minute, MerchantLimit: 2}
	store := &fakeWindowStore{}
	mw := RateLimit(cfg, store, nil)
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	merchantID := uuid.New()
	send := func() int {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/orders", nil)
		req = req.WithContext(WithMerchantID(req.Context(), merchantID))
		resp := httptest.NewRecorder()
		mw(handler).ServeHTTP(resp, req)
		return resp.Code
	}

	if got := send(); got != http.StatusOK {
		t.Fatalf("first request: expected 200 got %d", got)
	}
	if got := send(); got != http.StatusOK {
		t.Fatalf("second request: expected 200 got %d", got)
	}
	if got := send(); got != http.StatusTooManyRequests {
		t.Fatalf("third request: expected 429 got %d", got)
	}
}

func TestRateLimitSkipsUnauthenticated(t *testing.T) {
	cfg := config.RateLimitConfig{Window: time.Minute, MerchantLimit: 1}
	store := &fakeWindowStore{}
	mw := RateLimit(cfg, store, nil)
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	for i := 0; i < 3; i++ {
		resp := httptest.NewRecorder()
		mw(handler).ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/health/live", nil))
		if resp.Code != http.StatusOK {
			t.Fatalf("request %d: expected 200 got %d", i, resp.Code)
		}
	}
	if len(store.counts) != 0 {
		t.Fatalf("expected no counters for unauthenticated traffic, got %v", store.counts)
	}
}
