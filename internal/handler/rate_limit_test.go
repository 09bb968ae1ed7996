package handler

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
)

func TestIPRateLimiterRefillsPerIP(t *testing.T) {
	limiter := NewIPRateLimiter(time.Minute, 2)
	now := time.Date(2024, time.March, 1, 10, 0, 0, 0, time.UTC)
	limiter.now = func() time.Time { return now }

	if !limiter.Allow("10.0.0.1") || !limiter.Allow("10.0.0.1") {
		t.Fatalf("burst should be allowed")
	}
	if limiter.Allow("10.0.0.1") {
		t.Fatalf("third request should be limited")
	}
	if !limiter.Allow("10.0.0.2") {
		t.Fatalf("other IPs have their own bucket")
	}

	now = now.Add(time.Minute)
	if !limiter.Allow("10.0.0.1") {
		t.Fatalf("bucket should refill after the interval")
	}
}

func TestIPRateLimiterEvictsIdleBuckets(t *testing.T) {
	limiter := NewIPRateLimiter(time.Hour, 1)
	now := time.Date(2024, time.March, 1, 10, 0, 0, 0, time.UTC)
	limiter.now = func() time.Time { return now }

	limiter.Allow("10.0.0.1")
	now = now.Add(11 * time.Minute)
	limiter.Allow("10.0.0.2")

	limiter.mu.Lock()
	defer limiter.mu.Unlock()
	if _, ok := limiter.buckets["10.0.0.1"]; ok {
		t.Fatalf("idle bucket should be evicted")
	}
	if len(limiter.buckets) != 1 {
		t.Fatalf("expected one bucket, got %d", len(limiter.buckets))
	}
}

func TestRateLimitOnlyAppliesToPost(t *testing.T) {
	limiter := NewIPRateLimiter(time.Hour, 1)
	router := gin.New()
	router.Any("/accounts/login/", RateLimit(limiter), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	do := func(method string) int {
		recorder := httptest.NewRecorder()
		request := httptest.NewRequest(method, "/accounts/login/", nil)
		request.RemoteAddr = "192.0.2.1:1234"
		router.ServeHTTP(recorder, request)
		return recorder.Code
	}

	if code := do(http.MethodPost); code != http.StatusOK {
		t.Fatalf("first POST should pass, got %d", code)
	}
	if code := do(http.MethodPost); code != http.StatusTooManyRequests {
		t.Fatalf("second POST should be limited, got %d", code)
	}
	if code := do(http.MethodGet); code != http.StatusOK {
		t.Fatalf("GET should never be limited, got %d", code)
	}
}

func TestRateLimitAllowsNilLimiter(t *testing.T) {
	router := gin.New()
	router.POST("/signup/", RateLimit(nil), func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})

	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, httptest.NewRequest(http.MethodPost, "/signup/", nil))
	if recorder.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", recorder.Code)
	}
}
