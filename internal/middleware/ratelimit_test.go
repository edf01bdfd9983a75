package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// newLimitedHandler wires a trivial 200 handler behind the rate limiter,
// backed by a fresh miniredis. Callers own closing the returned server.
func newLimitedHandler(t *testing.T, requestsPerWindow int, keyPrefix string) (http.Handler, *miniredis.Miniredis, *redis.Client) {
	t.Helper()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("Failed to start miniredis: %v", err)
	}

	redisClient := redis.NewClient(&redis.Options{
		Addr: mr.Addr(),
	})

	middleware := RateLimitMiddleware(redisClient, RateLimitConfig{
		RequestsPerWindow: requestsPerWindow,
		Window:            1 * time.Second,
		KeyPrefix:         keyPrefix,
	}, zap.NewNop())

	handler := middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	return handler, mr, redisClient
}

func doRequest(handler http.Handler, clientIP string) *httptest.ResponseRecorder {
	req := httptest.NewRequest("GET", "/api/items", nil)
	req.RemoteAddr = clientIP
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	return w
}

// A client gets exactly its window's worth of requests, then 429s.
func TestProperty_RateLimitingBlocksExcessiveRequests(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("excessive requests are blocked with 429", prop.ForAll(
		func(requestsPerWindow int, excessRequests int) bool {
			handler, mr, redisClient := newLimitedHandler(t, requestsPerWindow, "test_rate_limit")
			defer mr.Close()
			defer redisClient.Close()

			successCount := 0
			blockedCount := 0
			for i := 0; i < requestsPerWindow+excessRequests; i++ {
				switch doRequest(handler, "192.168.1.100").Code {
				case http.StatusOK:
					successCount++
				case http.StatusTooManyRequests:
					blockedCount++
				}
			}

			return successCount == requestsPerWindow && blockedCount == excessRequests
		},
		gen.IntRange(5, 20),
		gen.IntRange(1, 10),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

// Every allowed response advertises the window via the X-RateLimit headers.
func TestProperty_RateLimitHeadersAreSet(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("rate limit headers are present in responses", prop.ForAll(
		func(requestsPerWindow int) bool {
			handler, mr, redisClient := newLimitedHandler(t, requestsPerWindow, "test_rate_limit_headers")
			defer mr.Close()
			defer redisClient.Close()

			w := doRequest(handler, "192.168.1.101")

			return w.Header().Get("X-RateLimit-Limit") != "" &&
				w.Header().Get("X-RateLimit-Remaining") != ""
		},
		gen.IntRange(5, 50),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

// Losing Redis must degrade to unthrottled service, not to refusing
// shoppers: the limiter fails open when the counter is unreachable.
func TestRateLimitFailsOpenWhenRedisDown(t *testing.T) {
	handler, mr, redisClient := newLimitedHandler(t, 2, "test_rate_limit_outage")
	defer redisClient.Close()

	mr.Close()

	for i := 0; i < 5; i++ {
		if code := doRequest(handler, "192.168.1.102").Code; code != http.StatusOK {
			t.Fatalf("request %d during outage: status = %d, want 200", i+1, code)
		}
	}
}
