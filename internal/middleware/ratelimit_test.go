package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestRateLimiter(t *testing.T) {
	gin.SetMode(gin.TestMode)

	rl := NewRateLimiter(2, 2) // 2 requests per second, burst of 2

	router := gin.New()
	router.Use(ErrorHandler(nil), RateLimit(rl))
	router.GET("/test", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	// First two requests should succeed
	for i := 0; i < 2; i++ {
		w := httptest.NewRecorder()
		req := httptest.NewRequest("GET", "/test", nil)
		router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusOK, w.Code)
	}

	// Third request should be rate limited
	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/test", nil)
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Contains(t, w.Body.String(), `"statusCode":429`)
}

func TestRateLimiterEvict(t *testing.T) {
	rl := NewRateLimiter(1, 1)
	rl.getLimiter("ip:1")
	rl.getLimiter("ip:2")

	assert.Equal(t, 0, rl.evict(time.Hour))

	rl.mu.Lock()
	rl.visitors["ip:1"].lastSeen = time.Now().Add(-2 * time.Hour)
	rl.mu.Unlock()

	assert.Equal(t, 1, rl.evict(time.Hour))
	assert.Len(t, rl.visitors, 1)
}

type fakeWindow struct {
	hits map[string]int64
	err  error
}

func (f *fakeWindow) CheckRateLimit(ctx context.Context, key string, limit int64, window time.Duration) (bool, error) {
	if f.err != nil {
		return false, f.err
	}
	f.hits[key]++
	return f.hits[key] <= limit, nil
}

func TestWindowRateLimit(t *testing.T) {
	gin.SetMode(gin.TestMode)

	store := &fakeWindow{hits: make(map[string]int64)}

	router := gin.New()
	router.Use(ErrorHandler(nil))
	router.POST("/login", WindowRateLimit(store, "login", 2, time.Minute, nil), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	for i := 0; i < 2; i++ {
		assert.Equal(t, http.StatusOK, serve(router, "POST", "/login").Code)
	}
	assert.Equal(t, http.StatusTooManyRequests, serve(router, "POST", "/login").Code)
	assert.Equal(t, int64(3), store.hits["login:192.0.2.1"])

	// Fail open when the store is down
	store.err = errors.New("redis down")
	assert.Equal(t, http.StatusOK, serve(router, "POST", "/login").Code)
}
