package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
)

func TestRateLimitAllowsWithinBurst(t *testing.T) {
	e := echo.New()
	e.Use(NewRateLimiter().RateLimit())
	e.GET("/ping", func(c echo.Context) error {
		return c.String(http.StatusOK, "pong")
	})

	for i := 0; i < 5; i++ {
		req := httptest.NewRequest(http.MethodGet, "/ping", nil)
		req.RemoteAddr = "10.0.0.1:1234"
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code, "request %d inside burst", i+1)
	}
}

func TestRateLimitBlocksOverBurstAndKeepsBlocking(t *testing.T) {
	e := echo.New()
	e.Use(NewRateLimiter().RateLimit())
	e.POST("/api/auth/send-otp", func(c echo.Context) error {
		return c.String(http.StatusOK, "sent")
	})

	hit := func(ip string) int {
		req := httptest.NewRequest(http.MethodPost, "/api/auth/send-otp", nil)
		req.RemoteAddr = ip + ":1234"
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)
		return rec.Code
	}

	// The strict OTP budget is burst 5; the 6th trips the block
	for i := 0; i < 5; i++ {
		assert.Equal(t, http.StatusOK, hit("10.0.0.2"))
	}
	assert.Equal(t, http.StatusTooManyRequests, hit("10.0.0.2"))

	// Once blocked, the IP stays blocked for the cool-down
	assert.Equal(t, http.StatusTooManyRequests, hit("10.0.0.2"))

	// Other IPs keep their own budget
	assert.Equal(t, http.StatusOK, hit("10.0.0.3"))
}

func TestRateLimitStrictBudgetNotDilutedByOtherEndpoints(t *testing.T) {
	e := echo.New()
	e.Use(NewRateLimiter().RateLimit())
	e.GET("/ping", func(c echo.Context) error {
		return c.String(http.StatusOK, "pong")
	})
	e.POST("/api/auth/send-otp", func(c echo.Context) error {
		return c.String(http.StatusOK, "sent")
	})

	hit := func(method, path string) int {
		req := httptest.NewRequest(method, path, nil)
		req.RemoteAddr = "10.0.0.4:1234"
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)
		return rec.Code
	}

	// Touching a default-budget endpoint first must not hand its larger
	// bucket to the strict OTP endpoint
	assert.Equal(t, http.StatusOK, hit(http.MethodGet, "/ping"))

	for i := 0; i < 5; i++ {
		assert.Equal(t, http.StatusOK, hit(http.MethodPost, "/api/auth/send-otp"), "request %d inside strict burst", i+1)
	}
	assert.Equal(t, http.StatusTooManyRequests, hit(http.MethodPost, "/api/auth/send-otp"))
}
