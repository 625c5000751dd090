package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"campusrun/config"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

func TestGetLimiterUsesConfiguredRate(t *testing.T) {
	config.AppConfig.MaxRequestsPerMin = 3
	defer func() { config.AppConfig.MaxRequestsPerMin = 0 }()

	store := &rateLimiterStore{limiters: make(map[string]*rate.Limiter)}
	if got := store.getLimiter("10.0.0.1").Burst(); got != 3 {
		t.Errorf("burst = %d, want configured 3", got)
	}

	// Missing or broken config falls back to the default.
	config.AppConfig.MaxRequestsPerMin = 0
	if got := store.getLimiter("10.0.0.2").Burst(); got != 100 {
		t.Errorf("fallback burst = %d, want 100", got)
	}
}

func TestRateLimitMiddlewareRejectsOverflow(t *testing.T) {
	gin.SetMode(gin.TestMode)
	config.AppConfig.MaxRequestsPerMin = 2
	defer func() { config.AppConfig.MaxRequestsPerMin = 0 }()

	r := gin.New()
	r.Use(RateLimitMiddleware())
	r.GET("/ping", func(c *gin.Context) { c.Status(http.StatusOK) })

	var codes []int
	for i := 0; i < 3; i++ {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/ping", nil)
		req.Header.Set("X-Real-IP", "203.0.113.7")
		r.ServeHTTP(w, req)
		codes = append(codes, w.Code)
	}
	want := []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}
	for i := range want {
		if codes[i] != want[i] {
			t.Fatalf("codes = %v, want %v", codes, want)
		}
	}
}

func TestGetClientIPPrecedence(t *testing.T) {
	gin.SetMode(gin.TestMode)

	cases := []struct {
		name       string
		xff, xri   string
		remoteAddr string
		want       string
	}{
		{"forwarded-for wins", "198.51.100.4, 10.0.0.1", "192.0.2.9", "127.0.0.1:5000", "198.51.100.4"},
		{"real-ip next", "", "192.0.2.9", "127.0.0.1:5000", "192.0.2.9"},
		{"remote addr stripped", "", "", "127.0.0.1:5000", "127.0.0.1"},
		{"remote addr without port", "", "", "127.0.0.1", "127.0.0.1"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c, _ := gin.CreateTestContext(httptest.NewRecorder())
			c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
			c.Request.RemoteAddr = tc.remoteAddr
			if tc.xff != "" {
				c.Request.Header.Set("X-Forwarded-For", tc.xff)
			}
			if tc.xri != "" {
				c.Request.Header.Set("X-Real-IP", tc.xri)
			}
			if got := getClientIP(c); got != tc.want {
				t.Errorf("got %q, want %q", got, tc.want)
			}
		})
	}
}
