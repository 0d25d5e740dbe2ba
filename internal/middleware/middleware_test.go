package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/bajrangpainters/backend/internal/config"
	"github.com/bajrangpainters/backend/pkg/jwt"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newRedis(t *testing.T) (*redis.Client, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return client, mr
}

func do(r http.Handler, method, path string, header http.Header) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	for k, v := range header {
		req.Header[k] = v
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func okHandler(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"ok": true}) }

func TestLimitRejectsAfterLimit(t *testing.T) {
	client, mr := newRedis(t)
	log, _ := logtest.NewNullLogger()

	r := gin.New()
	r.Use(Limit(client, RateLimit{Prefix: "test", Requests: 2, Window: time.Minute}, log))
	r.GET("/", okHandler)

	first := do(r, http.MethodGet, "/", nil)
	assert.Equal(t, http.StatusOK, first.Code)
	assert.Equal(t, "2", first.Header().Get("X-RateLimit-Limit"))
	assert.Equal(t, "1", first.Header().Get("X-RateLimit-Remaining"))

	assert.Equal(t, http.StatusOK, do(r, http.MethodGet, "/", nil).Code)

	third := do(r, http.MethodGet, "/", nil)
	assert.Equal(t, http.StatusTooManyRequests, third.Code)
	assert.Equal(t, "0", third.Header().Get("X-RateLimit-Remaining"))
	assert.Equal(t, "60", third.Header().Get("Retry-After"))
	assert.Contains(t, third.Body.String(), "Too many requests")

	mr.FastForward(time.Minute + time.Second)
	assert.Equal(t, http.StatusOK, do(r, http.MethodGet, "/", nil).Code)
}

func TestLimitBypassWithoutRedis(t *testing.T) {
	log, _ := logtest.NewNullLogger()
	r := gin.New()
	r.Use(Limit(nil, RateLimit{Prefix: "test", Requests: 1, Window: time.Minute}, log))
	r.GET("/", okHandler)

	for i := 0; i < 3; i++ {
		assert.Equal(t, http.StatusOK, do(r, http.MethodGet, "/", nil).Code)
	}
}

func TestLimitBypassWhenRedisDown(t *testing.T) {
	client, mr := newRedis(t)
	mr.Close()
	log, hook := logtest.NewNullLogger()

	r := gin.New()
	r.Use(Limit(client, RateLimit{Prefix: "test", Requests: 1, Window: time.Minute}, log))
	r.GET("/", okHandler)

	assert.Equal(t, http.StatusOK, do(r, http.MethodGet, "/", nil).Code)
	assert.Equal(t, http.StatusOK, do(r, http.MethodGet, "/", nil).Code)
	require.NotNil(t, hook.LastEntry())
	assert.Equal(t, "Rate limiter unavailable, request allowed", hook.LastEntry().Message)
}

func TestContactRateLimiterUsesOwnBucket(t *testing.T) {
	client, mr := newRedis(t)
	log, _ := logtest.NewNullLogger()
	cfg := &config.Config{
		RateLimitRequests:        100,
		RateLimitDuration:        time.Minute,
		ContactRateLimitRequests: 1,
		ContactRateLimitDuration: 10 * time.Minute,
	}

	r := gin.New()
	r.Use(RateLimiter(client, cfg, log))
	r.POST("/contact", ContactRateLimiter(client, cfg, log), okHandler)

	assert.Equal(t, http.StatusOK, do(r, http.MethodPost, "/contact", nil).Code)
	assert.Equal(t, http.StatusTooManyRequests, do(r, http.MethodPost, "/contact", nil).Code)
	assert.True(t, mr.Exists("rate_limit:contact:192.0.2.1"))
	assert.Equal(t, 10*time.Minute, mr.TTL("rate_limit:contact:192.0.2.1"))
}

func TestCORS(t *testing.T) {
	cfg := &config.Config{
		Env:            "production",
		AllowedOrigins: []string{"https://bajrangpainters.com/"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Content-Type", "Authorization"},
	}
	r := gin.New()
	r.Use(CORS(cfg))
	r.GET("/", okHandler)

	w := do(r, http.MethodGet, "/", http.Header{"Origin": {"https://bajrangpainters.com"}})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "https://bajrangpainters.com", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "GET, POST, OPTIONS", w.Header().Get("Access-Control-Allow-Methods"))

	w = do(r, http.MethodGet, "/", http.Header{"Origin": {"https://evil.example"}})
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))

	w = do(r, http.MethodOptions, "/", http.Header{"Origin": {"https://bajrangpainters.com"}})
	assert.Equal(t, http.StatusNoContent, w.Code)
}

func TestCORSDevelopmentAllowsAnyOrigin(t *testing.T) {
	r := gin.New()
	r.Use(CORS(&config.Config{Env: "development"}))
	r.GET("/", okHandler)

	w := do(r, http.MethodGet, "/", http.Header{"Origin": {"http://localhost:5173"}})
	assert.Equal(t, "http://localhost:5173", w.Header().Get("Access-Control-Allow-Origin"))
}

type stubAuthenticator struct{}

func (stubAuthenticator) Authenticate(token string) (*jwt.Claims, error) {
	if token == "good" {
		return &jwt.Claims{Username: "owner", Role: "admin"}, nil
	}
	return nil, errors.New("bad token")
}

func TestAuth(t *testing.T) {
	r := gin.New()
	r.GET("/admin", Auth(stubAuthenticator{}), func(c *gin.Context) {
		c.String(http.StatusOK, c.GetString("admin"))
	})

	w := do(r, http.MethodGet, "/admin", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "Authorization header required")

	w = do(r, http.MethodGet, "/admin", http.Header{"Authorization": {"Bearer nope"}})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "Invalid or expired token")

	w = do(r, http.MethodGet, "/admin", http.Header{"Authorization": {"Bearer good"}})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "owner", w.Body.String())
}

func TestLoginGuardBlocksAfterFailures(t *testing.T) {
	client, mr := newRedis(t)
	log, _ := logtest.NewNullLogger()

	r := gin.New()
	r.POST("/login", LoginGuard(client, 3, 15*time.Minute, time.Hour, log), func(c *gin.Context) {
		if c.Query("password") == "right" {
			c.JSON(http.StatusOK, gin.H{"token": "t"})
			return
		}
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
	})

	for i := 0; i < 2; i++ {
		assert.Equal(t, http.StatusUnauthorized, do(r, http.MethodPost, "/login?password=wrong", nil).Code)
	}
	// Success resets the failure count.
	assert.Equal(t, http.StatusOK, do(r, http.MethodPost, "/login?password=right", nil).Code)
	assert.False(t, mr.Exists("login_failures:192.0.2.1"))

	for i := 0; i < 3; i++ {
		assert.Equal(t, http.StatusUnauthorized, do(r, http.MethodPost, "/login?password=wrong", nil).Code)
	}
	w := do(r, http.MethodPost, "/login?password=right", nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.True(t, strings.Contains(w.Body.String(), "Too many failed login attempts"))

	mr.FastForward(time.Hour + time.Second)
	assert.Equal(t, http.StatusOK, do(r, http.MethodPost, "/login?password=right", nil).Code)
}

func TestAllowedOrigin(t *testing.T) {
	log, hook := logtest.NewNullLogger()
	cfg := &config.Config{Env: "production", AllowedOrigins: []string{"https://bajrangpainters.com/"}}

	r := gin.New()
	r.POST("/", AllowedOrigin(cfg, log), okHandler)

	tests := []struct {
		name   string
		header http.Header
		want   int
	}{
		{"origin allowed", http.Header{"Origin": {"https://bajrangpainters.com"}}, http.StatusOK},
		{"referer allowed", http.Header{"Referer": {"https://bajrangpainters.com/contact?x=1"}}, http.StatusOK},
		{"foreign origin", http.Header{"Origin": {"https://evil.example"}}, http.StatusForbidden},
		{"foreign origin wins over referer", http.Header{"Origin": {"https://evil.example"}, "Referer": {"https://bajrangpainters.com/"}}, http.StatusForbidden},
		{"no origin", nil, http.StatusForbidden},
		{"relative referer", http.Header{"Referer": {"/contact"}}, http.StatusForbidden},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, do(r, http.MethodPost, "/", tt.header).Code)
		})
	}
	require.NotNil(t, hook.LastEntry())
	assert.Equal(t, "Rejected request from foreign origin", hook.LastEntry().Message)

	dev := gin.New()
	dev.POST("/", AllowedOrigin(&config.Config{Env: "development"}, log), okHandler)
	assert.Equal(t, http.StatusOK, do(dev, http.MethodPost, "/", nil).Code)
}
