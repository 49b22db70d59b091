package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/iliyamo/daily-stamp/internal/config"
)

func newMiniRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return mr, rdb
}

type countingHandler struct{ calls int }

func (h *countingHandler) streak(c echo.Context) error {
	h.calls++
	return c.JSON(http.StatusOK, echo.Map{"streak": h.calls, "username": c.Param("username")})
}

func cacheCfg(maxBody int) config.CacheConfig {
	return config.CacheConfig{
		Enabled:      true,
		Methods:      map[string]bool{http.MethodGet: true},
		TTL:          30 * time.Second,
		Prefix:       "cache",
		MaxBodyBytes: maxBody,
	}
}

func getStreak(e *echo.Echo, path, bearer string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	return serve(e, req)
}

func TestCacheMissThenHit(t *testing.T) {
	mr, rdb := newMiniRedis(t)
	h := &countingHandler{}
	e := echo.New()
	e.GET("/v1/users/:username/streak", h.streak, NewRedisCache(cacheCfg(1<<20), rdb))

	first := getStreak(e, "/v1/users/alice/streak", "")
	require.Equal(t, http.StatusOK, first.Code)
	assert.Equal(t, "MISS", first.Header().Get("X-Cache"))

	second := getStreak(e, "/v1/users/alice/streak", "")
	require.Equal(t, http.StatusOK, second.Code)
	assert.Equal(t, "HIT", second.Header().Get("X-Cache"))
	assert.Equal(t, first.Body.String(), second.Body.String())
	assert.Equal(t, first.Header().Get(echo.HeaderContentType), second.Header().Get(echo.HeaderContentType))
	assert.Equal(t, 1, h.calls)

	// Another user has a separate entry.
	other := getStreak(e, "/v1/users/bob/streak", "")
	assert.Equal(t, "MISS", other.Header().Get("X-Cache"))
	assert.Equal(t, 2, h.calls)

	mr.FastForward(31 * time.Second)
	expired := getStreak(e, "/v1/users/alice/streak", "")
	assert.Equal(t, "MISS", expired.Header().Get("X-Cache"))
	assert.Equal(t, 3, h.calls)
}

func TestCacheBypassedWithAuthorization(t *testing.T) {
	mr, rdb := newMiniRedis(t)
	h := &countingHandler{}
	e := echo.New()
	e.GET("/v1/users/:username/stamps", h.streak, NewRedisCache(cacheCfg(1<<20), rdb))

	authed := getStreak(e, "/v1/users/alice/stamps", "token")
	assert.Equal(t, http.StatusOK, authed.Code)
	assert.Empty(t, authed.Header().Get("X-Cache"))
	assert.Empty(t, mr.Keys(), "authorized responses are not stored")

	anon := getStreak(e, "/v1/users/alice/stamps", "")
	assert.Equal(t, "MISS", anon.Header().Get("X-Cache"))
	require.Len(t, mr.Keys(), 1)

	// A cached anonymous entry is never served to an authorized request.
	authed = getStreak(e, "/v1/users/alice/stamps", "token")
	assert.Empty(t, authed.Header().Get("X-Cache"))
	assert.Equal(t, 3, h.calls)
}

func TestCacheSkipsOversizedAndFailedResponses(t *testing.T) {
	mr, rdb := newMiniRedis(t)
	e := echo.New()
	mw := NewRedisCache(cacheCfg(16), rdb)
	e.GET("/big", func(c echo.Context) error {
		return c.String(http.StatusOK, strings.Repeat("x", 64))
	}, mw)
	e.GET("/missing", func(c echo.Context) error {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "user_not_found"})
	}, mw)

	rec := serve(e, httptest.NewRequest(http.MethodGet, "/big", nil))
	assert.Equal(t, strings.Repeat("x", 64), rec.Body.String())
	serve(e, httptest.NewRequest(http.MethodGet, "/missing", nil))
	assert.Empty(t, mr.Keys())
}

func TestTokenBucketRedis(t *testing.T) {
	mr, rdb := newMiniRedis(t)
	cfg := config.RateLimitConfig{
		Enabled:        true,
		Capacity:       2,
		RefillTokens:   1,
		RefillInterval: time.Hour,
		TTL:            5 * time.Hour,
		KeyStrategy:    "ip_route",
		Prefix:         "rl",
	}
	e := echo.New()
	e.POST("/v1/stamps", func(c echo.Context) error { return c.NoContent(http.StatusCreated) },
		NewTokenBucket(cfg, rdb, zap.NewNop()))

	hit := func() *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/v1/stamps", nil)
		req.RemoteAddr = "10.0.0.1:5555"
		return serve(e, req)
	}

	assert.Equal(t, http.StatusCreated, hit().Code)
	second := hit()
	assert.Equal(t, http.StatusCreated, second.Code)
	assert.Equal(t, "0", second.Header().Get("X-RateLimit-Remaining"))

	blocked := hit()
	assert.Equal(t, http.StatusTooManyRequests, blocked.Code)
	assert.NotEmpty(t, blocked.Header().Get("Retry-After"))

	key := "rl:ip:10.0.0.1:route:POST /v1/stamps"
	assert.True(t, mr.Exists(key), "bucket state lives in redis")
	assert.Positive(t, mr.TTL(key))
}
