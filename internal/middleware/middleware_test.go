package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/cabin-booking/internal/config"
	"github.com/iliyamo/cabin-booking/internal/utils"
)

const secret = "test-secret"

func protected(roles ...string) *echo.Echo {
	e := echo.New()
	g := e.Group("/admin", JWTAuth(secret), RequireRole(roles...))
	g.GET("/me", func(c echo.Context) error {
		s, _ := CurrentSession(c)
		return c.JSON(http.StatusOK, echo.Map{"id": s.UserID, "username": s.Username, "actor": Actor(c)})
	})
	return e
}

func get(e *echo.Echo, path, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestJWTAuthStoresSession(t *testing.T) {
	tok, err := utils.NewAccessToken(secret, 3, "marta", "staff", 10, time.Now())
	require.NoError(t, err)

	rec := get(protected("admin", "staff"), "/admin/me", tok.Token)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"id":3,"username":"marta","actor":"marta"}`, rec.Body.String())
}

func TestJWTAuthRejectsMissingAndBadTokens(t *testing.T) {
	e := protected("admin")
	assert.Equal(t, http.StatusUnauthorized, get(e, "/admin/me", "").Code)
	assert.Equal(t, http.StatusUnauthorized, get(e, "/admin/me", "garbage").Code)

	other, err := utils.NewAccessToken("other-secret", 3, "marta", "admin", 10, time.Now())
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, get(e, "/admin/me", other.Token).Code)
}

func TestRequireRole(t *testing.T) {
	tok, err := utils.NewAccessToken(secret, 3, "marta", "staff", 10, time.Now())
	require.NoError(t, err)

	rec := get(protected("admin"), "/admin/me", tok.Token)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestActorDefaultsToPublic(t *testing.T) {
	c := echo.New().NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())
	assert.Equal(t, "public", Actor(c))
}

func TestPayloadRoundTrip(t *testing.T) {
	hdr := http.Header{"Content-Type": {"application/json"}}
	bs, err := encodePayload(http.StatusOK, hdr, []byte(`{"ok":true}`))
	require.NoError(t, err)

	status, got, body, ok := decodePayload(bs)
	require.True(t, ok)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "application/json", got.Get("Content-Type"))
	assert.Equal(t, `{"ok":true}`, string(body))

	_, _, _, ok = decodePayload(bs[:5])
	assert.False(t, ok)
}

func TestCacheKeyDependsOnQuery(t *testing.T) {
	e := echo.New()
	key := func(target string) string {
		c := e.NewContext(httptest.NewRequest(http.MethodGet, target, nil), httptest.NewRecorder())
		c.SetPath("/v1/units")
		return cacheKey("cabins:cache", c)
	}
	assert.Equal(t, key("/v1/units?a=1"), key("/v1/units?a=1"))
	assert.NotEqual(t, key("/v1/units?a=1"), key("/v1/units?a=2"))
}

func TestDisabledMiddlewaresPassThrough(t *testing.T) {
	e := echo.New()
	e.Use(NewTokenBucket(config.RateLimitConfig{Enabled: true}, nil))
	e.Use(NewRedisCache(config.CacheConfig{Enabled: true}, nil))
	e.GET("/units", func(c echo.Context) error { return c.String(http.StatusOK, "ok") })

	rec := get(e, "/units", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, rec.Header().Get("X-Cache"))
}
