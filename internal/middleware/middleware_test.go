package middleware

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BruksfildServices01/barber-agenda/internal/config"
	"github.com/BruksfildServices01/barber-agenda/internal/logging"
	"github.com/BruksfildServices01/barber-agenda/internal/permissions"
)

const testSecret = "test-secret"

func init() {
	gin.SetMode(gin.TestMode)
}

func TestParseToken_StaffAndClient(t *testing.T) {
	staff := Claims{UserID: uuid.New(), ShopID: uuid.New(), Role: permissions.RoleReception}
	tok, err := SignToken(testSecret, staff)
	require.NoError(t, err)

	got, err := ParseToken(testSecret, tok)
	require.NoError(t, err)
	assert.Equal(t, staff.UserID, got.UserID)
	assert.Equal(t, staff.ShopID, got.ShopID)
	assert.Equal(t, permissions.RoleReception, got.Role)
	assert.Nil(t, got.ClientID)

	clientID := uuid.New()
	tok, err = SignToken(testSecret, Claims{UserID: uuid.New(), ShopID: uuid.New(), Role: permissions.RoleClient, ClientID: &clientID})
	require.NoError(t, err)

	got, err = ParseToken(testSecret, tok)
	require.NoError(t, err)
	require.NotNil(t, got.ClientID)
	assert.Equal(t, clientID, *got.ClientID)
}

func TestParseToken_Rejects(t *testing.T) {
	tok, err := SignToken(testSecret, Claims{UserID: uuid.New(), ShopID: uuid.New(), Role: permissions.RoleAdmin})
	require.NoError(t, err)

	_, err = ParseToken("other-secret", tok)
	assert.Error(t, err)

	// client role without a client id
	tok, err = SignToken(testSecret, Claims{UserID: uuid.New(), ShopID: uuid.New(), Role: permissions.RoleClient})
	require.NoError(t, err)
	_, err = ParseToken(testSecret, tok)
	assert.Error(t, err)

	tok, err = SignToken(testSecret, Claims{UserID: uuid.New(), ShopID: uuid.New(), Role: "owner"})
	require.NoError(t, err)
	_, err = ParseToken(testSecret, tok)
	assert.Error(t, err)
}

func protectedRouter(capability permissions.Capability) *gin.Engine {
	r := gin.New()
	cfg := &config.Config{JWTSecret: testSecret}
	r.GET("/x", AuthMiddleware(cfg), RequireCapability(capability), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"shop": ShopID(c).String()})
	})
	return r
}

func TestAuthAndCapability(t *testing.T) {
	shopID := uuid.New()
	reception, err := SignToken(testSecret, Claims{UserID: uuid.New(), ShopID: shopID, Role: permissions.RoleReception})
	require.NoError(t, err)

	cases := []struct {
		name   string
		header string
		cap    permissions.Capability
		want   int
	}{
		{"missing header", "", permissions.ViewAgenda, http.StatusUnauthorized},
		{"bad scheme", "Basic abc", permissions.ViewAgenda, http.StatusUnauthorized},
		{"garbage token", "Bearer abc", permissions.ViewAgenda, http.StatusUnauthorized},
		{"allowed", "Bearer " + reception, permissions.ViewAgenda, http.StatusOK},
		{"forbidden", "Bearer " + reception, permissions.ManageMembers, http.StatusForbidden},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := protectedRouter(tc.cap)
			req := httptest.NewRequest(http.MethodGet, "/x", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)
			assert.Equal(t, tc.want, w.Code)
			if tc.want == http.StatusOK {
				assert.Contains(t, w.Body.String(), shopID.String())
			}
		})
	}
}

func TestMemoryRateLimiter_Window(t *testing.T) {
	rl := NewMemoryRateLimiter(2, time.Minute)
	now := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)
	rl.now = func() time.Time { return now }

	ctx := context.Background()
	for i := 0; i < 2; i++ {
		ok, err := rl.Allow(ctx, "k")
		require.NoError(t, err)
		assert.True(t, ok)
	}
	ok, _ := rl.Allow(ctx, "k")
	assert.False(t, ok)

	ok, _ = rl.Allow(ctx, "other")
	assert.True(t, ok)

	now = now.Add(61 * time.Second)
	ok, _ = rl.Allow(ctx, "k")
	assert.True(t, ok)
}

func TestRedisRateLimiter_Window(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	rl := NewRedisRateLimiter(rdb, 3, time.Minute, "test")
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		ok, err := rl.Allow(ctx, "1.2.3.4")
		require.NoError(t, err)
		assert.True(t, ok)
	}
	ok, err := rl.Allow(ctx, "1.2.3.4")
	require.NoError(t, err)
	assert.False(t, ok)

	assert.True(t, mr.Exists("test:1.2.3.4"))

	mr.FastForward(2 * time.Minute)
	ok, err = rl.Allow(ctx, "1.2.3.4")
	require.NoError(t, err)
	assert.True(t, ok)
}

type failingLimiter struct{}

func (failingLimiter) Allow(context.Context, string) (bool, error) {
	return false, assert.AnError
}

func limitedRouter(l Limiter) *gin.Engine {
	r := gin.New()
	r.POST("/book", RateLimit(l, logging.NewWithWriter("error", &bytes.Buffer{})), func(c *gin.Context) {
		c.Status(http.StatusCreated)
	})
	return r
}

func TestRateLimitMiddleware(t *testing.T) {
	r := limitedRouter(NewMemoryRateLimiter(1, time.Minute))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/book", nil))
	assert.Equal(t, http.StatusCreated, w.Code)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/book", nil))
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Contains(t, w.Body.String(), "rate_limited")
}

func TestRateLimitMiddleware_FailsOpen(t *testing.T) {
	r := limitedRouter(failingLimiter{})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/book", nil))
	assert.Equal(t, http.StatusCreated, w.Code)
}

func TestRequestIDAndAccessLog(t *testing.T) {
	var buf bytes.Buffer
	r := gin.New()
	r.Use(RequestID(), AccessLog(logging.NewWithWriter("info", &buf)))
	r.GET("/ping", func(c *gin.Context) { c.String(http.StatusOK, "pong") })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))
	id := w.Header().Get(RequestIDHeader)
	assert.NotEmpty(t, id)
	assert.Contains(t, buf.String(), id)
	assert.Contains(t, buf.String(), `"path":"/ping"`)

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set(RequestIDHeader, "abc-123")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, "abc-123", w.Header().Get(RequestIDHeader))
}

func TestCORS_Allowlist(t *testing.T) {
	r := gin.New()
	r.Use(CORSMiddleware([]string{"https://agenda.barbearia.com.br/"}))
	r.GET("/x", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set("Origin", "https://agenda.barbearia.com.br")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, "https://agenda.barbearia.com.br", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, w.Header().Get("Access-Control-Allow-Headers"), "Idempotency-Key")

	req = httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set("Origin", "https://evil.example")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
}

func TestCORS_PreflightAnyOrigin(t *testing.T) {
	r := gin.New()
	r.Use(CORSMiddleware(nil))
	r.POST("/x", func(c *gin.Context) { c.Status(http.StatusCreated) })

	req := httptest.NewRequest(http.MethodOptions, "/x", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "http://localhost:5173", w.Header().Get("Access-Control-Allow-Origin"))
}
