package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

// httptest requests arrive from 192.0.2.1, so anonymous callers share this key.
const testLimitKey = "issue_limit:ip:192.0.2.1"

func newLimitedRouter(t *testing.T, rdb *redis.Client, limit int) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.POST("/issues", IssueRateLimiter(rdb, limit), func(c *gin.Context) {
		c.Status(http.StatusCreated)
	})
	return r
}

func postIssue(r *gin.Engine) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/issues", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestIssueRateLimiterCapsPerWindow(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	r := newLimitedRouter(t, rdb, 2)

	require.Equal(t, http.StatusCreated, postIssue(r).Code)
	require.Equal(t, http.StatusCreated, postIssue(r).Code)
	require.Equal(t, http.StatusTooManyRequests, postIssue(r).Code)

	// The counter carries the window expiry.
	require.True(t, mr.Exists(testLimitKey))
	require.Greater(t, mr.TTL(testLimitKey), time.Duration(0))
}

func TestIssueRateLimiterReArmsLostExpiry(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	r := newLimitedRouter(t, rdb, 10)

	// A counter left behind without an expiry must pick one up on the next
	// request instead of counting forever.
	require.NoError(t, mr.Set(testLimitKey, "3"))
	require.Zero(t, mr.TTL(testLimitKey))

	require.Equal(t, http.StatusCreated, postIssue(r).Code)
	require.Greater(t, mr.TTL(testLimitKey), time.Duration(0))
}

func TestIssueRateLimiterFailsOpen(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	mr.Close()
	r := newLimitedRouter(t, rdb, 1)

	// Redis being down must not take issue reporting down with it.
	for i := 0; i < 3; i++ {
		require.Equal(t, http.StatusCreated, postIssue(r).Code)
	}
}
