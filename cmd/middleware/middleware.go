package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/wb-go/wbf/ginext"
	"github.com/wb-go/wbf/zlog"
	"golang.org/x/time/rate"

	"campus360/internal/dto"
	"campus360/internal/model"
	"campus360/internal/repo"
)

// UserKey is the gin context key under which Identity stores the resolved user.
const UserKey = "currentUser"

func LoggingMiddleware() ginext.HandlerFunc {
	return func(c *ginext.Context) {
		start := time.Now()
		c.Next()
		zlog.Logger.Info().
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", c.Writer.Status()).
			Dur("duration", time.Since(start)).
			Msg("request handled")
	}
}

// Identity resolves the caller from the X-User-ID header and stores the user
// record in the request context. Requests without the header pass through
// anonymously; handlers that need a user reject them.
func Identity(store repo.Campus) ginext.HandlerFunc {
	return func(c *ginext.Context) {
		id := c.GetHeader("X-User-ID")
		if id == "" {
			c.Next()
			return
		}
		user, err := store.GetUserByID(c.Request.Context(), id)
		if err != nil {
			c.Next()
			return
		}
		c.Set(UserKey, user)
		c.Next()
	}
}

func RequireAdmin() ginext.HandlerFunc {
	return func(c *ginext.Context) {
		v, ok := c.Get(UserKey)
		if !ok {
			dto.UnauthorizedError(c, "Sign in required")
			c.Abort()
			return
		}
		user, ok := v.(*model.User)
		if !ok || !user.IsAdmin() {
			dto.ForbiddenError(c, "Admin access required")
			c.Abort()
			return
		}
		c.Next()
	}
}

type IPRateLimiter struct {
	visitors map[string]*rate.Limiter
	mu       sync.Mutex
	rps      rate.Limit
	burst    int
}

func NewIPRateLimiter(r rate.Limit, b int) *IPRateLimiter {
	return &IPRateLimiter{
		visitors: make(map[string]*rate.Limiter),
		rps:      r,
		burst:    b,
	}
}

func (rl *IPRateLimiter) GetLimiter(ip string) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	limiter, exists := rl.visitors[ip]
	if !exists {
		limiter = rate.NewLimiter(rl.rps, rl.burst)
		rl.visitors[ip] = limiter
	}
	return limiter
}

func RateLimit(limiter *IPRateLimiter) ginext.HandlerFunc {
	return func(c *ginext.Context) {
		if !limiter.GetLimiter(c.ClientIP()).Allow() {
			c.JSON(http.StatusTooManyRequests, dto.Response{
				Status: "error",
				Error:  &dto.Error{Code: dto.ServiceUnavailable, Desc: "Too many requests"},
			})
			c.Abort()
			return
		}
		c.Next()
	}
}
