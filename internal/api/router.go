package api

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// NewRouter wires the dispatch engine's HTTP surface. The dispatch route
// alone is rate limited: pause/resume/retry are operator actions that must
// keep working when a clinic floods the engine with batches.
func NewRouter(h *Handler, rdb *redis.Client, ratePerMinute int, log *logrus.Logger) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(cors.Default())

	router.GET("/v1/health", h.Health)

	v1 := router.Group("/v1")
	{
		v1.POST("/dispatch", rateLimiter(rdb, ratePerMinute, log), h.Dispatch)

		v1.GET("/sessions/:id", h.GetSession)
		v1.POST("/sessions/:id/pause", h.PauseSession)
		v1.POST("/sessions/:id/resume", h.ResumeSession)
		v1.POST("/sessions/:id/cancel", h.CancelSession)
		v1.GET("/sessions/:id/failures", h.SessionFailures)
		v1.POST("/sessions/:id/retry", h.RetrySession)

		v1.GET("/queues/:id/sessions", h.ListQueueSessions)

		v1.POST("/messages/:id/pause", h.PauseMessage)
		v1.POST("/messages/:id/resume", h.ResumeMessage)

		v1.POST("/channels/:moderatorId/pause", h.PauseChannel)
		v1.POST("/channels/:moderatorId/resume", h.ResumeChannel)
	}

	return router
}

// rateLimiter caps dispatch calls per client IP using a redis counter.
// A missing redis client disables limiting rather than blocking dispatch.
func rateLimiter(rdb *redis.Client, perMinute int, log *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if rdb == nil {
			c.Next()
			return
		}

		ctx := c.Request.Context()
		key := "dispatch:rate:" + c.ClientIP()

		count, err := rdb.Incr(ctx, key).Result()
		if err != nil {
			log.Warnf("[RATE] - Could not increment rate limit key: %v", err)
			c.Next()
			return
		}
		if count == 1 {
			rdb.Expire(ctx, key, time.Minute)
		}
		if count > int64(perMinute) {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"success": false, "error": "RATE_LIMITED", "message": "too many dispatch requests"})
			return
		}

		c.Next()
	}
}
