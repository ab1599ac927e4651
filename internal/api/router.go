// Package api assembles the gin engine: middleware chain, versioned routes
// and the swagger mount. Handlers stay thin; all feed logic lives in
// internal/service.
package api

import (
	sentrygin "github.com/getsentry/sentry-go/gin"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"golang.org/x/time/rate"

	"github.com/d60-Lab/social-feed/config"
	_ "github.com/d60-Lab/social-feed/docs"
	"github.com/d60-Lab/social-feed/internal/api/handler"
	"github.com/d60-Lab/social-feed/internal/api/middleware"
)

// NewRouter 组装路由
func NewRouter(cfg *config.Config, h *handler.Handler) *gin.Engine {
	if cfg.Server.Mode != "" {
		gin.SetMode(cfg.Server.Mode)
	}
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(gzip.Gzip(gzip.DefaultCompression))
	if cfg.Trace.Enabled {
		r.Use(otelgin.Middleware("social-feed"))
	}
	if cfg.Sentry.DSN != "" {
		r.Use(sentrygin.New(sentrygin.Options{Repanic: true}))
	}

	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	r.GET("/healthz", func(c *gin.Context) { c.JSON(200, gin.H{"status": "ok"}) })

	v1 := r.Group("/api/v1")
	{
		writes := v1.Group("")
		writes.Use(middleware.RateLimit(rate.Limit(50), 100))
		{
			writes.POST("/posts", h.CreatePost)
			writes.POST("/relations/follow", h.Follow)
			writes.POST("/relations/unfollow", h.Unfollow)
			writes.POST("/likes", h.Like)
			writes.DELETE("/likes", h.Unlike)
			writes.PUT("/users", h.UpsertUser)
		}

		v1.GET("/feed/:user_id", h.GetFeed)
		v1.GET("/likes/:post_id", h.GetCount)
		v1.GET("/users/:user_id", h.GetUser)
		v1.GET("/relations/:user_id/following", h.ListFollowing)
		v1.GET("/relations/:user_id/followers", h.ListFollowers)
		v1.GET("/relations/:user_id/fans", h.ListFans)
		v1.GET("/relations/:user_id/suggest", h.Suggest)
		v1.GET("/relations/:user_id/stats", h.RelationStats)
	}
	return r
}
