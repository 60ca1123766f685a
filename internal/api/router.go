package api

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/naturespot/naturespot/backend/internal/api/handlers"
	"github.com/naturespot/naturespot/backend/internal/auth"
	"github.com/naturespot/naturespot/backend/internal/logger"
	"github.com/naturespot/naturespot/backend/internal/metrics"
	"github.com/naturespot/naturespot/backend/internal/middleware"
	"github.com/naturespot/naturespot/backend/internal/services"
)

// Dependencies are the services the HTTP layer is built on.
type Dependencies struct {
	Verifier     auth.Verifier
	Translations *services.TranslationService
	Posts        *services.PostTranslator
	Store        *services.TranslationCacheService
	Sweeper      *services.CacheSweeper
	AdminKey     string
	CORSOrigins  []string
}

// NewRouter builds the gin engine with middleware and all routes.
func NewRouter(deps Dependencies) *gin.Engine {
	r := gin.New()

	r.Use(gin.CustomRecovery(func(c *gin.Context, recovered any) {
		logger.Log.Error("Panic recovered",
			zap.Any("panic", recovered),
			logger.WithRequestID(c.GetString(middleware.RequestIDKey)))
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}))
	r.Use(middleware.RequestID())
	r.Use(middleware.AccessLog())
	r.Use(metrics.HTTPMetrics())
	r.Use(cors.New(corsConfig(deps.CORSOrigins)))

	translationHandler := handlers.NewTranslationHandler(deps.Translations, deps.Posts)
	cacheHandler := handlers.NewCacheHandler(deps.Translations, deps.Sweeper)
	adminHandler := handlers.NewAdminHandler(deps.Store, deps.Sweeper, deps.Translations)

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":    "ok",
			"timestamp": time.Now().UTC(),
			"service":   "naturespot-translation",
		})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	r.GET("/languages", translationHandler.ListLanguages)

	// Authenticated translation
	translate := r.Group("/translate", handlers.TranslateRecovery(), middleware.RequireUser(deps.Verifier))
	{
		translate.POST("", translationHandler.Translate)
		translate.POST("/post", translationHandler.TranslatePost)
	}

	// Client-side cache management (unauthenticated)
	cache := r.Group("/translations/cache")
	{
		cache.GET("", cacheHandler.GetCached)
		cache.POST("", cacheHandler.PutCached)
		cache.DELETE("", cacheHandler.SweepExpired)
	}

	r.POST("/admin/verify", middleware.VerifyAdminKey(deps.AdminKey))
	r.GET("/admin/auth/status", middleware.AuthStatus(deps.AdminKey))

	admin := r.Group("/admin", middleware.AdminKeyAuth(deps.AdminKey))
	{
		admin.GET("/translations/stats", adminHandler.GetTranslationStats)
		admin.POST("/translations/sweep", adminHandler.TriggerSweep)
		admin.GET("/translations/sweeper", adminHandler.GetSweeperStatus)
	}

	return r
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.DefaultConfig()
	cfg.AllowMethods = []string{"GET", "POST", "DELETE", "OPTIONS"}
	cfg.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Authorization", "X-Request-ID"}
	cfg.ExposeHeaders = []string{"X-Request-ID"}
	cfg.MaxAge = 12 * time.Hour

	if len(origins) == 0 || (len(origins) == 1 && origins[0] == "*") {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = origins
	}
	return cfg
}
