package api

import (
	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"pincode-backend/config"
	"pincode-backend/internal/mw"
)

// NewRouter creates and configures a new Gin router.
func NewRouter(cfg config.ServerConfig, deps Deps) *gin.Engine {
	r := gin.Default()

	// Initialize middleware
	rateLimiter := mw.RateLimiter(rate.Limit(cfg.RateLimitPerSec), cfg.RateLimitBurst, cfg.RequestIPHeader)
	responseCache := mw.NewResponseCache(cfg.CacheTTL())
	caching := responseCache.Middleware()

	handler := NewHandler(deps, responseCache, cfg.MaxUploadBytes)

	// API group
	api := r.Group("/api")
	api.Use(rateLimiter)
	{
		// Local postal directory
		api.POST("/validate_pincode", handler.ValidatePincode)
		api.POST("/postal_codes", handler.PutPostalCode)
		api.GET("/postal_codes/:pincode", caching, handler.GetPostalCode)

		// Live upstream lookups
		api.GET("/lookup/:pincode", caching, handler.Lookup)
		api.POST("/lookup/:pincode/match", handler.MatchRegion)

		// Address photo scans
		api.POST("/scans", handler.CreateScan)
		api.GET("/scans/:id", handler.GetScan)
		api.GET("/scans/:id/annotated", handler.GetAnnotatedScan)

		api.GET("/subscriptions", handler.GetSubscription)
		api.PUT("/subscriptions", handler.PutSubscription)
		api.DELETE("/subscriptions", handler.DeleteSubscription)
		api.GET("/vapid_public_key", handler.GetVAPIDPublicKey)
	}

	return r
}
