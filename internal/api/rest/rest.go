package rest

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/remixhub/registry/internal/api/middleware"
)

// SetupRoutes configures all REST API routes.
// Write endpoints require authentication when auth is non-nil.
func SetupRoutes(router *gin.Engine, handler Handler, auth *middleware.Authenticator) {
	// Health and metrics endpoints (no auth, no version prefix)
	router.GET("/health", handler.HealthCheck)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	writes := []gin.HandlerFunc{}
	if auth != nil {
		writes = append(writes, middleware.Auth(auth))
	}
	protected := func(h gin.HandlerFunc) []gin.HandlerFunc {
		return append(append([]gin.HandlerFunc{}, writes...), h)
	}

	// API v1 routes
	v1 := router.Group("/api/v1")
	{
		// Design publishing
		v1.POST("/pins", protected(handler.PinDesign)...)
		v1.POST("/designs", protected(handler.PublishDesign)...)
		v1.POST("/remixes", protected(handler.RemixDesign)...)

		// Design listing (public read access)
		v1.GET("/designs", handler.ListDesigns)

		// Registration cache
		v1.POST("/registrations/anchor", protected(handler.AnchorRegistration)...)
		v1.POST("/registrations/lookup/batch", handler.BatchLookup)
		v1.GET("/registrations/:cid", handler.GetRegistration)

		// Content hasher and ledger checks (public read access)
		v1.GET("/hash/:cid", handler.GetCIDHash)
		v1.GET("/ip-assets/:ipId", handler.GetIPAsset)
	}
}
