package main

import (
	"codeberg.org/boomline/server/api/rest/generate"
	"codeberg.org/boomline/server/api/rest/health"
	"codeberg.org/boomline/server/api/rest/history"
	"codeberg.org/boomline/server/api/rest/images"
	"codeberg.org/boomline/server/api/rest/share"
	"codeberg.org/boomline/server/api/rest/translate"
	"codeberg.org/boomline/server/api/rest/usage"
	"codeberg.org/boomline/server/internal/blob"
	"github.com/gin-gonic/gin"
)

// version reported by the health check, set at build time
var version = "dev"

// sets up all API routes
func RegisterRoutes(router *gin.Engine, server *Server) {
	svc := server.services

	router.GET("/health", health.Handler(version))
	router.GET("/metrics", gin.WrapH(svc.Metrics.Handler()))

	// uploads are served from disk when no bucket is configured
	if fs, ok := svc.Blobs.(*blob.FilesystemStore); ok {
		router.Static(blob.DefaultPublicPath, fs.Dir())
	}

	api := router.Group("/api")

	{
		api.GET("/ping", health.PingHandler)

		generate.RegisterRoutes(api, svc.Generator, svc.Media, svc.Metrics)
		images.RegisterRoutes(api, svc.Generator, svc.Media, svc.Metrics)
		translate.RegisterRoutes(api, svc.Translate, svc.Metrics)
		history.RegisterRoutes(api, svc.Ledger, svc.Mirror, svc.Metrics)
		usage.RegisterRoutes(api, svc.Generator)
		share.RegisterRoutes(api)
	}
}
