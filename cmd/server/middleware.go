package main

import (
	"slices"
	"time"

	"codeberg.org/boomline/server/internal/auth"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// allows the web client to call the API from its own origin
func CORSMiddleware(origins []string) gin.HandlerFunc {
	cfg := cors.Config{
		AllowMethods:  []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Authorization", auth.ClientIDHeader},
		ExposeHeaders: []string{"Content-Disposition", "X-RateLimit-Limit", "X-RateLimit-Remaining", "X-RateLimit-Reset"},
		MaxAge:        12 * time.Hour,
	}

	// credentials cannot be combined with a wildcard origin
	if len(origins) == 0 || slices.Contains(origins, "*") {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = origins
		cfg.AllowCredentials = true
	}

	return cors.New(cfg)
}
