package generate

import (
	"codeberg.org/boomline/server/internal/generator"
	"codeberg.org/boomline/server/internal/media"
	"codeberg.org/boomline/server/internal/metrics"
	"github.com/gin-gonic/gin"
)

// registers content generation routes
func RegisterRoutes(router *gin.RouterGroup, gen *generator.Generator, adapter *media.Adapter, m *metrics.Metrics) {
	router.POST("/generate", Handler(gen, adapter, m))
	router.GET("/content-types", ContentTypesHandler)
}
