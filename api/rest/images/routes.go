package images

import (
	"codeberg.org/boomline/server/internal/generator"
	"codeberg.org/boomline/server/internal/media"
	"codeberg.org/boomline/server/internal/metrics"
	"github.com/gin-gonic/gin"
)

// registers image captioning and upload routes
func RegisterRoutes(router *gin.RouterGroup, gen *generator.Generator, adapter *media.Adapter, m *metrics.Metrics) {
	router.POST("/image-analyze", AnalyzeHandler(gen, adapter, m))
	router.POST("/blob-upload", UploadHandler(adapter, m))
}
