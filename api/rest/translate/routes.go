package translate

import (
	"codeberg.org/boomline/server/internal/metrics"
	"codeberg.org/boomline/server/internal/translate"
	"github.com/gin-gonic/gin"
)

func RegisterRoutes(router *gin.RouterGroup, relay *translate.Relay, m *metrics.Metrics) {
	router.POST("/translate", Handler(relay, m))
}
