package history

import (
	"codeberg.org/boomline/server/internal/ledger"
	"codeberg.org/boomline/server/internal/metrics"
	"codeberg.org/boomline/server/internal/mirror"
	"github.com/gin-gonic/gin"
)

// registers history routes
func RegisterRoutes(router *gin.RouterGroup, l *ledger.Ledger, mr mirror.Mirror, m *metrics.Metrics) {
	if mr == nil {
		mr = mirror.Nop{}
	}

	router.POST("/save-history", SaveHandler(l, mr, m))
	router.POST("/clear-history", ClearHandler(l, mr))
	router.GET("/history", ListHandler(l))
	router.GET("/history/export", ExportHandler(l))
}
