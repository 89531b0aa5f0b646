package usage

import (
	"codeberg.org/boomline/server/internal/generator"
	"github.com/gin-gonic/gin"
)

func RegisterRoutes(router *gin.RouterGroup, gen *generator.Generator) {
	router.GET("/usage", Handler(gen))
}
