package share

import "github.com/gin-gonic/gin"

func RegisterRoutes(router *gin.RouterGroup) {
	router.POST("/share", Handler)
	router.GET("/share/platforms", PlatformsHandler)
}
