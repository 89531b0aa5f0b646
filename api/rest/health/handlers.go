package health

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

const service = "boomline"

// returns the server health status
func Handler(version string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, Response{
			Status:  "healthy",
			Service: service,
			Version: version,
		})
	}
}

// responds with pong for testing
func PingHandler(c *gin.Context) {
	c.JSON(http.StatusOK, PingResponse{Message: "pong"})
}
