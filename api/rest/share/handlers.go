package share

import (
	"net/http"
	"strings"

	"codeberg.org/boomline/server/internal/errors"
	"codeberg.org/boomline/server/internal/share"
	"github.com/gin-gonic/gin"
)

// builds share links for generated text
func Handler(c *gin.Context) {
	var req Request
	if err := c.ShouldBindJSON(&req); err != nil {
		errors.BadRequest(c, "invalid request body", err)
		return
	}

	if req.Platform != "" {
		link, err := share.Link(req.Platform, req.Text)
		if err != nil {
			errors.Respond(c, err)
			return
		}

		c.JSON(http.StatusOK, Response{Links: map[string]string{strings.ToLower(strings.TrimSpace(req.Platform)): link}})

		return
	}

	links, err := share.Links(req.Text)
	if err != nil {
		errors.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, Response{Links: links})
}

func PlatformsHandler(c *gin.Context) {
	c.JSON(http.StatusOK, PlatformsResponse{Platforms: share.Platforms()})
}
