package translate

import (
	"net/http"

	"codeberg.org/boomline/server/internal/errors"
	"codeberg.org/boomline/server/internal/metrics"
	"codeberg.org/boomline/server/internal/translate"
	"github.com/gin-gonic/gin"
)

// Handler translates generated text into the requested language
// POST /api/translate
//
//	@Summary	Translate generated content
//	@Tags		translate
//	@Accept		json
//	@Produce	json
//	@Param		request	body		Request	true	"text and target language"
//	@Success	200		{object}	Response
//	@Failure	400		{object}	errors.ErrorResponse
//	@Failure	502		{object}	errors.ErrorResponse
//	@Router		/api/translate [post]
func Handler(relay *translate.Relay, m *metrics.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req Request
		if err := c.ShouldBindJSON(&req); err != nil {
			errors.BadRequest(c, "invalid request body", err)
			return
		}

		out, err := relay.Translate(c.Request.Context(), req.Text, req.target())

		m.Translation(metrics.Outcome(err))

		if err != nil {
			errors.Respond(c, err)
			return
		}

		c.JSON(http.StatusOK, Response{
			Translated: out.Text,
			Language:   out.Language,
			Skipped:    out.Skipped,
		})
	}
}
