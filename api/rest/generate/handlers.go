package generate

import (
	"net/http"

	"codeberg.org/boomline/server/internal/auth"
	"codeberg.org/boomline/server/internal/content"
	"codeberg.org/boomline/server/internal/errors"
	"codeberg.org/boomline/server/internal/generator"
	"codeberg.org/boomline/server/internal/media"
	"codeberg.org/boomline/server/internal/metrics"
	"codeberg.org/boomline/server/internal/result"
	"github.com/gin-gonic/gin"
)

// Handler godoc
// @Summary Generate content
// @Description Generate text or an image for a content type, counted against the daily quota
// @Tags generate
// @Accept json
// @Produce json
// @Param request body Request true "Generation request"
// @Success 200 {object} Response
// @Failure 400 {object} errors.ErrorResponse
// @Failure 429 {object} errors.QuotaResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /api/generate [post]
func Handler(gen *generator.Generator, adapter *media.Adapter, m *metrics.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req Request
		if err := c.ShouldBindJSON(&req); err != nil {
			errors.BadRequest(c, "invalid request body", err)
			return
		}

		tag := req.contentType()
		if tag == "" {
			errors.Validation(c, errors.Invalid("contentType", "contentType is required"))
			return
		}

		family := string(content.Lookup(tag).Family())

		var image *content.ImageRef

		if req.hasImage() {
			ref, err := adapter.Ingest(c.Request.Context(), media.Source{URL: req.ImageURL, Base64: req.Base64})
			if err != nil {
				m.Generation(family, metrics.Outcome(err))
				errors.Respond(c, err)
				return
			}

			image = ref
		}

		out, err := gen.Generate(c.Request.Context(), generator.Request{
			Owner:       auth.GetOwner(c),
			Email:       auth.GetEmail(c),
			ContentType: tag,
			Prompt:      req.Prompt,
			Image:       image,
		})

		m.Generation(family, metrics.Outcome(err))

		if err != nil {
			errors.Respond(c, err)
			return
		}

		if out.Warning != "" {
			m.PersistenceWarning("save")
		}

		c.JSON(http.StatusOK, toResponse(out))
	}
}

func toResponse(out *generator.Output) Response {
	resp := Response{
		Kind:      out.Result.Kind,
		Remaining: out.Quota.Remaining,
		Limit:     out.Quota.Limit,
		Warning:   out.Warning,
	}

	if out.Entry != nil {
		resp.EntryID = out.Entry.ID
	}

	if out.Result.Kind == result.KindImage {
		resp.ImageURL = out.Result.URL
	} else {
		resp.Result = out.Result.Value
	}

	return resp
}

// lists the known content types
func ContentTypesHandler(c *gin.Context) {
	c.JSON(http.StatusOK, ContentTypesResponse{ContentTypes: content.Catalogue()})
}
