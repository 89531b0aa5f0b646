package images

import (
	"io"
	"mime/multipart"
	"net/http"
	"strings"

	"codeberg.org/boomline/server/internal/auth"
	"codeberg.org/boomline/server/internal/content"
	"codeberg.org/boomline/server/internal/errors"
	"codeberg.org/boomline/server/internal/generator"
	"codeberg.org/boomline/server/internal/media"
	"codeberg.org/boomline/server/internal/metrics"
	"github.com/gin-gonic/gin"
)

// multipart framing allowance on top of the image limit
const formOverhead = 1 << 20

func isMultipart(c *gin.Context) bool {
	return strings.HasPrefix(c.ContentType(), "multipart/form-data")
}

func limitBody(c *gin.Context, adapter *media.Adapter) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, adapter.MaxBytes()+formOverhead)
}

func openFormFile(c *gin.Context) (multipart.File, error) {
	header, err := c.FormFile("file")
	if err != nil {
		return nil, errors.Invalid("file", "multipart field \"file\" is required")
	}

	f, err := header.Open()
	if err != nil {
		return nil, errors.Invalid("file", "failed to read upload")
	}

	return f, nil
}

// captions an image given by URL, base64 or multipart upload
func AnalyzeHandler(gen *generator.Generator, adapter *media.Adapter, m *metrics.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		family := string(content.FamilyCaption)

		var (
			image  *content.ImageRef
			prompt string
		)

		if isMultipart(c) {
			limitBody(c, adapter)

			f, err := openFormFile(c)
			if err != nil {
				m.Generation(family, metrics.Outcome(err))
				errors.Respond(c, err)
				return
			}
			defer f.Close() //nolint:errcheck

			// the temp copy lives until the caption call is done
			staged, err := adapter.Stage(ctx, f)
			if err != nil {
				m.Upload(metrics.Outcome(err))
				m.Generation(family, metrics.Outcome(err))
				errors.Respond(c, err)
				return
			}
			defer staged.Close() //nolint:errcheck

			m.Upload(metrics.OutcomeSuccess)

			image = &staged.Ref
			prompt = c.PostForm("prompt")
		} else {
			var req AnalyzeRequest
			if err := c.ShouldBindJSON(&req); err != nil {
				errors.BadRequest(c, "invalid request body", err)
				return
			}

			ref, err := adapter.Ingest(ctx, media.Source{URL: req.ImageURL, Base64: req.Base64})
			if err != nil {
				m.Generation(family, metrics.Outcome(err))
				errors.Respond(c, err)
				return
			}

			image = ref
			prompt = req.Prompt
		}

		out, err := gen.Generate(ctx, generator.Request{
			Owner:       auth.GetOwner(c),
			Email:       auth.GetEmail(c),
			ContentType: content.TagImageCaption,
			Prompt:      prompt,
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

		resp := AnalyzeResponse{
			Caption:   out.Result.Value,
			Result:    out.Result.Value,
			Remaining: out.Quota.Remaining,
			Warning:   out.Warning,
		}

		if !image.IsInline() {
			resp.ImageURL = image.URL
		}

		c.JSON(http.StatusOK, resp)
	}
}

// stores an uploaded image and returns its public URL
func UploadHandler(adapter *media.Adapter, m *metrics.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		limitBody(c, adapter)

		var body io.Reader = c.Request.Body

		if isMultipart(c) {
			f, err := openFormFile(c)
			if err != nil {
				m.Upload(metrics.Outcome(err))
				errors.Respond(c, err)
				return
			}
			defer f.Close() //nolint:errcheck

			body = f
		}

		url, err := adapter.Upload(c.Request.Context(), body)

		m.Upload(metrics.Outcome(err))

		if err != nil {
			errors.Respond(c, err)
			return
		}

		c.JSON(http.StatusOK, UploadResponse{URL: url})
	}
}
