package history

import (
	"bytes"
	stderrors "errors"
	"net/http"
	"strings"

	"codeberg.org/boomline/server/api/rest/pagination"
	"codeberg.org/boomline/server/internal/auth"
	"codeberg.org/boomline/server/internal/content"
	"codeberg.org/boomline/server/internal/errors"
	"codeberg.org/boomline/server/internal/export"
	"codeberg.org/boomline/server/internal/ledger"
	"codeberg.org/boomline/server/internal/logger"
	"codeberg.org/boomline/server/internal/metrics"
	"codeberg.org/boomline/server/internal/mirror"
	"codeberg.org/boomline/server/internal/result"
	"github.com/gin-gonic/gin"
)

const (
	defaultPageSize = 50
	maxListLimit    = 500
)

// stores a result the caller already has, without counting it against the quota
func SaveHandler(l *ledger.Ledger, mr mirror.Mirror, m *metrics.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req SaveRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			errors.BadRequest(c, "invalid request body", err)
			return
		}

		if strings.TrimSpace(req.Result) == "" {
			errors.Validation(c, errors.Invalid("result", "result is required"))
			return
		}

		res := result.Text(req.Result)
		if req.ContentType == content.TagGenerateImage {
			res = result.Image(strings.TrimSpace(req.Result))
		}

		owner := auth.GetOwner(c)

		entry, err := l.Save(c.Request.Context(), owner, ledger.Entry{
			ContentType: req.ContentType,
			Prompt:      req.Prompt,
			Result:      res,
		})
		if err != nil {
			errors.Respond(c, err)
			return
		}

		resp := SaveResponse{Message: "History saved successfully", ID: entry.ID}

		if err := mr.Add(c.Request.Context(), owner, entry); err != nil {
			logger.WarnErr(err, "failed to mirror saved entry", "owner", owner)
			m.PersistenceWarning("mirror")

			resp.Warning = "saved locally but not to the hosted history"
		}

		c.JSON(http.StatusOK, resp)
	}
}

// returns the caller's history, newest first
func ListHandler(l *ledger.Ledger) gin.HandlerFunc {
	return func(c *gin.Context) {
		params, paged, err := pagination.FromQuery(c, defaultPageSize, maxListLimit)
		if err != nil {
			errors.Respond(c, err)
			return
		}

		entries, err := l.History(c.Request.Context(), auth.GetOwner(c), 0)
		if err != nil {
			errors.Respond(c, err)
			return
		}

		if !paged {
			c.JSON(http.StatusOK, ListResponse{Entries: entries})
			return
		}

		meta := pagination.NewMeta(params, len(entries))

		c.JSON(http.StatusOK, ListResponse{Entries: pagination.Slice(entries, params), Pagination: &meta})
	}
}

// clears local history first, then the hosted copy; usage is kept
func ClearHandler(l *ledger.Ledger, mr mirror.Mirror) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		owner := auth.GetOwner(c)

		deleted, err := l.Clear(ctx, owner)
		if err != nil {
			errors.Respond(c, err)
			return
		}

		if _, err := mr.Clear(ctx, owner); err != nil {
			var partial *mirror.PartialClearError
			if stderrors.As(err, &partial) {
				logger.WarnErr(err, "hosted history partially cleared", "owner", owner)

				c.JSON(http.StatusInternalServerError, PartialClearResponse{
					Error:   errors.CodePersistenceError,
					Message: partial.Error(),
					Deleted: partial.Deleted,
					Failed:  partial.Failed,
				})

				return
			}

			errors.Respond(c, &errors.PersistenceError{Op: "clear", Err: err})

			return
		}

		c.JSON(http.StatusOK, ClearResponse{Message: "History cleared", Deleted: deleted})
	}
}

// downloads the caller's history as a PDF
func ExportHandler(l *ledger.Ledger) gin.HandlerFunc {
	return func(c *gin.Context) {
		entries, err := l.History(c.Request.Context(), auth.GetOwner(c), 0)
		if err != nil {
			errors.Respond(c, err)
			return
		}

		var buf bytes.Buffer
		if err := export.WritePDF(&buf, entries); err != nil {
			errors.InternalError(c, "failed to export history", err)
			return
		}

		c.Header("Content-Disposition", "attachment; filename=history.pdf")
		c.Data(http.StatusOK, "application/pdf", buf.Bytes())
	}
}
