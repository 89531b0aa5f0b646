package errors

import (
	"errors"
	"net/http"

	"codeberg.org/boomline/server/internal/logger"
	"github.com/gin-gonic/gin"
)

// Error Handling Guidelines:
//
// For HTTP REST handlers:
//   - Use errors.Respond() for errors returned by services; it picks the status
//     from the error type and logs server-side failures once
//   - Use errors.BadRequest(), errors.Validation(), etc. for errors detected in the handler
//   - Use logger.ErrorErr() only for non-critical errors where processing continues
//
// For services/internal packages:
//   - Return wrapped errors with context using fmt.Errorf("context: %w", err)
//     or one of the typed errors in types.go
//   - Do not log errors in non-handler code (avoid double logging)

// returns a 400 bad request error
func BadRequest(c *gin.Context, message string, err error) {
	if message == "" {
		message = "invalid request"
	}

	response := ErrorResponse{
		Error:   CodeBadRequest,
		Message: message,
	}

	// add details if error provided
	if err != nil {
		response.Details = sanitizeError(err)
	}

	c.JSON(http.StatusBadRequest, response)
}

// returns a 400 bad request error for validation failures
func Validation(c *gin.Context, err error) {
	message := "validation failed"

	var v *ValidationError
	if errors.As(err, &v) {
		message = v.Error()
	}

	c.JSON(http.StatusBadRequest, ErrorResponse{
		Error:   CodeValidationError,
		Message: message,
	})
}

// returns a 404 not found error
func NotFound(c *gin.Context, resource string) {
	message := "resource not found"

	if resource != "" {
		message = resource + " not found"
	}

	c.JSON(http.StatusNotFound, ErrorResponse{
		Error:   CodeNotFound,
		Message: message,
	})
}

// returns a 405 for routes that only accept other methods
func MethodNotAllowed(c *gin.Context) {
	c.JSON(http.StatusMethodNotAllowed, ErrorResponse{
		Error:   CodeMethodNotAllowed,
		Message: "method " + c.Request.Method + " not allowed",
	})
}

// returns a 401 unauthorized error
func Unauthorized(c *gin.Context, message string) {
	if message == "" {
		message = "authentication required"
	}

	c.JSON(http.StatusUnauthorized, ErrorResponse{
		Error:   CodeUnauthorized,
		Message: message,
	})
}

// returns a 429 too many requests error
func TooManyRequests(c *gin.Context, message string) {
	if message == "" {
		message = "too many requests"
	}

	c.JSON(http.StatusTooManyRequests, ErrorResponse{
		Error:   CodeTooManyRequests,
		Message: message,
	})
}

// returns a 429 with the upgrade path
func QuotaExceeded(c *gin.Context, err *QuotaExceededError) {
	c.JSON(http.StatusTooManyRequests, QuotaResponse{
		ErrorResponse: ErrorResponse{
			Error:   CodeQuotaExceeded,
			Message: err.Error(),
		},
		Remaining:  0,
		Limit:      err.Limit,
		UpgradeURL: err.UpgradeURL,
	})
}

// returns the provider failure with its status
func Upstream(c *gin.Context, err *UpstreamError) {
	code := CodeUpstreamError

	var withCode coder
	if errors.As(err, &withCode) {
		code = withCode.ErrorCode()
	}

	status := err.HTTPStatus()

	logger.Warn("upstream call failed",
		"op", err.Op,
		"provider", err.Provider,
		"status", status,
		"path", c.Request.URL.Path,
		"error", err.Error(),
	)

	c.JSON(status, ErrorResponse{
		Error:   code,
		Message: err.Error(),
	})
}

// returns a 500 internal server error
func InternalError(c *gin.Context, message string, err error) {
	if message == "" {
		message = "an error occurred"
	}

	// log full error server-side with context
	logger.ErrorErr(err, message,
		"path", c.Request.URL.Path,
		"method", c.Request.Method,
		"owner", c.GetString("owner"),
	)

	// return sanitized error to client
	c.JSON(http.StatusInternalServerError, ErrorResponse{
		Error:   CodeServerError,
		Message: message,
		Details: sanitizeError(err),
	})
}

// writes the response matching the error's type
func Respond(c *gin.Context, err error) {
	var (
		validation  *ValidationError
		quota       *QuotaExceededError
		upstream    *UpstreamError
		persistence *PersistenceError
		withCode    coder
	)

	switch {
	case errors.As(err, &validation):
		Validation(c, validation)
	case errors.As(err, &quota):
		QuotaExceeded(c, quota)
	case errors.As(err, &upstream):
		Upstream(c, &UpstreamError{
			Op:       upstream.Op,
			Provider: upstream.Provider,
			Status:   upstream.Status,
			Message:  upstream.Message,
			Err:      err,
		})
	case errors.As(err, &persistence):
		logger.ErrorErr(err, "history persistence failed", "op", persistence.Op, "path", c.Request.URL.Path)
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   CodePersistenceError,
			Message: persistence.Error(),
			Details: sanitizeError(persistence.Err),
		})
	case errors.As(err, &withCode):
		// typed failures from domain packages that are not provider errors
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   withCode.ErrorCode(),
			Message: sanitizeError(err),
		})
	default:
		InternalError(c, "", err)
	}
}

// sanitizes error messages for production
func sanitizeError(err error) string {
	return classifyError(err).sanitized
}
