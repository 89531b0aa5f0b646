package pagination

import (
	"strconv"

	"codeberg.org/boomline/server/internal/errors"
	"github.com/gin-gonic/gin"
)

// Params holds pagination parameters from request
type Params struct {
	Limit  int
	Offset int
}

// Meta holds pagination metadata for response
type Meta struct {
	Total   int  `json:"total"`
	Limit   int  `json:"limit"`
	Offset  int  `json:"offset"`
	HasMore bool `json:"has_more"`
}

// NewMeta creates pagination metadata from params and total count
func NewMeta(params Params, total int) Meta {
	return Meta{
		Total:   total,
		Limit:   params.Limit,
		Offset:  params.Offset,
		HasMore: params.Offset+params.Limit < total,
	}
}

// DefaultParams returns pagination params with defaults applied
// defaultLimit: default items per page, maxLimit: maximum allowed limit
func DefaultParams(limit, offset, defaultLimit, maxLimit int) Params {
	if limit <= 0 {
		limit = defaultLimit
	}
	if limit > maxLimit {
		limit = maxLimit
	}
	if offset < 0 {
		offset = 0
	}
	return Params{
		Limit:  limit,
		Offset: offset,
	}
}

// FromQuery reads ?limit and ?offset; ok is false when neither is set
func FromQuery(c *gin.Context, defaultLimit, maxLimit int) (params Params, ok bool, err error) {
	rawLimit, hasLimit := c.GetQuery("limit")
	rawOffset, hasOffset := c.GetQuery("offset")

	if !hasLimit && !hasOffset {
		return Params{}, false, nil
	}

	limit, err := nonNegative("limit", rawLimit, hasLimit)
	if err != nil {
		return Params{}, true, err
	}

	offset, err := nonNegative("offset", rawOffset, hasOffset)
	if err != nil {
		return Params{}, true, err
	}

	return DefaultParams(limit, offset, defaultLimit, maxLimit), true, nil
}

func nonNegative(field, raw string, present bool) (int, error) {
	if !present {
		return 0, nil
	}

	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, errors.Invalid(field, field+" must be a non-negative integer")
	}

	return n, nil
}

// Slice returns the page of items described by params
func Slice[T any](items []T, params Params) []T {
	if params.Offset >= len(items) {
		return items[:0]
	}

	end := min(params.Offset+params.Limit, len(items))

	return items[params.Offset:end]
}
