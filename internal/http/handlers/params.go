package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"projecthub/internal/apperr"
	"projecthub/internal/http/render"
)

// uuidParam parses a route parameter, answering 400 when it is not a UUID.
func uuidParam(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		render.Error(c, apperr.InvalidArgument("invalid %s", name))
		return uuid.Nil, false
	}
	return id, true
}

// paging reads offset and limit query parameters. Bad values fall back to
// the defaults; services clamp the limit.
func paging(c *gin.Context) (offset, limit int) {
	if v, err := strconv.Atoi(c.Query("offset")); err == nil && v > 0 {
		offset = v
	}
	if v, err := strconv.Atoi(c.Query("limit")); err == nil && v > 0 {
		limit = v
	}
	return offset, limit
}

// bind decodes the JSON body, answering 400 on malformed input.
func bind(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		render.Error(c, apperr.InvalidArgument("invalid request body: %v", err))
		return false
	}
	return true
}
