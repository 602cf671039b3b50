// Package render writes JSON responses for gin handlers.
package render

import (
	"github.com/gin-gonic/gin"

	"projecthub/internal/apperr"
)

// Error aborts the request with the status and body derived from err.
func Error(c *gin.Context, err error) {
	kind := apperr.KindOf(err)
	if kind == apperr.KindInternal {
		_ = c.Error(err)
	}
	c.AbortWithStatusJSON(apperr.HTTPStatus(kind), gin.H{
		"error":   string(kind),
		"message": apperr.MessageOf(err),
	})
}

// Page is the list envelope used by paginated endpoints.
type Page[T any] struct {
	Data  []T   `json:"data"`
	Count int64 `json:"count"`
}
