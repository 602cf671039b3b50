package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"projecthub/internal/audit"
	"projecthub/internal/http/render"
)

// ListAudit returns a project's audit trail, newest first, paged by the
// after_id cursor.
func ListAudit(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		projectID, ok := uuidParam(c, "project_id")
		if !ok {
			return
		}

		q := audit.Query{ProjectID: projectID, Search: c.Query("q")}
		if limitStr := c.Query("limit"); limitStr != "" {
			if parsed, err := strconv.Atoi(limitStr); err == nil {
				q.Limit = parsed
			}
		}
		if cursorStr := c.Query("after_id"); cursorStr != "" {
			if parsed, err := strconv.ParseInt(cursorStr, 10, 64); err == nil && parsed > 0 {
				q.AfterID = parsed
			}
		}

		page, err := audit.List(c.Request.Context(), db, q)
		if err != nil {
			render.Error(c, err)
			return
		}
		c.JSON(http.StatusOK, page)
	}
}
