package httpserver

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"projecthub/internal/apperr"
	"projecthub/internal/auth"
	"projecthub/internal/http/render"
	"projecthub/internal/observability"
	"projecthub/internal/rbac"
)

// ProjectRankKey holds the caller's resolved project rank once a project
// gate has passed.
const ProjectRankKey = "project_rank"

// requireProject runs gate against the :project_id route parameter.
func requireProject(name string, gate rbac.ProjectGate, m *observability.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		projectID, err := uuid.Parse(c.Param("project_id"))
		if err != nil {
			render.Error(c, apperr.InvalidArgument("invalid project id"))
			return
		}
		rank, err := gate(c.Request.Context(), auth.CurrentUser(c), projectID)
		m.ObserveGate(name, err)
		if err != nil {
			render.Error(c, err)
			return
		}
		c.Set(ProjectRankKey, rank)
		c.Next()
	}
}

func requireSystem(name string, gate rbac.SystemGate, m *observability.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		err := gate(auth.CurrentUser(c))
		m.ObserveGate(name, err)
		if err != nil {
			render.Error(c, err)
			return
		}
		c.Next()
	}
}

func requireSuperuser(m *observability.Metrics) gin.HandlerFunc {
	return requireSystem("superuser", rbac.RequireSuperuser, m)
}
