package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"projecthub/internal/assignments"
	"projecthub/internal/auth"
	"projecthub/internal/http/render"
)

// ListAllAssignments returns every user/project/role triple.
func ListAllAssignments(svc *assignments.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		list, err := svc.ListAll(c.Request.Context())
		if err != nil {
			render.Error(c, err)
			return
		}
		c.JSON(http.StatusOK, render.Page[assignments.View]{Data: list, Count: int64(len(list))})
	}
}

func ListAssignments(svc *assignments.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		projectID, ok := uuidParam(c, "project_id")
		if !ok {
			return
		}
		list, err := svc.List(c.Request.Context(), auth.CurrentUser(c), projectID)
		if err != nil {
			render.Error(c, err)
			return
		}
		c.JSON(http.StatusOK, render.Page[assignments.View]{Data: list, Count: int64(len(list))})
	}
}

func AssignRole(svc *assignments.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		projectID, ok := uuidParam(c, "project_id")
		if !ok {
			return
		}
		var in struct {
			UserID uuid.UUID `json:"user_id"`
			RoleID uuid.UUID `json:"role_id"`
		}
		if !bind(c, &in) {
			return
		}
		a, err := svc.Assign(c.Request.Context(), auth.CurrentUser(c), projectID, in.UserID, in.RoleID)
		if err != nil {
			render.Error(c, err)
			return
		}
		c.JSON(http.StatusCreated, a)
	}
}

func ReassignRole(svc *assignments.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		projectID, ok := uuidParam(c, "project_id")
		if !ok {
			return
		}
		userID, ok := uuidParam(c, "user_id")
		if !ok {
			return
		}
		oldRoleID, ok := uuidParam(c, "role_id")
		if !ok {
			return
		}
		var in struct {
			RoleID uuid.UUID `json:"role_id"`
		}
		if !bind(c, &in) {
			return
		}
		a, err := svc.Reassign(c.Request.Context(), auth.CurrentUser(c), projectID, userID, oldRoleID, in.RoleID)
		if err != nil {
			render.Error(c, err)
			return
		}
		c.JSON(http.StatusOK, a)
	}
}

func RevokeRole(svc *assignments.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		projectID, ok := uuidParam(c, "project_id")
		if !ok {
			return
		}
		userID, ok := uuidParam(c, "user_id")
		if !ok {
			return
		}
		roleID, ok := uuidParam(c, "role_id")
		if !ok {
			return
		}
		if err := svc.Revoke(c.Request.Context(), auth.CurrentUser(c), projectID, userID, roleID); err != nil {
			render.Error(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "role revoked"})
	}
}
