package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"projecthub/internal/auth"
	"projecthub/internal/http/render"
	"projecthub/internal/models"
	"projecthub/internal/roles"
)

func ListRoles(svc *roles.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		offset, limit := paging(c)
		list, total, err := svc.List(c.Request.Context(), offset, limit)
		if err != nil {
			render.Error(c, err)
			return
		}
		c.JSON(http.StatusOK, render.Page[models.Role]{Data: list, Count: total})
	}
}

func GetRole(svc *roles.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := uuidParam(c, "id")
		if !ok {
			return
		}
		role, err := svc.Get(c.Request.Context(), id)
		if err != nil {
			render.Error(c, err)
			return
		}
		c.JSON(http.StatusOK, role)
	}
}

func CreateRole(svc *roles.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var in roles.CreateInput
		if !bind(c, &in) {
			return
		}
		role, err := svc.Create(c.Request.Context(), auth.CurrentUser(c), in)
		if err != nil {
			render.Error(c, err)
			return
		}
		c.JSON(http.StatusCreated, role)
	}
}

func UpdateRole(svc *roles.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := uuidParam(c, "id")
		if !ok {
			return
		}
		var in roles.UpdateInput
		if !bind(c, &in) {
			return
		}
		role, err := svc.Update(c.Request.Context(), auth.CurrentUser(c), id, in)
		if err != nil {
			render.Error(c, err)
			return
		}
		c.JSON(http.StatusOK, role)
	}
}

func DeleteRole(svc *roles.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := uuidParam(c, "id")
		if !ok {
			return
		}
		if err := svc.Delete(c.Request.Context(), auth.CurrentUser(c), id); err != nil {
			render.Error(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "role deleted"})
	}
}
