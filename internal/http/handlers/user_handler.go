package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"projecthub/internal/auth"
	"projecthub/internal/http/render"
	"projecthub/internal/models"
	"projecthub/internal/users"
)

func ListUsers(svc *users.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		offset, limit := paging(c)
		list, total, err := svc.List(c.Request.Context(), offset, limit)
		if err != nil {
			render.Error(c, err)
			return
		}
		c.JSON(http.StatusOK, render.Page[models.User]{Data: list, Count: total})
	}
}

func CreateUser(svc *users.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var in users.CreateInput
		if !bind(c, &in) {
			return
		}
		u, err := svc.Create(c.Request.Context(), auth.CurrentUser(c), in)
		if err != nil {
			render.Error(c, err)
			return
		}
		c.JSON(http.StatusCreated, u)
	}
}

func UpdateUser(svc *users.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := uuidParam(c, "id")
		if !ok {
			return
		}
		var in users.AdminUpdateInput
		if !bind(c, &in) {
			return
		}
		u, err := svc.Update(c.Request.Context(), auth.CurrentUser(c), id, in)
		if err != nil {
			render.Error(c, err)
			return
		}
		c.JSON(http.StatusOK, u)
	}
}

func SetSystemTier(svc *users.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := uuidParam(c, "id")
		if !ok {
			return
		}
		var in struct {
			SystemTierID uuid.UUID `json:"system_tier_id"`
		}
		if !bind(c, &in) {
			return
		}
		u, err := svc.SetSystemTier(c.Request.Context(), auth.CurrentUser(c), id, in.SystemTierID)
		if err != nil {
			render.Error(c, err)
			return
		}
		c.JSON(http.StatusOK, u)
	}
}
