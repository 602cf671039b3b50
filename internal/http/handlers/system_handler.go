package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"projecthub/internal/auth"
	"projecthub/internal/http/render"
	"projecthub/internal/models"
	"projecthub/internal/systems"
)

func ListSystemTiers(svc *systems.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		offset, limit := paging(c)
		list, total, err := svc.List(c.Request.Context(), offset, limit)
		if err != nil {
			render.Error(c, err)
			return
		}
		c.JSON(http.StatusOK, render.Page[models.SystemTier]{Data: list, Count: total})
	}
}

func GetSystemTier(svc *systems.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := uuidParam(c, "id")
		if !ok {
			return
		}
		tier, err := svc.Get(c.Request.Context(), id)
		if err != nil {
			render.Error(c, err)
			return
		}
		c.JSON(http.StatusOK, tier)
	}
}

func CreateSystemTier(svc *systems.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var in systems.Input
		if !bind(c, &in) {
			return
		}
		tier, err := svc.Create(c.Request.Context(), auth.CurrentUser(c), in)
		if err != nil {
			render.Error(c, err)
			return
		}
		c.JSON(http.StatusCreated, tier)
	}
}

func UpdateSystemTier(svc *systems.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := uuidParam(c, "id")
		if !ok {
			return
		}
		var in systems.Input
		if !bind(c, &in) {
			return
		}
		tier, err := svc.Update(c.Request.Context(), auth.CurrentUser(c), id, in)
		if err != nil {
			render.Error(c, err)
			return
		}
		c.JSON(http.StatusOK, tier)
	}
}

func DeleteSystemTier(svc *systems.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := uuidParam(c, "id")
		if !ok {
			return
		}
		if err := svc.Delete(c.Request.Context(), auth.CurrentUser(c), id); err != nil {
			render.Error(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "system tier deleted"})
	}
}
