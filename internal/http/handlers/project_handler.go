package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"projecthub/internal/auth"
	"projecthub/internal/http/render"
	"projecthub/internal/projects"
)

func ListProjects(svc *projects.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		offset, limit := paging(c)
		list, total, err := svc.List(c.Request.Context(), auth.CurrentUser(c), offset, limit)
		if err != nil {
			render.Error(c, err)
			return
		}
		c.JSON(http.StatusOK, render.Page[projects.View]{Data: list, Count: total})
	}
}

func GetProject(svc *projects.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := uuidParam(c, "project_id")
		if !ok {
			return
		}
		p, err := svc.Get(c.Request.Context(), auth.CurrentUser(c), id)
		if err != nil {
			render.Error(c, err)
			return
		}
		c.JSON(http.StatusOK, p)
	}
}

func CreateProject(svc *projects.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var in projects.Input
		if !bind(c, &in) {
			return
		}
		p, err := svc.Create(c.Request.Context(), auth.CurrentUser(c), in)
		if err != nil {
			render.Error(c, err)
			return
		}
		c.JSON(http.StatusCreated, p)
	}
}

func UpdateProject(svc *projects.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := uuidParam(c, "project_id")
		if !ok {
			return
		}
		var in projects.Input
		if !bind(c, &in) {
			return
		}
		p, err := svc.Update(c.Request.Context(), auth.CurrentUser(c), id, in)
		if err != nil {
			render.Error(c, err)
			return
		}
		c.JSON(http.StatusOK, p)
	}
}

func DeleteProject(svc *projects.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := uuidParam(c, "project_id")
		if !ok {
			return
		}
		if err := svc.Delete(c.Request.Context(), auth.CurrentUser(c), id); err != nil {
			render.Error(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "project deleted"})
	}
}
