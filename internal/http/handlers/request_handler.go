package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"projecthub/internal/auth"
	"projecthub/internal/http/render"
	"projecthub/internal/models"
	"projecthub/internal/requests"
)

func CreateRequest(svc *requests.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		projectID, ok := uuidParam(c, "project_id")
		if !ok {
			return
		}
		var in struct {
			RoleID         uuid.UUID `json:"role_id"`
			RequestMessage string    `json:"request_message"`
		}
		if !bind(c, &in) {
			return
		}
		req, err := svc.Create(c.Request.Context(), auth.CurrentUser(c), projectID, in.RoleID, in.RequestMessage)
		if err != nil {
			render.Error(c, err)
			return
		}
		c.JSON(http.StatusCreated, req)
	}
}

// UpdateRequestStatus approves or rejects a pending request.
func UpdateRequestStatus(svc *requests.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		projectID, ok := uuidParam(c, "project_id")
		if !ok {
			return
		}
		requestID, ok := uuidParam(c, "request_id")
		if !ok {
			return
		}
		var in struct {
			Status          models.RequestStatus `json:"status"`
			ResponseMessage string               `json:"response_message"`
		}
		if !bind(c, &in) {
			return
		}
		req, err := svc.UpdateStatus(c.Request.Context(), auth.CurrentUser(c), projectID, requestID, in.Status, in.ResponseMessage)
		if err != nil {
			render.Error(c, err)
			return
		}
		c.JSON(http.StatusOK, req)
	}
}

func DeleteRequest(svc *requests.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		projectID, ok := uuidParam(c, "project_id")
		if !ok {
			return
		}
		requestID, ok := uuidParam(c, "request_id")
		if !ok {
			return
		}
		if err := svc.Delete(c.Request.Context(), auth.CurrentUser(c), projectID, requestID); err != nil {
			render.Error(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "request deleted"})
	}
}

func ListRequests(svc *requests.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		projectID, ok := uuidParam(c, "project_id")
		if !ok {
			return
		}
		offset, limit := paging(c)
		list, total, err := svc.List(c.Request.Context(), auth.CurrentUser(c), projectID, requests.ListQuery{
			Offset: offset,
			Limit:  limit,
			Status: models.RequestStatus(c.Query("status")),
		})
		if err != nil {
			render.Error(c, err)
			return
		}
		c.JSON(http.StatusOK, render.Page[models.Request]{Data: list, Count: total})
	}
}

func GetRequest(svc *requests.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		projectID, ok := uuidParam(c, "project_id")
		if !ok {
			return
		}
		requestID, ok := uuidParam(c, "request_id")
		if !ok {
			return
		}
		req, err := svc.Get(c.Request.Context(), auth.CurrentUser(c), projectID, requestID)
		if err != nil {
			render.Error(c, err)
			return
		}
		c.JSON(http.StatusOK, req)
	}
}

func ListMyRequests(svc *requests.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		offset, limit := paging(c)
		list, total, err := svc.ListMine(c.Request.Context(), auth.CurrentUser(c), offset, limit)
		if err != nil {
			render.Error(c, err)
			return
		}
		c.JSON(http.StatusOK, render.Page[models.Request]{Data: list, Count: total})
	}
}
