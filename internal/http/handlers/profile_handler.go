package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"projecthub/internal/auth"
	"projecthub/internal/http/render"
	"projecthub/internal/users"
)

// Me returns the authenticated user.
func Me() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, auth.CurrentUser(c))
	}
}

func UpdateMe(svc *users.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var in users.UpdateMeInput
		if !bind(c, &in) {
			return
		}
		u, err := svc.UpdateMe(c.Request.Context(), auth.CurrentUser(c), in)
		if err != nil {
			render.Error(c, err)
			return
		}
		c.JSON(http.StatusOK, u)
	}
}

func ChangePassword(svc *users.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var in users.ChangePasswordInput
		if !bind(c, &in) {
			return
		}
		if err := svc.ChangePassword(c.Request.Context(), auth.CurrentUser(c), in); err != nil {
			render.Error(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "password updated"})
	}
}
