package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"projecthub/internal/auth"
	"projecthub/internal/http/render"
	"projecthub/internal/users"
)

func Register(svc *users.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var in users.RegisterInput
		if !bind(c, &in) {
			return
		}
		u, err := svc.Register(c.Request.Context(), in)
		if err != nil {
			render.Error(c, err)
			return
		}
		c.JSON(http.StatusCreated, u)
	}
}

// Login authenticates the user and returns a JWT, also set as a cookie for
// browser clients.
func Login(svc *users.Service, secureCookie bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input struct {
			Email    string `json:"email"`
			Password string `json:"password"`
		}
		if !bind(c, &input) {
			return
		}

		session, err := svc.Login(c.Request.Context(), input.Email, input.Password)
		if err != nil {
			render.Error(c, err)
			return
		}

		c.SetSameSite(http.SameSiteLaxMode)
		c.SetCookie("token", session.Token, int(time.Until(session.ExpiresAt).Seconds()), "/", "", secureCookie, true)
		c.JSON(http.StatusOK, session)
	}
}

func Logout(svc *users.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := svc.Logout(c.Request.Context(), auth.CurrentUser(c), auth.CurrentClaims(c)); err != nil {
			render.Error(c, err)
			return
		}
		c.SetCookie("token", "", -1, "/", "", false, true)
		c.JSON(http.StatusOK, gin.H{"message": "logged out"})
	}
}
