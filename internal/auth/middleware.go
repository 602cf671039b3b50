package auth

import (
	"strings"

	"github.com/gin-gonic/gin"

	"projecthub/internal/apperr"
	"projecthub/internal/http/render"
	"projecthub/internal/models"
)

const (
	userKey   = "user"
	claimsKey = "claims"
)

// JWT returns a Gin middleware that validates the bearer token from either
// the Authorization header or a "token" cookie and loads its user.
func JWT(authn *Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenStr := c.GetHeader("Authorization")
		if tokenStr == "" {
			if cookie, err := c.Cookie("token"); err == nil {
				tokenStr = "Bearer " + cookie
			}
		}
		if !strings.HasPrefix(tokenStr, "Bearer ") {
			render.Error(c, apperr.Unauthenticated("missing bearer token"))
			return
		}

		user, claims, err := authn.Authenticate(c.Request.Context(), strings.TrimPrefix(tokenStr, "Bearer "))
		if err != nil {
			render.Error(c, err)
			return
		}

		c.Set(userKey, user)
		c.Set(claimsKey, claims)
		c.Next()
	}
}

// RequireActive rejects users whose account has not been activated.
func RequireActive() gin.HandlerFunc {
	return func(c *gin.Context) {
		user := CurrentUser(c)
		if user == nil {
			render.Error(c, apperr.Unauthenticated("not authenticated"))
			return
		}
		if !user.IsActive {
			render.Error(c, apperr.Forbidden("inactive user"))
			return
		}
		c.Next()
	}
}

// CurrentUser returns the user stored by JWT, or nil.
func CurrentUser(c *gin.Context) *models.User {
	v, ok := c.Get(userKey)
	if !ok {
		return nil
	}
	user, _ := v.(*models.User)
	return user
}

// CurrentClaims returns the token claims stored by JWT, or nil.
func CurrentClaims(c *gin.Context) *Claims {
	v, ok := c.Get(claimsKey)
	if !ok {
		return nil
	}
	claims, _ := v.(*Claims)
	return claims
}
