package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/joyworks/workshop-api/internal/models"
	appErrors "github.com/joyworks/workshop-api/pkg/errors"
	"github.com/joyworks/workshop-api/pkg/response"
)

// Self is the sentinel role that grants access when the participantId
// route parameter matches the caller's own user id.
const Self = "SELF"

// RBAC allows the request through when the caller holds one of the
// listed roles, or when Self is listed and the route targets the
// caller's own participant id. The allow set is computed once at route
// registration.
func RBAC(allowed ...string) gin.HandlerFunc {
	roles := make(map[models.UserRole]struct{}, len(allowed))
	allowSelf := false
	for _, a := range allowed {
		if a == Self {
			allowSelf = true
			continue
		}
		roles[models.UserRole(a)] = struct{}{}
	}

	return func(c *gin.Context) {
		claimsValue, exists := c.Get(ContextUserKey)
		if !exists {
			abort(c, appErrors.ErrUnauthorized)
			return
		}
		claims := claimsValue.(*models.JWTClaims)

		if _, ok := roles[claims.Role]; ok {
			c.Next()
			return
		}
		if allowSelf && selfTarget(c, claims) {
			c.Next()
			return
		}
		abort(c, appErrors.ErrForbidden)
	}
}

// RequireRoles is RBAC without the self-access escape hatch.
func RequireRoles(roles ...models.UserRole) gin.HandlerFunc {
	allowed := make([]string, len(roles))
	for i, r := range roles {
		allowed[i] = string(r)
	}
	return RBAC(allowed...)
}

func selfTarget(c *gin.Context, claims *models.JWTClaims) bool {
	target := c.Param("participantId")
	return target != "" && target == claims.UserID
}

func abort(c *gin.Context, err *appErrors.Error) {
	response.Error(c, err)
	c.Abort()
}
