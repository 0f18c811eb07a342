package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/joyworks/workshop-api/internal/middleware"
	"github.com/joyworks/workshop-api/internal/models"
)

// currentClaims returns the JWT claims attached by the auth middleware.
func currentClaims(c *gin.Context) *models.JWTClaims {
	value, exists := c.Get(middleware.ContextUserKey)
	if !exists {
		return nil
	}
	claims, ok := value.(*models.JWTClaims)
	if !ok {
		return nil
	}
	return claims
}
