package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/joyworks/workshop-api/internal/models"
)

func rbacRouter(role models.UserRole, userID string, allowed ...string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/participants/:participantId/resource",
		func(c *gin.Context) {
			c.Set(ContextUserKey, &models.JWTClaims{UserID: userID, Role: role})
		},
		RBAC(allowed...),
		func(c *gin.Context) { c.Status(http.StatusNoContent) },
	)
	return r
}

func TestRBACAllowsRole(t *testing.T) {
	r := rbacRouter(models.RoleOrganizer, "u-1", "ADMIN", "ORGANIZER")
	recorder := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/participants/p-9/resource", nil)

	r.ServeHTTP(recorder, req)
	assert.Equal(t, http.StatusNoContent, recorder.Code)
}

func TestRBACRejectsRole(t *testing.T) {
	r := rbacRouter(models.RoleParticipant, "u-1", "ADMIN", "ORGANIZER")
	recorder := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/participants/p-9/resource", nil)

	r.ServeHTTP(recorder, req)
	assert.Equal(t, http.StatusForbidden, recorder.Code)
}

func TestRBACSelfAccess(t *testing.T) {
	r := rbacRouter(models.RoleParticipant, "p-9", "ADMIN", "SELF")
	recorder := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/participants/p-9/resource", nil)

	r.ServeHTTP(recorder, req)
	assert.Equal(t, http.StatusNoContent, recorder.Code)
}

func TestRBACSelfMismatch(t *testing.T) {
	r := rbacRouter(models.RoleParticipant, "p-1", "ADMIN", "SELF")
	recorder := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/participants/p-9/resource", nil)

	r.ServeHTTP(recorder, req)
	assert.Equal(t, http.StatusForbidden, recorder.Code)
}

func TestRBACMissingClaims(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/resource", RBAC("ADMIN"), func(c *gin.Context) { c.Status(http.StatusNoContent) })

	recorder := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/resource", nil)

	r.ServeHTTP(recorder, req)
	assert.Equal(t, http.StatusUnauthorized, recorder.Code)
}
