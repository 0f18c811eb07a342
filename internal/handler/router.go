package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/joyworks/workshop-api/internal/middleware"
	"github.com/joyworks/workshop-api/internal/models"
	"github.com/joyworks/workshop-api/internal/service"
)

// Deps bundles everything the router needs.
type Deps struct {
	Auth          *service.AuthService
	Metrics       *service.MetricsService
	Workshops     *WorkshopHandler
	Registrations *RegistrationHandler
	Attendance    *AttendanceHandler
	Certificates  *CertificateHandler
	JoyCoins      *JoyCoinHandler
	Observability *MetricsHandler
}

// RegisterRoutes mounts the versioned API surface on the engine.
func RegisterRoutes(r *gin.Engine, prefix string, deps Deps) {
	r.GET("/health", deps.Observability.Health)
	r.GET("/ready", deps.Observability.Ready)
	r.GET("/metrics", deps.Observability.Prometheus)

	api := r.Group(prefix)
	api.Use(middleware.Metrics(deps.Metrics))

	// Certificate verification is public: numbers are shared with
	// third parties.
	api.GET("/certificates/:number", deps.Certificates.GetByNumber)

	secured := api.Group("")
	secured.Use(middleware.JWT(deps.Auth))

	workshops := secured.Group("/workshops")
	{
		workshops.GET("", deps.Workshops.List)
		workshops.GET("/:id", deps.Workshops.Get)
		workshops.POST("", middleware.RequireRoles(models.RoleAdmin, models.RoleOrganizer), deps.Workshops.Create)
		workshops.PUT("/:id", middleware.RequireRoles(models.RoleAdmin, models.RoleOrganizer), deps.Workshops.Update)
		workshops.PATCH("/:id/status", middleware.RequireRoles(models.RoleAdmin, models.RoleOrganizer), deps.Workshops.ChangeStatus)
		workshops.PATCH("/:id/capacity", middleware.RequireRoles(models.RoleAdmin, models.RoleOrganizer), deps.Workshops.ResizeCapacity)

		workshops.POST("/:id/interest", deps.Registrations.ExpressInterest)
		workshops.POST("/:id/book", deps.Registrations.Book)
		workshops.DELETE("/:id/registration", deps.Registrations.Cancel)
		workshops.GET("/:id/registrations", middleware.RequireRoles(models.RoleAdmin, models.RoleOrganizer), deps.Registrations.List)

		workshops.POST("/:id/attendance", middleware.RequireRoles(models.RoleAdmin, models.RoleOrganizer), deps.Attendance.BulkRecord)
		workshops.POST("/:id/attendance/:participantId/issuance", middleware.RequireRoles(models.RoleAdmin, models.RoleOrganizer), deps.Attendance.Reissue)
		workshops.DELETE("/:id/attendance/:participantId", middleware.RequireRoles(models.RoleAdmin, models.RoleOrganizer), deps.Attendance.Unmark)
	}

	participants := secured.Group("/participants/:participantId")
	{
		participants.GET("/registrations", middleware.RBAC("ADMIN", "ORGANIZER", middleware.Self), deps.Registrations.ListForParticipant)
		participants.GET("/certificates", middleware.RBAC("ADMIN", "ORGANIZER", middleware.Self), deps.Certificates.ListForParticipant)
		participants.GET("/joycoins", middleware.RBAC("ADMIN", "ORGANIZER", middleware.Self), deps.JoyCoins.Statement)
		participants.POST("/joycoins/deductions", middleware.RequireRoles(models.RoleAdmin, models.RoleOrganizer), deps.JoyCoins.Deduct)
	}
}
