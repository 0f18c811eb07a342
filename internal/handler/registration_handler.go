package handler

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/joyworks/workshop-api/internal/models"
	"github.com/joyworks/workshop-api/internal/service"
	appErrors "github.com/joyworks/workshop-api/pkg/errors"
	"github.com/joyworks/workshop-api/pkg/response"
)

// RegistrationHandler exposes the registration state machine.
type RegistrationHandler struct {
	registrations *service.RegistrationService
}

// NewRegistrationHandler constructs RegistrationHandler.
func NewRegistrationHandler(registrations *service.RegistrationService) *RegistrationHandler {
	return &RegistrationHandler{registrations: registrations}
}

func (h *RegistrationHandler) participantID(c *gin.Context) (string, error) {
	claims := currentClaims(c)
	if claims == nil {
		return "", appErrors.ErrUnauthorized
	}
	// Organizers and admins may act on behalf of a participant.
	if target := c.Query("participantId"); target != "" && claims.Role != models.RoleParticipant {
		return target, nil
	}
	return claims.UserID, nil
}

// ExpressInterest godoc
// @Summary Register interest in a workshop
// @Tags Registrations
// @Produce json
// @Param id path string true "Workshop ID"
// @Success 201 {object} response.Envelope
// @Router /workshops/{id}/interest [post]
func (h *RegistrationHandler) ExpressInterest(c *gin.Context) {
	participantID, err := h.participantID(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	registration, err := h.registrations.ExpressInterest(c.Request.Context(), c.Param("id"), participantID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, registration)
}

// Book godoc
// @Summary Book a seat in a workshop
// @Tags Registrations
// @Produce json
// @Param id path string true "Workshop ID"
// @Success 201 {object} response.Envelope
// @Router /workshops/{id}/book [post]
func (h *RegistrationHandler) Book(c *gin.Context) {
	participantID, err := h.participantID(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	registration, err := h.registrations.Book(c.Request.Context(), c.Param("id"), participantID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, registration)
}

// Cancel godoc
// @Summary Cancel a registration
// @Tags Registrations
// @Produce json
// @Param id path string true "Workshop ID"
// @Success 200 {object} response.Envelope
// @Router /workshops/{id}/registration [delete]
func (h *RegistrationHandler) Cancel(c *gin.Context) {
	participantID, err := h.participantID(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	registration, err := h.registrations.Cancel(c.Request.Context(), c.Param("id"), participantID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, registration, nil)
}

// List godoc
// @Summary List registrations for a workshop
// @Tags Registrations
// @Produce json
// @Param id path string true "Workshop ID"
// @Param status query string false "Filter by status"
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /workshops/{id}/registrations [get]
func (h *RegistrationHandler) List(c *gin.Context) {
	filter := models.RegistrationFilter{
		WorkshopID: c.Param("id"),
		Status:     models.RegistrationStatus(strings.ToUpper(c.Query("status"))),
	}
	if page, err := strconv.Atoi(c.DefaultQuery("page", "1")); err == nil {
		filter.Page = page
	}
	if size, err := strconv.Atoi(c.DefaultQuery("limit", "20")); err == nil {
		filter.PageSize = size
	}

	registrations, pagination, err := h.registrations.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, registrations, pagination)
}

// ListForParticipant godoc
// @Summary List a participant's registrations across workshops
// @Tags Registrations
// @Produce json
// @Param participantId path string true "Participant ID"
// @Param status query string false "Filter by status"
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /participants/{participantId}/registrations [get]
func (h *RegistrationHandler) ListForParticipant(c *gin.Context) {
	filter := models.RegistrationFilter{
		ParticipantID: c.Param("participantId"),
		Status:        models.RegistrationStatus(strings.ToUpper(c.Query("status"))),
	}
	if page, err := strconv.Atoi(c.DefaultQuery("page", "1")); err == nil {
		filter.Page = page
	}
	if size, err := strconv.Atoi(c.DefaultQuery("limit", "20")); err == nil {
		filter.PageSize = size
	}

	registrations, pagination, err := h.registrations.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, registrations, pagination)
}
