package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/joyworks/workshop-api/internal/service"
	appErrors "github.com/joyworks/workshop-api/pkg/errors"
	"github.com/joyworks/workshop-api/pkg/response"
)

// AttendanceHandler exposes bulk attendance recording.
type AttendanceHandler struct {
	attendance *service.AttendanceService
}

// NewAttendanceHandler constructs AttendanceHandler.
func NewAttendanceHandler(attendance *service.AttendanceService) *AttendanceHandler {
	return &AttendanceHandler{attendance: attendance}
}

// BulkRecord godoc
// @Summary Record attendance outcomes for a workshop
// @Tags Attendance
// @Accept json
// @Produce json
// @Param id path string true "Workshop ID"
// @Param payload body service.BulkRecordRequest true "Attendance batch"
// @Success 200 {object} response.Envelope
// @Router /workshops/{id}/attendance [post]
func (h *AttendanceHandler) BulkRecord(c *gin.Context) {
	var req service.BulkRecordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	result, err := h.attendance.BulkRecord(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}

// Reissue godoc
// @Summary Re-run certificate and reward issuance for an attendee
// @Tags Attendance
// @Produce json
// @Param id path string true "Workshop ID"
// @Param participantId path string true "Participant ID"
// @Success 200 {object} response.Envelope
// @Router /workshops/{id}/attendance/{participantId}/issuance [post]
func (h *AttendanceHandler) Reissue(c *gin.Context) {
	result, err := h.attendance.Reissue(c.Request.Context(), c.Param("id"), c.Param("participantId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}

// Unmark godoc
// @Summary Revert an attended registration back to booked
// @Tags Attendance
// @Produce json
// @Param id path string true "Workshop ID"
// @Param participantId path string true "Participant ID"
// @Success 200 {object} response.Envelope
// @Router /workshops/{id}/attendance/{participantId} [delete]
func (h *AttendanceHandler) Unmark(c *gin.Context) {
	registration, err := h.attendance.Unmark(c.Request.Context(), c.Param("id"), c.Param("participantId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, registration, nil)
}
