package handler

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/joyworks/workshop-api/internal/models"
	"github.com/joyworks/workshop-api/internal/service"
	appErrors "github.com/joyworks/workshop-api/pkg/errors"
	"github.com/joyworks/workshop-api/pkg/response"
)

// WorkshopHandler exposes workshop lifecycle endpoints.
type WorkshopHandler struct {
	workshops *service.WorkshopService
}

// NewWorkshopHandler constructs WorkshopHandler.
func NewWorkshopHandler(workshops *service.WorkshopService) *WorkshopHandler {
	return &WorkshopHandler{workshops: workshops}
}

type statusRequest struct {
	Status string `json:"status" binding:"required"`
}

type capacityRequest struct {
	Capacity int `json:"capacity" binding:"required"`
}

// List godoc
// @Summary List workshops
// @Tags Workshops
// @Produce json
// @Param status query string false "Filter by status"
// @Param organizerId query string false "Filter by organizer"
// @Param search query string false "Search by title or code"
// @Param from query string false "Starts at or after (RFC3339)"
// @Param to query string false "Starts before (RFC3339)"
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /workshops [get]
func (h *WorkshopHandler) List(c *gin.Context) {
	var filter models.WorkshopFilter
	filter.Status = models.WorkshopStatus(strings.ToUpper(c.Query("status")))
	filter.OrganizerID = c.Query("organizerId")
	filter.Search = strings.TrimSpace(c.Query("search"))
	if from := c.Query("from"); from != "" {
		if ts, err := time.Parse(time.RFC3339, from); err == nil {
			filter.From = &ts
		}
	}
	if to := c.Query("to"); to != "" {
		if ts, err := time.Parse(time.RFC3339, to); err == nil {
			filter.To = &ts
		}
	}
	if page, err := strconv.Atoi(c.DefaultQuery("page", "1")); err == nil {
		filter.Page = page
	}
	if size, err := strconv.Atoi(c.DefaultQuery("limit", "20")); err == nil {
		filter.PageSize = size
	}
	filter.SortBy = c.Query("sort")
	filter.SortOrder = c.Query("order")

	workshops, pagination, err := h.workshops.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, workshops, pagination)
}

// Get godoc
// @Summary Get workshop detail with seat usage
// @Tags Workshops
// @Produce json
// @Param id path string true "Workshop ID"
// @Success 200 {object} response.Envelope
// @Router /workshops/{id} [get]
func (h *WorkshopHandler) Get(c *gin.Context) {
	workshop, err := h.workshops.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, workshop, nil)
}

// Create godoc
// @Summary Create workshop draft
// @Tags Workshops
// @Accept json
// @Produce json
// @Param payload body service.CreateWorkshopRequest true "Workshop payload"
// @Success 201 {object} response.Envelope
// @Router /workshops [post]
func (h *WorkshopHandler) Create(c *gin.Context) {
	var req service.CreateWorkshopRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	if req.OrganizerID == "" {
		if claims := currentClaims(c); claims != nil {
			req.OrganizerID = claims.UserID
		}
	}
	workshop, err := h.workshops.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, workshop)
}

// Update godoc
// @Summary Update workshop details
// @Tags Workshops
// @Accept json
// @Produce json
// @Param id path string true "Workshop ID"
// @Param payload body service.UpdateWorkshopRequest true "Workshop payload"
// @Success 200 {object} response.Envelope
// @Router /workshops/{id} [put]
func (h *WorkshopHandler) Update(c *gin.Context) {
	var req service.UpdateWorkshopRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	workshop, err := h.workshops.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, workshop, nil)
}

// ChangeStatus godoc
// @Summary Move workshop along its lifecycle
// @Tags Workshops
// @Accept json
// @Produce json
// @Param id path string true "Workshop ID"
// @Param payload body statusRequest true "Target status"
// @Success 200 {object} response.Envelope
// @Router /workshops/{id}/status [patch]
func (h *WorkshopHandler) ChangeStatus(c *gin.Context) {
	var req statusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	workshop, err := h.workshops.ChangeStatus(c.Request.Context(), c.Param("id"), models.WorkshopStatus(strings.ToUpper(req.Status)))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, workshop, nil)
}

// ResizeCapacity godoc
// @Summary Change workshop seat capacity
// @Tags Workshops
// @Accept json
// @Produce json
// @Param id path string true "Workshop ID"
// @Param payload body capacityRequest true "New capacity"
// @Success 200 {object} response.Envelope
// @Router /workshops/{id}/capacity [patch]
func (h *WorkshopHandler) ResizeCapacity(c *gin.Context) {
	var req capacityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	workshop, err := h.workshops.ResizeCapacity(c.Request.Context(), c.Param("id"), req.Capacity)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, workshop, nil)
}
