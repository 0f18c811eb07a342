package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/joyworks/workshop-api/internal/service"
	"github.com/joyworks/workshop-api/pkg/response"
)

// CertificateHandler exposes issued certificates.
type CertificateHandler struct {
	certificates *service.CertificateService
}

// NewCertificateHandler constructs CertificateHandler.
func NewCertificateHandler(certificates *service.CertificateService) *CertificateHandler {
	return &CertificateHandler{certificates: certificates}
}

// GetByNumber godoc
// @Summary Verify a certificate by its number
// @Tags Certificates
// @Produce json
// @Param number path string true "Certificate number"
// @Success 200 {object} response.Envelope
// @Router /certificates/{number} [get]
func (h *CertificateHandler) GetByNumber(c *gin.Context) {
	certificate, err := h.certificates.GetByNumber(c.Request.Context(), c.Param("number"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, certificate, nil)
}

// ListForParticipant godoc
// @Summary List a participant's certificates
// @Tags Certificates
// @Produce json
// @Param participantId path string true "Participant ID"
// @Success 200 {object} response.Envelope
// @Router /participants/{participantId}/certificates [get]
func (h *CertificateHandler) ListForParticipant(c *gin.Context) {
	certificates, err := h.certificates.ListForParticipant(c.Request.Context(), c.Param("participantId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, certificates, nil)
}
