package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/joyworks/workshop-api/internal/service"
	appErrors "github.com/joyworks/workshop-api/pkg/errors"
	"github.com/joyworks/workshop-api/pkg/response"
)

// JoyCoinHandler exposes the JoyCoin ledger.
type JoyCoinHandler struct {
	joycoins *service.JoyCoinService
}

// NewJoyCoinHandler constructs JoyCoinHandler.
func NewJoyCoinHandler(joycoins *service.JoyCoinService) *JoyCoinHandler {
	return &JoyCoinHandler{joycoins: joycoins}
}

// Statement godoc
// @Summary Get a participant's JoyCoin statement
// @Tags JoyCoins
// @Produce json
// @Param participantId path string true "Participant ID"
// @Success 200 {object} response.Envelope
// @Router /participants/{participantId}/joycoins [get]
func (h *JoyCoinHandler) Statement(c *gin.Context) {
	statement, err := h.joycoins.Statement(c.Request.Context(), c.Param("participantId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, statement, nil)
}

// Deduct godoc
// @Summary Deduct JoyCoins from a participant's balance
// @Tags JoyCoins
// @Accept json
// @Produce json
// @Param participantId path string true "Participant ID"
// @Param payload body service.DeductRequest true "Deduction payload"
// @Success 201 {object} response.Envelope
// @Router /participants/{participantId}/joycoins/deductions [post]
func (h *JoyCoinHandler) Deduct(c *gin.Context) {
	var req service.DeductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	txn, err := h.joycoins.Deduct(c.Request.Context(), c.Param("participantId"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, txn)
}
