package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/emergency0committee-hub/eec-backend/internal/response"
	"github.com/emergency0committee-hub/eec-backend/internal/service"
)

// BankHandler exposes the staff side of the question bank.
type BankHandler struct {
	bankService *service.BankService
	log         zerolog.Logger
}

// NewBankHandler creates a new BankHandler.
func NewBankHandler(bankService *service.BankService, log zerolog.Logger) *BankHandler {
	return &BankHandler{
		bankService: bankService,
		log:         log.With().Str("component", "bank_handler").Logger(),
	}
}

// RefreshCache godoc
// POST /api/v1/staff/bank/refresh
//
// Rebuilds the cached participant payload after bank edits so running
// sessions and new participants see the current questionnaire.
func (h *BankHandler) RefreshCache(c *gin.Context) {
	if err := h.bankService.PrewarmCache(c.Request.Context()); err != nil {
		if errors.Is(err, service.ErrBankEmpty) {
			response.Fail(c, http.StatusServiceUnavailable, response.ErrBankEmpty)
			return
		}
		h.log.Error().Err(err).Msg("Bank cache refresh failed")
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"refreshed": true})
}
