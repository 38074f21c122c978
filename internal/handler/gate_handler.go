package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/emergency0committee-hub/eec-backend/internal/model"
	"github.com/emergency0committee-hub/eec-backend/internal/response"
	"github.com/emergency0committee-hub/eec-backend/internal/service"
	"github.com/emergency0committee-hub/eec-backend/internal/validator"
)

// GateHandler handles the access-code entry gate.
type GateHandler struct {
	accessService  *service.AccessService
	sessionService *service.SessionService
	authService    *service.AuthService
	log            zerolog.Logger
}

// NewGateHandler creates a new GateHandler.
func NewGateHandler(
	accessService *service.AccessService,
	sessionService *service.SessionService,
	authService *service.AuthService,
	log zerolog.Logger,
) *GateHandler {
	return &GateHandler{
		accessService:  accessService,
		sessionService: sessionService,
		authService:    authService,
		log:            log.With().Str("component", "gate_handler").Logger(),
	}
}

// VerifyCode godoc
// POST /api/v1/gate/verify
// Validates an access code, creates a fresh session, and returns a
// participant token bound to it.
func (h *GateHandler) VerifyCode(c *gin.Context) {
	var req model.VerifyCodeRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	kind, err := h.accessService.VerifyGate(c.Request.Context(), req.Code)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrCodeFormat):
			response.Fail(c, http.StatusBadRequest, response.ErrCodeFormat)
		case errors.Is(err, service.ErrInvalidAccessCode):
			response.Fail(c, http.StatusUnauthorized, response.ErrInvalidAccessCode)
		default:
			h.log.Error().Err(err).Msg("Gate verification failed")
			response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		}
		return
	}

	sess, err := h.sessionService.Create(c.Request.Context())
	if err != nil {
		if errors.Is(err, service.ErrBankEmpty) {
			response.Fail(c, http.StatusServiceUnavailable, response.ErrBankEmpty)
			return
		}
		h.log.Error().Err(err).Msg("Session creation failed")
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	token, err := h.authService.GenerateParticipantToken(sess.ID().String())
	if err != nil {
		h.log.Error().Err(err).Msg("Token issuance failed")
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"token":      token,
		"session_id": sess.ID().String(),
		"code_kind":  kind,
	})
}
