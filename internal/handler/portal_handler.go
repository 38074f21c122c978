package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/emergency0committee-hub/eec-backend/internal/engine"
	"github.com/emergency0committee-hub/eec-backend/internal/middleware"
	"github.com/emergency0committee-hub/eec-backend/internal/model"
	"github.com/emergency0committee-hub/eec-backend/internal/response"
	"github.com/emergency0committee-hub/eec-backend/internal/service"
	"github.com/emergency0committee-hub/eec-backend/internal/validator"
)

// PortalHandler serves the participant assessment flow.
type PortalHandler struct {
	sessionService *service.SessionService
	bankService    *service.BankService
	log            zerolog.Logger
}

// NewPortalHandler creates a new PortalHandler.
func NewPortalHandler(sessionService *service.SessionService, bankService *service.BankService, log zerolog.Logger) *PortalHandler {
	return &PortalHandler{
		sessionService: sessionService,
		bankService:    bankService,
		log:            log.With().Str("component", "portal_handler").Logger(),
	}
}

// sessionIDFromClaims extracts the session UUID bound to the token. A token
// without a parseable session ID never reaches a session.
func sessionIDFromClaims(c *gin.Context) (uuid.UUID, bool) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return uuid.Nil, false
	}
	id, err := uuid.Parse(claims.SessionID)
	if err != nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenInvalid)
		return uuid.Nil, false
	}
	return id, true
}

// failSessionError maps engine/service errors onto the response envelope.
func failSessionError(c *gin.Context, log zerolog.Logger, err error) {
	switch {
	case errors.Is(err, service.ErrSessionNotFound):
		response.Fail(c, http.StatusNotFound, response.ErrSessionNotFound)
	case errors.Is(err, engine.ErrNotStarted):
		response.Fail(c, http.StatusConflict, response.ErrSessionNotStarted)
	case errors.Is(err, engine.ErrAlreadyStarted):
		response.Fail(c, http.StatusConflict, response.ErrConflict)
	case errors.Is(err, engine.ErrAlreadySubmitted):
		response.Fail(c, http.StatusConflict, response.ErrSessionSubmitted)
	case errors.Is(err, engine.ErrUnknownQuestion):
		response.Fail(c, http.StatusBadRequest, response.ErrUnknownQuestion)
	case errors.Is(err, engine.ErrAnswerKind):
		response.Fail(c, http.StatusBadRequest, response.ErrAnswerShape)
	case errors.Is(err, engine.ErrInvalidPage):
		response.Fail(c, http.StatusBadRequest, response.ErrPageOutOfRange)
	case errors.Is(err, service.ErrBankEmpty):
		response.Fail(c, http.StatusServiceUnavailable, response.ErrBankEmpty)
	default:
		log.Error().Err(err).Msg("Portal request failed")
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
	}
}

// GetPaper godoc
// GET /api/v1/portal/paper
// Returns the participant-safe questionnaire.
func (h *PortalHandler) GetPaper(c *gin.Context) {
	if _, ok := sessionIDFromClaims(c); !ok {
		return
	}

	payload, err := h.bankService.GetPayload(c.Request.Context())
	if err != nil {
		failSessionError(c, h.log, err)
		return
	}
	response.Success(c, http.StatusOK, payload)
}

// StartSession godoc
// POST /api/v1/portal/start
// Validates the intro form and starts the countdown. Rejected profiles leave
// the session on the intro page with per-field messages.
func (h *PortalHandler) StartSession(c *gin.Context) {
	id, ok := sessionIDFromClaims(c)
	if !ok {
		return
	}

	var req model.StartSessionRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	profile := model.Profile{Name: req.Name, Email: req.Email, School: req.School}
	fields, err := h.sessionService.Start(c.Request.Context(), id, profile)
	if err != nil {
		if errors.Is(err, engine.ErrInvalidProfile) {
			response.FailWithFields(c, http.StatusUnprocessableEntity, response.ErrProfileValidation, fields)
			return
		}
		failSessionError(c, h.log, err)
		return
	}

	snap, err := h.sessionService.Snapshot(c.Request.Context(), id)
	if err != nil {
		failSessionError(c, h.log, err)
		return
	}
	response.Success(c, http.StatusOK, snap)
}

// GetState godoc
// GET /api/v1/portal/state
// Returns the session snapshot so a reloaded browser can restore answers,
// the current page, and the countdown.
func (h *PortalHandler) GetState(c *gin.Context) {
	id, ok := sessionIDFromClaims(c)
	if !ok {
		return
	}

	snap, err := h.sessionService.Snapshot(c.Request.Context(), id)
	if err != nil {
		failSessionError(c, h.log, err)
		return
	}
	response.Success(c, http.StatusOK, snap)
}

// RecordAnswer godoc
// POST /api/v1/portal/answers
// Merges one answer and returns the recomputed live summary.
func (h *PortalHandler) RecordAnswer(c *gin.Context) {
	id, ok := sessionIDFromClaims(c)
	if !ok {
		return
	}

	var req model.RecordAnswerRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	sum, err := h.sessionService.RecordAnswer(c.Request.Context(), id, req.QuestionID, req.Answer)
	if err != nil {
		failSessionError(c, h.log, err)
		return
	}
	response.Success(c, http.StatusOK, sum)
}

// Navigate godoc
// POST /api/v1/portal/navigate
// Applies a next/prev/jump action and returns the new page.
func (h *PortalHandler) Navigate(c *gin.Context) {
	id, ok := sessionIDFromClaims(c)
	if !ok {
		return
	}

	var req model.NavigateRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	page, err := h.sessionService.Navigate(c.Request.Context(), id, req.Action, req.Page)
	if err != nil {
		failSessionError(c, h.log, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"page": page})
}

// GetSummary godoc
// GET /api/v1/portal/summary
// Returns the live score summary for progress display.
func (h *PortalHandler) GetSummary(c *gin.Context) {
	id, ok := sessionIDFromClaims(c)
	if !ok {
		return
	}

	sum, err := h.sessionService.Summary(c.Request.Context(), id)
	if err != nil {
		failSessionError(c, h.log, err)
		return
	}
	response.Success(c, http.StatusOK, sum)
}

// EndSession godoc
// POST /api/v1/portal/end
// Submits the session on participant request and returns the finished record.
func (h *PortalHandler) EndSession(c *gin.Context) {
	id, ok := sessionIDFromClaims(c)
	if !ok {
		return
	}

	sub, err := h.sessionService.End(c.Request.Context(), id)
	if err != nil {
		failSessionError(c, h.log, err)
		return
	}
	response.Success(c, http.StatusOK, sub)
}
