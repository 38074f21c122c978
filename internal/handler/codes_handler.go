package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/emergency0committee-hub/eec-backend/internal/model"
	"github.com/emergency0committee-hub/eec-backend/internal/response"
	"github.com/emergency0committee-hub/eec-backend/internal/service"
	"github.com/emergency0committee-hub/eec-backend/internal/validator"
)

// CodesHandler handles staff access-code management.
type CodesHandler struct {
	accessService *service.AccessService
	log           zerolog.Logger
}

// NewCodesHandler creates a new CodesHandler.
func NewCodesHandler(accessService *service.AccessService, log zerolog.Logger) *CodesHandler {
	return &CodesHandler{
		accessService: accessService,
		log:           log.With().Str("component", "codes_handler").Logger(),
	}
}

// GenerateCodes godoc
// POST /api/v1/staff/codes
// Issues a batch of one-time access codes.
func (h *CodesHandler) GenerateCodes(c *gin.Context) {
	var req model.GenerateCodesRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	codes, err := h.accessService.GenerateBatch(c.Request.Context(), req.Count)
	if err != nil {
		h.log.Error().Err(err).Msg("Code generation failed")
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusCreated, gin.H{"codes": codes})
}

// ListCodes godoc
// GET /api/v1/staff/codes?page=1&per_page=50&unused=true
// Pages through issued one-time codes.
func (h *CodesHandler) ListCodes(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	perPage, _ := strconv.Atoi(c.DefaultQuery("per_page", "50"))
	if page < 1 {
		page = 1
	}
	if perPage < 1 || perPage > 200 {
		perPage = 50
	}
	unusedOnly := c.Query("unused") == "true"

	codes, total, err := h.accessService.ListCodes(c.Request.Context(), page, perPage, unusedOnly)
	if err != nil {
		h.log.Error().Err(err).Msg("Code listing failed")
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	totalPages := int(total) / perPage
	if int(total)%perPage > 0 {
		totalPages++
	}
	response.SuccessWithPagination(c, http.StatusOK, gin.H{"codes": codes}, &response.Pagination{
		Page:       page,
		PerPage:    perPage,
		TotalItems: int(total),
		TotalPages: totalPages,
	})
}

// GetRotating godoc
// GET /api/v1/staff/codes/rotating
// Returns the rotating code for the current bucket plus the next one, so
// staff can write it on the board before the rotation.
func (h *CodesHandler) GetRotating(c *gin.Context) {
	current, next, err := h.accessService.CurrentRotating()
	if err != nil {
		if errors.Is(err, service.ErrRotatingDisabled) {
			response.Fail(c, http.StatusNotFound, response.ErrRotatingDisabled)
			return
		}
		h.log.Error().Err(err).Msg("Rotating code lookup failed")
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"current": current,
		"next":    next,
	})
}
