package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/emergency0committee-hub/eec-backend/internal/response"
	"github.com/emergency0committee-hub/eec-backend/internal/service"
)

// ResultsHandler serves finished-session records to staff.
type ResultsHandler struct {
	resultService *service.ResultService
	log           zerolog.Logger
}

// NewResultsHandler creates a new ResultsHandler.
func NewResultsHandler(resultService *service.ResultService, log zerolog.Logger) *ResultsHandler {
	return &ResultsHandler{
		resultService: resultService,
		log:           log.With().Str("component", "results_handler").Logger(),
	}
}

// ListResults godoc
// GET /api/v1/staff/results?page=1&per_page=20&school=...
// Pages through submissions, newest first.
func (h *ResultsHandler) ListResults(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	perPage, _ := strconv.Atoi(c.DefaultQuery("per_page", "20"))
	if page < 1 {
		page = 1
	}
	if perPage < 1 || perPage > 100 {
		perPage = 20
	}

	var school *string
	if s := c.Query("school"); s != "" {
		school = &s
	}

	subs, total, err := h.resultService.List(c.Request.Context(), page, perPage, school)
	if err != nil {
		h.log.Error().Err(err).Msg("Result listing failed")
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	totalPages := int(total) / perPage
	if int(total)%perPage > 0 {
		totalPages++
	}
	response.SuccessWithPagination(c, http.StatusOK, gin.H{"results": subs}, &response.Pagination{
		Page:       page,
		PerPage:    perPage,
		TotalItems: int(total),
		TotalPages: totalPages,
	})
}

// GetResult godoc
// GET /api/v1/staff/results/:id
// Returns one finished-session record.
func (h *ResultsHandler) GetResult(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	sub, err := h.resultService.GetByID(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrSubmissionNotFound) {
			response.Fail(c, http.StatusNotFound, response.ErrNotFound)
			return
		}
		h.log.Error().Err(err).Msg("Result lookup failed")
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, sub)
}

// GetDashboard godoc
// GET /api/v1/staff/dashboard
// Returns aggregate counters for the staff overview.
func (h *ResultsHandler) GetDashboard(c *gin.Context) {
	stats, err := h.resultService.Dashboard(c.Request.Context())
	if err != nil {
		h.log.Error().Err(err).Msg("Dashboard aggregation failed")
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}
	response.Success(c, http.StatusOK, stats)
}
