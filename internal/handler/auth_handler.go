package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/emergency0committee-hub/eec-backend/internal/middleware"
	"github.com/emergency0committee-hub/eec-backend/internal/model"
	"github.com/emergency0committee-hub/eec-backend/internal/repository"
	"github.com/emergency0committee-hub/eec-backend/internal/response"
	"github.com/emergency0committee-hub/eec-backend/internal/service"
	"github.com/emergency0committee-hub/eec-backend/internal/validator"
)

// AuthHandler handles staff authentication endpoints.
type AuthHandler struct {
	authService *service.AuthService
	staffRepo   *repository.StaffRepository
	log         zerolog.Logger
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(authService *service.AuthService, staffRepo *repository.StaffRepository, log zerolog.Logger) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		staffRepo:   staffRepo,
		log:         log.With().Str("component", "auth_handler").Logger(),
	}
}

// StaffLogin godoc
// POST /api/v1/auth/staff/login
// Validates email + password and returns a staff JWT.
func (h *AuthHandler) StaffLogin(c *gin.Context) {
	var req model.StaffLoginRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	staff, err := h.staffRepo.GetByEmail(c.Request.Context(), req.Email)
	if err != nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrInvalidCredentials)
		return
	}

	if err := h.authService.CheckPassword(staff.PasswordHash, req.Password); err != nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrInvalidCredentials)
		return
	}

	token, err := h.authService.GenerateStaffToken(staff.ID)
	if err != nil {
		h.log.Error().Err(err).Msg("Token issuance failed")
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, model.StaffLoginResponse{
		Token: token,
		Staff: *staff,
	})
}

// GetStaffProfile godoc
// GET /api/v1/auth/staff/me
// Returns the profile of the currently authenticated staff account.
func (h *AuthHandler) GetStaffProfile(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	staff, err := h.staffRepo.GetByID(c.Request.Context(), claims.StaffID)
	if err != nil {
		response.Fail(c, http.StatusNotFound, response.ErrNotFound)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"staff": staff})
}
