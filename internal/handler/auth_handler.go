package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
	"github.com/licensa/dlexam-backend/internal/repository"
	"github.com/licensa/dlexam-backend/internal/response"
	"github.com/licensa/dlexam-backend/internal/service"
	"github.com/licensa/dlexam-backend/internal/validator"
)

// AuthHandler handles candidate and staff login.
type AuthHandler struct {
	authService *service.AuthService
	candidates  *repository.CandidateRepository
	users       *repository.UserRepository
	log         zerolog.Logger
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(
	authService *service.AuthService,
	candidates *repository.CandidateRepository,
	users *repository.UserRepository,
	log zerolog.Logger,
) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		candidates:  candidates,
		users:       users,
		log:         log.With().Str("component", "auth_handler").Logger(),
	}
}

// LoginRequest is the shared login payload.
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
}

// CandidateLogin godoc
// POST /api/v1/auth/candidate/login
// Issues a candidate JWT; a second concurrent login is rejected.
func (h *AuthHandler) CandidateLogin(c *gin.Context) {
	var req LoginRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	candidate, hash, err := h.candidates.GetByEmail(c.Request.Context(), req.Email)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			response.Fail(c, http.StatusUnauthorized, response.ErrInvalidCredentials)
			return
		}
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	if err := h.authService.CheckPassword(hash, req.Password); err != nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrInvalidCredentials)
		return
	}

	token, err := h.authService.GenerateCandidateToken(c.Request.Context(), candidate.ID)
	if err != nil {
		if errors.Is(err, service.ErrLoginAlreadyActive) {
			response.Fail(c, http.StatusConflict, response.ErrSessionActive)
			return
		}
		h.log.Error().Err(err).Msg("generate candidate token")
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"token":     token,
		"candidate": candidate,
	})
}

// StaffLogin godoc
// POST /api/v1/auth/staff/login
// Issues a staff JWT with the role's permission codes embedded.
func (h *AuthHandler) StaffLogin(c *gin.Context) {
	var req LoginRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	user, err := h.users.GetByEmail(c.Request.Context(), req.Email)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			response.Fail(c, http.StatusUnauthorized, response.ErrInvalidCredentials)
			return
		}
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	if err := h.authService.CheckPassword(user.PasswordHash, req.Password); err != nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrInvalidCredentials)
		return
	}

	token, err := h.authService.GenerateStaffToken(user.ID, user.Role)
	if err != nil {
		h.log.Error().Err(err).Msg("generate staff token")
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"token": token,
		"user":  user,
	})
}

// ResetCandidateLogin godoc
// POST /api/v1/staff/candidates/:candidate_id/reset-login
// Clears a candidate's single-device login so they can sign in again.
func (h *AuthHandler) ResetCandidateLogin(c *gin.Context) {
	candidateID := c.Param("candidate_id")
	if candidateID == "" {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	if err := h.authService.ResetCandidateLogin(c.Request.Context(), candidateID); err != nil {
		h.log.Error().Err(err).Str("candidate_id", candidateID).Msg("reset candidate login")
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"status": "reset"})
}
