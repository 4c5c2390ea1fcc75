package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/licensa/dlexam-backend/internal/response"
	"github.com/licensa/dlexam-backend/internal/service"
)

// failDomain maps a service error to its HTTP status and API error code.
// Unrecognized errors become a 500 without leaking internals.
func failDomain(c *gin.Context, err error) {
	var insufficient *service.InsufficientQuestionsError
	if errors.As(err, &insufficient) {
		// The shortfall counts travel with the error body so the caller can
		// tell how short the bank is.
		response.FailWithFields(c, http.StatusConflict, response.ErrInsufficientQuestions, map[string]string{
			"required":  strconv.Itoa(insufficient.Required),
			"available": strconv.Itoa(insufficient.Available),
		})
		return
	}

	switch {
	case errors.Is(err, service.ErrSessionNotFound),
		errors.Is(err, service.ErrQuestionNotFound),
		errors.Is(err, service.ErrResultNotFound),
		errors.Is(err, service.ErrCandidateNotFound):
		response.Fail(c, http.StatusNotFound, response.ErrNotFound)
	case errors.Is(err, service.ErrConfigNotFound):
		response.Fail(c, http.StatusNotFound, response.ErrConfigNotFound)
	case errors.Is(err, service.ErrCandidateNotApproved):
		response.Fail(c, http.StatusForbidden, response.ErrCandidateNotApproved)
	case errors.Is(err, service.ErrTestAccessDenied):
		response.Fail(c, http.StatusForbidden, response.ErrTestAccessDenied)
	case errors.Is(err, service.ErrNotSessionOwner):
		response.Fail(c, http.StatusForbidden, response.ErrForbidden)
	case errors.Is(err, service.ErrSessionNotActive):
		response.Fail(c, http.StatusConflict, response.ErrSessionNotActive)
	case errors.Is(err, service.ErrSessionExpired):
		response.Fail(c, http.StatusConflict, response.ErrSessionExpired)
	case errors.Is(err, service.ErrStageMismatch):
		response.Fail(c, http.StatusConflict, response.ErrStageMismatch)
	case errors.Is(err, service.ErrInvalidStage):
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidStage)
	case errors.Is(err, service.ErrOfficerNotAssigned):
		response.Fail(c, http.StatusForbidden, response.ErrOfficerNotAssigned)
	case errors.Is(err, service.ErrOfficerNotFound):
		response.Fail(c, http.StatusNotFound, response.ErrNotFound)
	case errors.Is(err, service.ErrWrittenStagePending):
		response.Fail(c, http.StatusConflict, response.ErrWrittenStagePending)
	default:
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
	}
}
