package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/licensa/dlexam-backend/internal/middleware"
	"github.com/licensa/dlexam-backend/internal/model"
	"github.com/licensa/dlexam-backend/internal/monitoring"
	"github.com/licensa/dlexam-backend/internal/response"
	"github.com/licensa/dlexam-backend/internal/service"
	"github.com/licensa/dlexam-backend/internal/validator"
)

// TestSessionHandler handles the single-stage written test endpoints.
type TestSessionHandler struct {
	sessions *service.SessionService
}

// NewTestSessionHandler creates a new TestSessionHandler.
func NewTestSessionHandler(sessions *service.SessionService) *TestSessionHandler {
	return &TestSessionHandler{sessions: sessions}
}

// actor resolves the caller's identity from JWT claims. Returns nil claims
// when they are missing or malformed, which the middleware normally prevents.
func actor(c *gin.Context) (uuid.UUID, *service.Claims) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		return uuid.Nil, nil
	}
	id, err := uuid.Parse(claims.UserID)
	if err != nil {
		return uuid.Nil, nil
	}
	return id, claims
}

// viewer returns the ownership filter for reads: candidates see only their
// own sessions, staff see everything.
func viewer(c *gin.Context) (uuid.UUID, bool) {
	id, claims := actor(c)
	if claims == nil {
		return uuid.Nil, false
	}
	if claims.Role.IsStaff() {
		return uuid.Nil, true
	}
	return id, true
}

// Start godoc
// POST /api/v1/tests/sessions
// Starts a session, or returns the caller's existing active one unchanged.
// Staff holding tests:start_for_candidate may start on a candidate's behalf.
func (h *TestSessionHandler) Start(c *gin.Context) {
	actorID, claims := actor(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	var req model.StartSessionRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	candidateID := actorID
	if req.CandidateID != nil && *req.CandidateID != actorID {
		if !claims.HasPermission(model.PermissionTestsStartForCandidate) {
			response.Fail(c, http.StatusForbidden, response.ErrPermissionDenied)
			return
		}
		candidateID = *req.CandidateID
	}

	session, err := h.sessions.Start(c.Request.Context(), candidateID, req.TestConfigID)
	if err != nil {
		failDomain(c, err)
		return
	}

	monitoring.SessionsStarted.WithLabelValues("single").Inc()
	response.Success(c, http.StatusCreated, gin.H{"session": session})
}

// GetSession godoc
// GET /api/v1/tests/sessions/:session_id
// Returns session state; a deadline-passed active session flips to expired
// on this read.
func (h *TestSessionHandler) GetSession(c *gin.Context) {
	viewerID, ok := viewer(c)
	if !ok {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	sessionID, err := uuid.Parse(c.Param("session_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	session, err := h.sessions.GetSession(c.Request.Context(), viewerID, sessionID)
	if err != nil {
		failDomain(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"session": session})
}

// GetQuestion godoc
// GET /api/v1/tests/sessions/:session_id/questions/:index
// Serves one snapshot question by 0-based index, with answers redacted.
func (h *TestSessionHandler) GetQuestion(c *gin.Context) {
	viewerID, ok := viewer(c)
	if !ok {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	sessionID, err := uuid.Parse(c.Param("session_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}
	index, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	question, err := h.sessions.GetQuestion(c.Request.Context(), viewerID, sessionID, index)
	if err != nil {
		failDomain(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"question": question})
}

// SaveAnswer godoc
// POST /api/v1/tests/sessions/:session_id/answers
// Upserts one answer and/or toggles a bookmark. Idempotent.
func (h *TestSessionHandler) SaveAnswer(c *gin.Context) {
	viewerID, ok := viewer(c)
	if !ok {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	sessionID, err := uuid.Parse(c.Param("session_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	var req model.SaveAnswerRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	if err := h.sessions.SaveAnswer(c.Request.Context(), viewerID, sessionID, req); err != nil {
		failDomain(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"status": "saved"})
}

// Submit godoc
// POST /api/v1/tests/sessions/:session_id/submit
// Scores the session against its frozen snapshot and completes it. Only the
// first submit wins.
func (h *TestSessionHandler) Submit(c *gin.Context) {
	viewerID, ok := viewer(c)
	if !ok {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	sessionID, err := uuid.Parse(c.Param("session_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	var req model.SubmitRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	result, err := h.sessions.Submit(c.Request.Context(), viewerID, sessionID, req)
	if err != nil {
		failDomain(c, err)
		return
	}

	monitoring.SessionsSubmitted.WithLabelValues(monitoring.Outcome(result.Passed)).Inc()
	response.Success(c, http.StatusOK, gin.H{"result": result})
}

// ExtendTime godoc
// POST /api/v1/tests/sessions/:session_id/extend-time
// Pushes the deadline forward; requires tests:extend_time.
func (h *TestSessionHandler) ExtendTime(c *gin.Context) {
	actorID, claims := actor(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	sessionID, err := uuid.Parse(c.Param("session_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	var req model.ExtendTimeRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	session, err := h.sessions.ExtendTime(c.Request.Context(), actorID, sessionID, req)
	if err != nil {
		failDomain(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"session": session})
}

// ResetTimeRequest is the payload for restoring a session's full time.
type ResetTimeRequest struct {
	Reason string `json:"reason" binding:"omitempty,max=500"`
}

// ResetTime godoc
// POST /api/v1/tests/sessions/:session_id/reset-time
// Restores the full configured time from now; requires tests:extend_time.
func (h *TestSessionHandler) ResetTime(c *gin.Context) {
	actorID, claims := actor(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	sessionID, err := uuid.Parse(c.Param("session_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	var req ResetTimeRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	session, err := h.sessions.ResetTime(c.Request.Context(), actorID, sessionID, req.Reason)
	if err != nil {
		failDomain(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"session": session})
}

// GetSessionResult godoc
// GET /api/v1/tests/sessions/:session_id/result
// Returns the immutable result of a submitted session.
func (h *TestSessionHandler) GetSessionResult(c *gin.Context) {
	viewerID, ok := viewer(c)
	if !ok {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	sessionID, err := uuid.Parse(c.Param("session_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	result, err := h.sessions.GetSessionResult(c.Request.Context(), viewerID, sessionID)
	if err != nil {
		failDomain(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"result": result})
}

// GetResult godoc
// GET /api/v1/tests/results/:result_id
// Staff read of one result; requires tests:read_results.
func (h *TestSessionHandler) GetResult(c *gin.Context) {
	resultID, err := uuid.Parse(c.Param("result_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	result, err := h.sessions.GetResult(c.Request.Context(), resultID)
	if err != nil {
		failDomain(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"result": result})
}

// ListResults godoc
// GET /api/v1/tests/results?candidate_id=&config_id=&limit=
// Staff listing of results, newest first; requires tests:read_results.
func (h *TestSessionHandler) ListResults(c *gin.Context) {
	var candidateID, configID *uuid.UUID
	if raw := c.Query("candidate_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
			return
		}
		candidateID = &id
	}
	if raw := c.Query("config_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
			return
		}
		configID = &id
	}
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "100"))

	results, err := h.sessions.ListResults(c.Request.Context(), candidateID, configID, limit)
	if err != nil {
		failDomain(c, err)
		return
	}
	if results == nil {
		results = []model.ExamResult{}
	}

	response.Success(c, http.StatusOK, gin.H{"results": results})
}
