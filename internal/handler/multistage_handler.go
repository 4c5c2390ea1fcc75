package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/licensa/dlexam-backend/internal/model"
	"github.com/licensa/dlexam-backend/internal/monitoring"
	"github.com/licensa/dlexam-backend/internal/response"
	"github.com/licensa/dlexam-backend/internal/service"
	"github.com/licensa/dlexam-backend/internal/validator"
)

// MultiStageHandler handles the written → yard → road test endpoints.
type MultiStageHandler struct {
	stages *service.StageService
}

// NewMultiStageHandler creates a new MultiStageHandler.
func NewMultiStageHandler(stages *service.StageService) *MultiStageHandler {
	return &MultiStageHandler{stages: stages}
}

// Start godoc
// POST /api/v1/multi-stage-tests/sessions
// Starts a multi-stage session at the written stage, or returns the
// caller's existing open one unchanged.
func (h *MultiStageHandler) Start(c *gin.Context) {
	actorID, claims := actor(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	var req model.StartMultiStageRequest
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

	session, err := h.stages.Start(c.Request.Context(), candidateID, req)
	if err != nil {
		failDomain(c, err)
		return
	}

	monitoring.SessionsStarted.WithLabelValues("multi_stage").Inc()
	response.Success(c, http.StatusCreated, gin.H{"session": session})
}

// GetSession godoc
// GET /api/v1/multi-stage-tests/sessions/:session_id
func (h *MultiStageHandler) GetSession(c *gin.Context) {
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

	session, err := h.stages.GetSession(c.Request.Context(), viewerID, sessionID)
	if err != nil {
		failDomain(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"session": session})
}

// StartWrittenTest godoc
// POST /api/v1/multi-stage-tests/sessions/:session_id/written/start
// Starts (or resumes) the timed written test driving the written stage.
func (h *MultiStageHandler) StartWrittenTest(c *gin.Context) {
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

	writtenSession, err := h.stages.StartWrittenTest(c.Request.Context(), viewerID, sessionID)
	if err != nil {
		failDomain(c, err)
		return
	}

	response.Success(c, http.StatusCreated, gin.H{"session": writtenSession})
}

// SubmitWrittenTest godoc
// POST /api/v1/multi-stage-tests/sessions/:session_id/written/submit
// Finalizes the written test; the session advances to yard on a pass and
// fails otherwise.
func (h *MultiStageHandler) SubmitWrittenTest(c *gin.Context) {
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

	result, err := h.stages.SubmitWrittenTest(c.Request.Context(), viewerID, sessionID, req)
	if err != nil {
		failDomain(c, err)
		return
	}

	monitoring.SessionsSubmitted.WithLabelValues(monitoring.Outcome(result.Passed)).Inc()
	response.Success(c, http.StatusOK, gin.H{"result": result})
}

// EvaluateStage godoc
// POST /api/v1/multi-stage-tests/evaluate-stage
// Officer rubric scoring of a yard or road stage; requires stages:evaluate.
func (h *MultiStageHandler) EvaluateStage(c *gin.Context) {
	officerID, claims := actor(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	var req model.EvaluateStageRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	result, err := h.stages.EvaluateStage(c.Request.Context(), officerID, req)
	if err != nil {
		failDomain(c, err)
		return
	}

	monitoring.StageEvaluations.WithLabelValues(string(result.Stage), monitoring.Outcome(result.Passed)).Inc()
	response.Success(c, http.StatusOK, gin.H{"result": result})
}

// AssignOfficer godoc
// POST /api/v1/multi-stage-tests/assign-officer
// Assigns an officer to a practical stage; requires stages:assign_officer.
func (h *MultiStageHandler) AssignOfficer(c *gin.Context) {
	managerID, claims := actor(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	var req model.AssignOfficerRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	session, err := h.stages.AssignOfficer(c.Request.Context(), managerID, req)
	if err != nil {
		failDomain(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"session": session})
}

// ListMyAssignments godoc
// GET /api/v1/multi-stage-tests/my-assignments
// Open sessions where the calling officer is assigned to a practical stage.
func (h *MultiStageHandler) ListMyAssignments(c *gin.Context) {
	officerID, claims := actor(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	sessions, err := h.stages.ListMyAssignments(c.Request.Context(), officerID)
	if err != nil {
		failDomain(c, err)
		return
	}
	if sessions == nil {
		sessions = []model.MultiStageSession{}
	}

	response.Success(c, http.StatusOK, gin.H{"sessions": sessions})
}

// ListStageResults godoc
// GET /api/v1/multi-stage-tests/sessions/:session_id/stage-results
// All recorded evaluation attempts for a session.
func (h *MultiStageHandler) ListStageResults(c *gin.Context) {
	sessionID, err := uuid.Parse(c.Param("session_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	results, err := h.stages.ListStageResults(c.Request.Context(), sessionID)
	if err != nil {
		failDomain(c, err)
		return
	}
	if results == nil {
		results = []model.StageResult{}
	}

	response.Success(c, http.StatusOK, gin.H{"results": results})
}

// ListCriteria godoc
// GET /api/v1/evaluation-criteria?stage=yard|road
// Active criteria for a practical stage, for the officer scoring UI.
func (h *MultiStageHandler) ListCriteria(c *gin.Context) {
	criteria, err := h.stages.ListCriteria(c.Request.Context(), c.Query("stage"))
	if err != nil {
		failDomain(c, err)
		return
	}
	if criteria == nil {
		criteria = []model.EvaluationCriterion{}
	}

	response.Success(c, http.StatusOK, gin.H{"criteria": criteria})
}
