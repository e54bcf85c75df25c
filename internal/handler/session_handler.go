package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/nirwairkumar/nkc-assess-backend/internal/middleware"
	"github.com/nirwairkumar/nkc-assess-backend/internal/model"
	"github.com/nirwairkumar/nkc-assess-backend/internal/repository"
	"github.com/nirwairkumar/nkc-assess-backend/internal/response"
	"github.com/nirwairkumar/nkc-assess-backend/internal/service"
	"github.com/nirwairkumar/nkc-assess-backend/internal/session"
	"github.com/nirwairkumar/nkc-assess-backend/internal/validator"
)

// SessionHandler exposes the session lifecycle over REST. All mutations
// are also reachable over the WebSocket stream; REST is the fallback
// path and the only way to open a session.
type SessionHandler struct {
	sessions *service.SessionService
}

// NewSessionHandler creates a new SessionHandler.
func NewSessionHandler(sessions *service.SessionService) *SessionHandler {
	return &SessionHandler{sessions: sessions}
}

// Open godoc
// POST /api/v1/tests/:test_id/session
// Opens (or reattaches to) the candidate's session for a test.
func (h *SessionHandler) Open(c *gin.Context) {
	id := middleware.GetIdentity(c)
	if id == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}
	testID, err := uuid.Parse(c.Param("test_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	var req model.OpenSessionRequest
	if c.Request.ContentLength > 0 {
		if fields := validator.Bind(c, &req); fields != nil {
			response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
			return
		}
	}

	view, err := h.sessions.Open(c.Request.Context(), testID, id.UserID, req.FormFields)
	if err != nil {
		failSession(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"session": view})
}

// Resume godoc
// POST /api/v1/tests/:test_id/session/resume
// Answers the resume prompt. Declining starts a fresh timer; declining is
// rejected while the previous tab is still alive.
func (h *SessionHandler) Resume(c *gin.Context) {
	id := middleware.GetIdentity(c)
	if id == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}
	testID, err := uuid.Parse(c.Param("test_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	var req model.ResumeRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	view, err := h.sessions.Resume(c.Request.Context(), testID, id.UserID, req.Accept)
	if err != nil {
		failSession(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"session": view})
}

// State godoc
// GET /api/v1/tests/:test_id/session
// Returns the current session state for reconciliation after a reconnect.
func (h *SessionHandler) State(c *gin.Context) {
	ctrl, ok := h.controller(c)
	if !ok {
		return
	}
	response.Success(c, http.StatusOK, gin.H{"state": ctrl.State()})
}

// Answer godoc
// PUT /api/v1/tests/:test_id/session/answers/:question_id
// Records or replaces the answer for one question.
func (h *SessionHandler) Answer(c *gin.Context) {
	ctrl, ok := h.controller(c)
	if !ok {
		return
	}

	var req model.AnswerRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	if err := ctrl.SelectAnswer(c.Request.Context(), c.Param("question_id"), req.Value); err != nil {
		failSession(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"status": "saved"})
}

// ClearAnswer godoc
// DELETE /api/v1/tests/:test_id/session/answers/:question_id
// Removes the stored answer, returning the question to unattempted.
func (h *SessionHandler) ClearAnswer(c *gin.Context) {
	ctrl, ok := h.controller(c)
	if !ok {
		return
	}
	if err := ctrl.ClearAnswer(c.Request.Context(), c.Param("question_id")); err != nil {
		failSession(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"status": "cleared"})
}

// ToggleReview godoc
// POST /api/v1/tests/:test_id/session/review/:question_id
// Toggles the marked-for-review flag on one question.
func (h *SessionHandler) ToggleReview(c *gin.Context) {
	ctrl, ok := h.controller(c)
	if !ok {
		return
	}
	if err := ctrl.ToggleMarkForReview(c.Request.Context(), c.Param("question_id")); err != nil {
		failSession(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"status": "toggled"})
}

// Navigate godoc
// POST /api/v1/tests/:test_id/session/navigate
// Moves the cursor and marks the target question visited.
func (h *SessionHandler) Navigate(c *gin.Context) {
	ctrl, ok := h.controller(c)
	if !ok {
		return
	}

	var req model.NavigateRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	if err := ctrl.Navigate(c.Request.Context(), req.Index); err != nil {
		failSession(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"status": "moved"})
}

// ReportViolation godoc
// POST /api/v1/tests/:test_id/session/violations
// Fallback violation report for when the WebSocket stream is down
// (e.g. sent via the beacon API on tab hide).
func (h *SessionHandler) ReportViolation(c *gin.Context) {
	ctrl, ok := h.controller(c)
	if !ok {
		return
	}

	var req model.ViolationRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	v := session.Violation{Kind: session.ViolationKind(req.Kind), At: time.Now()}
	if err := ctrl.HandleViolation(c.Request.Context(), v); err != nil {
		failSession(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"state": ctrl.State()})
}

// Submit godoc
// POST /api/v1/tests/:test_id/session/submit
// Finalizes and grades the session. On save failure the session stays
// live so the candidate can retry without losing answers.
func (h *SessionHandler) Submit(c *gin.Context) {
	id := middleware.GetIdentity(c)
	if id == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}
	ctrl, ok := h.controller(c)
	if !ok {
		return
	}

	if err := ctrl.Submit(c.Request.Context(), model.SubmitReasonUser); err != nil {
		failSession(c, err)
		return
	}

	attempt := ctrl.Attempt()
	if testID, err := uuid.Parse(c.Param("test_id")); err == nil {
		h.sessions.Release(testID, id.UserID)
	}

	response.Success(c, http.StatusOK, gin.H{"result": attempt.Result})
}

func (h *SessionHandler) controller(c *gin.Context) (*session.Controller, bool) {
	id := middleware.GetIdentity(c)
	if id == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return nil, false
	}
	testID, err := uuid.Parse(c.Param("test_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return nil, false
	}

	ctrl, err := h.sessions.Controller(testID, id.UserID)
	if err != nil {
		failSession(c, err)
		return nil, false
	}
	return ctrl, true
}

// failSession maps domain errors onto HTTP statuses and error codes.
func failSession(c *gin.Context, err error) {
	var subErr *session.SubmissionError

	switch {
	case errors.Is(err, repository.ErrTestNotFound):
		response.Fail(c, http.StatusNotFound, response.ErrNotFound)
	case errors.Is(err, service.ErrTestNotOpen):
		response.Fail(c, http.StatusConflict, response.ErrTestNotOpen)
	case errors.Is(err, service.ErrTestClosed):
		response.Fail(c, http.StatusConflict, response.ErrTestClosed)
	case errors.Is(err, service.ErrAttemptLimitReached):
		response.Fail(c, http.StatusConflict, response.ErrAttemptLimitReached)
	case errors.Is(err, service.ErrNoSession):
		response.Fail(c, http.StatusNotFound, response.ErrNoSession)
	case errors.Is(err, session.ErrUnknownQuestion):
		response.Fail(c, http.StatusNotFound, response.ErrUnknownQuestion)
	case errors.Is(err, session.ErrAnswerShape):
		response.Fail(c, http.StatusBadRequest, response.ErrAnswerShape)
	case errors.Is(err, session.ErrIndexOutOfRange):
		response.Fail(c, http.StatusBadRequest, response.ErrIndexOutOfRange)
	case errors.Is(err, session.ErrResumePending):
		response.Fail(c, http.StatusConflict, response.ErrResumePending)
	case errors.Is(err, session.ErrResumeMandatory):
		response.Fail(c, http.StatusConflict, response.ErrResumeMandatory)
	case errors.Is(err, session.ErrNotAwaitingResume):
		response.Fail(c, http.StatusConflict, response.ErrNotAwaitingResume)
	case errors.Is(err, session.ErrAlreadySubmitted):
		response.Fail(c, http.StatusConflict, response.ErrAlreadySubmitted)
	case errors.Is(err, session.ErrSubmitInFlight):
		response.Fail(c, http.StatusConflict, response.ErrSubmitInFlight)
	case errors.Is(err, session.ErrSessionNotLive):
		response.Fail(c, http.StatusConflict, response.ErrSessionNotLive)
	case errors.As(err, &subErr):
		response.Fail(c, http.StatusBadGateway, response.ErrSubmissionFailed)
	default:
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
	}
}
