package handlers

import (
	"net/http"

	"github.com/SAP-F-2025/exam-session-service/internal/events"
	"github.com/SAP-F-2025/exam-session-service/internal/services"
	"github.com/SAP-F-2025/exam-session-service/internal/utils"
	"github.com/gin-gonic/gin"
)

type AttemptHandler struct {
	BaseHandler
	attemptService services.AttemptService
}

func NewAttemptHandler(attemptService services.AttemptService, publisher events.EventPublisher, logger utils.Logger) *AttemptHandler {
	return &AttemptHandler{
		BaseHandler:    NewBaseHandler(logger, publisher),
		attemptService: attemptService,
	}
}

// @Router /attempts/{id} [get]
func (h *AttemptHandler) GetAttempt(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}

	resp, err := h.attemptService.GetByID(c.Request.Context(), id, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// GetPaper returns the composed questions without answer keys
// @Router /attempts/{id}/paper [get]
func (h *AttemptHandler) GetPaper(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}

	paper, err := h.attemptService.GetPaper(c.Request.Context(), id, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, paper)
}

// SubmitAttempt scores and closes an attempt. A submit that arrives after the
// window still publishes the timeout it caused.
// @Router /attempts/{id}/submit [post]
func (h *AttemptHandler) SubmitAttempt(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}
	var req services.SubmitAttemptRequest
	if !h.bindJSON(c, &req) {
		return
	}

	h.LogRequest(c, "Submitting attempt", "attempt_id", id, "answers", len(req.Answers))
	result, err := h.attemptService.Submit(c.Request.Context(), id, &req, userID)
	if result != nil {
		h.publish(c, result.Events)
	}
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, result.Attempt)
}

// @Router /attempts/{id}/timeout [post]
func (h *AttemptHandler) TimeoutAttempt(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}

	result, err := h.attemptService.MarkTimedOut(c.Request.Context(), id, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	h.publish(c, result.Events)
	c.JSON(http.StatusOK, result.Attempt)
}

// GradeAttempt records manual grades on a submitted attempt
// @Router /attempts/{id}/grade [post]
func (h *AttemptHandler) GradeAttempt(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}
	var req services.GradeAttemptRequest
	if !h.bindJSON(c, &req) {
		return
	}

	result, err := h.attemptService.MarkGraded(c.Request.Context(), id, &req, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	h.publish(c, result.Events)
	c.JSON(http.StatusOK, result.Attempt)
}
