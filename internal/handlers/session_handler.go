package handlers

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	"github.com/SAP-F-2025/exam-session-service/internal/events"
	"github.com/SAP-F-2025/exam-session-service/internal/repositories"
	"github.com/SAP-F-2025/exam-session-service/internal/services"
	"github.com/SAP-F-2025/exam-session-service/internal/utils"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

var exportContentTypes = map[services.ExportFormat]string{
	services.ExportXLSX: "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
	services.ExportCSV:  "text/csv",
}

type SessionHandler struct {
	BaseHandler
	sessionService services.ExamSessionService
	attemptService services.AttemptService
	resultsService services.ResultsService
}

func NewSessionHandler(
	sessionService services.ExamSessionService,
	attemptService services.AttemptService,
	resultsService services.ResultsService,
	publisher events.EventPublisher,
	logger utils.Logger,
) *SessionHandler {
	return &SessionHandler{
		BaseHandler:    NewBaseHandler(logger, publisher),
		sessionService: sessionService,
		attemptService: attemptService,
		resultsService: resultsService,
	}
}

// CreateSession schedules a session for a published exam
// @Router /sessions [post]
func (h *SessionHandler) CreateSession(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	var req services.CreateSessionRequest
	if !h.bindJSON(c, &req) {
		return
	}

	result, err := h.sessionService.Create(c.Request.Context(), &req, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	h.publish(c, result.Events)
	c.JSON(http.StatusCreated, result.Session)
}

// @Router /sessions [get]
func (h *SessionHandler) ListSessions(c *gin.Context) {
	page, size, offset := pagination(c)
	filters := repositories.ExamSessionFilters{Limit: size, Offset: offset}

	examID, ok := parseOptionalUUIDQuery(c, "exam_id")
	if !ok {
		return
	}
	classID, ok := parseOptionalUUIDQuery(c, "class_id")
	if !ok {
		return
	}
	filters.ExamID = examID
	filters.ClassID = classID

	if raw := c.Query("active_only"); raw != "" {
		activeOnly, err := strconv.ParseBool(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, ErrorResponse{Message: "Invalid active_only", Details: err.Error()})
			return
		}
		filters.ActiveOnly = activeOnly
	}

	sessions, total, err := h.sessionService.List(c.Request.Context(), filters)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, ListResponse{Items: sessions, Total: total, Page: page, Size: size})
}

// @Router /sessions/{id} [get]
func (h *SessionHandler) GetSession(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}

	session, err := h.sessionService.GetByID(c.Request.Context(), id)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, session)
}

// @Router /sessions/{id} [put]
func (h *SessionHandler) UpdateSession(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}
	var req services.UpdateSessionRequest
	if !h.bindJSON(c, &req) {
		return
	}

	result, err := h.sessionService.Update(c.Request.Context(), id, &req, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	h.publish(c, result.Events)
	c.JSON(http.StatusOK, result.Session)
}

// @Router /sessions/{id}/activate [post]
func (h *SessionHandler) ActivateSession(c *gin.Context) {
	h.toggle(c, h.sessionService.Activate)
}

// @Router /sessions/{id}/deactivate [post]
func (h *SessionHandler) DeactivateSession(c *gin.Context) {
	h.toggle(c, h.sessionService.Deactivate)
}

func (h *SessionHandler) toggle(c *gin.Context, fn func(ctx context.Context, id uuid.UUID, userID string) (*services.SessionResult, error)) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}

	result, err := fn(c.Request.Context(), id, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	h.publish(c, result.Events)
	c.JSON(http.StatusOK, result.Session)
}

// GetEligibility tells the caller whether they may start another attempt
// @Router /sessions/{id}/eligibility [get]
func (h *SessionHandler) GetEligibility(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}

	eligibility, err := h.sessionService.Eligibility(c.Request.Context(), id, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, eligibility)
}

// StartAttempt opens a new attempt for the caller
// @Router /sessions/{id}/attempts [post]
func (h *SessionHandler) StartAttempt(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}

	h.LogRequest(c, "Starting attempt", "session_id", id)
	result, err := h.attemptService.Start(c.Request.Context(), id, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	h.publish(c, result.Events)
	c.JSON(http.StatusCreated, result.Attempt)
}

// ListMyAttempts returns the caller's attempts in the session
// @Router /sessions/{id}/attempts/mine [get]
func (h *SessionHandler) ListMyAttempts(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}

	attempts, err := h.attemptService.ListMine(c.Request.Context(), id, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"attempts": attempts})
}

// @Router /sessions/{id}/results [get]
func (h *SessionHandler) GetResults(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}

	results, err := h.resultsService.SessionResults(c.Request.Context(), id, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, results)
}

// ExportResults streams the per-attempt results as xlsx or csv
// @Router /sessions/{id}/results/export [get]
func (h *SessionHandler) ExportResults(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}
	format := services.ExportFormat(c.DefaultQuery("format", string(services.ExportXLSX)))

	buf, err := h.resultsService.Export(c.Request.Context(), id, format, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	filename := fmt.Sprintf("session_%s_results.%s", id, format)
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, exportContentTypes[format], buf.Bytes())
}
