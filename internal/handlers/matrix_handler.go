package handlers

import (
	"net/http"

	"github.com/SAP-F-2025/exam-session-service/internal/events"
	"github.com/SAP-F-2025/exam-session-service/internal/models"
	"github.com/SAP-F-2025/exam-session-service/internal/services"
	"github.com/SAP-F-2025/exam-session-service/internal/utils"
	"github.com/gin-gonic/gin"
)

type MatrixHandler struct {
	BaseHandler
	matrixService services.MatrixService
}

func NewMatrixHandler(matrixService services.MatrixService, publisher events.EventPublisher, logger utils.Logger) *MatrixHandler {
	return &MatrixHandler{
		BaseHandler:   NewBaseHandler(logger, publisher),
		matrixService: matrixService,
	}
}

// CreateMatrix creates a matrix with its requirements
// @Router /matrices [post]
func (h *MatrixHandler) CreateMatrix(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	var req services.CreateMatrixRequest
	if !h.bindJSON(c, &req) {
		return
	}

	resp, err := h.matrixService.Create(c.Request.Context(), &req, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// @Router /matrices/{id} [get]
func (h *MatrixHandler) GetMatrix(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}

	resp, err := h.matrixService.GetByID(c.Request.Context(), id)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// @Router /matrices/{id} [delete]
func (h *MatrixHandler) DeleteMatrix(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.matrixService.Delete(c.Request.Context(), id, userID); err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ReplaceRequirements swaps the full requirement set
// @Router /matrices/{id}/requirements [put]
func (h *MatrixHandler) ReplaceRequirements(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}
	var req services.ReplaceRequirementsRequest
	if !h.bindJSON(c, &req) {
		return
	}

	h.LogRequest(c, "Replacing matrix requirements", "matrix_id", id, "count", len(req.Requirements))
	resp, err := h.matrixService.ReplaceRequirements(c.Request.Context(), id, &req, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// @Router /matrices/{id}/requirements [delete]
func (h *MatrixHandler) RemoveRequirement(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}
	var req services.RemoveRequirementRequest
	if !h.bindJSON(c, &req) {
		return
	}

	if err := h.matrixService.RemoveRequirement(c.Request.Context(), id, &req, userID); err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// GetFulfillment reports how an exam meets the matrix
// @Router /matrices/{id}/fulfillment [get]
func (h *MatrixHandler) GetFulfillment(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}
	examID, ok := parseUUIDQuery(c, "exam_id")
	if !ok {
		return
	}

	report, err := h.matrixService.Fulfillment(c.Request.Context(), id, examID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}

// GetCandidates lists catalog questions that can still fill a requirement
// @Router /matrices/{id}/candidates [get]
func (h *MatrixHandler) GetCandidates(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}
	examID, ok := parseUUIDQuery(c, "exam_id")
	if !ok {
		return
	}
	topicID, ok := parseUUIDQuery(c, "topic_id")
	if !ok {
		return
	}
	level := models.CognitiveLevel(c.Query("cognitive_level"))

	questions, err := h.matrixService.Candidates(c.Request.Context(), id, examID, topicID, level)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"questions": questions, "count": len(questions)})
}
