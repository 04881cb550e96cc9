package handlers

import (
	"net/http"
	"strconv"

	"github.com/SAP-F-2025/exam-session-service/internal/events"
	"github.com/SAP-F-2025/exam-session-service/internal/repositories"
	"github.com/SAP-F-2025/exam-session-service/internal/services"
	"github.com/SAP-F-2025/exam-session-service/internal/utils"
	"github.com/gin-gonic/gin"
)

type ExamHandler struct {
	BaseHandler
	examService services.ExamService
}

func NewExamHandler(examService services.ExamService, publisher events.EventPublisher, logger utils.Logger) *ExamHandler {
	return &ExamHandler{
		BaseHandler: NewBaseHandler(logger, publisher),
		examService: examService,
	}
}

// CreateExam creates a draft exam
// @Router /exams [post]
func (h *ExamHandler) CreateExam(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	var req services.CreateExamRequest
	if !h.bindJSON(c, &req) {
		return
	}

	resp, err := h.examService.Create(c.Request.Context(), &req, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// @Router /exams/{id} [get]
func (h *ExamHandler) GetExam(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}

	resp, err := h.examService.GetByID(c.Request.Context(), id)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// ListExams supports subject_id, created_by and is_draft filters
// @Router /exams [get]
func (h *ExamHandler) ListExams(c *gin.Context) {
	page, size, offset := pagination(c)
	filters := repositories.ExamFilters{
		CreatedBy: c.Query("created_by"),
		Limit:     size,
		Offset:    offset,
	}

	subjectID, ok := parseOptionalUUIDQuery(c, "subject_id")
	if !ok {
		return
	}
	filters.SubjectID = subjectID

	if raw := c.Query("is_draft"); raw != "" {
		isDraft, err := strconv.ParseBool(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, ErrorResponse{Message: "Invalid is_draft", Details: err.Error()})
			return
		}
		filters.IsDraft = &isDraft
	}

	exams, total, err := h.examService.List(c.Request.Context(), filters)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, ListResponse{Items: exams, Total: total, Page: page, Size: size})
}

// AddQuestion attaches a catalog question to a draft exam
// @Router /exams/{id}/questions [post]
func (h *ExamHandler) AddQuestion(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}
	var req services.AddQuestionRequest
	if !h.bindJSON(c, &req) {
		return
	}

	h.LogRequest(c, "Adding question to exam", "exam_id", id, "question_id", req.QuestionID)
	eq, err := h.examService.AddQuestion(c.Request.Context(), id, &req, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, eq)
}

// @Router /exams/{id}/questions/{question_id} [delete]
func (h *ExamHandler) RemoveQuestion(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}
	questionID, ok := parseUUIDParam(c, "question_id")
	if !ok {
		return
	}

	if err := h.examService.RemoveQuestion(c.Request.Context(), id, questionID, userID); err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// @Router /exams/{id}/questions/reorder [put]
func (h *ExamHandler) ReorderQuestions(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}
	var req services.ReorderQuestionsRequest
	if !h.bindJSON(c, &req) {
		return
	}

	if err := h.examService.Reorder(c.Request.Context(), id, &req, userID); err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// AttachMatrix sets or clears the matrix of a draft exam
// @Router /exams/{id}/matrix [put]
func (h *ExamHandler) AttachMatrix(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}
	var req services.AttachMatrixRequest
	if !h.bindJSON(c, &req) {
		return
	}

	h.LogRequest(c, "Attaching matrix", "exam_id", id)
	exam, err := h.examService.AttachMatrix(c.Request.Context(), id, &req, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, exam)
}

// PublishExam freezes a draft, subject to the matrix gate
// @Router /exams/{id}/publish [post]
func (h *ExamHandler) PublishExam(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}

	result, err := h.examService.Publish(c.Request.Context(), id, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	h.publish(c, result.Events)
	c.JSON(http.StatusOK, result)
}

// @Router /exams/{id}/archive [post]
func (h *ExamHandler) ArchiveExam(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}

	result, err := h.examService.Archive(c.Request.Context(), id, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	h.publish(c, result.Events)
	c.JSON(http.StatusOK, result.Exam)
}
