package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/SAP-F-2025/exam-session-service/internal/events"
	"github.com/SAP-F-2025/exam-session-service/internal/services"
	"github.com/SAP-F-2025/exam-session-service/internal/utils"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// ===== COMMON RESPONSE STRUCTURES =====

// ErrorResponse represents an error response
type ErrorResponse struct {
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
	Code    string      `json:"code,omitempty"`
}

// ListResponse wraps a page of items with the total count
type ListResponse struct {
	Items interface{} `json:"items"`
	Total int64       `json:"total"`
	Page  int         `json:"page"`
	Size  int         `json:"size"`
}

// ===== BASE HANDLER STRUCT =====

// BaseHandler provides request logging, error mapping and event publishing
type BaseHandler struct {
	logger    utils.Logger
	publisher events.EventPublisher
}

func NewBaseHandler(logger utils.Logger, publisher events.EventPublisher) BaseHandler {
	return BaseHandler{
		logger:    logger,
		publisher: publisher,
	}
}

// LogRequest logs incoming HTTP requests with context information
func (h *BaseHandler) LogRequest(c *gin.Context, message string, additionalFields ...interface{}) {
	fields := []interface{}{
		"method", c.Request.Method,
		"path", c.Request.URL.Path,
		"request_id", c.Writer.Header().Get("X-Request-ID"),
		"user_id", c.GetString(userIDKey),
	}
	fields = append(fields, additionalFields...)

	h.logger.Info(message, fields...)
}

// LogError logs error details with context information
func (h *BaseHandler) LogError(c *gin.Context, err error, message string, additionalFields ...interface{}) {
	fields := []interface{}{
		"request_id", c.Writer.Header().Get("X-Request-ID"),
		"user_id", c.GetString(userIDKey),
		"method", c.Request.Method,
		"path", c.Request.URL.Path,
	}
	fields = append(fields, additionalFields...)

	h.logger.LogError(err, message, fields...)
}

// publish sends events after the state change they describe has been stored.
// A failed publish is logged and never fails the request.
func (h *BaseHandler) publish(c *gin.Context, evts []*events.NotificationEvent) {
	if h.publisher == nil || len(evts) == 0 {
		return
	}
	ctx := context.WithoutCancel(c.Request.Context())
	if err := events.PublishAll(ctx, h.publisher, evts); err != nil {
		h.LogError(c, err, "Failed to publish events", "count", len(evts))
	}
}

// handleServiceError maps the service error taxonomy onto HTTP statuses
func (h *BaseHandler) handleServiceError(c *gin.Context, err error) {
	var validationErrors services.ValidationErrors
	if errors.As(err, &validationErrors) {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Validation failed",
			Details: validationErrors,
			Code:    "validation_error",
		})
		return
	}

	var businessRuleError *services.BusinessRuleError
	if errors.As(err, &businessRuleError) {
		c.JSON(http.StatusUnprocessableEntity, ErrorResponse{
			Message: businessRuleError.Message,
			Details: map[string]interface{}{
				"rule":    businessRuleError.Rule,
				"context": businessRuleError.Context,
			},
			Code: "business_rule_violation",
		})
		return
	}

	var permissionError *services.PermissionError
	if errors.As(err, &permissionError) {
		c.JSON(http.StatusForbidden, ErrorResponse{
			Message: "Access denied",
			Details: map[string]interface{}{
				"resource": permissionError.Resource,
				"action":   permissionError.Action,
				"reason":   permissionError.Reason,
			},
			Code: "permission_denied",
		})
		return
	}

	switch {
	case services.IsNotFound(err):
		c.JSON(http.StatusNotFound, ErrorResponse{Message: err.Error(), Code: "not_found"})
	case services.IsInvalidState(err):
		c.JSON(http.StatusConflict, ErrorResponse{Message: err.Error(), Code: "invalid_state"})
	case services.IsConflict(err):
		c.JSON(http.StatusConflict, ErrorResponse{Message: err.Error(), Code: "conflict"})
	case errors.Is(err, services.ErrUnauthorized):
		c.JSON(http.StatusUnauthorized, ErrorResponse{Message: "User not authenticated"})
	default:
		h.LogError(c, err, "Unhandled service error")
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Message: "Internal server error",
		})
	}
}

// ===== REQUEST HELPERS =====

func (h *BaseHandler) bindJSON(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return false
	}
	return true
}

func parseUUIDParam(c *gin.Context, param string) (uuid.UUID, bool) {
	id, err := uuid.Parse(strings.TrimSpace(c.Param(param)))
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid " + param,
			Details: err.Error(),
		})
		return uuid.Nil, false
	}
	return id, true
}

func parseUUIDQuery(c *gin.Context, param string) (uuid.UUID, bool) {
	id, err := uuid.Parse(strings.TrimSpace(c.Query(param)))
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid " + param,
			Details: err.Error(),
		})
		return uuid.Nil, false
	}
	return id, true
}

func parseOptionalUUIDQuery(c *gin.Context, param string) (*uuid.UUID, bool) {
	if c.Query(param) == "" {
		return nil, true
	}
	id, ok := parseUUIDQuery(c, param)
	if !ok {
		return nil, false
	}
	return &id, true
}

func parseIntQuery(c *gin.Context, param string, defaultValue int) int {
	valueStr := c.Query(param)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil || value < 1 {
		return defaultValue
	}
	return value
}

// pagination reads page/size query params, size capped at 100
func pagination(c *gin.Context) (page, size, offset int) {
	page = parseIntQuery(c, "page", 1)
	size = parseIntQuery(c, "size", 20)
	if size > 100 {
		size = 100
	}
	return page, size, (page - 1) * size
}

// HealthCheck reports liveness
func HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "exam-session-service",
	})
}
