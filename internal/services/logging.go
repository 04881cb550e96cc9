package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// ServiceLogger records operation outcomes with a level chosen by error kind
type ServiceLogger struct {
	logger *slog.Logger
}

func NewServiceLogger(logger *slog.Logger, component string) *ServiceLogger {
	return &ServiceLogger{
		logger: logger.With("service", "exam-session-service", "component", component),
	}
}

// ===== OPERATION LOGGING =====

func (l *ServiceLogger) LogOperation(ctx context.Context, operation, userID, resourceID, resourceType string, duration time.Duration, err error) {
	level, status := classify(err)

	attrs := []slog.Attr{
		slog.String("operation", operation),
		slog.String("user_id", userID),
		slog.String("resource_id", resourceID),
		slog.String("resource_type", resourceType),
		slog.String("status", status),
		slog.Duration("duration", duration),
	}

	if err != nil {
		attrs = append(attrs, slog.String("error", err.Error()))
		if ve, ok := err.(ValidationErrors); ok {
			attrs = append(attrs, slog.Int("validation_errors_count", len(ve)))
		} else if bre, ok := err.(*BusinessRuleError); ok {
			attrs = append(attrs, slog.String("business_rule", bre.Rule))
		}
	}

	l.logger.LogAttrs(ctx, level, fmt.Sprintf("%s operation %s", operation, status), attrs...)
}

func classify(err error) (slog.Level, string) {
	switch {
	case err == nil:
		return slog.LevelInfo, "success"
	case IsValidation(err):
		return slog.LevelWarn, "validation_error"
	case IsBusinessRule(err):
		return slog.LevelWarn, "business_rule_violation"
	case IsInvalidState(err):
		return slog.LevelWarn, "invalid_state"
	case IsConflict(err):
		return slog.LevelWarn, "conflict"
	case IsPermission(err):
		return slog.LevelWarn, "permission_denied"
	case IsNotFound(err):
		return slog.LevelInfo, "not_found"
	default:
		return slog.LevelError, "error"
	}
}

func (l *ServiceLogger) LogValidationError(ctx context.Context, operation, userID string, validationErrors ValidationErrors) {
	attrs := []slog.Attr{
		slog.String("operation", operation),
		slog.String("user_id", userID),
		slog.Int("error_count", len(validationErrors)),
	}

	for i, err := range validationErrors {
		if i == 5 {
			break
		}
		attrs = append(attrs, slog.Group(fmt.Sprintf("error_%d", i+1),
			slog.String("field", err.Field),
			slog.String("message", err.Message),
		))
	}

	l.logger.LogAttrs(ctx, slog.LevelWarn, "Validation failed", attrs...)
}

func (l *ServiceLogger) LogBusinessRuleViolation(ctx context.Context, operation, userID string, rule *BusinessRuleError) {
	attrs := []slog.Attr{
		slog.String("operation", operation),
		slog.String("user_id", userID),
		slog.String("rule", rule.Rule),
		slog.String("message", rule.Message),
	}
	for key, value := range rule.Context {
		attrs = append(attrs, slog.Any("context_"+key, value))
	}

	l.logger.LogAttrs(ctx, slog.LevelWarn, "Business rule violation", attrs...)
}

// ===== AUDIT LOGGING =====

type AuditEventType string

const (
	AuditEventCreate     AuditEventType = "create"
	AuditEventUpdate     AuditEventType = "update"
	AuditEventDelete     AuditEventType = "delete"
	AuditEventTransition AuditEventType = "transition"
)

type AuditEvent struct {
	Type         AuditEventType `json:"type"`
	UserID       string         `json:"user_id"`
	ResourceID   string         `json:"resource_id"`
	ResourceType string         `json:"resource_type"`
	Action       string         `json:"action"`
	OldValue     interface{}    `json:"old_value,omitempty"`
	NewValue     interface{}    `json:"new_value,omitempty"`
	Timestamp    time.Time      `json:"timestamp"`
}

func (l *ServiceLogger) LogAuditEvent(ctx context.Context, event AuditEvent) {
	attrs := []slog.Attr{
		slog.String("event_type", string(event.Type)),
		slog.String("user_id", event.UserID),
		slog.String("resource_id", event.ResourceID),
		slog.String("resource_type", event.ResourceType),
		slog.String("action", event.Action),
		slog.Time("timestamp", event.Timestamp),
	}
	if event.OldValue != nil {
		attrs = append(attrs, slog.Any("old_value", event.OldValue))
	}
	if event.NewValue != nil {
		attrs = append(attrs, slog.Any("new_value", event.NewValue))
	}

	l.logger.LogAttrs(ctx, slog.LevelInfo, fmt.Sprintf("Audit: %s %s", event.Action, event.ResourceType), attrs...)
}

// ===== CONTEXTUAL LOGGER =====

// ContextualLogger times one operation and logs its result
type ContextualLogger struct {
	logger    *ServiceLogger
	operation string
	userID    string
	startTime time.Time
	ctx       context.Context
}

func (l *ServiceLogger) WithOperation(ctx context.Context, operation, userID string) *ContextualLogger {
	return &ContextualLogger{
		logger:    l,
		operation: operation,
		userID:    userID,
		startTime: time.Now(),
		ctx:       ctx,
	}
}

func (cl *ContextualLogger) LogResult(resourceID fmt.Stringer, resourceType string, err error) {
	cl.logger.LogOperation(cl.ctx, cl.operation, cl.userID, resourceID.String(), resourceType, time.Since(cl.startTime), err)

	if err == nil {
		return
	}
	if ve, ok := err.(ValidationErrors); ok {
		cl.logger.LogValidationError(cl.ctx, cl.operation, cl.userID, ve)
	} else if bre, ok := err.(*BusinessRuleError); ok {
		cl.logger.LogBusinessRuleViolation(cl.ctx, cl.operation, cl.userID, bre)
	}
}

func (cl *ContextualLogger) LogAudit(eventType AuditEventType, resourceID fmt.Stringer, resourceType string, oldValue, newValue interface{}) {
	cl.logger.LogAuditEvent(cl.ctx, AuditEvent{
		Type:         eventType,
		UserID:       cl.userID,
		ResourceID:   resourceID.String(),
		ResourceType: resourceType,
		Action:       cl.operation,
		OldValue:     oldValue,
		NewValue:     newValue,
		Timestamp:    time.Now(),
	})
}
