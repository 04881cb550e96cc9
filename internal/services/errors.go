package services

import (
	"errors"
	"fmt"

	apperrors "github.com/SAP-F-2025/exam-session-service/internal/errors"
)

// ===== COMMON SERVICE ERRORS =====

var (
	ErrNotFound      = errors.New("resource not found")
	ErrConflict      = errors.New("resource conflict")
	ErrInvalidState  = errors.New("invalid state")
	ErrUnauthorized  = errors.New("unauthorized access")
	ErrInternalError = errors.New("internal server error")

	// Matrix errors
	ErrMatrixNotFound            = errors.New("matrix not found")
	ErrMatrixRequirementNotFound = errors.New("matrix requirement not found")

	// Exam errors
	ErrExamNotFound           = errors.New("exam not found")
	ErrQuestionNotFound       = errors.New("question not found")
	ErrQuestionNotInExam      = errors.New("question is not part of the exam")
	ErrQuestionAlreadyInExam  = errors.New("question already in exam")
	ErrQuestionDuplicateOrder = errors.New("question order already exists in exam")

	// Session errors
	ErrSessionNotFound = errors.New("exam session not found")

	// Attempt errors
	ErrAttemptNotFound       = errors.New("attempt not found")
	ErrAttemptNumberConflict = errors.New("attempt number already taken")
	ErrAttemptNotInProgress  = fmt.Errorf("%w: attempt is not in progress", ErrInvalidState)
	ErrAttemptNotSubmitted   = fmt.Errorf("%w: attempt is not submitted", ErrInvalidState)
	ErrAttemptTimeExpired    = fmt.Errorf("%w: attempt time has expired", ErrInvalidState)
)

// ===== CUSTOM ERROR TYPES =====

type ValidationError = apperrors.ValidationError
type ValidationErrors = apperrors.ValidationErrors

type BusinessRuleError struct {
	Rule    string                 `json:"rule"`
	Message string                 `json:"message"`
	Context map[string]interface{} `json:"context,omitempty"`
}

func (bre *BusinessRuleError) Error() string {
	return fmt.Sprintf("business rule violation (%s): %s", bre.Rule, bre.Message)
}

type PermissionError struct {
	UserID     string `json:"user_id"`
	ResourceID string `json:"resource_id"`
	Resource   string `json:"resource"`
	Action     string `json:"action"`
	Reason     string `json:"reason"`
}

func (pe *PermissionError) Error() string {
	return fmt.Sprintf("permission denied: user %s cannot %s %s %s - %s",
		pe.UserID, pe.Action, pe.Resource, pe.ResourceID, pe.Reason)
}

// ===== ERROR HELPERS =====

// NewValidationError returns a single field failure as ValidationErrors
func NewValidationError(field, message string, value interface{}) ValidationErrors {
	return ValidationErrors{*apperrors.NewValidationError(field, message, value)}
}

func NewBusinessRuleError(rule, message string, context map[string]interface{}) *BusinessRuleError {
	return &BusinessRuleError{
		Rule:    rule,
		Message: message,
		Context: context,
	}
}

func NewPermissionError(userID string, resourceID fmt.Stringer, resource, action, reason string) *PermissionError {
	return &PermissionError{
		UserID:     userID,
		ResourceID: resourceID.String(),
		Resource:   resource,
		Action:     action,
		Reason:     reason,
	}
}

func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound) ||
		errors.Is(err, ErrMatrixNotFound) ||
		errors.Is(err, ErrMatrixRequirementNotFound) ||
		errors.Is(err, ErrExamNotFound) ||
		errors.Is(err, ErrQuestionNotFound) ||
		errors.Is(err, ErrQuestionNotInExam) ||
		errors.Is(err, ErrSessionNotFound) ||
		errors.Is(err, ErrAttemptNotFound)
}

func IsPermission(err error) bool {
	var pe *PermissionError
	return errors.As(err, &pe) || errors.Is(err, ErrUnauthorized)
}

func IsValidation(err error) bool {
	var ve apperrors.ValidationErrors
	return errors.As(err, &ve)
}

func IsBusinessRule(err error) bool {
	var bre *BusinessRuleError
	return errors.As(err, &bre)
}

func IsInvalidState(err error) bool {
	return errors.Is(err, ErrInvalidState)
}

func IsConflict(err error) bool {
	return errors.Is(err, ErrConflict) ||
		errors.Is(err, ErrQuestionAlreadyInExam) ||
		errors.Is(err, ErrQuestionDuplicateOrder) ||
		errors.Is(err, ErrAttemptNumberConflict)
}
