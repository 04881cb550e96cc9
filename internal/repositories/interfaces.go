package repositories

import (
	"context"
	"errors"

	"github.com/SAP-F-2025/exam-session-service/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	// ErrNotFound is returned when the addressed row does not exist
	ErrNotFound = errors.New("record not found")
	// ErrDuplicateKey is returned when a unique constraint rejects a write
	ErrDuplicateKey = errors.New("duplicate key")
	// ErrStatusChanged is returned when a guarded status update matched no row
	ErrStatusChanged = errors.New("status changed concurrently")
)

func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrNotFound)
}

func IsDuplicateKeyError(err error) bool {
	return errors.Is(err, ErrDuplicateKey)
}

// Repository groups the per-entity repositories and owns transactions
type Repository interface {
	Question() QuestionRepository
	Matrix() MatrixRepository
	Exam() ExamRepository
	ExamQuestion() ExamQuestionRepository
	ExamSession() ExamSessionRepository
	Attempt() AttemptRepository
	StudentAnswer() StudentAnswerRepository

	// WithTransaction runs fn in one database transaction. Repositories called
	// with the given tx take part in it; a nil tx means no transaction.
	WithTransaction(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// ===== SHARED FILTER STRUCTS =====

type QuestionFilters struct {
	TopicID        *uuid.UUID             `json:"topic_id"`
	CognitiveLevel *models.CognitiveLevel `json:"cognitive_level"`
	Type           *models.QuestionType   `json:"type"`
	ExcludeIDs     []uuid.UUID            `json:"exclude_ids"`
	Limit          int                    `json:"limit"`
	Offset         int                    `json:"offset"`
}

type ExamFilters struct {
	SubjectID *uuid.UUID `json:"subject_id"`
	CreatedBy string     `json:"created_by"`
	IsDraft   *bool      `json:"is_draft"`
	Limit     int        `json:"limit"`
	Offset    int        `json:"offset"`
}

type ExamSessionFilters struct {
	ExamID     *uuid.UUID `json:"exam_id"`
	ClassID    *uuid.UUID `json:"class_id"`
	ActiveOnly bool       `json:"active_only"`
	Limit      int        `json:"limit"`
	Offset     int        `json:"offset"`
}
