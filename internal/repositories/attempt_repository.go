package repositories

import (
	"context"

	"github.com/SAP-F-2025/exam-session-service/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// AttemptRepository stores student exam attempts
type AttemptRepository interface {
	// Create returns ErrDuplicateKey when the (session, student, attempt number)
	// slot is already taken
	Create(ctx context.Context, tx *gorm.DB, attempt *models.StudentExamAttempt) error
	GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*models.StudentExamAttempt, error)

	// CountBySessionAndStudent counts attempts of every status
	CountBySessionAndStudent(ctx context.Context, tx *gorm.DB, sessionID uuid.UUID, studentID string) (int, error)
	ListBySessionAndStudent(ctx context.Context, tx *gorm.DB, sessionID uuid.UUID, studentID string) ([]*models.StudentExamAttempt, error)
	// ListBySession orders by student then attempt number
	ListBySession(ctx context.Context, tx *gorm.DB, sessionID uuid.UUID) ([]*models.StudentExamAttempt, error)

	// TransitionStatus persists status, score, total points and submitted at,
	// but only while the stored status still equals from. Otherwise it returns
	// ErrStatusChanged.
	TransitionStatus(ctx context.Context, tx *gorm.DB, attempt *models.StudentExamAttempt, from models.AttemptStatus) error
}

type StudentAnswerRepository interface {
	CreateBatch(ctx context.Context, tx *gorm.DB, answers []*models.StudentAnswer) error
	GetByAttempt(ctx context.Context, tx *gorm.DB, attemptID uuid.UUID) ([]*models.StudentAnswer, error)
	Update(ctx context.Context, tx *gorm.DB, answer *models.StudentAnswer) error
}
