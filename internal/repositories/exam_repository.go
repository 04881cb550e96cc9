package repositories

import (
	"context"

	"github.com/SAP-F-2025/exam-session-service/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ExamRepository interface {
	Create(ctx context.Context, tx *gorm.DB, exam *models.Exam) error
	GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*models.Exam, error)
	Update(ctx context.Context, tx *gorm.DB, exam *models.Exam) error
	List(ctx context.Context, tx *gorm.DB, filters ExamFilters) ([]*models.Exam, int64, error)
}

// ExamQuestionRepository manages the exam to question association
type ExamQuestionRepository interface {
	Add(ctx context.Context, tx *gorm.DB, examQuestion *models.ExamQuestion) error
	Remove(ctx context.Context, tx *gorm.DB, examID, questionID uuid.UUID) error
	Exists(ctx context.Context, tx *gorm.DB, examID, questionID uuid.UUID) (bool, error)
	IsOrderTaken(ctx context.Context, tx *gorm.DB, examID uuid.UUID, orderIndex int) (bool, error)
	// GetNextOrder returns max(order_index)+1, or 0 for an exam without questions
	GetNextOrder(ctx context.Context, tx *gorm.DB, examID uuid.UUID) (int, error)
	// GetByExam returns the association rows ordered by order_index
	GetByExam(ctx context.Context, tx *gorm.DB, examID uuid.UUID) ([]*models.ExamQuestion, error)
	// Reorder assigns order_index 0..n-1 following questionIDs
	Reorder(ctx context.Context, tx *gorm.DB, examID uuid.UUID, questionIDs []uuid.UUID) error
}
