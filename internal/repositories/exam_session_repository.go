package repositories

import (
	"context"

	"github.com/SAP-F-2025/exam-session-service/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ExamSessionRepository has no delete: sessions are only deactivated
type ExamSessionRepository interface {
	Create(ctx context.Context, tx *gorm.DB, session *models.ExamSession) error
	GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*models.ExamSession, error)
	Update(ctx context.Context, tx *gorm.DB, session *models.ExamSession) error
	List(ctx context.Context, tx *gorm.DB, filters ExamSessionFilters) ([]*models.ExamSession, int64, error)
}
