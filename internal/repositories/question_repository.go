package repositories

import (
	"context"

	"github.com/SAP-F-2025/exam-session-service/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// QuestionRepository reads the question catalog. Questions are always loaded
// with their answers.
type QuestionRepository interface {
	GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*models.Question, error)
	// GetByIDs returns the questions in the order of ids. A missing id is ErrNotFound.
	GetByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) ([]*models.Question, error)
	List(ctx context.Context, tx *gorm.DB, filters QuestionFilters) ([]*models.Question, int64, error)
}
