package repositories

import (
	"context"

	"github.com/SAP-F-2025/exam-session-service/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type MatrixRepository interface {
	Create(ctx context.Context, tx *gorm.DB, matrix *models.Matrix) error
	GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*models.Matrix, error)
	Update(ctx context.Context, tx *gorm.DB, matrix *models.Matrix) error
	Delete(ctx context.Context, tx *gorm.DB, id uuid.UUID) error

	GetRequirements(ctx context.Context, tx *gorm.DB, matrixID uuid.UUID) ([]models.MatrixTopicRequirement, error)
	ReplaceRequirements(ctx context.Context, tx *gorm.DB, matrixID uuid.UUID, requirements []models.MatrixTopicRequirement) error
	RemoveRequirement(ctx context.Context, tx *gorm.DB, matrixID, topicID uuid.UUID, level models.CognitiveLevel) error
}
