package postgres

import (
	"context"
	"fmt"

	"github.com/SAP-F-2025/exam-session-service/internal/models"
	"github.com/SAP-F-2025/exam-session-service/internal/repositories"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type MatrixPostgreSQL struct {
	db *gorm.DB
}

func NewMatrixPostgreSQL(db *gorm.DB) repositories.MatrixRepository {
	return &MatrixPostgreSQL{db: db}
}

func (m *MatrixPostgreSQL) Create(ctx context.Context, tx *gorm.DB, matrix *models.Matrix) error {
	db := getDB(m.db, tx)
	return translateError(db.WithContext(ctx).Create(matrix).Error)
}

func (m *MatrixPostgreSQL) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*models.Matrix, error) {
	db := getDB(m.db, tx)
	var matrix models.Matrix
	if err := db.WithContext(ctx).First(&matrix, "id = ?", id).Error; err != nil {
		return nil, translateError(err)
	}
	return &matrix, nil
}

func (m *MatrixPostgreSQL) Update(ctx context.Context, tx *gorm.DB, matrix *models.Matrix) error {
	db := getDB(m.db, tx)
	return translateError(db.WithContext(ctx).Save(matrix).Error)
}

func (m *MatrixPostgreSQL) Delete(ctx context.Context, tx *gorm.DB, id uuid.UUID) error {
	db := getDB(m.db, tx)
	result := db.WithContext(ctx).Delete(&models.Matrix{}, "id = ?", id)
	if result.Error != nil {
		return translateError(result.Error)
	}
	if result.RowsAffected == 0 {
		return repositories.ErrNotFound
	}
	return nil
}

func (m *MatrixPostgreSQL) GetRequirements(ctx context.Context, tx *gorm.DB, matrixID uuid.UUID) ([]models.MatrixTopicRequirement, error) {
	db := getDB(m.db, tx)
	var requirements []models.MatrixTopicRequirement
	if err := db.WithContext(ctx).
		Where("matrix_id = ?", matrixID).
		Order("topic_id ASC").
		Find(&requirements).Error; err != nil {
		return nil, fmt.Errorf("failed to get matrix requirements: %w", err)
	}
	return requirements, nil
}

// ReplaceRequirements swaps the whole requirement set. Callers wrap it in a
// transaction so a failed insert keeps the previous set.
func (m *MatrixPostgreSQL) ReplaceRequirements(ctx context.Context, tx *gorm.DB, matrixID uuid.UUID, requirements []models.MatrixTopicRequirement) error {
	db := getDB(m.db, tx).WithContext(ctx)

	if err := db.Where("matrix_id = ?", matrixID).Delete(&models.MatrixTopicRequirement{}).Error; err != nil {
		return fmt.Errorf("failed to clear matrix requirements: %w", err)
	}
	if len(requirements) == 0 {
		return nil
	}

	rows := make([]models.MatrixTopicRequirement, len(requirements))
	for i, r := range requirements {
		r.MatrixID = matrixID
		rows[i] = r
	}
	return translateError(db.Create(&rows).Error)
}

func (m *MatrixPostgreSQL) RemoveRequirement(ctx context.Context, tx *gorm.DB, matrixID, topicID uuid.UUID, level models.CognitiveLevel) error {
	db := getDB(m.db, tx)
	result := db.WithContext(ctx).
		Where("matrix_id = ? AND topic_id = ? AND cognitive_level = ?", matrixID, topicID, level).
		Delete(&models.MatrixTopicRequirement{})
	if result.Error != nil {
		return fmt.Errorf("failed to remove matrix requirement: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return repositories.ErrNotFound
	}
	return nil
}
