package postgres

import (
	"context"
	"fmt"

	"github.com/SAP-F-2025/exam-session-service/internal/models"
	"github.com/SAP-F-2025/exam-session-service/internal/repositories"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type AttemptPostgreSQL struct {
	db *gorm.DB
}

func NewAttemptPostgreSQL(db *gorm.DB) repositories.AttemptRepository {
	return &AttemptPostgreSQL{db: db}
}

func (a *AttemptPostgreSQL) Create(ctx context.Context, tx *gorm.DB, attempt *models.StudentExamAttempt) error {
	db := getDB(a.db, tx)
	return translateError(db.WithContext(ctx).Create(attempt).Error)
}

func (a *AttemptPostgreSQL) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*models.StudentExamAttempt, error) {
	db := getDB(a.db, tx)
	var attempt models.StudentExamAttempt
	if err := db.WithContext(ctx).First(&attempt, "id = ?", id).Error; err != nil {
		return nil, translateError(err)
	}
	return &attempt, nil
}

func (a *AttemptPostgreSQL) CountBySessionAndStudent(ctx context.Context, tx *gorm.DB, sessionID uuid.UUID, studentID string) (int, error) {
	db := getDB(a.db, tx)
	var count int64
	if err := db.WithContext(ctx).
		Model(&models.StudentExamAttempt{}).
		Where("exam_session_id = ? AND student_id = ?", sessionID, studentID).
		Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count attempts: %w", err)
	}
	return int(count), nil
}

func (a *AttemptPostgreSQL) ListBySessionAndStudent(ctx context.Context, tx *gorm.DB, sessionID uuid.UUID, studentID string) ([]*models.StudentExamAttempt, error) {
	db := getDB(a.db, tx)
	var attempts []*models.StudentExamAttempt
	if err := db.WithContext(ctx).
		Where("exam_session_id = ? AND student_id = ?", sessionID, studentID).
		Order("attempt_number ASC").
		Find(&attempts).Error; err != nil {
		return nil, fmt.Errorf("failed to list attempts: %w", err)
	}
	return attempts, nil
}

func (a *AttemptPostgreSQL) ListBySession(ctx context.Context, tx *gorm.DB, sessionID uuid.UUID) ([]*models.StudentExamAttempt, error) {
	db := getDB(a.db, tx)
	var attempts []*models.StudentExamAttempt
	if err := db.WithContext(ctx).
		Where("exam_session_id = ?", sessionID).
		Order("student_id ASC, attempt_number ASC").
		Find(&attempts).Error; err != nil {
		return nil, fmt.Errorf("failed to list session attempts: %w", err)
	}
	return attempts, nil
}

func (a *AttemptPostgreSQL) TransitionStatus(ctx context.Context, tx *gorm.DB, attempt *models.StudentExamAttempt, from models.AttemptStatus) error {
	db := getDB(a.db, tx)
	result := db.WithContext(ctx).
		Model(&models.StudentExamAttempt{}).
		Where("id = ? AND status = ?", attempt.ID, from).
		Updates(map[string]interface{}{
			"status":       attempt.Status,
			"score":        attempt.Score,
			"total_points": attempt.TotalPoints,
			"submitted_at": attempt.SubmittedAt,
		})
	if result.Error != nil {
		return fmt.Errorf("failed to update attempt status: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return repositories.ErrStatusChanged
	}
	return nil
}
