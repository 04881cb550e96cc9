package postgres

import (
	"context"
	"fmt"

	"github.com/SAP-F-2025/exam-session-service/internal/models"
	"github.com/SAP-F-2025/exam-session-service/internal/repositories"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type StudentAnswerPostgreSQL struct {
	db *gorm.DB
}

func NewStudentAnswerPostgreSQL(db *gorm.DB) repositories.StudentAnswerRepository {
	return &StudentAnswerPostgreSQL{db: db}
}

func (s *StudentAnswerPostgreSQL) CreateBatch(ctx context.Context, tx *gorm.DB, answers []*models.StudentAnswer) error {
	if len(answers) == 0 {
		return nil
	}
	db := getDB(s.db, tx)
	return translateError(db.WithContext(ctx).CreateInBatches(answers, 100).Error)
}

func (s *StudentAnswerPostgreSQL) GetByAttempt(ctx context.Context, tx *gorm.DB, attemptID uuid.UUID) ([]*models.StudentAnswer, error) {
	db := getDB(s.db, tx)
	var answers []*models.StudentAnswer
	if err := db.WithContext(ctx).
		Where("attempt_id = ?", attemptID).
		Order("created_at ASC").
		Find(&answers).Error; err != nil {
		return nil, fmt.Errorf("failed to get student answers: %w", err)
	}
	return answers, nil
}

func (s *StudentAnswerPostgreSQL) Update(ctx context.Context, tx *gorm.DB, answer *models.StudentAnswer) error {
	db := getDB(s.db, tx)
	return translateError(db.WithContext(ctx).Save(answer).Error)
}
