package postgres

import (
	"context"
	"fmt"

	"github.com/SAP-F-2025/exam-session-service/internal/models"
	"github.com/SAP-F-2025/exam-session-service/internal/repositories"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ExamQuestionPostgreSQL struct {
	db *gorm.DB
}

func NewExamQuestionPostgreSQL(db *gorm.DB) repositories.ExamQuestionRepository {
	return &ExamQuestionPostgreSQL{db: db}
}

func (eq *ExamQuestionPostgreSQL) Add(ctx context.Context, tx *gorm.DB, examQuestion *models.ExamQuestion) error {
	db := getDB(eq.db, tx)
	return translateError(db.WithContext(ctx).Create(examQuestion).Error)
}

func (eq *ExamQuestionPostgreSQL) Remove(ctx context.Context, tx *gorm.DB, examID, questionID uuid.UUID) error {
	db := getDB(eq.db, tx)
	result := db.WithContext(ctx).
		Where("exam_id = ? AND question_id = ?", examID, questionID).
		Delete(&models.ExamQuestion{})
	if result.Error != nil {
		return fmt.Errorf("failed to remove question from exam: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return repositories.ErrNotFound
	}
	return nil
}

func (eq *ExamQuestionPostgreSQL) Exists(ctx context.Context, tx *gorm.DB, examID, questionID uuid.UUID) (bool, error) {
	db := getDB(eq.db, tx)
	var count int64
	if err := db.WithContext(ctx).
		Model(&models.ExamQuestion{}).
		Where("exam_id = ? AND question_id = ?", examID, questionID).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (eq *ExamQuestionPostgreSQL) IsOrderTaken(ctx context.Context, tx *gorm.DB, examID uuid.UUID, orderIndex int) (bool, error) {
	db := getDB(eq.db, tx)
	var count int64
	if err := db.WithContext(ctx).
		Model(&models.ExamQuestion{}).
		Where("exam_id = ? AND order_index = ?", examID, orderIndex).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (eq *ExamQuestionPostgreSQL) GetNextOrder(ctx context.Context, tx *gorm.DB, examID uuid.UUID) (int, error) {
	db := getDB(eq.db, tx)
	var next int
	if err := db.WithContext(ctx).
		Model(&models.ExamQuestion{}).
		Select("COALESCE(MAX(order_index), -1) + 1").
		Where("exam_id = ?", examID).
		Scan(&next).Error; err != nil {
		return 0, fmt.Errorf("failed to get next question order: %w", err)
	}
	return next, nil
}

func (eq *ExamQuestionPostgreSQL) GetByExam(ctx context.Context, tx *gorm.DB, examID uuid.UUID) ([]*models.ExamQuestion, error) {
	db := getDB(eq.db, tx)
	var rows []*models.ExamQuestion
	if err := db.WithContext(ctx).
		Where("exam_id = ?", examID).
		Order("order_index ASC").
		Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to get exam questions: %w", err)
	}
	return rows, nil
}

// Reorder first moves every index to a negative slot so the unique
// (exam_id, order_index) index never sees two rows with the same value.
func (eq *ExamQuestionPostgreSQL) Reorder(ctx context.Context, tx *gorm.DB, examID uuid.UUID, questionIDs []uuid.UUID) error {
	db := getDB(eq.db, tx)
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.ExamQuestion{}).
			Where("exam_id = ?", examID).
			Update("order_index", gorm.Expr("-order_index - 1")).Error; err != nil {
			return fmt.Errorf("failed to park question order: %w", err)
		}

		for i, questionID := range questionIDs {
			result := tx.Model(&models.ExamQuestion{}).
				Where("exam_id = ? AND question_id = ?", examID, questionID).
				Update("order_index", i)
			if result.Error != nil {
				return fmt.Errorf("failed to reorder question %s: %w", questionID, result.Error)
			}
			if result.RowsAffected == 0 {
				return fmt.Errorf("question %s: %w", questionID, repositories.ErrNotFound)
			}
		}
		return nil
	})
}
