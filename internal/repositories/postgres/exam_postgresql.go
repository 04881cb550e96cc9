package postgres

import (
	"context"
	"fmt"

	"github.com/SAP-F-2025/exam-session-service/internal/models"
	"github.com/SAP-F-2025/exam-session-service/internal/repositories"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ExamPostgreSQL struct {
	db *gorm.DB
}

func NewExamPostgreSQL(db *gorm.DB) repositories.ExamRepository {
	return &ExamPostgreSQL{db: db}
}

func (e *ExamPostgreSQL) Create(ctx context.Context, tx *gorm.DB, exam *models.Exam) error {
	db := getDB(e.db, tx)
	return translateError(db.WithContext(ctx).Create(exam).Error)
}

func (e *ExamPostgreSQL) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*models.Exam, error) {
	db := getDB(e.db, tx)
	var exam models.Exam
	if err := db.WithContext(ctx).First(&exam, "id = ?", id).Error; err != nil {
		return nil, translateError(err)
	}
	return &exam, nil
}

func (e *ExamPostgreSQL) Update(ctx context.Context, tx *gorm.DB, exam *models.Exam) error {
	db := getDB(e.db, tx)
	return translateError(db.WithContext(ctx).Save(exam).Error)
}

func (e *ExamPostgreSQL) List(ctx context.Context, tx *gorm.DB, filters repositories.ExamFilters) ([]*models.Exam, int64, error) {
	db := getDB(e.db, tx)
	var exams []*models.Exam
	var total int64

	query := db.WithContext(ctx).Model(&models.Exam{})
	if filters.SubjectID != nil {
		query = query.Where("subject_id = ?", *filters.SubjectID)
	}
	if filters.CreatedBy != "" {
		query = query.Where("created_by = ?", filters.CreatedBy)
	}
	if filters.IsDraft != nil {
		query = query.Where("is_draft = ?", *filters.IsDraft)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count exams: %w", err)
	}
	if err := paginate(query.Order("created_at DESC"), filters.Limit, filters.Offset).Find(&exams).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list exams: %w", err)
	}
	return exams, total, nil
}
