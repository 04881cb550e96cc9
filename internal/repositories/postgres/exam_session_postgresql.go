package postgres

import (
	"context"
	"fmt"

	"github.com/SAP-F-2025/exam-session-service/internal/models"
	"github.com/SAP-F-2025/exam-session-service/internal/repositories"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ExamSessionPostgreSQL struct {
	db *gorm.DB
}

func NewExamSessionPostgreSQL(db *gorm.DB) repositories.ExamSessionRepository {
	return &ExamSessionPostgreSQL{db: db}
}

func (s *ExamSessionPostgreSQL) Create(ctx context.Context, tx *gorm.DB, session *models.ExamSession) error {
	db := getDB(s.db, tx)
	return translateError(db.WithContext(ctx).Create(session).Error)
}

func (s *ExamSessionPostgreSQL) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*models.ExamSession, error) {
	db := getDB(s.db, tx)
	var session models.ExamSession
	if err := db.WithContext(ctx).First(&session, "id = ?", id).Error; err != nil {
		return nil, translateError(err)
	}
	return &session, nil
}

func (s *ExamSessionPostgreSQL) Update(ctx context.Context, tx *gorm.DB, session *models.ExamSession) error {
	db := getDB(s.db, tx)
	return translateError(db.WithContext(ctx).Save(session).Error)
}

func (s *ExamSessionPostgreSQL) List(ctx context.Context, tx *gorm.DB, filters repositories.ExamSessionFilters) ([]*models.ExamSession, int64, error) {
	db := getDB(s.db, tx)
	var sessions []*models.ExamSession
	var total int64

	query := db.WithContext(ctx).Model(&models.ExamSession{})
	if filters.ExamID != nil {
		query = query.Where("exam_id = ?", *filters.ExamID)
	}
	if filters.ClassID != nil {
		query = query.Where("class_id = ?", *filters.ClassID)
	}
	if filters.ActiveOnly {
		query = query.Where("is_active = ?", true)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count exam sessions: %w", err)
	}
	if err := paginate(query.Order("start_time DESC"), filters.Limit, filters.Offset).Find(&sessions).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list exam sessions: %w", err)
	}
	return sessions, total, nil
}
