package postgres

import (
	"context"
	"fmt"

	"github.com/SAP-F-2025/exam-session-service/internal/models"
	"github.com/SAP-F-2025/exam-session-service/internal/repositories"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type QuestionPostgreSQL struct {
	db *gorm.DB
}

func NewQuestionPostgreSQL(db *gorm.DB) repositories.QuestionRepository {
	return &QuestionPostgreSQL{db: db}
}

func preloadAnswers(db *gorm.DB) *gorm.DB {
	return db.Preload("Answers", func(db *gorm.DB) *gorm.DB {
		return db.Order("position ASC")
	})
}

func (q *QuestionPostgreSQL) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*models.Question, error) {
	db := getDB(q.db, tx)
	var question models.Question
	if err := preloadAnswers(db.WithContext(ctx)).First(&question, "id = ?", id).Error; err != nil {
		return nil, translateError(err)
	}
	return &question, nil
}

func (q *QuestionPostgreSQL) GetByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) ([]*models.Question, error) {
	if len(ids) == 0 {
		return []*models.Question{}, nil
	}

	db := getDB(q.db, tx)
	var found []*models.Question
	if err := preloadAnswers(db.WithContext(ctx)).Where("id IN ?", ids).Find(&found).Error; err != nil {
		return nil, fmt.Errorf("failed to get questions: %w", err)
	}

	byID := make(map[uuid.UUID]*models.Question, len(found))
	for _, question := range found {
		byID[question.ID] = question
	}

	ordered := make([]*models.Question, 0, len(ids))
	for _, id := range ids {
		question, ok := byID[id]
		if !ok {
			return nil, fmt.Errorf("question %s: %w", id, repositories.ErrNotFound)
		}
		ordered = append(ordered, question)
	}
	return ordered, nil
}

func (q *QuestionPostgreSQL) List(ctx context.Context, tx *gorm.DB, filters repositories.QuestionFilters) ([]*models.Question, int64, error) {
	db := getDB(q.db, tx)
	var questions []*models.Question
	var total int64

	query := db.WithContext(ctx).Model(&models.Question{})
	if filters.TopicID != nil {
		query = query.Where("topic_id = ?", *filters.TopicID)
	}
	if filters.CognitiveLevel != nil {
		query = query.Where("cognitive_level = ?", *filters.CognitiveLevel)
	}
	if filters.Type != nil {
		query = query.Where("type = ?", *filters.Type)
	}
	if len(filters.ExcludeIDs) > 0 {
		query = query.Where("id NOT IN ?", filters.ExcludeIDs)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count questions: %w", err)
	}

	query = paginate(query.Order("created_at ASC"), filters.Limit, filters.Offset)
	if err := preloadAnswers(query).Find(&questions).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list questions: %w", err)
	}
	return questions, total, nil
}
