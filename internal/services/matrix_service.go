package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/SAP-F-2025/exam-session-service/internal/matrix"
	"github.com/SAP-F-2025/exam-session-service/internal/models"
	"github.com/SAP-F-2025/exam-session-service/internal/repositories"
	"github.com/SAP-F-2025/exam-session-service/internal/validator"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type matrixService struct {
	repo      repositories.Repository
	logger    *slog.Logger
	opLog     *ServiceLogger
	validator *validator.Validator
}

func NewMatrixService(repo repositories.Repository, logger *slog.Logger, validator *validator.Validator) MatrixService {
	return &matrixService{
		repo:      repo,
		logger:    logger,
		opLog:     NewServiceLogger(logger, "matrix"),
		validator: validator,
	}
}

func (s *matrixService) Create(ctx context.Context, req *CreateMatrixRequest, userID string) (resp *MatrixResponse, err error) {
	op := s.opLog.WithOperation(ctx, "create_matrix", userID)
	defer func() { op.LogResult(uuid.Nil, "matrix", err) }()

	if err = s.validator.Validate(req); err != nil {
		return nil, err
	}
	requirements := toRequirements(req.Requirements)
	if err = matrix.ValidateRequirements(requirements); err != nil {
		return nil, err
	}

	m := &models.Matrix{
		Name:        req.Name,
		Description: req.Description,
		SubjectID:   req.SubjectID,
		Grade:       req.Grade,
		CreatedBy:   userID,
	}

	err = s.repo.WithTransaction(ctx, func(tx *gorm.DB) error {
		if err := s.repo.Matrix().Create(ctx, tx, m); err != nil {
			return fmt.Errorf("failed to create matrix: %w", err)
		}
		if err := s.repo.Matrix().ReplaceRequirements(ctx, tx, m.ID, requirements); err != nil {
			return fmt.Errorf("failed to store matrix requirements: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Matrix created", "matrix_id", m.ID, "requirements", len(requirements))
	return s.GetByID(ctx, m.ID)
}

func (s *matrixService) GetByID(ctx context.Context, id uuid.UUID) (*MatrixResponse, error) {
	m, err := s.getMatrix(ctx, id)
	if err != nil {
		return nil, err
	}

	requirements, err := s.repo.Matrix().GetRequirements(ctx, nil, id)
	if err != nil {
		return nil, err
	}

	return &MatrixResponse{
		Matrix:             m,
		Requirements:       requirements,
		TotalQuestionCount: models.TotalQuestionCount(requirements),
	}, nil
}

func (s *matrixService) Delete(ctx context.Context, id uuid.UUID, userID string) (err error) {
	op := s.opLog.WithOperation(ctx, "delete_matrix", userID)
	defer func() { op.LogResult(id, "matrix", err) }()

	if err = s.repo.Matrix().Delete(ctx, nil, id); err != nil {
		if repositories.IsNotFoundError(err) {
			return ErrMatrixNotFound
		}
		return fmt.Errorf("failed to delete matrix: %w", err)
	}
	op.LogAudit(AuditEventDelete, id, "matrix", nil, nil)
	return nil
}

// ReplaceRequirements swaps the full requirement set. Exams that reference the
// matrix are evaluated against the new set from then on.
func (s *matrixService) ReplaceRequirements(ctx context.Context, id uuid.UUID, req *ReplaceRequirementsRequest, userID string) (resp *MatrixResponse, err error) {
	op := s.opLog.WithOperation(ctx, "replace_matrix_requirements", userID)
	defer func() { op.LogResult(id, "matrix", err) }()

	if err = s.validator.Validate(req); err != nil {
		return nil, err
	}
	requirements := toRequirements(req.Requirements)
	if err = matrix.ValidateRequirements(requirements); err != nil {
		return nil, err
	}

	if _, err = s.getMatrix(ctx, id); err != nil {
		return nil, err
	}

	err = s.repo.WithTransaction(ctx, func(tx *gorm.DB) error {
		return s.repo.Matrix().ReplaceRequirements(ctx, tx, id, requirements)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to replace matrix requirements: %w", err)
	}

	return s.GetByID(ctx, id)
}

func (s *matrixService) RemoveRequirement(ctx context.Context, id uuid.UUID, req *RemoveRequirementRequest, userID string) (err error) {
	op := s.opLog.WithOperation(ctx, "remove_matrix_requirement", userID)
	defer func() { op.LogResult(id, "matrix", err) }()

	if err = s.validator.Validate(req); err != nil {
		return err
	}

	err = s.repo.Matrix().RemoveRequirement(ctx, nil, id, req.TopicID, req.CognitiveLevel)
	if repositories.IsNotFoundError(err) {
		return ErrMatrixRequirementNotFound
	}
	return err
}

func (s *matrixService) Fulfillment(ctx context.Context, matrixID, examID uuid.UUID) (*matrix.Report, error) {
	if _, err := s.getMatrix(ctx, matrixID); err != nil {
		return nil, err
	}

	requirements, err := s.repo.Matrix().GetRequirements(ctx, nil, matrixID)
	if err != nil {
		return nil, err
	}
	questions, err := loadExamQuestions(ctx, s.repo, nil, examID)
	if err != nil {
		return nil, err
	}

	report := matrix.Fulfillment(requirements, questions)
	return &report, nil
}

func (s *matrixService) Candidates(ctx context.Context, matrixID, examID, topicID uuid.UUID, level models.CognitiveLevel) ([]*models.Question, error) {
	if !level.IsValid() {
		return nil, NewValidationError("cognitive_level", "must be a valid cognitive level", level)
	}

	requirements, err := s.repo.Matrix().GetRequirements(ctx, nil, matrixID)
	if err != nil {
		return nil, err
	}

	key := matrix.Key{TopicID: topicID, CognitiveLevel: level}
	var requirement *models.MatrixTopicRequirement
	for i := range requirements {
		if matrix.KeyOfRequirement(requirements[i]) == key {
			requirement = &requirements[i]
			break
		}
	}
	if requirement == nil {
		return nil, ErrMatrixRequirementNotFound
	}

	assignedQuestions, err := loadExamQuestions(ctx, s.repo, nil, examID)
	if err != nil {
		return nil, err
	}
	excluded := make(map[uuid.UUID]struct{}, len(assignedQuestions))
	for _, q := range assignedQuestions {
		excluded[q.ID] = struct{}{}
	}

	available, _, err := s.repo.Question().List(ctx, nil, repositories.QuestionFilters{
		TopicID:        &topicID,
		CognitiveLevel: &level,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list catalog questions: %w", err)
	}

	return matrix.Candidates(available, *requirement, matrix.AssignedCount(assignedQuestions, key), excluded), nil
}

func (s *matrixService) getMatrix(ctx context.Context, id uuid.UUID) (*models.Matrix, error) {
	m, err := s.repo.Matrix().GetByID(ctx, nil, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrMatrixNotFound
		}
		return nil, fmt.Errorf("failed to get matrix: %w", err)
	}
	return m, nil
}

func toRequirements(reqs []RequirementRequest) []models.MatrixTopicRequirement {
	out := make([]models.MatrixTopicRequirement, 0, len(reqs))
	for _, r := range reqs {
		out = append(out, models.MatrixTopicRequirement{
			TopicID:        r.TopicID,
			CognitiveLevel: r.CognitiveLevel,
			Quantity:       r.Quantity,
		})
	}
	return out
}

// loadExamQuestions returns the catalog questions of an exam in order.
func loadExamQuestions(ctx context.Context, repo repositories.Repository, tx *gorm.DB, examID uuid.UUID) ([]*models.Question, error) {
	if _, err := repo.Exam().GetByID(ctx, tx, examID); err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrExamNotFound
		}
		return nil, fmt.Errorf("failed to get exam: %w", err)
	}

	ids, err := examQuestionIDs(ctx, repo, tx, examID)
	if err != nil {
		return nil, err
	}
	return loadQuestions(ctx, repo, tx, ids)
}

func examQuestionIDs(ctx context.Context, repo repositories.Repository, tx *gorm.DB, examID uuid.UUID) ([]uuid.UUID, error) {
	rows, err := repo.ExamQuestion().GetByExam(ctx, tx, examID)
	if err != nil {
		return nil, err
	}
	ids := make([]uuid.UUID, 0, len(rows))
	for _, row := range rows {
		ids = append(ids, row.QuestionID)
	}
	return ids, nil
}

func loadQuestions(ctx context.Context, repo repositories.Repository, tx *gorm.DB, ids []uuid.UUID) ([]*models.Question, error) {
	questions, err := repo.Question().GetByIDs(ctx, tx, ids)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, fmt.Errorf("%w: %v", ErrQuestionNotFound, err)
		}
		return nil, fmt.Errorf("failed to load questions: %w", err)
	}
	return questions, nil
}
