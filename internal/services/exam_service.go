package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/SAP-F-2025/exam-session-service/internal/events"
	"github.com/SAP-F-2025/exam-session-service/internal/matrix"
	"github.com/SAP-F-2025/exam-session-service/internal/models"
	"github.com/SAP-F-2025/exam-session-service/internal/repositories"
	"github.com/SAP-F-2025/exam-session-service/internal/validator"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type examService struct {
	repo      repositories.Repository
	logger    *slog.Logger
	opLog     *ServiceLogger
	validator *validator.Validator
}

func NewExamService(repo repositories.Repository, logger *slog.Logger, validator *validator.Validator) ExamService {
	return &examService{
		repo:      repo,
		logger:    logger,
		opLog:     NewServiceLogger(logger, "exam"),
		validator: validator,
	}
}

// ===== CORE OPERATIONS =====

func (s *examService) Create(ctx context.Context, req *CreateExamRequest, userID string) (resp *ExamResponse, err error) {
	op := s.opLog.WithOperation(ctx, "create_exam", userID)
	defer func() { op.LogResult(uuid.Nil, "exam", err) }()

	if err = s.validator.Validate(req); err != nil {
		return nil, err
	}

	if req.MatrixID != nil {
		if _, err = s.repo.Matrix().GetByID(ctx, nil, *req.MatrixID); err != nil {
			if repositories.IsNotFoundError(err) {
				return nil, ErrMatrixNotFound
			}
			return nil, fmt.Errorf("failed to get matrix: %w", err)
		}
	}

	exam := &models.Exam{
		Name:        req.Name,
		Description: req.Description,
		SubjectID:   req.SubjectID,
		Grade:       req.Grade,
		MatrixID:    req.MatrixID,
		IsDraft:     true,
		IsActive:    true,
		CreatedBy:   userID,
	}
	if err = s.repo.Exam().Create(ctx, nil, exam); err != nil {
		return nil, fmt.Errorf("failed to create exam: %w", err)
	}

	s.logger.Info("Exam created", "exam_id", exam.ID, "creator_id", userID)
	return s.buildExamResponse(ctx, nil, exam)
}

func (s *examService) GetByID(ctx context.Context, id uuid.UUID) (*ExamResponse, error) {
	exam, err := s.getExam(ctx, nil, id)
	if err != nil {
		return nil, err
	}
	return s.buildExamResponse(ctx, nil, exam)
}

func (s *examService) List(ctx context.Context, filters repositories.ExamFilters) ([]*models.Exam, int64, error) {
	return s.repo.Exam().List(ctx, nil, filters)
}

// ===== QUESTION COMPOSITION =====

// AddQuestion attaches a catalog question. Without an explicit order index the
// question is appended after the current maximum.
func (s *examService) AddQuestion(ctx context.Context, examID uuid.UUID, req *AddQuestionRequest, userID string) (eq *models.ExamQuestion, err error) {
	op := s.opLog.WithOperation(ctx, "add_exam_question", userID)
	defer func() { op.LogResult(examID, "exam", err) }()

	if err = s.validator.Validate(req); err != nil {
		return nil, err
	}

	err = s.repo.WithTransaction(ctx, func(tx *gorm.DB) error {
		exam, err := s.getExam(ctx, tx, examID)
		if err != nil {
			return err
		}
		if err := requireDraft(exam); err != nil {
			return err
		}

		question, err := s.repo.Question().GetByID(ctx, tx, req.QuestionID)
		if err != nil {
			if repositories.IsNotFoundError(err) {
				return ErrQuestionNotFound
			}
			return fmt.Errorf("failed to get question: %w", err)
		}
		if err := s.validator.Question().ValidateQuestion(question); err != nil {
			return err
		}

		exists, err := s.repo.ExamQuestion().Exists(ctx, tx, examID, req.QuestionID)
		if err != nil {
			return fmt.Errorf("failed to check exam question: %w", err)
		}
		if exists {
			return ErrQuestionAlreadyInExam
		}

		var orderIndex int
		if req.OrderIndex != nil {
			taken, err := s.repo.ExamQuestion().IsOrderTaken(ctx, tx, examID, *req.OrderIndex)
			if err != nil {
				return fmt.Errorf("failed to check question order: %w", err)
			}
			if taken {
				return ErrQuestionDuplicateOrder
			}
			orderIndex = *req.OrderIndex
		} else {
			if orderIndex, err = s.repo.ExamQuestion().GetNextOrder(ctx, tx, examID); err != nil {
				return err
			}
		}

		eq = &models.ExamQuestion{
			ExamID:     examID,
			QuestionID: req.QuestionID,
			OrderIndex: orderIndex,
		}
		if err := s.repo.ExamQuestion().Add(ctx, tx, eq); err != nil {
			if repositories.IsDuplicateKeyError(err) {
				return ErrQuestionDuplicateOrder
			}
			return fmt.Errorf("failed to add question to exam: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Question added to exam", "exam_id", examID, "question_id", req.QuestionID, "order_index", eq.OrderIndex)
	return eq, nil
}

// RemoveQuestion detaches a question. Remaining order indexes are kept as is.
func (s *examService) RemoveQuestion(ctx context.Context, examID, questionID uuid.UUID, userID string) (err error) {
	op := s.opLog.WithOperation(ctx, "remove_exam_question", userID)
	defer func() { op.LogResult(examID, "exam", err) }()

	return s.repo.WithTransaction(ctx, func(tx *gorm.DB) error {
		exam, err := s.getExam(ctx, tx, examID)
		if err != nil {
			return err
		}
		if err := requireDraft(exam); err != nil {
			return err
		}

		if err := s.repo.ExamQuestion().Remove(ctx, tx, examID, questionID); err != nil {
			if repositories.IsNotFoundError(err) {
				return ErrQuestionNotInExam
			}
			return fmt.Errorf("failed to remove question from exam: %w", err)
		}
		return nil
	})
}

// Reorder assigns 0..n-1 following req.QuestionIDs, which must list exactly
// the questions of the exam.
func (s *examService) Reorder(ctx context.Context, examID uuid.UUID, req *ReorderQuestionsRequest, userID string) (err error) {
	op := s.opLog.WithOperation(ctx, "reorder_exam_questions", userID)
	defer func() { op.LogResult(examID, "exam", err) }()

	if err = s.validator.Validate(req); err != nil {
		return err
	}

	return s.repo.WithTransaction(ctx, func(tx *gorm.DB) error {
		exam, err := s.getExam(ctx, tx, examID)
		if err != nil {
			return err
		}
		if err := requireDraft(exam); err != nil {
			return err
		}

		current, err := examQuestionIDs(ctx, s.repo, tx, examID)
		if err != nil {
			return err
		}
		if err := validateReorder(current, req.QuestionIDs); err != nil {
			return err
		}

		return s.repo.ExamQuestion().Reorder(ctx, tx, examID, req.QuestionIDs)
	})
}

// AttachMatrix points a draft exam at a matrix, or detaches it when
// req.MatrixID is nil. The matrix is only evaluated at publish.
func (s *examService) AttachMatrix(ctx context.Context, examID uuid.UUID, req *AttachMatrixRequest, userID string) (resp *ExamResponse, err error) {
	op := s.opLog.WithOperation(ctx, "attach_exam_matrix", userID)
	defer func() { op.LogResult(examID, "exam", err) }()

	var previous *uuid.UUID
	err = s.repo.WithTransaction(ctx, func(tx *gorm.DB) error {
		exam, err := s.getExam(ctx, tx, examID)
		if err != nil {
			return err
		}
		if !exam.IsDraft {
			return NewBusinessRuleError("exam_not_draft", "the matrix can only be changed while the exam is a draft",
				map[string]interface{}{"exam_id": exam.ID, "status": exam.Status()})
		}

		if req.MatrixID != nil {
			if _, err := s.repo.Matrix().GetByID(ctx, tx, *req.MatrixID); err != nil {
				if repositories.IsNotFoundError(err) {
					return ErrMatrixNotFound
				}
				return fmt.Errorf("failed to get matrix: %w", err)
			}
		}

		previous = exam.MatrixID
		exam.MatrixID = req.MatrixID
		if err := s.repo.Exam().Update(ctx, tx, exam); err != nil {
			return fmt.Errorf("failed to attach matrix: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	op.LogAudit(AuditEventUpdate, examID, "exam", previous, req.MatrixID)
	return s.GetByID(ctx, examID)
}

func validateReorder(current, requested []uuid.UUID) error {
	if len(current) != len(requested) {
		return NewValidationError("question_ids",
			fmt.Sprintf("must list all %d questions of the exam, got %d", len(current), len(requested)), len(requested))
	}

	members := make(map[uuid.UUID]struct{}, len(current))
	for _, id := range current {
		members[id] = struct{}{}
	}

	seen := make(map[uuid.UUID]struct{}, len(requested))
	for i, id := range requested {
		field := fmt.Sprintf("question_ids[%d]", i)
		if _, dup := seen[id]; dup {
			return NewValidationError(field, "is listed twice", id)
		}
		if _, ok := members[id]; !ok {
			return NewValidationError(field, "is not a question of the exam", id)
		}
		seen[id] = struct{}{}
	}
	return nil
}

// ===== LIFECYCLE =====

// Publish freezes a draft. It needs at least one question and, when the exam
// follows a matrix, every requirement met exactly. Over-filled requirements are
// reported as warnings.
func (s *examService) Publish(ctx context.Context, examID uuid.UUID, userID string) (result *PublishExamResult, err error) {
	op := s.opLog.WithOperation(ctx, "publish_exam", userID)
	defer func() { op.LogResult(examID, "exam", err) }()

	result = &PublishExamResult{}
	err = s.repo.WithTransaction(ctx, func(tx *gorm.DB) error {
		exam, err := s.getExam(ctx, tx, examID)
		if err != nil {
			return err
		}
		if err := requireDraft(exam); err != nil {
			return err
		}

		ids, err := examQuestionIDs(ctx, s.repo, tx, examID)
		if err != nil {
			return err
		}
		if len(ids) == 0 {
			return NewBusinessRuleError("exam_has_no_questions", "an exam needs at least one question to be published",
				map[string]interface{}{"exam_id": examID})
		}

		if exam.MatrixID != nil {
			report, err := s.fulfillment(ctx, tx, *exam.MatrixID, ids)
			if err != nil {
				return err
			}
			if under := report.Under(); len(under) > 0 {
				return NewBusinessRuleError("matrix_not_satisfied", fmt.Sprintf("%d matrix requirements are missing questions", len(under)),
					map[string]interface{}{"matrix_id": *exam.MatrixID, "under": under})
			}
			result.Fulfillment = report
			result.Warnings = report.Warnings()
		}

		exam.IsDraft = false
		if err := s.repo.Exam().Update(ctx, tx, exam); err != nil {
			return fmt.Errorf("failed to publish exam: %w", err)
		}

		result.Events = append(result.Events, events.NewExamPublishedEvent(exam.ID, exam.Name, len(ids), result.Warnings, userID))
		return nil
	})
	if err != nil {
		return nil, err
	}

	op.LogAudit(AuditEventTransition, examID, "exam", models.ExamStatusDraft, models.ExamStatusPublished)
	if result.Exam, err = s.GetByID(ctx, examID); err != nil {
		return nil, err
	}
	return result, nil
}

func (s *examService) fulfillment(ctx context.Context, tx *gorm.DB, matrixID uuid.UUID, questionIDs []uuid.UUID) (*matrix.Report, error) {
	if _, err := s.repo.Matrix().GetByID(ctx, tx, matrixID); err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrMatrixNotFound
		}
		return nil, fmt.Errorf("failed to get matrix: %w", err)
	}
	requirements, err := s.repo.Matrix().GetRequirements(ctx, tx, matrixID)
	if err != nil {
		return nil, err
	}
	questions, err := loadQuestions(ctx, s.repo, tx, questionIDs)
	if err != nil {
		return nil, err
	}

	report := matrix.Fulfillment(requirements, questions)
	return &report, nil
}

// Archive retires a published exam. Existing sessions keep running.
func (s *examService) Archive(ctx context.Context, examID uuid.UUID, userID string) (result *ExamResult, err error) {
	op := s.opLog.WithOperation(ctx, "archive_exam", userID)
	defer func() { op.LogResult(examID, "exam", err) }()

	exam, err := s.getExam(ctx, nil, examID)
	if err != nil {
		return nil, err
	}

	switch exam.Status() {
	case models.ExamStatusDraft:
		return nil, NewBusinessRuleError("exam_draft_not_archivable", "a draft exam cannot be archived",
			map[string]interface{}{"exam_id": examID})
	case models.ExamStatusArchived:
		return nil, fmt.Errorf("%w: exam is already archived", ErrInvalidState)
	}

	exam.IsActive = false
	if err = s.repo.Exam().Update(ctx, nil, exam); err != nil {
		return nil, fmt.Errorf("failed to archive exam: %w", err)
	}
	op.LogAudit(AuditEventTransition, examID, "exam", models.ExamStatusPublished, models.ExamStatusArchived)

	resp, err := s.buildExamResponse(ctx, nil, exam)
	if err != nil {
		return nil, err
	}
	return &ExamResult{
		Exam:   resp,
		Events: []*events.NotificationEvent{events.NewExamArchivedEvent(exam.ID, exam.Name, userID)},
	}, nil
}

// ===== HELPERS =====

func (s *examService) getExam(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*models.Exam, error) {
	exam, err := s.repo.Exam().GetByID(ctx, tx, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrExamNotFound
		}
		return nil, fmt.Errorf("failed to get exam: %w", err)
	}
	return exam, nil
}

func requireDraft(exam *models.Exam) error {
	if exam.IsDraft {
		return nil
	}
	return NewBusinessRuleError("exam_not_draft", "questions can only be changed while the exam is a draft",
		map[string]interface{}{"exam_id": exam.ID, "status": exam.Status()})
}

func (s *examService) buildExamResponse(ctx context.Context, tx *gorm.DB, exam *models.Exam) (*ExamResponse, error) {
	rows, err := s.repo.ExamQuestion().GetByExam(ctx, tx, exam.ID)
	if err != nil {
		return nil, err
	}

	ids := make([]uuid.UUID, 0, len(rows))
	for _, row := range rows {
		ids = append(ids, row.QuestionID)
	}
	questions, err := loadQuestions(ctx, s.repo, tx, ids)
	if err != nil {
		return nil, err
	}

	resp := &ExamResponse{
		Exam:        exam,
		Status:      exam.Status(),
		Questions:   make([]ExamQuestionItem, 0, len(rows)),
		TotalPoints: models.RoundTo2(models.TotalPoints(questions)),
	}
	for i, row := range rows {
		q := questions[i]
		resp.Questions = append(resp.Questions, ExamQuestionItem{
			QuestionID:     row.QuestionID,
			OrderIndex:     row.OrderIndex,
			TopicID:        q.TopicID,
			CognitiveLevel: q.CognitiveLevel,
			Type:           q.Type,
			Point:          q.Point,
		})
	}
	return resp, nil
}
