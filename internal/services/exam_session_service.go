package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/SAP-F-2025/exam-session-service/internal/cache"
	"github.com/SAP-F-2025/exam-session-service/internal/events"
	"github.com/SAP-F-2025/exam-session-service/internal/models"
	"github.com/SAP-F-2025/exam-session-service/internal/repositories"
	"github.com/SAP-F-2025/exam-session-service/internal/validator"
	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type examSessionService struct {
	repo      repositories.Repository
	cache     cache.CacheService
	logger    *slog.Logger
	opLog     *ServiceLogger
	validator *validator.Validator
	now       func() time.Time
}

func NewExamSessionService(repo repositories.Repository, cacheService cache.CacheService, logger *slog.Logger, validator *validator.Validator) ExamSessionService {
	return &examSessionService{
		repo:      repo,
		cache:     cacheService,
		logger:    logger,
		opLog:     NewServiceLogger(logger, "exam_session"),
		validator: validator,
		now:       time.Now,
	}
}

// Create schedules a published exam and snapshots its question order. Later
// changes to the exam never reach the session.
func (s *examSessionService) Create(ctx context.Context, req *CreateSessionRequest, userID string) (result *SessionResult, err error) {
	op := s.opLog.WithOperation(ctx, "create_session", userID)
	defer func() { op.LogResult(req.ExamID, "exam", err) }()

	if err = s.validator.Validate(req); err != nil {
		return nil, err
	}

	exam, err := s.repo.Exam().GetByID(ctx, nil, req.ExamID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrExamNotFound
		}
		return nil, fmt.Errorf("failed to get exam: %w", err)
	}
	if status := exam.Status(); status != models.ExamStatusPublished {
		return nil, NewBusinessRuleError("exam_not_published", "sessions can only be created for published exams",
			map[string]interface{}{"exam_id": exam.ID, "status": status})
	}

	questionIDs, err := examQuestionIDs(ctx, s.repo, nil, exam.ID)
	if err != nil {
		return nil, err
	}

	session := &models.ExamSession{
		ExamID:                 exam.ID,
		ClassID:                req.ClassID,
		StartTime:              req.StartTime.UTC(),
		EndTime:                req.EndTime.UTC(),
		RetryTimes:             req.RetryTimes,
		IsRetryable:            req.IsRetryable,
		IsActive:               true,
		ShouldShuffleQuestions: req.ShouldShuffleQuestions,
		ShouldShuffleAnswers:   req.ShouldShuffleAnswers,
		AllowPartialScoring:    req.AllowPartialScoring,
		QuestionIDs:            datatypes.JSONSlice[uuid.UUID](questionIDs),
		CreatedBy:              userID,
	}
	if err = session.Validate(); err != nil {
		return nil, err
	}

	if err = s.repo.ExamSession().Create(ctx, nil, session); err != nil {
		return nil, fmt.Errorf("failed to create exam session: %w", err)
	}

	s.logger.Info("Exam session created",
		"session_id", session.ID,
		"exam_id", exam.ID,
		"questions", len(questionIDs))

	return &SessionResult{
		Session: session,
		Events:  []*events.NotificationEvent{sessionEvent(events.EventSessionCreated, session, userID)},
	}, nil
}

func (s *examSessionService) GetByID(ctx context.Context, id uuid.UUID) (*models.ExamSession, error) {
	return getSession(ctx, s.repo, id)
}

func (s *examSessionService) List(ctx context.Context, filters repositories.ExamSessionFilters) ([]*models.ExamSession, int64, error) {
	return s.repo.ExamSession().List(ctx, nil, filters)
}

// Update applies req to a copy and stores it only when the copy is valid.
func (s *examSessionService) Update(ctx context.Context, id uuid.UUID, req *UpdateSessionRequest, userID string) (result *SessionResult, err error) {
	op := s.opLog.WithOperation(ctx, "update_session", userID)
	defer func() { op.LogResult(id, "exam_session", err) }()

	current, err := getSession(ctx, s.repo, id)
	if err != nil {
		return nil, err
	}

	updated := *current
	applySessionUpdate(&updated, req)
	if err = updated.Validate(); err != nil {
		return nil, err
	}

	if err = s.repo.ExamSession().Update(ctx, nil, &updated); err != nil {
		return nil, fmt.Errorf("failed to update exam session: %w", err)
	}
	invalidateSessionResults(ctx, s.cache, s.logger, id)
	op.LogAudit(AuditEventUpdate, id, "exam_session", nil, req)

	return &SessionResult{Session: &updated}, nil
}

func applySessionUpdate(session *models.ExamSession, req *UpdateSessionRequest) {
	if req.StartTime != nil {
		session.StartTime = req.StartTime.UTC()
	}
	if req.EndTime != nil {
		session.EndTime = req.EndTime.UTC()
	}
	if req.RetryTimes != nil {
		session.RetryTimes = *req.RetryTimes
	}
	if req.IsRetryable != nil {
		session.IsRetryable = *req.IsRetryable
	}
	if req.ShouldShuffleQuestions != nil {
		session.ShouldShuffleQuestions = *req.ShouldShuffleQuestions
	}
	if req.ShouldShuffleAnswers != nil {
		session.ShouldShuffleAnswers = *req.ShouldShuffleAnswers
	}
	if req.AllowPartialScoring != nil {
		session.AllowPartialScoring = *req.AllowPartialScoring
	}
}

func (s *examSessionService) Activate(ctx context.Context, id uuid.UUID, userID string) (*SessionResult, error) {
	return s.setActive(ctx, id, userID, true)
}

func (s *examSessionService) Deactivate(ctx context.Context, id uuid.UUID, userID string) (*SessionResult, error) {
	return s.setActive(ctx, id, userID, false)
}

func (s *examSessionService) setActive(ctx context.Context, id uuid.UUID, userID string, active bool) (result *SessionResult, err error) {
	eventType := events.EventSessionDeactivated
	if active {
		eventType = events.EventSessionActivated
	}
	op := s.opLog.WithOperation(ctx, string(eventType), userID)
	defer func() { op.LogResult(id, "exam_session", err) }()

	current, err := getSession(ctx, s.repo, id)
	if err != nil {
		return nil, err
	}
	if current.IsActive == active {
		return &SessionResult{Session: current}, nil
	}

	updated := *current
	updated.IsActive = active
	if err = updated.Validate(); err != nil {
		return nil, err
	}
	if err = s.repo.ExamSession().Update(ctx, nil, &updated); err != nil {
		return nil, fmt.Errorf("failed to update exam session: %w", err)
	}
	invalidateSessionResults(ctx, s.cache, s.logger, id)
	op.LogAudit(AuditEventTransition, id, "exam_session", current.IsActive, active)

	return &SessionResult{
		Session: &updated,
		Events:  []*events.NotificationEvent{sessionEvent(eventType, &updated, userID)},
	}, nil
}

func (s *examSessionService) Eligibility(ctx context.Context, sessionID uuid.UUID, studentID string) (*models.Eligibility, error) {
	session, err := getSession(ctx, s.repo, sessionID)
	if err != nil {
		return nil, err
	}

	count, err := s.repo.Attempt().CountBySessionAndStudent(ctx, nil, sessionID, studentID)
	if err != nil {
		return nil, err
	}

	eligibility := session.CanStudentAttempt(count, s.now())
	return &eligibility, nil
}

func getSession(ctx context.Context, repo repositories.Repository, id uuid.UUID) (*models.ExamSession, error) {
	session, err := repo.ExamSession().GetByID(ctx, nil, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("failed to get exam session: %w", err)
	}
	return session, nil
}

// invalidateSessionResults drops the cached results view. A failure is logged
// and left to expire with the TTL.
func invalidateSessionResults(ctx context.Context, cacheService cache.CacheService, logger *slog.Logger, sessionID uuid.UUID) {
	if err := cacheService.Delete(ctx, cache.SessionResultsKey(sessionID)); err != nil {
		logger.Warn("Failed to invalidate session results cache", "session_id", sessionID, "error", err)
	}
}

func sessionEvent(eventType events.EventType, session *models.ExamSession, actorID string) *events.NotificationEvent {
	return events.NewSessionEvent(eventType, session.ID, session.ExamID, session.ClassID, session.StartTime, session.EndTime, actorID)
}
