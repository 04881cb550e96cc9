package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/SAP-F-2025/exam-session-service/internal/cache"
	"github.com/SAP-F-2025/exam-session-service/internal/events"
	"github.com/SAP-F-2025/exam-session-service/internal/models"
	"github.com/SAP-F-2025/exam-session-service/internal/repositories"
	"github.com/SAP-F-2025/exam-session-service/internal/scoring"
	"github.com/SAP-F-2025/exam-session-service/internal/validator"
	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type attemptService struct {
	repo      repositories.Repository
	cache     cache.CacheService
	logger    *slog.Logger
	opLog     *ServiceLogger
	validator *validator.Validator
	now       func() time.Time
}

func NewAttemptService(repo repositories.Repository, cacheService cache.CacheService, logger *slog.Logger, validator *validator.Validator) AttemptService {
	return &attemptService{
		repo:      repo,
		cache:     cacheService,
		logger:    logger,
		opLog:     NewServiceLogger(logger, "attempt"),
		validator: validator,
		now:       time.Now,
	}
}

// ===== START =====

// Start opens a new attempt. The unique (session, student, attempt number)
// index serializes concurrent starts; a collision is re-evaluated once.
func (s *attemptService) Start(ctx context.Context, sessionID uuid.UUID, studentID string) (result *AttemptResult, err error) {
	op := s.opLog.WithOperation(ctx, "start_attempt", studentID)
	defer func() { op.LogResult(sessionID, "exam_session", err) }()

	session, err := getSession(ctx, s.repo, sessionID)
	if err != nil {
		return nil, err
	}

	attempt, err := s.tryStart(ctx, session, studentID)
	if repositories.IsDuplicateKeyError(err) {
		s.logger.Warn("Attempt number collision, re-checking eligibility",
			"session_id", sessionID,
			"student_id", studentID)
		attempt, err = s.tryStart(ctx, session, studentID)
		if repositories.IsDuplicateKeyError(err) {
			return nil, ErrAttemptNumberConflict
		}
	}
	if err != nil {
		return nil, err
	}

	s.invalidateResults(ctx, sessionID)
	s.logger.Info("Attempt started",
		"attempt_id", attempt.ID,
		"session_id", sessionID,
		"student_id", studentID,
		"attempt_number", attempt.AttemptNumber)

	return &AttemptResult{
		Attempt: s.buildResponse(attempt, session, nil),
		Events: []*events.NotificationEvent{
			events.NewAttemptStartedEvent(attempt.ID, sessionID, studentID, attempt.AttemptNumber, attempt.StartedAt),
		},
	}, nil
}

func (s *attemptService) tryStart(ctx context.Context, session *models.ExamSession, studentID string) (*models.StudentExamAttempt, error) {
	count, err := s.repo.Attempt().CountBySessionAndStudent(ctx, nil, session.ID, studentID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	eligibility := session.CanStudentAttempt(count, now)
	if !eligibility.Eligible {
		return nil, NewBusinessRuleError("attempt_not_allowed", fmt.Sprintf("student cannot start an attempt: %s", eligibility.Reason),
			map[string]interface{}{
				"reason":           eligibility.Reason,
				"attempts_used":    eligibility.AttemptsUsed,
				"attempts_allowed": eligibility.AttemptsAllowed,
			})
	}

	attempt := &models.StudentExamAttempt{
		ExamSessionID: session.ID,
		StudentID:     studentID,
		AttemptNumber: count + 1,
		StartedAt:     now.UTC(),
		Status:        models.AttemptInProgress,
	}
	if err := s.repo.Attempt().Create(ctx, nil, attempt); err != nil {
		return nil, err
	}
	return attempt, nil
}

// ===== READ =====

func (s *attemptService) GetByID(ctx context.Context, attemptID uuid.UUID, studentID string) (*AttemptResponse, error) {
	attempt, session, err := s.loadOwned(ctx, attemptID, studentID, "read")
	if err != nil {
		return nil, err
	}

	var answers []*models.StudentAnswer
	if attempt.Status != models.AttemptInProgress {
		if answers, err = s.repo.StudentAnswer().GetByAttempt(ctx, nil, attemptID); err != nil {
			return nil, err
		}
	}
	return s.buildResponse(attempt, session, answers), nil
}

func (s *attemptService) GetPaper(ctx context.Context, attemptID uuid.UUID, studentID string) (*AttemptPaper, error) {
	attempt, session, err := s.loadOwned(ctx, attemptID, studentID, "read")
	if err != nil {
		return nil, err
	}

	questions, err := loadQuestions(ctx, s.repo, nil, session.QuestionIDs)
	if err != nil {
		return nil, err
	}

	paper := buildPaper(attempt, session, questions)
	paper.Status = attempt.DisplayStatus(session, s.now())
	return paper, nil
}

// ListMine returns the student's attempts in a session with their display
// status, so a stale in-progress attempt already reads as timed out.
func (s *attemptService) ListMine(ctx context.Context, sessionID uuid.UUID, studentID string) ([]*AttemptResponse, error) {
	session, err := getSession(ctx, s.repo, sessionID)
	if err != nil {
		return nil, err
	}

	attempts, err := s.repo.Attempt().ListBySessionAndStudent(ctx, nil, sessionID, studentID)
	if err != nil {
		return nil, err
	}

	out := make([]*AttemptResponse, 0, len(attempts))
	for _, a := range attempts {
		out = append(out, s.buildResponse(a, session, nil))
	}
	return out, nil
}

// ===== SUBMIT =====

// Submit scores the answers and closes the attempt. Questions without an
// answer are stored empty with zero points.
func (s *attemptService) Submit(ctx context.Context, attemptID uuid.UUID, req *SubmitAttemptRequest, studentID string) (result *AttemptResult, err error) {
	op := s.opLog.WithOperation(ctx, "submit_attempt", studentID)
	defer func() { op.LogResult(attemptID, "attempt", err) }()

	if err = s.validator.Validate(req); err != nil {
		return nil, err
	}

	attempt, session, err := s.loadOwned(ctx, attemptID, studentID, "submit")
	if err != nil {
		return nil, err
	}
	if attempt.Status != models.AttemptInProgress {
		return nil, ErrAttemptNotInProgress
	}

	now := s.now()
	if session.HasEnded(now) {
		timedOut, err := s.timeOut(ctx, attempt, now)
		if err != nil {
			return nil, err
		}
		return &AttemptResult{
			Attempt: s.buildResponse(timedOut, session, nil),
			Events:  []*events.NotificationEvent{events.NewAttemptTimedOutEvent(attempt.ID, session.ID, studentID, now)},
		}, ErrAttemptTimeExpired
	}

	submissions, err := indexSubmissions(session, req.Answers)
	if err != nil {
		return nil, err
	}

	questions, err := loadQuestions(ctx, s.repo, nil, session.QuestionIDs)
	if err != nil {
		return nil, err
	}
	summary := scoring.ScoreAttempt(questions, submissions, session.AllowPartialScoring)

	submittedAt := now.UTC()
	attempt.Status = models.AttemptSubmitted
	attempt.Score = summary.Score
	attempt.TotalPoints = summary.TotalPoints
	attempt.SubmittedAt = &submittedAt
	answers := toStudentAnswers(attempt.ID, summary)

	err = s.repo.WithTransaction(ctx, func(tx *gorm.DB) error {
		if err := s.repo.Attempt().TransitionStatus(ctx, tx, attempt, models.AttemptInProgress); err != nil {
			if errors.Is(err, repositories.ErrStatusChanged) {
				return ErrAttemptNotInProgress
			}
			return fmt.Errorf("failed to submit attempt: %w", err)
		}
		if err := s.repo.StudentAnswer().CreateBatch(ctx, tx, answers); err != nil {
			return fmt.Errorf("failed to store answers: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.invalidateResults(ctx, session.ID)
	s.logger.Info("Attempt submitted",
		"attempt_id", attempt.ID,
		"score", summary.Score,
		"total_points", summary.TotalPoints,
		"pending_manual", summary.PendingManual)

	return &AttemptResult{
		Attempt: s.buildResponse(attempt, session, answers),
		Events: []*events.NotificationEvent{
			events.NewAttemptSubmittedEvent(attempt.ID, session.ID, studentID, submittedAt,
				attempt.Score, attempt.TotalPoints, attempt.GetScorePercentage(), summary.PendingManual > 0),
		},
	}, nil
}

// indexSubmissions keys answers by question and rejects questions outside the
// session snapshot or answered twice.
func indexSubmissions(session *models.ExamSession, answers []scoring.Submission) (map[uuid.UUID]scoring.Submission, error) {
	asked := make(map[uuid.UUID]struct{}, len(session.QuestionIDs))
	for _, id := range session.QuestionIDs {
		asked[id] = struct{}{}
	}

	out := make(map[uuid.UUID]scoring.Submission, len(answers))
	for i, a := range answers {
		field := fmt.Sprintf("answers[%d].question_id", i)
		if _, ok := asked[a.QuestionID]; !ok {
			return nil, NewValidationError(field, "is not a question of this session", a.QuestionID)
		}
		if _, dup := out[a.QuestionID]; dup {
			return nil, NewValidationError(field, "is answered more than once", a.QuestionID)
		}
		out[a.QuestionID] = a
	}
	return out, nil
}

func toStudentAnswers(attemptID uuid.UUID, summary scoring.Summary) []*models.StudentAnswer {
	answers := make([]*models.StudentAnswer, 0, len(summary.Results))
	for _, r := range summary.Results {
		answers = append(answers, &models.StudentAnswer{
			AttemptID:          attemptID,
			QuestionID:         r.Question.ID,
			SelectedAnswerIDs:  datatypes.JSONSlice[uuid.UUID](r.Submission.SelectedAnswerIDs),
			TextAnswer:         r.Submission.TextAnswer,
			Score:              r.Result.Points,
			IsCorrect:          r.Result.IsCorrect,
			IsPartiallyCorrect: r.Result.IsPartiallyCorrect,
			NeedsGrading:       r.Result.NeedsManualGrading,
		})
	}
	return answers
}

// ===== TIMEOUT =====

func (s *attemptService) MarkTimedOut(ctx context.Context, attemptID uuid.UUID, studentID string) (result *AttemptResult, err error) {
	op := s.opLog.WithOperation(ctx, "timeout_attempt", studentID)
	defer func() { op.LogResult(attemptID, "attempt", err) }()

	attempt, session, err := s.loadOwned(ctx, attemptID, studentID, "time out")
	if err != nil {
		return nil, err
	}
	if attempt.Status != models.AttemptInProgress {
		return nil, ErrAttemptNotInProgress
	}

	now := s.now()
	if attempt, err = s.timeOut(ctx, attempt, now); err != nil {
		return nil, err
	}

	return &AttemptResult{
		Attempt: s.buildResponse(attempt, session, nil),
		Events:  []*events.NotificationEvent{events.NewAttemptTimedOutEvent(attempt.ID, session.ID, attempt.StudentID, now)},
	}, nil
}

func (s *attemptService) timeOut(ctx context.Context, attempt *models.StudentExamAttempt, now time.Time) (*models.StudentExamAttempt, error) {
	timedOutAt := now.UTC()
	attempt.Status = models.AttemptTimedOut
	attempt.SubmittedAt = &timedOutAt

	if err := s.repo.Attempt().TransitionStatus(ctx, nil, attempt, models.AttemptInProgress); err != nil {
		if errors.Is(err, repositories.ErrStatusChanged) {
			return nil, ErrAttemptNotInProgress
		}
		return nil, fmt.Errorf("failed to time out attempt: %w", err)
	}

	s.invalidateResults(ctx, attempt.ExamSessionID)
	s.logger.Info("Attempt timed out", "attempt_id", attempt.ID, "student_id", attempt.StudentID)
	return attempt, nil
}

// ===== GRADING =====

// MarkGraded finalizes a submitted attempt, either with a total score or with
// per-answer grades whose sum becomes the score.
func (s *attemptService) MarkGraded(ctx context.Context, attemptID uuid.UUID, req *GradeAttemptRequest, graderID string) (result *AttemptResult, err error) {
	op := s.opLog.WithOperation(ctx, "grade_attempt", graderID)
	defer func() { op.LogResult(attemptID, "attempt", err) }()

	if err = s.validator.Validate(req); err != nil {
		return nil, err
	}
	if req.Score == nil && len(req.AnswerGrades) == 0 {
		return nil, NewValidationError("score", "either score or answer_grades is required", nil)
	}
	if req.Score != nil && len(req.AnswerGrades) > 0 {
		return nil, NewValidationError("score", "must not be combined with answer_grades", *req.Score)
	}

	attempt, err := s.getAttempt(ctx, nil, attemptID)
	if err != nil {
		return nil, err
	}
	session, err := getSession(ctx, s.repo, attempt.ExamSessionID)
	if err != nil {
		return nil, err
	}
	switch {
	case graderID == attempt.StudentID:
		return nil, NewPermissionError(graderID, attemptID, "attempt", "grade", "students cannot grade their own attempt")
	case graderID != session.CreatedBy:
		return nil, NewPermissionError(graderID, attemptID, "attempt", "grade", "not the session creator")
	}
	if attempt.Status != models.AttemptSubmitted {
		return nil, ErrAttemptNotSubmitted
	}

	var answers []*models.StudentAnswer
	err = s.repo.WithTransaction(ctx, func(tx *gorm.DB) error {
		if req.Score != nil {
			if *req.Score > attempt.TotalPoints {
				return NewValidationError("score", fmt.Sprintf("must be between 0 and %.2f", attempt.TotalPoints), *req.Score)
			}
			attempt.Score = models.RoundTo2(*req.Score)
			closed, err := s.closePendingAnswers(ctx, tx, attempt.ID, graderID)
			if err != nil {
				return err
			}
			answers = closed
		} else {
			graded, err := s.applyAnswerGrades(ctx, tx, attempt, req.AnswerGrades, graderID)
			if err != nil {
				return err
			}
			answers = graded
		}

		attempt.Status = models.AttemptGraded
		if err := s.repo.Attempt().TransitionStatus(ctx, tx, attempt, models.AttemptSubmitted); err != nil {
			if errors.Is(err, repositories.ErrStatusChanged) {
				return ErrAttemptNotSubmitted
			}
			return fmt.Errorf("failed to grade attempt: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.invalidateResults(ctx, session.ID)
	op.LogAudit(AuditEventTransition, attemptID, "attempt", models.AttemptSubmitted, models.AttemptGraded)

	now := s.now()
	return &AttemptResult{
		Attempt: s.buildResponse(attempt, session, answers),
		Events: []*events.NotificationEvent{
			events.NewAttemptGradedEvent(attempt.ID, session.ID, attempt.StudentID,
				attempt.Score, attempt.TotalPoints, attempt.GetScorePercentage(), graderID, now),
		},
	}, nil
}

// closePendingAnswers marks answers still waiting for manual grading as graded
// when the attempt receives a total score. Their stored points are kept.
func (s *attemptService) closePendingAnswers(ctx context.Context, tx *gorm.DB, attemptID uuid.UUID, graderID string) ([]*models.StudentAnswer, error) {
	answers, err := s.repo.StudentAnswer().GetByAttempt(ctx, tx, attemptID)
	if err != nil {
		return nil, err
	}

	gradedAt := s.now().UTC()
	for _, a := range answers {
		if !a.NeedsGrading {
			continue
		}
		a.NeedsGrading = false
		a.GradedBy = &graderID
		a.GradedAt = &gradedAt
		if err := s.repo.StudentAnswer().Update(ctx, tx, a); err != nil {
			return nil, fmt.Errorf("failed to grade answer: %w", err)
		}
	}
	return answers, nil
}

func (s *attemptService) applyAnswerGrades(ctx context.Context, tx *gorm.DB, attempt *models.StudentExamAttempt, grades []AnswerGradeRequest, graderID string) ([]*models.StudentAnswer, error) {
	answers, err := s.repo.StudentAnswer().GetByAttempt(ctx, tx, attempt.ID)
	if err != nil {
		return nil, err
	}
	byQuestion := make(map[uuid.UUID]*models.StudentAnswer, len(answers))
	questionIDs := make([]uuid.UUID, 0, len(answers))
	for _, a := range answers {
		byQuestion[a.QuestionID] = a
		questionIDs = append(questionIDs, a.QuestionID)
	}

	questions, err := loadQuestions(ctx, s.repo, tx, questionIDs)
	if err != nil {
		return nil, err
	}
	points := make(map[uuid.UUID]float64, len(questions))
	for _, q := range questions {
		points[q.ID] = q.Point
	}

	gradedAt := s.now().UTC()
	changed := make(map[uuid.UUID]struct{}, len(grades))
	for i, g := range grades {
		field := fmt.Sprintf("answer_grades[%d]", i)
		answer, ok := byQuestion[g.QuestionID]
		if !ok {
			return nil, NewValidationError(field+".question_id", "has no answer in this attempt", g.QuestionID)
		}
		if _, dup := changed[g.QuestionID]; dup {
			return nil, NewValidationError(field+".question_id", "is graded more than once", g.QuestionID)
		}
		maxPoints := points[g.QuestionID]
		if g.Score < 0 || g.Score > maxPoints {
			return nil, NewValidationError(field+".score", fmt.Sprintf("must be between 0 and %.2f", maxPoints), g.Score)
		}

		answer.Score = models.RoundTo2(g.Score)
		answer.IsCorrect = answer.Score == maxPoints
		answer.IsPartiallyCorrect = answer.Score > 0 && answer.Score < maxPoints
		answer.NeedsGrading = false
		answer.GradedBy = &graderID
		answer.GradedAt = &gradedAt
		changed[g.QuestionID] = struct{}{}
	}

	var total float64
	for _, a := range answers {
		if _, ok := changed[a.QuestionID]; ok {
			if err := s.repo.StudentAnswer().Update(ctx, tx, a); err != nil {
				return nil, fmt.Errorf("failed to grade answer: %w", err)
			}
		}
		total += a.Score
	}
	attempt.Score = models.RoundTo2(total)
	return answers, nil
}

// ===== HELPERS =====

func (s *attemptService) getAttempt(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*models.StudentExamAttempt, error) {
	attempt, err := s.repo.Attempt().GetByID(ctx, tx, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrAttemptNotFound
		}
		return nil, fmt.Errorf("failed to get attempt: %w", err)
	}
	return attempt, nil
}

// loadOwned loads an attempt with its session and checks that studentID owns it
func (s *attemptService) loadOwned(ctx context.Context, attemptID uuid.UUID, studentID, action string) (*models.StudentExamAttempt, *models.ExamSession, error) {
	attempt, err := s.getAttempt(ctx, nil, attemptID)
	if err != nil {
		return nil, nil, err
	}
	if attempt.StudentID != studentID {
		return nil, nil, NewPermissionError(studentID, attemptID, "attempt", action, "not owned by student")
	}

	session, err := getSession(ctx, s.repo, attempt.ExamSessionID)
	if err != nil {
		return nil, nil, err
	}
	return attempt, session, nil
}

func (s *attemptService) buildResponse(attempt *models.StudentExamAttempt, session *models.ExamSession, answers []*models.StudentAnswer) *AttemptResponse {
	return &AttemptResponse{
		StudentExamAttempt: attempt,
		DisplayStatus:      attempt.DisplayStatus(session, s.now()),
		Percentage:         attempt.GetScorePercentage(),
		Answers:            answers,
	}
}

func (s *attemptService) invalidateResults(ctx context.Context, sessionID uuid.UUID) {
	invalidateSessionResults(ctx, s.cache, s.logger, sessionID)
}
