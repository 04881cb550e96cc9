package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/SAP-F-2025/exam-session-service/internal/cache"
	"github.com/SAP-F-2025/exam-session-service/internal/events"
	"github.com/SAP-F-2025/exam-session-service/internal/models"
	"github.com/SAP-F-2025/exam-session-service/internal/repositories"
	"github.com/SAP-F-2025/exam-session-service/internal/scoring"
	"github.com/SAP-F-2025/exam-session-service/internal/validator"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
)

var windowStart = time.Date(2026, 5, 4, 8, 0, 0, 0, time.UTC)

const student = "student-1"

type attemptFixture struct {
	repo    *MockRepository
	cache   *MockCache
	service *attemptService
	session *models.ExamSession
}

func newAttemptFixture(t *testing.T, now time.Time) *attemptFixture {
	t.Helper()

	repo := newMockRepository()
	c := &MockCache{}
	svc := NewAttemptService(repo, c, testLogger(), validator.New()).(*attemptService)
	svc.now = func() time.Time { return now }

	session := &models.ExamSession{
		ID:                  uuid.New(),
		ExamID:              uuid.New(),
		StartTime:           windowStart,
		EndTime:             windowStart.Add(time.Hour),
		IsActive:            true,
		AllowPartialScoring: true,
		CreatedBy:           "teacher-1",
	}
	repo.examSession.On("GetByID", mock.Anything, mock.Anything, session.ID).Return(session, nil).Maybe()
	c.On("Delete", mock.Anything, cache.SessionResultsKey(session.ID)).Return(nil).Maybe()

	return &attemptFixture{repo: repo, cache: c, service: svc, session: session}
}

func (f *attemptFixture) inProgress() *models.StudentExamAttempt {
	attempt := &models.StudentExamAttempt{
		ID:            uuid.New(),
		ExamSessionID: f.session.ID,
		StudentID:     student,
		AttemptNumber: 1,
		StartedAt:     windowStart.Add(time.Minute),
		Status:        models.AttemptInProgress,
	}
	f.repo.attempt.On("GetByID", mock.Anything, mock.Anything, attempt.ID).Return(attempt, nil)
	return attempt
}

// ===== START =====

func TestAttemptService_Start(t *testing.T) {
	f := newAttemptFixture(t, windowStart.Add(5*time.Minute))
	f.repo.attempt.On("CountBySessionAndStudent", mock.Anything, mock.Anything, f.session.ID, student).Return(0, nil)
	f.repo.attempt.On("Create", mock.Anything, mock.Anything, mock.AnythingOfType("*models.StudentExamAttempt")).Return(nil)

	result, err := f.service.Start(context.Background(), f.session.ID, student)

	require.NoError(t, err)
	assert.Equal(t, 1, result.Attempt.AttemptNumber)
	assert.Equal(t, models.AttemptInProgress, result.Attempt.Status)
	assert.Equal(t, windowStart.Add(5*time.Minute), result.Attempt.StartedAt)
	require.Len(t, result.Events, 1)
	assert.Equal(t, events.EventAttemptStarted, result.Events[0].Type)
	f.cache.AssertCalled(t, "Delete", mock.Anything, cache.SessionResultsKey(f.session.ID))
}

func TestAttemptService_Start_RetriesOnceAfterCollision(t *testing.T) {
	f := newAttemptFixture(t, windowStart.Add(5*time.Minute))
	f.session.IsRetryable = true
	f.session.RetryTimes = 3

	f.repo.attempt.On("CountBySessionAndStudent", mock.Anything, mock.Anything, f.session.ID, student).Return(0, nil).Once()
	f.repo.attempt.On("CountBySessionAndStudent", mock.Anything, mock.Anything, f.session.ID, student).Return(1, nil).Once()
	f.repo.attempt.On("Create", mock.Anything, mock.Anything, mock.Anything).Return(repositories.ErrDuplicateKey).Once()
	f.repo.attempt.On("Create", mock.Anything, mock.Anything, mock.Anything).Return(nil).Once()

	result, err := f.service.Start(context.Background(), f.session.ID, student)

	require.NoError(t, err)
	assert.Equal(t, 2, result.Attempt.AttemptNumber)
	f.repo.attempt.AssertNumberOfCalls(t, "Create", 2)
}

func TestAttemptService_Start_SecondCollisionIsConflict(t *testing.T) {
	f := newAttemptFixture(t, windowStart.Add(5*time.Minute))
	f.session.IsRetryable = true
	f.session.RetryTimes = 3

	f.repo.attempt.On("CountBySessionAndStudent", mock.Anything, mock.Anything, f.session.ID, student).Return(0, nil)
	f.repo.attempt.On("Create", mock.Anything, mock.Anything, mock.Anything).Return(repositories.ErrDuplicateKey)

	result, err := f.service.Start(context.Background(), f.session.ID, student)

	assert.Nil(t, result)
	assert.ErrorIs(t, err, ErrAttemptNumberConflict)
	assert.True(t, IsConflict(err))
	f.repo.attempt.AssertNumberOfCalls(t, "Create", 2)
}

func TestAttemptService_Start_NotAllowed(t *testing.T) {
	tests := []struct {
		name   string
		now    time.Time
		prior  int
		reason models.EligibilityReason
	}{
		{"already attempted", windowStart.Add(time.Minute), 1, models.ReasonAlreadyAttempted},
		{"before window", windowStart.Add(-time.Minute), 0, models.ReasonSessionNotStarted},
		{"after window", windowStart.Add(2 * time.Hour), 0, models.ReasonSessionEnded},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newAttemptFixture(t, tt.now)
			f.repo.attempt.On("CountBySessionAndStudent", mock.Anything, mock.Anything, f.session.ID, student).Return(tt.prior, nil)

			_, err := f.service.Start(context.Background(), f.session.ID, student)

			require.Error(t, err)
			var bre *BusinessRuleError
			require.True(t, errors.As(err, &bre))
			assert.Equal(t, "attempt_not_allowed", bre.Rule)
			assert.Equal(t, tt.reason, bre.Context["reason"])
			f.repo.attempt.AssertNotCalled(t, "Create", mock.Anything, mock.Anything, mock.Anything)
		})
	}
}

func TestAttemptService_Start_SessionNotFound(t *testing.T) {
	f := newAttemptFixture(t, windowStart)
	missing := uuid.New()
	f.repo.examSession.On("GetByID", mock.Anything, mock.Anything, missing).Return(nil, repositories.ErrNotFound)

	_, err := f.service.Start(context.Background(), missing, student)

	assert.ErrorIs(t, err, ErrSessionNotFound)
	assert.True(t, IsNotFound(err))
}

// ===== SUBMIT =====

func TestAttemptService_Submit(t *testing.T) {
	f := newAttemptFixture(t, windowStart.Add(30*time.Minute))
	attempt := f.inProgress()
	q1, right1, _ := choiceQuestion(2)
	q2, _, wrong2 := choiceQuestion(3)
	f.session.QuestionIDs = datatypes.JSONSlice[uuid.UUID]{q1.ID, q2.ID}

	f.repo.question.On("GetByIDs", mock.Anything, mock.Anything, []uuid.UUID{q1.ID, q2.ID}).Return([]*models.Question{q1, q2}, nil)
	f.repo.attempt.On("TransitionStatus", mock.Anything, mock.Anything, attempt, models.AttemptInProgress).Return(nil)
	f.repo.studentAnswer.On("CreateBatch", mock.Anything, mock.Anything, mock.MatchedBy(func(answers []*models.StudentAnswer) bool {
		return len(answers) == 2 && answers[0].IsCorrect && !answers[1].IsCorrect
	})).Return(nil)

	req := &SubmitAttemptRequest{Answers: []scoring.Submission{
		{QuestionID: q1.ID, SelectedAnswerIDs: []uuid.UUID{right1}},
		{QuestionID: q2.ID, SelectedAnswerIDs: []uuid.UUID{wrong2}},
	}}
	result, err := f.service.Submit(context.Background(), attempt.ID, req, student)

	require.NoError(t, err)
	assert.Equal(t, models.AttemptSubmitted, result.Attempt.Status)
	assert.Equal(t, 2.0, result.Attempt.Score)
	assert.Equal(t, 5.0, result.Attempt.TotalPoints)
	assert.Equal(t, 40.0, result.Attempt.Percentage)
	require.NotNil(t, result.Attempt.SubmittedAt)
	require.Len(t, result.Events, 1)
	assert.Equal(t, events.EventAttemptSubmitted, result.Events[0].Type)
	f.repo.studentAnswer.AssertExpectations(t)
}

func TestAttemptService_Submit_UnansweredQuestionsScoreZero(t *testing.T) {
	f := newAttemptFixture(t, windowStart.Add(30*time.Minute))
	attempt := f.inProgress()
	q1, _, _ := choiceQuestion(2)
	essay := &models.Question{ID: uuid.New(), Type: models.Essay, Point: 5}
	f.session.QuestionIDs = datatypes.JSONSlice[uuid.UUID]{q1.ID, essay.ID}

	f.repo.question.On("GetByIDs", mock.Anything, mock.Anything, mock.Anything).Return([]*models.Question{q1, essay}, nil)
	f.repo.attempt.On("TransitionStatus", mock.Anything, mock.Anything, attempt, models.AttemptInProgress).Return(nil)
	f.repo.studentAnswer.On("CreateBatch", mock.Anything, mock.Anything, mock.MatchedBy(func(answers []*models.StudentAnswer) bool {
		return len(answers) == 2 && answers[1].NeedsGrading
	})).Return(nil)

	result, err := f.service.Submit(context.Background(), attempt.ID, &SubmitAttemptRequest{}, student)

	require.NoError(t, err)
	assert.Zero(t, result.Attempt.Score)
	assert.Equal(t, 7.0, result.Attempt.TotalPoints)
	data, ok := result.Events[0].Data.(events.AttemptSubmittedEvent)
	require.True(t, ok)
	assert.True(t, data.GradingRequired)
}

func TestAttemptService_Submit_NotOwner(t *testing.T) {
	f := newAttemptFixture(t, windowStart.Add(30*time.Minute))
	attempt := f.inProgress()

	_, err := f.service.Submit(context.Background(), attempt.ID, &SubmitAttemptRequest{}, "someone-else")

	assert.True(t, IsPermission(err))
}

func TestAttemptService_Submit_NotInProgress(t *testing.T) {
	for _, status := range []models.AttemptStatus{models.AttemptSubmitted, models.AttemptGraded, models.AttemptTimedOut} {
		t.Run(string(status), func(t *testing.T) {
			f := newAttemptFixture(t, windowStart.Add(30*time.Minute))
			attempt := f.inProgress()
			attempt.Status = status

			_, err := f.service.Submit(context.Background(), attempt.ID, &SubmitAttemptRequest{}, student)

			assert.ErrorIs(t, err, ErrAttemptNotInProgress)
			assert.True(t, IsInvalidState(err))
			f.repo.attempt.AssertNotCalled(t, "TransitionStatus", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
		})
	}
}

func TestAttemptService_Submit_AfterWindowTimesOut(t *testing.T) {
	now := windowStart.Add(2 * time.Hour)
	f := newAttemptFixture(t, now)
	attempt := f.inProgress()
	f.repo.attempt.On("TransitionStatus", mock.Anything, mock.Anything, mock.MatchedBy(func(a *models.StudentExamAttempt) bool {
		return a.Status == models.AttemptTimedOut
	}), models.AttemptInProgress).Return(nil)

	result, err := f.service.Submit(context.Background(), attempt.ID, &SubmitAttemptRequest{}, student)

	assert.ErrorIs(t, err, ErrAttemptTimeExpired)
	require.NotNil(t, result)
	assert.Equal(t, models.AttemptTimedOut, result.Attempt.Status)
	require.Len(t, result.Events, 1)
	assert.Equal(t, events.EventAttemptTimedOut, result.Events[0].Type)
	f.repo.studentAnswer.AssertNotCalled(t, "CreateBatch", mock.Anything, mock.Anything, mock.Anything)
}

func TestAttemptService_Submit_RejectsForeignAndDuplicateAnswers(t *testing.T) {
	f := newAttemptFixture(t, windowStart.Add(30*time.Minute))
	attempt := f.inProgress()
	q1, right, _ := choiceQuestion(1)
	f.session.QuestionIDs = datatypes.JSONSlice[uuid.UUID]{q1.ID}

	foreign := &SubmitAttemptRequest{Answers: []scoring.Submission{{QuestionID: uuid.New()}}}
	_, err := f.service.Submit(context.Background(), attempt.ID, foreign, student)
	assert.True(t, IsValidation(err))

	twice := &SubmitAttemptRequest{Answers: []scoring.Submission{
		{QuestionID: q1.ID, SelectedAnswerIDs: []uuid.UUID{right}},
		{QuestionID: q1.ID},
	}}
	_, err = f.service.Submit(context.Background(), attempt.ID, twice, student)
	assert.True(t, IsValidation(err))
}

func TestAttemptService_Submit_LosesRace(t *testing.T) {
	f := newAttemptFixture(t, windowStart.Add(30*time.Minute))
	attempt := f.inProgress()
	q1, _, _ := choiceQuestion(1)
	f.session.QuestionIDs = datatypes.JSONSlice[uuid.UUID]{q1.ID}

	f.repo.question.On("GetByIDs", mock.Anything, mock.Anything, mock.Anything).Return([]*models.Question{q1}, nil)
	f.repo.attempt.On("TransitionStatus", mock.Anything, mock.Anything, attempt, models.AttemptInProgress).Return(repositories.ErrStatusChanged)

	_, err := f.service.Submit(context.Background(), attempt.ID, &SubmitAttemptRequest{}, student)

	assert.ErrorIs(t, err, ErrAttemptNotInProgress)
	f.repo.studentAnswer.AssertNotCalled(t, "CreateBatch", mock.Anything, mock.Anything, mock.Anything)
}

// ===== TIMEOUT =====

func TestAttemptService_MarkTimedOut(t *testing.T) {
	now := windowStart.Add(10 * time.Minute)
	f := newAttemptFixture(t, now)
	attempt := f.inProgress()
	f.repo.attempt.On("TransitionStatus", mock.Anything, mock.Anything, attempt, models.AttemptInProgress).Return(nil)

	result, err := f.service.MarkTimedOut(context.Background(), attempt.ID, student)

	require.NoError(t, err)
	assert.Equal(t, models.AttemptTimedOut, result.Attempt.Status)
	require.NotNil(t, result.Attempt.SubmittedAt)
	assert.Equal(t, now, *result.Attempt.SubmittedAt)
	assert.Equal(t, events.EventAttemptTimedOut, result.Events[0].Type)

	attempt.Status = models.AttemptTimedOut
	_, err = f.service.MarkTimedOut(context.Background(), attempt.ID, student)
	assert.ErrorIs(t, err, ErrAttemptNotInProgress)
}

// ===== GRADING =====

func submittedAttempt(f *attemptFixture, total float64) *models.StudentExamAttempt {
	attempt := f.inProgress()
	attempt.Status = models.AttemptSubmitted
	attempt.TotalPoints = total
	return attempt
}

func TestAttemptService_MarkGraded_TotalScore(t *testing.T) {
	f := newAttemptFixture(t, windowStart.Add(3*time.Hour))
	attempt := submittedAttempt(f, 10)
	answers := []*models.StudentAnswer{
		{ID: uuid.New(), AttemptID: attempt.ID, QuestionID: uuid.New(), Score: 5, IsCorrect: true},
		{ID: uuid.New(), AttemptID: attempt.ID, QuestionID: uuid.New(), NeedsGrading: true},
	}
	f.repo.studentAnswer.On("GetByAttempt", mock.Anything, mock.Anything, attempt.ID).Return(answers, nil)
	f.repo.studentAnswer.On("Update", mock.Anything, mock.Anything, answers[1]).Return(nil)
	f.repo.attempt.On("TransitionStatus", mock.Anything, mock.Anything, attempt, models.AttemptSubmitted).Return(nil)

	score := 7.5
	result, err := f.service.MarkGraded(context.Background(), attempt.ID, &GradeAttemptRequest{Score: &score}, "teacher-1")

	require.NoError(t, err)
	assert.Equal(t, models.AttemptGraded, result.Attempt.Status)
	assert.Equal(t, 7.5, result.Attempt.Score)
	assert.Equal(t, 75.0, result.Attempt.Percentage)
	assert.Equal(t, events.EventAttemptGraded, result.Events[0].Type)

	assert.False(t, answers[1].NeedsGrading)
	require.NotNil(t, answers[1].GradedBy)
	assert.Equal(t, "teacher-1", *answers[1].GradedBy)
	require.NotNil(t, answers[1].GradedAt)
	assert.Nil(t, answers[0].GradedBy)
	f.repo.studentAnswer.AssertNumberOfCalls(t, "Update", 1)
}

func TestAttemptService_MarkGraded_OnlySessionCreator(t *testing.T) {
	tests := []struct {
		name   string
		grader string
	}{
		{"attempt owner", student},
		{"another teacher", "teacher-2"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newAttemptFixture(t, windowStart.Add(3*time.Hour))
			attempt := submittedAttempt(f, 10)

			full := 10.0
			_, err := f.service.MarkGraded(context.Background(), attempt.ID, &GradeAttemptRequest{Score: &full}, tt.grader)

			assert.True(t, IsPermission(err), "got %v", err)
			assert.Equal(t, models.AttemptSubmitted, attempt.Status)
			assert.Zero(t, attempt.Score)
			f.repo.attempt.AssertNotCalled(t, "TransitionStatus", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
		})
	}
}

func TestAttemptService_MarkGraded_OwnerCannotGradeOwnSession(t *testing.T) {
	f := newAttemptFixture(t, windowStart.Add(3*time.Hour))
	attempt := submittedAttempt(f, 10)
	f.session.CreatedBy = student

	full := 10.0
	_, err := f.service.MarkGraded(context.Background(), attempt.ID, &GradeAttemptRequest{Score: &full}, student)

	assert.True(t, IsPermission(err))
	assert.Equal(t, models.AttemptSubmitted, attempt.Status)
}

func TestAttemptService_MarkGraded_InvalidRequests(t *testing.T) {
	over, negative, ok := 11.0, -1.0, 1.0

	tests := []struct {
		name string
		req  *GradeAttemptRequest
	}{
		{"empty", &GradeAttemptRequest{}},
		{"score above total", &GradeAttemptRequest{Score: &over}},
		{"negative score", &GradeAttemptRequest{Score: &negative}},
		{"score and answer grades", &GradeAttemptRequest{Score: &ok, AnswerGrades: []AnswerGradeRequest{{QuestionID: uuid.New(), Score: 1}}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newAttemptFixture(t, windowStart.Add(3*time.Hour))
			attempt := submittedAttempt(f, 10)

			_, err := f.service.MarkGraded(context.Background(), attempt.ID, tt.req, "teacher-1")

			assert.True(t, IsValidation(err), "got %v", err)
			f.repo.attempt.AssertNotCalled(t, "TransitionStatus", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
		})
	}
}

func TestAttemptService_MarkGraded_AnswerGrades(t *testing.T) {
	f := newAttemptFixture(t, windowStart.Add(3*time.Hour))
	attempt := submittedAttempt(f, 7)
	q1, _, _ := choiceQuestion(2)
	essay := &models.Question{ID: uuid.New(), Type: models.Essay, Point: 5}

	answers := []*models.StudentAnswer{
		{ID: uuid.New(), AttemptID: attempt.ID, QuestionID: q1.ID, Score: 2, IsCorrect: true},
		{ID: uuid.New(), AttemptID: attempt.ID, QuestionID: essay.ID, NeedsGrading: true},
	}
	f.repo.studentAnswer.On("GetByAttempt", mock.Anything, mock.Anything, attempt.ID).Return(answers, nil)
	f.repo.question.On("GetByIDs", mock.Anything, mock.Anything, []uuid.UUID{q1.ID, essay.ID}).Return([]*models.Question{q1, essay}, nil)
	f.repo.studentAnswer.On("Update", mock.Anything, mock.Anything, answers[1]).Return(nil)
	f.repo.attempt.On("TransitionStatus", mock.Anything, mock.Anything, attempt, models.AttemptSubmitted).Return(nil)

	req := &GradeAttemptRequest{AnswerGrades: []AnswerGradeRequest{{QuestionID: essay.ID, Score: 3.5}}}
	result, err := f.service.MarkGraded(context.Background(), attempt.ID, req, "teacher-1")

	require.NoError(t, err)
	assert.Equal(t, 5.5, result.Attempt.Score)
	assert.False(t, answers[1].NeedsGrading)
	assert.True(t, answers[1].IsPartiallyCorrect)
	require.NotNil(t, answers[1].GradedBy)
	assert.Equal(t, "teacher-1", *answers[1].GradedBy)
	f.repo.studentAnswer.AssertNumberOfCalls(t, "Update", 1)
}

func TestAttemptService_MarkGraded_AnswerGradeAboveQuestionPoints(t *testing.T) {
	f := newAttemptFixture(t, windowStart.Add(3*time.Hour))
	attempt := submittedAttempt(f, 5)
	essay := &models.Question{ID: uuid.New(), Type: models.Essay, Point: 5}

	f.repo.studentAnswer.On("GetByAttempt", mock.Anything, mock.Anything, attempt.ID).Return([]*models.StudentAnswer{
		{ID: uuid.New(), AttemptID: attempt.ID, QuestionID: essay.ID, NeedsGrading: true},
	}, nil)
	f.repo.question.On("GetByIDs", mock.Anything, mock.Anything, mock.Anything).Return([]*models.Question{essay}, nil)

	req := &GradeAttemptRequest{AnswerGrades: []AnswerGradeRequest{{QuestionID: essay.ID, Score: 6}}}
	_, err := f.service.MarkGraded(context.Background(), attempt.ID, req, "teacher-1")

	assert.True(t, IsValidation(err))
	f.repo.studentAnswer.AssertNotCalled(t, "Update", mock.Anything, mock.Anything, mock.Anything)
}

func TestAttemptService_MarkGraded_RequiresSubmitted(t *testing.T) {
	f := newAttemptFixture(t, windowStart.Add(3*time.Hour))
	attempt := f.inProgress()

	score := 1.0
	_, err := f.service.MarkGraded(context.Background(), attempt.ID, &GradeAttemptRequest{Score: &score}, "teacher-1")

	assert.ErrorIs(t, err, ErrAttemptNotSubmitted)
}

// ===== READ =====

func TestAttemptService_GetPaper_HidesAnswerKey(t *testing.T) {
	f := newAttemptFixture(t, windowStart.Add(time.Minute))
	attempt := f.inProgress()
	q1, _, _ := choiceQuestion(2)
	f.session.QuestionIDs = datatypes.JSONSlice[uuid.UUID]{q1.ID}
	f.repo.question.On("GetByIDs", mock.Anything, mock.Anything, []uuid.UUID{q1.ID}).Return([]*models.Question{q1}, nil)

	paper, err := f.service.GetPaper(context.Background(), attempt.ID, student)

	require.NoError(t, err)
	require.Len(t, paper.Questions, 1)
	for _, a := range paper.Questions[0].Answers {
		assert.False(t, a.IsCorrect)
	}
	assert.Equal(t, f.session.EndTime, paper.EndsAt)
	assert.Equal(t, 2.0, paper.TotalPoints)
}

func TestAttemptService_ListMine(t *testing.T) {
	f := newAttemptFixture(t, windowStart.Add(2*time.Hour))
	stale := f.inProgress()
	graded := &models.StudentExamAttempt{
		ID:            uuid.New(),
		ExamSessionID: f.session.ID,
		StudentID:     student,
		AttemptNumber: 2,
		Status:        models.AttemptGraded,
		Score:         3,
		TotalPoints:   4,
	}
	f.repo.attempt.On("ListBySessionAndStudent", mock.Anything, mock.Anything, f.session.ID, student).
		Return([]*models.StudentExamAttempt{stale, graded}, nil)

	mine, err := f.service.ListMine(context.Background(), f.session.ID, student)

	require.NoError(t, err)
	require.Len(t, mine, 2)
	assert.Equal(t, models.AttemptTimedOut, mine[0].DisplayStatus)
	assert.Equal(t, models.AttemptGraded, mine[1].DisplayStatus)
	assert.Equal(t, 75.0, mine[1].Percentage)
	assert.Empty(t, mine[1].Answers)
}

func TestAttemptService_ListMine_SessionNotFound(t *testing.T) {
	f := newAttemptFixture(t, windowStart)
	missing := uuid.New()
	f.repo.examSession.On("GetByID", mock.Anything, mock.Anything, missing).Return(nil, repositories.ErrNotFound)

	_, err := f.service.ListMine(context.Background(), missing, student)

	assert.ErrorIs(t, err, ErrSessionNotFound)
	f.repo.attempt.AssertNotCalled(t, "ListBySessionAndStudent", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestAttemptService_GetByID_ShowsEffectiveTimeout(t *testing.T) {
	f := newAttemptFixture(t, windowStart.Add(2*time.Hour))
	attempt := f.inProgress()

	resp, err := f.service.GetByID(context.Background(), attempt.ID, student)

	require.NoError(t, err)
	assert.Equal(t, models.AttemptInProgress, resp.Status)
	assert.Equal(t, models.AttemptTimedOut, resp.DisplayStatus)
}
