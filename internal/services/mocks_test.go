package services

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/SAP-F-2025/exam-session-service/internal/models"
	"github.com/SAP-F-2025/exam-session-service/internal/repositories"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"gorm.io/gorm"
)

// ===== REPOSITORY MOCKS =====

// MockRepository aggregates the repository mocks. WithTransaction runs fn
// directly with a nil tx.
type MockRepository struct {
	question      *MockQuestionRepository
	matrix        *MockMatrixRepository
	exam          *MockExamRepository
	examQuestion  *MockExamQuestionRepository
	examSession   *MockExamSessionRepository
	attempt       *MockAttemptRepository
	studentAnswer *MockStudentAnswerRepository
}

func newMockRepository() *MockRepository {
	return &MockRepository{
		question:      &MockQuestionRepository{},
		matrix:        &MockMatrixRepository{},
		exam:          &MockExamRepository{},
		examQuestion:  &MockExamQuestionRepository{},
		examSession:   &MockExamSessionRepository{},
		attempt:       &MockAttemptRepository{},
		studentAnswer: &MockStudentAnswerRepository{},
	}
}

func (m *MockRepository) Question() repositories.QuestionRepository         { return m.question }
func (m *MockRepository) Matrix() repositories.MatrixRepository             { return m.matrix }
func (m *MockRepository) Exam() repositories.ExamRepository                 { return m.exam }
func (m *MockRepository) ExamQuestion() repositories.ExamQuestionRepository { return m.examQuestion }
func (m *MockRepository) ExamSession() repositories.ExamSessionRepository   { return m.examSession }
func (m *MockRepository) Attempt() repositories.AttemptRepository           { return m.attempt }
func (m *MockRepository) StudentAnswer() repositories.StudentAnswerRepository {
	return m.studentAnswer
}

func (m *MockRepository) WithTransaction(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return fn(nil)
}

// MockQuestionRepository is a mock implementation of QuestionRepository
type MockQuestionRepository struct {
	mock.Mock
}

func (m *MockQuestionRepository) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*models.Question, error) {
	args := m.Called(ctx, tx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Question), args.Error(1)
}

func (m *MockQuestionRepository) GetByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) ([]*models.Question, error) {
	args := m.Called(ctx, tx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Question), args.Error(1)
}

func (m *MockQuestionRepository) List(ctx context.Context, tx *gorm.DB, filters repositories.QuestionFilters) ([]*models.Question, int64, error) {
	args := m.Called(ctx, tx, filters)
	return args.Get(0).([]*models.Question), args.Get(1).(int64), args.Error(2)
}

// MockMatrixRepository is a mock implementation of MatrixRepository
type MockMatrixRepository struct {
	mock.Mock
}

func (m *MockMatrixRepository) Create(ctx context.Context, tx *gorm.DB, matrix *models.Matrix) error {
	args := m.Called(ctx, tx, matrix)
	return args.Error(0)
}

func (m *MockMatrixRepository) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*models.Matrix, error) {
	args := m.Called(ctx, tx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Matrix), args.Error(1)
}

func (m *MockMatrixRepository) Update(ctx context.Context, tx *gorm.DB, matrix *models.Matrix) error {
	args := m.Called(ctx, tx, matrix)
	return args.Error(0)
}

func (m *MockMatrixRepository) Delete(ctx context.Context, tx *gorm.DB, id uuid.UUID) error {
	args := m.Called(ctx, tx, id)
	return args.Error(0)
}

func (m *MockMatrixRepository) GetRequirements(ctx context.Context, tx *gorm.DB, matrixID uuid.UUID) ([]models.MatrixTopicRequirement, error) {
	args := m.Called(ctx, tx, matrixID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.MatrixTopicRequirement), args.Error(1)
}

func (m *MockMatrixRepository) ReplaceRequirements(ctx context.Context, tx *gorm.DB, matrixID uuid.UUID, requirements []models.MatrixTopicRequirement) error {
	args := m.Called(ctx, tx, matrixID, requirements)
	return args.Error(0)
}

func (m *MockMatrixRepository) RemoveRequirement(ctx context.Context, tx *gorm.DB, matrixID, topicID uuid.UUID, level models.CognitiveLevel) error {
	args := m.Called(ctx, tx, matrixID, topicID, level)
	return args.Error(0)
}

// MockExamRepository is a mock implementation of ExamRepository
type MockExamRepository struct {
	mock.Mock
}

func (m *MockExamRepository) Create(ctx context.Context, tx *gorm.DB, exam *models.Exam) error {
	args := m.Called(ctx, tx, exam)
	return args.Error(0)
}

func (m *MockExamRepository) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*models.Exam, error) {
	args := m.Called(ctx, tx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Exam), args.Error(1)
}

func (m *MockExamRepository) Update(ctx context.Context, tx *gorm.DB, exam *models.Exam) error {
	args := m.Called(ctx, tx, exam)
	return args.Error(0)
}

func (m *MockExamRepository) List(ctx context.Context, tx *gorm.DB, filters repositories.ExamFilters) ([]*models.Exam, int64, error) {
	args := m.Called(ctx, tx, filters)
	return args.Get(0).([]*models.Exam), args.Get(1).(int64), args.Error(2)
}

// MockExamQuestionRepository is a mock implementation of ExamQuestionRepository
type MockExamQuestionRepository struct {
	mock.Mock
}

func (m *MockExamQuestionRepository) Add(ctx context.Context, tx *gorm.DB, examQuestion *models.ExamQuestion) error {
	args := m.Called(ctx, tx, examQuestion)
	return args.Error(0)
}

func (m *MockExamQuestionRepository) Remove(ctx context.Context, tx *gorm.DB, examID, questionID uuid.UUID) error {
	args := m.Called(ctx, tx, examID, questionID)
	return args.Error(0)
}

func (m *MockExamQuestionRepository) Exists(ctx context.Context, tx *gorm.DB, examID, questionID uuid.UUID) (bool, error) {
	args := m.Called(ctx, tx, examID, questionID)
	return args.Bool(0), args.Error(1)
}

func (m *MockExamQuestionRepository) IsOrderTaken(ctx context.Context, tx *gorm.DB, examID uuid.UUID, orderIndex int) (bool, error) {
	args := m.Called(ctx, tx, examID, orderIndex)
	return args.Bool(0), args.Error(1)
}

func (m *MockExamQuestionRepository) GetNextOrder(ctx context.Context, tx *gorm.DB, examID uuid.UUID) (int, error) {
	args := m.Called(ctx, tx, examID)
	return args.Int(0), args.Error(1)
}

func (m *MockExamQuestionRepository) GetByExam(ctx context.Context, tx *gorm.DB, examID uuid.UUID) ([]*models.ExamQuestion, error) {
	args := m.Called(ctx, tx, examID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.ExamQuestion), args.Error(1)
}

func (m *MockExamQuestionRepository) Reorder(ctx context.Context, tx *gorm.DB, examID uuid.UUID, questionIDs []uuid.UUID) error {
	args := m.Called(ctx, tx, examID, questionIDs)
	return args.Error(0)
}

// MockExamSessionRepository is a mock implementation of ExamSessionRepository
type MockExamSessionRepository struct {
	mock.Mock
}

func (m *MockExamSessionRepository) Create(ctx context.Context, tx *gorm.DB, session *models.ExamSession) error {
	args := m.Called(ctx, tx, session)
	return args.Error(0)
}

func (m *MockExamSessionRepository) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*models.ExamSession, error) {
	args := m.Called(ctx, tx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ExamSession), args.Error(1)
}

func (m *MockExamSessionRepository) Update(ctx context.Context, tx *gorm.DB, session *models.ExamSession) error {
	args := m.Called(ctx, tx, session)
	return args.Error(0)
}

func (m *MockExamSessionRepository) List(ctx context.Context, tx *gorm.DB, filters repositories.ExamSessionFilters) ([]*models.ExamSession, int64, error) {
	args := m.Called(ctx, tx, filters)
	return args.Get(0).([]*models.ExamSession), args.Get(1).(int64), args.Error(2)
}

// MockAttemptRepository is a mock implementation of AttemptRepository
type MockAttemptRepository struct {
	mock.Mock
}

func (m *MockAttemptRepository) Create(ctx context.Context, tx *gorm.DB, attempt *models.StudentExamAttempt) error {
	args := m.Called(ctx, tx, attempt)
	return args.Error(0)
}

func (m *MockAttemptRepository) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*models.StudentExamAttempt, error) {
	args := m.Called(ctx, tx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.StudentExamAttempt), args.Error(1)
}

func (m *MockAttemptRepository) CountBySessionAndStudent(ctx context.Context, tx *gorm.DB, sessionID uuid.UUID, studentID string) (int, error) {
	args := m.Called(ctx, tx, sessionID, studentID)
	return args.Int(0), args.Error(1)
}

func (m *MockAttemptRepository) ListBySessionAndStudent(ctx context.Context, tx *gorm.DB, sessionID uuid.UUID, studentID string) ([]*models.StudentExamAttempt, error) {
	args := m.Called(ctx, tx, sessionID, studentID)
	return args.Get(0).([]*models.StudentExamAttempt), args.Error(1)
}

func (m *MockAttemptRepository) ListBySession(ctx context.Context, tx *gorm.DB, sessionID uuid.UUID) ([]*models.StudentExamAttempt, error) {
	args := m.Called(ctx, tx, sessionID)
	return args.Get(0).([]*models.StudentExamAttempt), args.Error(1)
}

func (m *MockAttemptRepository) TransitionStatus(ctx context.Context, tx *gorm.DB, attempt *models.StudentExamAttempt, from models.AttemptStatus) error {
	args := m.Called(ctx, tx, attempt, from)
	return args.Error(0)
}

// MockStudentAnswerRepository is a mock implementation of StudentAnswerRepository
type MockStudentAnswerRepository struct {
	mock.Mock
}

func (m *MockStudentAnswerRepository) CreateBatch(ctx context.Context, tx *gorm.DB, answers []*models.StudentAnswer) error {
	args := m.Called(ctx, tx, answers)
	return args.Error(0)
}

func (m *MockStudentAnswerRepository) GetByAttempt(ctx context.Context, tx *gorm.DB, attemptID uuid.UUID) ([]*models.StudentAnswer, error) {
	args := m.Called(ctx, tx, attemptID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.StudentAnswer), args.Error(1)
}

func (m *MockStudentAnswerRepository) Update(ctx context.Context, tx *gorm.DB, answer *models.StudentAnswer) error {
	args := m.Called(ctx, tx, answer)
	return args.Error(0)
}

// ===== CACHE MOCK =====

type MockCache struct {
	mock.Mock
}

func (m *MockCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	args := m.Called(ctx, key, value, ttl)
	return args.Error(0)
}

func (m *MockCache) Get(ctx context.Context, key string, dest interface{}) error {
	args := m.Called(ctx, key, dest)
	return args.Error(0)
}

func (m *MockCache) Delete(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

func (m *MockCache) DeletePattern(ctx context.Context, pattern string) error {
	args := m.Called(ctx, pattern)
	return args.Error(0)
}

// ===== FIXTURES =====

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func choiceQuestion(point float64) (*models.Question, uuid.UUID, uuid.UUID) {
	right, wrong := uuid.New(), uuid.New()
	q := &models.Question{
		ID:             uuid.New(),
		Type:           models.SingleChoice,
		Content:        "Pick one",
		Point:          point,
		TopicID:        uuid.New(),
		CognitiveLevel: models.CognitiveRemember,
		Answers: []models.Answer{
			{ID: right, Content: "right", IsCorrect: true, Position: 0},
			{ID: wrong, Content: "wrong", Position: 1},
		},
	}
	return q, right, wrong
}
