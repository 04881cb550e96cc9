package services

import (
	"time"

	"github.com/SAP-F-2025/exam-session-service/internal/events"
	"github.com/SAP-F-2025/exam-session-service/internal/matrix"
	"github.com/SAP-F-2025/exam-session-service/internal/models"
	"github.com/SAP-F-2025/exam-session-service/internal/scoring"
	"github.com/google/uuid"
)

// ===== MATRIX =====

type RequirementRequest struct {
	TopicID        uuid.UUID             `json:"topic_id" validate:"required"`
	CognitiveLevel models.CognitiveLevel `json:"cognitive_level" validate:"required,cognitive_level"`
	Quantity       int                   `json:"quantity" validate:"min=1"`
}

type CreateMatrixRequest struct {
	Name         string               `json:"name" validate:"required,min=1,max=200"`
	Description  string               `json:"description" validate:"max=1000"`
	SubjectID    uuid.UUID            `json:"subject_id" validate:"required"`
	Grade        int                  `json:"grade" validate:"min=1,max=12"`
	Requirements []RequirementRequest `json:"requirements" validate:"dive"`
}

type ReplaceRequirementsRequest struct {
	Requirements []RequirementRequest `json:"requirements" validate:"dive"`
}

type RemoveRequirementRequest struct {
	TopicID        uuid.UUID             `json:"topic_id" validate:"required"`
	CognitiveLevel models.CognitiveLevel `json:"cognitive_level" validate:"required,cognitive_level"`
}

type MatrixResponse struct {
	*models.Matrix
	Requirements       []models.MatrixTopicRequirement `json:"requirements"`
	TotalQuestionCount int                             `json:"total_question_count"`
}

// ===== EXAM =====

type CreateExamRequest struct {
	Name        string     `json:"name" validate:"required,min=1,max=200"`
	Description string     `json:"description" validate:"max=1000"`
	SubjectID   uuid.UUID  `json:"subject_id" validate:"required"`
	Grade       int        `json:"grade" validate:"min=1,max=12"`
	MatrixID    *uuid.UUID `json:"matrix_id,omitempty"`
}

type AddQuestionRequest struct {
	QuestionID uuid.UUID `json:"question_id" validate:"required"`
	OrderIndex *int      `json:"order_index,omitempty" validate:"omitempty,min=0"`
}

type ReorderQuestionsRequest struct {
	QuestionIDs []uuid.UUID `json:"question_ids" validate:"required,min=1"`
}

// AttachMatrixRequest clears the matrix when MatrixID is null
type AttachMatrixRequest struct {
	MatrixID *uuid.UUID `json:"matrix_id"`
}

type ExamQuestionItem struct {
	QuestionID     uuid.UUID             `json:"question_id"`
	OrderIndex     int                   `json:"order_index"`
	TopicID        uuid.UUID             `json:"topic_id"`
	CognitiveLevel models.CognitiveLevel `json:"cognitive_level"`
	Type           models.QuestionType   `json:"type"`
	Point          float64               `json:"point"`
}

type ExamResponse struct {
	*models.Exam
	Status      models.ExamStatus  `json:"status"`
	Questions   []ExamQuestionItem `json:"questions"`
	TotalPoints float64            `json:"total_points"`
}

type ExamResult struct {
	Exam   *ExamResponse               `json:"exam"`
	Events []*events.NotificationEvent `json:"-"`
}

type PublishExamResult struct {
	ExamResult
	Warnings    []string       `json:"warnings,omitempty"`
	Fulfillment *matrix.Report `json:"fulfillment,omitempty"`
}

// ===== SESSION =====

type CreateSessionRequest struct {
	ExamID                 uuid.UUID `json:"exam_id" validate:"required"`
	ClassID                uuid.UUID `json:"class_id" validate:"required"`
	StartTime              time.Time `json:"start_time" validate:"required"`
	EndTime                time.Time `json:"end_time" validate:"required"`
	RetryTimes             int       `json:"retry_times"`
	IsRetryable            bool      `json:"is_retryable"`
	ShouldShuffleQuestions bool      `json:"should_shuffle_questions"`
	ShouldShuffleAnswers   bool      `json:"should_shuffle_answers"`
	AllowPartialScoring    bool      `json:"allow_partial_scoring"`
}

// UpdateSessionRequest changes only the fields that are set
type UpdateSessionRequest struct {
	StartTime              *time.Time `json:"start_time,omitempty"`
	EndTime                *time.Time `json:"end_time,omitempty"`
	RetryTimes             *int       `json:"retry_times,omitempty"`
	IsRetryable            *bool      `json:"is_retryable,omitempty"`
	ShouldShuffleQuestions *bool      `json:"should_shuffle_questions,omitempty"`
	ShouldShuffleAnswers   *bool      `json:"should_shuffle_answers,omitempty"`
	AllowPartialScoring    *bool      `json:"allow_partial_scoring,omitempty"`
}

type SessionResult struct {
	Session *models.ExamSession         `json:"session"`
	Events  []*events.NotificationEvent `json:"-"`
}

// ===== ATTEMPT =====

type SubmitAttemptRequest struct {
	Answers []scoring.Submission `json:"answers" validate:"dive"`
}

type AnswerGradeRequest struct {
	QuestionID uuid.UUID `json:"question_id" validate:"required"`
	Score      float64   `json:"score" validate:"gte=0"`
}

// GradeAttemptRequest carries either a total score or per-answer grades
type GradeAttemptRequest struct {
	Score        *float64             `json:"score,omitempty" validate:"omitempty,gte=0"`
	AnswerGrades []AnswerGradeRequest `json:"answer_grades,omitempty" validate:"dive"`
}

type AttemptResponse struct {
	*models.StudentExamAttempt
	DisplayStatus models.AttemptStatus    `json:"display_status"`
	Percentage    float64                 `json:"percentage"`
	Answers       []*models.StudentAnswer `json:"answers,omitempty"`
}

type AttemptResult struct {
	Attempt *AttemptResponse            `json:"attempt"`
	Events  []*events.NotificationEvent `json:"-"`
}

// AttemptPaper is what a student sees while taking an attempt
type AttemptPaper struct {
	AttemptID   uuid.UUID            `json:"attempt_id"`
	SessionID   uuid.UUID            `json:"session_id"`
	Status      models.AttemptStatus `json:"status"`
	EndsAt      time.Time            `json:"ends_at"`
	Questions   []*models.Question   `json:"questions"`
	TotalPoints float64              `json:"total_points"`
}

// ===== RESULTS =====

type ExportFormat string

const (
	ExportXLSX ExportFormat = "xlsx"
	ExportCSV  ExportFormat = "csv"
)

type AttemptSummary struct {
	AttemptID     uuid.UUID            `json:"attempt_id"`
	AttemptNumber int                  `json:"attempt_number"`
	Status        models.AttemptStatus `json:"status"`
	Score         float64              `json:"score"`
	TotalPoints   float64              `json:"total_points"`
	Percentage    float64              `json:"percentage"`
	StartedAt     time.Time            `json:"started_at"`
	SubmittedAt   *time.Time           `json:"submitted_at,omitempty"`
}

type StudentResult struct {
	StudentID       string           `json:"student_id"`
	AttemptsUsed    int              `json:"attempts_used"`
	AttemptsAllowed int              `json:"attempts_allowed"`
	Best            *AttemptSummary  `json:"best,omitempty"`
	Latest          *AttemptSummary  `json:"latest,omitempty"`
	Attempts        []AttemptSummary `json:"attempts"`
}

type ResultStats struct {
	AttemptCount      int     `json:"attempt_count"`
	CompletedCount    int     `json:"completed_count"`
	AveragePercentage float64 `json:"average_percentage"`
	MaxPercentage     float64 `json:"max_percentage"`
	MinPercentage     float64 `json:"min_percentage"`
}

type SessionResults struct {
	SessionID   uuid.UUID       `json:"session_id"`
	ExamID      uuid.UUID       `json:"exam_id"`
	Students    []StudentResult `json:"students"`
	Stats       ResultStats     `json:"stats"`
	GeneratedAt time.Time       `json:"generated_at"`
}
