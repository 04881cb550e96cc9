package services

import (
	"bytes"
	"context"

	"github.com/SAP-F-2025/exam-session-service/internal/matrix"
	"github.com/SAP-F-2025/exam-session-service/internal/models"
	"github.com/SAP-F-2025/exam-session-service/internal/repositories"
	"github.com/google/uuid"
)

type MatrixService interface {
	Create(ctx context.Context, req *CreateMatrixRequest, userID string) (*MatrixResponse, error)
	GetByID(ctx context.Context, id uuid.UUID) (*MatrixResponse, error)
	Delete(ctx context.Context, id uuid.UUID, userID string) error
	ReplaceRequirements(ctx context.Context, id uuid.UUID, req *ReplaceRequirementsRequest, userID string) (*MatrixResponse, error)
	RemoveRequirement(ctx context.Context, id uuid.UUID, req *RemoveRequirementRequest, userID string) error

	// Fulfillment compares the matrix against the questions of an exam
	Fulfillment(ctx context.Context, matrixID, examID uuid.UUID) (*matrix.Report, error)
	// Candidates lists catalog questions that may still fill the requirement
	// for (topicID, level) in the exam
	Candidates(ctx context.Context, matrixID, examID, topicID uuid.UUID, level models.CognitiveLevel) ([]*models.Question, error)
}

type ExamService interface {
	Create(ctx context.Context, req *CreateExamRequest, userID string) (*ExamResponse, error)
	GetByID(ctx context.Context, id uuid.UUID) (*ExamResponse, error)
	List(ctx context.Context, filters repositories.ExamFilters) ([]*models.Exam, int64, error)

	AddQuestion(ctx context.Context, examID uuid.UUID, req *AddQuestionRequest, userID string) (*models.ExamQuestion, error)
	RemoveQuestion(ctx context.Context, examID, questionID uuid.UUID, userID string) error
	Reorder(ctx context.Context, examID uuid.UUID, req *ReorderQuestionsRequest, userID string) error
	// AttachMatrix sets or clears the matrix of a draft exam
	AttachMatrix(ctx context.Context, examID uuid.UUID, req *AttachMatrixRequest, userID string) (*ExamResponse, error)

	Publish(ctx context.Context, examID uuid.UUID, userID string) (*PublishExamResult, error)
	Archive(ctx context.Context, examID uuid.UUID, userID string) (*ExamResult, error)
}

type ExamSessionService interface {
	Create(ctx context.Context, req *CreateSessionRequest, userID string) (*SessionResult, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.ExamSession, error)
	List(ctx context.Context, filters repositories.ExamSessionFilters) ([]*models.ExamSession, int64, error)
	Update(ctx context.Context, id uuid.UUID, req *UpdateSessionRequest, userID string) (*SessionResult, error)
	Activate(ctx context.Context, id uuid.UUID, userID string) (*SessionResult, error)
	Deactivate(ctx context.Context, id uuid.UUID, userID string) (*SessionResult, error)
	Eligibility(ctx context.Context, sessionID uuid.UUID, studentID string) (*models.Eligibility, error)
}

type AttemptService interface {
	Start(ctx context.Context, sessionID uuid.UUID, studentID string) (*AttemptResult, error)
	GetByID(ctx context.Context, attemptID uuid.UUID, studentID string) (*AttemptResponse, error)
	GetPaper(ctx context.Context, attemptID uuid.UUID, studentID string) (*AttemptPaper, error)
	// ListMine lists the student's own attempts in a session, oldest first
	ListMine(ctx context.Context, sessionID uuid.UUID, studentID string) ([]*AttemptResponse, error)

	// Submit may return a non-nil result together with an error when the
	// attempt had to be reconciled to timed out. Its events must still be
	// published.
	Submit(ctx context.Context, attemptID uuid.UUID, req *SubmitAttemptRequest, studentID string) (*AttemptResult, error)
	MarkTimedOut(ctx context.Context, attemptID uuid.UUID, studentID string) (*AttemptResult, error)
	MarkGraded(ctx context.Context, attemptID uuid.UUID, req *GradeAttemptRequest, graderID string) (*AttemptResult, error)
}

type ResultsService interface {
	// SessionResults and Export are limited to the session creator
	SessionResults(ctx context.Context, sessionID uuid.UUID, requesterID string) (*SessionResults, error)
	Export(ctx context.Context, sessionID uuid.UUID, format ExportFormat, requesterID string) (*bytes.Buffer, error)
}

// ServiceManager hands out the services built on one repository
type ServiceManager interface {
	Matrix() MatrixService
	Exam() ExamService
	ExamSession() ExamSessionService
	Attempt() AttemptService
	Results() ResultsService
}
