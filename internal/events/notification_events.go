package events

import (
	"time"

	"github.com/google/uuid"
)

// EventType represents the outbound domain events
type EventType string

const (
	// Exam events
	EventExamPublished EventType = "exam.published"
	EventExamArchived  EventType = "exam.archived"

	// Session events
	EventSessionCreated     EventType = "session.created"
	EventSessionActivated   EventType = "session.activated"
	EventSessionDeactivated EventType = "session.deactivated"

	// Attempt events
	EventAttemptStarted   EventType = "attempt.started"
	EventAttemptSubmitted EventType = "attempt.submitted"
	EventAttemptTimedOut  EventType = "attempt.timed_out"
	EventAttemptGraded    EventType = "attempt.graded"
)

const (
	eventSource  = "exam-session-service"
	eventVersion = "1.0"
)

// NotificationEvent is the envelope of every published event
type NotificationEvent struct {
	ID        string                 `json:"id"`
	Type      EventType              `json:"type"`
	Timestamp time.Time              `json:"timestamp"`
	Source    string                 `json:"source"`
	Version   string                 `json:"version"`
	Data      interface{}            `json:"data"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
}

// Exam event payloads

type ExamPublishedEvent struct {
	ExamID        uuid.UUID `json:"exam_id"`
	ExamName      string    `json:"exam_name"`
	QuestionCount int       `json:"question_count"`
	Warnings      []string  `json:"warnings,omitempty"`
	PublishedBy   string    `json:"published_by"`
}

type ExamArchivedEvent struct {
	ExamID     uuid.UUID `json:"exam_id"`
	ExamName   string    `json:"exam_name"`
	ArchivedBy string    `json:"archived_by"`
}

// Session event payloads

type SessionEvent struct {
	SessionID uuid.UUID `json:"session_id"`
	ExamID    uuid.UUID `json:"exam_id"`
	ClassID   uuid.UUID `json:"class_id"`
	StartTime time.Time `json:"start_time"`
	EndTime   time.Time `json:"end_time"`
	ActorID   string    `json:"actor_id"`
}

// Attempt event payloads

type AttemptStartedEvent struct {
	AttemptID     uuid.UUID `json:"attempt_id"`
	SessionID     uuid.UUID `json:"session_id"`
	StudentID     string    `json:"student_id"`
	AttemptNumber int       `json:"attempt_number"`
	StartedAt     time.Time `json:"started_at"`
}

type AttemptSubmittedEvent struct {
	AttemptID       uuid.UUID `json:"attempt_id"`
	SessionID       uuid.UUID `json:"session_id"`
	StudentID       string    `json:"student_id"`
	SubmittedAt     time.Time `json:"submitted_at"`
	Score           float64   `json:"score"`
	TotalPoints     float64   `json:"total_points"`
	Percentage      float64   `json:"percentage"`
	GradingRequired bool      `json:"grading_required"`
}

type AttemptTimedOutEvent struct {
	AttemptID  uuid.UUID `json:"attempt_id"`
	SessionID  uuid.UUID `json:"session_id"`
	StudentID  string    `json:"student_id"`
	TimedOutAt time.Time `json:"timed_out_at"`
}

type AttemptGradedEvent struct {
	AttemptID   uuid.UUID `json:"attempt_id"`
	SessionID   uuid.UUID `json:"session_id"`
	StudentID   string    `json:"student_id"`
	Score       float64   `json:"score"`
	TotalPoints float64   `json:"total_points"`
	Percentage  float64   `json:"percentage"`
	GraderID    string    `json:"grader_id"`
	GradedAt    time.Time `json:"graded_at"`
}

// Event factory functions

func newEvent(eventType EventType, data interface{}) *NotificationEvent {
	return &NotificationEvent{
		ID:        GenerateEventID(),
		Type:      eventType,
		Timestamp: time.Now().UTC(),
		Source:    eventSource,
		Version:   eventVersion,
		Data:      data,
	}
}

func NewExamPublishedEvent(examID uuid.UUID, name string, questionCount int, warnings []string, publishedBy string) *NotificationEvent {
	return newEvent(EventExamPublished, ExamPublishedEvent{
		ExamID:        examID,
		ExamName:      name,
		QuestionCount: questionCount,
		Warnings:      warnings,
		PublishedBy:   publishedBy,
	})
}

func NewExamArchivedEvent(examID uuid.UUID, name, archivedBy string) *NotificationEvent {
	return newEvent(EventExamArchived, ExamArchivedEvent{
		ExamID:     examID,
		ExamName:   name,
		ArchivedBy: archivedBy,
	})
}

// NewSessionEvent builds one of the session.* events
func NewSessionEvent(eventType EventType, sessionID, examID, classID uuid.UUID, start, end time.Time, actorID string) *NotificationEvent {
	return newEvent(eventType, SessionEvent{
		SessionID: sessionID,
		ExamID:    examID,
		ClassID:   classID,
		StartTime: start,
		EndTime:   end,
		ActorID:   actorID,
	})
}

func NewAttemptStartedEvent(attemptID, sessionID uuid.UUID, studentID string, attemptNumber int, startedAt time.Time) *NotificationEvent {
	return newEvent(EventAttemptStarted, AttemptStartedEvent{
		AttemptID:     attemptID,
		SessionID:     sessionID,
		StudentID:     studentID,
		AttemptNumber: attemptNumber,
		StartedAt:     startedAt,
	})
}

func NewAttemptSubmittedEvent(attemptID, sessionID uuid.UUID, studentID string, submittedAt time.Time, score, totalPoints, percentage float64, gradingRequired bool) *NotificationEvent {
	return newEvent(EventAttemptSubmitted, AttemptSubmittedEvent{
		AttemptID:       attemptID,
		SessionID:       sessionID,
		StudentID:       studentID,
		SubmittedAt:     submittedAt,
		Score:           score,
		TotalPoints:     totalPoints,
		Percentage:      percentage,
		GradingRequired: gradingRequired,
	})
}

func NewAttemptTimedOutEvent(attemptID, sessionID uuid.UUID, studentID string, timedOutAt time.Time) *NotificationEvent {
	return newEvent(EventAttemptTimedOut, AttemptTimedOutEvent{
		AttemptID:  attemptID,
		SessionID:  sessionID,
		StudentID:  studentID,
		TimedOutAt: timedOutAt,
	})
}

func NewAttemptGradedEvent(attemptID, sessionID uuid.UUID, studentID string, score, totalPoints, percentage float64, graderID string, gradedAt time.Time) *NotificationEvent {
	return newEvent(EventAttemptGraded, AttemptGradedEvent{
		AttemptID:   attemptID,
		SessionID:   sessionID,
		StudentID:   studentID,
		Score:       score,
		TotalPoints: totalPoints,
		Percentage:  percentage,
		GraderID:    graderID,
		GradedAt:    gradedAt,
	})
}

// GenerateEventID returns a new random event id
func GenerateEventID() string {
	return uuid.NewString()
}
