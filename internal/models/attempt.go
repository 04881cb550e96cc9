package models

import (
	"math"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type AttemptStatus string

const (
	AttemptInProgress AttemptStatus = "in_progress"
	AttemptSubmitted  AttemptStatus = "submitted"
	AttemptGraded     AttemptStatus = "graded"
	AttemptTimedOut   AttemptStatus = "timed_out"
)

var attemptTransitions = map[AttemptStatus][]AttemptStatus{
	AttemptInProgress: {AttemptSubmitted, AttemptTimedOut},
	AttemptSubmitted:  {AttemptGraded},
}

// CanTransitionTo reports whether the attempt state machine allows s -> next.
func (s AttemptStatus) CanTransitionTo(next AttemptStatus) bool {
	for _, allowed := range attemptTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

func (s AttemptStatus) IsTerminal() bool {
	return len(attemptTransitions[s]) == 0
}

// StudentExamAttempt is one pass of a student through a session. The
// (session, student, attempt number) triple is unique and serializes
// concurrent starts.
type StudentExamAttempt struct {
	ID            uuid.UUID     `json:"id" gorm:"type:uuid;primaryKey"`
	ExamSessionID uuid.UUID     `json:"exam_session_id" gorm:"type:uuid;not null;uniqueIndex:idx_attempt_slot,priority:1"`
	StudentID     string        `json:"student_id" gorm:"size:64;not null;uniqueIndex:idx_attempt_slot,priority:2"`
	AttemptNumber int           `json:"attempt_number" gorm:"not null;uniqueIndex:idx_attempt_slot,priority:3"`
	StartedAt     time.Time     `json:"started_at" gorm:"not null"`
	SubmittedAt   *time.Time    `json:"submitted_at,omitempty"`
	Score         float64       `json:"score" gorm:"type:numeric(8,2);default:0"`
	TotalPoints   float64       `json:"total_points" gorm:"type:numeric(8,2);default:0"`
	Status        AttemptStatus `json:"status" gorm:"size:20;not null;index"`
	UpdatedAt     time.Time     `json:"updated_at"`
}

func (StudentExamAttempt) TableName() string {
	return "student_exam_attempts"
}

func (a *StudentExamAttempt) BeforeCreate(*gorm.DB) error {
	ensureID(&a.ID)
	return nil
}

// GetScorePercentage rounds to two decimals and is 0 when the attempt carries
// no points.
func (a *StudentExamAttempt) GetScorePercentage() float64 {
	if a.TotalPoints <= 0 {
		return 0
	}
	pct := RoundTo2(a.Score / a.TotalPoints * 100)
	if pct < 0 || math.IsNaN(pct) {
		return 0
	}
	return pct
}

// IsEffectivelyTimedOut is true for an attempt still recorded in progress after
// its session window closed.
func (a *StudentExamAttempt) IsEffectivelyTimedOut(session *ExamSession, now time.Time) bool {
	return a.Status == AttemptInProgress && session.HasEnded(now)
}

// DisplayStatus is the status a results view should show.
func (a *StudentExamAttempt) DisplayStatus(session *ExamSession, now time.Time) AttemptStatus {
	if a.IsEffectivelyTimedOut(session, now) {
		return AttemptTimedOut
	}
	return a.Status
}

// StudentAnswer is written once at submission. Only a grading action changes it.
type StudentAnswer struct {
	ID                 uuid.UUID                      `json:"id" gorm:"type:uuid;primaryKey"`
	AttemptID          uuid.UUID                      `json:"attempt_id" gorm:"type:uuid;not null;uniqueIndex:idx_attempt_question,priority:1"`
	QuestionID         uuid.UUID                      `json:"question_id" gorm:"type:uuid;not null;uniqueIndex:idx_attempt_question,priority:2"`
	SelectedAnswerIDs  datatypes.JSONSlice[uuid.UUID] `json:"selected_answer_ids" gorm:"type:jsonb"`
	TextAnswer         string                         `json:"text_answer,omitempty" gorm:"type:text"`
	Score              float64                        `json:"score" gorm:"type:numeric(6,2);default:0"`
	IsCorrect          bool                           `json:"is_correct" gorm:"default:false"`
	IsPartiallyCorrect bool                           `json:"is_partially_correct" gorm:"default:false"`
	NeedsGrading       bool                           `json:"needs_grading" gorm:"default:false"`
	GradedBy           *string                        `json:"graded_by,omitempty" gorm:"size:64"`
	GradedAt           *time.Time                     `json:"graded_at,omitempty"`
	CreatedAt          time.Time                      `json:"created_at"`
	UpdatedAt          time.Time                      `json:"updated_at"`
}

func (StudentAnswer) TableName() string {
	return "student_answers"
}

func (a *StudentAnswer) BeforeCreate(*gorm.DB) error {
	ensureID(&a.ID)
	return nil
}

// RoundTo2 rounds half away from zero to two decimals.
func RoundTo2(v float64) float64 {
	return math.Round(v*100) / 100
}
