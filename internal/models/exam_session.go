package models

import (
	"time"

	apperrors "github.com/SAP-F-2025/exam-session-service/internal/errors"
	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// ExamSession schedules one exam for a class. Sessions are never deleted,
// only deactivated.
type ExamSession struct {
	ID                     uuid.UUID                      `json:"id" gorm:"type:uuid;primaryKey"`
	ExamID                 uuid.UUID                      `json:"exam_id" gorm:"type:uuid;not null;index"`
	ClassID                uuid.UUID                      `json:"class_id" gorm:"type:uuid;not null;index"`
	StartTime              time.Time                      `json:"start_time" gorm:"not null"`
	EndTime                time.Time                      `json:"end_time" gorm:"not null"`
	RetryTimes             int                            `json:"retry_times" gorm:"not null;default:0"`
	IsRetryable            bool                           `json:"is_retryable" gorm:"default:false"`
	IsActive               bool                           `json:"is_active" gorm:"default:true"`
	ShouldShuffleQuestions bool                           `json:"should_shuffle_questions" gorm:"default:false"`
	ShouldShuffleAnswers   bool                           `json:"should_shuffle_answers" gorm:"default:false"`
	AllowPartialScoring    bool                           `json:"allow_partial_scoring" gorm:"default:false"`
	QuestionIDs            datatypes.JSONSlice[uuid.UUID] `json:"question_ids" gorm:"type:jsonb;not null"`
	CreatedBy              string                         `json:"created_by" gorm:"size:64;not null;index"`
	CreatedAt              time.Time                      `json:"created_at"`
	UpdatedAt              time.Time                      `json:"updated_at"`
}

func (ExamSession) TableName() string {
	return "exam_sessions"
}

func (s *ExamSession) BeforeCreate(*gorm.DB) error {
	ensureID(&s.ID)
	return nil
}

// Validate checks the scheduling invariants. It is applied on create and on
// every update.
func (s *ExamSession) Validate() error {
	var errs apperrors.ValidationErrors
	if !s.StartTime.Before(s.EndTime) {
		errs = append(errs, *apperrors.NewValidationErrorWithRule("start_time", "must be before end time", "time_window", s.StartTime))
	}
	if s.RetryTimes < 0 {
		errs = append(errs, *apperrors.NewValidationErrorWithRule("retry_times", "must not be negative", "min", s.RetryTimes))
	}
	if s.IsRetryable && s.RetryTimes <= 0 {
		errs = append(errs, *apperrors.NewValidationErrorWithRule("retry_times", "must be greater than 0 when the session is retryable", "retryable", s.RetryTimes))
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}

func (s *ExamSession) IsCurrentlyActive(now time.Time) bool {
	return s.IsActive && !now.Before(s.StartTime) && !now.After(s.EndTime)
}

func (s *ExamSession) IsUpcoming(now time.Time) bool {
	return s.IsActive && now.Before(s.StartTime)
}

// HasEnded ignores IsActive so the flag never reopens an expired window.
func (s *ExamSession) HasEnded(now time.Time) bool {
	return now.After(s.EndTime)
}

// AllowedAttempts is the attempt quota per student.
func (s *ExamSession) AllowedAttempts() int {
	if !s.IsRetryable {
		return 1
	}
	return s.RetryTimes
}

type EligibilityReason string

const (
	ReasonEligible            EligibilityReason = ""
	ReasonSessionInactive     EligibilityReason = "session_inactive"
	ReasonSessionNotStarted   EligibilityReason = "session_not_started"
	ReasonSessionEnded        EligibilityReason = "session_ended"
	ReasonAlreadyAttempted    EligibilityReason = "already_attempted"
	ReasonRetryQuotaExhausted EligibilityReason = "retry_quota_exhausted"
)

type Eligibility struct {
	Eligible        bool              `json:"eligible"`
	Reason          EligibilityReason `json:"reason,omitempty"`
	AttemptsUsed    int               `json:"attempts_used"`
	AttemptsAllowed int               `json:"attempts_allowed"`
}

// CanStudentAttempt decides whether a student with priorAttempts attempts of any
// status may start another one at now.
func (s *ExamSession) CanStudentAttempt(priorAttempts int, now time.Time) Eligibility {
	result := Eligibility{
		AttemptsUsed:    priorAttempts,
		AttemptsAllowed: s.AllowedAttempts(),
	}

	if !s.IsCurrentlyActive(now) {
		switch {
		case !s.IsActive:
			result.Reason = ReasonSessionInactive
		case s.HasEnded(now):
			result.Reason = ReasonSessionEnded
		default:
			result.Reason = ReasonSessionNotStarted
		}
		return result
	}

	if !s.IsRetryable {
		if priorAttempts > 0 {
			result.Reason = ReasonAlreadyAttempted
			return result
		}
		result.Eligible = true
		return result
	}

	if priorAttempts >= s.RetryTimes {
		result.Reason = ReasonRetryQuotaExhausted
		return result
	}
	result.Eligible = true
	return result
}
