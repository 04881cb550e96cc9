package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ExamStatus string

const (
	ExamStatusDraft     ExamStatus = "draft"
	ExamStatusPublished ExamStatus = "published"
	ExamStatusArchived  ExamStatus = "archived"
)

type Exam struct {
	ID          uuid.UUID      `json:"id" gorm:"type:uuid;primaryKey"`
	Name        string         `json:"name" gorm:"not null;size:200" validate:"required,min=1,max=200"`
	Description string         `json:"description" gorm:"type:text" validate:"max=1000"`
	SubjectID   uuid.UUID      `json:"subject_id" gorm:"type:uuid;not null;index"`
	Grade       int            `json:"grade" gorm:"not null" validate:"min=1,max=12"`
	MatrixID    *uuid.UUID     `json:"matrix_id,omitempty" gorm:"type:uuid;index"`
	IsDraft     bool           `json:"is_draft" gorm:"default:true"`
	IsActive    bool           `json:"is_active" gorm:"default:true"`
	CreatedBy   string         `json:"created_by" gorm:"size:64;not null;index"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `json:"-" gorm:"index"`
}

func (Exam) TableName() string {
	return "exams"
}

func (e *Exam) BeforeCreate(*gorm.DB) error {
	ensureID(&e.ID)
	return nil
}

func (e *Exam) Status() ExamStatus {
	switch {
	case e.IsDraft:
		return ExamStatusDraft
	case !e.IsActive:
		return ExamStatusArchived
	default:
		return ExamStatusPublished
	}
}

// ExamQuestion attaches a catalog question to an exam. Order indexes are unique
// per exam but may have gaps.
type ExamQuestion struct {
	ExamID     uuid.UUID `json:"exam_id" gorm:"type:uuid;primaryKey;uniqueIndex:idx_exam_order,priority:1"`
	QuestionID uuid.UUID `json:"question_id" gorm:"type:uuid;primaryKey"`
	OrderIndex int       `json:"order_index" gorm:"not null;uniqueIndex:idx_exam_order,priority:2"`
	CreatedAt  time.Time `json:"created_at"`
}

func (ExamQuestion) TableName() string {
	return "exam_questions"
}
