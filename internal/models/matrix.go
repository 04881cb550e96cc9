package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Matrix struct {
	ID          uuid.UUID      `json:"id" gorm:"type:uuid;primaryKey"`
	Name        string         `json:"name" gorm:"not null;size:200" validate:"required,min=1,max=200"`
	Description string         `json:"description" gorm:"type:text" validate:"max=1000"`
	SubjectID   uuid.UUID      `json:"subject_id" gorm:"type:uuid;not null;index"`
	Grade       int            `json:"grade" gorm:"not null" validate:"min=1,max=12"`
	CreatedBy   string         `json:"created_by" gorm:"size:64;not null;index"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `json:"-" gorm:"index"`
}

func (Matrix) TableName() string {
	return "matrices"
}

func (m *Matrix) BeforeCreate(*gorm.DB) error {
	ensureID(&m.ID)
	return nil
}

// MatrixTopicRequirement is one (topic, cognitive level) slot of a matrix.
type MatrixTopicRequirement struct {
	MatrixID       uuid.UUID      `json:"matrix_id" gorm:"type:uuid;primaryKey"`
	TopicID        uuid.UUID      `json:"topic_id" gorm:"type:uuid;primaryKey" validate:"required"`
	CognitiveLevel CognitiveLevel `json:"cognitive_level" gorm:"size:20;primaryKey" validate:"required,cognitive_level"`
	Quantity       int            `json:"quantity" gorm:"not null" validate:"min=1"`
	UpdatedAt      time.Time      `json:"updated_at"`
}

func (MatrixTopicRequirement) TableName() string {
	return "matrix_topic_requirements"
}

// TotalQuestionCount is the number of questions a fully satisfied exam holds
// inside the matrix.
func TotalQuestionCount(requirements []MatrixTopicRequirement) int {
	total := 0
	for _, r := range requirements {
		total += r.Quantity
	}
	return total
}

func ensureID(id *uuid.UUID) {
	if *id == uuid.Nil {
		*id = uuid.New()
	}
}
