package models

import (
	"time"

	"github.com/google/uuid"
)

// CognitiveLevel classifies the thinking skill a question requires.
type CognitiveLevel string

const (
	CognitiveRemember   CognitiveLevel = "remember"
	CognitiveUnderstand CognitiveLevel = "understand"
	CognitiveApply      CognitiveLevel = "apply"
	CognitiveAnalyze    CognitiveLevel = "analyze"
)

// CognitiveLevels lists every level in increasing complexity.
func CognitiveLevels() []CognitiveLevel {
	return []CognitiveLevel{CognitiveRemember, CognitiveUnderstand, CognitiveApply, CognitiveAnalyze}
}

// Rank orders levels for display and grouping. Unknown levels sort last.
func (l CognitiveLevel) Rank() int {
	for i, level := range CognitiveLevels() {
		if level == l {
			return i
		}
	}
	return len(CognitiveLevels())
}

func (l CognitiveLevel) IsValid() bool {
	return l.Rank() < len(CognitiveLevels())
}

// Topic is owned by the subject catalog and only read here.
type Topic struct {
	ID           uuid.UUID  `json:"id" gorm:"type:uuid;primaryKey"`
	Title        string     `json:"title" gorm:"not null;size:255"`
	SubjectID    *uuid.UUID `json:"subject_id,omitempty" gorm:"type:uuid;index"`
	IsCurriculum bool       `json:"is_curriculum" gorm:"default:false"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

func (Topic) TableName() string {
	return "topics"
}
