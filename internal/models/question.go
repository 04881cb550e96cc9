package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

type QuestionType string

const (
	SingleChoice   QuestionType = "single_choice"
	MultipleAnswer QuestionType = "multiple_answer"
	TrueFalse      QuestionType = "true_false"
	Essay          QuestionType = "essay"
	FillInBlank    QuestionType = "fill_in_blank"
)

func (t QuestionType) IsValid() bool {
	switch t {
	case SingleChoice, MultipleAnswer, TrueFalse, Essay, FillInBlank:
		return true
	}
	return false
}

// IsObjective reports whether answers of this type are scored automatically.
func (t QuestionType) IsObjective() bool {
	return t.IsValid() && t != Essay
}

// Question is a catalog record. Answers is a read view loaded with the question
// and is never written through this service.
type Question struct {
	ID             uuid.UUID      `json:"id" gorm:"type:uuid;primaryKey"`
	TopicID        uuid.UUID      `json:"topic_id" gorm:"type:uuid;not null;index:idx_question_slot"`
	CognitiveLevel CognitiveLevel `json:"cognitive_level" gorm:"size:20;not null;index:idx_question_slot"`
	Type           QuestionType   `json:"type" gorm:"size:20;not null"`
	Content        string         `json:"content" gorm:"type:text;not null"`
	Point          float64        `json:"point" gorm:"type:numeric(6,2);not null"`
	IsPublic       bool           `json:"is_public" gorm:"default:false"`
	CreatedBy      string         `json:"created_by" gorm:"size:64;index"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`

	Answers []Answer `json:"answers" gorm:"foreignKey:QuestionID"`
}

func (Question) TableName() string {
	return "questions"
}

type Answer struct {
	ID         uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	QuestionID uuid.UUID `json:"question_id" gorm:"type:uuid;not null;index"`
	Content    string    `json:"content" gorm:"type:text;not null"`
	IsCorrect  bool      `json:"is_correct" gorm:"default:false"`
	Position   int       `json:"position" gorm:"default:0"`
}

func (Answer) TableName() string {
	return "answers"
}

// CorrectAnswerIDs returns the ids of the answers marked correct, in position order.
func (q *Question) CorrectAnswerIDs() []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(q.Answers))
	for _, a := range q.Answers {
		if a.IsCorrect {
			ids = append(ids, a.ID)
		}
	}
	return ids
}

// ValidateAnswerKey checks the answer-key shape required by the question type.
func (q *Question) ValidateAnswerKey() error {
	if q.Point <= 0 {
		return fmt.Errorf("question %s: point must be positive", q.ID)
	}

	correct := len(q.CorrectAnswerIDs())
	switch q.Type {
	case SingleChoice, TrueFalse:
		if correct != 1 {
			return fmt.Errorf("question %s: %s requires exactly one correct answer, got %d", q.ID, q.Type, correct)
		}
	case MultipleAnswer, FillInBlank:
		if correct < 1 {
			return fmt.Errorf("question %s: %s requires at least one correct answer", q.ID, q.Type)
		}
	case Essay:
	default:
		return fmt.Errorf("question %s: unknown type %q", q.ID, q.Type)
	}
	return nil
}

// WithoutAnswerKey returns a copy safe to show to a student.
func (q *Question) WithoutAnswerKey() *Question {
	clone := *q
	clone.Answers = make([]Answer, 0, len(q.Answers))
	if q.Type == FillInBlank {
		return &clone
	}
	for _, a := range q.Answers {
		a.IsCorrect = false
		clone.Answers = append(clone.Answers, a)
	}
	return &clone
}

// TotalPoints sums the point value of the given questions.
func TotalPoints(questions []*Question) float64 {
	var total float64
	for _, q := range questions {
		total += q.Point
	}
	return total
}
