package validator

import (
	"github.com/SAP-F-2025/exam-session-service/internal/errors"
	"github.com/SAP-F-2025/exam-session-service/internal/models"
)

// QuestionValidator checks catalog questions before they are attached to an exam
type QuestionValidator struct{}

func NewQuestionValidator() *QuestionValidator {
	return &QuestionValidator{}
}

// ValidateQuestion checks the fields the scoring engine relies on
func (v *QuestionValidator) ValidateQuestion(question *models.Question) error {
	var errs ValidationErrors

	if !question.Type.IsValid() {
		errs = append(errs, *errors.NewValidationErrorWithRule("type", "must be a valid question type", "question_type", question.Type))
	}
	if !question.CognitiveLevel.IsValid() {
		errs = append(errs, *errors.NewValidationErrorWithRule("cognitive_level", "must be a valid cognitive level", "cognitive_level", question.CognitiveLevel))
	}
	if len(errs) > 0 {
		return errs
	}

	if err := question.ValidateAnswerKey(); err != nil {
		return ValidationErrors{*errors.NewValidationErrorWithRule("answers", err.Error(), "answer_key", question.ID)}
	}
	return nil
}
