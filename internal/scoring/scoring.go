// Package scoring grades submitted answers against catalog answer keys. All
// functions are pure.
package scoring

import (
	"math"
	"strings"

	"github.com/SAP-F-2025/exam-session-service/internal/models"
	"github.com/google/uuid"
)

const (
	ReasonCorrect       = "correct"
	ReasonWrong         = "wrong"
	ReasonPartial       = "partial"
	ReasonUnanswered    = "unanswered"
	ReasonManualGrading = "manual_grading_required"
	ReasonMalformedKey  = "malformed_answer_key"
	ReasonUnsupported   = "unsupported_type"
)

// Submission is what a student sent for one question. Selected answers are
// matched by id, so presentation order never matters.
type Submission struct {
	QuestionID        uuid.UUID   `json:"question_id" validate:"required"`
	SelectedAnswerIDs []uuid.UUID `json:"selected_answer_ids"`
	TextAnswer        string      `json:"text_answer"`
}

func (s Submission) IsEmpty() bool {
	return len(s.SelectedAnswerIDs) == 0 && strings.TrimSpace(s.TextAnswer) == ""
}

type Result struct {
	Points             float64 `json:"points"`
	IsCorrect          bool    `json:"is_correct"`
	IsPartiallyCorrect bool    `json:"is_partially_correct"`
	NeedsManualGrading bool    `json:"needs_manual_grading"`
	Reason             string  `json:"reason"`
}

// Score grades one submission. Multiple-answer questions earn partial credit
// only when allowPartialScoring is set.
func Score(q *models.Question, sub Submission, allowPartialScoring bool) Result {
	if q.Type == models.Essay {
		return Result{NeedsManualGrading: true, Reason: ReasonManualGrading}
	}
	if sub.IsEmpty() {
		return Result{Reason: ReasonUnanswered}
	}

	switch q.Type {
	case models.SingleChoice, models.TrueFalse:
		return scoreSingle(q, sub)
	case models.MultipleAnswer:
		return scoreMultiple(q, sub, allowPartialScoring)
	case models.FillInBlank:
		return scoreFillInBlank(q, sub)
	default:
		return Result{Reason: ReasonUnsupported}
	}
}

func scoreSingle(q *models.Question, sub Submission) Result {
	correct := q.CorrectAnswerIDs()
	if len(correct) != 1 {
		return Result{Reason: ReasonMalformedKey}
	}
	if len(sub.SelectedAnswerIDs) != 1 || sub.SelectedAnswerIDs[0] != correct[0] {
		return Result{Reason: ReasonWrong}
	}
	return Result{Points: q.Point, IsCorrect: true, Reason: ReasonCorrect}
}

func scoreMultiple(q *models.Question, sub Submission, allowPartialScoring bool) Result {
	correct := toSet(q.CorrectAnswerIDs())
	if len(correct) == 0 {
		return Result{Reason: ReasonMalformedKey}
	}
	selected := toSet(sub.SelectedAnswerIDs)

	if equalSet(selected, correct) {
		return Result{Points: q.Point, IsCorrect: true, Reason: ReasonCorrect}
	}
	if !allowPartialScoring {
		return Result{Reason: ReasonWrong}
	}

	correctSelected, incorrectSelected := 0, 0
	for id := range selected {
		if _, ok := correct[id]; ok {
			correctSelected++
		} else {
			incorrectSelected++
		}
	}

	ratio := math.Max(0, float64(correctSelected-incorrectSelected)/float64(len(correct)))
	awarded := models.RoundTo2(q.Point * ratio)
	if awarded <= 0 {
		return Result{Reason: ReasonWrong}
	}
	return Result{
		Points:             awarded,
		IsPartiallyCorrect: awarded < q.Point,
		Reason:             ReasonPartial,
	}
}

// scoreFillInBlank accepts a trimmed, case-insensitive exact match against any
// acceptable answer. There is no fuzzy matching.
func scoreFillInBlank(q *models.Question, sub Submission) Result {
	given := normalize(sub.TextAnswer)
	acceptable := 0
	for _, a := range q.Answers {
		if !a.IsCorrect {
			continue
		}
		acceptable++
		if normalize(a.Content) == given {
			return Result{Points: q.Point, IsCorrect: true, Reason: ReasonCorrect}
		}
	}
	if acceptable == 0 {
		return Result{Reason: ReasonMalformedKey}
	}
	return Result{Reason: ReasonWrong}
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func toSet(ids []uuid.UUID) map[uuid.UUID]struct{} {
	set := make(map[uuid.UUID]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set
}

func equalSet(a, b map[uuid.UUID]struct{}) bool {
	if len(a) != len(b) {
		return false
	}
	for id := range a {
		if _, ok := b[id]; !ok {
			return false
		}
	}
	return true
}
