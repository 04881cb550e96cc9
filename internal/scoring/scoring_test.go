package scoring

import (
	"testing"

	"github.com/SAP-F-2025/exam-session-service/internal/models"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type choice struct {
	id      uuid.UUID
	correct bool
	content string
}

func buildQuestion(qType models.QuestionType, point float64, choices ...choice) *models.Question {
	q := &models.Question{ID: uuid.New(), Type: qType, Point: point, CognitiveLevel: models.CognitiveApply}
	for i, c := range choices {
		q.Answers = append(q.Answers, models.Answer{ID: c.id, QuestionID: q.ID, Content: c.content, IsCorrect: c.correct, Position: i})
	}
	return q
}

func selected(q *models.Question, ids ...uuid.UUID) Submission {
	return Submission{QuestionID: q.ID, SelectedAnswerIDs: ids}
}

func TestScore_SingleChoiceAndTrueFalse(t *testing.T) {
	a, b := uuid.New(), uuid.New()
	single := buildQuestion(models.SingleChoice, 4, choice{id: a, correct: true}, choice{id: b})
	trueFalse := buildQuestion(models.TrueFalse, 1, choice{id: a}, choice{id: b, correct: true})

	tests := []struct {
		name string
		q    *models.Question
		sub  Submission
		want Result
	}{
		{"single correct", single, selected(single, a), Result{Points: 4, IsCorrect: true, Reason: ReasonCorrect}},
		{"single wrong", single, selected(single, b), Result{Reason: ReasonWrong}},
		{"single with two picks", single, selected(single, a, b), Result{Reason: ReasonWrong}},
		{"single unanswered", single, selected(single), Result{Reason: ReasonUnanswered}},
		{"true false correct", trueFalse, selected(trueFalse, b), Result{Points: 1, IsCorrect: true, Reason: ReasonCorrect}},
		{"true false wrong", trueFalse, selected(trueFalse, a), Result{Reason: ReasonWrong}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for _, partial := range []bool{false, true} {
				got := Score(tt.q, tt.sub, partial)
				assert.Equal(t, tt.want, got)
				assert.False(t, got.IsPartiallyCorrect)
			}
		})
	}
}

func TestScore_MultipleAnswer(t *testing.T) {
	a, b, c, d := uuid.New(), uuid.New(), uuid.New(), uuid.New()
	q := buildQuestion(models.MultipleAnswer, 10,
		choice{id: a, correct: true}, choice{id: b, correct: true}, choice{id: c}, choice{id: d})
	three := buildQuestion(models.MultipleAnswer, 10,
		choice{id: a, correct: true}, choice{id: b, correct: true}, choice{id: c, correct: true}, choice{id: d})

	tests := []struct {
		name    string
		q       *models.Question
		ids     []uuid.UUID
		partial bool
		want    Result
	}{
		{"exact set without partial", q, []uuid.UUID{b, a}, false, Result{Points: 10, IsCorrect: true, Reason: ReasonCorrect}},
		{"exact set with partial", q, []uuid.UUID{a, b}, true, Result{Points: 10, IsCorrect: true, Reason: ReasonCorrect}},
		{"subset without partial", q, []uuid.UUID{a}, false, Result{Reason: ReasonWrong}},
		{"subset with partial", q, []uuid.UUID{a}, true, Result{Points: 5, IsPartiallyCorrect: true, Reason: ReasonPartial}},
		{"one right one wrong cancels out", q, []uuid.UUID{a, c}, true, Result{Reason: ReasonWrong}},
		{"penalty floors at zero", q, []uuid.UUID{a, c, d}, true, Result{Reason: ReasonWrong}},
		{"superset is penalised", q, []uuid.UUID{a, b, c}, true, Result{Points: 5, IsPartiallyCorrect: true, Reason: ReasonPartial}},
		{"two of three rounds to cents", three, []uuid.UUID{a, b}, true, Result{Points: 6.67, IsPartiallyCorrect: true, Reason: ReasonPartial}},
		{"duplicate picks count once", q, []uuid.UUID{a, a}, true, Result{Points: 5, IsPartiallyCorrect: true, Reason: ReasonPartial}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Score(tt.q, selected(tt.q, tt.ids...), tt.partial)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestScore_MultipleAnswerPartialScenario(t *testing.T) {
	a, b, c := uuid.New(), uuid.New(), uuid.New()
	q := buildQuestion(models.MultipleAnswer, 10, choice{id: a, correct: true}, choice{id: b, correct: true}, choice{id: c})

	got := Score(q, selected(q, a, c), true)

	assert.Equal(t, 0.0, got.Points)
	assert.False(t, got.IsCorrect)
	assert.False(t, got.IsPartiallyCorrect)
}

func TestScore_FillInBlank(t *testing.T) {
	q := buildQuestion(models.FillInBlank, 2,
		choice{id: uuid.New(), correct: true, content: "Photosynthesis"},
		choice{id: uuid.New(), correct: true, content: "photo synthesis"})

	tests := []struct {
		name string
		text string
		want Result
	}{
		{"exact", "Photosynthesis", Result{Points: 2, IsCorrect: true, Reason: ReasonCorrect}},
		{"case and whitespace", "  PHOTOSYNTHESIS \n", Result{Points: 2, IsCorrect: true, Reason: ReasonCorrect}},
		{"second acceptable answer", "Photo Synthesis", Result{Points: 2, IsCorrect: true, Reason: ReasonCorrect}},
		{"near miss is wrong", "photosynthesys", Result{Reason: ReasonWrong}},
		{"blank", "   ", Result{Reason: ReasonUnanswered}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Score(q, Submission{QuestionID: q.ID, TextAnswer: tt.text}, true)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestScore_EssayNeedsManualGrading(t *testing.T) {
	q := buildQuestion(models.Essay, 5)

	got := Score(q, Submission{QuestionID: q.ID, TextAnswer: "a long answer"}, true)

	assert.Equal(t, Result{NeedsManualGrading: true, Reason: ReasonManualGrading}, got)
}

func TestScore_MalformedKey(t *testing.T) {
	a, b := uuid.New(), uuid.New()
	q := buildQuestion(models.SingleChoice, 1, choice{id: a, correct: true}, choice{id: b, correct: true})

	got := Score(q, selected(q, a), false)

	assert.Equal(t, ReasonMalformedKey, got.Reason)
	assert.Zero(t, got.Points)
}

func TestScore_IsPure(t *testing.T) {
	a, b, c := uuid.New(), uuid.New(), uuid.New()
	q := buildQuestion(models.MultipleAnswer, 3, choice{id: a, correct: true}, choice{id: b, correct: true}, choice{id: c})
	sub := selected(q, a, c, b)

	first := Score(q, sub, true)
	second := Score(q, sub, true)

	assert.Equal(t, first, second)
	assert.Equal(t, []uuid.UUID{a, c, b}, sub.SelectedAnswerIDs, "input must not be reordered")
}

func TestScoreAttempt(t *testing.T) {
	a, b, c := uuid.New(), uuid.New(), uuid.New()
	single := buildQuestion(models.SingleChoice, 2, choice{id: a, correct: true}, choice{id: b})
	multi := buildQuestion(models.MultipleAnswer, 4, choice{id: a, correct: true}, choice{id: b, correct: true}, choice{id: c})
	essay := buildQuestion(models.Essay, 5)
	unanswered := buildQuestion(models.TrueFalse, 1, choice{id: a, correct: true}, choice{id: b})

	submissions := map[uuid.UUID]Submission{
		single.ID: selected(single, a),
		multi.ID:  selected(multi, a),
		essay.ID:  {QuestionID: essay.ID, TextAnswer: "essay"},
	}

	summary := ScoreAttempt([]*models.Question{single, multi, essay, unanswered}, submissions, true)

	assert.Equal(t, 12.0, summary.TotalPoints)
	assert.Equal(t, 4.0, summary.Score)
	assert.Equal(t, 1, summary.PendingManual)
	assert.Equal(t, 3, summary.AnsweredCount)
	assert.Equal(t, 1, summary.CorrectCount)
	assert.Equal(t, 1, summary.PartialCount)
	require.Len(t, summary.Results, 4)
	assert.Equal(t, ReasonUnanswered, summary.Results[3].Result.Reason)
	assert.Equal(t, unanswered.ID, summary.Results[3].Submission.QuestionID)
}

func TestScoreAttempt_NoQuestions(t *testing.T) {
	summary := ScoreAttempt(nil, nil, false)

	assert.Zero(t, summary.TotalPoints)
	assert.Zero(t, summary.Score)
	assert.Empty(t, summary.Results)
}
