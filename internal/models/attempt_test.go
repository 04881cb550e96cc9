package models

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestStudentExamAttempt_GetScorePercentage(t *testing.T) {
	tests := []struct {
		name  string
		score float64
		total float64
		want  float64
	}{
		{"zero total", 5, 0, 0},
		{"zero score zero total", 0, 0, 0},
		{"full", 10, 10, 100},
		{"two decimals", 2, 3, 66.67},
		{"one third", 1, 3, 33.33},
		{"negative total", 1, -3, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := &StudentExamAttempt{Score: tt.score, TotalPoints: tt.total}
			got := a.GetScorePercentage()
			assert.Equal(t, tt.want, got)
			assert.False(t, math.IsNaN(got))
		})
	}
}

func TestAttemptStatus_Transitions(t *testing.T) {
	assert.True(t, AttemptInProgress.CanTransitionTo(AttemptSubmitted))
	assert.True(t, AttemptInProgress.CanTransitionTo(AttemptTimedOut))
	assert.True(t, AttemptSubmitted.CanTransitionTo(AttemptGraded))

	assert.False(t, AttemptInProgress.CanTransitionTo(AttemptGraded))
	assert.False(t, AttemptSubmitted.CanTransitionTo(AttemptSubmitted))
	assert.False(t, AttemptSubmitted.CanTransitionTo(AttemptInProgress))
	assert.False(t, AttemptTimedOut.CanTransitionTo(AttemptInProgress))
	assert.False(t, AttemptTimedOut.CanTransitionTo(AttemptSubmitted))
	assert.False(t, AttemptGraded.CanTransitionTo(AttemptSubmitted))

	assert.True(t, AttemptTimedOut.IsTerminal())
	assert.True(t, AttemptGraded.IsTerminal())
	assert.False(t, AttemptSubmitted.IsTerminal())
	assert.False(t, AttemptInProgress.IsTerminal())
}

func TestStudentExamAttempt_DisplayStatus(t *testing.T) {
	s := newSession(false, 0)
	during := sessionStart.Add(time.Minute)
	after := sessionStart.Add(2 * time.Hour)

	inProgress := &StudentExamAttempt{Status: AttemptInProgress}
	assert.Equal(t, AttemptInProgress, inProgress.DisplayStatus(s, during))
	assert.True(t, inProgress.IsEffectivelyTimedOut(s, after))
	assert.Equal(t, AttemptTimedOut, inProgress.DisplayStatus(s, after))

	submitted := &StudentExamAttempt{Status: AttemptSubmitted}
	assert.False(t, submitted.IsEffectivelyTimedOut(s, after))
	assert.Equal(t, AttemptSubmitted, submitted.DisplayStatus(s, after))
}

func TestQuestion_WithoutAnswerKey(t *testing.T) {
	q := &Question{Type: SingleChoice, Answers: []Answer{{Content: "a", IsCorrect: true}, {Content: "b"}}}

	safe := q.WithoutAnswerKey()

	for _, a := range safe.Answers {
		assert.False(t, a.IsCorrect)
	}
	assert.True(t, q.Answers[0].IsCorrect, "original is untouched")

	blank := &Question{Type: FillInBlank, Answers: []Answer{{Content: "secret", IsCorrect: true}}}
	assert.Empty(t, blank.WithoutAnswerKey().Answers)
}

func TestCognitiveLevel_Rank(t *testing.T) {
	assert.Less(t, CognitiveRemember.Rank(), CognitiveUnderstand.Rank())
	assert.Less(t, CognitiveUnderstand.Rank(), CognitiveApply.Rank())
	assert.Less(t, CognitiveApply.Rank(), CognitiveAnalyze.Rank())
	assert.False(t, CognitiveLevel("create").IsValid())
}
