package matrix

import (
	"testing"

	"github.com/SAP-F-2025/exam-session-service/internal/models"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func question(topic uuid.UUID, level models.CognitiveLevel) *models.Question {
	return &models.Question{ID: uuid.New(), TopicID: topic, CognitiveLevel: level, Type: models.Essay, Point: 1}
}

func requirement(topic uuid.UUID, level models.CognitiveLevel, qty int) models.MatrixTopicRequirement {
	return models.MatrixTopicRequirement{MatrixID: uuid.New(), TopicID: topic, CognitiveLevel: level, Quantity: qty}
}

func findRequirement(t *testing.T, r Report, key Key) RequirementFulfillment {
	t.Helper()
	for _, rf := range r.Requirements {
		if rf.Key == key {
			return rf
		}
	}
	t.Fatalf("requirement %s not in report", key)
	return RequirementFulfillment{}
}

func TestFulfillment_UnderBlocksSatisfaction(t *testing.T) {
	topicX := uuid.New()
	reqs := []models.MatrixTopicRequirement{requirement(topicX, models.CognitiveRemember, 2)}

	report := Fulfillment(reqs, []*models.Question{question(topicX, models.CognitiveRemember)})

	require.Len(t, report.Requirements, 1)
	rf := report.Requirements[0]
	assert.Equal(t, StatusUnder, rf.Status)
	assert.Equal(t, 2, rf.Required)
	assert.Equal(t, 1, rf.Actual)
	assert.Equal(t, 1, rf.Remaining)
	assert.Equal(t, 50.0, rf.Percentage)
	assert.False(t, report.Satisfied)
	assert.Len(t, report.Under(), 1)
}

func TestFulfillment_ExactAndOver(t *testing.T) {
	topicA, topicB := uuid.New(), uuid.New()
	reqs := []models.MatrixTopicRequirement{
		requirement(topicA, models.CognitiveApply, 1),
		requirement(topicB, models.CognitiveAnalyze, 1),
	}

	exact := Fulfillment(reqs, []*models.Question{
		question(topicA, models.CognitiveApply),
		question(topicB, models.CognitiveAnalyze),
	})
	assert.True(t, exact.Satisfied)
	assert.Empty(t, exact.Warnings())
	assert.Equal(t, 2, exact.TotalRequired)
	assert.Equal(t, 2, exact.TotalActual)

	over := Fulfillment(reqs, []*models.Question{
		question(topicA, models.CognitiveApply),
		question(topicA, models.CognitiveApply),
		question(topicB, models.CognitiveAnalyze),
	})
	assert.False(t, over.Satisfied, "strict equality means over is not satisfied")
	assert.Empty(t, over.Under(), "over never reports missing questions")
	require.Len(t, over.Over(), 1)
	assert.Len(t, over.Warnings(), 1)
	assert.Equal(t, StatusOver, findRequirement(t, over, Key{topicA, models.CognitiveApply}).Status)
}

func TestFulfillment_UnconstrainedQuestionsAreInformational(t *testing.T) {
	topicA, other := uuid.New(), uuid.New()
	reqs := []models.MatrixTopicRequirement{requirement(topicA, models.CognitiveRemember, 1)}

	report := Fulfillment(reqs, []*models.Question{
		question(topicA, models.CognitiveRemember),
		question(other, models.CognitiveRemember),
		question(other, models.CognitiveRemember),
		question(topicA, models.CognitiveUnderstand),
	})

	assert.True(t, report.Satisfied)
	require.Len(t, report.Unconstrained, 2)
	counts := map[Key]int{}
	for _, g := range report.Unconstrained {
		counts[g.Key] = g.Count
	}
	assert.Equal(t, 2, counts[Key{other, models.CognitiveRemember}])
	assert.Equal(t, 1, counts[Key{topicA, models.CognitiveUnderstand}])
}

func TestFulfillment_ChangingOneQuestionIsIsolated(t *testing.T) {
	topicA, topicB, topicC := uuid.New(), uuid.New(), uuid.New()
	reqs := []models.MatrixTopicRequirement{
		requirement(topicA, models.CognitiveRemember, 2),
		requirement(topicB, models.CognitiveApply, 1),
		requirement(topicC, models.CognitiveAnalyze, 1),
	}
	moving := question(topicA, models.CognitiveRemember)
	questions := []*models.Question{
		moving,
		question(topicA, models.CognitiveRemember),
		question(topicC, models.CognitiveAnalyze),
	}

	before := Fulfillment(reqs, questions)
	moving.TopicID = topicB
	moving.CognitiveLevel = models.CognitiveApply
	after := Fulfillment(reqs, questions)

	assert.Equal(t, 2, findRequirement(t, before, Key{topicA, models.CognitiveRemember}).Actual)
	assert.Equal(t, 1, findRequirement(t, after, Key{topicA, models.CognitiveRemember}).Actual)
	assert.Equal(t, 0, findRequirement(t, before, Key{topicB, models.CognitiveApply}).Actual)
	assert.Equal(t, 1, findRequirement(t, after, Key{topicB, models.CognitiveApply}).Actual)

	untouched := Key{topicC, models.CognitiveAnalyze}
	assert.Equal(t, findRequirement(t, before, untouched), findRequirement(t, after, untouched))
}

func TestFulfillment_EmptyMatrixIsSatisfied(t *testing.T) {
	report := Fulfillment(nil, []*models.Question{question(uuid.New(), models.CognitiveApply)})

	assert.True(t, report.Satisfied)
	assert.Empty(t, report.Requirements)
	assert.Len(t, report.Unconstrained, 1)
}

func TestReport_IsQuestionNeeded(t *testing.T) {
	topicA := uuid.New()
	reqs := []models.MatrixTopicRequirement{requirement(topicA, models.CognitiveRemember, 2)}

	report := Fulfillment(reqs, []*models.Question{question(topicA, models.CognitiveRemember)})

	assert.True(t, report.IsQuestionNeeded(question(topicA, models.CognitiveRemember)))
	assert.False(t, report.IsQuestionNeeded(question(topicA, models.CognitiveApply)))
	assert.False(t, report.IsQuestionNeeded(question(uuid.New(), models.CognitiveRemember)))
}

func TestValidateRequirements(t *testing.T) {
	topic := uuid.New()

	t.Run("valid", func(t *testing.T) {
		err := ValidateRequirements([]models.MatrixTopicRequirement{
			requirement(topic, models.CognitiveRemember, 1),
			requirement(topic, models.CognitiveApply, 3),
		})
		assert.NoError(t, err)
	})

	t.Run("duplicate key", func(t *testing.T) {
		err := ValidateRequirements([]models.MatrixTopicRequirement{
			requirement(topic, models.CognitiveRemember, 1),
			requirement(topic, models.CognitiveRemember, 2),
		})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "duplicate matrix key")
	})

	t.Run("non positive quantity and bad level", func(t *testing.T) {
		err := ValidateRequirements([]models.MatrixTopicRequirement{
			requirement(topic, "create", 0),
		})
		require.Error(t, err)
		assert.Equal(t, "validation failed: 2 field errors", err.Error())
	})
}
