package scoring

import (
	"github.com/SAP-F-2025/exam-session-service/internal/models"
	"github.com/google/uuid"
)

// QuestionResult pairs a question with the submission it received and its grade.
type QuestionResult struct {
	Question   *models.Question
	Submission Submission
	Result     Result
}

type Summary struct {
	Score         float64
	TotalPoints   float64
	Results       []QuestionResult
	PendingManual int
	AnsweredCount int
	CorrectCount  int
	PartialCount  int
}

// ScoreAttempt grades every asked question. Questions without a submission
// earn zero; total points include every question asked.
func ScoreAttempt(questions []*models.Question, submissions map[uuid.UUID]Submission, allowPartialScoring bool) Summary {
	summary := Summary{Results: make([]QuestionResult, 0, len(questions))}

	for _, q := range questions {
		summary.TotalPoints += q.Point

		sub, ok := submissions[q.ID]
		if !ok {
			sub = Submission{QuestionID: q.ID}
		}
		if !sub.IsEmpty() {
			summary.AnsweredCount++
		}

		res := Score(q, sub, allowPartialScoring)
		summary.Score += res.Points
		switch {
		case res.NeedsManualGrading:
			summary.PendingManual++
		case res.IsCorrect:
			summary.CorrectCount++
		case res.IsPartiallyCorrect:
			summary.PartialCount++
		}

		summary.Results = append(summary.Results, QuestionResult{Question: q, Submission: sub, Result: res})
	}

	summary.Score = models.RoundTo2(summary.Score)
	summary.TotalPoints = models.RoundTo2(summary.TotalPoints)
	return summary
}
