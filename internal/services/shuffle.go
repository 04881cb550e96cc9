package services

import (
	"encoding/binary"
	"math/rand/v2"

	"github.com/SAP-F-2025/exam-session-service/internal/models"
	"github.com/google/uuid"
)

// attemptRand is seeded from the attempt id, xor-ed with salt, so the same
// attempt always sees the same order.
func attemptRand(attemptID, salt uuid.UUID) *rand.Rand {
	hi := binary.BigEndian.Uint64(attemptID[:8]) ^ binary.BigEndian.Uint64(salt[:8])
	lo := binary.BigEndian.Uint64(attemptID[8:]) ^ binary.BigEndian.Uint64(salt[8:])
	return rand.New(rand.NewPCG(hi, lo))
}

// shuffleQuestions returns a reordered copy of questions
func shuffleQuestions(attemptID uuid.UUID, questions []*models.Question) []*models.Question {
	out := append([]*models.Question(nil), questions...)
	r := attemptRand(attemptID, uuid.Nil)
	r.Shuffle(len(out), func(i, j int) { out[i], out[j] = out[j], out[i] })
	return out
}

// shuffleAnswers reorders q.Answers in place. q must be a copy owned by the caller.
func shuffleAnswers(attemptID uuid.UUID, q *models.Question) {
	r := attemptRand(attemptID, q.ID)
	r.Shuffle(len(q.Answers), func(i, j int) { q.Answers[i], q.Answers[j] = q.Answers[j], q.Answers[i] })
}

// buildPaper strips answer keys and applies the session's shuffle flags
func buildPaper(attempt *models.StudentExamAttempt, session *models.ExamSession, questions []*models.Question) *AttemptPaper {
	safe := make([]*models.Question, 0, len(questions))
	for _, q := range questions {
		clone := q.WithoutAnswerKey()
		if session.ShouldShuffleAnswers {
			shuffleAnswers(attempt.ID, clone)
		}
		safe = append(safe, clone)
	}
	if session.ShouldShuffleQuestions {
		safe = shuffleQuestions(attempt.ID, safe)
	}

	return &AttemptPaper{
		AttemptID:   attempt.ID,
		SessionID:   session.ID,
		Status:      attempt.Status,
		EndsAt:      session.EndTime,
		Questions:   safe,
		TotalPoints: models.RoundTo2(models.TotalPoints(questions)),
	}
}
