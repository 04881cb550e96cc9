package matrix

import (
	"github.com/SAP-F-2025/exam-session-service/internal/models"
	"github.com/google/uuid"
)

// Candidates filters available down to the questions that may still be
// assigned to requirement without pushing its count past the quota. assigned
// is the number of questions already in the slot and excluded holds the ids
// already attached to the exam.
func Candidates(
	available []*models.Question,
	requirement models.MatrixTopicRequirement,
	assigned int,
	excluded map[uuid.UUID]struct{},
) []*models.Question {
	if assigned >= requirement.Quantity {
		return []*models.Question{}
	}

	key := KeyOfRequirement(requirement)
	out := make([]*models.Question, 0, len(available))
	for _, q := range available {
		if KeyOf(q) != key {
			continue
		}
		if _, taken := excluded[q.ID]; taken {
			continue
		}
		out = append(out, q)
	}
	return out
}

// AssignedCount counts the questions that fall into key.
func AssignedCount(questions []*models.Question, key Key) int {
	n := 0
	for _, q := range questions {
		if KeyOf(q) == key {
			n++
		}
	}
	return n
}
