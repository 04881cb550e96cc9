// Package matrix compares per (topic, cognitive level) question quotas against
// the questions assigned to an exam.
package matrix

import (
	"fmt"
	"sort"

	apperrors "github.com/SAP-F-2025/exam-session-service/internal/errors"
	"github.com/SAP-F-2025/exam-session-service/internal/models"
	"github.com/google/uuid"
)

// Status of a single requirement.
type Status string

const (
	StatusUnder Status = "under"
	StatusExact Status = "exact"
	StatusOver  Status = "over"
)

// Key identifies a matrix slot.
type Key struct {
	TopicID        uuid.UUID             `json:"topic_id"`
	CognitiveLevel models.CognitiveLevel `json:"cognitive_level"`
}

func KeyOf(q *models.Question) Key {
	return Key{TopicID: q.TopicID, CognitiveLevel: q.CognitiveLevel}
}

func KeyOfRequirement(r models.MatrixTopicRequirement) Key {
	return Key{TopicID: r.TopicID, CognitiveLevel: r.CognitiveLevel}
}

func (k Key) String() string {
	return fmt.Sprintf("%s/%s", k.TopicID, k.CognitiveLevel)
}

type RequirementFulfillment struct {
	Key
	Required   int     `json:"required"`
	Actual     int     `json:"actual"`
	Remaining  int     `json:"remaining"`
	Percentage float64 `json:"percentage"`
	Status     Status  `json:"status"`
}

// UnconstrainedGroup counts exam questions whose key the matrix does not mention.
type UnconstrainedGroup struct {
	Key
	Count int `json:"count"`
}

type Report struct {
	Requirements  []RequirementFulfillment `json:"requirements"`
	Unconstrained []UnconstrainedGroup     `json:"unconstrained"`
	TotalRequired int                      `json:"total_required"`
	TotalActual   int                      `json:"total_actual"`
	Satisfied     bool                     `json:"satisfied"`
}

// Fulfillment computes the per-requirement state of questions against the
// matrix. The matrix is satisfied only when every requirement is exact.
func Fulfillment(requirements []models.MatrixTopicRequirement, questions []*models.Question) Report {
	counts := make(map[Key]int, len(questions))
	for _, q := range questions {
		counts[KeyOf(q)]++
	}

	report := Report{
		Requirements:  make([]RequirementFulfillment, 0, len(requirements)),
		Unconstrained: []UnconstrainedGroup{},
		Satisfied:     true,
	}

	constrained := make(map[Key]struct{}, len(requirements))
	for _, r := range requirements {
		key := KeyOfRequirement(r)
		constrained[key] = struct{}{}

		rf := evaluate(key, r.Quantity, counts[key])
		if rf.Status != StatusExact {
			report.Satisfied = false
		}
		report.TotalRequired += rf.Required
		report.TotalActual += rf.Actual
		report.Requirements = append(report.Requirements, rf)
	}

	for key, count := range counts {
		if _, ok := constrained[key]; ok {
			continue
		}
		report.Unconstrained = append(report.Unconstrained, UnconstrainedGroup{Key: key, Count: count})
	}

	sort.Slice(report.Requirements, func(i, j int) bool {
		return lessKey(report.Requirements[i].Key, report.Requirements[j].Key)
	})
	sort.Slice(report.Unconstrained, func(i, j int) bool {
		return lessKey(report.Unconstrained[i].Key, report.Unconstrained[j].Key)
	})

	return report
}

func evaluate(key Key, required, actual int) RequirementFulfillment {
	rf := RequirementFulfillment{
		Key:      key,
		Required: required,
		Actual:   actual,
	}

	switch {
	case actual < required:
		rf.Status = StatusUnder
		rf.Remaining = required - actual
	case actual > required:
		rf.Status = StatusOver
	default:
		rf.Status = StatusExact
	}

	if required > 0 {
		rf.Percentage = models.RoundTo2(float64(actual) / float64(required) * 100)
	}
	return rf
}

func lessKey(a, b Key) bool {
	if a.TopicID != b.TopicID {
		return a.TopicID.String() < b.TopicID.String()
	}
	return a.CognitiveLevel.Rank() < b.CognitiveLevel.Rank()
}

// Under returns the requirements still missing questions.
func (r Report) Under() []RequirementFulfillment {
	return r.filter(StatusUnder)
}

// Over returns the requirements holding more questions than asked for.
func (r Report) Over() []RequirementFulfillment {
	return r.filter(StatusOver)
}

func (r Report) filter(status Status) []RequirementFulfillment {
	var out []RequirementFulfillment
	for _, rf := range r.Requirements {
		if rf.Status == status {
			out = append(out, rf)
		}
	}
	return out
}

// Warnings describes over-filled requirements. They never block publishing.
func (r Report) Warnings() []string {
	var warnings []string
	for _, rf := range r.Over() {
		warnings = append(warnings, fmt.Sprintf("%s has %d questions, matrix requires %d", rf.Key, rf.Actual, rf.Required))
	}
	return warnings
}

// IsQuestionNeeded reports whether adding q would move a requirement towards
// its quota.
func (r Report) IsQuestionNeeded(q *models.Question) bool {
	key := KeyOf(q)
	for _, rf := range r.Requirements {
		if rf.Key == key {
			return rf.Remaining > 0
		}
	}
	return false
}

// ValidateRequirements rejects non-positive quantities, invalid levels and
// duplicate keys.
func ValidateRequirements(requirements []models.MatrixTopicRequirement) error {
	var errs apperrors.ValidationErrors
	seen := make(map[Key]struct{}, len(requirements))

	for i, r := range requirements {
		field := fmt.Sprintf("requirements[%d]", i)
		if r.TopicID == uuid.Nil {
			errs = append(errs, *apperrors.NewValidationErrorWithRule(field+".topic_id", "is required", "required", r.TopicID))
		}
		if !r.CognitiveLevel.IsValid() {
			errs = append(errs, *apperrors.NewValidationErrorWithRule(field+".cognitive_level", "must be a valid cognitive level", "cognitive_level", r.CognitiveLevel))
		}
		if r.Quantity < 1 {
			errs = append(errs, *apperrors.NewValidationErrorWithRule(field+".quantity", "must be at least 1", "min", r.Quantity))
		}

		key := KeyOfRequirement(r)
		if _, dup := seen[key]; dup {
			errs = append(errs, *apperrors.NewValidationErrorWithRule(field, "duplicate matrix key "+key.String(), "unique", key.String()))
		}
		seen[key] = struct{}{}
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}
