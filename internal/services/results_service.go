package services

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/SAP-F-2025/exam-session-service/internal/cache"
	"github.com/SAP-F-2025/exam-session-service/internal/models"
	"github.com/SAP-F-2025/exam-session-service/internal/repositories"
	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"
)

type resultsService struct {
	repo     repositories.Repository
	cache    cache.CacheService
	cacheTTL time.Duration
	logger   *slog.Logger
	now      func() time.Time
}

// NewResultsService aggregates attempts per session. A zero cacheTTL disables
// caching of the aggregate.
func NewResultsService(repo repositories.Repository, cacheService cache.CacheService, cacheTTL time.Duration, logger *slog.Logger) ResultsService {
	return &resultsService{
		repo:     repo,
		cache:    cacheService,
		cacheTTL: cacheTTL,
		logger:   logger,
		now:      time.Now,
	}
}

// SessionResults serves the results view to the session's creator. While the
// window is open the cached copy never outlives EndTime.
func (s *resultsService) SessionResults(ctx context.Context, sessionID uuid.UUID, requesterID string) (*SessionResults, error) {
	session, err := s.authorize(ctx, sessionID, requesterID)
	if err != nil {
		return nil, err
	}

	ttl := s.ttlFor(session)
	key := cache.SessionResultsKey(sessionID)
	if ttl > 0 {
		var cached SessionResults
		err := s.cache.Get(ctx, key, &cached)
		if err == nil {
			return &cached, nil
		}
		if !errors.Is(err, cache.ErrCacheMiss) {
			s.logger.Warn("Failed to read session results from cache", "session_id", sessionID, "error", err)
		}
	}

	results, err := s.build(ctx, session)
	if err != nil {
		return nil, err
	}

	if ttl > 0 {
		if err := s.cache.Set(ctx, key, results, ttl); err != nil {
			s.logger.Warn("Failed to cache session results", "session_id", sessionID, "error", err)
		}
	}
	return results, nil
}

func (s *resultsService) authorize(ctx context.Context, sessionID uuid.UUID, requesterID string) (*models.ExamSession, error) {
	session, err := getSession(ctx, s.repo, sessionID)
	if err != nil {
		return nil, err
	}
	if session.CreatedBy != requesterID {
		return nil, NewPermissionError(requesterID, sessionID, "exam_session", "read results", "not the session creator")
	}
	return session, nil
}

// ttlFor caps the configured TTL at the time left before the window closes
func (s *resultsService) ttlFor(session *models.ExamSession) time.Duration {
	ttl := s.cacheTTL
	if ttl <= 0 {
		return 0
	}
	now := s.now()
	if session.HasEnded(now) {
		return ttl
	}
	if left := session.EndTime.Sub(now); left < ttl {
		return left
	}
	return ttl
}

func (s *resultsService) build(ctx context.Context, session *models.ExamSession) (*SessionResults, error) {
	attempts, err := s.repo.Attempt().ListBySession(ctx, nil, session.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list attempts: %w", err)
	}

	now := s.now()
	results := &SessionResults{
		SessionID:   session.ID,
		ExamID:      session.ExamID,
		Students:    []StudentResult{},
		GeneratedAt: now.UTC(),
	}

	var (
		sum       float64
		completed int
	)
	// attempts arrive grouped by student, then by attempt number
	for _, attempt := range attempts {
		summary := AttemptSummary{
			AttemptID:     attempt.ID,
			AttemptNumber: attempt.AttemptNumber,
			Status:        attempt.DisplayStatus(session, now),
			Score:         attempt.Score,
			TotalPoints:   attempt.TotalPoints,
			Percentage:    attempt.GetScorePercentage(),
			StartedAt:     attempt.StartedAt,
			SubmittedAt:   attempt.SubmittedAt,
		}

		n := len(results.Students)
		if n == 0 || results.Students[n-1].StudentID != attempt.StudentID {
			results.Students = append(results.Students, StudentResult{
				StudentID:       attempt.StudentID,
				AttemptsAllowed: session.AllowedAttempts(),
			})
			n++
		}
		student := &results.Students[n-1]
		student.Attempts = append(student.Attempts, summary)
		student.AttemptsUsed++

		results.Stats.AttemptCount++
		if summary.Status == models.AttemptInProgress {
			continue
		}

		completed++
		sum += summary.Percentage
		if completed == 1 || summary.Percentage > results.Stats.MaxPercentage {
			results.Stats.MaxPercentage = summary.Percentage
		}
		if completed == 1 || summary.Percentage < results.Stats.MinPercentage {
			results.Stats.MinPercentage = summary.Percentage
		}
	}

	for i := range results.Students {
		student := &results.Students[i]
		latest := student.Attempts[len(student.Attempts)-1]
		student.Latest = &latest
		for j := range student.Attempts {
			a := student.Attempts[j]
			if a.Status == models.AttemptInProgress {
				continue
			}
			if student.Best == nil || a.Percentage > student.Best.Percentage {
				student.Best = &a
			}
		}
	}

	results.Stats.CompletedCount = completed
	if completed > 0 {
		results.Stats.AveragePercentage = models.RoundTo2(sum / float64(completed))
	}
	return results, nil
}

// ===== EXPORT =====

var (
	resultHeaders  = []string{"Student ID", "Attempts Used", "Attempts Allowed", "Best Score", "Best Percentage", "Latest Status", "Latest Score", "Latest Percentage"}
	attemptHeaders = []string{"Student ID", "Attempt", "Status", "Score", "Total Points", "Percentage", "Started At", "Submitted At"}
)

func (s *resultsService) Export(ctx context.Context, sessionID uuid.UUID, format ExportFormat, requesterID string) (*bytes.Buffer, error) {
	if format != ExportXLSX && format != ExportCSV {
		return nil, NewValidationError("format", "must be one of xlsx, csv", format)
	}

	results, err := s.SessionResults(ctx, sessionID, requesterID)
	if err != nil {
		return nil, err
	}

	if format == ExportCSV {
		return exportCSV(results)
	}
	return exportExcel(results)
}

func exportCSV(results *SessionResults) (*bytes.Buffer, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	if err := writer.Write(attemptHeaders); err != nil {
		return nil, fmt.Errorf("failed to write CSV header: %w", err)
	}
	for _, row := range attemptRows(results) {
		if err := writer.Write(row); err != nil {
			return nil, fmt.Errorf("failed to write CSV row: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}
	return &buf, nil
}

func exportExcel(results *SessionResults) (*bytes.Buffer, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", "Results"); err != nil {
		return nil, fmt.Errorf("failed to create Excel sheet: %w", err)
	}
	if _, err := f.NewSheet("Attempts"); err != nil {
		return nil, fmt.Errorf("failed to create Excel sheet: %w", err)
	}

	if err := writeSheet(f, "Results", resultHeaders, resultRows(results)); err != nil {
		return nil, err
	}
	if err := writeSheet(f, "Attempts", attemptHeaders, attemptRows(results)); err != nil {
		return nil, err
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to write Excel file: %w", err)
	}
	return buf, nil
}

func writeSheet(f *excelize.File, sheet string, headers []string, rows [][]string) error {
	for i, header := range headers {
		if err := f.SetCellValue(sheet, fmt.Sprintf("%c1", 'A'+i), header); err != nil {
			return fmt.Errorf("failed to write Excel header: %w", err)
		}
	}
	for rowIndex, row := range rows {
		for colIndex, value := range row {
			cell := fmt.Sprintf("%c%d", 'A'+colIndex, rowIndex+2)
			if err := f.SetCellValue(sheet, cell, value); err != nil {
				return fmt.Errorf("failed to write Excel row: %w", err)
			}
		}
	}
	return nil
}

func resultRows(results *SessionResults) [][]string {
	rows := make([][]string, 0, len(results.Students))
	for _, st := range results.Students {
		row := []string{st.StudentID, strconv.Itoa(st.AttemptsUsed), strconv.Itoa(st.AttemptsAllowed), "", "", "", "", ""}
		if st.Best != nil {
			row[3] = formatFloat(st.Best.Score)
			row[4] = formatFloat(st.Best.Percentage)
		}
		if st.Latest != nil {
			row[5] = string(st.Latest.Status)
			row[6] = formatFloat(st.Latest.Score)
			row[7] = formatFloat(st.Latest.Percentage)
		}
		rows = append(rows, row)
	}
	return rows
}

func attemptRows(results *SessionResults) [][]string {
	var rows [][]string
	for _, st := range results.Students {
		for _, a := range st.Attempts {
			submitted := ""
			if a.SubmittedAt != nil {
				submitted = a.SubmittedAt.UTC().Format(time.RFC3339)
			}
			rows = append(rows, []string{
				st.StudentID,
				strconv.Itoa(a.AttemptNumber),
				string(a.Status),
				formatFloat(a.Score),
				formatFloat(a.TotalPoints),
				formatFloat(a.Percentage),
				a.StartedAt.UTC().Format(time.RFC3339),
				submitted,
			})
		}
	}
	return rows
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}
