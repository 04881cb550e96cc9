package services

import (
	"log/slog"
	"time"

	"github.com/SAP-F-2025/exam-session-service/internal/cache"
	"github.com/SAP-F-2025/exam-session-service/internal/repositories"
	"github.com/SAP-F-2025/exam-session-service/internal/validator"
)

type serviceManager struct {
	matrix      MatrixService
	exam        ExamService
	examSession ExamSessionService
	attempt     AttemptService
	results     ResultsService
}

func NewServiceManager(
	repo repositories.Repository,
	cacheService cache.CacheService,
	resultsCacheTTL time.Duration,
	logger *slog.Logger,
	validator *validator.Validator,
) ServiceManager {
	if cacheService == nil {
		cacheService = cache.NoopCache{}
	}

	return &serviceManager{
		matrix:      NewMatrixService(repo, logger, validator),
		exam:        NewExamService(repo, logger, validator),
		examSession: NewExamSessionService(repo, cacheService, logger, validator),
		attempt:     NewAttemptService(repo, cacheService, logger, validator),
		results:     NewResultsService(repo, cacheService, resultsCacheTTL, logger),
	}
}

func (m *serviceManager) Matrix() MatrixService           { return m.matrix }
func (m *serviceManager) Exam() ExamService               { return m.exam }
func (m *serviceManager) ExamSession() ExamSessionService { return m.examSession }
func (m *serviceManager) Attempt() AttemptService         { return m.attempt }
func (m *serviceManager) Results() ResultsService         { return m.results }
