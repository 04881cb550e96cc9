package handlers

import (
	"github.com/SAP-F-2025/exam-session-service/internal/events"
	"github.com/SAP-F-2025/exam-session-service/internal/services"
	"github.com/SAP-F-2025/exam-session-service/internal/utils"
	"github.com/gin-gonic/gin"
)

type HandlerManager struct {
	matrixHandler  *MatrixHandler
	examHandler    *ExamHandler
	sessionHandler *SessionHandler
	attemptHandler *AttemptHandler
}

func NewHandlerManager(
	serviceManager services.ServiceManager,
	publisher events.EventPublisher,
	logger utils.Logger,
) *HandlerManager {
	return &HandlerManager{
		matrixHandler: NewMatrixHandler(serviceManager.Matrix(), publisher, logger),
		examHandler:   NewExamHandler(serviceManager.Exam(), publisher, logger),
		sessionHandler: NewSessionHandler(
			serviceManager.ExamSession(),
			serviceManager.Attempt(),
			serviceManager.Results(),
			publisher,
			logger,
		),
		attemptHandler: NewAttemptHandler(serviceManager.Attempt(), publisher, logger),
	}
}

// SetupRoutes sets up all API routes. Everything under /api/v1 runs behind auth.
func (hm *HandlerManager) SetupRoutes(router *gin.Engine, auth gin.HandlerFunc) {
	// Health check endpoint
	router.GET("/health", HealthCheck)

	v1 := router.Group("/api/v1")
	if auth != nil {
		v1.Use(auth)
	}
	{
		matrices := v1.Group("/matrices")
		{
			matrices.POST("", hm.matrixHandler.CreateMatrix)
			matrices.GET("/:id", hm.matrixHandler.GetMatrix)
			matrices.DELETE("/:id", hm.matrixHandler.DeleteMatrix)
			matrices.PUT("/:id/requirements", hm.matrixHandler.ReplaceRequirements)
			matrices.DELETE("/:id/requirements", hm.matrixHandler.RemoveRequirement)
			matrices.GET("/:id/fulfillment", hm.matrixHandler.GetFulfillment)
			matrices.GET("/:id/candidates", hm.matrixHandler.GetCandidates)
		}

		exams := v1.Group("/exams")
		{
			exams.POST("", hm.examHandler.CreateExam)
			exams.GET("", hm.examHandler.ListExams)
			exams.GET("/:id", hm.examHandler.GetExam)
			exams.POST("/:id/publish", hm.examHandler.PublishExam)
			exams.POST("/:id/archive", hm.examHandler.ArchiveExam)
			exams.PUT("/:id/matrix", hm.examHandler.AttachMatrix)

			// Exam composition
			exams.POST("/:id/questions", hm.examHandler.AddQuestion)
			exams.PUT("/:id/questions/reorder", hm.examHandler.ReorderQuestions)
			exams.DELETE("/:id/questions/:question_id", hm.examHandler.RemoveQuestion)
		}

		sessions := v1.Group("/sessions")
		{
			sessions.POST("", hm.sessionHandler.CreateSession)
			sessions.GET("", hm.sessionHandler.ListSessions)
			sessions.GET("/:id", hm.sessionHandler.GetSession)
			sessions.PUT("/:id", hm.sessionHandler.UpdateSession)
			sessions.POST("/:id/activate", hm.sessionHandler.ActivateSession)
			sessions.POST("/:id/deactivate", hm.sessionHandler.DeactivateSession)
			sessions.GET("/:id/eligibility", hm.sessionHandler.GetEligibility)
			sessions.POST("/:id/attempts", hm.sessionHandler.StartAttempt)
			sessions.GET("/:id/attempts/mine", hm.sessionHandler.ListMyAttempts)
			sessions.GET("/:id/results", hm.sessionHandler.GetResults)
			sessions.GET("/:id/results/export", hm.sessionHandler.ExportResults)
		}

		attempts := v1.Group("/attempts")
		{
			attempts.GET("/:id", hm.attemptHandler.GetAttempt)
			attempts.GET("/:id/paper", hm.attemptHandler.GetPaper)
			attempts.POST("/:id/submit", hm.attemptHandler.SubmitAttempt)
			attempts.POST("/:id/timeout", hm.attemptHandler.TimeoutAttempt)
			attempts.POST("/:id/grade", hm.attemptHandler.GradeAttempt)
		}
	}
}
