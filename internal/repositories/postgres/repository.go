package postgres

import (
	"context"

	"github.com/SAP-F-2025/exam-session-service/internal/models"
	"github.com/SAP-F-2025/exam-session-service/internal/repositories"
	"gorm.io/gorm"
)

type Repository struct {
	db            *gorm.DB
	question      repositories.QuestionRepository
	matrix        repositories.MatrixRepository
	exam          repositories.ExamRepository
	examQuestion  repositories.ExamQuestionRepository
	examSession   repositories.ExamSessionRepository
	attempt       repositories.AttemptRepository
	studentAnswer repositories.StudentAnswerRepository
}

func NewRepository(db *gorm.DB) repositories.Repository {
	return &Repository{
		db:            db,
		question:      NewQuestionPostgreSQL(db),
		matrix:        NewMatrixPostgreSQL(db),
		exam:          NewExamPostgreSQL(db),
		examQuestion:  NewExamQuestionPostgreSQL(db),
		examSession:   NewExamSessionPostgreSQL(db),
		attempt:       NewAttemptPostgreSQL(db),
		studentAnswer: NewStudentAnswerPostgreSQL(db),
	}
}

func (r *Repository) Question() repositories.QuestionRepository           { return r.question }
func (r *Repository) Matrix() repositories.MatrixRepository               { return r.matrix }
func (r *Repository) Exam() repositories.ExamRepository                   { return r.exam }
func (r *Repository) ExamQuestion() repositories.ExamQuestionRepository   { return r.examQuestion }
func (r *Repository) ExamSession() repositories.ExamSessionRepository     { return r.examSession }
func (r *Repository) Attempt() repositories.AttemptRepository             { return r.attempt }
func (r *Repository) StudentAnswer() repositories.StudentAnswerRepository { return r.studentAnswer }

func (r *Repository) WithTransaction(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return r.db.WithContext(ctx).Transaction(fn)
}

// Migrate creates the tables this service owns. The catalog tables (topics,
// questions, answers) belong to the catalog service and are left alone.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.Matrix{},
		&models.MatrixTopicRequirement{},
		&models.Exam{},
		&models.ExamQuestion{},
		&models.ExamSession{},
		&models.StudentExamAttempt{},
		&models.StudentAnswer{},
	)
}
