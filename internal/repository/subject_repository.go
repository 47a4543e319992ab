package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/noah-isme/ugportal-api/internal/models"
)

const subjectColumns = `id, name, code, branch, professor_id, created_at`

// SubjectRepository provides database access for subjects.
type SubjectRepository struct {
	db *sqlx.DB
}

// NewSubjectRepository constructs the repository.
func NewSubjectRepository(db *sqlx.DB) *SubjectRepository {
	return &SubjectRepository{db: db}
}

// FindByID returns a subject by identifier.
func (r *SubjectRepository) FindByID(ctx context.Context, id string) (*models.Subject, error) {
	query := `SELECT ` + subjectColumns + ` FROM subjects WHERE id = $1 LIMIT 1`
	var subject models.Subject
	if err := r.db.GetContext(ctx, &subject, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find subject by id: %w", err)
	}
	return &subject, nil
}

// Create inserts a subject owned by a professor.
func (r *SubjectRepository) Create(ctx context.Context, subject *models.Subject) error {
	if subject.ID == "" {
		subject.ID = uuid.NewString()
	}
	if subject.CreatedAt.IsZero() {
		subject.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO subjects (id, name, code, branch, professor_id, created_at) VALUES (:id, :name, :code, :branch, :professor_id, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, subject); err != nil {
		return fmt.Errorf("create subject: %w", err)
	}
	return nil
}

// ListByProfessor returns the subjects a professor owns.
func (r *SubjectRepository) ListByProfessor(ctx context.Context, professorID string) ([]models.Subject, error) {
	query := `SELECT ` + subjectColumns + ` FROM subjects WHERE professor_id = $1 ORDER BY created_at`
	var subjects []models.Subject
	if err := r.db.SelectContext(ctx, &subjects, query, professorID); err != nil {
		return nil, fmt.Errorf("list professor subjects: %w", err)
	}
	return subjects, nil
}

// ListByIDsInBranch returns the subjects among ids that are offered to branch.
func (r *SubjectRepository) ListByIDsInBranch(ctx context.Context, ids []string, branch string) ([]models.Subject, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	query := `SELECT ` + subjectColumns + ` FROM subjects WHERE id = ANY($1) AND branch = $2`
	var subjects []models.Subject
	if err := r.db.SelectContext(ctx, &subjects, query, pq.Array(ids), branch); err != nil {
		return nil, fmt.Errorf("list subjects in branch: %w", err)
	}
	return subjects, nil
}

// ListAvailableForStudent returns the subjects of branch the student has not enrolled in.
func (r *SubjectRepository) ListAvailableForStudent(ctx context.Context, studentID, branch string) ([]models.Subject, error) {
	const query = `SELECT sub.id, sub.name, sub.code, sub.branch, sub.professor_id, sub.created_at
FROM subjects sub
WHERE sub.branch = $1
  AND NOT EXISTS (SELECT 1 FROM student_subjects ss WHERE ss.subject_id = sub.id AND ss.student_id = $2)
ORDER BY sub.code`
	var subjects []models.Subject
	if err := r.db.SelectContext(ctx, &subjects, query, branch, studentID); err != nil {
		return nil, fmt.Errorf("list available subjects: %w", err)
	}
	return subjects, nil
}
