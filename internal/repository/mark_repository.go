package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/ugportal-api/internal/models"
)

// MarkRepository stores assessment marks.
type MarkRepository struct {
	db *sqlx.DB
}

// NewMarkRepository constructs the repository.
func NewMarkRepository(db *sqlx.DB) *MarkRepository {
	return &MarkRepository{db: db}
}

// Create inserts a mark. An unknown student, subject or uploader yields ErrMissingReference.
func (r *MarkRepository) Create(ctx context.Context, mark *models.Mark) error {
	if mark.ID == "" {
		mark.ID = uuid.NewString()
	}
	if mark.CreatedAt.IsZero() {
		mark.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO marks (id, student_id, subject_id, marks, type, uploaded_by, created_at) VALUES (:id, :student_id, :subject_id, :marks, :type, :uploaded_by, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, mark); err != nil {
		if isForeignKeyViolation(err) {
			return ErrMissingReference
		}
		return fmt.Errorf("create mark: %w", err)
	}
	return nil
}
