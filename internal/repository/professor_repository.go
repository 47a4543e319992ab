package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/ugportal-api/internal/models"
)

const professorColumns = `id, name, email, password_hash, branches, sections, created_at, updated_at`

// ProfessorRepository provides database access for professors.
type ProfessorRepository struct {
	db *sqlx.DB
}

// NewProfessorRepository constructs the repository.
func NewProfessorRepository(db *sqlx.DB) *ProfessorRepository {
	return &ProfessorRepository{db: db}
}

// FindByID returns a professor by identifier.
func (r *ProfessorRepository) FindByID(ctx context.Context, id string) (*models.Professor, error) {
	query := `SELECT ` + professorColumns + ` FROM professors WHERE id = $1 LIMIT 1`
	var professor models.Professor
	if err := r.db.GetContext(ctx, &professor, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find professor by id: %w", err)
	}
	return &professor, nil
}

// FindCredentialsByEmail returns the login view of a professor account.
func (r *ProfessorRepository) FindCredentialsByEmail(ctx context.Context, email string) (*models.Credentials, error) {
	const query = `SELECT id, email, name, password_hash FROM professors WHERE email = $1 LIMIT 1`
	var creds models.Credentials
	if err := r.db.GetContext(ctx, &creds, query, email); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find professor credentials: %w", err)
	}
	creds.Role = models.RoleProfessor
	return &creds, nil
}

// ExistsByEmail reports whether the email is already registered.
func (r *ProfessorRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	const query = `SELECT EXISTS(SELECT 1 FROM professors WHERE email = $1)`
	var exists bool
	if err := r.db.GetContext(ctx, &exists, query, email); err != nil {
		return false, fmt.Errorf("check professor exists: %w", err)
	}
	return exists, nil
}

// Create inserts a new professor.
func (r *ProfessorRepository) Create(ctx context.Context, professor *models.Professor) error {
	if professor.ID == "" {
		professor.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if professor.CreatedAt.IsZero() {
		professor.CreatedAt = now
	}
	professor.UpdatedAt = now

	const query = `INSERT INTO professors (id, name, email, password_hash, branches, sections, created_at, updated_at) VALUES (:id, :name, :email, :password_hash, :branches, :sections, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, professor); err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("create professor: %w", ErrDuplicate)
		}
		return fmt.Errorf("create professor: %w", err)
	}
	return nil
}

// UpdateProfile updates name, email and teaching assignments.
func (r *ProfessorRepository) UpdateProfile(ctx context.Context, professor *models.Professor) error {
	professor.UpdatedAt = time.Now().UTC()
	const query = `UPDATE professors SET name = :name, email = :email, branches = :branches, sections = :sections, updated_at = :updated_at WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, professor); err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("update professor profile: %w", ErrDuplicate)
		}
		return fmt.Errorf("update professor profile: %w", err)
	}
	return nil
}
