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

const studentColumns = `id, roll_number, name, email, password_hash, branch, section, created_at, updated_at`

// StudentRepository provides database access for students and their subject enrolments.
type StudentRepository struct {
	db *sqlx.DB
}

// NewStudentRepository creates a new instance of StudentRepository.
func NewStudentRepository(db *sqlx.DB) *StudentRepository {
	return &StudentRepository{db: db}
}

// FindByID returns a student by identifier.
func (r *StudentRepository) FindByID(ctx context.Context, id string) (*models.Student, error) {
	query := `SELECT ` + studentColumns + ` FROM students WHERE id = $1 LIMIT 1`
	var student models.Student
	if err := r.db.GetContext(ctx, &student, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find student by id: %w", err)
	}
	return &student, nil
}

// FindByRollNumber returns a student by roll number.
func (r *StudentRepository) FindByRollNumber(ctx context.Context, rollNumber string) (*models.Student, error) {
	query := `SELECT ` + studentColumns + ` FROM students WHERE roll_number = $1 LIMIT 1`
	var student models.Student
	if err := r.db.GetContext(ctx, &student, query, rollNumber); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find student by roll number: %w", err)
	}
	return &student, nil
}

// FindCredentialsByEmail returns the login view of a student account.
func (r *StudentRepository) FindCredentialsByEmail(ctx context.Context, email string) (*models.Credentials, error) {
	const query = `SELECT id, email, name, password_hash FROM students WHERE email = $1 LIMIT 1`
	var creds models.Credentials
	if err := r.db.GetContext(ctx, &creds, query, email); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find student credentials: %w", err)
	}
	creds.Role = models.RoleStudent
	return &creds, nil
}

// ExistsByEmailOrRoll reports whether another student already uses the email or roll number.
func (r *StudentRepository) ExistsByEmailOrRoll(ctx context.Context, email, rollNumber string) (bool, error) {
	const query = `SELECT EXISTS(SELECT 1 FROM students WHERE email = $1 OR roll_number = $2)`
	var exists bool
	if err := r.db.GetContext(ctx, &exists, query, email, rollNumber); err != nil {
		return false, fmt.Errorf("check student exists: %w", err)
	}
	return exists, nil
}

// Create inserts a new student.
func (r *StudentRepository) Create(ctx context.Context, student *models.Student) error {
	if student.ID == "" {
		student.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if student.CreatedAt.IsZero() {
		student.CreatedAt = now
	}
	student.UpdatedAt = now

	const query = `INSERT INTO students (id, roll_number, name, email, password_hash, branch, section, created_at, updated_at) VALUES (:id, :roll_number, :name, :email, :password_hash, :branch, :section, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, student); err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("create student: %w", ErrDuplicate)
		}
		return fmt.Errorf("create student: %w", err)
	}
	return nil
}

// UpdateProfile updates the mutable profile fields.
func (r *StudentRepository) UpdateProfile(ctx context.Context, student *models.Student) error {
	student.UpdatedAt = time.Now().UTC()
	const query = `UPDATE students SET name = :name, email = :email, updated_at = :updated_at WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, student); err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("update student profile: %w", ErrDuplicate)
		}
		return fmt.Errorf("update student profile: %w", err)
	}
	return nil
}

// ExistsInSection reports whether any student belongs to the section of the branch.
func (r *StudentRepository) ExistsInSection(ctx context.Context, section, branch string) (bool, error) {
	const query = `SELECT EXISTS(SELECT 1 FROM students WHERE section = $1 AND branch = $2)`
	var exists bool
	if err := r.db.GetContext(ctx, &exists, query, section, branch); err != nil {
		return false, fmt.Errorf("check section exists: %w", err)
	}
	return exists, nil
}

// ListEnrolledInSubject returns the students of a section/branch enrolled in the subject.
func (r *StudentRepository) ListEnrolledInSubject(ctx context.Context, section, branch, subjectID string) ([]models.StudentSummary, error) {
	const query = `SELECT s.id, s.name, s.roll_number
FROM students s
JOIN student_subjects ss ON ss.student_id = s.id
WHERE s.section = $1 AND s.branch = $2 AND ss.subject_id = $3`
	var students []models.StudentSummary
	if err := r.db.SelectContext(ctx, &students, query, section, branch, subjectID); err != nil {
		return nil, fmt.Errorf("list enrolled students: %w", err)
	}
	return students, nil
}

// ListSubjects returns the subjects the student is enrolled in.
func (r *StudentRepository) ListSubjects(ctx context.Context, studentID string) ([]models.Subject, error) {
	const query = `SELECT sub.id, sub.name, sub.code, sub.branch, sub.professor_id, sub.created_at
FROM subjects sub
JOIN student_subjects ss ON ss.subject_id = sub.id
WHERE ss.student_id = $1
ORDER BY sub.code`
	var subjects []models.Subject
	if err := r.db.SelectContext(ctx, &subjects, query, studentID); err != nil {
		return nil, fmt.Errorf("list student subjects: %w", err)
	}
	return subjects, nil
}

// EnrollSubjects links the student to each subject, ignoring links that already exist.
func (r *StudentRepository) EnrollSubjects(ctx context.Context, studentID string, subjectIDs []string) error {
	if len(subjectIDs) == 0 {
		return nil
	}
	const query = `INSERT INTO student_subjects (student_id, subject_id, enrolled_at)
SELECT $1, unnest($2::text[]), $3
ON CONFLICT (student_id, subject_id) DO NOTHING`
	if _, err := r.db.ExecContext(ctx, query, studentID, pq.Array(subjectIDs), time.Now().UTC()); err != nil {
		return fmt.Errorf("enroll student subjects: %w", err)
	}
	return nil
}
