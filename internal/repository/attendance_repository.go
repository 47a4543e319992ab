package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/noah-isme/ugportal-api/internal/models"
)

const attendanceColumns = `id, student_id, subject_id, branch, section, date, status, created_at, updated_at`

// AttendanceRepository persists attendance session records.
type AttendanceRepository struct {
	db *sqlx.DB
}

// NewAttendanceRepository constructs the repository.
func NewAttendanceRepository(db *sqlx.DB) *AttendanceRepository {
	return &AttendanceRepository{db: db}
}

// UpsertBatch writes every record in one transaction. A row matching
// (student_id, subject_id, section, date) has its status, branch and section overwritten.
func (r *AttendanceRepository) UpsertBatch(ctx context.Context, records []models.AttendanceRecord) error {
	if len(records) == 0 {
		return nil
	}
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin attendance upsert: %w", err)
	}
	commit := false
	defer func() {
		if !commit {
			_ = tx.Rollback()
		}
	}()

	const query = `INSERT INTO attendance_records (id, student_id, subject_id, branch, section, date, status, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
ON CONFLICT (student_id, subject_id, section, date)
DO UPDATE SET status = EXCLUDED.status, branch = EXCLUDED.branch, section = EXCLUDED.section, updated_at = EXCLUDED.updated_at`

	now := time.Now().UTC()
	for i := range records {
		rec := &records[i]
		if rec.ID == "" {
			rec.ID = uuid.NewString()
		}
		if rec.CreatedAt.IsZero() {
			rec.CreatedAt = now
		}
		rec.UpdatedAt = now
		if _, err := tx.ExecContext(ctx, query, rec.ID, rec.StudentID, rec.SubjectID, rec.Branch, rec.Section, rec.Date, rec.Status, rec.CreatedAt, rec.UpdatedAt); err != nil {
			return fmt.Errorf("upsert attendance for student %s: %w", rec.StudentID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit attendance upsert: %w", err)
	}
	commit = true
	return nil
}

// FindByID returns a record or sql.ErrNoRows.
func (r *AttendanceRepository) FindByID(ctx context.Context, id string) (*models.AttendanceRecord, error) {
	query := `SELECT ` + attendanceColumns + ` FROM attendance_records WHERE id = $1`
	var rec models.AttendanceRecord
	if err := r.db.GetContext(ctx, &rec, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find attendance record: %w", err)
	}
	return &rec, nil
}

// UpdateStatus overwrites the status of one record. It returns sql.ErrNoRows when nothing matched.
func (r *AttendanceRepository) UpdateStatus(ctx context.Context, id string, status models.AttendanceStatus) error {
	const query = `UPDATE attendance_records SET status = $2, updated_at = $3 WHERE id = $1`
	res, err := r.db.ExecContext(ctx, query, id, status, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("update attendance status: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update attendance status: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// CountClasses counts the records in scope, or their distinct dates when distinctDates is set.
func (r *AttendanceRepository) CountClasses(ctx context.Context, scope models.AttendanceScope, distinctDates bool) (int, error) {
	where, args := scopeClause("", scope)
	selectExpr := "COUNT(*)"
	if distinctDates {
		selectExpr = "COUNT(DISTINCT date)"
	}
	query := fmt.Sprintf("SELECT %s FROM attendance_records WHERE %s", selectExpr, where)
	var total int
	if err := r.db.GetContext(ctx, &total, query, args...); err != nil {
		return 0, fmt.Errorf("count classes: %w", err)
	}
	return total, nil
}

// CountPresent counts the student's Present records in scope.
func (r *AttendanceRepository) CountPresent(ctx context.Context, studentID string, scope models.AttendanceScope) (int, error) {
	where, args := scopeClause("", scope)
	args = append(args, studentID, models.AttendanceStatusPresent)
	query := fmt.Sprintf("SELECT COUNT(*) FROM attendance_records WHERE %s AND student_id = $%d AND status = $%d", where, len(args)-1, len(args))
	var attended int
	if err := r.db.GetContext(ctx, &attended, query, args...); err != nil {
		return 0, fmt.Errorf("count present: %w", err)
	}
	return attended, nil
}

// StatusOn returns the student's status for the given session day, or sql.ErrNoRows.
func (r *AttendanceRepository) StatusOn(ctx context.Context, studentID string, scope models.AttendanceScope, day time.Time) (models.AttendanceStatus, error) {
	where, args := scopeClause("", scope)
	args = append(args, studentID, day)
	query := fmt.Sprintf("SELECT status FROM attendance_records WHERE %s AND student_id = $%d AND date = $%d LIMIT 1", where, len(args)-1, len(args))
	var status models.AttendanceStatus
	if err := r.db.GetContext(ctx, &status, query, args...); err != nil {
		if err == sql.ErrNoRows {
			return "", err
		}
		return "", fmt.Errorf("attendance status on day: %w", err)
	}
	return status, nil
}

// ListForStudents returns the records in scope that belong to the given students, joined with name and roll number.
func (r *AttendanceRepository) ListForStudents(ctx context.Context, scope models.AttendanceScope, studentIDs []string) ([]models.AttendanceListing, error) {
	if len(studentIDs) == 0 {
		return nil, nil
	}
	where, args := scopeClause("ar.", scope)
	args = append(args, pq.Array(studentIDs))
	query := fmt.Sprintf(`SELECT ar.id, s.roll_number, s.name, ar.date, ar.status
FROM attendance_records ar
JOIN students s ON s.id = ar.student_id
WHERE %s AND ar.student_id = ANY($%d)`, where, len(args))
	var rows []models.AttendanceListing
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list attendance records: %w", err)
	}
	return rows, nil
}

// scopeClause renders the scope filter with columns prefixed by alias.
func scopeClause(alias string, scope models.AttendanceScope) (string, []interface{}) {
	where := []string{alias + "subject_id = $1", alias + "section = $2"}
	args := []interface{}{scope.SubjectID, scope.Section}
	if scope.Branch != "" {
		args = append(args, scope.Branch)
		where = append(where, fmt.Sprintf("%sbranch = $%d", alias, len(args)))
	}
	return strings.Join(where, " AND "), args
}
