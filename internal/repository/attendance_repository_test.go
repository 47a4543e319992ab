package repository

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/ugportal-api/internal/models"
)

func newMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	sqlxdb := sqlx.NewDb(db, "sqlmock")
	return sqlxdb, mock, func() {
		db.Close()
	}
}

func TestAttendanceUpsertBatchCommits(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewAttendanceRepository(db)

	day := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	records := []models.AttendanceRecord{
		{StudentID: "s1", SubjectID: "sub", Branch: "CSE", Section: "A", Date: day, Status: models.AttendanceStatusPresent},
		{StudentID: "s2", SubjectID: "sub", Branch: "CSE", Section: "A", Date: day, Status: models.AttendanceStatusAbsent},
	}

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO attendance_records").
		WithArgs(sqlmock.AnyArg(), "s1", "sub", "CSE", "A", day, models.AttendanceStatusPresent, sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("ON CONFLICT \\(student_id, subject_id, section, date\\)").
		WithArgs(sqlmock.AnyArg(), "s2", "sub", "CSE", "A", day, models.AttendanceStatusAbsent, sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	require.NoError(t, repo.UpsertBatch(context.Background(), records))
	assert.NotEmpty(t, records[0].ID)
	assert.False(t, records[1].UpdatedAt.IsZero())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAttendanceUpsertBatchRollsBackOnError(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewAttendanceRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO attendance_records").WillReturnError(errors.New("boom"))
	mock.ExpectRollback()

	err := repo.UpsertBatch(context.Background(), []models.AttendanceRecord{{StudentID: "s1", SubjectID: "sub", Section: "A", Status: models.AttendanceStatusPresent}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "s1")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAttendanceUpsertBatchEmpty(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewAttendanceRepository(db)

	require.NoError(t, repo.UpsertBatch(context.Background(), nil))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAttendanceFindByIDNotFound(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewAttendanceRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, student_id, subject_id, branch, section, date, status, created_at, updated_at FROM attendance_records WHERE id = $1")).
		WithArgs("missing").
		WillReturnError(sql.ErrNoRows)

	rec, err := repo.FindByID(context.Background(), "missing")
	assert.Nil(t, rec)
	assert.ErrorIs(t, err, sql.ErrNoRows)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAttendanceUpdateStatus(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewAttendanceRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE attendance_records SET status = $2, updated_at = $3 WHERE id = $1")).
		WithArgs("r1", models.AttendanceStatusAbsent, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	require.NoError(t, repo.UpdateStatus(context.Background(), "r1", models.AttendanceStatusAbsent))

	mock.ExpectExec(regexp.QuoteMeta("UPDATE attendance_records SET status = $2")).
		WithArgs("r2", models.AttendanceStatusPresent, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 0))
	err := repo.UpdateStatus(context.Background(), "r2", models.AttendanceStatusPresent)
	assert.ErrorIs(t, err, sql.ErrNoRows)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAttendanceCountClasses(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewAttendanceRepository(db)

	withBranch := models.AttendanceScope{SubjectID: "sub", Section: "A", Branch: "CSE"}
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM attendance_records WHERE subject_id = $1 AND section = $2 AND branch = $3")).
		WithArgs("sub", "A", "CSE").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(6))
	total, err := repo.CountClasses(context.Background(), withBranch, false)
	require.NoError(t, err)
	assert.Equal(t, 6, total)

	noBranch := models.AttendanceScope{SubjectID: "sub", Section: "A"}
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(DISTINCT date) FROM attendance_records WHERE subject_id = $1 AND section = $2")).
		WithArgs("sub", "A").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(3))
	total, err = repo.CountClasses(context.Background(), noBranch, true)
	require.NoError(t, err)
	assert.Equal(t, 3, total)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAttendanceCountPresent(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewAttendanceRepository(db)

	scope := models.AttendanceScope{SubjectID: "sub", Section: "A", Branch: "CSE"}
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM attendance_records WHERE subject_id = $1 AND section = $2 AND branch = $3 AND student_id = $4 AND status = $5")).
		WithArgs("sub", "A", "CSE", "s1", models.AttendanceStatusPresent).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(2))

	attended, err := repo.CountPresent(context.Background(), "s1", scope)
	require.NoError(t, err)
	assert.Equal(t, 2, attended)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAttendanceStatusOn(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewAttendanceRepository(db)

	day := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	scope := models.AttendanceScope{SubjectID: "sub", Section: "A"}
	mock.ExpectQuery(regexp.QuoteMeta("SELECT status FROM attendance_records WHERE subject_id = $1 AND section = $2 AND student_id = $3 AND date = $4 LIMIT 1")).
		WithArgs("sub", "A", "s1", day).
		WillReturnRows(sqlmock.NewRows([]string{"status"}).AddRow("Present"))
	status, err := repo.StatusOn(context.Background(), "s1", scope, day)
	require.NoError(t, err)
	assert.Equal(t, models.AttendanceStatusPresent, status)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT status FROM attendance_records")).
		WithArgs("sub", "A", "s2", day).
		WillReturnError(sql.ErrNoRows)
	_, err = repo.StatusOn(context.Background(), "s2", scope, day)
	assert.ErrorIs(t, err, sql.ErrNoRows)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAttendanceListForStudents(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewAttendanceRepository(db)

	day := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	scope := models.AttendanceScope{SubjectID: "sub", Section: "A", Branch: "CSE"}
	rows := sqlmock.NewRows([]string{"id", "roll_number", "name", "date", "status"}).
		AddRow("r1", "CS001", "Asha", day, "Present").
		AddRow("r2", "CS002", "Ravi", day, "Absent")
	mock.ExpectQuery(regexp.QuoteMeta("WHERE ar.subject_id = $1 AND ar.section = $2 AND ar.branch = $3 AND ar.student_id = ANY($4)")).
		WithArgs("sub", "A", "CSE", sqlmock.AnyArg()).
		WillReturnRows(rows)

	listing, err := repo.ListForStudents(context.Background(), scope, []string{"s1", "s2"})
	require.NoError(t, err)
	require.Len(t, listing, 2)
	assert.Equal(t, "CS002", listing[1].RollNumber)
	assert.Equal(t, models.AttendanceStatusAbsent, listing[1].Status)

	empty, err := repo.ListForStudents(context.Background(), scope, nil)
	require.NoError(t, err)
	assert.Nil(t, empty)
	assert.NoError(t, mock.ExpectationsWereMet())
}
