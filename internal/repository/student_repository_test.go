package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/ugportal-api/internal/models"
)

func TestStudentRepositoryFindByID(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewStudentRepository(db)

	now := time.Now()
	rows := sqlmock.NewRows([]string{"id", "roll_number", "name", "email", "password_hash", "branch", "section", "created_at", "updated_at"}).
		AddRow("s1", "CS001", "Asha", "asha@example.com", "hash", "CSE", "A", now, now)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, roll_number, name, email, password_hash, branch, section, created_at, updated_at FROM students WHERE id = $1 LIMIT 1")).
		WithArgs("s1").
		WillReturnRows(rows)

	student, err := repo.FindByID(context.Background(), "s1")
	require.NoError(t, err)
	assert.Equal(t, "CS001", student.RollNumber)
	assert.Equal(t, "A", student.Section)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStudentRepositoryFindCredentialsByEmail(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewStudentRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, email, name, password_hash FROM students WHERE email = $1 LIMIT 1")).
		WithArgs("asha@example.com").
		WillReturnRows(sqlmock.NewRows([]string{"id", "email", "name", "password_hash"}).AddRow("s1", "asha@example.com", "Asha", "hash"))

	creds, err := repo.FindCredentialsByEmail(context.Background(), "asha@example.com")
	require.NoError(t, err)
	assert.Equal(t, models.RoleStudent, creds.Role)

	mock.ExpectQuery(regexp.QuoteMeta("FROM students WHERE email = $1")).
		WithArgs("nobody@example.com").
		WillReturnError(sql.ErrNoRows)
	_, err = repo.FindCredentialsByEmail(context.Background(), "nobody@example.com")
	assert.ErrorIs(t, err, sql.ErrNoRows)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStudentRepositoryCreate(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewStudentRepository(db)

	mock.ExpectExec("INSERT INTO students").
		WithArgs(sqlmock.AnyArg(), "CS001", "Asha", "asha@example.com", "hash", "CSE", "A", sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	student := &models.Student{RollNumber: "CS001", Name: "Asha", Email: "asha@example.com", PasswordHash: "hash", Branch: "CSE", Section: "A"}
	require.NoError(t, repo.Create(context.Background(), student))
	assert.NotEmpty(t, student.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStudentRepositoryExistsInSection(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewStudentRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT EXISTS(SELECT 1 FROM students WHERE section = $1 AND branch = $2)")).
		WithArgs("A", "CSE").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	exists, err := repo.ExistsInSection(context.Background(), "A", "CSE")
	require.NoError(t, err)
	assert.True(t, exists)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStudentRepositoryListEnrolledInSubject(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewStudentRepository(db)

	rows := sqlmock.NewRows([]string{"id", "name", "roll_number"}).
		AddRow("s1", "Asha", "CS001").
		AddRow("s2", "Ravi", "CS002")
	mock.ExpectQuery(regexp.QuoteMeta("WHERE s.section = $1 AND s.branch = $2 AND ss.subject_id = $3")).
		WithArgs("A", "CSE", "sub").
		WillReturnRows(rows)

	students, err := repo.ListEnrolledInSubject(context.Background(), "A", "CSE", "sub")
	require.NoError(t, err)
	require.Len(t, students, 2)
	assert.Equal(t, "Ravi", students[1].Name)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStudentRepositoryEnrollSubjects(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewStudentRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("ON CONFLICT (student_id, subject_id) DO NOTHING")).
		WithArgs("s1", sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 2))

	require.NoError(t, repo.EnrollSubjects(context.Background(), "s1", []string{"a", "b"}))
	require.NoError(t, repo.EnrollSubjects(context.Background(), "s1", nil))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStudentRepositoryCreateDuplicate(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewStudentRepository(db)

	mock.ExpectExec("INSERT INTO students").WillReturnError(&pq.Error{Code: "23505"})

	err := repo.Create(context.Background(), &models.Student{RollNumber: "CS001", Email: "asha@example.com"})
	assert.ErrorIs(t, err, ErrDuplicate)
	assert.NoError(t, mock.ExpectationsWereMet())
}
