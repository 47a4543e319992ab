package service

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/noah-isme/ugportal-api/internal/dto"
	"github.com/noah-isme/ugportal-api/internal/models"
	"github.com/noah-isme/ugportal-api/internal/repository"
	appErrors "github.com/noah-isme/ugportal-api/pkg/errors"
)

type studentRepoStub struct {
	students  map[string]*models.Student
	enrolled  map[string][]string
	catalog   map[string]models.Subject
	createErr error
}

func newStudentRepoStub() *studentRepoStub {
	return &studentRepoStub{
		students: map[string]*models.Student{},
		enrolled: map[string][]string{},
		catalog: map[string]models.Subject{
			"net":  {ID: "net", Name: "Networks", Code: "CS301", Branch: "CSE"},
			"os":   {ID: "os", Name: "Operating Systems", Code: "CS302", Branch: "CSE"},
			"vlsi": {ID: "vlsi", Name: "VLSI", Code: "EC401", Branch: "ECE"},
		},
	}
}

func (r *studentRepoStub) FindByID(ctx context.Context, id string) (*models.Student, error) {
	s, ok := r.students[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	copyStudent := *s
	return &copyStudent, nil
}

func (r *studentRepoStub) FindByRollNumber(ctx context.Context, roll string) (*models.Student, error) {
	for _, s := range r.students {
		if s.RollNumber == roll {
			copyStudent := *s
			return &copyStudent, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (r *studentRepoStub) ExistsByEmailOrRoll(ctx context.Context, email, roll string) (bool, error) {
	for _, s := range r.students {
		if s.Email == email || s.RollNumber == roll {
			return true, nil
		}
	}
	return false, nil
}

func (r *studentRepoStub) Create(ctx context.Context, student *models.Student) error {
	if r.createErr != nil {
		return r.createErr
	}
	student.ID = "s" + student.RollNumber
	copyStudent := *student
	r.students[student.ID] = &copyStudent
	return nil
}

func (r *studentRepoStub) UpdateProfile(ctx context.Context, student *models.Student) error {
	copyStudent := *student
	r.students[student.ID] = &copyStudent
	return nil
}

func (r *studentRepoStub) ListSubjects(ctx context.Context, studentID string) ([]models.Subject, error) {
	var out []models.Subject
	for _, id := range r.enrolled[studentID] {
		out = append(out, r.catalog[id])
	}
	return out, nil
}

func (r *studentRepoStub) EnrollSubjects(ctx context.Context, studentID string, subjectIDs []string) error {
	for _, id := range subjectIDs {
		already := false
		for _, existing := range r.enrolled[studentID] {
			if existing == id {
				already = true
			}
		}
		if !already {
			r.enrolled[studentID] = append(r.enrolled[studentID], id)
		}
	}
	return nil
}

func (r *studentRepoStub) ListAvailableForStudent(ctx context.Context, studentID, branch string) ([]models.Subject, error) {
	var out []models.Subject
	for _, id := range []string{"net", "os", "vlsi"} {
		subject := r.catalog[id]
		if subject.Branch != branch {
			continue
		}
		joined := false
		for _, e := range r.enrolled[studentID] {
			if e == id {
				joined = true
			}
		}
		if !joined {
			out = append(out, subject)
		}
	}
	return out, nil
}

func (r *studentRepoStub) ListByIDsInBranch(ctx context.Context, ids []string, branch string) ([]models.Subject, error) {
	var out []models.Subject
	for _, id := range ids {
		if subject, ok := r.catalog[id]; ok && subject.Branch == branch {
			out = append(out, subject)
		}
	}
	return out, nil
}

func registerStudent(t *testing.T, svc *StudentService) *models.Student {
	t.Helper()
	student, err := svc.Register(context.Background(), dto.RegisterStudentRequest{
		RollNumber: "001", Name: "Asha", Email: "Asha@Example.com", Password: "secret123", Branch: "cse", Section: "a",
	})
	require.NoError(t, err)
	return student
}

func TestStudentRegisterNormalisesAndHashes(t *testing.T) {
	repo := newStudentRepoStub()
	svc := NewStudentService(repo, repo, nil, nil, zap.NewNop())

	student := registerStudent(t, svc)
	assert.Equal(t, "CSE", student.Branch)
	assert.Equal(t, "A", student.Section)
	assert.Equal(t, "asha@example.com", student.Email)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(student.PasswordHash), []byte("secret123")))

	_, err := svc.Register(context.Background(), dto.RegisterStudentRequest{RollNumber: "001", Name: "Other", Email: "other@example.com", Password: "secret123", Branch: "CSE", Section: "A"})
	assert.True(t, appErrors.Is(err, appErrors.ErrConflict))
}

func TestStudentRegisterMapsDuplicateInsert(t *testing.T) {
	repo := newStudentRepoStub()
	repo.createErr = repository.ErrDuplicate
	svc := NewStudentService(repo, repo, nil, nil, zap.NewNop())

	_, err := svc.Register(context.Background(), dto.RegisterStudentRequest{RollNumber: "002", Name: "Ravi", Email: "ravi@example.com", Password: "secret123", Branch: "CSE", Section: "A"})
	assert.True(t, appErrors.Is(err, appErrors.ErrConflict))
}

func TestStudentEnrollStaysInBranch(t *testing.T) {
	repo := newStudentRepoStub()
	svc := NewStudentService(repo, repo, nil, nil, zap.NewNop())
	student := registerStudent(t, svc)

	_, err := svc.Enroll(context.Background(), student.ID, dto.EnrollRequest{SubjectIDs: []string{"net", "vlsi"}})
	require.Error(t, err)
	assert.Equal(t, "Some subjects are invalid or not available for your branch", appErrors.FromError(err).Message)

	enrolled, err := svc.Enroll(context.Background(), student.ID, dto.EnrollRequest{SubjectIDs: []string{"net", "net"}})
	require.NoError(t, err)
	require.Len(t, enrolled, 1)
	assert.Equal(t, "net", enrolled[0].ID)
	_, err = svc.Enroll(context.Background(), student.ID, dto.EnrollRequest{SubjectIDs: []string{"net"}})
	require.NoError(t, err)
	assert.Equal(t, []string{"net"}, repo.enrolled[student.ID])

	subjects, err := svc.AvailableSubjects(context.Background(), student.ID)
	require.NoError(t, err)
	require.Len(t, subjects.CurrentSubjects, 1)
	require.Len(t, subjects.AvailableSubjects, 1)
	assert.Equal(t, "os", subjects.AvailableSubjects[0].ID)

	_, err = svc.Enroll(context.Background(), student.ID, dto.EnrollRequest{})
	assert.True(t, appErrors.Is(err, appErrors.ErrValidation))
	assert.Equal(t, "Please provide valid subject IDs", appErrors.FromError(err).Message)
}

func TestStudentLinkSubjectsByRollNumber(t *testing.T) {
	repo := newStudentRepoStub()
	svc := NewStudentService(repo, repo, nil, nil, zap.NewNop())
	student := registerStudent(t, svc)

	require.NoError(t, svc.LinkSubjects(context.Background(), dto.LinkSubjectRequest{RollNumber: "001", SubjectIDs: []string{"vlsi"}}))
	assert.Equal(t, []string{"vlsi"}, repo.enrolled[student.ID])

	err := svc.LinkSubjects(context.Background(), dto.LinkSubjectRequest{RollNumber: "999", SubjectIDs: []string{"net"}})
	assert.Equal(t, "Student not found", appErrors.FromError(err).Message)
}

func TestStudentProfileUpdate(t *testing.T) {
	repo := newStudentRepoStub()
	svc := NewStudentService(repo, repo, nil, nil, zap.NewNop())
	student := registerStudent(t, svc)

	updated, err := svc.UpdateProfile(context.Background(), student.ID, dto.UpdateStudentProfileRequest{Name: "Asha K", Email: "ASHA.K@example.com"})
	require.NoError(t, err)
	assert.Equal(t, "asha.k@example.com", updated.Email)

	_, err = svc.Profile(context.Background(), "missing")
	assert.True(t, appErrors.Is(err, appErrors.ErrNotFound))
}
