package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/ugportal-api/internal/dto"
	"github.com/noah-isme/ugportal-api/internal/models"
	"github.com/noah-isme/ugportal-api/internal/repository"
	appErrors "github.com/noah-isme/ugportal-api/pkg/errors"
)

type studentRepository interface {
	FindByID(ctx context.Context, id string) (*models.Student, error)
	FindByRollNumber(ctx context.Context, rollNumber string) (*models.Student, error)
	ExistsByEmailOrRoll(ctx context.Context, email, rollNumber string) (bool, error)
	Create(ctx context.Context, student *models.Student) error
	UpdateProfile(ctx context.Context, student *models.Student) error
	ListSubjects(ctx context.Context, studentID string) ([]models.Subject, error)
	EnrollSubjects(ctx context.Context, studentID string, subjectIDs []string) error
}

type subjectCatalog interface {
	ListAvailableForStudent(ctx context.Context, studentID, branch string) ([]models.Subject, error)
	ListByIDsInBranch(ctx context.Context, ids []string, branch string) ([]models.Subject, error)
}

// StudentService handles student accounts and subject enrolment.
type StudentService struct {
	repo      studentRepository
	subjects  subjectCatalog
	cache     *CacheService
	validator *validator.Validate
	logger    *zap.Logger
}

// NewStudentService constructs the student service.
func NewStudentService(repo studentRepository, subjects subjectCatalog, cache *CacheService, validate *validator.Validate, logger *zap.Logger) *StudentService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StudentService{repo: repo, subjects: subjects, cache: cache, validator: validate, logger: logger}
}

// Register creates a student account.
func (s *StudentService) Register(ctx context.Context, req dto.RegisterStudentRequest) (*models.Student, error) {
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	req.RollNumber = strings.TrimSpace(req.RollNumber)
	req.Name = strings.TrimSpace(req.Name)
	req.Branch = models.NormalizeCode(req.Branch)
	req.Section = models.NormalizeCode(req.Section)
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, appErrors.ErrValidation.Message)
	}

	exists, err := s.repo.ExistsByEmailOrRoll(ctx, req.Email, req.RollNumber)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to check student")
	}
	if exists {
		return nil, appErrors.Clone(appErrors.ErrConflict, "Student already exists")
	}

	hash, err := HashPassword(req.Password)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to hash password")
	}

	student := &models.Student{
		RollNumber:   req.RollNumber,
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: hash,
		Branch:       req.Branch,
		Section:      req.Section,
	}
	if err := s.repo.Create(ctx, student); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, appErrors.Clone(appErrors.ErrConflict, "Student already exists")
		}
		return nil, appErrors.Internal(err, "failed to register student")
	}
	s.logger.Info("student registered", zap.String("student_id", student.ID), zap.String("branch", student.Branch), zap.String("section", student.Section))
	return student, nil
}

// Profile returns the student's own profile.
func (s *StudentService) Profile(ctx context.Context, id string) (*models.Student, error) {
	student, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "Student not found")
		}
		return nil, appErrors.Internal(err, "failed to load student")
	}
	return student, nil
}

// UpdateProfile changes name and email.
func (s *StudentService) UpdateProfile(ctx context.Context, id string, req dto.UpdateStudentProfileRequest) (*models.Student, error) {
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	req.Name = strings.TrimSpace(req.Name)
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, appErrors.ErrValidation.Message)
	}
	student, err := s.Profile(ctx, id)
	if err != nil {
		return nil, err
	}
	student.Name = req.Name
	student.Email = req.Email
	if err := s.repo.UpdateProfile(ctx, student); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, appErrors.Clone(appErrors.ErrConflict, "Email already in use")
		}
		return nil, appErrors.Internal(err, "failed to update student")
	}
	return student, nil
}

// AvailableSubjects lists the student's subjects and the ones of their branch they can still join.
func (s *StudentService) AvailableSubjects(ctx context.Context, id string) (*dto.AvailableSubjectsResponse, error) {
	student, err := s.Profile(ctx, id)
	if err != nil {
		return nil, err
	}
	current, err := s.repo.ListSubjects(ctx, student.ID)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to load subjects")
	}
	available, err := s.subjects.ListAvailableForStudent(ctx, student.ID, student.Branch)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to load subjects")
	}
	if current == nil {
		current = []models.Subject{}
	}
	if available == nil {
		available = []models.Subject{}
	}
	return &dto.AvailableSubjectsResponse{CurrentSubjects: current, AvailableSubjects: available}, nil
}

// Enroll adds subjects of the student's own branch and returns them. Subjects already
// joined are left as they are.
func (s *StudentService) Enroll(ctx context.Context, id string, req dto.EnrollRequest) ([]models.Subject, error) {
	req.SubjectIDs = uniqueTrimmed(req.SubjectIDs)
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "Please provide valid subject IDs")
	}
	student, err := s.Profile(ctx, id)
	if err != nil {
		return nil, err
	}

	offered, err := s.subjects.ListByIDsInBranch(ctx, req.SubjectIDs, student.Branch)
	if err != nil {
		return nil, appErrors.Internal(err, "Failed to enroll in subjects")
	}
	if len(offered) != len(req.SubjectIDs) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "Some subjects are invalid or not available for your branch")
	}

	if err := s.repo.EnrollSubjects(ctx, student.ID, req.SubjectIDs); err != nil {
		return nil, appErrors.Internal(err, "Failed to enroll in subjects")
	}
	s.invalidateEnrolment(ctx, req.SubjectIDs)
	return offered, nil
}

// LinkSubjects lets a professor attach subjects to a student by roll number.
func (s *StudentService) LinkSubjects(ctx context.Context, req dto.LinkSubjectRequest) error {
	req.RollNumber = strings.TrimSpace(req.RollNumber)
	req.SubjectIDs = uniqueTrimmed(req.SubjectIDs)
	if err := s.validator.Struct(req); err != nil {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, appErrors.ErrValidation.Message)
	}
	student, err := s.repo.FindByRollNumber(ctx, req.RollNumber)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "Student not found")
		}
		return appErrors.Internal(err, "failed to load student")
	}
	if err := s.repo.EnrollSubjects(ctx, student.ID, req.SubjectIDs); err != nil {
		return appErrors.Internal(err, "failed to link subjects")
	}
	s.invalidateEnrolment(ctx, req.SubjectIDs)
	return nil
}

func (s *StudentService) invalidateEnrolment(ctx context.Context, subjectIDs []string) {
	for _, id := range subjectIDs {
		s.cache.InvalidateAttendance(ctx, id)
	}
}

func uniqueTrimmed(values []string) []string {
	if values == nil {
		return nil
	}
	out := make([]string, 0, len(values))
	seen := make(map[string]struct{}, len(values))
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}
