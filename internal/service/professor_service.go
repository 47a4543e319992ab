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

type professorRepository interface {
	FindByID(ctx context.Context, id string) (*models.Professor, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	Create(ctx context.Context, professor *models.Professor) error
	UpdateProfile(ctx context.Context, professor *models.Professor) error
}

type subjectRepository interface {
	Create(ctx context.Context, subject *models.Subject) error
	ListByProfessor(ctx context.Context, professorID string) ([]models.Subject, error)
}

type studentLookup interface {
	FindByID(ctx context.Context, id string) (*models.Student, error)
}

type markRepository interface {
	Create(ctx context.Context, mark *models.Mark) error
}

// ProfessorService handles professor accounts, the subjects they own and the marks they upload.
type ProfessorService struct {
	repo      professorRepository
	subjects  subjectRepository
	students  studentLookup
	marks     markRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewProfessorService constructs the professor service.
func NewProfessorService(repo professorRepository, subjects subjectRepository, students studentLookup, marks markRepository, validate *validator.Validate, logger *zap.Logger) *ProfessorService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ProfessorService{repo: repo, subjects: subjects, students: students, marks: marks, validator: validate, logger: logger}
}

// Register creates a professor account.
func (s *ProfessorService) Register(ctx context.Context, req dto.RegisterProfessorRequest) (*models.Professor, error) {
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	req.Name = strings.TrimSpace(req.Name)
	req.Branches = normalizeCodes(req.Branches)
	req.Sections = normalizeCodes(req.Sections)
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, appErrors.ErrValidation.Message)
	}

	exists, err := s.repo.ExistsByEmail(ctx, req.Email)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to check professor")
	}
	if exists {
		return nil, appErrors.Clone(appErrors.ErrConflict, "Professor already exists")
	}

	hash, err := HashPassword(req.Password)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to hash password")
	}

	professor := &models.Professor{
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: hash,
		Branches:     req.Branches,
		Sections:     req.Sections,
	}
	if err := s.repo.Create(ctx, professor); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, appErrors.Clone(appErrors.ErrConflict, "Professor already exists")
		}
		return nil, appErrors.Internal(err, "failed to register professor")
	}
	s.logger.Info("professor registered", zap.String("professor_id", professor.ID))
	return professor, nil
}

// Profile returns the professor's own profile.
func (s *ProfessorService) Profile(ctx context.Context, id string) (*models.Professor, error) {
	professor, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "Professor not found")
		}
		return nil, appErrors.Internal(err, "failed to load professor")
	}
	return professor, nil
}

// UpdateProfile changes name, email and, when given, the taught branches and sections.
func (s *ProfessorService) UpdateProfile(ctx context.Context, id string, req dto.UpdateProfessorProfileRequest) (*models.Professor, error) {
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	req.Name = strings.TrimSpace(req.Name)
	req.Branches = normalizeCodes(req.Branches)
	req.Sections = normalizeCodes(req.Sections)
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, appErrors.ErrValidation.Message)
	}
	professor, err := s.Profile(ctx, id)
	if err != nil {
		return nil, err
	}
	professor.Name = req.Name
	professor.Email = req.Email
	if len(req.Branches) > 0 {
		professor.Branches = req.Branches
	}
	if len(req.Sections) > 0 {
		professor.Sections = req.Sections
	}
	if err := s.repo.UpdateProfile(ctx, professor); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, appErrors.Clone(appErrors.ErrConflict, "Email already in use")
		}
		return nil, appErrors.Internal(err, "failed to update professor")
	}
	return professor, nil
}

// Dashboard returns the professor with the subjects they own.
func (s *ProfessorService) Dashboard(ctx context.Context, id string) (*dto.ProfessorDashboardResponse, error) {
	professor, err := s.Profile(ctx, id)
	if err != nil {
		return nil, err
	}
	subjects, err := s.subjects.ListByProfessor(ctx, professor.ID)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to load subjects")
	}
	if subjects == nil {
		subjects = []models.Subject{}
	}
	return &dto.ProfessorDashboardResponse{Professor: professor, Subjects: subjects, HasSubjects: len(subjects) > 0}, nil
}

// CreateSubject adds a subject owned by the professor.
func (s *ProfessorService) CreateSubject(ctx context.Context, professorID string, req dto.CreateSubjectRequest) (*models.Subject, error) {
	req.Name = strings.TrimSpace(req.Name)
	req.Code = strings.ToUpper(strings.TrimSpace(req.Code))
	req.Branch = models.NormalizeCode(req.Branch)
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "Please provide all required fields")
	}
	subject := &models.Subject{Name: req.Name, Code: req.Code, Branch: req.Branch, ProfessorID: professorID}
	if err := s.subjects.Create(ctx, subject); err != nil {
		return nil, appErrors.Internal(err, "Error creating subject")
	}
	return subject, nil
}

// UploadMarks records a score for an existing student.
func (s *ProfessorService) UploadMarks(ctx context.Context, professorID string, req dto.UploadMarksRequest) (*models.Mark, error) {
	req.StudentID = strings.TrimSpace(req.StudentID)
	req.SubjectID = strings.TrimSpace(req.SubjectID)
	req.Type = strings.TrimSpace(req.Type)
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "Please provide all required fields")
	}

	if _, err := s.students.FindByID(ctx, req.StudentID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "Student not found")
		}
		return nil, appErrors.Internal(err, "Something went wrong")
	}

	mark := &models.Mark{
		StudentID:  req.StudentID,
		SubjectID:  req.SubjectID,
		Marks:      *req.Marks,
		Type:       req.Type,
		UploadedBy: professorID,
	}
	if err := s.marks.Create(ctx, mark); err != nil {
		if errors.Is(err, repository.ErrMissingReference) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "Subject not found")
		}
		return nil, appErrors.Internal(err, "Something went wrong")
	}
	s.logger.Info("marks uploaded",
		zap.String("professor_id", professorID),
		zap.String("student_id", mark.StudentID),
		zap.String("subject_id", mark.SubjectID),
		zap.String("type", mark.Type),
	)
	return mark, nil
}

func normalizeCodes(values []string) []string {
	if values == nil {
		return nil
	}
	out := make([]string, 0, len(values))
	for _, v := range values {
		out = append(out, models.NormalizeCode(v))
	}
	return out
}
