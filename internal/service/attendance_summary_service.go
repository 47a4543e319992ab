package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/noah-isme/ugportal-api/internal/dto"
	"github.com/noah-isme/ugportal-api/internal/models"
	"github.com/noah-isme/ugportal-api/pkg/config"
	appErrors "github.com/noah-isme/ugportal-api/pkg/errors"
)

const (
	viewSubject = "subject"
	viewStudent = "student"
)

type attendanceReadRepository interface {
	CountClasses(ctx context.Context, scope models.AttendanceScope, distinctDates bool) (int, error)
	CountPresent(ctx context.Context, studentID string, scope models.AttendanceScope) (int, error)
	StatusOn(ctx context.Context, studentID string, scope models.AttendanceScope, day time.Time) (models.AttendanceStatus, error)
	ListForStudents(ctx context.Context, scope models.AttendanceScope, studentIDs []string) ([]models.AttendanceListing, error)
}

type rosterRepository interface {
	ExistsInSection(ctx context.Context, section, branch string) (bool, error)
	ListEnrolledInSubject(ctx context.Context, section, branch, subjectID string) ([]models.StudentSummary, error)
	FindByID(ctx context.Context, id string) (*models.Student, error)
	ListSubjects(ctx context.Context, studentID string) ([]models.Subject, error)
}

// AttendanceSummaryService recomputes attendance percentages from stored records on every read.
type AttendanceSummaryService struct {
	records   attendanceReadRepository
	roster    rosterRepository
	cache     *CacheService
	metrics   *MetricsService
	validator *validator.Validate
	logger    *zap.Logger
	cfg       config.AttendanceConfig
	now       func() time.Time
}

// NewAttendanceSummaryService constructs the service.
func NewAttendanceSummaryService(records attendanceReadRepository, roster rosterRepository, cache *CacheService, metrics *MetricsService, cfg config.AttendanceConfig, validate *validator.Validate, logger *zap.Logger) *AttendanceSummaryService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.FanOutLimit <= 0 {
		cfg.FanOutLimit = 8
	}
	if cfg.Location == nil {
		cfg.Location = time.Local
	}
	if cfg.Denominator == "" {
		cfg.Denominator = config.DenominatorRecords
	}
	if cfg.FailurePolicy == "" {
		cfg.FailurePolicy = config.FailurePolicyBestEffort
	}
	return &AttendanceSummaryService{
		records:   records,
		roster:    roster,
		cache:     cache,
		metrics:   metrics,
		validator: validate,
		logger:    logger,
		cfg:       cfg,
		now:       time.Now,
	}
}

// WithClock replaces the time source.
func (s *AttendanceSummaryService) WithClock(now func() time.Time) *AttendanceSummaryService {
	if now != nil {
		s.now = now
	}
	return s
}

// SubjectAttendance returns each enrolled student's standing in one subject for a section of a branch.
func (s *AttendanceSummaryService) SubjectAttendance(ctx context.Context, q dto.AttendanceQuery) ([]dto.SubjectAttendanceRow, error) {
	start := time.Now()
	defer func() { s.metrics.ObserveAggregation(viewSubject, time.Since(start)) }()

	scope, err := s.scopeFromQuery(q)
	if err != nil {
		return nil, err
	}
	day := models.SessionDay(s.now(), s.cfg.Location)

	cacheKey := subjectViewCacheKey(scope, day, s.cfg.Denominator)
	var cached []dto.SubjectAttendanceRow
	if hit, _ := s.cache.Get(ctx, cacheKey, &cached); hit {
		return cached, nil
	}

	students, err := s.enrolledStudents(ctx, scope, q, "Error fetching attendance data")
	if err != nil {
		return nil, err
	}

	rows := make([]dto.SubjectAttendanceRow, len(students))
	ok, err := s.fanOut(ctx, viewSubject, s.failFast(), len(students), func(ctx context.Context, i int) error {
		student := students[i]
		total, err := s.records.CountClasses(ctx, scope, s.countSessions())
		if err != nil {
			return err
		}
		attended, err := s.records.CountPresent(ctx, student.ID, scope)
		if err != nil {
			return err
		}
		today, err := s.records.StatusOn(ctx, student.ID, scope, day)
		if err != nil {
			if !errors.Is(err, sql.ErrNoRows) {
				return err
			}
			today = models.AttendanceStatusAbsent
		}
		rows[i] = dto.SubjectAttendanceRow{
			StudentID:            student.ID,
			Name:                 student.Name,
			RollNumber:           student.RollNumber,
			Attendance:           string(today),
			ClassesAttended:      attended,
			TotalClasses:         total,
			AttendancePercentage: models.Percentage(attended, total),
		}
		return nil
	}, func(i int) zap.Field { return zap.String("student_id", students[i].ID) })
	if err != nil {
		return nil, appErrors.Internal(err, "Error fetching attendance data")
	}

	result := make([]dto.SubjectAttendanceRow, 0, len(rows))
	for i, row := range rows {
		if ok[i] {
			result = append(result, row)
		}
	}
	if len(result) == 0 {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "No attendance records found")
	}

	_ = s.cache.Set(ctx, cacheKey, result, s.cfg.CacheTTL)
	return result, nil
}

// StudentAttendance returns the student's standing in every enrolled subject. Classes are
// counted over the student's own section regardless of branch. Any failed subject fails the
// whole view whatever the configured failure policy.
func (s *AttendanceSummaryService) StudentAttendance(ctx context.Context, studentID string) ([]dto.StudentAttendanceRow, error) {
	start := time.Now()
	defer func() { s.metrics.ObserveAggregation(viewStudent, time.Since(start)) }()

	cacheKey := studentViewCacheKey(studentID, s.cfg.Denominator)
	var cached []dto.StudentAttendanceRow
	if hit, _ := s.cache.Get(ctx, cacheKey, &cached); hit {
		return cached, nil
	}

	student, err := s.roster.FindByID(ctx, studentID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "Student not found")
		}
		return nil, appErrors.Internal(err, "Failed to fetch attendance data")
	}

	subjects, err := s.roster.ListSubjects(ctx, student.ID)
	if err != nil {
		return nil, appErrors.Internal(err, "Failed to fetch attendance data")
	}

	rows := make([]dto.StudentAttendanceRow, len(subjects))
	ok, err := s.fanOut(ctx, viewStudent, true, len(subjects), func(ctx context.Context, i int) error {
		subject := subjects[i]
		scope := models.AttendanceScope{SubjectID: subject.ID, Section: student.Section}
		total, err := s.records.CountClasses(ctx, scope, s.countSessions())
		if err != nil {
			return err
		}
		attended, err := s.records.CountPresent(ctx, student.ID, scope)
		if err != nil {
			return err
		}
		rows[i] = dto.StudentAttendanceRow{
			SubjectName:          subject.Name,
			SubjectCode:          subject.Code,
			TotalClasses:         total,
			AttendedClasses:      attended,
			AttendancePercentage: models.Percentage(attended, total),
		}
		return nil
	}, func(i int) zap.Field { return zap.String("subject_id", subjects[i].ID) })
	if err != nil {
		return nil, appErrors.Internal(err, "Failed to fetch attendance data")
	}

	result := make([]dto.StudentAttendanceRow, 0, len(rows))
	for i, row := range rows {
		if ok[i] {
			result = append(result, row)
		}
	}

	_ = s.cache.Set(ctx, cacheKey, result, s.cfg.CacheTTL)
	return result, nil
}

// ListRecords returns the stored records of enrolled students for amendment screens.
func (s *AttendanceSummaryService) ListRecords(ctx context.Context, q dto.AttendanceQuery) ([]dto.AttendanceRecordRow, error) {
	scope, err := s.scopeFromQuery(q)
	if err != nil {
		return nil, err
	}

	cacheKey := recordListingCacheKey(scope)
	var cached []dto.AttendanceRecordRow
	if hit, _ := s.cache.Get(ctx, cacheKey, &cached); hit {
		return cached, nil
	}

	students, err := s.enrolledStudents(ctx, scope, q, "Failed to fetch attendance records")
	if err != nil {
		return nil, err
	}
	ids := make([]string, len(students))
	for i, student := range students {
		ids[i] = student.ID
	}

	listing, err := s.records.ListForStudents(ctx, scope, ids)
	if err != nil {
		return nil, appErrors.Internal(err, "Failed to fetch attendance records")
	}
	if len(listing) == 0 {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "No attendance records found for enrolled students")
	}

	rows := make([]dto.AttendanceRecordRow, len(listing))
	for i, rec := range listing {
		rows[i] = dto.AttendanceRecordRow{
			ID:         rec.ID,
			RollNumber: rec.RollNumber,
			Name:       rec.Name,
			Date:       rec.Date,
			Status:     string(rec.Status),
		}
	}

	_ = s.cache.Set(ctx, cacheKey, rows, s.cfg.CacheTTL)
	return rows, nil
}

func (s *AttendanceSummaryService) scopeFromQuery(q dto.AttendanceQuery) (models.AttendanceScope, error) {
	q.SubjectID = strings.TrimSpace(q.SubjectID)
	q.Section = models.NormalizeCode(q.Section)
	q.Branch = models.NormalizeCode(q.Branch)
	if err := s.validator.Struct(q); err != nil {
		return models.AttendanceScope{}, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "Subject, section and branch are required")
	}
	return models.AttendanceScope{SubjectID: q.SubjectID, Section: q.Section, Branch: q.Branch}, nil
}

// enrolledStudents resolves the first two not-found tiers: an empty section, then a
// section with nobody enrolled in the subject. The empty-section message echoes the
// section and branch as the caller sent them.
func (s *AttendanceSummaryService) enrolledStudents(ctx context.Context, scope models.AttendanceScope, q dto.AttendanceQuery, failure string) ([]models.StudentSummary, error) {
	exists, err := s.roster.ExistsInSection(ctx, scope.Section, scope.Branch)
	if err != nil {
		return nil, appErrors.Internal(err, failure)
	}
	if !exists {
		return nil, appErrors.Clone(appErrors.ErrNotFound, fmt.Sprintf("No students found in section %s of %s branch", q.Section, q.Branch))
	}

	students, err := s.roster.ListEnrolledInSubject(ctx, scope.Section, scope.Branch, scope.SubjectID)
	if err != nil {
		return nil, appErrors.Internal(err, failure)
	}
	if len(students) == 0 {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "No students enrolled in this subject for the selected section")
	}
	return students, nil
}

func (s *AttendanceSummaryService) countSessions() bool {
	return s.cfg.Denominator == config.DenominatorSessions
}

func (s *AttendanceSummaryService) failFast() bool {
	return s.cfg.FailurePolicy == config.FailurePolicyFailFast
}

// fanOut runs fn for indexes [0, n) with bounded concurrency and reports which ones succeeded.
// Without failFast a failed index is logged and skipped; with it the first error cancels the
// rest and is returned.
func (s *AttendanceSummaryService) fanOut(ctx context.Context, view string, failFast bool, n int, fn func(ctx context.Context, i int) error, describe func(i int) zap.Field) ([]bool, error) {
	ok := make([]bool, n)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.cfg.FanOutLimit)
	for i := 0; i < n; i++ {
		i := i
		g.Go(func() error {
			if err := fn(gctx, i); err != nil {
				s.metrics.IncAggregationFailure(view)
				if failFast {
					return err
				}
				s.logger.Warn("dropping attendance entry", zap.String("view", view), describe(i), zap.Error(err))
				return nil
			}
			ok[i] = true
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return ok, nil
}
