package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/ugportal-api/internal/dto"
	"github.com/noah-isme/ugportal-api/internal/models"
	appErrors "github.com/noah-isme/ugportal-api/pkg/errors"
)

type attendanceWriteRepository interface {
	UpsertBatch(ctx context.Context, records []models.AttendanceRecord) error
	FindByID(ctx context.Context, id string) (*models.AttendanceRecord, error)
	UpdateStatus(ctx context.Context, id string, status models.AttendanceStatus) error
}

type attendanceAuditLog interface {
	CreateAuditLog(ctx context.Context, log *models.AuditLog) error
	ListByResource(ctx context.Context, resource, resourceID string) ([]models.AuditLog, error)
}

// AttendanceService records roster submissions and single-record amendments.
type AttendanceService struct {
	repo      attendanceWriteRepository
	audit     attendanceAuditLog
	cache     *CacheService
	metrics   *MetricsService
	validator *validator.Validate
	logger    *zap.Logger
	location  *time.Location
	now       func() time.Time
}

// NewAttendanceService constructs the attendance service. Session days are
// computed in loc.
func NewAttendanceService(repo attendanceWriteRepository, audit attendanceAuditLog, cache *CacheService, metrics *MetricsService, loc *time.Location, validate *validator.Validate, logger *zap.Logger) *AttendanceService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if loc == nil {
		loc = time.Local
	}
	registerAttendanceValidations(validate)
	return &AttendanceService{
		repo:      repo,
		audit:     audit,
		cache:     cache,
		metrics:   metrics,
		validator: validate,
		logger:    logger,
		location:  loc,
		now:       time.Now,
	}
}

// WithClock replaces the time source.
func (s *AttendanceService) WithClock(now func() time.Time) *AttendanceService {
	if now != nil {
		s.now = now
	}
	return s
}

func registerAttendanceValidations(validate *validator.Validate) {
	_ = validate.RegisterValidation("attendance_status", func(fl validator.FieldLevel) bool {
		return models.AttendanceStatus(fl.Field().String()).Valid()
	})
}

// MarkAttendance writes today's status for every student in the roster. Resubmitting
// the same roster on the same day overwrites instead of duplicating.
func (s *AttendanceService) MarkAttendance(ctx context.Context, req dto.MarkAttendanceRequest) error {
	req.SubjectID = strings.TrimSpace(req.SubjectID)
	req.Section = models.NormalizeCode(req.Section)
	req.Branch = models.NormalizeCode(req.Branch)
	for i := range req.AttendanceData {
		req.AttendanceData[i].StudentID = strings.TrimSpace(req.AttendanceData[i].StudentID)
	}
	if err := s.validator.Struct(req); err != nil {
		return validationFailure(err)
	}

	day := models.SessionDay(s.now(), s.location)
	records := make([]models.AttendanceRecord, 0, len(req.AttendanceData))
	seen := make(map[string]int, len(req.AttendanceData))
	for _, entry := range req.AttendanceData {
		status := models.AttendanceStatus(entry.Status)
		if idx, ok := seen[entry.StudentID]; ok {
			records[idx].Status = status
			continue
		}
		seen[entry.StudentID] = len(records)
		records = append(records, models.AttendanceRecord{
			StudentID: entry.StudentID,
			SubjectID: req.SubjectID,
			Branch:    req.Branch,
			Section:   req.Section,
			Date:      day,
			Status:    status,
		})
	}

	if err := s.repo.UpsertBatch(ctx, records); err != nil {
		return appErrors.Internal(err, "Failed to mark attendance")
	}

	s.metrics.AddRosterEntries(len(records))
	s.cache.InvalidateAttendance(ctx, req.SubjectID)
	s.logger.Info("attendance marked",
		zap.String("subject_id", req.SubjectID),
		zap.String("section", req.Section),
		zap.String("branch", req.Branch),
		zap.Time("date", day),
		zap.Int("entries", len(records)),
	)
	return nil
}

// ModifyAttendance overwrites the status of one record and keeps the previous
// value in the audit log.
func (s *AttendanceService) ModifyAttendance(ctx context.Context, req dto.ModifyAttendanceRequest, actor models.Actor) error {
	req.RecordID = strings.TrimSpace(req.RecordID)
	if err := s.validator.Struct(req); err != nil {
		return validationFailure(err)
	}

	record, err := s.repo.FindByID(ctx, req.RecordID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "Attendance record not found")
		}
		return appErrors.Internal(err, "Failed to modify attendance")
	}

	status := models.AttendanceStatus(req.Status)
	if err := s.repo.UpdateStatus(ctx, record.ID, status); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "Attendance record not found")
		}
		return appErrors.Internal(err, "Failed to modify attendance")
	}

	s.metrics.IncAmendment()
	s.cache.InvalidateAttendance(ctx, record.SubjectID)
	s.recordAmendment(ctx, record, status, actor)
	return nil
}

func (s *AttendanceService) recordAmendment(ctx context.Context, record *models.AttendanceRecord, status models.AttendanceStatus, actor models.Actor) {
	if s.audit == nil {
		return
	}
	oldValues, _ := json.Marshal(map[string]string{"status": string(record.Status)})
	newValues, _ := json.Marshal(map[string]string{"status": string(status)})
	entry := &models.AuditLog{
		Action:     models.AuditActionAttendanceAmend,
		Resource:   models.AuditResourceAttendance,
		ResourceID: &record.ID,
		OldValues:  oldValues,
		NewValues:  newValues,
		IPAddress:  actor.IP,
		UserAgent:  actor.UserAgent,
	}
	if actor.ID != "" {
		id := actor.ID
		role := string(actor.Role)
		entry.ActorID = &id
		entry.ActorRole = &role
	}
	if err := s.audit.CreateAuditLog(ctx, entry); err != nil {
		s.logger.Warn("failed to write attendance audit log", zap.String("record_id", record.ID), zap.Error(err))
	}
}

// AmendmentHistory lists the recorded amendments of one attendance record, newest first.
func (s *AttendanceService) AmendmentHistory(ctx context.Context, recordID string) ([]dto.AttendanceHistoryEntry, error) {
	recordID = strings.TrimSpace(recordID)
	if recordID == "" {
		return nil, appErrors.ErrValidation
	}
	if _, err := s.repo.FindByID(ctx, recordID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "Attendance record not found")
		}
		return nil, appErrors.Internal(err, "Failed to fetch attendance history")
	}

	entries := []dto.AttendanceHistoryEntry{}
	if s.audit == nil {
		return entries, nil
	}
	logs, err := s.audit.ListByResource(ctx, models.AuditResourceAttendance, recordID)
	if err != nil {
		return nil, appErrors.Internal(err, "Failed to fetch attendance history")
	}
	for _, log := range logs {
		entry := dto.AttendanceHistoryEntry{
			ID:        log.ID,
			Action:    log.Action,
			OldStatus: statusFromAuditValues(log.OldValues),
			NewStatus: statusFromAuditValues(log.NewValues),
			CreatedAt: log.CreatedAt,
		}
		if log.ActorID != nil {
			entry.ActorID = *log.ActorID
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

func statusFromAuditValues(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var values struct {
		Status string `json:"status"`
	}
	if err := json.Unmarshal(raw, &values); err != nil {
		return ""
	}
	return values.Status
}

// validationFailure maps validator errors onto the API's 400 messages.
func validationFailure(err error) error {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		for _, fe := range verrs {
			if fe.Tag() == "attendance_status" {
				return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "Status must be Present or Absent")
			}
		}
	}
	return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, appErrors.ErrValidation.Message)
}
