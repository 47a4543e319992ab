package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/ugportal-api/internal/dto"
	"github.com/noah-isme/ugportal-api/pkg/export"
	appErrors "github.com/noah-isme/ugportal-api/pkg/errors"
)

type attendanceListingSource interface {
	ListRecords(ctx context.Context, q dto.AttendanceQuery) ([]dto.AttendanceRecordRow, error)
}

// ExportResult is a rendered download.
type ExportResult struct {
	Filename    string
	ContentType string
	Payload     []byte
}

// ExportService renders attendance listings as downloadable files.
type ExportService struct {
	listing  attendanceListingSource
	location *time.Location
	logger   *zap.Logger
}

// NewExportService constructs an ExportService.
func NewExportService(listing attendanceListingSource, loc *time.Location, logger *zap.Logger) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if loc == nil {
		loc = time.Local
	}
	return &ExportService{listing: listing, location: loc, logger: logger}
}

// ExportRecords renders the record listing of q in the requested format.
func (s *ExportService) ExportRecords(ctx context.Context, q dto.AttendanceQuery, rawFormat string) (*ExportResult, error) {
	format, err := export.ParseFormat(rawFormat)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "Format must be csv or pdf")
	}

	rows, err := s.listing.ListRecords(ctx, q)
	if err != nil {
		return nil, err
	}

	table := export.Table{
		Title:   fmt.Sprintf("Attendance %s / %s", strings.ToUpper(strings.TrimSpace(q.Branch)), strings.ToUpper(strings.TrimSpace(q.Section))),
		Headers: []string{"Roll Number", "Name", "Date", "Status"},
		Rows:    make([][]string, 0, len(rows)),
	}
	for _, row := range rows {
		table.Rows = append(table.Rows, []string{row.RollNumber, row.Name, row.Date.In(s.location).Format("2006-01-02"), row.Status})
	}

	payload, err := export.RendererFor(format).Render(table)
	if err != nil {
		s.logger.Error("render attendance export", zap.String("format", string(format)), zap.Error(err))
		return nil, appErrors.Internal(err, "Failed to export attendance records")
	}

	return &ExportResult{
		Filename:    buildExportFilename(q, format),
		ContentType: format.ContentType(),
		Payload:     payload,
	}, nil
}

func buildExportFilename(q dto.AttendanceQuery, format export.Format) string {
	parts := []string{"attendance", sanitizeFilename(q.Branch), sanitizeFilename(q.Section), sanitizeFilename(q.SubjectID)}
	return fmt.Sprintf("%s.%s", strings.ToLower(strings.Join(parts, "_")), format)
}

func sanitizeFilename(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "na"
	}
	replacer := strings.NewReplacer(" ", "_", "/", "-", "\\", "-", ":", "-", "..", ".", "\"", "")
	result := replacer.Replace(raw)
	if len(result) > 64 {
		return result[:64]
	}
	return result
}
