package handler

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/ugportal-api/internal/dto"
	"github.com/noah-isme/ugportal-api/internal/models"
	"github.com/noah-isme/ugportal-api/internal/service"
	appErrors "github.com/noah-isme/ugportal-api/pkg/errors"
	"github.com/noah-isme/ugportal-api/pkg/response"
)

type attendanceWriter interface {
	MarkAttendance(ctx context.Context, req dto.MarkAttendanceRequest) error
	ModifyAttendance(ctx context.Context, req dto.ModifyAttendanceRequest, actor models.Actor) error
	AmendmentHistory(ctx context.Context, recordID string) ([]dto.AttendanceHistoryEntry, error)
}

type attendanceReader interface {
	SubjectAttendance(ctx context.Context, q dto.AttendanceQuery) ([]dto.SubjectAttendanceRow, error)
	StudentAttendance(ctx context.Context, studentID string) ([]dto.StudentAttendanceRow, error)
	ListRecords(ctx context.Context, q dto.AttendanceQuery) ([]dto.AttendanceRecordRow, error)
}

type attendanceExporter interface {
	ExportRecords(ctx context.Context, q dto.AttendanceQuery, format string) (*service.ExportResult, error)
}

// AttendanceHandler exposes roster submission, amendment and attendance views.
type AttendanceHandler struct {
	writer   attendanceWriter
	reader   attendanceReader
	exporter attendanceExporter
}

// NewAttendanceHandler constructs the handler.
func NewAttendanceHandler(writer attendanceWriter, reader attendanceReader, exporter attendanceExporter) *AttendanceHandler {
	return &AttendanceHandler{writer: writer, reader: reader, exporter: exporter}
}

// Mark godoc
// @Summary Submit today's attendance roster
// @Tags Attendance
// @Accept json
// @Produce json
// @Param payload body dto.MarkAttendanceRequest true "Roster"
// @Success 200 {object} response.MessageBody
// @Failure 400 {object} response.ErrorBody
// @Failure 500 {object} response.ErrorBody
// @Router /professor/mark-attendance [post]
func (h *AttendanceHandler) Mark(c *gin.Context) {
	var req dto.MarkAttendanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, appErrors.ErrValidation.Message))
		return
	}
	if err := h.writer.MarkAttendance(c.Request.Context(), req); err != nil {
		response.Error(c, err)
		return
	}
	response.Message(c, http.StatusOK, "Attendance marked successfully")
}

// Modify godoc
// @Summary Amend one attendance record
// @Tags Attendance
// @Accept json
// @Produce json
// @Param payload body dto.ModifyAttendanceRequest true "Amendment"
// @Success 200 {object} response.MessageBody
// @Failure 400 {object} response.ErrorBody
// @Failure 404 {object} response.ErrorBody
// @Router /professor/modify-attendance [put]
func (h *AttendanceHandler) Modify(c *gin.Context) {
	var req dto.ModifyAttendanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, appErrors.ErrValidation.Message))
		return
	}
	if err := h.writer.ModifyAttendance(c.Request.Context(), req, actorFromContext(c)); err != nil {
		response.Error(c, err)
		return
	}
	response.Message(c, http.StatusOK, "Attendance modified successfully")
}

// SubjectAttendance godoc
// @Summary Attendance standing of every enrolled student in a subject
// @Tags Attendance
// @Produce json
// @Param subject query string true "Subject ID"
// @Param section query string true "Section"
// @Param branch query string true "Branch"
// @Success 200 {array} dto.SubjectAttendanceRow
// @Failure 400 {object} response.ErrorBody
// @Failure 404 {object} response.ErrorBody
// @Router /professor/attendance [get]
func (h *AttendanceHandler) SubjectAttendance(c *gin.Context) {
	rows, err := h.reader.SubjectAttendance(c.Request.Context(), bindAttendanceQuery(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, rows)
}

// ListRecords godoc
// @Summary Stored attendance records of enrolled students
// @Tags Attendance
// @Produce json
// @Param subject query string true "Subject ID"
// @Param section query string true "Section"
// @Param branch query string true "Branch"
// @Success 200 {array} dto.AttendanceRecordRow
// @Failure 404 {object} response.ErrorBody
// @Router /professor/all-attendance [get]
func (h *AttendanceHandler) ListRecords(c *gin.Context) {
	rows, err := h.reader.ListRecords(c.Request.Context(), bindAttendanceQuery(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, rows)
}

// Export godoc
// @Summary Download attendance records as CSV or PDF
// @Tags Attendance
// @Produce text/csv
// @Produce application/pdf
// @Param subject query string true "Subject ID"
// @Param section query string true "Section"
// @Param branch query string true "Branch"
// @Param format query string false "csv or pdf"
// @Success 200 {file} file
// @Failure 404 {object} response.ErrorBody
// @Router /professor/all-attendance/export [get]
func (h *AttendanceHandler) Export(c *gin.Context) {
	result, err := h.exporter.ExportRecords(c.Request.Context(), bindAttendanceQuery(c), c.Query("format"))
	if err != nil {
		response.Error(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, result.Filename))
	c.Data(http.StatusOK, result.ContentType, result.Payload)
}

// History godoc
// @Summary Amendment history of one attendance record
// @Tags Attendance
// @Produce json
// @Param id path string true "Record ID"
// @Success 200 {array} dto.AttendanceHistoryEntry
// @Failure 404 {object} response.ErrorBody
// @Router /professor/attendance/{id}/history [get]
func (h *AttendanceHandler) History(c *gin.Context) {
	entries, err := h.writer.AmendmentHistory(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, entries)
}

// StudentAttendance godoc
// @Summary Caller's attendance in every enrolled subject
// @Tags Attendance
// @Produce json
// @Success 200 {array} dto.StudentAttendanceRow
// @Failure 404 {object} response.ErrorBody
// @Router /student/attendance [get]
func (h *AttendanceHandler) StudentAttendance(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	rows, err := h.reader.StudentAttendance(c.Request.Context(), claims.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, rows)
}

func bindAttendanceQuery(c *gin.Context) dto.AttendanceQuery {
	return dto.AttendanceQuery{
		SubjectID: c.Query("subject"),
		Section:   c.Query("section"),
		Branch:    c.Query("branch"),
	}
}
