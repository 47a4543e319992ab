package dto

import "time"

// AttendanceEntry is one student's status inside a submitted roster.
type AttendanceEntry struct {
	StudentID string `json:"studentId" validate:"required"`
	Status    string `json:"status" validate:"required,attendance_status"`
}

// MarkAttendanceRequest captures POST /professor/mark-attendance payload.
type MarkAttendanceRequest struct {
	SubjectID      string            `json:"subjectId" validate:"required"`
	Section        string            `json:"section" validate:"required"`
	Branch         string            `json:"branch" validate:"required"`
	AttendanceData []AttendanceEntry `json:"attendanceData" validate:"required,min=1,dive"`
}

// ModifyAttendanceRequest captures PUT /professor/modify-attendance payload.
type ModifyAttendanceRequest struct {
	RecordID string `json:"recordId" validate:"required"`
	Status   string `json:"status" validate:"required,attendance_status"`
}

// AttendanceQuery carries the subject/section/branch query string of the professor views.
type AttendanceQuery struct {
	SubjectID string `form:"subject" validate:"required"`
	Section   string `form:"section" validate:"required"`
	Branch    string `form:"branch" validate:"required"`
}

// SubjectAttendanceRow is one enrolled student's standing in a subject.
type SubjectAttendanceRow struct {
	StudentID            string `json:"studentId"`
	Name                 string `json:"name"`
	RollNumber           string `json:"rollNumber"`
	Attendance           string `json:"attendance"`
	ClassesAttended      int    `json:"classesAttended"`
	TotalClasses         int    `json:"totalClasses"`
	AttendancePercentage int    `json:"attendancePercentage"`
}

// StudentAttendanceRow is the caller's standing in one enrolled subject.
type StudentAttendanceRow struct {
	SubjectName          string `json:"subjectName"`
	SubjectCode          string `json:"subjectCode"`
	TotalClasses         int    `json:"totalClasses"`
	AttendedClasses      int    `json:"attendedClasses"`
	AttendancePercentage int    `json:"attendancePercentage"`
}

// AttendanceRecordRow is a stored record joined with its student.
type AttendanceRecordRow struct {
	ID         string    `json:"_id"`
	RollNumber string    `json:"rollNumber"`
	Name       string    `json:"name"`
	Date       time.Time `json:"date"`
	Status     string    `json:"status"`
}

// AttendanceHistoryEntry is one amendment of a record.
type AttendanceHistoryEntry struct {
	ID        string    `json:"id"`
	ActorID   string    `json:"actorId,omitempty"`
	Action    string    `json:"action"`
	OldStatus string    `json:"oldStatus,omitempty"`
	NewStatus string    `json:"newStatus"`
	CreatedAt time.Time `json:"createdAt"`
}
