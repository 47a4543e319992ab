package models

import (
	"strings"
	"time"
)

// AttendanceStatus is the outcome recorded for one student in one session.
type AttendanceStatus string

const (
	AttendanceStatusPresent AttendanceStatus = "Present"
	AttendanceStatusAbsent  AttendanceStatus = "Absent"
)

// Valid returns true when the status is a supported value.
func (s AttendanceStatus) Valid() bool {
	switch s {
	case AttendanceStatusPresent, AttendanceStatusAbsent:
		return true
	default:
		return false
	}
}

// AttendanceRecord is one student's status for one subject/section session day.
// At most one exists per (StudentID, SubjectID, Section, Date).
type AttendanceRecord struct {
	ID        string           `db:"id" json:"id"`
	StudentID string           `db:"student_id" json:"student_id"`
	SubjectID string           `db:"subject_id" json:"subject_id"`
	Branch    string           `db:"branch" json:"branch"`
	Section   string           `db:"section" json:"section"`
	Date      time.Time        `db:"date" json:"date"`
	Status    AttendanceStatus `db:"status" json:"status"`
	CreatedAt time.Time        `db:"created_at" json:"created_at"`
	UpdatedAt time.Time        `db:"updated_at" json:"updated_at"`
}

// AttendanceListing is a record joined with the student it belongs to.
type AttendanceListing struct {
	ID         string           `db:"id"`
	RollNumber string           `db:"roll_number"`
	Name       string           `db:"name"`
	Date       time.Time        `db:"date"`
	Status     AttendanceStatus `db:"status"`
}

// AttendanceScope selects the records of one subject taught to one section.
// An empty Branch leaves branch unfiltered.
type AttendanceScope struct {
	SubjectID string
	Section   string
	Branch    string
}

// NormalizeCode trims and upper-cases a section or branch code.
func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// SessionDay truncates t to midnight in loc.
func SessionDay(t time.Time, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.Local
	}
	local := t.In(loc)
	return time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)
}

// Percentage returns round(attended/total*100), or 0 when no classes were held.
func Percentage(attended, total int) int {
	if total <= 0 {
		return 0
	}
	return int((float64(attended)*100)/float64(total) + 0.5)
}
