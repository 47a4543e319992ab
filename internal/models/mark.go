package models

import "time"

// Mark is one assessment score a professor recorded for a student in a subject.
type Mark struct {
	ID         string    `db:"id" json:"_id"`
	StudentID  string    `db:"student_id" json:"student"`
	SubjectID  string    `db:"subject_id" json:"subject"`
	Marks      float64   `db:"marks" json:"marks"`
	Type       string    `db:"type" json:"type"`
	UploadedBy string    `db:"uploaded_by" json:"uploadedBy"`
	CreatedAt  time.Time `db:"created_at" json:"createdAt"`
}
