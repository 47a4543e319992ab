package models

import "time"

// Subject is a course offered to one branch and taught by one professor.
type Subject struct {
	ID          string    `db:"id" json:"_id"`
	Name        string    `db:"name" json:"name"`
	Code        string    `db:"code" json:"code"`
	Branch      string    `db:"branch" json:"branch"`
	ProfessorID string    `db:"professor_id" json:"professor"`
	CreatedAt   time.Time `db:"created_at" json:"createdAt"`
}
