package models

import "time"

// Student is an enrolled learner belonging to one branch and section.
type Student struct {
	ID           string    `db:"id" json:"id"`
	RollNumber   string    `db:"roll_number" json:"rollNumber"`
	Name         string    `db:"name" json:"name"`
	Email        string    `db:"email" json:"email"`
	PasswordHash string    `db:"password_hash" json:"-"`
	Branch       string    `db:"branch" json:"branch"`
	Section      string    `db:"section" json:"section"`
	CreatedAt    time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt    time.Time `db:"updated_at" json:"updatedAt"`
}

// StudentSummary is the slice of a student shown in attendance views.
type StudentSummary struct {
	ID         string `db:"id" json:"id"`
	Name       string `db:"name" json:"name"`
	RollNumber string `db:"roll_number" json:"rollNumber"`
}
