package models

import (
	"time"

	"github.com/lib/pq"
)

// Professor owns subjects and takes attendance for the sections they teach.
type Professor struct {
	ID           string         `db:"id" json:"id"`
	Name         string         `db:"name" json:"name"`
	Email        string         `db:"email" json:"email"`
	PasswordHash string         `db:"password_hash" json:"-"`
	Branches     pq.StringArray `db:"branches" json:"branches"`
	Sections     pq.StringArray `db:"sections" json:"sections"`
	CreatedAt    time.Time      `db:"created_at" json:"createdAt"`
	UpdatedAt    time.Time      `db:"updated_at" json:"updatedAt"`
}
