package models

import (
	"encoding/json"
	"time"
)

// Audit actions recorded by the API.
const (
	AuditActionLogin             = "LOGIN"
	AuditActionAttendanceMark    = "ATTENDANCE_MARK"
	AuditActionAttendanceAmend   = "ATTENDANCE_AMEND"
	AuditResourceAuth            = "auth"
	AuditResourceAttendance      = "attendance"
	AuditResourceAttendanceBatch = "attendance_roster"
)

// AuditLog represents an audit trail record.
type AuditLog struct {
	ID         string          `db:"id" json:"id"`
	ActorID    *string         `db:"actor_id" json:"actorId,omitempty"`
	ActorRole  *string         `db:"actor_role" json:"actorRole,omitempty"`
	Action     string          `db:"action" json:"action"`
	Resource   string          `db:"resource" json:"resource"`
	ResourceID *string         `db:"resource_id" json:"resourceId,omitempty"`
	OldValues  json.RawMessage `db:"old_values" json:"oldValues,omitempty"`
	NewValues  json.RawMessage `db:"new_values" json:"newValues,omitempty"`
	IPAddress  string          `db:"ip_address" json:"ipAddress"`
	UserAgent  string          `db:"user_agent" json:"userAgent"`
	CreatedAt  time.Time       `db:"created_at" json:"createdAt"`
}

// Actor identifies who performed an audited action.
type Actor struct {
	ID        string
	Role      UserRole
	IP        string
	UserAgent string
}
