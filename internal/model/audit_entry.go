package model

import (
	"encoding/json"
	"time"
)

// Audit action labels. Every privileged mutation records exactly one.
const (
	ActionLogin                = "login"
	ActionLogout               = "logout"
	ActionMarkRecord           = "mark.record"
	ActionPermissionDenied     = "permission.denied"
	ActionSubjectCreate        = "subject.create"
	ActionSubjectUpdate        = "subject.update"
	ActionSubjectDelete        = "subject.delete"
	ActionStudentCreate        = "student.create"
	ActionStudentUpdate        = "student.update"
	ActionStudentDelete        = "student.delete"
	ActionAssignmentCreate     = "assignment.create"
	ActionAssignmentDelete     = "assignment.delete"
	ActionPrincipalCreate      = "principal.create"
	ActionPrincipalDeactivate  = "principal.deactivate"
	ActionPrincipalResetPasswd = "principal.reset_password"
)

// AuditEntry is an immutable record of a state-changing action. Entries are
// append-only; they are never updated or deleted by this service.
type AuditEntry struct {
	ID        int64           `json:"id"`
	ActorID   int             `json:"actor_id"`
	ActorRole Role            `json:"actor_role"`
	Action    string          `json:"action"`
	TableName string          `json:"table_name"`
	RecordID  string          `json:"record_id"`
	Before    json.RawMessage `json:"before,omitempty"`
	After     json.RawMessage `json:"after,omitempty"`
	Address   string          `json:"address"`
	CreatedAt time.Time       `json:"created_at"`
}

// AuditFilter narrows an audit listing.
type AuditFilter struct {
	ActorID   int
	Action    string
	TableName string
}
