package websocket

import "github.com/studika/gradebook-backend/internal/model"

// ─── Actions (Client → Server) ──────────────────────────────────────

type Action string

const (
	ActionPing Action = "ping"
)

// RequestEnvelope is used to peek at the action before full parsing.
type RequestEnvelope struct {
	Action Action `json:"action"`
}

// ─── Events (Server → Client) ───────────────────────────────────────

type Event string

const (
	EventError Event = "error"
	EventAudit Event = "audit"
	EventPong  Event = "pong"
)

// AuditEventResponse streams one audit entry to a compliance subscriber.
type AuditEventResponse struct {
	Event Event            `json:"event"`
	Entry model.AuditEntry `json:"entry"`
}

type ErrorResponse struct {
	Event Event  `json:"event"`
	Error string `json:"error"`
}

type PongResponse struct {
	Event Event `json:"event"`
}
