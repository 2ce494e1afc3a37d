package model

import "time"

// Session is a time-bounded, revocable proof of an authenticated principal.
// At most one valid session exists per token; validity is re-checked against
// the store on every privileged request, never cached.
type Session struct {
	ID           int       `json:"id"`
	PrincipalID  int       `json:"principal_id"`
	Token        string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
	LastActivity time.Time `json:"last_activity"`
	Address      string    `json:"address"`
	Agent        string    `json:"agent"`
	Active       bool      `json:"active"`
}

// ClientMeta carries request metadata recorded on the session at login.
type ClientMeta struct {
	Address string
	Agent   string
}
