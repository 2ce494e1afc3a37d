package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/studika/gradebook-backend/internal/model"
)

// SessionRepository handles session data access.
type SessionRepository struct {
	pool *pgxpool.Pool
}

// NewSessionRepository creates a new SessionRepository.
func NewSessionRepository(pool *pgxpool.Pool) *SessionRepository {
	return &SessionRepository{pool: pool}
}

// Create inserts a new session for a principal.
func (r *SessionRepository) Create(ctx context.Context, s *model.Session) error {
	return r.pool.QueryRow(ctx,
		`INSERT INTO sessions (principal_id, token, address, agent, active)
		 VALUES ($1, $2, $3, $4, TRUE)
		 RETURNING id, created_at, last_activity`,
		s.PrincipalID, s.Token, s.Address, s.Agent,
	).Scan(&s.ID, &s.CreatedAt, &s.LastActivity)
}

// GetByToken retrieves a session by its unique token, regardless of its
// active flag. Validity is decided by the caller.
func (r *SessionRepository) GetByToken(ctx context.Context, token string) (*model.Session, error) {
	s := &model.Session{}
	err := r.pool.QueryRow(ctx,
		`SELECT id, principal_id, token, created_at, last_activity, address, agent, active
		 FROM sessions WHERE token = $1`, token,
	).Scan(&s.ID, &s.PrincipalID, &s.Token, &s.CreatedAt, &s.LastActivity, &s.Address, &s.Agent, &s.Active)
	if err != nil {
		return nil, err
	}
	return s, nil
}

// Deactivate revokes the session holding the given token. Idempotent:
// deactivating an already-inactive session is not an error.
func (r *SessionRepository) Deactivate(ctx context.Context, token string) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE sessions SET active = FALSE WHERE token = $1`, token)
	return err
}

// DeactivateByPrincipal revokes every session of a principal, used when an
// admin disables the account.
func (r *SessionRepository) DeactivateByPrincipal(ctx context.Context, principalID int) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE sessions SET active = FALSE WHERE principal_id = $1 AND active = TRUE`, principalID)
	return err
}

// TouchLastActivity stamps a session's last-activity time. Used as the
// single-row fallback when the batch worker path fails.
func (r *SessionRepository) TouchLastActivity(ctx context.Context, sessionID int, at time.Time) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE sessions SET last_activity = $1 WHERE id = $2 AND last_activity < $1`,
		at, sessionID)
	return err
}
