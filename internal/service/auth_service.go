package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/studika/gradebook-backend/internal/config"
	"github.com/studika/gradebook-backend/internal/model"
	"golang.org/x/crypto/bcrypt"
)

// Common auth errors.
var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrAccountInactive    = errors.New("account is inactive")
	ErrNoSession          = errors.New("no session for token")
	ErrSessionExpired     = errors.New("session expired")
	ErrSessionRevoked     = errors.New("session revoked")
)

// nowFunc is swapped in tests to control session expiry.
var nowFunc = time.Now

// PrincipalStore is the principal persistence needed by AuthService.
type PrincipalStore interface {
	GetByUsername(ctx context.Context, username string) (*model.Principal, error)
	GetByID(ctx context.Context, id int) (*model.Principal, error)
	TouchLastLogin(ctx context.Context, id int) error
}

// SessionStore is the session persistence needed by AuthService.
type SessionStore interface {
	Create(ctx context.Context, s *model.Session) error
	GetByToken(ctx context.Context, token string) (*model.Session, error)
	Deactivate(ctx context.Context, token string) error
	DeactivateByPrincipal(ctx context.Context, principalID int) error
	TouchLastActivity(ctx context.Context, sessionID int, at time.Time) error
}

// AuthService is the session authority: it issues, validates, and revokes
// opaque session tokens. Validity is re-read from the store on every call,
// never cached.
type AuthService struct {
	cfg        *config.Config
	principals PrincipalStore
	sessions   SessionStore
	audit      *AuditService
	rdb        *redis.Client
	log        zerolog.Logger
}

// NewAuthService creates a new AuthService. rdb may be nil; last-activity
// touches then bypass the batch queue and hit the store directly.
func NewAuthService(
	cfg *config.Config,
	principals PrincipalStore,
	sessions SessionStore,
	audit *AuditService,
	rdb *redis.Client,
	log zerolog.Logger,
) *AuthService {
	return &AuthService{
		cfg:        cfg,
		principals: principals,
		sessions:   sessions,
		audit:      audit,
		rdb:        rdb,
		log:        log.With().Str("component", "auth").Logger(),
	}
}

// HashPassword hashes a password with the configured bcrypt cost.
func (s *AuthService) HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cfg.BcryptCost)
	return string(hash), err
}

// CheckPassword compares a plaintext password against a bcrypt hash.
func (s *AuthService) CheckPassword(hash, password string) error {
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)); err != nil {
		return ErrInvalidCredentials
	}
	return nil
}

// Login verifies credentials and issues a new session with a
// cryptographically random token. Existing sessions of the principal stay
// valid; concurrent sessions are allowed. Returns the session and the
// authenticated principal.
func (s *AuthService) Login(ctx context.Context, username, password string, meta model.ClientMeta) (*model.Session, *model.Principal, error) {
	p, err := s.principals.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil, ErrInvalidCredentials
		}
		return nil, nil, fmt.Errorf("get principal: %w", err)
	}

	if err := s.CheckPassword(p.PasswordHash, password); err != nil {
		return nil, nil, ErrInvalidCredentials
	}

	if !p.Active {
		return nil, nil, ErrAccountInactive
	}

	token, err := newSessionToken()
	if err != nil {
		return nil, nil, err
	}

	session := &model.Session{
		PrincipalID: p.ID,
		Token:       token,
		Address:     meta.Address,
		Agent:       meta.Agent,
		Active:      true,
	}
	if err := s.sessions.Create(ctx, session); err != nil {
		return nil, nil, fmt.Errorf("create session: %w", err)
	}

	if err := s.principals.TouchLastLogin(ctx, p.ID); err != nil {
		s.log.Debug().Err(err).Int("principal_id", p.ID).Msg("Touch last_login failed")
	}

	s.audit.Record(ctx, p, model.ActionLogin, "sessions", strconv.Itoa(session.ID), nil, nil, meta.Address)

	return session, p, nil
}

// Validate resolves a token to its principal. Expiry is detected lazily:
// a session past its idle or absolute timeout is deactivated here, and both
// the expired and revoked states are terminal. On success the session's
// last-activity time is touched.
func (s *AuthService) Validate(ctx context.Context, token string) (*model.Principal, error) {
	if token == "" {
		return nil, ErrNoSession
	}

	session, err := s.sessions.GetByToken(ctx, token)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNoSession
		}
		return nil, fmt.Errorf("get session: %w", err)
	}

	if !session.Active {
		return nil, ErrSessionRevoked
	}

	now := nowFunc()
	if now.Sub(session.LastActivity) > s.cfg.SessionIdleTimeout ||
		now.Sub(session.CreatedAt) > s.cfg.SessionMaxLifetime {
		if err := s.sessions.Deactivate(ctx, token); err != nil {
			s.log.Warn().Err(err).Int("session_id", session.ID).Msg("Deactivate expired session failed")
		}
		return nil, ErrSessionExpired
	}

	p, err := s.principals.GetByID(ctx, session.PrincipalID)
	if err != nil {
		return nil, fmt.Errorf("get principal: %w", err)
	}

	// An account disabled mid-session forces the session out too.
	if !p.Active {
		if err := s.sessions.Deactivate(ctx, token); err != nil {
			s.log.Warn().Err(err).Int("session_id", session.ID).Msg("Deactivate session of inactive principal failed")
		}
		return nil, ErrSessionRevoked
	}

	s.touchSession(ctx, session.ID, now)

	return p, nil
}

// Logout revokes the session holding the given token. Idempotent: an
// already-inactive or unknown token is not an error, and the logout is
// audited only on the transition from active to revoked.
func (s *AuthService) Logout(ctx context.Context, token, address string) error {
	session, err := s.sessions.GetByToken(ctx, token)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil
		}
		return fmt.Errorf("get session: %w", err)
	}

	wasActive := session.Active
	if err := s.sessions.Deactivate(ctx, token); err != nil {
		return fmt.Errorf("deactivate session: %w", err)
	}

	if wasActive {
		if actor, err := s.principals.GetByID(ctx, session.PrincipalID); err == nil {
			s.audit.Record(ctx, actor, model.ActionLogout, "sessions", strconv.Itoa(session.ID), nil, nil, address)
		}
	}

	return nil
}

// RevokePrincipalSessions forces every session of a principal inactive.
// Used when an admin deactivates an account.
func (s *AuthService) RevokePrincipalSessions(ctx context.Context, principalID int) error {
	return s.sessions.DeactivateByPrincipal(ctx, principalID)
}

// touchSession records session activity. The batch queue is preferred;
// lost touches are acceptable, so every path here is best-effort.
func (s *AuthService) touchSession(ctx context.Context, sessionID int, at time.Time) {
	if s.rdb != nil {
		payload, _ := json.Marshal(map[string]interface{}{
			"session_id": sessionID,
			"at":         at.UTC().Format(time.RFC3339Nano),
		})
		if err := s.rdb.RPush(ctx, config.WorkerKey.TouchSessionsQueue, payload).Err(); err == nil {
			return
		}
	}
	if err := s.sessions.TouchLastActivity(ctx, sessionID, at); err != nil {
		s.log.Debug().Err(err).Int("session_id", sessionID).Msg("Touch last_activity failed")
	}
}

// newSessionToken returns an opaque unguessable token: 32 random bytes,
// hex-encoded.
func newSessionToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate token: %w", err)
	}
	return hex.EncodeToString(buf), nil
}
