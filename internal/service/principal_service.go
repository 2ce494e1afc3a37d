package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
	"github.com/studika/gradebook-backend/internal/model"
	"github.com/studika/gradebook-backend/internal/repository"
)

// Principal management errors.
var (
	ErrUsernameTaken     = errors.New("username already taken")
	ErrPrincipalNotFound = errors.New("principal not found")
)

// PrincipalService manages staff accounts.
type PrincipalService struct {
	repo  *repository.PrincipalRepository
	auth  *AuthService
	audit *AuditService
	log   zerolog.Logger
}

// NewPrincipalService creates a new PrincipalService.
func NewPrincipalService(repo *repository.PrincipalRepository, auth *AuthService, audit *AuditService, log zerolog.Logger) *PrincipalService {
	return &PrincipalService{
		repo:  repo,
		auth:  auth,
		audit: audit,
		log:   log.With().Str("component", "principal").Logger(),
	}
}

// Create registers a new staff account with a bcrypt-hashed password.
func (s *PrincipalService) Create(ctx context.Context, actor *model.Principal, username, password string, role model.Role, address string) (*model.Principal, error) {
	if !role.Valid() {
		return nil, fmt.Errorf("unknown role %q", role)
	}

	if _, err := s.repo.GetByUsername(ctx, username); err == nil {
		return nil, ErrUsernameTaken
	} else if !errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("check username: %w", err)
	}

	hash, err := s.auth.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	p := &model.Principal{
		Username:     username,
		PasswordHash: hash,
		Role:         role,
		Active:       true,
	}
	if err := s.repo.Create(ctx, p); err != nil {
		return nil, fmt.Errorf("create principal: %w", err)
	}

	s.audit.Record(ctx, actor, model.ActionPrincipalCreate, "principals", strconv.Itoa(p.ID), nil, p, address)
	return p, nil
}

func (s *PrincipalService) List(ctx context.Context) ([]model.Principal, error) {
	return s.repo.List(ctx)
}

// Deactivate disables an account and revokes all of its live sessions, so
// the lockout is immediate rather than waiting for lazy session checks.
func (s *PrincipalService) Deactivate(ctx context.Context, actor *model.Principal, id int, address string) error {
	before, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrPrincipalNotFound
		}
		return fmt.Errorf("get principal: %w", err)
	}

	if err := s.repo.SetActive(ctx, id, false); err != nil {
		return fmt.Errorf("deactivate principal: %w", err)
	}
	if err := s.auth.RevokePrincipalSessions(ctx, id); err != nil {
		s.log.Error().Err(err).Int("principal_id", id).Msg("Session revocation after deactivation failed")
	}

	after := *before
	after.Active = false
	s.audit.Record(ctx, actor, model.ActionPrincipalDeactivate, "principals", strconv.Itoa(id), before, &after, address)
	return nil
}

// ResetPassword replaces an account's password hash. Existing sessions stay
// valid; only new logins need the new password.
func (s *PrincipalService) ResetPassword(ctx context.Context, actor *model.Principal, id int, password, address string) error {
	if _, err := s.repo.GetByID(ctx, id); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrPrincipalNotFound
		}
		return fmt.Errorf("get principal: %w", err)
	}

	hash, err := s.auth.HashPassword(password)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	if err := s.repo.UpdatePassword(ctx, id, hash); err != nil {
		return fmt.Errorf("update password: %w", err)
	}

	s.audit.Record(ctx, actor, model.ActionPrincipalResetPasswd, "principals", strconv.Itoa(id), nil, nil, address)
	return nil
}
