package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/studika/gradebook-backend/internal/model"
)

// PrincipalRepository handles principal data access.
type PrincipalRepository struct {
	pool *pgxpool.Pool
}

// NewPrincipalRepository creates a new PrincipalRepository.
func NewPrincipalRepository(pool *pgxpool.Pool) *PrincipalRepository {
	return &PrincipalRepository{pool: pool}
}

// GetByID retrieves a principal by ID.
func (r *PrincipalRepository) GetByID(ctx context.Context, id int) (*model.Principal, error) {
	p := &model.Principal{}
	err := r.pool.QueryRow(ctx,
		`SELECT id, username, password_hash, role, active, last_login, created_at, updated_at
		 FROM principals WHERE id = $1`, id,
	).Scan(&p.ID, &p.Username, &p.PasswordHash, &p.Role, &p.Active, &p.LastLogin, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return p, nil
}

// GetByUsername retrieves a principal by its unique username.
func (r *PrincipalRepository) GetByUsername(ctx context.Context, username string) (*model.Principal, error) {
	p := &model.Principal{}
	err := r.pool.QueryRow(ctx,
		`SELECT id, username, password_hash, role, active, last_login, created_at, updated_at
		 FROM principals WHERE username = $1`, username,
	).Scan(&p.ID, &p.Username, &p.PasswordHash, &p.Role, &p.Active, &p.LastLogin, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return p, nil
}

// Create inserts a new principal.
func (r *PrincipalRepository) Create(ctx context.Context, p *model.Principal) error {
	return r.pool.QueryRow(ctx,
		`INSERT INTO principals (username, password_hash, role, active)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id, created_at, updated_at`,
		p.Username, p.PasswordHash, p.Role, p.Active,
	).Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)
}

// List retrieves all principals ordered by username.
func (r *PrincipalRepository) List(ctx context.Context) ([]model.Principal, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, username, password_hash, role, active, last_login, created_at, updated_at
		 FROM principals ORDER BY username ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var principals []model.Principal
	for rows.Next() {
		var p model.Principal
		if err := rows.Scan(&p.ID, &p.Username, &p.PasswordHash, &p.Role, &p.Active, &p.LastLogin, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, err
		}
		principals = append(principals, p)
	}
	return principals, rows.Err()
}

// UpdatePassword replaces a principal's password hash.
func (r *PrincipalRepository) UpdatePassword(ctx context.Context, id int, passwordHash string) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE principals SET password_hash = $1, updated_at = NOW() WHERE id = $2`,
		passwordHash, id)
	return err
}

// SetActive toggles the soft-deactivation flag. Principals are never
// hard-deleted.
func (r *PrincipalRepository) SetActive(ctx context.Context, id int, active bool) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE principals SET active = $1, updated_at = NOW() WHERE id = $2`,
		active, id)
	return err
}

// TouchLastLogin stamps the principal's last successful login time.
func (r *PrincipalRepository) TouchLastLogin(ctx context.Context, id int) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE principals SET last_login = NOW() WHERE id = $1`, id)
	return err
}
