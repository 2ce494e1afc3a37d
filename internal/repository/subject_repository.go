package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/studika/gradebook-backend/internal/model"
)

type SubjectRepository struct {
	pool *pgxpool.Pool
}

func NewSubjectRepository(pool *pgxpool.Pool) *SubjectRepository {
	return &SubjectRepository{pool: pool}
}

func (r *SubjectRepository) Create(ctx context.Context, s *model.Subject) error {
	return r.pool.QueryRow(ctx,
		`INSERT INTO subjects (name, year, credit_weight)
		 VALUES ($1, $2, $3)
		 RETURNING id, created_at, updated_at`,
		s.Name, s.Year, s.CreditWeight).Scan(&s.ID, &s.CreatedAt, &s.UpdatedAt)
}

func (r *SubjectRepository) GetByID(ctx context.Context, id int) (*model.Subject, error) {
	s := &model.Subject{}
	err := r.pool.QueryRow(ctx,
		`SELECT id, name, year, credit_weight, created_at, updated_at
		 FROM subjects WHERE id = $1`, id,
	).Scan(&s.ID, &s.Name, &s.Year, &s.CreditWeight, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return s, nil
}

func (r *SubjectRepository) GetAll(ctx context.Context) ([]model.Subject, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, name, year, credit_weight, created_at, updated_at
		 FROM subjects ORDER BY year ASC, name ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var subjects []model.Subject
	for rows.Next() {
		var s model.Subject
		if err := rows.Scan(&s.ID, &s.Name, &s.Year, &s.CreditWeight, &s.CreatedAt, &s.UpdatedAt); err != nil {
			return nil, err
		}
		subjects = append(subjects, s)
	}
	return subjects, rows.Err()
}

func (r *SubjectRepository) Update(ctx context.Context, s *model.Subject) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE subjects SET name = $1, year = $2, credit_weight = $3, updated_at = NOW()
		 WHERE id = $4`,
		s.Name, s.Year, s.CreditWeight, s.ID)
	return err
}

func (r *SubjectRepository) Delete(ctx context.Context, id int) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM subjects WHERE id = $1`, id)
	return err
}

// YearWeights returns the sum of credit weights per program year. The sum
// defines the maximum attainable weighted-grade total of that year.
func (r *SubjectRepository) YearWeights(ctx context.Context) ([]model.YearWeight, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT year, COALESCE(SUM(credit_weight), 0)
		 FROM subjects GROUP BY year ORDER BY year ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var weights []model.YearWeight
	for rows.Next() {
		var w model.YearWeight
		if err := rows.Scan(&w.Year, &w.TotalWeight); err != nil {
			return nil, err
		}
		weights = append(weights, w)
	}
	return weights, rows.Err()
}
