package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/studika/gradebook-backend/internal/model"
)

// MarkRepository handles mark data access. The (student_id, subject_id)
// uniqueness is enforced by a DB constraint, never by check-then-write.
type MarkRepository struct {
	pool *pgxpool.Pool
}

// NewMarkRepository creates a new MarkRepository.
func NewMarkRepository(pool *pgxpool.Pool) *MarkRepository {
	return &MarkRepository{pool: pool}
}

// Upsert inserts the mark or, if the (student, subject) pair already has a
// row, updates it in place preserving its id. Safe under concurrent
// first-inserts for the same pair.
func (r *MarkRepository) Upsert(ctx context.Context, m *model.Mark) error {
	return r.pool.QueryRow(ctx,
		`INSERT INTO marks (student_id, subject_id, exam, midterm, quizzes, daily, raw_total, weighted_grade)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		 ON CONFLICT (student_id, subject_id) DO UPDATE
		 SET exam = EXCLUDED.exam,
		     midterm = EXCLUDED.midterm,
		     quizzes = EXCLUDED.quizzes,
		     daily = EXCLUDED.daily,
		     raw_total = EXCLUDED.raw_total,
		     weighted_grade = EXCLUDED.weighted_grade,
		     updated_at = NOW()
		 RETURNING id, created_at, updated_at`,
		m.StudentID, m.SubjectID, m.Exam, m.Midterm, m.Quizzes, m.Daily, m.RawTotal, m.WeightedGrade,
	).Scan(&m.ID, &m.CreatedAt, &m.UpdatedAt)
}

// GetByStudentSubject retrieves the mark for a (student, subject) pair.
func (r *MarkRepository) GetByStudentSubject(ctx context.Context, studentID, subjectID int) (*model.Mark, error) {
	m := &model.Mark{}
	err := r.pool.QueryRow(ctx,
		`SELECT id, student_id, subject_id, exam, midterm, quizzes, daily, raw_total, weighted_grade, created_at, updated_at
		 FROM marks WHERE student_id = $1 AND subject_id = $2`,
		studentID, subjectID,
	).Scan(&m.ID, &m.StudentID, &m.SubjectID, &m.Exam, &m.Midterm, &m.Quizzes, &m.Daily, &m.RawTotal, &m.WeightedGrade, &m.CreatedAt, &m.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return m, nil
}

// Exists reports whether a mark row links the student to the subject.
// Absence is indistinguishable from "not enrolled" by design.
func (r *MarkRepository) Exists(ctx context.Context, studentID, subjectID int) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM marks WHERE student_id = $1 AND subject_id = $2)`,
		studentID, subjectID).Scan(&exists)
	return exists, err
}

// ListByStudent retrieves all of a student's marks with subject details.
func (r *MarkRepository) ListByStudent(ctx context.Context, studentID int) ([]model.MarkWithSubject, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT m.id, m.student_id, m.subject_id, m.exam, m.midterm, m.quizzes, m.daily,
		        m.raw_total, m.weighted_grade, m.created_at, m.updated_at,
		        s.name, s.year, s.credit_weight
		 FROM marks m
		 JOIN subjects s ON m.subject_id = s.id
		 WHERE m.student_id = $1
		 ORDER BY s.year ASC, s.name ASC`, studentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var marks []model.MarkWithSubject
	for rows.Next() {
		var m model.MarkWithSubject
		if err := rows.Scan(&m.ID, &m.StudentID, &m.SubjectID, &m.Exam, &m.Midterm, &m.Quizzes, &m.Daily,
			&m.RawTotal, &m.WeightedGrade, &m.CreatedAt, &m.UpdatedAt,
			&m.SubjectName, &m.Year, &m.CreditWeight); err != nil {
			return nil, err
		}
		marks = append(marks, m)
	}
	return marks, rows.Err()
}

// SumWeightedByYear sums a student's weighted grades across all subjects of
// one program year. Subjects without a mark contribute 0.
func (r *MarkRepository) SumWeightedByYear(ctx context.Context, studentID, year int) (float64, error) {
	var total float64
	err := r.pool.QueryRow(ctx,
		`SELECT COALESCE(SUM(m.weighted_grade), 0)
		 FROM marks m
		 JOIN subjects s ON m.subject_id = s.id
		 WHERE m.student_id = $1 AND s.year = $2`,
		studentID, year).Scan(&total)
	return total, err
}
