package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/studika/gradebook-backend/internal/model"
)

// AssignmentRepository handles teacher-to-subject assignment data access.
type AssignmentRepository struct {
	pool *pgxpool.Pool
}

// NewAssignmentRepository creates a new AssignmentRepository.
func NewAssignmentRepository(pool *pgxpool.Pool) *AssignmentRepository {
	return &AssignmentRepository{pool: pool}
}

// Exists reports whether a teacher is assigned to a subject. This row is
// the authoritative scope check for teachers.
func (r *AssignmentRepository) Exists(ctx context.Context, teacherID, subjectID int) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM teacher_assignments WHERE teacher_id = $1 AND subject_id = $2)`,
		teacherID, subjectID).Scan(&exists)
	return exists, err
}

// Create inserts an assignment. A duplicate (teacher, subject) pair yields
// pgx.ErrNoRows from the empty RETURNING set.
func (r *AssignmentRepository) Create(ctx context.Context, a *model.TeacherAssignment) error {
	return r.pool.QueryRow(ctx,
		`INSERT INTO teacher_assignments (teacher_id, subject_id)
		 VALUES ($1, $2)
		 ON CONFLICT (teacher_id, subject_id) DO NOTHING
		 RETURNING id, created_at`,
		a.TeacherID, a.SubjectID,
	).Scan(&a.ID, &a.CreatedAt)
}

// GetByID retrieves an assignment by ID.
func (r *AssignmentRepository) GetByID(ctx context.Context, id int) (*model.TeacherAssignment, error) {
	a := &model.TeacherAssignment{}
	err := r.pool.QueryRow(ctx,
		`SELECT id, teacher_id, subject_id, created_at FROM teacher_assignments WHERE id = $1`, id,
	).Scan(&a.ID, &a.TeacherID, &a.SubjectID, &a.CreatedAt)
	if err != nil {
		return nil, err
	}
	return a, nil
}

// Delete removes an assignment by ID.
func (r *AssignmentRepository) Delete(ctx context.Context, id int) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM teacher_assignments WHERE id = $1`, id)
	return err
}

// ListAll retrieves all assignments with teacher and subject names.
func (r *AssignmentRepository) ListAll(ctx context.Context) ([]model.TeacherAssignmentDetail, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT ta.id, ta.teacher_id, ta.subject_id, ta.created_at, p.username, s.name, s.year
		 FROM teacher_assignments ta
		 JOIN principals p ON ta.teacher_id = p.id
		 JOIN subjects s ON ta.subject_id = s.id
		 ORDER BY p.username ASC, s.name ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var details []model.TeacherAssignmentDetail
	for rows.Next() {
		var d model.TeacherAssignmentDetail
		if err := rows.Scan(&d.ID, &d.TeacherID, &d.SubjectID, &d.CreatedAt, &d.TeacherName, &d.SubjectName, &d.SubjectYear); err != nil {
			return nil, err
		}
		details = append(details, d)
	}
	return details, rows.Err()
}

// ListByTeacher retrieves a teacher's assignments with subject names.
func (r *AssignmentRepository) ListByTeacher(ctx context.Context, teacherID int) ([]model.TeacherAssignmentDetail, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT ta.id, ta.teacher_id, ta.subject_id, ta.created_at, p.username, s.name, s.year
		 FROM teacher_assignments ta
		 JOIN principals p ON ta.teacher_id = p.id
		 JOIN subjects s ON ta.subject_id = s.id
		 WHERE ta.teacher_id = $1
		 ORDER BY s.year ASC, s.name ASC`, teacherID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var details []model.TeacherAssignmentDetail
	for rows.Next() {
		var d model.TeacherAssignmentDetail
		if err := rows.Scan(&d.ID, &d.TeacherID, &d.SubjectID, &d.CreatedAt, &d.TeacherName, &d.SubjectName, &d.SubjectYear); err != nil {
			return nil, err
		}
		details = append(details, d)
	}
	return details, rows.Err()
}
