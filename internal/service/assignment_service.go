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

// Assignment errors.
var (
	ErrTeacherNotFound     = errors.New("teacher not found")
	ErrNotATeacher         = errors.New("principal is not a teacher")
	ErrDuplicateAssignment = errors.New("teacher is already assigned to subject")
	ErrAssignmentNotFound  = errors.New("assignment not found")
)

// AssignmentService manages teacher-to-subject assignments, the rows the
// permission checks read.
type AssignmentService struct {
	repo       *repository.AssignmentRepository
	principals *repository.PrincipalRepository
	subjects   *repository.SubjectRepository
	audit      *AuditService
	log        zerolog.Logger
}

// NewAssignmentService creates a new AssignmentService.
func NewAssignmentService(
	repo *repository.AssignmentRepository,
	principals *repository.PrincipalRepository,
	subjects *repository.SubjectRepository,
	audit *AuditService,
	log zerolog.Logger,
) *AssignmentService {
	return &AssignmentService{
		repo:       repo,
		principals: principals,
		subjects:   subjects,
		audit:      audit,
		log:        log.With().Str("component", "assignment").Logger(),
	}
}

// Assign grants a teacher edit scope over a subject. The target principal
// must hold the teacher role; admins are never assigned since their access
// is unconditional.
func (s *AssignmentService) Assign(ctx context.Context, actor *model.Principal, teacherID, subjectID int, address string) (*model.TeacherAssignment, error) {
	teacher, err := s.principals.GetByID(ctx, teacherID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrTeacherNotFound
		}
		return nil, fmt.Errorf("get teacher: %w", err)
	}
	if teacher.Role != model.RoleTeacher {
		return nil, ErrNotATeacher
	}

	if _, err := s.subjects.GetByID(ctx, subjectID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrSubjectNotFound
		}
		return nil, fmt.Errorf("get subject: %w", err)
	}

	assignment := &model.TeacherAssignment{TeacherID: teacherID, SubjectID: subjectID}
	if err := s.repo.Create(ctx, assignment); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrDuplicateAssignment
		}
		return nil, fmt.Errorf("create assignment: %w", err)
	}

	s.audit.Record(ctx, actor, model.ActionAssignmentCreate, "teacher_assignments", strconv.Itoa(assignment.ID), nil, assignment, address)
	return assignment, nil
}

// Unassign revokes a teacher's edit scope. Takes effect on the teacher's
// next permission check.
func (s *AssignmentService) Unassign(ctx context.Context, actor *model.Principal, id int, address string) error {
	before, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrAssignmentNotFound
		}
		return fmt.Errorf("get assignment: %w", err)
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete assignment: %w", err)
	}
	s.audit.Record(ctx, actor, model.ActionAssignmentDelete, "teacher_assignments", strconv.Itoa(id), before, nil, address)
	return nil
}

func (s *AssignmentService) ListAll(ctx context.Context) ([]model.TeacherAssignmentDetail, error) {
	return s.repo.ListAll(ctx)
}

func (s *AssignmentService) ListByTeacher(ctx context.Context, teacherID int) ([]model.TeacherAssignmentDetail, error) {
	return s.repo.ListByTeacher(ctx, teacherID)
}
