package service

import (
	"context"

	"github.com/studika/gradebook-backend/internal/model"
)

// AssignmentChecker answers whether a teacher-to-subject assignment exists.
type AssignmentChecker interface {
	Exists(ctx context.Context, teacherID, subjectID int) (bool, error)
}

// EnrollmentChecker answers whether a mark row links a student to a
// subject. A student with no mark row is treated as not enrolled.
type EnrollmentChecker interface {
	Exists(ctx context.Context, studentID, subjectID int) (bool, error)
}

// PermissionService decides what an authenticated principal may mutate.
// Every check is a pure read against current relational state; results are
// never cached, so two calls may observe different answers if assignments
// change between them.
type PermissionService struct {
	assignments AssignmentChecker
	marks       EnrollmentChecker
}

// NewPermissionService creates a new PermissionService.
func NewPermissionService(assignments AssignmentChecker, marks EnrollmentChecker) *PermissionService {
	return &PermissionService{assignments: assignments, marks: marks}
}

// CanEditSubject reports whether the principal may edit marks of a subject.
// Admins pass unconditionally; teachers need an assignment row for the
// subject. Unknown roles are denied.
func (s *PermissionService) CanEditSubject(ctx context.Context, p *model.Principal, subjectID int) (bool, error) {
	switch p.Role {
	case model.RoleAdmin:
		return true, nil
	case model.RoleTeacher:
		return s.assignments.Exists(ctx, p.ID, subjectID)
	default:
		return false, nil
	}
}

// CanEditStudentMark reports whether the principal may edit a student's
// mark for a subject. Admins pass unconditionally; teachers additionally
// need the student enrolled in the subject, which is modeled as an
// existing mark row.
func (s *PermissionService) CanEditStudentMark(ctx context.Context, p *model.Principal, studentID, subjectID int) (bool, error) {
	switch p.Role {
	case model.RoleAdmin:
		return true, nil
	case model.RoleTeacher:
		ok, err := s.assignments.Exists(ctx, p.ID, subjectID)
		if err != nil || !ok {
			return false, err
		}
		return s.marks.Exists(ctx, studentID, subjectID)
	default:
		return false, nil
	}
}
