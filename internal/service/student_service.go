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

// StudentService handles student administration.
type StudentService struct {
	repo  *repository.StudentRepository
	audit *AuditService
	log   zerolog.Logger
}

// NewStudentService creates a new StudentService.
func NewStudentService(repo *repository.StudentRepository, audit *AuditService, log zerolog.Logger) *StudentService {
	return &StudentService{
		repo:  repo,
		audit: audit,
		log:   log.With().Str("component", "student").Logger(),
	}
}

func (s *StudentService) GetAll(ctx context.Context) ([]model.Student, error) {
	return s.repo.GetAll(ctx)
}

func (s *StudentService) GetByID(ctx context.Context, id int) (*model.Student, error) {
	student, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrStudentNotFound
		}
		return nil, fmt.Errorf("get student: %w", err)
	}
	return student, nil
}

func (s *StudentService) Create(ctx context.Context, actor *model.Principal, student *model.Student, address string) error {
	if err := s.repo.Create(ctx, student); err != nil {
		return fmt.Errorf("create student: %w", err)
	}
	s.audit.Record(ctx, actor, model.ActionStudentCreate, "students", strconv.Itoa(student.ID), nil, student, address)
	return nil
}

func (s *StudentService) Update(ctx context.Context, actor *model.Principal, student *model.Student, address string) error {
	before, err := s.repo.GetByID(ctx, student.ID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrStudentNotFound
		}
		return fmt.Errorf("get student: %w", err)
	}
	if err := s.repo.Update(ctx, student); err != nil {
		return fmt.Errorf("update student: %w", err)
	}
	s.audit.Record(ctx, actor, model.ActionStudentUpdate, "students", strconv.Itoa(student.ID), before, student, address)
	return nil
}

func (s *StudentService) Delete(ctx context.Context, actor *model.Principal, id int, address string) error {
	before, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrStudentNotFound
		}
		return fmt.Errorf("get student: %w", err)
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete student: %w", err)
	}
	s.audit.Record(ctx, actor, model.ActionStudentDelete, "students", strconv.Itoa(id), before, nil, address)
	return nil
}
