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

// SubjectService handles subject administration.
type SubjectService struct {
	repo  *repository.SubjectRepository
	audit *AuditService
	log   zerolog.Logger
}

// NewSubjectService creates a new SubjectService.
func NewSubjectService(repo *repository.SubjectRepository, audit *AuditService, log zerolog.Logger) *SubjectService {
	return &SubjectService{
		repo:  repo,
		audit: audit,
		log:   log.With().Str("component", "subject").Logger(),
	}
}

func (s *SubjectService) GetAll(ctx context.Context) ([]model.Subject, error) {
	return s.repo.GetAll(ctx)
}

func (s *SubjectService) Create(ctx context.Context, actor *model.Principal, subject *model.Subject, address string) error {
	if err := s.repo.Create(ctx, subject); err != nil {
		return fmt.Errorf("create subject: %w", err)
	}
	s.audit.Record(ctx, actor, model.ActionSubjectCreate, "subjects", strconv.Itoa(subject.ID), nil, subject, address)
	return nil
}

func (s *SubjectService) Update(ctx context.Context, actor *model.Principal, subject *model.Subject, address string) error {
	before, err := s.repo.GetByID(ctx, subject.ID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrSubjectNotFound
		}
		return fmt.Errorf("get subject: %w", err)
	}
	if err := s.repo.Update(ctx, subject); err != nil {
		return fmt.Errorf("update subject: %w", err)
	}
	s.audit.Record(ctx, actor, model.ActionSubjectUpdate, "subjects", strconv.Itoa(subject.ID), before, subject, address)
	return nil
}

func (s *SubjectService) Delete(ctx context.Context, actor *model.Principal, id int, address string) error {
	before, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrSubjectNotFound
		}
		return fmt.Errorf("get subject: %w", err)
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete subject: %w", err)
	}
	s.audit.Record(ctx, actor, model.ActionSubjectDelete, "subjects", strconv.Itoa(id), before, nil, address)
	return nil
}

// YearWeights reports the credit-weight sum per program year, the maximum
// attainable weighted-grade total of that year.
func (s *SubjectService) YearWeights(ctx context.Context) ([]model.YearWeight, error) {
	return s.repo.YearWeights(ctx)
}
