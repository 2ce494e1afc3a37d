package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/jackc/pgx/v5"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/studika/gradebook-backend/internal/config"
	"github.com/studika/gradebook-backend/internal/model"
)

// Grade errors.
var (
	ErrSubjectNotFound = errors.New("subject not found")
	ErrStudentNotFound = errors.New("student not found")
	ErrInvalidYear     = errors.New("year must be 1 or 2")
)

// ValidationError reports per-field bound violations. No write happens
// when it is returned.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed on %d field(s)", len(e.Fields))
}

// SubjectGetter is the subject lookup needed by GradeService.
type SubjectGetter interface {
	GetByID(ctx context.Context, id int) (*model.Subject, error)
}

// StudentGetter is the student lookup needed by GradeService.
type StudentGetter interface {
	GetByID(ctx context.Context, id int) (*model.Student, error)
}

// MarkStore is the mark persistence needed by GradeService.
type MarkStore interface {
	Upsert(ctx context.Context, m *model.Mark) error
	GetByStudentSubject(ctx context.Context, studentID, subjectID int) (*model.Mark, error)
	ListByStudent(ctx context.Context, studentID int) ([]model.MarkWithSubject, error)
	SumWeightedByYear(ctx context.Context, studentID, year int) (float64, error)
}

// GradeService computes and persists weighted grades. The arithmetic is
// pure; the (student, subject) uniqueness of marks is enforced by the
// store's upsert, never by check-then-write.
type GradeService struct {
	subjects SubjectGetter
	students StudentGetter
	marks    MarkStore
	audit    *AuditService
	cfg      *config.Config
	rdb      *redis.Client
	log      zerolog.Logger
}

// NewGradeService creates a new GradeService. rdb may be nil to disable
// grade caching.
func NewGradeService(
	subjects SubjectGetter,
	students StudentGetter,
	marks MarkStore,
	audit *AuditService,
	cfg *config.Config,
	rdb *redis.Client,
	log zerolog.Logger,
) *GradeService {
	return &GradeService{
		subjects: subjects,
		students: students,
		marks:    marks,
		audit:    audit,
		cfg:      cfg,
		rdb:      rdb,
		log:      log.With().Str("component", "grade").Logger(),
	}
}

// RecordMark validates the components against their program-defined bounds,
// derives raw_total and weighted_grade, and upserts the mark for the
// (student, subject) pair, preserving the row id on update. All-or-nothing:
// an out-of-bound component fails before any write. The mutation is audited
// with before/after snapshots.
func (s *GradeService) RecordMark(ctx context.Context, actor *model.Principal, studentID, subjectID int, comps model.MarkComponents, address string) (*model.Mark, error) {
	subject, err := s.subjects.GetByID(ctx, subjectID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrSubjectNotFound
		}
		return nil, fmt.Errorf("get subject: %w", err)
	}

	if _, err := s.students.GetByID(ctx, studentID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrStudentNotFound
		}
		return nil, fmt.Errorf("get student: %w", err)
	}

	if fields := comps.Validate(); fields != nil {
		return nil, &ValidationError{Fields: fields}
	}

	before, err := s.marks.GetByStudentSubject(ctx, studentID, subjectID)
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("get existing mark: %w", err)
	}

	rawTotal := comps.RawTotal()
	mark := &model.Mark{
		StudentID:     studentID,
		SubjectID:     subjectID,
		Exam:          comps.Exam,
		Midterm:       comps.Midterm,
		Quizzes:       comps.Quizzes,
		Daily:         comps.Daily,
		RawTotal:      rawTotal,
		WeightedGrade: model.WeightedGrade(rawTotal, subject.CreditWeight),
	}

	if err := s.marks.Upsert(ctx, mark); err != nil {
		return nil, fmt.Errorf("upsert mark: %w", err)
	}

	// A nil *model.Mark wrapped in an interface would marshal to JSON null;
	// keep the interface itself nil so a first write carries no before snapshot.
	var beforeSnap interface{}
	if before != nil {
		beforeSnap = before
	}
	s.audit.Record(ctx, actor, model.ActionMarkRecord, "marks", strconv.Itoa(mark.ID), beforeSnap, mark, address)
	s.invalidateGradeCache(ctx, studentID, subject.Year)

	return mark, nil
}

// GetMark retrieves the mark for a (student, subject) pair.
func (s *GradeService) GetMark(ctx context.Context, studentID, subjectID int) (*model.Mark, error) {
	return s.marks.GetByStudentSubject(ctx, studentID, subjectID)
}

// YearGrade sums the student's weighted grades across all subjects of one
// program year. Subjects with no recorded mark contribute 0.
func (s *GradeService) YearGrade(ctx context.Context, studentID, year int) (float64, error) {
	if year != 1 && year != 2 {
		return 0, ErrInvalidYear
	}

	if s.rdb != nil {
		if cached, err := s.rdb.Get(ctx, config.CacheKey.YearGradeKey(studentID, year)).Result(); err == nil {
			if v, err := strconv.ParseFloat(cached, 64); err == nil {
				return v, nil
			}
		}
	}

	total, err := s.marks.SumWeightedByYear(ctx, studentID, year)
	if err != nil {
		return 0, fmt.Errorf("sum weighted grades: %w", err)
	}
	total = model.Round2(total)

	if s.rdb != nil {
		if err := s.rdb.Set(ctx, config.CacheKey.YearGradeKey(studentID, year),
			strconv.FormatFloat(total, 'f', 2, 64), s.cfg.GradeCacheTTL).Err(); err != nil {
			s.log.Debug().Err(err).Msg("Year grade cache set failed")
		}
	}

	return total, nil
}

// GraduationGrade is the sum of both year grades. Its maximum is bounded by
// the sum of credit weights across both years; no further normalization is
// applied.
func (s *GradeService) GraduationGrade(ctx context.Context, studentID int) (float64, error) {
	if s.rdb != nil {
		if cached, err := s.rdb.Get(ctx, config.CacheKey.GraduationGradeKey(studentID)).Result(); err == nil {
			if v, err := strconv.ParseFloat(cached, 64); err == nil {
				return v, nil
			}
		}
	}

	year1, err := s.YearGrade(ctx, studentID, 1)
	if err != nil {
		return 0, err
	}
	year2, err := s.YearGrade(ctx, studentID, 2)
	if err != nil {
		return 0, err
	}
	total := model.Round2(year1 + year2)

	if s.rdb != nil {
		if err := s.rdb.Set(ctx, config.CacheKey.GraduationGradeKey(studentID),
			strconv.FormatFloat(total, 'f', 2, 64), s.cfg.GradeCacheTTL).Err(); err != nil {
			s.log.Debug().Err(err).Msg("Graduation grade cache set failed")
		}
	}

	return total, nil
}

// Report assembles a student's full grade report: every recorded mark with
// its subject, both year totals, and the graduation grade.
func (s *GradeService) Report(ctx context.Context, studentID int) (*model.GradeReport, error) {
	student, err := s.students.GetByID(ctx, studentID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrStudentNotFound
		}
		return nil, fmt.Errorf("get student: %w", err)
	}

	marks, err := s.marks.ListByStudent(ctx, studentID)
	if err != nil {
		return nil, fmt.Errorf("list marks: %w", err)
	}

	yearGrades := make(map[int]float64, 2)
	for _, year := range []int{1, 2} {
		g, err := s.YearGrade(ctx, studentID, year)
		if err != nil {
			return nil, err
		}
		yearGrades[year] = g
	}

	return &model.GradeReport{
		Student:         *student,
		Marks:           marks,
		YearGrades:      yearGrades,
		GraduationGrade: model.Round2(yearGrades[1] + yearGrades[2]),
	}, nil
}

// invalidateGradeCache drops the cached aggregates touched by a mark write.
func (s *GradeService) invalidateGradeCache(ctx context.Context, studentID, year int) {
	if s.rdb == nil {
		return
	}
	if err := s.rdb.Del(ctx,
		config.CacheKey.YearGradeKey(studentID, year),
		config.CacheKey.GraduationGradeKey(studentID),
	).Err(); err != nil {
		s.log.Debug().Err(err).Int("student_id", studentID).Msg("Grade cache invalidation failed")
	}
}
