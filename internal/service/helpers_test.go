package service

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
	"github.com/studika/gradebook-backend/internal/config"
	"github.com/studika/gradebook-backend/internal/model"
)

// ─── Audit ──────────────────────────────────────────────────────────

type fakeAuditStore struct {
	entries []*model.AuditEntry
}

func (f *fakeAuditStore) Insert(_ context.Context, e *model.AuditEntry) error {
	e.ID = int64(len(f.entries) + 1)
	f.entries = append(f.entries, e)
	return nil
}

func (f *fakeAuditStore) List(_ context.Context, filter model.AuditFilter, _, _ int) ([]model.AuditEntry, int, error) {
	var out []model.AuditEntry
	for _, e := range f.entries {
		if filter.Action != "" && e.Action != filter.Action {
			continue
		}
		if filter.TableName != "" && e.TableName != filter.TableName {
			continue
		}
		if filter.ActorID != 0 && e.ActorID != filter.ActorID {
			continue
		}
		out = append(out, *e)
	}
	return out, len(out), nil
}

func newTestAudit(store *fakeAuditStore) *AuditService {
	return NewAuditService(store, nil, zerolog.Nop())
}

// ─── Principals ─────────────────────────────────────────────────────

type fakePrincipalStore struct {
	byID map[int]*model.Principal
}

func (f *fakePrincipalStore) GetByUsername(_ context.Context, username string) (*model.Principal, error) {
	for _, p := range f.byID {
		if p.Username == username {
			cp := *p
			return &cp, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (f *fakePrincipalStore) GetByID(_ context.Context, id int) (*model.Principal, error) {
	p, ok := f.byID[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	cp := *p
	return &cp, nil
}

func (f *fakePrincipalStore) TouchLastLogin(_ context.Context, id int) error {
	if p, ok := f.byID[id]; ok {
		now := time.Now()
		p.LastLogin = &now
	}
	return nil
}

// ─── Sessions ───────────────────────────────────────────────────────

type fakeSessionStore struct {
	byToken map[string]*model.Session
	nextID  int
}

func newFakeSessionStore() *fakeSessionStore {
	return &fakeSessionStore{byToken: make(map[string]*model.Session)}
}

func (f *fakeSessionStore) Create(_ context.Context, s *model.Session) error {
	f.nextID++
	s.ID = f.nextID
	s.CreatedAt = nowFunc()
	s.LastActivity = nowFunc()
	cp := *s
	f.byToken[s.Token] = &cp
	return nil
}

func (f *fakeSessionStore) GetByToken(_ context.Context, token string) (*model.Session, error) {
	s, ok := f.byToken[token]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	cp := *s
	return &cp, nil
}

func (f *fakeSessionStore) Deactivate(_ context.Context, token string) error {
	if s, ok := f.byToken[token]; ok {
		s.Active = false
	}
	return nil
}

func (f *fakeSessionStore) DeactivateByPrincipal(_ context.Context, principalID int) error {
	for _, s := range f.byToken {
		if s.PrincipalID == principalID {
			s.Active = false
		}
	}
	return nil
}

func (f *fakeSessionStore) TouchLastActivity(_ context.Context, sessionID int, at time.Time) error {
	for _, s := range f.byToken {
		if s.ID == sessionID && at.After(s.LastActivity) {
			s.LastActivity = at
		}
	}
	return nil
}

// ─── Subjects / Students ────────────────────────────────────────────

type fakeSubjectGetter struct {
	byID map[int]*model.Subject
}

func (f *fakeSubjectGetter) GetByID(_ context.Context, id int) (*model.Subject, error) {
	s, ok := f.byID[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return s, nil
}

type fakeStudentGetter struct {
	byID map[int]*model.Student
}

func (f *fakeStudentGetter) GetByID(_ context.Context, id int) (*model.Student, error) {
	s, ok := f.byID[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return s, nil
}

// ─── Marks ──────────────────────────────────────────────────────────

type markKey struct {
	studentID int
	subjectID int
}

// fakeMarkStore keeps a reference to the subject set so it can resolve
// years and weights for the aggregate queries.
type fakeMarkStore struct {
	marks    map[markKey]*model.Mark
	subjects *fakeSubjectGetter
	nextID   int
	upserts  int
}

func newFakeMarkStore(subjects *fakeSubjectGetter) *fakeMarkStore {
	return &fakeMarkStore{marks: make(map[markKey]*model.Mark), subjects: subjects}
}

func (f *fakeMarkStore) Upsert(_ context.Context, m *model.Mark) error {
	f.upserts++
	key := markKey{m.StudentID, m.SubjectID}
	if existing, ok := f.marks[key]; ok {
		m.ID = existing.ID
		m.CreatedAt = existing.CreatedAt
	} else {
		f.nextID++
		m.ID = f.nextID
	}
	cp := *m
	f.marks[key] = &cp
	return nil
}

func (f *fakeMarkStore) GetByStudentSubject(_ context.Context, studentID, subjectID int) (*model.Mark, error) {
	m, ok := f.marks[markKey{studentID, subjectID}]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	cp := *m
	return &cp, nil
}

func (f *fakeMarkStore) Exists(_ context.Context, studentID, subjectID int) (bool, error) {
	_, ok := f.marks[markKey{studentID, subjectID}]
	return ok, nil
}

func (f *fakeMarkStore) ListByStudent(_ context.Context, studentID int) ([]model.MarkWithSubject, error) {
	var out []model.MarkWithSubject
	for key, m := range f.marks {
		if key.studentID != studentID {
			continue
		}
		subject := f.subjects.byID[key.subjectID]
		out = append(out, model.MarkWithSubject{
			Mark:         *m,
			SubjectName:  subject.Name,
			Year:         subject.Year,
			CreditWeight: subject.CreditWeight,
		})
	}
	return out, nil
}

func (f *fakeMarkStore) SumWeightedByYear(_ context.Context, studentID, year int) (float64, error) {
	var sum float64
	for key, m := range f.marks {
		if key.studentID != studentID {
			continue
		}
		if f.subjects.byID[key.subjectID].Year != year {
			continue
		}
		sum += m.WeightedGrade
	}
	return sum, nil
}

// ─── Assignments ────────────────────────────────────────────────────

type assignmentKey struct {
	teacherID int
	subjectID int
}

type fakeAssignmentChecker struct {
	rows map[assignmentKey]bool
}

func (f *fakeAssignmentChecker) Exists(_ context.Context, teacherID, subjectID int) (bool, error) {
	return f.rows[assignmentKey{teacherID, subjectID}], nil
}

// ─── Config ─────────────────────────────────────────────────────────

func testConfig() *config.Config {
	return &config.Config{
		BcryptCost:         4,
		SessionIdleTimeout: 30 * time.Minute,
		SessionMaxLifetime: 12 * time.Hour,
		GradeCacheTTL:      5 * time.Minute,
	}
}
