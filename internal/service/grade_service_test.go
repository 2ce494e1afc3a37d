package service

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/studika/gradebook-backend/internal/model"
)

func newGradeFixture() (*GradeService, *fakeMarkStore, *fakeAuditStore) {
	subjects := &fakeSubjectGetter{byID: map[int]*model.Subject{
		1: {ID: 1, Name: "Mathematics I", Year: 1, CreditWeight: 30},
		2: {ID: 2, Name: "Physics I", Year: 1, CreditWeight: 25},
		3: {ID: 3, Name: "Databases", Year: 2, CreditWeight: 8},
	}}
	students := &fakeStudentGetter{byID: map[int]*model.Student{
		10: {ID: 10, Number: "2026-001", Name: "Alex Morgan"},
	}}
	marks := newFakeMarkStore(subjects)
	auditStore := &fakeAuditStore{}
	audit := newTestAudit(auditStore)

	svc := NewGradeService(subjects, students, marks, audit, testConfig(), nil, zerolog.Nop())
	return svc, marks, auditStore
}

func admin() *model.Principal {
	return &model.Principal{ID: 1, Username: "admin", Role: model.RoleAdmin, Active: true}
}

func TestRecordMarkComputesWeightedGrade(t *testing.T) {
	svc, marks, _ := newGradeFixture()
	ctx := context.Background()

	// Raw total 80 on a subject weighted 8 gives 6.40.
	comps := model.MarkComponents{Exam: 50, Midterm: 15, Quizzes: 8, Daily: 7}
	mark, err := svc.RecordMark(ctx, admin(), 10, 3, comps, "127.0.0.1")
	if err != nil {
		t.Fatalf("RecordMark() error = %v", err)
	}

	if mark.RawTotal != 80 {
		t.Errorf("RawTotal = %d, want 80", mark.RawTotal)
	}
	if mark.WeightedGrade != 6.4 {
		t.Errorf("WeightedGrade = %v, want 6.4", mark.WeightedGrade)
	}
	if marks.upserts != 1 {
		t.Errorf("upserts = %d, want 1", marks.upserts)
	}
}

func TestRecordMarkOutOfBoundsWritesNothing(t *testing.T) {
	svc, marks, _ := newGradeFixture()
	ctx := context.Background()

	comps := model.MarkComponents{Exam: 70}
	_, err := svc.RecordMark(ctx, admin(), 10, 1, comps, "127.0.0.1")

	var ve *ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("RecordMark() error = %v, want *ValidationError", err)
	}
	if _, ok := ve.Fields["exam"]; !ok {
		t.Errorf("expected violation on exam, got %v", ve.Fields)
	}
	if marks.upserts != 0 {
		t.Errorf("upserts = %d, want 0 — no write on validation failure", marks.upserts)
	}
}

func TestRecordMarkValidComponentsSumUnderHundredAccepted(t *testing.T) {
	svc, _, _ := newGradeFixture()
	ctx := context.Background()

	// Every component within bounds is acceptable even when most are zero.
	comps := model.MarkComponents{Exam: 60}
	mark, err := svc.RecordMark(ctx, admin(), 10, 1, comps, "127.0.0.1")
	if err != nil {
		t.Fatalf("RecordMark() error = %v", err)
	}
	if mark.RawTotal != 60 {
		t.Errorf("RawTotal = %d, want 60", mark.RawTotal)
	}
}

func TestRecordMarkUnknownSubject(t *testing.T) {
	svc, _, _ := newGradeFixture()

	_, err := svc.RecordMark(context.Background(), admin(), 10, 99, model.MarkComponents{}, "")
	if !errors.Is(err, ErrSubjectNotFound) {
		t.Errorf("RecordMark() error = %v, want ErrSubjectNotFound", err)
	}
}

func TestRecordMarkUnknownStudent(t *testing.T) {
	svc, _, _ := newGradeFixture()

	_, err := svc.RecordMark(context.Background(), admin(), 99, 1, model.MarkComponents{}, "")
	if !errors.Is(err, ErrStudentNotFound) {
		t.Errorf("RecordMark() error = %v, want ErrStudentNotFound", err)
	}
}

func TestRecordMarkOverwritePreservesRow(t *testing.T) {
	svc, _, _ := newGradeFixture()
	ctx := context.Background()

	first, err := svc.RecordMark(ctx, admin(), 10, 1, model.MarkComponents{Exam: 40}, "")
	if err != nil {
		t.Fatalf("first RecordMark() error = %v", err)
	}

	second, err := svc.RecordMark(ctx, admin(), 10, 1, model.MarkComponents{Exam: 55, Midterm: 18}, "")
	if err != nil {
		t.Fatalf("second RecordMark() error = %v", err)
	}

	if second.ID != first.ID {
		t.Errorf("overwrite changed row id: %d != %d", second.ID, first.ID)
	}
	if second.RawTotal != 73 {
		t.Errorf("RawTotal = %d, want 73", second.RawTotal)
	}
}

func TestRecordMarkAudited(t *testing.T) {
	svc, _, auditStore := newGradeFixture()

	if _, err := svc.RecordMark(context.Background(), admin(), 10, 1, model.MarkComponents{Exam: 40}, "10.0.0.1"); err != nil {
		t.Fatalf("RecordMark() error = %v", err)
	}

	if len(auditStore.entries) != 1 {
		t.Fatalf("audit entries = %d, want 1", len(auditStore.entries))
	}
	entry := auditStore.entries[0]
	if entry.Action != model.ActionMarkRecord {
		t.Errorf("action = %q, want %q", entry.Action, model.ActionMarkRecord)
	}
	if entry.Before != nil {
		t.Errorf("first write should carry no before snapshot, got %s", entry.Before)
	}
	if entry.After == nil {
		t.Error("after snapshot missing")
	}
	if entry.Address != "10.0.0.1" {
		t.Errorf("address = %q, want 10.0.0.1", entry.Address)
	}

	// An overwrite snapshots the prior row.
	if _, err := svc.RecordMark(context.Background(), admin(), 10, 1, model.MarkComponents{Exam: 55}, "10.0.0.1"); err != nil {
		t.Fatalf("second RecordMark() error = %v", err)
	}
	if len(auditStore.entries) != 2 {
		t.Fatalf("audit entries = %d, want 2", len(auditStore.entries))
	}
	var prior model.Mark
	if err := json.Unmarshal(auditStore.entries[1].Before, &prior); err != nil {
		t.Fatalf("before snapshot did not decode: %v", err)
	}
	if prior.Exam != 40 {
		t.Errorf("before.exam = %d, want 40", prior.Exam)
	}
}

func TestYearGradeSumsWeightedGrades(t *testing.T) {
	svc, _, _ := newGradeFixture()
	ctx := context.Background()

	// Mathematics I (weight 30): raw 90 → 27.00
	if _, err := svc.RecordMark(ctx, admin(), 10, 1, model.MarkComponents{Exam: 55, Midterm: 18, Quizzes: 9, Daily: 8}, ""); err != nil {
		t.Fatal(err)
	}
	// Physics I (weight 25): raw 80 → 20.00
	if _, err := svc.RecordMark(ctx, admin(), 10, 2, model.MarkComponents{Exam: 50, Midterm: 15, Quizzes: 8, Daily: 7}, ""); err != nil {
		t.Fatal(err)
	}
	// Databases, year 2 (weight 8): raw 100 → 8.00
	if _, err := svc.RecordMark(ctx, admin(), 10, 3, model.MarkComponents{Exam: 60, Midterm: 20, Quizzes: 10, Daily: 10}, ""); err != nil {
		t.Fatal(err)
	}

	year1, err := svc.YearGrade(ctx, 10, 1)
	if err != nil {
		t.Fatalf("YearGrade(1) error = %v", err)
	}
	if year1 != 47 {
		t.Errorf("year 1 grade = %v, want 47", year1)
	}

	year2, err := svc.YearGrade(ctx, 10, 2)
	if err != nil {
		t.Fatalf("YearGrade(2) error = %v", err)
	}
	if year2 != 8 {
		t.Errorf("year 2 grade = %v, want 8", year2)
	}

	grad, err := svc.GraduationGrade(ctx, 10)
	if err != nil {
		t.Fatalf("GraduationGrade() error = %v", err)
	}
	if grad != 55 {
		t.Errorf("graduation grade = %v, want 55", grad)
	}
}

func TestYearGradeInvalidYear(t *testing.T) {
	svc, _, _ := newGradeFixture()

	for _, year := range []int{0, 3, -1} {
		if _, err := svc.YearGrade(context.Background(), 10, year); !errors.Is(err, ErrInvalidYear) {
			t.Errorf("YearGrade(%d) error = %v, want ErrInvalidYear", year, err)
		}
	}
}

func TestYearGradeNoMarksIsZero(t *testing.T) {
	svc, _, _ := newGradeFixture()

	grade, err := svc.YearGrade(context.Background(), 10, 1)
	if err != nil {
		t.Fatalf("YearGrade() error = %v", err)
	}
	if grade != 0 {
		t.Errorf("grade = %v, want 0", grade)
	}
}

func TestReport(t *testing.T) {
	svc, _, _ := newGradeFixture()
	ctx := context.Background()

	if _, err := svc.RecordMark(ctx, admin(), 10, 1, model.MarkComponents{Exam: 55, Midterm: 18, Quizzes: 9, Daily: 8}, ""); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.RecordMark(ctx, admin(), 10, 3, model.MarkComponents{Exam: 60, Midterm: 20, Quizzes: 10, Daily: 10}, ""); err != nil {
		t.Fatal(err)
	}

	report, err := svc.Report(ctx, 10)
	if err != nil {
		t.Fatalf("Report() error = %v", err)
	}

	if report.Student.ID != 10 {
		t.Errorf("student id = %d, want 10", report.Student.ID)
	}
	if len(report.Marks) != 2 {
		t.Errorf("marks = %d, want 2", len(report.Marks))
	}
	if report.YearGrades[1] != 27 {
		t.Errorf("year 1 = %v, want 27", report.YearGrades[1])
	}
	if report.YearGrades[2] != 8 {
		t.Errorf("year 2 = %v, want 8", report.YearGrades[2])
	}
	if report.GraduationGrade != 35 {
		t.Errorf("graduation grade = %v, want 35", report.GraduationGrade)
	}

	if _, err := svc.Report(ctx, 99); !errors.Is(err, ErrStudentNotFound) {
		t.Errorf("Report(99) error = %v, want ErrStudentNotFound", err)
	}
}
