package model

import "testing"

func TestMarkComponentsValidate(t *testing.T) {
	tests := []struct {
		name       string
		comps      MarkComponents
		wantFields []string
	}{
		{
			name:  "all zero",
			comps: MarkComponents{},
		},
		{
			name:  "all at maximum",
			comps: MarkComponents{Exam: 60, Midterm: 20, Quizzes: 10, Daily: 10},
		},
		{
			name:       "exam over bound",
			comps:      MarkComponents{Exam: 70},
			wantFields: []string{"exam"},
		},
		{
			name:       "negative midterm",
			comps:      MarkComponents{Midterm: -1},
			wantFields: []string{"midterm"},
		},
		{
			name:       "multiple violations",
			comps:      MarkComponents{Exam: 61, Midterm: 21, Quizzes: 11, Daily: 11},
			wantFields: []string{"exam", "midterm", "quizzes", "daily"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fields := tt.comps.Validate()
			if len(tt.wantFields) == 0 {
				if fields != nil {
					t.Fatalf("expected no violations, got %v", fields)
				}
				return
			}
			if len(fields) != len(tt.wantFields) {
				t.Fatalf("expected %d violations, got %v", len(tt.wantFields), fields)
			}
			for _, f := range tt.wantFields {
				if _, ok := fields[f]; !ok {
					t.Errorf("expected violation on %q, got %v", f, fields)
				}
			}
		})
	}
}

func TestRawTotal(t *testing.T) {
	comps := MarkComponents{Exam: 50, Midterm: 15, Quizzes: 8, Daily: 7}
	if got := comps.RawTotal(); got != 80 {
		t.Errorf("RawTotal() = %d, want 80", got)
	}

	full := MarkComponents{Exam: 60, Midterm: 20, Quizzes: 10, Daily: 10}
	if got := full.RawTotal(); got != 100 {
		t.Errorf("RawTotal() = %d, want 100", got)
	}
}

func TestWeightedGrade(t *testing.T) {
	tests := []struct {
		rawTotal     int
		creditWeight int
		want         float64
	}{
		{100, 100, 100},
		{80, 8, 6.4},
		{95, 25, 23.75},
		{33, 10, 3.3},
		{1, 1, 0.01},
		{0, 50, 0},
		{67, 33, 22.11},
	}

	for _, tt := range tests {
		if got := WeightedGrade(tt.rawTotal, tt.creditWeight); got != tt.want {
			t.Errorf("WeightedGrade(%d, %d) = %v, want %v", tt.rawTotal, tt.creditWeight, got, tt.want)
		}
	}
}

func TestRound2(t *testing.T) {
	if got := Round2(6.399999999999999); got != 6.4 {
		t.Errorf("Round2() = %v, want 6.4", got)
	}
	if got := Round2(23.745); got != 23.75 {
		t.Errorf("Round2() = %v, want 23.75", got)
	}
}

func TestRoleValid(t *testing.T) {
	if !RoleAdmin.Valid() || !RoleTeacher.Valid() {
		t.Error("known roles must be valid")
	}
	if Role("superuser").Valid() {
		t.Error("unknown role must be invalid")
	}
	if Role("").Valid() {
		t.Error("empty role must be invalid")
	}
}
