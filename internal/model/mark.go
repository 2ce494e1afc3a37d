package model

import (
	"fmt"
	"math"
	"time"
)

// Program-defined component bounds. They sum to 100, so a raw total is
// always on a 0-100 scale before credit weighting.
const (
	MaxExam    = 60
	MaxMidterm = 20
	MaxQuizzes = 10
	MaxDaily   = 10
)

// Mark holds the four bounded score components of one (student, subject)
// pair plus the derived totals. RawTotal and WeightedGrade are recomputed
// whenever any component changes, never edited independently.
type Mark struct {
	ID            int       `json:"id"`
	StudentID     int       `json:"student_id"`
	SubjectID     int       `json:"subject_id"`
	Exam          int       `json:"exam"`
	Midterm       int       `json:"midterm"`
	Quizzes       int       `json:"quizzes"`
	Daily         int       `json:"daily"`
	RawTotal      int       `json:"raw_total"`
	WeightedGrade float64   `json:"weighted_grade"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// MarkComponents is the mutable part of a Mark.
type MarkComponents struct {
	Exam    int `json:"exam" binding:"min=0,max=60"`
	Midterm int `json:"midterm" binding:"min=0,max=20"`
	Quizzes int `json:"quizzes" binding:"min=0,max=10"`
	Daily   int `json:"daily" binding:"min=0,max=10"`
}

// Validate checks every component against its program-defined bound and
// returns a field → message map for each violation, or nil if all pass.
func (mc MarkComponents) Validate() map[string]string {
	fields := make(map[string]string)
	check := func(name string, value, max int) {
		if value < 0 {
			fields[name] = fmt.Sprintf("%s must not be negative", name)
		} else if value > max {
			fields[name] = fmt.Sprintf("%s must not exceed %d", name, max)
		}
	}
	check("exam", mc.Exam, MaxExam)
	check("midterm", mc.Midterm, MaxMidterm)
	check("quizzes", mc.Quizzes, MaxQuizzes)
	check("daily", mc.Daily, MaxDaily)
	if len(fields) == 0 {
		return nil
	}
	return fields
}

// RawTotal is the sum of all components.
func (mc MarkComponents) RawTotal() int {
	return mc.Exam + mc.Midterm + mc.Quizzes + mc.Daily
}

// WeightedGrade converts a raw total into its credit-weighted grade,
// rounded to 2 decimal places.
func WeightedGrade(rawTotal, creditWeight int) float64 {
	return Round2(float64(rawTotal) * float64(creditWeight) / 100.0)
}

// Round2 rounds to 2 decimal places.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// MarkWithSubject is a mark joined with the subject it was scored in,
// as shown on a student's grade report.
type MarkWithSubject struct {
	Mark
	SubjectName  string `json:"subject_name"`
	Year         int    `json:"year"`
	CreditWeight int    `json:"credit_weight"`
}

// GradeReport aggregates a student's marks and weighted totals.
type GradeReport struct {
	Student         Student           `json:"student"`
	Marks           []MarkWithSubject `json:"marks"`
	YearGrades      map[int]float64   `json:"year_grades"`
	GraduationGrade float64           `json:"graduation_grade"`
}
