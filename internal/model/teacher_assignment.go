package model

import "time"

// TeacherAssignment links a teacher to a subject. This relation is the sole
// source of truth for teacher scope — no inheritance, no implicit grants.
type TeacherAssignment struct {
	ID        int       `json:"id"`
	TeacherID int       `json:"teacher_id"`
	SubjectID int       `json:"subject_id"`
	CreatedAt time.Time `json:"created_at"`
}

// TeacherAssignmentDetail enriches an assignment with descriptive fields.
type TeacherAssignmentDetail struct {
	TeacherAssignment
	TeacherName string `json:"teacher_name"`
	SubjectName string `json:"subject_name"`
	SubjectYear int    `json:"subject_year"`
}

// CreateAssignmentRequest is the payload for assigning a teacher to a subject.
type CreateAssignmentRequest struct {
	TeacherID int `json:"teacher_id" binding:"required,min=1"`
	SubjectID int `json:"subject_id" binding:"required,min=1"`
}
