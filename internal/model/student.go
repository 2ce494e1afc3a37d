package model

import "time"

// Student represents a student enrolled in the two-year program.
type Student struct {
	ID        int       `json:"id"`
	Number    string    `json:"number"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// CreateStudentRequest is the payload for creating a student.
type CreateStudentRequest struct {
	Number string `json:"number" binding:"required,min=1,max=32"`
	Name   string `json:"name" binding:"required,min=2,max=100"`
}

// UpdateStudentRequest is the payload for updating a student.
type UpdateStudentRequest struct {
	Number string `json:"number" binding:"required,min=1,max=32"`
	Name   string `json:"name" binding:"required,min=2,max=100"`
}
