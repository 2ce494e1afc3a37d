package model

import "time"

// Subject represents a course taught in one of the two program years.
// CreditWeight is the subject's contribution factor on a 0-100 scale; the
// weights of all subjects within a year add up to that year's maximum
// attainable weighted-grade total.
type Subject struct {
	ID           int       `json:"id"`
	Name         string    `json:"name"`
	Year         int       `json:"year"`
	CreditWeight int       `json:"credit_weight"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// YearWeight reports the sum of credit weights of all subjects in a year.
type YearWeight struct {
	Year        int `json:"year"`
	TotalWeight int `json:"total_weight"`
}

// CreateSubjectRequest is the payload for creating a subject.
type CreateSubjectRequest struct {
	Name         string `json:"name" binding:"required,min=2,max=100"`
	Year         int    `json:"year" binding:"required,oneof=1 2"`
	CreditWeight int    `json:"credit_weight" binding:"required,min=1,max=100"`
}

// UpdateSubjectRequest is the payload for updating a subject.
type UpdateSubjectRequest struct {
	Name         string `json:"name" binding:"required,min=2,max=100"`
	Year         int    `json:"year" binding:"required,oneof=1 2"`
	CreditWeight int    `json:"credit_weight" binding:"required,min=1,max=100"`
}
