package models

import "time"

// Assignment is classwork with a due instant
type Assignment struct {
	ID          int64     `json:"id"`
	ClassroomID int64     `json:"classroom_id"`
	Title       string    `json:"title"`
	DueAt       time.Time `json:"due_at"`
	CreatedAt   time.Time `json:"created_at"`
}

// Submission is a student's turn-in for an assignment
type Submission struct {
	ID           int64     `json:"id"`
	AssignmentID int64     `json:"assignment_id"`
	UserID       int64     `json:"user_id"`
	SubmittedAt  time.Time `json:"submitted_at"`
}
