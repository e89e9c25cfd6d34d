package models

import "time"

// Classroom represents a class a teacher runs
type Classroom struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	JoinCode  string    `json:"join_code"`
	TeacherID int64     `json:"teacher_id"`
	CreatedAt time.Time `json:"created_at"`
}

// Enrollment links a student to a classroom. One row per (user, classroom).
type Enrollment struct {
	ID          int64     `json:"id"`
	UserID      int64     `json:"user_id"`
	ClassroomID int64     `json:"classroom_id"`
	CreatedAt   time.Time `json:"created_at"`
}

// RosterEntry is one student on a classroom roster
type RosterEntry struct {
	UserID      int64     `json:"user_id"`
	DisplayName string    `json:"display_name"`
	Email       string    `json:"email"`
	EnrolledAt  time.Time `json:"enrolled_at"`
}
