package repository

import (
	"time"

	"classquest/internal/database"
	"classquest/internal/models"
)

// AssignmentRepository handles assignments and submissions, and is the read
// surface for the weekly assignment bucket
type AssignmentRepository struct {
	db database.DBTX
}

// NewAssignmentRepository creates a new assignment repository
func NewAssignmentRepository(db database.DBTX) *AssignmentRepository {
	return &AssignmentRepository{db: db}
}

// Create inserts an assignment
func (r *AssignmentRepository) Create(classroomID int64, title string, dueAt time.Time) (*models.Assignment, error) {
	query := "INSERT INTO assignments (classroom_id, title, due_at) VALUES (?, ?, ?)"
	id, err := r.db.ExecReturningID(query, classroomID, title, dueAt)
	if err != nil {
		return nil, err
	}
	return &models.Assignment{ID: id, ClassroomID: classroomID, Title: title, DueAt: dueAt}, nil
}

// ListForClassroom returns assignments for a classroom, soonest due first
func (r *AssignmentRepository) ListForClassroom(classroomID int64) ([]models.Assignment, error) {
	query := `
		SELECT id, classroom_id, title, due_at, created_at
		FROM assignments
		WHERE classroom_id = ?
		ORDER BY due_at ASC
	`
	rows, err := r.db.Query(query, classroomID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var assignments []models.Assignment
	for rows.Next() {
		var a models.Assignment
		if err := rows.Scan(&a.ID, &a.ClassroomID, &a.Title, &a.DueAt, &a.CreatedAt); err != nil {
			return nil, err
		}
		assignments = append(assignments, a)
	}
	return assignments, rows.Err()
}

// RecordSubmission stores a student's turn-in. A repeat submission for the
// same assignment is a no-op that keeps the first timestamp.
func (r *AssignmentRepository) RecordSubmission(assignmentID, userID int64, submittedAt time.Time) error {
	query := "INSERT INTO submissions (assignment_id, user_id, submitted_at) VALUES (?, ?, ?)"
	_, err := r.db.Exec(query, assignmentID, userID, submittedAt)
	if err != nil && r.db.IsUniqueViolation(err) {
		return nil
	}
	return err
}

// DueCount counts assignments for the classroom due within [from, to)
func (r *AssignmentRepository) DueCount(classroomID int64, from, to time.Time) (int, error) {
	query := "SELECT COUNT(*) FROM assignments WHERE classroom_id = ? AND due_at >= ? AND due_at < ?"
	var count int
	err := r.db.QueryRow(query, classroomID, from, to).Scan(&count)
	return count, err
}

// OnTimeSubmissionCount counts the student's submissions that arrived at or
// before the deadline, over assignments due within [from, to)
func (r *AssignmentRepository) OnTimeSubmissionCount(userID, classroomID int64, from, to time.Time) (int, error) {
	query := `
		SELECT COUNT(*)
		FROM submissions s
		JOIN assignments a ON a.id = s.assignment_id
		WHERE s.user_id = ? AND a.classroom_id = ?
		  AND a.due_at >= ? AND a.due_at < ?
		  AND s.submitted_at <= a.due_at
	`
	var count int
	err := r.db.QueryRow(query, userID, classroomID, from, to).Scan(&count)
	return count, err
}
