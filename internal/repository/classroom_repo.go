package repository

import (
	"database/sql"

	"classquest/internal/database"
	"classquest/internal/models"
)

// ClassroomRepository handles classroom and roster database operations
type ClassroomRepository struct {
	db database.DBTX
}

// NewClassroomRepository creates a new classroom repository
func NewClassroomRepository(db database.DBTX) *ClassroomRepository {
	return &ClassroomRepository{db: db}
}

// Create inserts a classroom with its join code
func (r *ClassroomRepository) Create(name, joinCode string, teacherID int64) (*models.Classroom, error) {
	query := "INSERT INTO classrooms (name, join_code, teacher_id) VALUES (?, ?, ?)"
	id, err := r.db.ExecReturningID(query, name, joinCode, teacherID)
	if err != nil {
		return nil, err
	}
	return r.GetByID(id)
}

// GetByID retrieves a classroom by primary key
func (r *ClassroomRepository) GetByID(classroomID int64) (*models.Classroom, error) {
	query := "SELECT id, name, join_code, teacher_id, created_at FROM classrooms WHERE id = ?"
	classroom := &models.Classroom{}
	err := r.db.QueryRow(query, classroomID).Scan(
		&classroom.ID,
		&classroom.Name,
		&classroom.JoinCode,
		&classroom.TeacherID,
		&classroom.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return classroom, nil
}

// GetByJoinCode retrieves a classroom by its join code. Returns nil without
// error when no classroom matches.
func (r *ClassroomRepository) GetByJoinCode(joinCode string) (*models.Classroom, error) {
	query := "SELECT id, name, join_code, teacher_id, created_at FROM classrooms WHERE join_code = ?"
	classroom := &models.Classroom{}
	err := r.db.QueryRow(query, joinCode).Scan(
		&classroom.ID,
		&classroom.Name,
		&classroom.JoinCode,
		&classroom.TeacherID,
		&classroom.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return classroom, nil
}

// ListForTeacher returns the classrooms a teacher runs
func (r *ClassroomRepository) ListForTeacher(teacherID int64) ([]models.Classroom, error) {
	query := `
		SELECT id, name, join_code, teacher_id, created_at
		FROM classrooms
		WHERE teacher_id = ?
		ORDER BY created_at ASC
	`
	rows, err := r.db.Query(query, teacherID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var classrooms []models.Classroom
	for rows.Next() {
		var c models.Classroom
		if err := rows.Scan(&c.ID, &c.Name, &c.JoinCode, &c.TeacherID, &c.CreatedAt); err != nil {
			return nil, err
		}
		classrooms = append(classrooms, c)
	}
	return classrooms, rows.Err()
}

// Enroll adds a student to a classroom roster. Enrolling twice is a no-op.
func (r *ClassroomRepository) Enroll(userID, classroomID int64) error {
	query := "INSERT INTO enrollments (user_id, classroom_id) VALUES (?, ?)"
	_, err := r.db.Exec(query, userID, classroomID)
	if err != nil && r.db.IsUniqueViolation(err) {
		return nil
	}
	return err
}

// IsEnrolled reports whether the student is on the classroom roster
func (r *ClassroomRepository) IsEnrolled(userID, classroomID int64) (bool, error) {
	query := "SELECT COUNT(*) FROM enrollments WHERE user_id = ? AND classroom_id = ?"
	var count int
	err := r.db.QueryRow(query, userID, classroomID).Scan(&count)
	return count > 0, err
}

// Roster returns the students enrolled in a classroom
func (r *ClassroomRepository) Roster(classroomID int64) ([]models.RosterEntry, error) {
	query := `
		SELECT u.id, u.display_name, u.email, e.created_at
		FROM enrollments e
		JOIN users u ON u.id = e.user_id
		WHERE e.classroom_id = ?
		ORDER BY u.display_name ASC
	`
	rows, err := r.db.Query(query, classroomID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var roster []models.RosterEntry
	for rows.Next() {
		var entry models.RosterEntry
		if err := rows.Scan(&entry.UserID, &entry.DisplayName, &entry.Email, &entry.EnrolledAt); err != nil {
			return nil, err
		}
		roster = append(roster, entry)
	}
	return roster, rows.Err()
}
