package repository

import (
	"classquest/internal/database"
)

// AttendanceRepository is the read surface the weekly engine uses for the
// attendance bucket, plus the writes the attendance producers need.
type AttendanceRepository struct {
	db database.DBTX
}

// NewAttendanceRepository creates a new attendance repository
func NewAttendanceRepository(db database.DBTX) *AttendanceRepository {
	return &AttendanceRepository{db: db}
}

// AddClassDay registers a scheduled class day. Re-adding the same day is a
// no-op.
func (r *AttendanceRepository) AddClassDay(classroomID int64, day string) error {
	query := "INSERT INTO class_days (classroom_id, day) VALUES (?, ?)"
	_, err := r.db.Exec(query, classroomID, day)
	if err != nil && r.db.IsUniqueViolation(err) {
		return nil
	}
	return err
}

// RecordAttendance marks a student present or absent on a class day,
// overwriting an earlier mark for the same day
func (r *AttendanceRepository) RecordAttendance(userID, classroomID int64, day string, present bool) error {
	query := "INSERT INTO attendance_records (user_id, classroom_id, day, present) VALUES (?, ?, ?, ?)"
	_, err := r.db.Exec(query, userID, classroomID, day, present)
	if err != nil && r.db.IsUniqueViolation(err) {
		update := "UPDATE attendance_records SET present = ? WHERE user_id = ? AND classroom_id = ? AND day = ?"
		_, err = r.db.Exec(update, present, userID, classroomID, day)
	}
	return err
}

// ScheduledDayCount counts class days for a classroom in [start, end]
func (r *AttendanceRepository) ScheduledDayCount(classroomID int64, start, end string) (int, error) {
	query := "SELECT COUNT(*) FROM class_days WHERE classroom_id = ? AND day >= ? AND day <= ?"
	var count int
	err := r.db.QueryRow(query, classroomID, start, end).Scan(&count)
	return count, err
}

// AttendedDayCount counts days the student was marked present in [start, end]
func (r *AttendanceRepository) AttendedDayCount(userID, classroomID int64, start, end string) (int, error) {
	query := `
		SELECT COUNT(*)
		FROM attendance_records
		WHERE user_id = ? AND classroom_id = ? AND day >= ? AND day <= ? AND present = ?
	`
	var count int
	err := r.db.QueryRow(query, userID, classroomID, start, end, true).Scan(&count)
	return count, err
}
