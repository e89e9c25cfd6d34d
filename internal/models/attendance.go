package models

// ClassDay is a scheduled class day for a classroom, keyed by date string
type ClassDay struct {
	ID          int64
	ClassroomID int64
	Day         string
}

// AttendanceRecord marks whether a student was present on a class day
type AttendanceRecord struct {
	ID          int64
	UserID      int64
	ClassroomID int64
	Day         string
	Present     bool
}
