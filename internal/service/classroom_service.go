package service

import (
	"fmt"
	"time"

	"classquest/internal/credentials"
	"classquest/internal/models"
	"classquest/internal/repository"
)

// joinCodeAttempts bounds retries when a generated code collides
const joinCodeAttempts = 5

// ClassroomService handles classroom creation, joining and the producer
// writes teachers make against attendance and assignments
type ClassroomService struct {
	classroomRepo  *repository.ClassroomRepository
	attendanceRepo *repository.AttendanceRepository
	assignmentRepo *repository.AssignmentRepository
}

// NewClassroomService creates a new classroom service
func NewClassroomService(classroomRepo *repository.ClassroomRepository, attendanceRepo *repository.AttendanceRepository, assignmentRepo *repository.AssignmentRepository) *ClassroomService {
	return &ClassroomService{
		classroomRepo:  classroomRepo,
		attendanceRepo: attendanceRepo,
		assignmentRepo: assignmentRepo,
	}
}

// Create makes a classroom with a fresh kid-friendly join code, retrying on
// the rare code collision
func (s *ClassroomService) Create(teacherID int64, name string) (*models.Classroom, error) {
	var lastErr error
	for i := 0; i < joinCodeAttempts; i++ {
		code, err := credentials.GenerateJoinCode()
		if err != nil {
			return nil, fmt.Errorf("failed to generate join code: %w", err)
		}

		classroom, err := s.classroomRepo.Create(name, code, teacherID)
		if err == nil {
			return classroom, nil
		}
		lastErr = err
	}
	return nil, fmt.Errorf("failed to create classroom: %w", lastErr)
}

// Join enrolls a student by join code
func (s *ClassroomService) Join(userID int64, joinCode string) (*models.Classroom, error) {
	classroom, err := s.classroomRepo.GetByJoinCode(joinCode)
	if err != nil {
		return nil, fmt.Errorf("failed to look up join code: %w", err)
	}
	if classroom == nil {
		return nil, ErrClassroomNotFound
	}

	if err := s.classroomRepo.Enroll(userID, classroom.ID); err != nil {
		return nil, fmt.Errorf("failed to enroll: %w", err)
	}
	return classroom, nil
}

// ListForTeacher returns the classrooms a teacher runs
func (s *ClassroomService) ListForTeacher(teacherID int64) ([]models.Classroom, error) {
	return s.classroomRepo.ListForTeacher(teacherID)
}

// Roster returns the students enrolled in a classroom
func (s *ClassroomService) Roster(classroomID int64) ([]models.RosterEntry, error) {
	return s.classroomRepo.Roster(classroomID)
}

// Get retrieves a classroom by id
func (s *ClassroomService) Get(classroomID int64) (*models.Classroom, error) {
	return s.classroomRepo.GetByID(classroomID)
}

// AddClassDay registers a scheduled class day for attendance scoring
func (s *ClassroomService) AddClassDay(classroomID int64, day string) error {
	return s.attendanceRepo.AddClassDay(classroomID, day)
}

// RecordAttendance marks a student present or absent on a class day
func (s *ClassroomService) RecordAttendance(userID, classroomID int64, day string, present bool) error {
	return s.attendanceRepo.RecordAttendance(userID, classroomID, day, present)
}

// CreateAssignment adds an assignment with its deadline
func (s *ClassroomService) CreateAssignment(classroomID int64, title string, dueAt time.Time) (*models.Assignment, error) {
	return s.assignmentRepo.Create(classroomID, title, dueAt)
}

// ListAssignments returns the classroom's assignments, soonest due first
func (s *ClassroomService) ListAssignments(classroomID int64) ([]models.Assignment, error) {
	return s.assignmentRepo.ListForClassroom(classroomID)
}

// RecordSubmission stores a student's turn-in
func (s *ClassroomService) RecordSubmission(assignmentID, userID int64, submittedAt time.Time) error {
	return s.assignmentRepo.RecordSubmission(assignmentID, userID, submittedAt)
}
