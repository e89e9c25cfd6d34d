package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"classquest/internal/service"
	"classquest/internal/timewindow"
)

// ClassroomHandler handles classroom lifecycle and the teacher producer
// endpoints for attendance and assignments
type ClassroomHandler struct {
	classroomService *service.ClassroomService
	rewardService    *service.RewardService
	worldService     *service.WorldService
}

// NewClassroomHandler creates a new classroom handler
func NewClassroomHandler(classroomService *service.ClassroomService, rewardService *service.RewardService, worldService *service.WorldService) *ClassroomHandler {
	return &ClassroomHandler{
		classroomService: classroomService,
		rewardService:    rewardService,
		worldService:     worldService,
	}
}

type createClassroomRequest struct {
	Name string `json:"name"`
}

// Create handles POST /api/classrooms
func (h *ClassroomHandler) Create(w http.ResponseWriter, r *http.Request) {
	claims := GetClaimsFromContext(r.Context())

	var req createClassroomRequest
	if err := decodeJSON(r, &req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body", "", err)
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		respondWithError(w, http.StatusBadRequest, "Classroom name is required", "", nil)
		return
	}

	classroom, err := h.classroomService.Create(claims.UserID, req.Name)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Failed to create classroom", "create classroom failed", err)
		return
	}
	respondJSON(w, http.StatusCreated, classroom)
}

// List handles GET /api/classrooms
func (h *ClassroomHandler) List(w http.ResponseWriter, r *http.Request) {
	claims := GetClaimsFromContext(r.Context())

	classrooms, err := h.classroomService.ListForTeacher(claims.UserID)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Failed to list classrooms", "list classrooms failed", err)
		return
	}
	respondJSON(w, http.StatusOK, classrooms)
}

type joinRequest struct {
	JoinCode string `json:"join_code"`
}

// Join handles POST /api/classrooms/join
func (h *ClassroomHandler) Join(w http.ResponseWriter, r *http.Request) {
	claims := GetClaimsFromContext(r.Context())

	var req joinRequest
	if err := decodeJSON(r, &req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body", "", err)
		return
	}

	classroom, err := h.classroomService.Join(claims.UserID, strings.TrimSpace(req.JoinCode))
	if err != nil {
		if errors.Is(err, service.ErrClassroomNotFound) {
			respondWithError(w, http.StatusNotFound, "No classroom with that join code", "", nil)
			return
		}
		respondWithError(w, http.StatusInternalServerError, "Failed to join classroom", "join failed", err)
		return
	}
	respondJSON(w, http.StatusOK, classroom)
}

// Roster handles GET /api/classrooms/{id}/roster
func (h *ClassroomHandler) Roster(w http.ResponseWriter, r *http.Request) {
	classroomID, ok := h.ownedClassroom(w, r)
	if !ok {
		return
	}

	roster, err := h.classroomService.Roster(classroomID)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Failed to load roster", "roster failed", err)
		return
	}
	respondJSON(w, http.StatusOK, roster)
}

type classDayRequest struct {
	Day string `json:"day"`
}

// AddClassDay handles POST /api/classrooms/{id}/class-days
func (h *ClassroomHandler) AddClassDay(w http.ResponseWriter, r *http.Request) {
	classroomID, ok := h.ownedClassroom(w, r)
	if !ok {
		return
	}

	var req classDayRequest
	if err := decodeJSON(r, &req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body", "", err)
		return
	}
	if !validDateKey(req.Day) {
		respondWithError(w, http.StatusBadRequest, "Day must be YYYY-MM-DD", "", nil)
		return
	}

	if err := h.classroomService.AddClassDay(classroomID, req.Day); err != nil {
		respondWithError(w, http.StatusInternalServerError, "Failed to add class day", "add class day failed", err)
		return
	}
	respondJSON(w, http.StatusCreated, map[string]string{"day": req.Day})
}

type attendanceRequest struct {
	UserID  int64  `json:"user_id"`
	Day     string `json:"day"`
	Present bool   `json:"present"`
}

// RecordAttendance handles POST /api/classrooms/{id}/attendance
func (h *ClassroomHandler) RecordAttendance(w http.ResponseWriter, r *http.Request) {
	classroomID, ok := h.ownedClassroom(w, r)
	if !ok {
		return
	}

	var req attendanceRequest
	if err := decodeJSON(r, &req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body", "", err)
		return
	}
	if !validDateKey(req.Day) {
		respondWithError(w, http.StatusBadRequest, "Day must be YYYY-MM-DD", "", nil)
		return
	}

	if err := h.classroomService.RecordAttendance(req.UserID, classroomID, req.Day, req.Present); err != nil {
		respondWithError(w, http.StatusInternalServerError, "Failed to record attendance", "record attendance failed", err)
		return
	}

	// Present marks also feed the attendance XP source, deduplicated per day
	// by the source's daily cap
	if req.Present {
		now := time.Now()
		state, err := h.worldService.GetOrCreate(req.UserID, classroomID, now)
		if err == nil {
			if _, err := h.rewardService.GrantXp(state.ID, "attendance", req.Day, now); err != nil {
				respondWithError(w, http.StatusInternalServerError, "Failed to grant attendance XP", "attendance grant failed", err)
				return
			}
		}
	}
	respondJSON(w, http.StatusOK, map[string]bool{"recorded": true})
}

type createAssignmentRequest struct {
	Title string    `json:"title"`
	DueAt time.Time `json:"due_at"`
}

// CreateAssignment handles POST /api/classrooms/{id}/assignments
func (h *ClassroomHandler) CreateAssignment(w http.ResponseWriter, r *http.Request) {
	classroomID, ok := h.ownedClassroom(w, r)
	if !ok {
		return
	}

	var req createAssignmentRequest
	if err := decodeJSON(r, &req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body", "", err)
		return
	}
	req.Title = strings.TrimSpace(req.Title)
	if req.Title == "" || req.DueAt.IsZero() {
		respondWithError(w, http.StatusBadRequest, "Title and due date are required", "", nil)
		return
	}

	assignment, err := h.classroomService.CreateAssignment(classroomID, req.Title, req.DueAt)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Failed to create assignment", "create assignment failed", err)
		return
	}
	respondJSON(w, http.StatusCreated, assignment)
}

// ListAssignments handles GET /api/classrooms/{id}/assignments
func (h *ClassroomHandler) ListAssignments(w http.ResponseWriter, r *http.Request) {
	classroomID, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	assignments, err := h.classroomService.ListAssignments(classroomID)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Failed to list assignments", "list assignments failed", err)
		return
	}
	respondJSON(w, http.StatusOK, assignments)
}

// SubmitAssignment handles POST /api/classrooms/{id}/assignments/{assignmentId}/submit
func (h *ClassroomHandler) SubmitAssignment(w http.ResponseWriter, r *http.Request) {
	claims := GetClaimsFromContext(r.Context())
	classroomID, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	assignmentID, ok := pathID(w, r, "assignmentId")
	if !ok {
		return
	}

	now := time.Now()
	state, err := h.worldService.GetOrCreate(claims.UserID, classroomID, now)
	if err != nil {
		respondWorldError(w, "Failed to load world", err)
		return
	}

	if err := h.classroomService.RecordSubmission(assignmentID, claims.UserID, now); err != nil {
		respondWithError(w, http.StatusInternalServerError, "Failed to record submission", "record submission failed", err)
		return
	}

	// Submission XP is keyed by assignment id, so resubmitting never
	// grants twice
	key := strconv.FormatInt(assignmentID, 10)
	result, err := h.rewardService.GrantXp(state.ID, "assignment_submitted", key, now)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Failed to grant submission XP", "submission grant failed", err)
		return
	}
	respondJSON(w, http.StatusOK, result)
}

// ownedClassroom parses the classroom id and verifies the caller teaches it
func (h *ClassroomHandler) ownedClassroom(w http.ResponseWriter, r *http.Request) (int64, bool) {
	claims := GetClaimsFromContext(r.Context())
	classroomID, ok := pathID(w, r, "id")
	if !ok {
		return 0, false
	}

	classroom, err := h.classroomService.Get(classroomID)
	if err != nil {
		respondWithError(w, http.StatusNotFound, "Classroom not found", "", nil)
		return 0, false
	}
	if classroom.TeacherID != claims.UserID {
		respondWithError(w, http.StatusForbidden, "You do not teach this classroom", "", nil)
		return 0, false
	}
	return classroomID, true
}

func validDateKey(day string) bool {
	_, err := time.Parse(timewindow.DateKeyFormat, day)
	return err == nil
}
