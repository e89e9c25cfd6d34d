package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"classquest/internal/models"
	"classquest/internal/service"
)

// WorldHandler serves the student-facing world endpoints and the
// teacher-facing grant endpoints
type WorldHandler struct {
	worldService     *service.WorldService
	rewardService    *service.RewardService
	dailyService     *service.DailyService
	classroomService *service.ClassroomService
}

// NewWorldHandler creates a new world handler
func NewWorldHandler(worldService *service.WorldService, rewardService *service.RewardService, dailyService *service.DailyService, classroomService *service.ClassroomService) *WorldHandler {
	return &WorldHandler{
		worldService:     worldService,
		rewardService:    rewardService,
		dailyService:     dailyService,
		classroomService: classroomService,
	}
}

const defaultLedgerLimit = 50

// Snapshot handles GET /api/classrooms/{id}/world
func (h *WorldHandler) Snapshot(w http.ResponseWriter, r *http.Request) {
	claims := GetClaimsFromContext(r.Context())
	classroomID, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	snapshot, err := h.worldService.GetSnapshot(claims.UserID, classroomID, time.Now())
	if err != nil {
		respondWorldError(w, "Failed to load world", err)
		return
	}
	respondJSON(w, http.StatusOK, snapshot)
}

// RecordLogin handles POST /api/classrooms/{id}/world/login
func (h *WorldHandler) RecordLogin(w http.ResponseWriter, r *http.Request) {
	claims := GetClaimsFromContext(r.Context())
	classroomID, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	state, err := h.worldService.RecordLogin(claims.UserID, classroomID, time.Now())
	if err != nil {
		respondWorldError(w, "Failed to record login", err)
		return
	}
	respondJSON(w, http.StatusOK, state)
}

// ClaimDaily handles POST /api/classrooms/{id}/world/daily/claim
func (h *WorldHandler) ClaimDaily(w http.ResponseWriter, r *http.Request) {
	claims := GetClaimsFromContext(r.Context())
	classroomID, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	now := time.Now()
	state, err := h.worldService.GetOrCreate(claims.UserID, classroomID, now)
	if err != nil {
		respondWorldError(w, "Failed to load world", err)
		return
	}

	event, grant, err := h.dailyService.Claim(state, now)
	if err != nil {
		respondWorldError(w, "Failed to claim daily event", err)
		return
	}
	if event == nil {
		respondJSON(w, http.StatusOK, map[string]bool{"claimed": false})
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"claimed": true,
		"event":   event,
		"grant":   grant,
	})
}

type overlayRequest struct {
	Enabled bool `json:"enabled"`
}

// SetOverlay handles PUT /api/classrooms/{id}/world/overlay
func (h *WorldHandler) SetOverlay(w http.ResponseWriter, r *http.Request) {
	claims := GetClaimsFromContext(r.Context())
	classroomID, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	var req overlayRequest
	if err := decodeJSON(r, &req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body", "", err)
		return
	}

	if err := h.worldService.SetOverlayEnabled(claims.UserID, classroomID, req.Enabled, time.Now()); err != nil {
		respondWorldError(w, "Failed to update overlay", err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]bool{"overlay_enabled": req.Enabled})
}

type selectImageRequest struct {
	ImageIndex int `json:"image_index"`
}

// SelectImage handles PUT /api/classrooms/{id}/world/image
func (h *WorldHandler) SelectImage(w http.ResponseWriter, r *http.Request) {
	claims := GetClaimsFromContext(r.Context())
	classroomID, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	var req selectImageRequest
	if err := decodeJSON(r, &req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body", "", err)
		return
	}

	err := h.worldService.SelectImage(claims.UserID, classroomID, req.ImageIndex, time.Now())
	if err != nil {
		if errors.Is(err, service.ErrNotUnlocked) {
			respondWithError(w, http.StatusConflict, "Image is not unlocked yet", "", nil)
			return
		}
		respondWorldError(w, "Failed to select image", err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]int{"selected_image": req.ImageIndex})
}

// Ledger handles GET /api/classrooms/{id}/world/ledger
func (h *WorldHandler) Ledger(w http.ResponseWriter, r *http.Request) {
	claims := GetClaimsFromContext(r.Context())
	classroomID, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	limit := defaultLedgerLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 || parsed > 500 {
			respondWithError(w, http.StatusBadRequest, "Invalid limit", "", nil)
			return
		}
		limit = parsed
	}

	events, err := h.worldService.Ledger(claims.UserID, classroomID, limit, time.Now())
	if err != nil {
		respondWorldError(w, "Failed to load ledger", err)
		return
	}
	respondJSON(w, http.StatusOK, events)
}

type grantXpRequest struct {
	Source   string `json:"source"`
	Metadata string `json:"metadata"`
}

// GrantXp handles POST /api/classrooms/{id}/students/{userId}/xp
func (h *WorldHandler) GrantXp(w http.ResponseWriter, r *http.Request) {
	classroomID, studentID, ok := h.teacherStudentPath(w, r)
	if !ok {
		return
	}

	var req grantXpRequest
	if err := decodeJSON(r, &req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body", "", err)
		return
	}

	now := time.Now()
	state, err := h.worldService.GetOrCreate(studentID, classroomID, now)
	if err != nil {
		respondWorldError(w, "Failed to load student world", err)
		return
	}

	result, err := h.rewardService.GrantXp(state.ID, req.Source, req.Metadata, now)
	if err != nil {
		if errors.Is(err, service.ErrUnknownSource) {
			respondWithError(w, http.StatusBadRequest, "Unknown XP source", "", nil)
			return
		}
		respondWithError(w, http.StatusInternalServerError, "Failed to grant XP", "grant xp failed", err)
		return
	}
	respondJSON(w, http.StatusOK, result)
}

type grantAchievementsRequest struct {
	Items []models.AchievementItem `json:"items"`
}

// GrantAchievements handles POST /api/classrooms/{id}/students/{userId}/achievements
func (h *WorldHandler) GrantAchievements(w http.ResponseWriter, r *http.Request) {
	classroomID, studentID, ok := h.teacherStudentPath(w, r)
	if !ok {
		return
	}

	var req grantAchievementsRequest
	if err := decodeJSON(r, &req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body", "", err)
		return
	}
	if len(req.Items) == 0 {
		respondWithError(w, http.StatusBadRequest, "Items are required", "", nil)
		return
	}
	for _, item := range req.Items {
		if item.RewardType == "" || item.RewardKey == "" {
			respondWithError(w, http.StatusBadRequest, "Each item needs a reward type and key", "", nil)
			return
		}
	}

	now := time.Now()
	state, err := h.worldService.GetOrCreate(studentID, classroomID, now)
	if err != nil {
		respondWorldError(w, "Failed to load student world", err)
		return
	}

	result, err := h.rewardService.GrantAchievements(state.ID, req.Items, now)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Failed to grant achievements", "grant achievements failed", err)
		return
	}
	respondJSON(w, http.StatusOK, result)
}

// teacherStudentPath parses the classroom and student ids and verifies the
// caller teaches the classroom
func (h *WorldHandler) teacherStudentPath(w http.ResponseWriter, r *http.Request) (classroomID, studentID int64, ok bool) {
	claims := GetClaimsFromContext(r.Context())

	classroomID, ok = pathID(w, r, "id")
	if !ok {
		return 0, 0, false
	}
	studentID, ok = pathID(w, r, "userId")
	if !ok {
		return 0, 0, false
	}

	classroom, err := h.classroomService.Get(classroomID)
	if err != nil {
		respondWithError(w, http.StatusNotFound, "Classroom not found", "", nil)
		return 0, 0, false
	}
	if classroom.TeacherID != claims.UserID {
		respondWithError(w, http.StatusForbidden, "You do not teach this classroom", "", nil)
		return 0, 0, false
	}
	return classroomID, studentID, true
}

func respondWorldError(w http.ResponseWriter, userMsg string, err error) {
	if errors.Is(err, service.ErrNotEnrolled) {
		respondWithError(w, http.StatusForbidden, "Not enrolled in this classroom", "", nil)
		return
	}
	respondWithError(w, http.StatusInternalServerError, userMsg, "", err)
}

func pathID(w http.ResponseWriter, r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue(name), 10, 64)
	if err != nil || id < 1 {
		respondWithError(w, http.StatusBadRequest, "Invalid id in path", "", nil)
		return 0, false
	}
	return id, true
}
