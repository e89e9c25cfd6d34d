package service

import (
	"context"
	"fmt"
	"log"
	"math/rand"
	"time"

	"classquest/internal/gamify"
	"classquest/internal/models"
	"classquest/internal/repository"
	"classquest/internal/timewindow"
)

// WeeklyService scores the trailing week for a world state and pays out the
// tier rewards. The whole evaluation is idempotent per (state, week start):
// the bonus is routed through a reward grant keyed on the week, and the
// result row sits behind a unique constraint, so a re-run or a concurrent
// evaluator changes nothing.
type WeeklyService struct {
	worldRepo      *repository.WorldRepository
	weeklyRepo     *repository.WeeklyResultRepository
	dailyRepo      *repository.DailyEventRepository
	attendanceRepo *repository.AttendanceRepository
	assignmentRepo *repository.AssignmentRepository
	userRepo       *repository.UserRepository
	classroomRepo  *repository.ClassroomRepository
	rewardService  *RewardService
	emailService   *EmailService
	calc           *timewindow.Calculator
	rules          *gamify.Config
	rnd            *rand.Rand
}

// NewWeeklyService creates a new weekly evaluation service
func NewWeeklyService(worldRepo *repository.WorldRepository, weeklyRepo *repository.WeeklyResultRepository, dailyRepo *repository.DailyEventRepository, attendanceRepo *repository.AttendanceRepository, assignmentRepo *repository.AssignmentRepository, userRepo *repository.UserRepository, classroomRepo *repository.ClassroomRepository, rewardService *RewardService, emailService *EmailService, calc *timewindow.Calculator, rules *gamify.Config) *WeeklyService {
	return &WeeklyService{
		worldRepo:      worldRepo,
		weeklyRepo:     weeklyRepo,
		dailyRepo:      dailyRepo,
		attendanceRepo: attendanceRepo,
		assignmentRepo: assignmentRepo,
		userRepo:       userRepo,
		classroomRepo:  classroomRepo,
		rewardService:  rewardService,
		emailService:   emailService,
		calc:           calc,
		rules:          rules,
		rnd:            rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// recentEventWindow bounds how far back the cooldown exclusion set looks
const recentEventWindow = 12

// Evaluate scores the trailing week for the state. Returns true when this
// call produced the week's result, false when the week was already scored
// or a concurrent evaluator won.
func (s *WeeklyService) Evaluate(state *models.WorldState, now time.Time) (bool, error) {
	weekStart, weekEnd := s.calc.WeekWindow(now)

	existing, err := s.weeklyRepo.GetByWeekStart(state.ID, weekStart)
	if err != nil {
		return false, fmt.Errorf("failed to check existing result: %w", err)
	}
	if existing != nil {
		if err := s.worldRepo.UpdateWeeklySchedule(state.ID, s.calc.NextWeeklyTrigger(now)); err != nil {
			return false, fmt.Errorf("failed to advance weekly schedule: %w", err)
		}
		return false, nil
	}

	attendance, err := s.scoreAttendance(state, weekStart, weekEnd)
	if err != nil {
		return false, err
	}
	assignment, err := s.scoreAssignments(state, weekStart, weekEnd)
	if err != nil {
		return false, err
	}
	care, err := s.scoreCare(state, weekStart, weekEnd)
	if err != nil {
		return false, err
	}

	earned, available, present := 0, 0, 0
	for _, bucket := range []*models.BucketScore{attendance, assignment, care} {
		if bucket == nil {
			continue
		}
		present++
		earned += bucket.Points
		available += bucket.Available
	}

	// A week with no scorable buckets is valid: lowest tier, no percentage
	weeklyPct := 0.0
	if available > 0 {
		weeklyPct = float64(earned) / float64(available) * 100
	}
	tier := gamify.ResolveTier(weeklyPct, present, s.rules.TierThresholds)
	reward := s.rules.TierRewards[tier]

	// The grant keyed on the week start is the evaluation's commit point:
	// of two concurrent evaluators exactly one inserts it, and only that
	// one applies the bonus, the track points and the result row.
	grant, err := s.rewardService.GrantAchievements(state.ID, []models.AchievementItem{
		{RewardType: "weekly_bonus", RewardKey: weekStart, XP: reward.BonusXP},
	}, now)
	if err != nil {
		return false, err
	}
	if !grant.Granted {
		if err := s.worldRepo.UpdateWeeklySchedule(state.ID, s.calc.NextWeeklyTrigger(now)); err != nil {
			return false, fmt.Errorf("failed to advance weekly schedule: %w", err)
		}
		return false, nil
	}

	if reward.TrackPoints > 0 {
		if err := s.worldRepo.AddTrackPoints(state.ID, reward.TrackPoints, s.rules.TrackPointsPerLevel); err != nil {
			return false, fmt.Errorf("failed to add track points: %w", err)
		}
	}

	eventKey, err := s.pickNarrativeEvent(state.ID, weekStart, tier)
	if err != nil {
		return false, err
	}

	result := &models.WeeklyResult{
		StateID:            state.ID,
		WeekStart:          weekStart,
		WeekEnd:            weekEnd,
		Attendance:         attendance,
		Assignment:         assignment,
		Care:               care,
		EarnedPoints:       earned,
		AvailablePoints:    available,
		WeeklyPct:          weeklyPct,
		Tier:               string(tier),
		EventKey:           eventKey,
		BonusXP:            reward.BonusXP,
		TrackPointsAwarded: reward.TrackPoints,
	}
	inserted, err := s.weeklyRepo.Insert(result)
	if err != nil {
		return false, fmt.Errorf("failed to store weekly result: %w", err)
	}

	if err := s.worldRepo.UpdateWeeklySchedule(state.ID, s.calc.NextWeeklyTrigger(now)); err != nil {
		return false, fmt.Errorf("failed to advance weekly schedule: %w", err)
	}

	if inserted {
		s.sendDigest(state, result)
	}
	return inserted, nil
}

// scoreAttendance returns nil when the classroom scheduled no class days in
// the window
func (s *WeeklyService) scoreAttendance(state *models.WorldState, weekStart, weekEnd string) (*models.BucketScore, error) {
	scheduled, err := s.attendanceRepo.ScheduledDayCount(state.ClassroomID, weekStart, weekEnd)
	if err != nil {
		return nil, fmt.Errorf("failed to count class days: %w", err)
	}
	if scheduled == 0 {
		return nil, nil
	}

	attended, err := s.attendanceRepo.AttendedDayCount(state.UserID, state.ClassroomID, weekStart, weekEnd)
	if err != nil {
		return nil, fmt.Errorf("failed to count attended days: %w", err)
	}

	ratio := float64(attended) / float64(scheduled)
	return &models.BucketScore{
		Points:    s.rules.AttendanceCurve.Score(ratio),
		Available: gamify.BucketMaxPoints,
	}, nil
}

// scoreAssignments returns nil when nothing was due in the window
func (s *WeeklyService) scoreAssignments(state *models.WorldState, weekStart, weekEnd string) (*models.BucketScore, error) {
	from, to, err := s.windowBounds(weekStart, weekEnd)
	if err != nil {
		return nil, err
	}

	due, err := s.assignmentRepo.DueCount(state.ClassroomID, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to count due assignments: %w", err)
	}
	if due == 0 {
		return nil, nil
	}

	onTime, err := s.assignmentRepo.OnTimeSubmissionCount(state.UserID, state.ClassroomID, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to count on-time submissions: %w", err)
	}

	ratio := float64(onTime) / float64(due)
	return &models.BucketScore{
		Points:    s.rules.AssignmentCurve.Score(ratio),
		Available: gamify.BucketMaxPoints,
	}, nil
}

// scoreCare returns nil when no daily events were spawned in the window
func (s *WeeklyService) scoreCare(state *models.WorldState, weekStart, weekEnd string) (*models.BucketScore, error) {
	eligible, err := s.dailyRepo.CountInWindow(state.ID, weekStart, weekEnd)
	if err != nil {
		return nil, fmt.Errorf("failed to count daily events: %w", err)
	}
	if eligible == 0 {
		return nil, nil
	}

	claimed, err := s.dailyRepo.CountClaimedInWindow(state.ID, weekStart, weekEnd)
	if err != nil {
		return nil, fmt.Errorf("failed to count claimed events: %w", err)
	}

	ratio := float64(claimed) / float64(eligible)
	return &models.BucketScore{
		Points:    s.rules.CareCurve.Score(ratio),
		Available: gamify.BucketMaxPoints,
	}, nil
}

// pickNarrativeEvent selects the week's narrative event key, honoring era
// gating and per-entry cooldowns. Returns nil when the tier pool is empty.
func (s *WeeklyService) pickNarrativeEvent(stateID int64, weekStart string, tier gamify.Tier) (*string, error) {
	// Re-read after the track-point payout so era gating sees this week's
	// progression
	fresh, err := s.worldRepo.GetByID(stateID)
	if err != nil {
		return nil, fmt.Errorf("failed to reload state: %w", err)
	}
	era := gamify.EraForTrackLevel(fresh.WeeklyTrackLevel, s.rules.EraThresholds)

	recent, err := s.weeklyRepo.RecentWithEventKeys(stateID, recentEventWindow)
	if err != nil {
		return nil, fmt.Errorf("failed to load recent event keys: %w", err)
	}

	thisWeek, err := timewindow.DayIndex(weekStart)
	if err != nil {
		return nil, err
	}
	recentKeys := make(map[string]int)
	for _, r := range recent {
		pastWeek, err := timewindow.DayIndex(r.WeekStart)
		if err != nil {
			continue
		}
		weeksAgo := (thisWeek - pastWeek) / 7
		if weeksAgo <= 0 {
			continue
		}
		// Keep the most recent use of each key
		if prior, seen := recentKeys[*r.EventKey]; !seen || weeksAgo < prior {
			recentKeys[*r.EventKey] = weeksAgo
		}
	}

	key, ok := gamify.SelectWeeklyEvent(s.rules.WeeklyCatalog, tier, era, recentKeys, s.rnd)
	if !ok {
		return nil, nil
	}
	return &key, nil
}

// windowBounds converts inclusive date keys to the [from, to) instant range
// covering those days in the engine timezone
func (s *WeeklyService) windowBounds(weekStart, weekEnd string) (time.Time, time.Time, error) {
	loc := s.calc.Location()
	from, err := time.ParseInLocation(timewindow.DateKeyFormat, weekStart, loc)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid week start %q: %w", weekStart, err)
	}
	endDay, err := time.ParseInLocation(timewindow.DateKeyFormat, weekEnd, loc)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid week end %q: %w", weekEnd, err)
	}
	return from, endDay.AddDate(0, 0, 1), nil
}

// sendDigest emails the week's summary to the student. Delivery is best
// effort and never fails the evaluation.
func (s *WeeklyService) sendDigest(state *models.WorldState, result *models.WeeklyResult) {
	if s.emailService == nil || !s.emailService.IsEnabled() {
		return
	}

	user, err := s.userRepo.GetByID(state.UserID)
	if err != nil {
		log.Printf("weekly digest: failed to load user %d: %v", state.UserID, err)
		return
	}
	classroom, err := s.classroomRepo.GetByID(state.ClassroomID)
	if err != nil {
		log.Printf("weekly digest: failed to load classroom %d: %v", state.ClassroomID, err)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := s.emailService.SendWeeklyDigest(ctx, user.Email, user.DisplayName, classroom.Name, result); err != nil {
		log.Printf("weekly digest: failed to send to %s: %v", user.Email, err)
	}
}
