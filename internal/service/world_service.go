package service

import (
	"fmt"
	"time"

	"classquest/internal/gamify"
	"classquest/internal/models"
	"classquest/internal/repository"
	"classquest/internal/timewindow"
)

// WorldService owns the per-student world state lifecycle: lazy creation,
// the read snapshot, cosmetic selection, and the login streak.
type WorldService struct {
	worldRepo     *repository.WorldRepository
	rewardRepo    *repository.RewardRepository
	dailyRepo     *repository.DailyEventRepository
	weeklyRepo    *repository.WeeklyResultRepository
	classroomRepo *repository.ClassroomRepository
	ledgerRepo    *repository.XpEventRepository
	rewardService *RewardService
	calc          *timewindow.Calculator
	rules         *gamify.Config
}

// NewWorldService creates a new world service
func NewWorldService(worldRepo *repository.WorldRepository, rewardRepo *repository.RewardRepository, dailyRepo *repository.DailyEventRepository, weeklyRepo *repository.WeeklyResultRepository, classroomRepo *repository.ClassroomRepository, ledgerRepo *repository.XpEventRepository, rewardService *RewardService, calc *timewindow.Calculator, rules *gamify.Config) *WorldService {
	return &WorldService{
		worldRepo:     worldRepo,
		rewardRepo:    rewardRepo,
		dailyRepo:     dailyRepo,
		weeklyRepo:    weeklyRepo,
		classroomRepo: classroomRepo,
		ledgerRepo:    ledgerRepo,
		rewardService: rewardService,
		calc:          calc,
		rules:         rules,
	}
}

// Snapshot is the read model the student client renders from
type Snapshot struct {
	State       *models.WorldState   `json:"state"`
	Level       int                  `json:"level"`
	ProgressPct int                  `json:"progress_pct"`
	Unlocked    []int                `json:"unlocked"`
	TodayEvent  *models.DailyEvent   `json:"today_event,omitempty"`
	LatestWeek  *models.WeeklyResult `json:"latest_week,omitempty"`
	StreakDays  int                  `json:"streak_days"`
}

// GetOrCreate returns the world state for (user, classroom), creating it on
// first touch. A concurrent first touch loses the insert race on the unique
// key and recovers by re-reading the winner's row.
func (s *WorldService) GetOrCreate(userID, classroomID int64, now time.Time) (*models.WorldState, error) {
	enrolled, err := s.classroomRepo.IsEnrolled(userID, classroomID)
	if err != nil {
		return nil, fmt.Errorf("failed to check enrollment: %w", err)
	}
	if !enrolled {
		return nil, ErrNotEnrolled
	}

	state, err := s.worldRepo.GetByUserClassroom(userID, classroomID)
	if err != nil {
		return nil, fmt.Errorf("failed to load world state: %w", err)
	}
	if state != nil {
		return state, nil
	}

	id, err := s.worldRepo.Create(userID, classroomID, s.calc.NextDailyTrigger(now), s.calc.NextWeeklyTrigger(now))
	if err != nil {
		if s.worldRepo.IsDuplicate(err) {
			return s.worldRepo.GetByUserClassroom(userID, classroomID)
		}
		return nil, fmt.Errorf("failed to create world state: %w", err)
	}

	// Every fresh world starts with the base cosmetic unlocked
	if err := s.rewardRepo.InsertUnlock(id, 0); err != nil {
		return nil, fmt.Errorf("failed to seed base unlock: %w", err)
	}
	return s.worldRepo.GetByID(id)
}

// GetSnapshot assembles the full client view in one call
func (s *WorldService) GetSnapshot(userID, classroomID int64, now time.Time) (*Snapshot, error) {
	state, err := s.GetOrCreate(userID, classroomID, now)
	if err != nil {
		return nil, err
	}

	unlocked, err := s.rewardRepo.ListUnlockedIndices(state.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list unlocks: %w", err)
	}

	todayEvent, err := s.dailyRepo.GetForDay(state.ID, s.calc.TodayKey(now))
	if err != nil {
		return nil, fmt.Errorf("failed to load today's event: %w", err)
	}

	latest, err := s.weeklyRepo.LatestForState(state.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load latest weekly result: %w", err)
	}

	return &Snapshot{
		State:       state,
		Level:       gamify.Level(state.XP, s.rules.XPPerLevel),
		ProgressPct: gamify.Progress(state.XP, s.rules.XPPerLevel),
		Unlocked:    unlocked,
		TodayEvent:  todayEvent,
		LatestWeek:  latest,
		StreakDays:  state.StreakDays,
	}, nil
}

// SetOverlayEnabled toggles the cosmetic overlay for the student's world
func (s *WorldService) SetOverlayEnabled(userID, classroomID int64, enabled bool, now time.Time) error {
	state, err := s.GetOrCreate(userID, classroomID, now)
	if err != nil {
		return err
	}
	return s.worldRepo.SetOverlayEnabled(state.ID, enabled)
}

// SelectImage switches the displayed cosmetic. The index must already be in
// the unlock set.
func (s *WorldService) SelectImage(userID, classroomID int64, imageIndex int, now time.Time) error {
	state, err := s.GetOrCreate(userID, classroomID, now)
	if err != nil {
		return err
	}

	owned, err := s.rewardRepo.HasUnlock(state.ID, imageIndex)
	if err != nil {
		return fmt.Errorf("failed to check unlock: %w", err)
	}
	if !owned {
		return ErrNotUnlocked
	}
	return s.worldRepo.SetSelectedImage(state.ID, imageIndex)
}

// RecordLogin marks today as a login day, extends or resets the streak, and
// grants the daily login XP. Repeat logins on the same engine-timezone day
// are no-ops.
func (s *WorldService) RecordLogin(userID, classroomID int64, now time.Time) (*models.WorldState, error) {
	state, err := s.GetOrCreate(userID, classroomID, now)
	if err != nil {
		return nil, err
	}

	today := s.calc.TodayKey(now)
	if state.LastLoginDay != nil && *state.LastLoginDay == today {
		return state, nil
	}

	streak := 1
	if state.LastLoginDay != nil && *state.LastLoginDay == previousDayKey(today) {
		streak = state.StreakDays + 1
	}

	if err := s.worldRepo.UpdateLogin(state.ID, today, streak); err != nil {
		return nil, fmt.Errorf("failed to record login: %w", err)
	}

	// The source's daily cap equals its amount, so once one login grant
	// lands no further daily_login XP can accrue that day. The date key is
	// recorded as ledger context.
	if _, err := s.rewardService.GrantXp(state.ID, "daily_login", today, now); err != nil {
		return nil, err
	}

	if streak > 0 && streak%5 == 0 {
		key := fmt.Sprintf("streak_%d", streak)
		if _, err := s.rewardService.GrantXp(state.ID, "streak_milestone", key, now); err != nil {
			return nil, err
		}
	}

	return s.worldRepo.GetByID(state.ID)
}

// Ledger returns the most recent XP ledger rows for the student's world
func (s *WorldService) Ledger(userID, classroomID int64, limit int, now time.Time) ([]models.XpEvent, error) {
	state, err := s.GetOrCreate(userID, classroomID, now)
	if err != nil {
		return nil, err
	}
	return s.ledgerRepo.ListForState(state.ID, limit)
}

func previousDayKey(dayKey string) string {
	t, err := time.Parse(timewindow.DateKeyFormat, dayKey)
	if err != nil {
		return ""
	}
	return t.AddDate(0, 0, -1).Format(timewindow.DateKeyFormat)
}
