package service

import (
	"fmt"
	"time"

	"classquest/internal/gamify"
	"classquest/internal/models"
	"classquest/internal/repository"
	"classquest/internal/timewindow"
)

// DailyService runs the daily care event lifecycle: spawn, claim, expire.
// Spawning is keyed on (state, day) so a late or repeated tick can never
// produce a second event, and claiming goes through a conditional status
// transition so only one claimer wins.
type DailyService struct {
	worldRepo     *repository.WorldRepository
	dailyRepo     *repository.DailyEventRepository
	rewardService *RewardService
	calc          *timewindow.Calculator
	rules         *gamify.Config
}

// NewDailyService creates a new daily event service
func NewDailyService(worldRepo *repository.WorldRepository, dailyRepo *repository.DailyEventRepository, rewardService *RewardService, calc *timewindow.Calculator, rules *gamify.Config) *DailyService {
	return &DailyService{
		worldRepo:     worldRepo,
		dailyRepo:     dailyRepo,
		rewardService: rewardService,
		calc:          calc,
		rules:         rules,
	}
}

// SpawnIfMissing creates today's event for the state if none exists. The
// schedule pointer advances whether or not a new row was inserted, so a
// state that already has today's event stops showing up as due.
func (s *DailyService) SpawnIfMissing(state *models.WorldState, now time.Time) (bool, error) {
	today := s.calc.TodayKey(now)
	dayIndex, err := timewindow.DayIndex(today)
	if err != nil {
		return false, fmt.Errorf("failed to compute day index: %w", err)
	}

	eventKey := gamify.DailyEventKey(dayIndex, s.rules.DailyEventKeys)
	inserted, err := s.dailyRepo.Insert(state.ID, today, eventKey, s.calc.StartOfNextDay(now))
	if err != nil {
		return false, fmt.Errorf("failed to spawn daily event: %w", err)
	}

	if err := s.worldRepo.UpdateDailySchedule(state.ID, s.calc.NextDailyTrigger(now)); err != nil {
		return false, fmt.Errorf("failed to advance daily schedule: %w", err)
	}
	return inserted, nil
}

// Claim attempts to claim today's event for the state. It returns the event
// and the resulting XP grant on success, or (nil, nil) when there is nothing
// claimable: no event today, already claimed, expired, or a concurrent
// claimer won.
func (s *DailyService) Claim(state *models.WorldState, now time.Time) (*models.DailyEvent, *models.GrantResult, error) {
	today := s.calc.TodayKey(now)
	event, err := s.dailyRepo.GetForDay(state.ID, today)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load daily event: %w", err)
	}
	if event == nil || event.Status != models.DailyStatusClaimable {
		return nil, nil, nil
	}

	if now.After(event.ClaimableUntil) {
		if err := s.dailyRepo.Expire(event.ID); err != nil {
			return nil, nil, fmt.Errorf("failed to expire daily event: %w", err)
		}
		return nil, nil, nil
	}

	won, err := s.dailyRepo.Claim(event.ID, now)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to claim daily event: %w", err)
	}
	if !won {
		return nil, nil, nil
	}

	event.Status = models.DailyStatusClaimed
	event.ClaimedAt = &now

	metadata := fmt.Sprintf("%d:%s", event.ID, event.EventKey)
	result, err := s.rewardService.GrantXp(state.ID, "daily_care", metadata, now)
	if err != nil {
		return nil, nil, err
	}
	return event, result, nil
}

// ExpireStale sweeps claimable events from past days into expired
func (s *DailyService) ExpireStale(now time.Time) (int64, error) {
	return s.dailyRepo.ExpireStale(s.calc.TodayKey(now))
}
