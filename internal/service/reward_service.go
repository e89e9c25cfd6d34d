package service

import (
	"fmt"
	"time"

	"classquest/internal/gamify"
	"classquest/internal/models"
	"classquest/internal/repository"
	"classquest/internal/timewindow"
)

// RewardService is the idempotency layer in front of the XP ledger. Every
// grant path runs ledger insert, then one atomic increment, then the unlock
// diff, in that order, so a caller can never observe a raised level without
// the ledger entry that explains it.
type RewardService struct {
	worldRepo  *repository.WorldRepository
	ledgerRepo *repository.XpEventRepository
	rewardRepo *repository.RewardRepository
	calc       *timewindow.Calculator
	rules      *gamify.Config
}

// NewRewardService creates a new reward service
func NewRewardService(worldRepo *repository.WorldRepository, ledgerRepo *repository.XpEventRepository, rewardRepo *repository.RewardRepository, calc *timewindow.Calculator, rules *gamify.Config) *RewardService {
	return &RewardService{
		worldRepo:  worldRepo,
		ledgerRepo: ledgerRepo,
		rewardRepo: rewardRepo,
		calc:       calc,
		rules:      rules,
	}
}

// GrantXp grants the configured amount for a source, subject to the
// source's daily cap and single-instance rule. A capped or duplicate grant
// is a successful no-op, not an error.
func (s *RewardService) GrantXp(stateID int64, source, metadata string, now time.Time) (*models.GrantResult, error) {
	rule, ok := s.rules.Source(source)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownSource, source)
	}

	amount := rule.XP

	if rule.DailyCap > 0 {
		dayEnd := s.calc.StartOfNextDay(now)
		dayStart := dayEnd.AddDate(0, 0, -1)
		granted, err := s.ledgerRepo.SumForSourceBetween(stateID, source, dayStart, dayEnd)
		if err != nil {
			return nil, fmt.Errorf("failed to sum daily ledger for %s: %w", source, err)
		}
		if granted >= rule.DailyCap {
			return &models.GrantResult{}, nil
		}
		// Clamp so the day's cumulative amount never exceeds the cap
		if granted+amount > rule.DailyCap {
			amount = rule.DailyCap - granted
		}
	}

	if rule.PerKey && metadata != "" {
		exists, err := s.ledgerRepo.ExistsForSourceKey(stateID, source, metadata)
		if err != nil {
			return nil, fmt.Errorf("failed to check ledger for %s: %w", source, err)
		}
		if exists {
			return &models.GrantResult{}, nil
		}
	}

	if amount <= 0 {
		return &models.GrantResult{}, nil
	}

	if _, err := s.ledgerRepo.Insert(stateID, source, amount, metadata, now); err != nil {
		return nil, fmt.Errorf("failed to append ledger row: %w", err)
	}

	newLevel, newUnlocks, err := s.applyIncrement(stateID, amount)
	if err != nil {
		return nil, err
	}

	return &models.GrantResult{
		Granted:    true,
		XPAwarded:  amount,
		NewLevel:   newLevel,
		NewUnlocks: newUnlocks,
	}, nil
}

// GrantAchievements grants a batch of discrete achievements. Each item is
// guarded by its (rewardType, rewardKey) idempotency record; already-granted
// items are skipped silently. The whole batch applies exactly one atomic XP
// increment and one unlock diff, regardless of how many items landed.
func (s *RewardService) GrantAchievements(stateID int64, items []models.AchievementItem, now time.Time) (*models.GrantResult, error) {
	totalXP := 0
	anyGranted := false

	for _, item := range items {
		inserted, err := s.rewardRepo.InsertGrant(stateID, item.RewardType, item.RewardKey)
		if err != nil {
			return nil, fmt.Errorf("failed to record grant %s/%s: %w", item.RewardType, item.RewardKey, err)
		}
		if !inserted {
			continue
		}
		anyGranted = true

		// Zero-XP grants keep the idempotency record but no ledger row
		if item.XP <= 0 {
			continue
		}
		if _, err := s.ledgerRepo.Insert(stateID, item.RewardType, item.XP, item.RewardKey, now); err != nil {
			return nil, fmt.Errorf("failed to append ledger row for %s/%s: %w", item.RewardType, item.RewardKey, err)
		}
		totalXP += item.XP
	}

	result := &models.GrantResult{Granted: anyGranted}
	if totalXP == 0 {
		return result, nil
	}

	newLevel, newUnlocks, err := s.applyIncrement(stateID, totalXP)
	if err != nil {
		return nil, err
	}
	result.XPAwarded = totalXP
	result.NewLevel = newLevel
	result.NewUnlocks = newUnlocks
	return result, nil
}

// applyIncrement performs the single atomic XP increment followed by the
// unlock diff
func (s *RewardService) applyIncrement(stateID int64, amount int) (int, []int, error) {
	existing, err := s.rewardRepo.ListUnlockedIndices(stateID)
	if err != nil {
		return 0, nil, fmt.Errorf("failed to list unlocks: %w", err)
	}

	newXP, err := s.worldRepo.AddXP(stateID, amount)
	if err != nil {
		return 0, nil, fmt.Errorf("failed to increment xp: %w", err)
	}

	newLevel := gamify.Level(newXP, s.rules.XPPerLevel)
	fresh := gamify.NewUnlocks(existing, newLevel, s.rules.UnlockThresholds)
	if err := s.rewardRepo.InsertUnlocks(stateID, fresh); err != nil {
		return 0, nil, fmt.Errorf("failed to insert unlocks: %w", err)
	}
	return newLevel, fresh, nil
}
