package gamify

import (
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"
)

// BucketMaxPoints is the score ceiling for one weekly bucket
const BucketMaxPoints = 100

// SourceRule configures one XP source: the fixed amount it grants, an
// optional daily cap on the cumulative amount from that source, and whether
// the source is single-instance per metadata key (e.g. one grant per
// assignment id).
type SourceRule struct {
	XP       int  `yaml:"xp"`
	DailyCap int  `yaml:"daily_cap"` // 0 = uncapped
	PerKey   bool `yaml:"per_key"`
}

// TierReward is the fixed payout for finishing a week in a tier
type TierReward struct {
	BonusXP     int `yaml:"bonus_xp"`
	TrackPoints int `yaml:"track_points"`
}

// WeeklyEventDef is one entry of the weekly narrative catalog
type WeeklyEventDef struct {
	Key           string  `yaml:"key"`
	Tier          Tier    `yaml:"tier"`
	MinEra        int     `yaml:"min_era"`
	Weight        float64 `yaml:"weight"`
	CooldownWeeks int     `yaml:"cooldown_weeks"`
}

// CurvePoint is one step of a bucket scoring curve: ratios at or above
// MinRatio score at least Points
type CurvePoint struct {
	MinRatio float64 `yaml:"min_ratio"`
	Points   int     `yaml:"points"`
}

// Curve is a monotonic step curve mapping a 0-1 ratio to 0-100 points
type Curve []CurvePoint

// Score maps a raw bucket ratio to points: the highest step whose MinRatio
// the ratio reaches. Ratios below every step score zero.
func (c Curve) Score(ratio float64) int {
	best := 0
	bestRatio := -1.0
	for _, p := range c {
		if ratio >= p.MinRatio && p.MinRatio > bestRatio {
			best = p.Points
			bestRatio = p.MinRatio
		}
	}
	return best
}

// Config is the full gamification rule set: leveling constants, XP sources,
// the daily care catalog, weekly scoring curves, tier tables and the weekly
// narrative catalog. The engine treats all of it as injectable data.
type Config struct {
	XPPerLevel       int                   `yaml:"xp_per_level"`
	UnlockThresholds []int                 `yaml:"unlock_thresholds"`
	Sources          map[string]SourceRule `yaml:"sources"`

	DailyEventXP   int      `yaml:"daily_event_xp"`
	DailyEventKeys []string `yaml:"daily_event_keys"`

	TierThresholds      TierThresholds      `yaml:"tier_thresholds"`
	TierRewards         map[Tier]TierReward `yaml:"tier_rewards"`
	TrackPointsPerLevel int                 `yaml:"track_points_per_level"`
	EraThresholds       []int               `yaml:"era_thresholds"`
	WeeklyCatalog       []WeeklyEventDef    `yaml:"weekly_catalog"`

	AttendanceCurve Curve `yaml:"attendance_curve"`
	AssignmentCurve Curve `yaml:"assignment_curve"`
	CareCurve       Curve `yaml:"care_curve"`
}

// DefaultConfig returns the shipped rule set. catalog.yaml overrides it
// wholesale when present.
func DefaultConfig() *Config {
	return &Config{
		XPPerLevel:       100,
		UnlockThresholds: []int{0, 1, 3, 5, 8, 12, 17, 23, 30},
		Sources: map[string]SourceRule{
			"daily_login":          {XP: 5, DailyCap: 5},
			"attendance":           {XP: 10, DailyCap: 10},
			"assignment_submitted": {XP: 15, PerKey: true},
			"assignment_on_time":   {XP: 10, PerKey: true},
			"quiz_completed":       {XP: 15, PerKey: true},
			"daily_care":           {XP: 10, DailyCap: 10},
			"streak_milestone":     {XP: 20, PerKey: true},
			"weekly_bonus":         {XP: 0},
		},
		DailyEventXP: 10,
		DailyEventKeys: []string{
			"water_garden", "feed_companion", "tidy_desk", "stargaze",
			"plant_seed", "campfire_story", "morning_stretch",
		},
		TierThresholds: TierThresholds{Silver: 40, Gold: 70, Platinum: 90},
		TierRewards: map[Tier]TierReward{
			TierBronze:   {BonusXP: 0, TrackPoints: 1},
			TierSilver:   {BonusXP: 15, TrackPoints: 2},
			TierGold:     {BonusXP: 30, TrackPoints: 3},
			TierPlatinum: {BonusXP: 50, TrackPoints: 5},
		},
		TrackPointsPerLevel: 10,
		EraThresholds:       []int{0, 3, 8, 15},
		WeeklyCatalog: []WeeklyEventDef{
			{Key: "quiet_week", Tier: TierBronze, MinEra: 0, Weight: 1, CooldownWeeks: 0},
			{Key: "seed_sprouts", Tier: TierSilver, MinEra: 0, Weight: 3, CooldownWeeks: 1},
			{Key: "friendly_visitor", Tier: TierSilver, MinEra: 1, Weight: 2, CooldownWeeks: 2},
			{Key: "harvest_day", Tier: TierGold, MinEra: 0, Weight: 3, CooldownWeeks: 1},
			{Key: "traveling_fair", Tier: TierGold, MinEra: 1, Weight: 2, CooldownWeeks: 3},
			{Key: "aurora_night", Tier: TierGold, MinEra: 2, Weight: 1, CooldownWeeks: 4},
			{Key: "golden_festival", Tier: TierPlatinum, MinEra: 0, Weight: 3, CooldownWeeks: 2},
			{Key: "comet_sighting", Tier: TierPlatinum, MinEra: 2, Weight: 1, CooldownWeeks: 6},
		},
		AttendanceCurve: Curve{
			{MinRatio: 0.5, Points: 40},
			{MinRatio: 0.8, Points: 70},
			{MinRatio: 0.95, Points: 90},
			{MinRatio: 1.0, Points: 100},
		},
		AssignmentCurve: Curve{
			{MinRatio: 0.34, Points: 40},
			{MinRatio: 0.67, Points: 70},
			{MinRatio: 1.0, Points: 100},
		},
		CareCurve: Curve{
			{MinRatio: 0.3, Points: 40},
			{MinRatio: 0.6, Points: 70},
			{MinRatio: 0.85, Points: 90},
			{MinRatio: 1.0, Points: 100},
		},
	}
}

// LoadConfig reads the rule set from a YAML file. A missing file falls back
// to the shipped defaults; a malformed or invalid file is an error.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultConfig(), nil
		}
		return nil, fmt.Errorf("failed to read catalog file: %w", err)
	}

	cfg := &Config{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse catalog file %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid catalog file %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks the structural invariants the engine relies on
func (c *Config) Validate() error {
	if c.XPPerLevel <= 0 {
		return fmt.Errorf("xp_per_level must be positive, got %d", c.XPPerLevel)
	}
	if c.TrackPointsPerLevel <= 0 {
		return fmt.Errorf("track_points_per_level must be positive, got %d", c.TrackPointsPerLevel)
	}
	if len(c.UnlockThresholds) == 0 || c.UnlockThresholds[0] != 0 {
		return fmt.Errorf("unlock_thresholds must start with the level-0 base cosmetic")
	}
	if !sort.IntsAreSorted(c.UnlockThresholds) {
		return fmt.Errorf("unlock_thresholds must be non-decreasing")
	}
	if len(c.DailyEventKeys) == 0 {
		return fmt.Errorf("daily_event_keys must not be empty")
	}
	if !sort.IntsAreSorted(c.EraThresholds) {
		return fmt.Errorf("era_thresholds must be non-decreasing")
	}
	for _, def := range c.WeeklyCatalog {
		if def.Key == "" {
			return fmt.Errorf("weekly catalog entry with empty key")
		}
		if def.Weight < 0 {
			return fmt.Errorf("weekly catalog entry %s has negative weight", def.Key)
		}
		switch def.Tier {
		case TierBronze, TierSilver, TierGold, TierPlatinum:
		default:
			return fmt.Errorf("weekly catalog entry %s has unknown tier %q", def.Key, def.Tier)
		}
	}
	for source, rule := range c.Sources {
		if rule.XP < 0 {
			return fmt.Errorf("source %s has negative xp", source)
		}
		if rule.DailyCap < 0 {
			return fmt.Errorf("source %s has negative daily cap", source)
		}
	}
	return nil
}

// Source returns the rule for an XP source and whether it is known
func (c *Config) Source(name string) (SourceRule, bool) {
	rule, ok := c.Sources[name]
	return rule, ok
}
