package models

import "time"

// WorldState is the per-student, per-classroom gamification record. It is
// created lazily on first access and mutated by every grant and cadence
// tick; it is never deleted in normal operation.
type WorldState struct {
	ID             int64   `json:"id"`
	UserID         int64   `json:"user_id"`
	ClassroomID    int64   `json:"classroom_id"`
	XP             int     `json:"xp"`             // cumulative, monotonically non-decreasing
	SelectedImage  int     `json:"selected_image"` // must be an unlocked index
	OverlayEnabled bool    `json:"overlay_enabled"`
	StreakDays     int     `json:"streak_days"`
	LastLoginDay   *string `json:"last_login_day,omitempty"` // date key, nil before first login

	// Cadence pointers: nil until first computed, then always advanced
	// forward by the scheduler
	NextDailySpawnAt *time.Time `json:"next_daily_spawn_at,omitempty"`
	NextWeeklyEvalAt *time.Time `json:"next_weekly_eval_at,omitempty"`

	// Secondary leveling currency fed only by weekly bonuses
	WeeklyTrackLevel  int `json:"weekly_track_level"`
	WeeklyTrackPoints int `json:"weekly_track_points"` // always < track points per level

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
