package models

import "time"

// BucketScore is one optional weekly scoring bucket. A bucket whose
// denominator was zero is absent rather than scored as zero.
type BucketScore struct {
	Points    int `json:"points"`
	Available int `json:"available"`
}

// WeeklyResult is the immutable outcome of one weekly evaluation. At most
// one row exists per (state, week start).
type WeeklyResult struct {
	ID        int64  `json:"id"`
	StateID   int64  `json:"state_id"`
	WeekStart string `json:"week_start"` // date key, inclusive
	WeekEnd   string `json:"week_end"`   // date key, inclusive

	Attendance *BucketScore `json:"attendance,omitempty"`
	Assignment *BucketScore `json:"assignment,omitempty"`
	Care       *BucketScore `json:"care,omitempty"`

	EarnedPoints       int     `json:"earned_points"`
	AvailablePoints    int     `json:"available_points"`
	WeeklyPct          float64 `json:"weekly_pct"`
	Tier               string  `json:"tier"`
	EventKey           *string `json:"event_key,omitempty"` // nil when the narrative pool was empty
	BonusXP            int     `json:"bonus_xp"`
	TrackPointsAwarded int     `json:"track_points_awarded"`

	CreatedAt time.Time `json:"created_at"`
}
