package models

import "time"

// DailyEventStatus is the lifecycle state of a daily care event.
// Transitions only move forward: claimable -> claimed or claimable -> expired.
type DailyEventStatus string

const (
	DailyStatusClaimable DailyEventStatus = "claimable"
	DailyStatusClaimed   DailyEventStatus = "claimed"
	DailyStatusExpired   DailyEventStatus = "expired"
)

// DailyEvent is the claimable per-day care event. At most one row exists
// per (state, event day).
type DailyEvent struct {
	ID             int64            `json:"id"`
	StateID        int64            `json:"state_id"`
	EventDay       string           `json:"event_day"` // date key in the engine timezone
	EventKey       string           `json:"event_key"`
	Status         DailyEventStatus `json:"status"`
	ClaimableUntil time.Time        `json:"claimable_until"`
	ClaimedAt      *time.Time       `json:"claimed_at,omitempty"`
	CreatedAt      time.Time        `json:"created_at"`
}
