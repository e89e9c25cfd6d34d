package models

import "time"

// XpEvent is one append-only ledger row. Rows are never mutated or deleted;
// they drive auditing, per-source daily caps and duplicate-grant detection.
type XpEvent struct {
	ID        int64     `json:"id"`
	StateID   int64     `json:"state_id"`
	Source    string    `json:"source"`
	Amount    int       `json:"amount"`
	Metadata  string    `json:"metadata,omitempty"` // free-form key, e.g. an assignment id
	CreatedAt time.Time `json:"created_at"`
}

// RewardGrant is the idempotency guard for discrete achievements. A row's
// existence for (state, type, key) means "already granted"; repeat attempts
// are no-ops, not errors.
type RewardGrant struct {
	ID         int64     `json:"id"`
	StateID    int64     `json:"state_id"`
	RewardType string    `json:"reward_type"`
	RewardKey  string    `json:"reward_key"`
	CreatedAt  time.Time `json:"created_at"`
}

// Unlock is one cosmetic image index owned by a state. Membership is
// monotonic: an index is added exactly once and never removed.
type Unlock struct {
	ID         int64     `json:"id"`
	StateID    int64     `json:"state_id"`
	ImageIndex int       `json:"image_index"`
	CreatedAt  time.Time `json:"created_at"`
}

// AchievementItem is one entry of a batch achievement grant
type AchievementItem struct {
	RewardType string `json:"reward_type"`
	RewardKey  string `json:"reward_key"`
	XP         int    `json:"xp"`
}

// GrantResult reports the outcome of an XP grant
type GrantResult struct {
	Granted    bool  `json:"granted"`
	XPAwarded  int   `json:"xp_awarded"`
	NewLevel   int   `json:"new_level"`
	NewUnlocks []int `json:"new_unlocks,omitempty"`
}
