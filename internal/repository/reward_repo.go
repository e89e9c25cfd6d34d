package repository

import (
	"classquest/internal/database"
)

// RewardRepository handles the reward-grant idempotency records and the
// cosmetic unlock set. Both tables carry a unique constraint that turns a
// duplicate insert into a detectable no-op rather than a second effect.
type RewardRepository struct {
	db database.DBTX
}

// NewRewardRepository creates a new reward repository
func NewRewardRepository(db database.DBTX) *RewardRepository {
	return &RewardRepository{db: db}
}

// InsertGrant records that (rewardType, rewardKey) has been granted to the
// state. Returns false without error when the triple was already granted.
func (r *RewardRepository) InsertGrant(stateID int64, rewardType, rewardKey string) (bool, error) {
	query := `
		INSERT INTO reward_grants (state_id, reward_type, reward_key)
		VALUES (?, ?, ?)
	`
	_, err := r.db.Exec(query, stateID, rewardType, rewardKey)
	if err != nil {
		if r.db.IsUniqueViolation(err) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// ListUnlockedIndices returns every cosmetic index the state owns
func (r *RewardRepository) ListUnlockedIndices(stateID int64) ([]int, error) {
	query := "SELECT image_index FROM unlocks WHERE state_id = ? ORDER BY image_index ASC"
	rows, err := r.db.Query(query, stateID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var indices []int
	for rows.Next() {
		var idx int
		if err := rows.Scan(&idx); err != nil {
			return nil, err
		}
		indices = append(indices, idx)
	}
	return indices, rows.Err()
}

// InsertUnlock adds one cosmetic index to the state's unlock set. A
// concurrent inserter of the same index is a silent no-op; the set is
// monotonic either way.
func (r *RewardRepository) InsertUnlock(stateID int64, imageIndex int) error {
	query := "INSERT INTO unlocks (state_id, image_index) VALUES (?, ?)"
	_, err := r.db.Exec(query, stateID, imageIndex)
	if err != nil && r.db.IsUniqueViolation(err) {
		return nil
	}
	return err
}

// InsertUnlocks adds several cosmetic indices, skipping ones already owned
func (r *RewardRepository) InsertUnlocks(stateID int64, indices []int) error {
	for _, idx := range indices {
		if err := r.InsertUnlock(stateID, idx); err != nil {
			return err
		}
	}
	return nil
}

// HasUnlock reports whether the state owns a cosmetic index
func (r *RewardRepository) HasUnlock(stateID int64, imageIndex int) (bool, error) {
	query := "SELECT COUNT(*) FROM unlocks WHERE state_id = ? AND image_index = ?"
	var count int
	err := r.db.QueryRow(query, stateID, imageIndex).Scan(&count)
	return count > 0, err
}
