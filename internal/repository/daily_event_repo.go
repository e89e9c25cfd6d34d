package repository

import (
	"database/sql"
	"time"

	"classquest/internal/database"
	"classquest/internal/models"
)

// DailyEventRepository handles daily care event rows. The unique key on
// (state_id, event_day) guarantees at most one event per state per day, and
// claims go through a conditional update so a status transition can only
// happen once.
type DailyEventRepository struct {
	db database.DBTX
}

// NewDailyEventRepository creates a new daily event repository
func NewDailyEventRepository(db database.DBTX) *DailyEventRepository {
	return &DailyEventRepository{db: db}
}

// Insert creates a claimable event for (state, day). Returns false without
// error when a row for that day already exists.
func (r *DailyEventRepository) Insert(stateID int64, eventDay, eventKey string, claimableUntil time.Time) (bool, error) {
	query := `
		INSERT INTO daily_events (state_id, event_day, event_key, status, claimable_until)
		VALUES (?, ?, ?, ?, ?)
	`
	_, err := r.db.Exec(query, stateID, eventDay, eventKey, models.DailyStatusClaimable, claimableUntil)
	if err != nil {
		if r.db.IsUniqueViolation(err) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// GetForDay retrieves the event for (state, day). Returns nil without error
// when none exists.
func (r *DailyEventRepository) GetForDay(stateID int64, eventDay string) (*models.DailyEvent, error) {
	query := `
		SELECT id, state_id, event_day, event_key, status, claimable_until, claimed_at, created_at
		FROM daily_events
		WHERE state_id = ? AND event_day = ?
	`
	event := &models.DailyEvent{}
	var claimedAt sql.NullTime

	err := r.db.QueryRow(query, stateID, eventDay).Scan(
		&event.ID,
		&event.StateID,
		&event.EventDay,
		&event.EventKey,
		&event.Status,
		&event.ClaimableUntil,
		&claimedAt,
		&event.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	if claimedAt.Valid {
		event.ClaimedAt = &claimedAt.Time
	}
	return event, nil
}

// Claim transitions an event from claimable to claimed. The status guard in
// the WHERE clause makes the transition conditional: of two concurrent
// claimers exactly one sees a row change.
func (r *DailyEventRepository) Claim(eventID int64, now time.Time) (bool, error) {
	query := `
		UPDATE daily_events
		SET status = ?, claimed_at = ?
		WHERE id = ? AND status = ?
	`
	result, err := r.db.Exec(query, models.DailyStatusClaimed, now, eventID, models.DailyStatusClaimable)
	if err != nil {
		return false, err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected == 1, nil
}

// Expire transitions a single claimable event to expired
func (r *DailyEventRepository) Expire(eventID int64) error {
	query := "UPDATE daily_events SET status = ? WHERE id = ? AND status = ?"
	_, err := r.db.Exec(query, models.DailyStatusExpired, eventID, models.DailyStatusClaimable)
	return err
}

// ExpireStale batch-expires claimable events from days strictly before
// today and returns how many rows changed
func (r *DailyEventRepository) ExpireStale(today string) (int64, error) {
	query := "UPDATE daily_events SET status = ? WHERE status = ? AND event_day < ?"
	result, err := r.db.Exec(query, models.DailyStatusExpired, models.DailyStatusClaimable, today)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

// CountInWindow counts events spawned for the state in [start, end],
// the denominator of the weekly care bucket
func (r *DailyEventRepository) CountInWindow(stateID int64, start, end string) (int, error) {
	query := `
		SELECT COUNT(*)
		FROM daily_events
		WHERE state_id = ? AND event_day >= ? AND event_day <= ?
	`
	var count int
	err := r.db.QueryRow(query, stateID, start, end).Scan(&count)
	return count, err
}

// CountClaimedInWindow counts claimed events for the state in [start, end]
func (r *DailyEventRepository) CountClaimedInWindow(stateID int64, start, end string) (int, error) {
	query := `
		SELECT COUNT(*)
		FROM daily_events
		WHERE state_id = ? AND event_day >= ? AND event_day <= ? AND status = ?
	`
	var count int
	err := r.db.QueryRow(query, stateID, start, end, models.DailyStatusClaimed).Scan(&count)
	return count, err
}
