package repository

import (
	"time"

	"classquest/internal/database"
	"classquest/internal/models"
)

// XpEventRepository handles the append-only XP ledger. Rows are written
// once and never updated or deleted.
type XpEventRepository struct {
	db database.DBTX
}

// NewXpEventRepository creates a new ledger repository
func NewXpEventRepository(db database.DBTX) *XpEventRepository {
	return &XpEventRepository{db: db}
}

// Insert appends one ledger row stamped with the engine clock, not the
// database clock, so cap windows line up with the caller's day boundaries
func (r *XpEventRepository) Insert(stateID int64, source string, amount int, metadata string, at time.Time) (int64, error) {
	query := `
		INSERT INTO xp_events (state_id, source, amount, metadata, created_at)
		VALUES (?, ?, ?, ?, ?)
	`
	return r.db.ExecReturningID(query, stateID, source, amount, metadata, at)
}

// SumForSourceBetween sums ledger amounts for a source in [from, to).
// Daily caps are enforced against this sum over the engine-timezone day.
func (r *XpEventRepository) SumForSourceBetween(stateID int64, source string, from, to time.Time) (int, error) {
	query := `
		SELECT COALESCE(SUM(amount), 0)
		FROM xp_events
		WHERE state_id = ? AND source = ? AND created_at >= ? AND created_at < ?
	`
	var total int
	err := r.db.QueryRow(query, stateID, source, from, to).Scan(&total)
	return total, err
}

// ExistsForSourceKey reports whether a ledger row already exists for
// (source, metadata). Single-instance sources are deduplicated against this.
func (r *XpEventRepository) ExistsForSourceKey(stateID int64, source, metadata string) (bool, error) {
	query := `
		SELECT COUNT(*)
		FROM xp_events
		WHERE state_id = ? AND source = ? AND metadata = ?
	`
	var count int
	err := r.db.QueryRow(query, stateID, source, metadata).Scan(&count)
	return count > 0, err
}

// ListForState returns the most recent ledger rows for a state
func (r *XpEventRepository) ListForState(stateID int64, limit int) ([]models.XpEvent, error) {
	query := `
		SELECT id, state_id, source, amount, metadata, created_at
		FROM xp_events
		WHERE state_id = ?
		ORDER BY created_at DESC, id DESC
		LIMIT ?
	`
	rows, err := r.db.Query(query, stateID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []models.XpEvent
	for rows.Next() {
		var event models.XpEvent
		err := rows.Scan(
			&event.ID,
			&event.StateID,
			&event.Source,
			&event.Amount,
			&event.Metadata,
			&event.CreatedAt,
		)
		if err != nil {
			return nil, err
		}
		events = append(events, event)
	}
	return events, rows.Err()
}
