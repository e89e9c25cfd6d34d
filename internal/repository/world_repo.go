package repository

import (
	"database/sql"
	"time"

	"classquest/internal/database"
	"classquest/internal/models"
)

// WorldRepository handles world-state database operations
type WorldRepository struct {
	db database.DBTX
}

// NewWorldRepository creates a new world repository
func NewWorldRepository(db database.DBTX) *WorldRepository {
	return &WorldRepository{db: db}
}

const worldStateColumns = `
	id, user_id, classroom_id, xp, selected_image, overlay_enabled,
	streak_days, last_login_day, next_daily_spawn_at, next_weekly_eval_at,
	weekly_track_level, weekly_track_points, created_at, updated_at
`

// GetByID retrieves a world state by primary key
func (r *WorldRepository) GetByID(stateID int64) (*models.WorldState, error) {
	query := "SELECT " + worldStateColumns + " FROM world_states WHERE id = ?"
	return r.scanOne(r.db.QueryRow(query, stateID))
}

// GetByUserClassroom retrieves the world state for a (user, classroom) pair.
// Returns nil without error when no row exists yet.
func (r *WorldRepository) GetByUserClassroom(userID, classroomID int64) (*models.WorldState, error) {
	query := "SELECT " + worldStateColumns + " FROM world_states WHERE user_id = ? AND classroom_id = ?"
	state, err := r.scanOne(r.db.QueryRow(query, userID, classroomID))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return state, err
}

// Create inserts a fresh world state and returns its id. A concurrent
// creator for the same (user, classroom) pair surfaces as a unique
// violation; callers detect it with IsDuplicate and re-read.
func (r *WorldRepository) Create(userID, classroomID int64, nextDaily, nextWeekly time.Time) (int64, error) {
	query := `
		INSERT INTO world_states
			(user_id, classroom_id, xp, selected_image, overlay_enabled,
			 streak_days, weekly_track_level, weekly_track_points,
			 next_daily_spawn_at, next_weekly_eval_at)
		VALUES (?, ?, 0, 0, ?, 0, 0, 0, ?, ?)
	`
	return r.db.ExecReturningID(query, userID, classroomID, false, nextDaily, nextWeekly)
}

// IsDuplicate reports whether err is a unique-constraint violation
func (r *WorldRepository) IsDuplicate(err error) bool {
	return r.db.IsUniqueViolation(err)
}

// AddXP atomically adds amount to the xp counter and returns the new total.
// The increment happens inside the database so concurrent grants can never
// lose an update; the returned total may already include a later concurrent
// increment, which only ever raises the observed level.
func (r *WorldRepository) AddXP(stateID int64, amount int) (int, error) {
	query := `
		UPDATE world_states
		SET xp = xp + ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ?
	`
	if _, err := r.db.Exec(query, amount, stateID); err != nil {
		return 0, err
	}

	var xp int
	err := r.db.QueryRow("SELECT xp FROM world_states WHERE id = ?", stateID).Scan(&xp)
	return xp, err
}

// UpdateDailySchedule advances the next daily spawn pointer
func (r *WorldRepository) UpdateDailySchedule(stateID int64, next time.Time) error {
	query := "UPDATE world_states SET next_daily_spawn_at = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?"
	_, err := r.db.Exec(query, next, stateID)
	return err
}

// UpdateWeeklySchedule advances the next weekly evaluation pointer
func (r *WorldRepository) UpdateWeeklySchedule(stateID int64, next time.Time) error {
	query := "UPDATE world_states SET next_weekly_eval_at = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?"
	_, err := r.db.Exec(query, next, stateID)
	return err
}

// DueDaily returns states whose daily spawn is due at now, oldest first,
// bounded to limit rows
func (r *WorldRepository) DueDaily(now time.Time, limit int) ([]models.WorldState, error) {
	query := "SELECT " + worldStateColumns + `
		FROM world_states
		WHERE next_daily_spawn_at <= ? OR next_daily_spawn_at IS NULL
		ORDER BY next_daily_spawn_at ASC
		LIMIT ?
	`
	return r.scanMany(query, now, limit)
}

// DueWeekly returns states whose weekly evaluation is due at now, oldest
// first, bounded to limit rows
func (r *WorldRepository) DueWeekly(now time.Time, limit int) ([]models.WorldState, error) {
	query := "SELECT " + worldStateColumns + `
		FROM world_states
		WHERE next_weekly_eval_at <= ? OR next_weekly_eval_at IS NULL
		ORDER BY next_weekly_eval_at ASC
		LIMIT ?
	`
	return r.scanMany(query, now, limit)
}

// SetOverlayEnabled toggles the cosmetic overlay
func (r *WorldRepository) SetOverlayEnabled(stateID int64, enabled bool) error {
	query := "UPDATE world_states SET overlay_enabled = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?"
	_, err := r.db.Exec(query, enabled, stateID)
	return err
}

// SetSelectedImage updates the selected cosmetic index
func (r *WorldRepository) SetSelectedImage(stateID int64, imageIndex int) error {
	query := "UPDATE world_states SET selected_image = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?"
	_, err := r.db.Exec(query, imageIndex, stateID)
	return err
}

// UpdateLogin records a login day and the resulting streak length
func (r *WorldRepository) UpdateLogin(stateID int64, day string, streakDays int) error {
	query := "UPDATE world_states SET last_login_day = ?, streak_days = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?"
	_, err := r.db.Exec(query, day, streakDays, stateID)
	return err
}

// AddTrackPoints adds weekly track points and rolls any full levels into
// weekly_track_level, keeping only the remainder. Both statements mutate
// through SQL expressions so concurrent callers cannot lose an update.
func (r *WorldRepository) AddTrackPoints(stateID int64, points, pointsPerLevel int) error {
	query := "UPDATE world_states SET weekly_track_points = weekly_track_points + ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?"
	if _, err := r.db.Exec(query, points, stateID); err != nil {
		return err
	}

	rollover := `
		UPDATE world_states
		SET weekly_track_level = weekly_track_level + weekly_track_points / ?,
		    weekly_track_points = weekly_track_points % ?,
		    updated_at = CURRENT_TIMESTAMP
		WHERE id = ? AND weekly_track_points >= ?
	`
	_, err := r.db.Exec(rollover, pointsPerLevel, pointsPerLevel, stateID, pointsPerLevel)
	return err
}

func (r *WorldRepository) scanMany(query string, args ...interface{}) ([]models.WorldState, error) {
	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var states []models.WorldState
	for rows.Next() {
		state, err := scanWorldState(rows.Scan)
		if err != nil {
			return nil, err
		}
		states = append(states, *state)
	}
	return states, rows.Err()
}

func (r *WorldRepository) scanOne(row *sql.Row) (*models.WorldState, error) {
	return scanWorldState(row.Scan)
}

func scanWorldState(scan func(...interface{}) error) (*models.WorldState, error) {
	state := &models.WorldState{}
	var lastLogin sql.NullString
	var nextDaily, nextWeekly sql.NullTime

	err := scan(
		&state.ID,
		&state.UserID,
		&state.ClassroomID,
		&state.XP,
		&state.SelectedImage,
		&state.OverlayEnabled,
		&state.StreakDays,
		&lastLogin,
		&nextDaily,
		&nextWeekly,
		&state.WeeklyTrackLevel,
		&state.WeeklyTrackPoints,
		&state.CreatedAt,
		&state.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if lastLogin.Valid {
		state.LastLoginDay = &lastLogin.String
	}
	if nextDaily.Valid {
		state.NextDailySpawnAt = &nextDaily.Time
	}
	if nextWeekly.Valid {
		state.NextWeeklyEvalAt = &nextWeekly.Time
	}
	return state, nil
}
