package repository

import (
	"database/sql"

	"classquest/internal/database"
	"classquest/internal/models"
)

// WeeklyResultRepository handles immutable weekly evaluation results. The
// unique key on (state_id, week_start) means a week can only ever be scored
// once per state.
type WeeklyResultRepository struct {
	db database.DBTX
}

// NewWeeklyResultRepository creates a new weekly result repository
func NewWeeklyResultRepository(db database.DBTX) *WeeklyResultRepository {
	return &WeeklyResultRepository{db: db}
}

const weeklyResultColumns = `
	id, state_id, week_start, week_end,
	attendance_points, attendance_available,
	assignment_points, assignment_available,
	care_points, care_available,
	earned_points, available_points, weekly_pct, tier,
	event_key, bonus_xp, track_points_awarded, created_at
`

// Insert persists one result row. Returns false without error when a result
// for (state, week start) already exists, meaning a concurrent evaluator won.
func (r *WeeklyResultRepository) Insert(result *models.WeeklyResult) (bool, error) {
	query := `
		INSERT INTO weekly_results
			(state_id, week_start, week_end,
			 attendance_points, attendance_available,
			 assignment_points, assignment_available,
			 care_points, care_available,
			 earned_points, available_points, weekly_pct, tier,
			 event_key, bonus_xp, track_points_awarded)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	attendancePoints, attendanceAvail := bucketValues(result.Attendance)
	assignmentPoints, assignmentAvail := bucketValues(result.Assignment)
	carePoints, careAvail := bucketValues(result.Care)

	var eventKey interface{}
	if result.EventKey != nil {
		eventKey = *result.EventKey
	}

	_, err := r.db.Exec(query,
		result.StateID, result.WeekStart, result.WeekEnd,
		attendancePoints, attendanceAvail,
		assignmentPoints, assignmentAvail,
		carePoints, careAvail,
		result.EarnedPoints, result.AvailablePoints, result.WeeklyPct, result.Tier,
		eventKey, result.BonusXP, result.TrackPointsAwarded,
	)
	if err != nil {
		if r.db.IsUniqueViolation(err) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// GetByWeekStart retrieves the result for (state, week start). Returns nil
// without error when the week has not been scored.
func (r *WeeklyResultRepository) GetByWeekStart(stateID int64, weekStart string) (*models.WeeklyResult, error) {
	query := "SELECT " + weeklyResultColumns + " FROM weekly_results WHERE state_id = ? AND week_start = ?"
	result, err := scanWeeklyResult(r.db.QueryRow(query, stateID, weekStart))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return result, err
}

// LatestForState retrieves the most recently scored week for a state.
// Returns nil without error when no week has been scored yet.
func (r *WeeklyResultRepository) LatestForState(stateID int64) (*models.WeeklyResult, error) {
	query := "SELECT " + weeklyResultColumns + `
		FROM weekly_results
		WHERE state_id = ?
		ORDER BY week_start DESC
		LIMIT 1
	`
	result, err := scanWeeklyResult(r.db.QueryRow(query, stateID))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return result, err
}

// RecentWithEventKeys returns up to limit recent results carrying a
// narrative event key, newest first. The weekly engine turns these into the
// per-entry cooldown exclusion set.
func (r *WeeklyResultRepository) RecentWithEventKeys(stateID int64, limit int) ([]models.WeeklyResult, error) {
	query := `
		SELECT id, state_id, week_start, event_key
		FROM weekly_results
		WHERE state_id = ? AND event_key IS NOT NULL
		ORDER BY week_start DESC
		LIMIT ?
	`
	rows, err := r.db.Query(query, stateID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []models.WeeklyResult
	for rows.Next() {
		var result models.WeeklyResult
		var eventKey sql.NullString
		if err := rows.Scan(&result.ID, &result.StateID, &result.WeekStart, &eventKey); err != nil {
			return nil, err
		}
		if eventKey.Valid {
			result.EventKey = &eventKey.String
		}
		results = append(results, result)
	}
	return results, rows.Err()
}

func bucketValues(bucket *models.BucketScore) (points, available interface{}) {
	if bucket == nil {
		return nil, nil
	}
	return bucket.Points, bucket.Available
}

func scanWeeklyResult(row *sql.Row) (*models.WeeklyResult, error) {
	result := &models.WeeklyResult{}
	var attendancePoints, attendanceAvail sql.NullInt64
	var assignmentPoints, assignmentAvail sql.NullInt64
	var carePoints, careAvail sql.NullInt64
	var eventKey sql.NullString

	err := row.Scan(
		&result.ID,
		&result.StateID,
		&result.WeekStart,
		&result.WeekEnd,
		&attendancePoints, &attendanceAvail,
		&assignmentPoints, &assignmentAvail,
		&carePoints, &careAvail,
		&result.EarnedPoints,
		&result.AvailablePoints,
		&result.WeeklyPct,
		&result.Tier,
		&eventKey,
		&result.BonusXP,
		&result.TrackPointsAwarded,
		&result.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	result.Attendance = bucketFromNulls(attendancePoints, attendanceAvail)
	result.Assignment = bucketFromNulls(assignmentPoints, assignmentAvail)
	result.Care = bucketFromNulls(carePoints, careAvail)
	if eventKey.Valid {
		result.EventKey = &eventKey.String
	}
	return result, nil
}

func bucketFromNulls(points, available sql.NullInt64) *models.BucketScore {
	if !points.Valid || !available.Valid {
		return nil
	}
	return &models.BucketScore{Points: int(points.Int64), Available: int(available.Int64)}
}
