package store

import (
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/spark-rms/spark/internal/types"
)

// ErrDuplicateActivity is returned by InsertActivity when an activity with
// the same (user, platform, native id) already exists. Callers treat it as
// an expected, non-fatal outcome.
var ErrDuplicateActivity = errors.New("duplicate activity")

// InsertActivity appends one activity. Activities are append-only; the
// unique index on (user_id, platform, native_id) makes re-ingestion of the
// same external message a no-op surfaced as ErrDuplicateActivity.
func (s *Store) InsertActivity(a *types.Activity) error {
	var importance sql.NullInt64
	var reason, action sql.NullString
	if a.Importance != nil {
		importance = sql.NullInt64{Int64: int64(a.Importance.Score), Valid: true}
		reason = sql.NullString{String: a.Importance.Reason, Valid: true}
		action = sql.NullString{String: a.Importance.SuggestedAction, Valid: true}
	}

	_, err := s.db.Exec(`
		INSERT INTO activities (id, user_id, contact_id, platform, activity_type,
			content, url, native_id, importance, importance_reason, suggested_action, timestamp)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, a.ID, a.UserID, a.ContactID, string(a.Platform), string(a.Type),
		a.Content, a.URL, a.NativeID, importance, reason, action, a.Timestamp)

	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicateActivity
		}
		return err
	}
	return nil
}

// isUniqueViolation reports whether err is a sqlite unique-constraint error
func isUniqueViolation(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") ||
		strings.Contains(msg, "constraint failed: UNIQUE")
}

// ListRecentActivities returns a user's activities within the last
// sinceDays days, newest first.
func (s *Store) ListRecentActivities(userID string, sinceDays int) ([]types.Activity, error) {
	since := time.Now().AddDate(0, 0, -sinceDays)
	rows, err := s.db.Query(`
		SELECT id, user_id, contact_id, platform, activity_type, content, url,
			native_id, importance, importance_reason, suggested_action, timestamp, created_at
		FROM activities
		WHERE user_id = ? AND timestamp >= ?
		ORDER BY timestamp DESC
	`, userID, since)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanActivities(rows)
}

// ListImportantActivities returns a user's flagged activities within the
// last sinceDays days, highest importance first.
func (s *Store) ListImportantActivities(userID string, sinceDays int, limit int) ([]types.Activity, error) {
	since := time.Now().AddDate(0, 0, -sinceDays)
	rows, err := s.db.Query(`
		SELECT id, user_id, contact_id, platform, activity_type, content, url,
			native_id, importance, importance_reason, suggested_action, timestamp, created_at
		FROM activities
		WHERE user_id = ? AND timestamp >= ? AND importance IS NOT NULL
		ORDER BY importance DESC, timestamp DESC
		LIMIT ?
	`, userID, since, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanActivities(rows)
}

func scanActivities(rows *sql.Rows) ([]types.Activity, error) {
	var activities []types.Activity
	for rows.Next() {
		var a types.Activity
		var contactID sql.NullString
		var platform, activityType string
		var importance sql.NullInt64
		var reason, action sql.NullString

		err := rows.Scan(
			&a.ID, &a.UserID, &contactID, &platform, &activityType, &a.Content, &a.URL,
			&a.NativeID, &importance, &reason, &action, &a.Timestamp, &a.CreatedAt,
		)
		if err != nil {
			return nil, err
		}

		if contactID.Valid {
			a.ContactID = &contactID.String
		}
		a.Platform = types.Platform(platform)
		a.Type = types.ActivityType(activityType)
		if importance.Valid {
			a.Importance = &types.Importance{
				Score:           int(importance.Int64),
				Reason:          reason.String,
				SuggestedAction: action.String,
			}
		}

		activities = append(activities, a)
	}
	return activities, rows.Err()
}
