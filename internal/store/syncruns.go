package store

import "time"

// SyncRun is the audit record of one full sync pass
type SyncRun struct {
	StartedAt  time.Time
	FinishedAt time.Time
	Processed  int
	LinkedIn   int
	Facebook   int
	Errors     int
}

// RecordSyncRun appends one audit row. Recording is best effort; callers
// log the error and keep the sync result.
func (s *Store) RecordSyncRun(r *SyncRun) error {
	_, err := s.db.Exec(`
		INSERT INTO sync_runs (started_at, finished_at, processed, linkedin,
			facebook, error_count, duration_ms)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, r.StartedAt, r.FinishedAt, r.Processed, r.LinkedIn, r.Facebook, r.Errors,
		r.FinishedAt.Sub(r.StartedAt).Milliseconds())
	return err
}
