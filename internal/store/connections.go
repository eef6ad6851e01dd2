package store

import (
	"database/sql"
	"time"
)

// ProviderGoogle is the mail provider whose inbox carries LinkedIn and
// Facebook notification emails.
const ProviderGoogle = "google"

// Connection holds one user's OAuth link to a mail provider plus the
// watermark of the last successful sync.
type Connection struct {
	UserID       string
	Provider     string
	AccessToken  string
	RefreshToken string
	ExpiresAt    time.Time
	LastSyncedAt *time.Time
	NotifyEmail  string
}

// UpsertConnection inserts or replaces a user's provider connection
func (s *Store) UpsertConnection(c *Connection) error {
	_, err := s.db.Exec(`
		INSERT INTO connections (user_id, provider, access_token, refresh_token,
			expires_at, last_synced_at, notify_email)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (user_id, provider) DO UPDATE SET
			access_token = excluded.access_token,
			refresh_token = excluded.refresh_token,
			expires_at = excluded.expires_at,
			notify_email = excluded.notify_email
	`, c.UserID, c.Provider, c.AccessToken, c.RefreshToken,
		c.ExpiresAt, c.LastSyncedAt, c.NotifyEmail)
	return err
}

// GetConnection returns one connection, or nil when it does not exist
func (s *Store) GetConnection(userID, provider string) (*Connection, error) {
	row := s.db.QueryRow(connectionSelect+` WHERE user_id = ? AND provider = ?`,
		userID, provider)

	c, err := scanConnection(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return c, nil
}

// ListActiveConnections returns every connection that still holds an
// access token, ordered by user. A connection with an expired token still
// counts as active; the syncer decides whether it can be refreshed.
func (s *Store) ListActiveConnections(provider string) ([]Connection, error) {
	rows, err := s.db.Query(connectionSelect+` WHERE provider = ? AND access_token != '' ORDER BY user_id`, provider)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var conns []Connection
	for rows.Next() {
		c, err := scanConnection(rows)
		if err != nil {
			return nil, err
		}
		conns = append(conns, *c)
	}
	return conns, rows.Err()
}

// UpdateConnectionTokens stores a refreshed token pair. Concurrent
// refreshes are last-writer-wins; either token works against the provider.
func (s *Store) UpdateConnectionTokens(userID, provider, accessToken, refreshToken string, expiresAt time.Time) error {
	_, err := s.db.Exec(`
		UPDATE connections SET access_token = ?, refresh_token = ?, expires_at = ?
		WHERE user_id = ? AND provider = ?
	`, accessToken, refreshToken, expiresAt, userID, provider)
	return err
}

// UpdateLastSynced advances the sync watermark for a connection
func (s *Store) UpdateLastSynced(userID, provider string, t time.Time) error {
	_, err := s.db.Exec(`
		UPDATE connections SET last_synced_at = ? WHERE user_id = ? AND provider = ?
	`, t, userID, provider)
	return err
}

const connectionSelect = `
	SELECT user_id, provider, access_token, refresh_token, expires_at,
		last_synced_at, notify_email
	FROM connections`

func scanConnection(row scanner) (*Connection, error) {
	var c Connection
	var expires, lastSynced sql.NullTime

	err := row.Scan(&c.UserID, &c.Provider, &c.AccessToken, &c.RefreshToken,
		&expires, &lastSynced, &c.NotifyEmail)
	if err != nil {
		return nil, err
	}

	if expires.Valid {
		c.ExpiresAt = expires.Time
	}
	if lastSynced.Valid {
		c.LastSyncedAt = &lastSynced.Time
	}
	return &c, nil
}
