package store

import (
	"database/sql"
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/spark-rms/spark/internal/types"
)

// CreateDomain inserts a value domain, assigning an id when none is set
func (s *Store) CreateDomain(d *types.ValueDomain) error {
	if d.ID == "" {
		d.ID = uuid.NewString()
	}
	d.CreatedAt = time.Now()

	_, err := s.db.Exec(`
		INSERT INTO value_domains (id, user_id, name, description, created_at)
		VALUES (?, ?, ?, ?, ?)
	`, d.ID, d.UserID, d.Name, d.Description, d.CreatedAt)
	return err
}

// ListDomains returns all of a user's value domains
func (s *Store) ListDomains(userID string) ([]types.ValueDomain, error) {
	rows, err := s.db.Query(`
		SELECT id, user_id, name, description, created_at
		FROM value_domains WHERE user_id = ? ORDER BY name
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var domains []types.ValueDomain
	for rows.Next() {
		var d types.ValueDomain
		if err := rows.Scan(&d.ID, &d.UserID, &d.Name, &d.Description, &d.CreatedAt); err != nil {
			return nil, err
		}
		domains = append(domains, d)
	}
	return domains, rows.Err()
}

// CreateStory inserts a story, assigning an id when none is set
func (s *Store) CreateStory(st *types.Story) error {
	if st.ID == "" {
		st.ID = uuid.NewString()
	}
	tagsJSON, _ := json.Marshal(st.Tags)

	now := time.Now()
	st.CreatedAt = now
	st.UpdatedAt = now

	_, err := s.db.Exec(`
		INSERT INTO stories (id, domain_id, user_id, title, content, tags,
			usage_count, success_rate, last_used_at, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, st.ID, st.DomainID, st.UserID, st.Title, st.Content, string(tagsJSON),
		st.UsageCount, st.SuccessRate, st.LastUsedAt, st.CreatedAt, st.UpdatedAt)
	return err
}

// GetStory returns one story by id, or nil when it does not exist
func (s *Store) GetStory(id string) (*types.Story, error) {
	row := s.db.QueryRow(storySelect+` WHERE id = ?`, id)
	st, err := scanStory(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return st, nil
}

// ListStories returns all of a user's stories
func (s *Store) ListStories(userID string) ([]types.Story, error) {
	rows, err := s.db.Query(storySelect+` WHERE user_id = ? ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanStories(rows)
}

// ListStoriesByDomain returns all stories under one value domain
func (s *Store) ListStoriesByDomain(domainID string) ([]types.Story, error) {
	rows, err := s.db.Query(storySelect+` WHERE domain_id = ? ORDER BY created_at DESC`, domainID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanStories(rows)
}

// RecordUsage increments a story's usage count and stamps last_used_at.
// usage_count only ever increases.
func (s *Store) RecordUsage(storyID string) error {
	_, err := s.db.Exec(`
		UPDATE stories
		SET usage_count = usage_count + 1, last_used_at = ?, updated_at = ?
		WHERE id = ?
	`, time.Now(), time.Now(), storyID)
	return err
}

// RecordOutcome logs whether an outreach using the story succeeded and
// recomputes the derived success rate. success_rate is never written by
// any other path.
func (s *Store) RecordOutcome(storyID string, success bool) error {
	_, err := s.db.Exec(`
		INSERT INTO story_outcomes (story_id, success, recorded_at)
		VALUES (?, ?, ?)
	`, storyID, success, time.Now())
	if err != nil {
		return err
	}
	return s.RecomputeSuccessRate(storyID)
}

// RecomputeSuccessRate rederives success_rate from recorded outcomes
func (s *Store) RecomputeSuccessRate(storyID string) error {
	var total, successes int
	err := s.db.QueryRow(`
		SELECT COUNT(*), COALESCE(SUM(CASE WHEN success THEN 1 ELSE 0 END), 0)
		FROM story_outcomes WHERE story_id = ?
	`, storyID).Scan(&total, &successes)
	if err != nil {
		return err
	}

	rate := 0.0
	if total > 0 {
		rate = float64(successes) * 100 / float64(total)
	}

	_, err = s.db.Exec(`UPDATE stories SET success_rate = ?, updated_at = ? WHERE id = ?`,
		rate, time.Now(), storyID)
	return err
}

const storySelect = `
	SELECT id, domain_id, user_id, title, content, tags,
		usage_count, success_rate, last_used_at, created_at, updated_at
	FROM stories`

func scanStory(row scanner) (*types.Story, error) {
	var st types.Story
	var tagsJSON string
	var lastUsed sql.NullTime

	err := row.Scan(&st.ID, &st.DomainID, &st.UserID, &st.Title, &st.Content, &tagsJSON,
		&st.UsageCount, &st.SuccessRate, &lastUsed, &st.CreatedAt, &st.UpdatedAt)
	if err != nil {
		return nil, err
	}

	if tagsJSON != "" {
		json.Unmarshal([]byte(tagsJSON), &st.Tags)
	}
	if lastUsed.Valid {
		st.LastUsedAt = &lastUsed.Time
	}
	return &st, nil
}

func scanStories(rows *sql.Rows) ([]types.Story, error) {
	var stories []types.Story
	for rows.Next() {
		st, err := scanStory(rows)
		if err != nil {
			return nil, err
		}
		stories = append(stories, *st)
	}
	return stories, rows.Err()
}
