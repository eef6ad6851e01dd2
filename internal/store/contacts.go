package store

import (
	"database/sql"
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/spark-rms/spark/internal/types"
)

// CreateContact inserts a contact, assigning an id when none is set
func (s *Store) CreateContact(c *types.Contact) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	handlesJSON, _ := json.Marshal(c.Handles)

	now := time.Now()
	c.CreatedAt = now
	c.UpdatedAt = now

	_, err := s.db.Exec(`
		INSERT INTO contacts (id, user_id, name, title, company, industry,
			last_contact, birthday, handles, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, c.ID, c.UserID, c.Name, c.Title, c.Company, c.Industry,
		c.LastContact, c.Birthday, string(handlesJSON), c.CreatedAt, c.UpdatedAt)
	return err
}

// GetContact returns one contact by id, or nil when it does not exist.
// The engine must tolerate a contact disappearing mid-computation, so the
// missing case is not an error.
func (s *Store) GetContact(id string) (*types.Contact, error) {
	row := s.db.QueryRow(`
		SELECT id, user_id, name, title, company, industry, last_contact,
			birthday, handles, created_at, updated_at
		FROM contacts WHERE id = ?
	`, id)

	c, err := scanContact(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return c, nil
}

// ListContacts returns all of a user's contacts, alphabetically
func (s *Store) ListContacts(userID string) ([]types.Contact, error) {
	rows, err := s.db.Query(`
		SELECT id, user_id, name, title, company, industry, last_contact,
			birthday, handles, created_at, updated_at
		FROM contacts WHERE user_id = ?
		ORDER BY name
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var contacts []types.Contact
	for rows.Next() {
		c, err := scanContact(rows)
		if err != nil {
			return nil, err
		}
		contacts = append(contacts, *c)
	}
	return contacts, rows.Err()
}

// UpdateContact rewrites a contact's mutable fields
func (s *Store) UpdateContact(c *types.Contact) error {
	handlesJSON, _ := json.Marshal(c.Handles)
	c.UpdatedAt = time.Now()

	_, err := s.db.Exec(`
		UPDATE contacts SET name = ?, title = ?, company = ?, industry = ?,
			last_contact = ?, birthday = ?, handles = ?, updated_at = ?
		WHERE id = ?
	`, c.Name, c.Title, c.Company, c.Industry,
		c.LastContact, c.Birthday, string(handlesJSON), c.UpdatedAt, c.ID)
	return err
}

// DeleteContact removes a contact row
func (s *Store) DeleteContact(id string) error {
	_, err := s.db.Exec(`DELETE FROM contacts WHERE id = ?`, id)
	return err
}

// scanner covers both *sql.Row and *sql.Rows
type scanner interface {
	Scan(dest ...any) error
}

func scanContact(row scanner) (*types.Contact, error) {
	var c types.Contact
	var birthday sql.NullTime
	var handlesJSON string

	err := row.Scan(&c.ID, &c.UserID, &c.Name, &c.Title, &c.Company, &c.Industry,
		&c.LastContact, &birthday, &handlesJSON, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, err
	}

	if birthday.Valid {
		c.Birthday = &birthday.Time
	}
	if handlesJSON != "" {
		json.Unmarshal([]byte(handlesJSON), &c.Handles)
	}
	return &c, nil
}
