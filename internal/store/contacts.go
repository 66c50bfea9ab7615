package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// GetContact returns the contact card for a chat. The second return value is
// false when the chat has not shared any contact info yet.
func (s *Store) GetContact(ctx context.Context, chatID int64) (Contact, bool, error) {
	conn, err := s.conn()
	if err != nil {
		return Contact{}, false, err
	}
	var c Contact
	err = conn.QueryRowContext(ctx,
		`SELECT id, phone_number, first_name, last_name, user_id, username, email
		 FROM contacts WHERE id = ?`, chatID,
	).Scan(&c.ID, &c.PhoneNumber, &c.FirstName, &c.LastName, &c.UserID, &c.Username, &c.Email)
	if errors.Is(err, sql.ErrNoRows) {
		return Contact{}, false, nil
	}
	if err != nil {
		return Contact{}, false, fmt.Errorf("get contact: %w", err)
	}
	return c, true, nil
}

// UpsertContact merges a partial contact into the stored card. A patch field
// is applied only when present (non-zero); an absent field never erases a
// stored value.
func (s *Store) UpsertContact(ctx context.Context, chatID int64, patch ContactPatch) error {
	conn, err := s.conn()
	if err != nil {
		return err
	}
	_, err = conn.ExecContext(ctx,
		`INSERT INTO contacts (id, phone_number, first_name, last_name, user_id, username, email)
		 VALUES (?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
		   phone_number = CASE WHEN excluded.phone_number <> '' THEN excluded.phone_number ELSE contacts.phone_number END,
		   first_name   = CASE WHEN excluded.first_name <> ''   THEN excluded.first_name   ELSE contacts.first_name END,
		   last_name    = CASE WHEN excluded.last_name <> ''    THEN excluded.last_name    ELSE contacts.last_name END,
		   user_id      = CASE WHEN excluded.user_id <> 0       THEN excluded.user_id      ELSE contacts.user_id END,
		   username     = CASE WHEN excluded.username <> ''     THEN excluded.username     ELSE contacts.username END,
		   email        = CASE WHEN excluded.email <> ''        THEN excluded.email        ELSE contacts.email END`,
		chatID, patch.PhoneNumber, patch.FirstName, patch.LastName, patch.UserID, patch.Username, patch.Email,
	)
	if err != nil {
		return fmt.Errorf("upsert contact: %w", err)
	}
	return nil
}
