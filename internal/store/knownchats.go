package store

import (
	"context"
	"fmt"
)

// RecordKnownChat remembers the private chat for a user id; the broadcast
// audience is computed from these rows.
func (s *Store) RecordKnownChat(ctx context.Context, userID, chatID int64) error {
	conn, err := s.conn()
	if err != nil {
		return err
	}
	_, err = conn.ExecContext(ctx,
		`INSERT INTO known_chats (id, chat_id) VALUES (?, ?)
		 ON CONFLICT(id) DO UPDATE SET chat_id = excluded.chat_id`,
		userID, chatID,
	)
	if err != nil {
		return fmt.Errorf("record known chat: %w", err)
	}
	return nil
}

// ListBroadcastAudience returns the chat ids of all known users excluding
// admins and operators, as of this read; roster changes committed later are
// not reflected.
func (s *Store) ListBroadcastAudience(ctx context.Context) ([]int64, error) {
	conn, err := s.conn()
	if err != nil {
		return nil, err
	}
	rows, err := conn.QueryContext(ctx,
		`SELECT chat_id FROM known_chats
		 WHERE id NOT IN (SELECT id FROM admins)
		   AND id NOT IN (SELECT id FROM operators)`)
	if err != nil {
		return nil, fmt.Errorf("list broadcast audience: %w", err)
	}
	defer rows.Close()

	var out []int64
	for rows.Next() {
		var chatID int64
		if err := rows.Scan(&chatID); err != nil {
			return nil, fmt.Errorf("scan known chat: %w", err)
		}
		out = append(out, chatID)
	}
	return out, rows.Err()
}
