package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// GetChatState returns the stored dialogue state for a chat. The second
// return value is false when the chat has no state yet.
func (s *Store) GetChatState(ctx context.Context, chatID int64) (int, bool, error) {
	conn, err := s.conn()
	if err != nil {
		return 0, false, err
	}
	var state int
	err = conn.QueryRowContext(ctx, `SELECT state FROM chat_states WHERE id = ?`, chatID).Scan(&state)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("get chat state: %w", err)
	}
	return state, true, nil
}

// UpsertChatState inserts or overwrites the dialogue state for a chat.
// Re-applying the same state is a no-op in effect.
func (s *Store) UpsertChatState(ctx context.Context, chatID int64, state int) error {
	conn, err := s.conn()
	if err != nil {
		return err
	}
	_, err = conn.ExecContext(ctx,
		`INSERT INTO chat_states (id, state) VALUES (?, ?)
		 ON CONFLICT(id) DO UPDATE SET state = excluded.state`,
		chatID, state,
	)
	if err != nil {
		return fmt.Errorf("upsert chat state: %w", err)
	}
	return nil
}
