package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// GetRequest returns the request with the given id, or ErrNotFound.
func (s *Store) GetRequest(ctx context.Context, id string) (Request, error) {
	conn, err := s.conn()
	if err != nil {
		return Request{}, err
	}
	var r Request
	err = conn.QueryRowContext(ctx,
		`SELECT id, chat_id, description, status, operator FROM requests WHERE id = ?`, id,
	).Scan(&r.ID, &r.ChatID, &r.Description, &r.Status, &r.Operator)
	if errors.Is(err, sql.ErrNoRows) {
		return Request{}, fmt.Errorf("request %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return Request{}, fmt.Errorf("get request: %w", err)
	}
	return r, nil
}

// CreateRequest allocates a fresh id and inserts a new request. The id is
// regenerated until unused; ids only need to be unique, not sortable.
func (s *Store) CreateRequest(ctx context.Context, patch RequestPatch) (Request, error) {
	conn, err := s.conn()
	if err != nil {
		return Request{}, err
	}
	var id string
	for {
		id = uuid.NewString()
		var n int
		if err := conn.QueryRowContext(ctx, `SELECT COUNT(*) FROM requests WHERE id = ?`, id).Scan(&n); err != nil {
			return Request{}, fmt.Errorf("check request id: %w", err)
		}
		if n == 0 {
			break
		}
	}
	status := patch.Status
	if status == "" {
		status = StatusNew
	}
	_, err = conn.ExecContext(ctx,
		`INSERT INTO requests (id, chat_id, description, status, operator) VALUES (?, ?, ?, ?, ?)`,
		id, patch.ChatID, patch.Description, status, patch.Operator,
	)
	if err != nil {
		return Request{}, fmt.Errorf("insert request: %w", err)
	}
	return Request{ID: id, ChatID: patch.ChatID, Description: patch.Description, Status: status, Operator: patch.Operator}, nil
}

// UpdateRequest merges a partial update into an existing request; absent
// (zero-valued) patch fields leave the stored values unchanged. Returns
// ErrNotFound when no request has the given id.
func (s *Store) UpdateRequest(ctx context.Context, id string, patch RequestPatch) error {
	conn, err := s.conn()
	if err != nil {
		return err
	}
	res, err := conn.ExecContext(ctx,
		`UPDATE requests SET
		   chat_id     = CASE WHEN ? <> 0  THEN ? ELSE chat_id END,
		   description = CASE WHEN ? <> '' THEN ? ELSE description END,
		   status      = CASE WHEN ? <> '' THEN ? ELSE status END,
		   operator    = CASE WHEN ? <> 0  THEN ? ELSE operator END
		 WHERE id = ?`,
		patch.ChatID, patch.ChatID,
		patch.Description, patch.Description,
		string(patch.Status), string(patch.Status),
		patch.Operator, patch.Operator,
		id,
	)
	if err != nil {
		return fmt.Errorf("update request: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update request: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("request %s: %w", id, ErrNotFound)
	}
	return nil
}

// RollbackRequest forces a request back to NEW with no operator. Used by the
// dispatcher to compensate a failed delivery; idempotent.
func (s *Store) RollbackRequest(ctx context.Context, id string) error {
	conn, err := s.conn()
	if err != nil {
		return err
	}
	res, err := conn.ExecContext(ctx,
		`UPDATE requests SET status = ?, operator = 0 WHERE id = ?`, string(StatusNew), id,
	)
	if err != nil {
		return fmt.Errorf("rollback request: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rollback request: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("request %s: %w", id, ErrNotFound)
	}
	return nil
}

// ListRequestsByChat returns all requests filed from one chat, oldest first.
func (s *Store) ListRequestsByChat(ctx context.Context, chatID int64) ([]Request, error) {
	return s.listRequests(ctx, `SELECT id, chat_id, description, status, operator FROM requests WHERE chat_id = ? ORDER BY rowid`, chatID)
}

// ListRequestsByStatus returns all requests in the given status, oldest
// first. The dispatcher relies on this order for fair pairing.
func (s *Store) ListRequestsByStatus(ctx context.Context, status RequestStatus) ([]Request, error) {
	return s.listRequests(ctx, `SELECT id, chat_id, description, status, operator FROM requests WHERE status = ? ORDER BY rowid`, string(status))
}

func (s *Store) listRequests(ctx context.Context, query string, arg any) ([]Request, error) {
	conn, err := s.conn()
	if err != nil {
		return nil, err
	}
	rows, err := conn.QueryContext(ctx, query, arg)
	if err != nil {
		return nil, fmt.Errorf("list requests: %w", err)
	}
	defer rows.Close()

	var out []Request
	for rows.Next() {
		var r Request
		if err := rows.Scan(&r.ID, &r.ChatID, &r.Description, &r.Status, &r.Operator); err != nil {
			return nil, fmt.Errorf("scan request: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
