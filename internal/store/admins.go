package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

const adminColumns = `id, first_name, last_name, username, is_super, adder, added_at, chat_id`

// GetAdmin returns the admin with the given platform user id. The second
// return value is false when no such admin exists.
func (s *Store) GetAdmin(ctx context.Context, id int64) (Admin, bool, error) {
	conn, err := s.conn()
	if err != nil {
		return Admin{}, false, err
	}
	row := conn.QueryRowContext(ctx, `SELECT `+adminColumns+` FROM admins WHERE id = ?`, id)
	a, err := scanAdmin(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Admin{}, false, nil
	}
	if err != nil {
		return Admin{}, false, fmt.Errorf("get admin: %w", err)
	}
	return a, true, nil
}

// ListAdmins returns the admin roster.
func (s *Store) ListAdmins(ctx context.Context) ([]Admin, error) {
	conn, err := s.conn()
	if err != nil {
		return nil, err
	}
	rows, err := conn.QueryContext(ctx, `SELECT `+adminColumns+` FROM admins ORDER BY added_at, id`)
	if err != nil {
		return nil, fmt.Errorf("list admins: %w", err)
	}
	defer rows.Close()

	var out []Admin
	for rows.Next() {
		a, err := scanAdmin(rows)
		if err != nil {
			return nil, fmt.Errorf("scan admin: %w", err)
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// AddAdmin inserts a roster entry; re-adding an existing id is a no-op.
func (s *Store) AddAdmin(ctx context.Context, a Admin) error {
	conn, err := s.conn()
	if err != nil {
		return err
	}
	added := a.AddedAt
	if added.IsZero() {
		added = time.Now()
	}
	_, err = conn.ExecContext(ctx,
		`INSERT OR IGNORE INTO admins (id, first_name, last_name, username, is_super, adder, added_at, chat_id)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		a.ID, a.FirstName, a.LastName, a.Username, a.IsSuper, a.Adder, added.Unix(), a.ChatID,
	)
	if err != nil {
		return fmt.Errorf("add admin: %w", err)
	}
	return nil
}

// RemoveAdmin deletes a roster entry; removing an absent id is a no-op.
func (s *Store) RemoveAdmin(ctx context.Context, id int64) error {
	conn, err := s.conn()
	if err != nil {
		return err
	}
	if _, err := conn.ExecContext(ctx, `DELETE FROM admins WHERE id = ?`, id); err != nil {
		return fmt.Errorf("remove admin: %w", err)
	}
	return nil
}

// SetAdminChannel records the admin's private chat id.
func (s *Store) SetAdminChannel(ctx context.Context, id, chatID int64) error {
	conn, err := s.conn()
	if err != nil {
		return err
	}
	res, err := conn.ExecContext(ctx, `UPDATE admins SET chat_id = ? WHERE id = ?`, chatID, id)
	if err != nil {
		return fmt.Errorf("set admin channel: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("set admin channel: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("admin %d: %w", id, ErrNotFound)
	}
	return nil
}

func scanAdmin(row rowScanner) (Admin, error) {
	var a Admin
	var added int64
	if err := row.Scan(&a.ID, &a.FirstName, &a.LastName, &a.Username, &a.IsSuper, &a.Adder, &added, &a.ChatID); err != nil {
		return Admin{}, err
	}
	a.AddedAt = time.Unix(added, 0)
	return a, nil
}
