package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

const operatorColumns = `id, first_name, last_name, username, adder, added_at, load, chat_id`

// GetOperator returns the operator with the given platform user id. The
// second return value is false when no such operator exists.
func (s *Store) GetOperator(ctx context.Context, id int64) (Operator, bool, error) {
	conn, err := s.conn()
	if err != nil {
		return Operator{}, false, err
	}
	row := conn.QueryRowContext(ctx, `SELECT `+operatorColumns+` FROM operators WHERE id = ?`, id)
	op, err := scanOperator(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Operator{}, false, nil
	}
	if err != nil {
		return Operator{}, false, fmt.Errorf("get operator: %w", err)
	}
	return op, true, nil
}

// ListOperators returns the roster in insertion order.
func (s *Store) ListOperators(ctx context.Context) ([]Operator, error) {
	return s.listOperators(ctx, `SELECT `+operatorColumns+` FROM operators ORDER BY seq`)
}

// ListOpenOperators returns operators not referenced by any IN_WORK request,
// least loaded first; ties break by insertion order.
func (s *Store) ListOpenOperators(ctx context.Context) ([]Operator, error) {
	return s.listOperators(ctx,
		`SELECT `+operatorColumns+` FROM operators
		 WHERE id NOT IN (SELECT operator FROM requests WHERE status = 'IN_WORK')
		 ORDER BY load, seq`)
}

// ListAllOperatorsSortedByLoad returns the whole roster least loaded first.
// Fallback candidate order when nobody is free.
func (s *Store) ListAllOperatorsSortedByLoad(ctx context.Context) ([]Operator, error) {
	return s.listOperators(ctx, `SELECT `+operatorColumns+` FROM operators ORDER BY load, seq`)
}

// AddOperator inserts a roster entry. Re-adding an existing id is a no-op:
// operators are neither duplicated nor updated this way.
func (s *Store) AddOperator(ctx context.Context, op Operator) error {
	conn, err := s.conn()
	if err != nil {
		return err
	}
	added := op.AddedAt
	if added.IsZero() {
		added = time.Now()
	}
	_, err = conn.ExecContext(ctx,
		`INSERT OR IGNORE INTO operators (id, first_name, last_name, username, adder, added_at, load, chat_id)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		op.ID, op.FirstName, op.LastName, op.Username, op.Adder, added.Unix(), op.Load, op.ChatID,
	)
	if err != nil {
		return fmt.Errorf("add operator: %w", err)
	}
	return nil
}

// RemoveOperator deletes a roster entry; removing an absent id is a no-op.
func (s *Store) RemoveOperator(ctx context.Context, id int64) error {
	conn, err := s.conn()
	if err != nil {
		return err
	}
	if _, err := conn.ExecContext(ctx, `DELETE FROM operators WHERE id = ?`, id); err != nil {
		return fmt.Errorf("remove operator: %w", err)
	}
	return nil
}

// UpdateOperatorLoad sets the load counter; ErrNotFound when the operator is
// missing.
func (s *Store) UpdateOperatorLoad(ctx context.Context, id int64, load int) error {
	conn, err := s.conn()
	if err != nil {
		return err
	}
	res, err := conn.ExecContext(ctx, `UPDATE operators SET load = ? WHERE id = ?`, load, id)
	if err != nil {
		return fmt.Errorf("update operator load: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update operator load: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("operator %d: %w", id, ErrNotFound)
	}
	return nil
}

// SetOperatorChannel records the operator's private chat for notifications.
func (s *Store) SetOperatorChannel(ctx context.Context, id, chatID int64) error {
	conn, err := s.conn()
	if err != nil {
		return err
	}
	res, err := conn.ExecContext(ctx, `UPDATE operators SET chat_id = ? WHERE id = ?`, chatID, id)
	if err != nil {
		return fmt.Errorf("set operator channel: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("set operator channel: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("operator %d: %w", id, ErrNotFound)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanOperator(row rowScanner) (Operator, error) {
	var op Operator
	var added int64
	if err := row.Scan(&op.ID, &op.FirstName, &op.LastName, &op.Username, &op.Adder, &added, &op.Load, &op.ChatID); err != nil {
		return Operator{}, err
	}
	op.AddedAt = time.Unix(added, 0)
	return op, nil
}

func (s *Store) listOperators(ctx context.Context, query string) ([]Operator, error) {
	conn, err := s.conn()
	if err != nil {
		return nil, err
	}
	rows, err := conn.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list operators: %w", err)
	}
	defer rows.Close()

	var out []Operator
	for rows.Next() {
		op, err := scanOperator(rows)
		if err != nil {
			return nil, fmt.Errorf("scan operator: %w", err)
		}
		out = append(out, op)
	}
	return out, rows.Err()
}
