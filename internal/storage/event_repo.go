package storage

import (
	"context"
	"database/sql"
	"fmt"
)

// EventRepo is the append-only log of committed engine events.
type EventRepo struct {
	db DBTX
}

func NewEventRepo(db DBTX) *EventRepo {
	return &EventRepo{db: db}
}

func (r *EventRepo) Append(ctx context.Context, kind string, tokenID *int64, payload string, at int64) (int64, error) {
	res, err := r.db.ExecContext(ctx, `INSERT INTO events (kind, token_id, payload, at) VALUES (?, ?, ?, ?)`, kind, tokenID, payload, at)
	if err != nil {
		return 0, fmt.Errorf("event insert: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("event last insert id: %w", err)
	}
	return id, nil
}

// ListAfter returns up to limit events with id > afterID, oldest first.
func (r *EventRepo) ListAfter(ctx context.Context, afterID int64, limit int) ([]Event, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, kind, token_id, payload, at
		FROM events
		WHERE id > ?
		ORDER BY id ASC
		LIMIT ?
	`, afterID, limit)
	if err != nil {
		return nil, fmt.Errorf("event list: %w", err)
	}
	defer rows.Close()

	var out []Event
	for rows.Next() {
		var (
			e     Event
			token sql.NullInt64
		)
		if err := rows.Scan(&e.ID, &e.Kind, &token, &e.Payload, &e.At); err != nil {
			return nil, fmt.Errorf("event scan: %w", err)
		}
		if token.Valid {
			v := token.Int64
			e.TokenID = &v
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("event rows: %w", err)
	}
	return out, nil
}

// LastID returns the highest event id, or 0 for an empty log.
func (r *EventRepo) LastID(ctx context.Context) (int64, error) {
	var id int64
	if err := r.db.QueryRowContext(ctx, `SELECT COALESCE(MAX(id), 0) FROM events`).Scan(&id); err != nil {
		return 0, fmt.Errorf("event last id: %w", err)
	}
	return id, nil
}
