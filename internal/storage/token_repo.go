package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

type TokenRepo struct {
	db DBTX
}

func NewTokenRepo(db DBTX) *TokenRepo {
	return &TokenRepo{db: db}
}

const tokenColumns = `id, owner, energy_level, purity, core_element, generation,
	last_energized, current_streak, evolved, creation_time`

func (r *TokenRepo) Insert(ctx context.Context, t Token) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO tokens (`+tokenColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, t.ID, t.Owner, t.EnergyLevel, t.Purity, t.CoreElement, t.Generation,
		t.LastEnergized, t.CurrentStreak, boolToInt(t.Evolved), t.CreationTime)
	if err != nil {
		return fmt.Errorf("token insert: %w", err)
	}
	return nil
}

// Get returns the token, or nil if it was never minted or has been burned.
func (r *TokenRepo) Get(ctx context.Context, id int64) (*Token, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+tokenColumns+` FROM tokens WHERE id = ?`, id)
	return scanToken(row)
}

func (r *TokenRepo) Update(ctx context.Context, t *Token) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE tokens
		SET owner = ?, energy_level = ?, purity = ?, core_element = ?, generation = ?,
			last_energized = ?, current_streak = ?, evolved = ?
		WHERE id = ?
	`, t.Owner, t.EnergyLevel, t.Purity, t.CoreElement, t.Generation,
		t.LastEnergized, t.CurrentStreak, boolToInt(t.Evolved), t.ID)
	if err != nil {
		return fmt.Errorf("token update: %w", err)
	}
	return nil
}

// Delete burns the token row; its traits go with it through the cascade.
func (r *TokenRepo) Delete(ctx context.Context, id int64) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM tokens WHERE id = ?`, id); err != nil {
		return fmt.Errorf("token delete: %w", err)
	}
	return nil
}

func (r *TokenRepo) ListByOwner(ctx context.Context, owner string) ([]Token, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+tokenColumns+` FROM tokens WHERE owner = ? ORDER BY id ASC`, owner)
	if err != nil {
		return nil, fmt.Errorf("token list by owner: %w", err)
	}
	defer rows.Close()

	var out []Token
	for rows.Next() {
		t, err := scanToken(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("token list rows: %w", err)
	}
	return out, nil
}

func (r *TokenRepo) CountByOwner(ctx context.Context, owner string) (int64, error) {
	var n int64
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM tokens WHERE owner = ?`, owner).Scan(&n); err != nil {
		return 0, fmt.Errorf("token count by owner: %w", err)
	}
	return n, nil
}

func (r *TokenRepo) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM tokens`).Scan(&n); err != nil {
		return 0, fmt.Errorf("token count: %w", err)
	}
	return n, nil
}

func boolToInt(v bool) int {
	if v {
		return 1
	}
	return 0
}

type scanner interface {
	Scan(dest ...any) error
}

func scanToken(row scanner) (*Token, error) {
	var (
		t       Token
		evolved int
	)
	if err := row.Scan(
		&t.ID, &t.Owner, &t.EnergyLevel, &t.Purity, &t.CoreElement, &t.Generation,
		&t.LastEnergized, &t.CurrentStreak, &evolved, &t.CreationTime,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("token scan: %w", err)
	}
	t.Evolved = evolved != 0
	return &t, nil
}
