package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

type TraitRepo struct {
	db DBTX
}

func NewTraitRepo(db DBTX) *TraitRepo {
	return &TraitRepo{db: db}
}

func (r *TraitRepo) Append(ctx context.Context, tokenID int64, trait, partner string, at int64) (int64, error) {
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO token_traits (token_id, trait, partner, infused_at)
		VALUES (?, ?, ?, ?)
	`, tokenID, trait, partner, at)
	if err != nil {
		return 0, fmt.Errorf("trait insert: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("trait last insert id: %w", err)
	}
	return id, nil
}

func (r *TraitRepo) Count(ctx context.Context, tokenID int64) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM token_traits WHERE token_id = ?`, tokenID).Scan(&n); err != nil {
		return 0, fmt.Errorf("trait count: %w", err)
	}
	return n, nil
}

// At returns the trait at the zero-based position in infusion order, or nil.
func (r *TraitRepo) At(ctx context.Context, tokenID int64, index int) (*Trait, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, token_id, trait, partner, infused_at
		FROM token_traits
		WHERE token_id = ?
		ORDER BY id ASC
		LIMIT 1 OFFSET ?
	`, tokenID, index)
	var t Trait
	if err := row.Scan(&t.ID, &t.TokenID, &t.Trait, &t.Partner, &t.InfusedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("trait at: %w", err)
	}
	return &t, nil
}

// Page returns up to limit traits starting at offset, in infusion order.
func (r *TraitRepo) Page(ctx context.Context, tokenID int64, offset, limit int) ([]Trait, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, token_id, trait, partner, infused_at
		FROM token_traits
		WHERE token_id = ?
		ORDER BY id ASC
		LIMIT ? OFFSET ?
	`, tokenID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("trait page: %w", err)
	}
	defer rows.Close()

	var out []Trait
	for rows.Next() {
		var t Trait
		if err := rows.Scan(&t.ID, &t.TokenID, &t.Trait, &t.Partner, &t.InfusedAt); err != nil {
			return nil, fmt.Errorf("trait scan: %w", err)
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("trait rows: %w", err)
	}
	return out, nil
}

func (r *TraitRepo) Delete(ctx context.Context, id int64) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM token_traits WHERE id = ?`, id); err != nil {
		return fmt.Errorf("trait delete: %w", err)
	}
	return nil
}
