package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

type PartnerRepo struct {
	db DBTX
}

func NewPartnerRepo(db DBTX) *PartnerRepo {
	return &PartnerRepo{db: db}
}

func (r *PartnerRepo) Get(ctx context.Context, address string) (*Partner, error) {
	row := r.db.QueryRowContext(ctx, `SELECT address, whitelisted, updated_at FROM partners WHERE address = ?`, address)
	var (
		p           Partner
		whitelisted int
	)
	if err := row.Scan(&p.Address, &whitelisted, &p.UpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("partner get: %w", err)
	}
	p.Whitelisted = whitelisted != 0
	return &p, nil
}

func (r *PartnerRepo) Upsert(ctx context.Context, p Partner) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO partners (address, whitelisted, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(address) DO UPDATE SET whitelisted = excluded.whitelisted, updated_at = excluded.updated_at
	`, p.Address, boolToInt(p.Whitelisted), p.UpdatedAt)
	if err != nil {
		return fmt.Errorf("partner upsert: %w", err)
	}
	return nil
}

func (r *PartnerRepo) ListWhitelisted(ctx context.Context) ([]Partner, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT address, whitelisted, updated_at FROM partners WHERE whitelisted = 1 ORDER BY address ASC`)
	if err != nil {
		return nil, fmt.Errorf("partner list: %w", err)
	}
	defer rows.Close()

	var out []Partner
	for rows.Next() {
		var (
			p           Partner
			whitelisted int
		)
		if err := rows.Scan(&p.Address, &whitelisted, &p.UpdatedAt); err != nil {
			return nil, fmt.Errorf("partner scan: %w", err)
		}
		p.Whitelisted = whitelisted != 0
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("partner rows: %w", err)
	}
	return out, nil
}
