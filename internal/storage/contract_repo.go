package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

type ContractRepo struct {
	db DBTX
}

func NewContractRepo(db DBTX) *ContractRepo {
	return &ContractRepo{db: db}
}

// Get returns the deployment record, or nil if the ledger has not been deployed.
func (r *ContractRepo) Get(ctx context.Context) (*Contract, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT owner, treasury, next_token_id, total_minted, total_evolved, deployed_at
		FROM contract
		WHERE id = 1
	`)
	var c Contract
	if err := row.Scan(&c.Owner, &c.Treasury, &c.NextTokenID, &c.TotalMinted, &c.TotalEvolved, &c.DeployedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("contract get: %w", err)
	}
	return &c, nil
}

func (r *ContractRepo) Insert(ctx context.Context, owner string, deployedAt int64) error {
	_, err := r.db.ExecContext(ctx, `INSERT INTO contract (id, owner, deployed_at) VALUES (1, ?, ?)`, owner, deployedAt)
	if err != nil {
		return fmt.Errorf("contract insert: %w", err)
	}
	return nil
}

func (r *ContractRepo) Update(ctx context.Context, c *Contract) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE contract
		SET owner = ?, treasury = ?, next_token_id = ?, total_minted = ?, total_evolved = ?
		WHERE id = 1
	`, c.Owner, c.Treasury, c.NextTokenID, c.TotalMinted, c.TotalEvolved)
	if err != nil {
		return fmt.Errorf("contract update: %w", err)
	}
	return nil
}
