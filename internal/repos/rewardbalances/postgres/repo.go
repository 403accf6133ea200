package rewardbalances

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/fastprodman/cat0presale/internal/repos/rewardbalances"
	"github.com/shopspring/decimal"
)

var _ rewardbalances.RewardBalances = (*rewardBalancesRepo)(nil)

type rewardBalancesRepo struct{ db *sql.DB }

func New(db *sql.DB) *rewardBalancesRepo {
	return &rewardBalancesRepo{db: db}
}

func (r *rewardBalancesRepo) GetRewardBalance(ctx context.Context, address string) (decimal.Decimal, error) {
	var amount decimal.Decimal

	err := r.db.QueryRowContext(ctx, `
		SELECT amount
		FROM reward_balances
		WHERE address = $1
	`, address).Scan(&amount)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return decimal.Zero, rewardbalances.ErrRewardBalanceNotFound
		}

		return decimal.Zero, fmt.Errorf("get reward balance: %w", err)
	}

	return amount, nil
}

// SetRewardBalance stores amount as the absolute value and returns it as
// rounded by the column.
func (r *rewardBalancesRepo) SetRewardBalance(tx *sql.Tx, address string, amount decimal.Decimal) (decimal.Decimal, error) {
	var stored decimal.Decimal

	err := tx.QueryRow(`
		INSERT INTO reward_balances (address, amount)
		VALUES ($1, $2)
		ON CONFLICT (address) DO UPDATE
		SET amount = EXCLUDED.amount,
		    updated_at = now()
		RETURNING amount
	`, address, amount).Scan(&stored)
	if err != nil {
		return decimal.Zero, fmt.Errorf("set reward balance: %w", err)
	}

	return stored, nil
}

// LockAndGetRewardBalance holds the pending reward row until tx ends. A missing
// row is created as zero so a concurrent set waits behind the lock too.
func (r *rewardBalancesRepo) LockAndGetRewardBalance(tx *sql.Tx, address string) (decimal.Decimal, error) {
	_, err := tx.Exec(`
		INSERT INTO reward_balances (address, amount)
		VALUES ($1, 0)
		ON CONFLICT (address) DO NOTHING
	`, address)
	if err != nil {
		return decimal.Zero, fmt.Errorf("ensure reward balance row: %w", err)
	}

	var amount decimal.Decimal

	err = tx.QueryRow(`
		SELECT amount
		FROM reward_balances
		WHERE address = $1
		FOR UPDATE
	`, address).Scan(&amount)
	if err != nil {
		return decimal.Zero, fmt.Errorf("lock/get reward balance: %w", err)
	}

	return amount, nil
}
