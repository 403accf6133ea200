package ledger

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/fastprodman/cat0presale/internal/infra/pgutils"
	"github.com/fastprodman/cat0presale/internal/repos/rewardbalances"
	"github.com/shopspring/decimal"
)

const rewardScale = 3

// NUMERIC(20,3)
var maxRewardBalance = decimal.New(1, 17)

func (s *LedgerService) GetRewardBalance(ctx context.Context, address string) (decimal.Decimal, error) {
	address, err := NormalizeAddress(address)
	if err != nil {
		return decimal.Zero, fmt.Errorf("get reward balance: %w", err)
	}

	var amount decimal.Decimal

	err = pgutils.WithRetry(ctx, s.db, s.opts.Retry, func(ctx context.Context) error {
		var e error
		amount, e = s.rewards.GetRewardBalance(ctx, address)

		return e
	})
	if err != nil {
		if errors.Is(err, rewardbalances.ErrRewardBalanceNotFound) {
			return decimal.Zero, nil
		}

		return decimal.Zero, fmt.Errorf("get reward balance: %w", err)
	}

	return amount, nil
}

// SetRewardBalance stores amount, rounded to 3 decimals, as the new pending
// reward.
func (s *LedgerService) SetRewardBalance(ctx context.Context, address string, amount decimal.Decimal) (decimal.Decimal, error) {
	address, err := NormalizeAddress(address)
	if err != nil {
		return decimal.Zero, fmt.Errorf("set reward balance: %w", err)
	}

	amount = amount.Round(rewardScale)
	if amount.IsNegative() || amount.GreaterThanOrEqual(maxRewardBalance) {
		return decimal.Zero, fmt.Errorf("set reward balance: %w: %s", ErrInvalidAmount, amount)
	}

	var stored decimal.Decimal

	err = pgutils.WithRetryTx(ctx, s.db, s.opts.Retry, func(tx *sql.Tx) error {
		var e error
		stored, e = s.rewards.SetRewardBalance(tx, address, amount)

		return e
	})
	if err != nil {
		return decimal.Zero, fmt.Errorf("set reward balance: %w", err)
	}

	return stored, nil
}
