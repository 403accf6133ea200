package rewardbalances

import (
	"context"
	"database/sql"
	"errors"

	"github.com/shopspring/decimal"
)

var ErrRewardBalanceNotFound = errors.New("reward balance not found")

// RewardBalances holds the pending, not yet claimed, reward of each address.
type RewardBalances interface {
	GetRewardBalance(ctx context.Context, address string) (decimal.Decimal, error)
	SetRewardBalance(tx *sql.Tx, address string, amount decimal.Decimal) (decimal.Decimal, error)
	LockAndGetRewardBalance(tx *sql.Tx, address string) (decimal.Decimal, error)
}
