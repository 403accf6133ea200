package ledger

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/fastprodman/cat0presale/internal/infra/logging"
	"github.com/fastprodman/cat0presale/internal/infra/pgutils"
	"github.com/shopspring/decimal"
)

func claimCooldownKey(address string) string { return "claim:" + address }

// ClaimRewards credits floor(amount), capped at the stored pending reward, as
// a REWARD and clears the pending reward balance. Only one claim per address
// is accepted per ClaimCooldown.
func (s *LedgerService) ClaimRewards(ctx context.Context, address string, amount decimal.Decimal) (ClaimResult, error) {
	address, err := NormalizeAddress(address)
	if err != nil {
		return ClaimResult{}, fmt.Errorf("claim rewards: %w", err)
	}

	if !amount.IsPositive() || amount.GreaterThan(decimal.NewFromInt(s.opts.MaxClaimAmount)) {
		return ClaimResult{}, fmt.Errorf("claim rewards: %w: %s outside (0, %d]",
			ErrInvalidAmount, amount, s.opts.MaxClaimAmount)
	}

	key := claimCooldownKey(address)

	ok, left, err := s.opts.Cooldowns.Acquire(ctx, key, s.opts.ClaimCooldown)
	if err != nil {
		return ClaimResult{}, fmt.Errorf("claim rewards: acquire cooldown: %w", err)
	}

	if !ok {
		return ClaimResult{}, &CooldownError{RetryAfter: left}
	}

	var (
		balance int64
		claimed int64
	)

	err = pgutils.WithRetryTx(ctx, s.db, s.opts.Retry, func(tx *sql.Tx) error {
		pending, e := s.rewards.LockAndGetRewardBalance(tx, address)
		if e != nil {
			return fmt.Errorf("lock reward balance: %w", e)
		}

		claimed = min(amount.Floor().IntPart(), pending.Floor().IntPart())
		if claimed <= 0 {
			return fmt.Errorf("%w: pending %s", ErrNoPendingReward, pending)
		}

		balance, e = s.applyBalanceTx(tx, balanceWrite{
			address:  address,
			ledger:   claimed,
			credited: claimed,
			add:      true,
			currency: CurrencyCAT0,
			price:    decimal.Zero,
			isReward: true,
		})
		if e != nil {
			return e
		}

		_, e = s.rewards.SetRewardBalance(tx, address, decimal.Zero)
		if e != nil {
			return fmt.Errorf("reset reward balance: %w", e)
		}

		return nil
	})
	if err != nil {
		// a failed claim must not cost the caller a cooldown window
		rerr := s.opts.Cooldowns.Release(context.WithoutCancel(ctx), key)
		if rerr != nil {
			logging.FromContext(ctx).ErrorContext(ctx, "release claim cooldown", "address", address, "error", rerr)
		}

		return ClaimResult{}, fmt.Errorf("claim rewards: %w", err)
	}

	logging.FromContext(ctx).InfoContext(ctx, "rewards claimed",
		"address", address, "claimed", claimed, "balance", balance)

	return ClaimResult{Balance: balance, Claimed: claimed}, nil
}
