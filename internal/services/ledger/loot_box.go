package ledger

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/fastprodman/cat0presale/internal/infra/logging"
	"github.com/fastprodman/cat0presale/internal/infra/pgutils"
	"github.com/fastprodman/cat0presale/internal/lootbox"
	"github.com/fastprodman/cat0presale/internal/repos/jackpot"
	"github.com/fastprodman/cat0presale/internal/repos/powerlevels"
	"github.com/shopspring/decimal"
)

type LootBoxResult struct {
	Reward  lootbox.Reward
	Balance int64
	Jackpot int64

	// set for power-up rewards
	PowerLevel *PowerLevelView
}

func giftCodeWindowKey(address string) string { return "giftcode:" + address }

// OpenLootBox buys and opens one loot box:
//
// 1) Roll the reward; a gift code needs the address's gift code window.
// 2) Debit lootbox.Cost under the balance row lock.
// 3) Add the jackpot contribution of the cost.
// 4) Apply the reward and recompute the VIP tier.
func (s *LedgerService) OpenLootBox(ctx context.Context, address string) (LootBoxResult, error) {
	address, err := NormalizeAddress(address)
	if err != nil {
		return LootBoxResult{}, fmt.Errorf("open loot box: %w", err)
	}

	rolled := lootbox.Roll(s.opts.Random)

	holdsGiftWindow := false

	if rolled.Type == lootbox.RewardGiftCode {
		ok, _, aerr := s.opts.Cooldowns.Acquire(ctx, giftCodeWindowKey(address), s.opts.GiftCodeWindow)
		if aerr != nil {
			return LootBoxResult{}, fmt.Errorf("open loot box: acquire gift code window: %w", aerr)
		}

		if ok {
			holdsGiftWindow = true
		} else {
			rolled = rolled.AsTokens()
		}
	}

	var res LootBoxResult

	err = pgutils.WithRetryTx(ctx, s.db, s.opts.Retry, func(tx *sql.Tx) error {
		var e error
		res, e = s.openLootBoxTx(tx, address, rolled)

		return e
	})
	if err != nil {
		if holdsGiftWindow {
			rerr := s.opts.Cooldowns.Release(context.WithoutCancel(ctx), giftCodeWindowKey(address))
			if rerr != nil {
				logging.FromContext(ctx).ErrorContext(ctx, "release gift code window", "address", address, "error", rerr)
			}
		}

		return LootBoxResult{}, fmt.Errorf("open loot box: %w", err)
	}

	logging.FromContext(ctx).InfoContext(ctx, "loot box opened",
		"address", address,
		"reward", res.Reward.Type,
		"amount", res.Reward.Amount,
		"balance", res.Balance,
		"jackpot", res.Jackpot,
	)

	return res, nil
}

func (s *LedgerService) openLootBoxTx(tx *sql.Tx, address string, reward lootbox.Reward) (LootBoxResult, error) {
	var res LootBoxResult

	balance, err := s.balances.LockAndGetBalance(tx, address)
	if err != nil {
		return res, fmt.Errorf("lock and get balance: %w", err)
	}

	if balance < lootbox.Cost {
		return res, ErrInsufficientFunds
	}

	balance, err = s.balances.DecreaseBalance(tx, address, lootbox.Cost)
	if err != nil {
		return res, fmt.Errorf("debit loot box: %w", err)
	}

	err = s.insertTransaction(tx, address, lootbox.Cost, decimal.Zero, CurrencyCAT0)
	if err != nil {
		return res, err
	}

	_, err = s.jackpot.LockAndGetJackpot(tx)
	if err != nil {
		return res, fmt.Errorf("lock jackpot: %w", err)
	}

	pool, err := s.jackpot.IncreaseJackpot(tx, lootbox.JackpotContribution(lootbox.Cost))
	if err != nil {
		return res, fmt.Errorf("add cost to jackpot: %w", err)
	}

	switch reward.Type {
	case lootbox.RewardJackpot:
		reward.Amount = pool

		balance, err = s.creditLootBox(tx, address, reward.Amount)
		if err != nil {
			return res, err
		}

		err = s.jackpot.ResetJackpot(tx, lootbox.JackpotSeed)
		if err != nil {
			return res, fmt.Errorf("reset jackpot: %w", err)
		}

		pool = lootbox.JackpotSeed
	case lootbox.RewardPowerUp:
		pl, rerr := s.powerLevels.RaiseLevel(tx, address, lootbox.MaxPowerLevel, string(VipFor(balance)))

		switch {
		case errors.Is(rerr, powerlevels.ErrMaxLevelReached):
			reward = reward.AsTokens()
		case rerr != nil:
			return res, fmt.Errorf("raise level: %w", rerr)
		default:
			view := powerLevelView(pl)
			res.PowerLevel = &view
		}
	}

	if reward.Type == lootbox.RewardTokens {
		balance, err = s.creditLootBox(tx, address, reward.Amount)
		if err != nil {
			return res, err
		}

		pool, err = s.jackpot.IncreaseJackpot(tx, lootbox.JackpotContribution(reward.Amount))
		if err != nil {
			return res, fmt.Errorf("add win to jackpot: %w", err)
		}
	}

	vip := VipFor(balance)

	err = s.powerLevels.UpsertVipStatus(tx, address, string(vip))
	if err != nil {
		return res, fmt.Errorf("upsert vip status: %w", err)
	}

	if res.PowerLevel != nil {
		res.PowerLevel.VipStatus = vip
	}

	res.Reward = reward
	res.Balance = balance
	res.Jackpot = pool

	return res, nil
}

func (s *LedgerService) creditLootBox(tx *sql.Tx, address string, amount int64) (int64, error) {
	balance, err := s.balances.IncreaseBalance(tx, address, amount)
	if err != nil {
		return 0, fmt.Errorf("credit loot box win: %w", err)
	}

	err = s.insertTransaction(tx, address, amount, decimal.Zero, CurrencyCAT0)
	if err != nil {
		return 0, err
	}

	return balance, nil
}

// Jackpot returns the current pool, or the seed if the row is missing.
func (s *LedgerService) Jackpot(ctx context.Context) (int64, error) {
	var pool int64

	err := pgutils.WithRetry(ctx, s.db, s.opts.Retry, func(ctx context.Context) error {
		var e error
		pool, e = s.jackpot.GetJackpot(ctx)

		return e
	})
	if err != nil {
		if errors.Is(err, jackpot.ErrJackpotNotFound) {
			return lootbox.JackpotSeed, nil
		}

		return 0, fmt.Errorf("get jackpot: %w", err)
	}

	return pool, nil
}
