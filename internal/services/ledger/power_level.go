package ledger

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/fastprodman/cat0presale/internal/infra/logging"
	"github.com/fastprodman/cat0presale/internal/infra/pgutils"
	"github.com/fastprodman/cat0presale/internal/lootbox"
	"github.com/fastprodman/cat0presale/internal/repos/powerlevels"
	"github.com/shopspring/decimal"
)

const (
	minMultiplier = 1.0
	maxMultiplier = 10.0
)

var defaultPowerLevel = PowerLevelView{Level: 1, Multiplier: 1.0, VipStatus: VipBronze}

func (s *LedgerService) GetPowerLevel(ctx context.Context, address string) (PowerLevelView, error) {
	address, err := NormalizeAddress(address)
	if err != nil {
		return PowerLevelView{}, fmt.Errorf("get power level: %w", err)
	}

	var pl powerlevels.PowerLevel

	err = pgutils.WithRetry(ctx, s.db, s.opts.Retry, func(ctx context.Context) error {
		var e error
		pl, e = s.powerLevels.GetPowerLevel(ctx, address)

		return e
	})
	if err != nil {
		if errors.Is(err, powerlevels.ErrPowerLevelNotFound) {
			return defaultPowerLevel, nil
		}

		return PowerLevelView{}, fmt.Errorf("get power level: %w", err)
	}

	return powerLevelView(pl), nil
}

// SetPowerLevel stores level and multiplier as given. A new row takes its VIP
// tier from the current balance.
func (s *LedgerService) SetPowerLevel(ctx context.Context, address string, level int, multiplier float64) (PowerLevelView, error) {
	address, err := NormalizeAddress(address)
	if err != nil {
		return PowerLevelView{}, fmt.Errorf("set power level: %w", err)
	}

	if level < 1 || level > lootbox.MaxPowerLevel {
		return PowerLevelView{}, fmt.Errorf("set power level: %w: level %d outside [1, %d]",
			ErrInvalidPowerLevel, level, lootbox.MaxPowerLevel)
	}

	if multiplier < minMultiplier || multiplier > maxMultiplier {
		return PowerLevelView{}, fmt.Errorf("set power level: %w: multiplier %v outside [%v, %v]",
			ErrInvalidPowerLevel, multiplier, minMultiplier, maxMultiplier)
	}

	balance, err := s.GetBalance(ctx, address)
	if err != nil {
		return PowerLevelView{}, fmt.Errorf("set power level: %w", err)
	}

	var pl powerlevels.PowerLevel

	err = pgutils.WithRetryTx(ctx, s.db, s.opts.Retry, func(tx *sql.Tx) error {
		var e error
		pl, e = s.powerLevels.SetPowerLevel(tx, address, level, multiplier, string(VipFor(balance)))

		return e
	})
	if err != nil {
		return PowerLevelView{}, fmt.Errorf("set power level: %w", err)
	}

	return powerLevelView(pl), nil
}

// PowerUp buys one level for PowerUpCostBase times the current level.
func (s *LedgerService) PowerUp(ctx context.Context, address string) (PowerUpResult, error) {
	address, err := NormalizeAddress(address)
	if err != nil {
		return PowerUpResult{}, fmt.Errorf("power up: %w", err)
	}

	var res PowerUpResult

	err = pgutils.WithRetryTx(ctx, s.db, s.opts.Retry, func(tx *sql.Tx) error {
		balance, e := s.balances.LockAndGetBalance(tx, address)
		if e != nil {
			return fmt.Errorf("lock and get balance: %w", e)
		}

		current, e := s.powerLevels.LockAndGetPowerLevel(tx, address)
		if e != nil {
			if !errors.Is(e, powerlevels.ErrPowerLevelNotFound) {
				return fmt.Errorf("get power level: %w", e)
			}

			current = powerlevels.PowerLevel{Level: 1, Multiplier: 1.0}
		}

		if current.Level >= lootbox.MaxPowerLevel {
			return ErrMaxPowerLevel
		}

		cost := int64(PowerUpCostBase * current.Level)
		if balance < cost {
			return ErrInsufficientFunds
		}

		balance, e = s.balances.DecreaseBalance(tx, address, cost)
		if e != nil {
			return fmt.Errorf("debit power up: %w", e)
		}

		e = s.insertTransaction(tx, address, cost, decimal.Zero, CurrencyCAT0)
		if e != nil {
			return e
		}

		pl, e := s.powerLevels.RaiseLevel(tx, address, lootbox.MaxPowerLevel, string(VipFor(balance)))
		if e != nil {
			return fmt.Errorf("raise level: %w", e)
		}

		vip := VipFor(balance)

		e = s.powerLevels.UpsertVipStatus(tx, address, string(vip))
		if e != nil {
			return fmt.Errorf("upsert vip status: %w", e)
		}

		pl.VipStatus = string(vip)
		res = PowerUpResult{Balance: balance, Cost: cost, PowerLevel: powerLevelView(pl)}

		return nil
	})
	if err != nil {
		return PowerUpResult{}, fmt.Errorf("power up: %w", err)
	}

	logging.FromContext(ctx).InfoContext(ctx, "power up applied",
		"address", address, "level", res.PowerLevel.Level, "cost", res.Cost, "balance", res.Balance)

	return res, nil
}

func powerLevelView(pl powerlevels.PowerLevel) PowerLevelView {
	return PowerLevelView{
		Level:      pl.Level,
		Multiplier: pl.Multiplier,
		VipStatus:  VipStatus(pl.VipStatus),
	}
}
