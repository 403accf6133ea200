package ledger

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/fastprodman/cat0presale/internal/infra/logging"
	"github.com/fastprodman/cat0presale/internal/infra/pgutils"
	"github.com/fastprodman/cat0presale/internal/repos/balances"
	"github.com/fastprodman/cat0presale/internal/repos/transactions"
	"github.com/shopspring/decimal"
)

// balanceWrite is a validated BalanceUpdate.
type balanceWrite struct {
	address  string
	ledger   int64 // floor(requested), bonus-free
	credited int64 // floor(requested * (1 + bonus))
	add      bool
	currency Currency
	price    decimal.Decimal
	isReward bool
}

// ApplyBalance runs the full write in one DB transaction:
//
// 1) Lock (creating if absent) the address's balance row.
// 2) Add the credited amount, or set it as the new absolute balance.
// 3) Recompute and store the VIP tier.
// 4) Insert the transaction row if the bonus-free delta is nonzero.
// 5) Add qualifying amounts to the stage progress.
//
// BTC only records the transaction and returns the unchanged balance.
func (s *LedgerService) ApplyBalance(ctx context.Context, u BalanceUpdate) (int64, error) {
	w, err := validateUpdate(u)
	if err != nil {
		return 0, fmt.Errorf("apply balance: %w", err)
	}

	if w.currency == CurrencyBTC {
		return s.recordBTC(ctx, w)
	}

	var balance int64

	err = pgutils.WithRetryTx(ctx, s.db, s.opts.Retry, func(tx *sql.Tx) error {
		var e error
		balance, e = s.applyBalanceTx(tx, w)

		return e
	})
	if err != nil {
		return 0, fmt.Errorf("apply balance: %w", err)
	}

	logging.FromContext(ctx).InfoContext(ctx, "balance updated",
		"address", w.address,
		"currency", w.currency,
		"add", w.add,
		"is_reward", w.isReward,
		"credited", w.credited,
		"balance", balance,
	)

	return balance, nil
}

func validateUpdate(u BalanceUpdate) (balanceWrite, error) {
	address, err := NormalizeAddress(u.Address)
	if err != nil {
		return balanceWrite{}, err
	}

	currency := u.Currency
	if currency == "" {
		currency = CurrencyCAT0
	}

	if _, ok := paymentCurrencies[currency]; !ok {
		return balanceWrite{}, fmt.Errorf("%w: %q", ErrInvalidCurrency, currency)
	}

	bonus, err := resolveBonus(u.GiftCode, u.GiftCodeBonus)
	if err != nil {
		return balanceWrite{}, err
	}

	ledgerAmount, credited, err := splitAmount(u.Amount, bonus)
	if err != nil {
		return balanceWrite{}, err
	}

	add := u.IsReward || u.AddToBalance
	if !add && credited < 0 {
		return balanceWrite{}, fmt.Errorf("%w: absolute balance must not be negative", ErrInvalidAmount)
	}

	return balanceWrite{
		address:  address,
		ledger:   ledgerAmount,
		credited: credited,
		add:      add,
		currency: currency,
		price:    u.Price,
		isReward: u.IsReward,
	}, nil
}

func (s *LedgerService) applyBalanceTx(tx *sql.Tx, w balanceWrite) (int64, error) {
	previous, err := s.balances.LockAndGetBalance(tx, w.address)
	if err != nil {
		return 0, fmt.Errorf("lock and get balance: %w", err)
	}

	var (
		balance int64
		delta   int64
	)

	if w.add {
		balance, err = s.balances.IncreaseBalance(tx, w.address, w.credited)
		if err != nil {
			return 0, fmt.Errorf("increase balance: %w", err)
		}

		delta = w.ledger
	} else {
		err = s.balances.SetBalance(tx, w.address, w.credited)
		if err != nil {
			return 0, fmt.Errorf("set balance: %w", err)
		}

		balance = w.credited
		delta = w.ledger - previous
	}

	err = s.powerLevels.UpsertVipStatus(tx, w.address, string(VipFor(balance)))
	if err != nil {
		return 0, fmt.Errorf("upsert vip status: %w", err)
	}

	if delta == 0 {
		return balance, nil
	}

	tag := w.currency
	if w.isReward {
		tag = CurrencyReward
	}

	err = s.insertTransaction(tx, w.address, abs(delta), w.price, tag)
	if err != nil {
		return 0, err
	}

	return balance, nil
}

// insertTransaction appends a ledger row and, for qualifying currencies, adds
// it to the stage progress in the same transaction.
func (s *LedgerService) insertTransaction(tx *sql.Tx, address string, amount int64, price decimal.Decimal, currency Currency) error {
	_, err := s.txns.Insert(tx, transactions.Transaction{
		Address:  address,
		Amount:   amount,
		Price:    price,
		Currency: string(currency),
	})
	if err != nil {
		return fmt.Errorf("insert transaction: %w", err)
	}

	if !countsTowardRaise(currency) {
		return nil
	}

	err = s.addRaised(tx, amount)
	if err != nil {
		return fmt.Errorf("update stage progress: %w", err)
	}

	return nil
}

func (s *LedgerService) recordBTC(ctx context.Context, w balanceWrite) (int64, error) {
	err := pgutils.WithRetryTx(ctx, s.db, s.opts.Retry, func(tx *sql.Tx) error {
		return s.insertTransaction(tx, w.address, abs(w.ledger), w.price, CurrencyBTC)
	})
	if err != nil {
		return 0, fmt.Errorf("record btc transaction: %w", err)
	}

	logging.FromContext(ctx).InfoContext(ctx, "btc transaction recorded",
		"address", w.address, "amount", abs(w.ledger))

	return s.GetBalance(ctx, w.address)
}

// GetBalance returns 0 for an address that never had a balance.
func (s *LedgerService) GetBalance(ctx context.Context, address string) (int64, error) {
	address, err := NormalizeAddress(address)
	if err != nil {
		return 0, fmt.Errorf("get balance: %w", err)
	}

	var balance int64

	err = pgutils.WithRetry(ctx, s.db, s.opts.Retry, func(ctx context.Context) error {
		var e error
		balance, e = s.balances.GetBalance(ctx, address)

		return e
	})
	if err != nil {
		if errors.Is(err, balances.ErrBalanceNotFound) {
			return 0, nil
		}

		return 0, fmt.Errorf("get balance: %w", err)
	}

	return balance, nil
}

func countsTowardRaise(c Currency) bool {
	for _, ex := range stageExcluded {
		if string(c) == ex {
			return false
		}
	}

	return true
}
