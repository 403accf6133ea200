package api

import (
	"context"

	"github.com/fastprodman/cat0presale/internal/services/ledger"
	"github.com/shopspring/decimal"
)

// fakeLedger returns canned values and records the last write.
type fakeLedger struct {
	err error

	progress ledger.ProgressView
	txs      []ledger.TransactionView
	buyers   []ledger.TopBuyerView
	balance  int64
	reward   decimal.Decimal
	level    ledger.PowerLevelView
	powerUp  ledger.PowerUpResult
	claim    ledger.ClaimResult
	lootBox  ledger.LootBoxResult
	jackpot  int64

	lastUpdate  ledger.BalanceUpdate
	lastAddress string
	lastAmount  decimal.Decimal
	lastLevel   int
	lastMult    float64
	panicOn     string
}

var _ LedgerService = (*fakeLedger)(nil)

func (f *fakeLedger) GetProgress(context.Context) (ledger.ProgressView, error) {
	return f.progress, f.err
}

func (f *fakeLedger) RecentTransactions(context.Context) ([]ledger.TransactionView, error) {
	return f.txs, f.err
}

func (f *fakeLedger) TopBuyers(context.Context) ([]ledger.TopBuyerView, error) {
	return f.buyers, f.err
}

func (f *fakeLedger) GetBalance(_ context.Context, address string) (int64, error) {
	if f.panicOn == "GetBalance" {
		panic("boom")
	}

	f.lastAddress = address

	return f.balance, f.err
}

func (f *fakeLedger) ApplyBalance(_ context.Context, u ledger.BalanceUpdate) (int64, error) {
	f.lastUpdate = u

	return f.balance, f.err
}

func (f *fakeLedger) GetRewardBalance(_ context.Context, address string) (decimal.Decimal, error) {
	f.lastAddress = address

	return f.reward, f.err
}

func (f *fakeLedger) SetRewardBalance(_ context.Context, address string, amount decimal.Decimal) (decimal.Decimal, error) {
	f.lastAddress = address
	f.lastAmount = amount

	return amount, f.err
}

func (f *fakeLedger) ClaimRewards(_ context.Context, address string, amount decimal.Decimal) (ledger.ClaimResult, error) {
	f.lastAddress = address
	f.lastAmount = amount

	return f.claim, f.err
}

func (f *fakeLedger) GetPowerLevel(_ context.Context, address string) (ledger.PowerLevelView, error) {
	f.lastAddress = address

	return f.level, f.err
}

func (f *fakeLedger) SetPowerLevel(_ context.Context, address string, level int, multiplier float64) (ledger.PowerLevelView, error) {
	f.lastAddress = address
	f.lastLevel = level
	f.lastMult = multiplier

	return f.level, f.err
}

func (f *fakeLedger) PowerUp(_ context.Context, address string) (ledger.PowerUpResult, error) {
	f.lastAddress = address

	return f.powerUp, f.err
}

func (f *fakeLedger) OpenLootBox(_ context.Context, address string) (ledger.LootBoxResult, error) {
	f.lastAddress = address

	return f.lootBox, f.err
}

func (f *fakeLedger) Jackpot(context.Context) (int64, error) {
	return f.jackpot, f.err
}
