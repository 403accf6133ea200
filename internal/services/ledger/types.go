package ledger

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/fastprodman/cat0presale/internal/repos/balances"
	"github.com/fastprodman/cat0presale/internal/repos/powerlevels"
	"github.com/shopspring/decimal"
)

type Currency string

const (
	CurrencyCAT0   Currency = "CAT0"
	CurrencyETH    Currency = "ETH"
	CurrencyUSDT   Currency = "USDT"
	CurrencyBNB    Currency = "BNB"
	CurrencyBTC    Currency = "BTC"
	CurrencyBUSD   Currency = "BUSD"
	CurrencyReward Currency = "REWARD"
)

var (
	// payment currencies accepted from callers; REWARD is only set via IsReward
	paymentCurrencies = map[Currency]struct{}{
		CurrencyCAT0: {}, CurrencyETH: {}, CurrencyUSDT: {},
		CurrencyBNB: {}, CurrencyBTC: {}, CurrencyBUSD: {},
	}

	// not counted toward the presale raise
	stageExcluded = []string{string(CurrencyReward), string(CurrencyBTC), string(CurrencyCAT0)}

	topBuyersExcluded = []string{string(CurrencyBTC), string(CurrencyCAT0)}
)

var (
	ErrInvalidAddress    = errors.New("invalid address")
	ErrInvalidCurrency   = errors.New("invalid currency")
	ErrInvalidAmount     = errors.New("invalid amount")
	ErrUnknownGiftCode   = errors.New("unknown gift code")
	ErrInvalidPowerLevel = errors.New("invalid power level")
	ErrCooldownActive    = errors.New("cooldown active")
	ErrNoPendingReward   = errors.New("no pending reward")

	ErrInsufficientFunds = balances.ErrInsufficientFunds
	ErrMaxPowerLevel     = powerlevels.ErrMaxLevelReached
)

// CooldownError is returned while a claim cooldown is held.
type CooldownError struct {
	RetryAfter time.Duration
}

func (e *CooldownError) Error() string {
	return fmt.Sprintf("cooldown active, retry after %s", e.RetryAfter.Round(time.Second))
}

func (e *CooldownError) Is(target error) bool { return target == ErrCooldownActive }

// ParseCurrency maps a caller supplied tag to a payment currency. Empty means
// CAT0.
func ParseCurrency(s string) (Currency, error) {
	s = strings.ToUpper(strings.TrimSpace(s))
	if s == "" {
		return CurrencyCAT0, nil
	}

	c := Currency(s)
	if _, ok := paymentCurrencies[c]; !ok {
		return "", fmt.Errorf("%w: %q", ErrInvalidCurrency, s)
	}

	return c, nil
}

// BalanceUpdate is one balance write request.
type BalanceUpdate struct {
	Address      string
	Amount       decimal.Decimal
	AddToBalance bool
	Currency     Currency
	Price        decimal.Decimal
	IsReward     bool

	// GiftCode wins over GiftCodeBonus when both are set.
	GiftCode      string
	GiftCodeBonus decimal.Decimal
}

type ProgressView struct {
	AmountRaised decimal.Decimal
	TargetAmount decimal.Decimal
	CurrentStage int
	Progress     string
}

type TransactionView struct {
	ID        int64
	Amount    decimal.Decimal
	Price     decimal.Decimal
	Address   string
	Currency  string
	Timestamp time.Time
}

type TopBuyerView struct {
	TransactionView
	TotalAmount decimal.Decimal
}

type PowerLevelView struct {
	Level      int
	Multiplier float64
	VipStatus  VipStatus
}

type PowerUpResult struct {
	Balance    int64
	Cost       int64
	PowerLevel PowerLevelView
}

type ClaimResult struct {
	Balance int64
	Claimed int64
}
