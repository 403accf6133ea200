package ledger

import (
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"
)

// maxRequestAmount keeps bonus math and cents conversion inside int64.
var maxRequestAmount = decimal.NewFromInt(1_000_000_000_000_000)

// NormalizeAddress validates an EVM address and returns it as lowercase 0x hex.
func NormalizeAddress(address string) (string, error) {
	address = strings.TrimSpace(address)
	if !common.IsHexAddress(address) {
		return "", fmt.Errorf("%w: %q", ErrInvalidAddress, address)
	}

	return strings.ToLower(common.HexToAddress(address).Hex()), nil
}

// splitAmount returns the bonus-free ledger amount floor(requested) and the
// credited amount floor(requested * (1 + bonus)).
func splitAmount(requested, bonus decimal.Decimal) (ledgerAmount, credited int64, err error) {
	if requested.Abs().GreaterThan(maxRequestAmount) {
		return 0, 0, fmt.Errorf("%w: %s exceeds limit", ErrInvalidAmount, requested)
	}

	ledgerAmount = requested.Floor().IntPart()
	credited = requested.Mul(decimal.NewFromInt(1).Add(bonus)).Floor().IntPart()

	return ledgerAmount, credited, nil
}

func abs(v int64) int64 {
	if v < 0 {
		return -v
	}

	return v
}

// displayAmount converts a stored amount to display units: CAT0 is kept as
// is, everything else is stored in cents.
func displayAmount(amount int64, currency string) decimal.Decimal {
	if currency == string(CurrencyCAT0) {
		return decimal.NewFromInt(amount)
	}

	return decimal.New(amount, -2)
}
