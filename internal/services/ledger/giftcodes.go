package ledger

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

var giftCodes = map[string]decimal.Decimal{
	"CVB":   decimal.RequireFromString("0.07"),
	"7AI25": decimal.RequireFromString("0.25"),
	"7AI35": decimal.RequireFromString("0.35"),
	"7AI45": decimal.RequireFromString("0.45"),
}

var maxBonus = decimal.NewFromInt(1)

// GiftCodeBonus resolves a code, case-insensitively, to its fractional bonus.
func GiftCodeBonus(code string) (decimal.Decimal, error) {
	bonus, ok := giftCodes[strings.ToUpper(strings.TrimSpace(code))]
	if !ok {
		return decimal.Zero, fmt.Errorf("%w: %q", ErrUnknownGiftCode, code)
	}

	return bonus, nil
}

func resolveBonus(code string, bonus decimal.Decimal) (decimal.Decimal, error) {
	if strings.TrimSpace(code) != "" {
		return GiftCodeBonus(code)
	}

	if bonus.IsNegative() || bonus.GreaterThan(maxBonus) {
		return decimal.Zero, fmt.Errorf("%w: gift code bonus %s outside [0, 1]", ErrInvalidAmount, bonus)
	}

	return bonus, nil
}
