// Package lootbox draws loot box rewards. It holds no state: the caller
// supplies the random source and applies the reward to the ledger.
package lootbox

import "math/rand/v2"

type RewardType string

const (
	RewardJackpot  RewardType = "jackpot"
	RewardTokens   RewardType = "tokens"
	RewardPowerUp  RewardType = "powerup"
	RewardGiftCode RewardType = "giftcode"
)

const (
	Cost          = 5_000
	JackpotSeed   = 1_000_000
	JackpotChance = 0.001
	MaxPowerLevel = 10
)

// Odds bands, upper bounds of the first draw.
const (
	tokensBand  = 0.6
	powerUpBand = 0.75
)

// Source yields uniform draws in [0, 1).
type Source interface {
	Float64() float64
}

// SourceFunc adapts a function to Source.
type SourceFunc func() float64

func (f SourceFunc) Float64() float64 { return f() }

// DefaultSource is safe for concurrent use.
var DefaultSource Source = SourceFunc(rand.Float64)

type Reward struct {
	Type   RewardType
	Amount int64
	Code   string

	// fallback is credited instead of a power-up at max level or a gift
	// code while the address's gift code window is closed.
	fallback int64
}

// Roll draws one reward. Jackpot rewards carry no amount; the caller fills in
// the current pool.
func Roll(src Source) Reward {
	r := src.Float64()

	switch {
	case r < JackpotChance:
		return Reward{Type: RewardJackpot}
	case r < tokensBand:
		return Reward{Type: RewardTokens, Amount: tokens(src, 10_000, 1_000)}
	case r < powerUpBand:
		return Reward{Type: RewardPowerUp, fallback: tokens(src, 10_000, 1_000)}
	}

	code := giftCode(src.Float64())

	return Reward{Type: RewardGiftCode, Code: code, fallback: tokens(src, 11_000, 500)}
}

// AsTokens turns a power-up or gift code into its token fallback. Other
// rewards are returned unchanged.
func (r Reward) AsTokens() Reward {
	if r.Type != RewardPowerUp && r.Type != RewardGiftCode {
		return r
	}

	return Reward{Type: RewardTokens, Amount: r.fallback}
}

// JackpotContribution is the share of a cost or token win added to the pool.
func JackpotContribution(amount int64) int64 {
	return amount / 10
}

func tokens(src Source, span, base int64) int64 {
	return int64(src.Float64()*float64(span)) + base
}

func giftCode(g float64) string {
	switch {
	case g < 0.5:
		return "7AI25"
	case g < 0.8:
		return "7AI35"
	default:
		return "7AI45"
	}
}
