package ledger

import "github.com/shopspring/decimal"

const (
	// TargetAmountCents is the presale raise target.
	TargetAmountCents int64 = 100_000_000_000

	MinStage = 1
	MaxStage = 7
)

// highest first, percent of target
var stageThresholds = []struct {
	pct   int64
	stage int
}{
	{pct: 90, stage: 7},
	{pct: 75, stage: 6},
	{pct: 60, stage: 5},
	{pct: 45, stage: 4},
	{pct: 30, stage: 3},
	{pct: 15, stage: 2},
}

var hundred = decimal.NewFromInt(100)

// StageFor maps the amount raised to a presale stage. Comparison is exact,
// raised*100 >= target*pct, and carried out in decimal so it holds for any
// int64 input.
func StageFor(raised, target int64) int {
	if target <= 0 {
		return MinStage
	}

	scaled := decimal.NewFromInt(raised).Mul(hundred)
	base := decimal.NewFromInt(target)

	for _, t := range stageThresholds {
		if scaled.GreaterThanOrEqual(base.Mul(decimal.NewFromInt(t.pct))) {
			return t.stage
		}
	}

	return MinStage
}
