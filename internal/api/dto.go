package api

import (
	"bytes"
	"encoding/json"
	"time"

	"github.com/fastprodman/cat0presale/internal/lootbox"
	"github.com/fastprodman/cat0presale/internal/services/ledger"
	"github.com/shopspring/decimal"
)

// lenientDecimal accepts a JSON number or numeric string. Anything else,
// including null, decodes as zero.
type lenientDecimal struct {
	decimal.Decimal
}

func (d *lenientDecimal) UnmarshalJSON(b []byte) error {
	raw := bytes.Trim(bytes.TrimSpace(b), `"`)

	v, err := decimal.NewFromString(string(raw))
	if err != nil {
		d.Decimal = decimal.Zero

		return nil
	}

	d.Decimal = v

	return nil
}

type balanceRequest struct {
	Balance       *decimal.Decimal `json:"balance"`
	AddToBalance  bool             `json:"addToBalance"`
	Currency      string           `json:"currency"`
	Price         lenientDecimal   `json:"price"`
	IsReward      bool             `json:"isReward"`
	GiftCode      string           `json:"giftCode"`
	GiftCodeBonus lenientDecimal   `json:"giftCodeBonus"`
}

type amountRequest struct {
	Amount *decimal.Decimal `json:"amount"`
}

type powerLevelRequest struct {
	Level      *int     `json:"level"`
	Multiplier *float64 `json:"multiplier"`
}

type progressDTO struct {
	AmountRaised float64     `json:"amountRaised"`
	TargetAmount float64     `json:"targetAmount"`
	CurrentStage int         `json:"currentStage"`
	Progress     json.Number `json:"progress"`
}

func newProgressDTO(p ledger.ProgressView) progressDTO {
	return progressDTO{
		AmountRaised: p.AmountRaised.InexactFloat64(),
		TargetAmount: p.TargetAmount.InexactFloat64(),
		CurrentStage: p.CurrentStage,
		Progress:     json.Number(p.Progress),
	}
}

type transactionDTO struct {
	ID        int64     `json:"id"`
	Amount    float64   `json:"amount"`
	Price     float64   `json:"price"`
	Address   string    `json:"address"`
	Currency  string    `json:"currency"`
	Timestamp time.Time `json:"timestamp"`
}

func newTransactionDTO(t ledger.TransactionView) transactionDTO {
	return transactionDTO{
		ID:        t.ID,
		Amount:    t.Amount.InexactFloat64(),
		Price:     t.Price.InexactFloat64(),
		Address:   t.Address,
		Currency:  t.Currency,
		Timestamp: t.Timestamp,
	}
}

type topBuyerDTO struct {
	transactionDTO

	TotalAmount float64 `json:"totalAmount"`
}

type powerLevelDTO struct {
	Level      int     `json:"level"`
	Multiplier float64 `json:"multiplier"`
	VipStatus  string  `json:"vipStatus"`
}

func newPowerLevelDTO(pl ledger.PowerLevelView) powerLevelDTO {
	return powerLevelDTO{
		Level:      pl.Level,
		Multiplier: pl.Multiplier,
		VipStatus:  string(pl.VipStatus),
	}
}

type rewardDTO struct {
	Type   lootbox.RewardType `json:"type"`
	Amount int64              `json:"amount,omitempty"`
	Code   string             `json:"code,omitempty"`
}

func newRewardDTO(res ledger.LootBoxResult) rewardDTO {
	return rewardDTO{
		Type:   res.Reward.Type,
		Amount: res.Reward.Amount,
		Code:   res.Reward.Code,
	}
}
