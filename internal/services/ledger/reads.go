package ledger

import (
	"context"
	"fmt"

	"github.com/fastprodman/cat0presale/internal/infra/pgutils"
	"github.com/fastprodman/cat0presale/internal/repos/transactions"
	gocache "github.com/patrickmn/go-cache"
	"github.com/shopspring/decimal"
)

const topBuyersCacheKey = "top-buyers"

// topBuyerPriceDivisor turns a buyer's total into the BNB price estimate.
var topBuyerPriceDivisor = decimal.NewFromInt(600)

// RecentTransactions returns the newest transactions in display units.
func (s *LedgerService) RecentTransactions(ctx context.Context) ([]TransactionView, error) {
	var rows []transactions.Transaction

	err := pgutils.WithRetry(ctx, s.db, s.opts.Retry, func(ctx context.Context) error {
		var e error
		rows, e = s.txns.Recent(ctx, recentTransactionsLimit)

		return e
	})
	if err != nil {
		return nil, fmt.Errorf("recent transactions: %w", err)
	}

	out := make([]TransactionView, 0, len(rows))
	for _, t := range rows {
		out = append(out, TransactionView{
			ID:        t.ID,
			Amount:    displayAmount(t.Amount, t.Currency),
			Price:     t.Price,
			Address:   t.Address,
			Currency:  t.Currency,
			Timestamp: t.CreatedAt,
		})
	}

	return out, nil
}

// TopBuyers ranks addresses by contribution outside BTC and CAT0. Results are
// cached for Options.TopBuyersTTL.
func (s *LedgerService) TopBuyers(ctx context.Context) ([]TopBuyerView, error) {
	if s.opts.TopBuyersTTL > 0 {
		if v, ok := s.cache.Get(topBuyersCacheKey); ok {
			cached, _ := v.([]TopBuyerView)

			return cached, nil
		}
	}

	var rows []transactions.TopBuyer

	err := pgutils.WithRetry(ctx, s.db, s.opts.Retry, func(ctx context.Context) error {
		var e error
		rows, e = s.txns.TopBuyers(ctx, topBuyersLimit, topBuyersExcluded)

		return e
	})
	if err != nil {
		return nil, fmt.Errorf("top buyers: %w", err)
	}

	out := make([]TopBuyerView, 0, len(rows))
	for _, b := range rows {
		total := decimal.NewFromInt(b.Total).Round(2)

		out = append(out, TopBuyerView{
			TransactionView: TransactionView{
				ID:        b.Latest.ID,
				Amount:    total,
				Price:     total.Div(topBuyerPriceDivisor),
				Address:   b.Latest.Address,
				Currency:  b.Latest.Currency,
				Timestamp: b.Latest.CreatedAt,
			},
			TotalAmount: total,
		})
	}

	if s.opts.TopBuyersTTL > 0 {
		s.cache.Set(topBuyersCacheKey, out, gocache.DefaultExpiration)
	}

	return out, nil
}
