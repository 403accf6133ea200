package transactions

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

var ErrNegativeAmount = errors.New("transaction amount must not be negative")

// Transaction is an append-only ledger row. Amount is always non-negative.
type Transaction struct {
	ID        int64
	Address   string
	Amount    int64
	Price     decimal.Decimal
	Currency  string
	CreatedAt time.Time
}

// TopBuyer is an address with its summed contribution and its latest
// contributing transaction.
type TopBuyer struct {
	Total  int64
	Latest Transaction
}

type Transactions interface {
	Insert(tx *sql.Tx, t Transaction) (Transaction, error)
	Recent(ctx context.Context, limit int) ([]Transaction, error)
	TopBuyers(ctx context.Context, limit int, excluded []string) ([]TopBuyer, error)
	SumAmount(tx *sql.Tx, excluded []string) (int64, error)
}
