package balances

import (
	"context"
	"database/sql"
	"errors"
)

var (
	ErrInsufficientFunds = errors.New("insufficient funds")
	ErrBalanceNotFound   = errors.New("balance not found")
)

// Balances stores the integer token balance of each address.
type Balances interface {
	GetBalance(ctx context.Context, address string) (int64, error)
	LockAndGetBalance(tx *sql.Tx, address string) (int64, error)
	IncreaseBalance(tx *sql.Tx, address string, amount int64) (int64, error)
	DecreaseBalance(tx *sql.Tx, address string, amount int64) (int64, error)
	SetBalance(tx *sql.Tx, address string, amount int64) error
}
