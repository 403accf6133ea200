package jackpot

import (
	"context"
	"database/sql"
	"errors"
)

var ErrJackpotNotFound = errors.New("jackpot not found")

// Jackpot is the global loot box prize pool, in whole tokens.
type Jackpot interface {
	GetJackpot(ctx context.Context) (int64, error)
	LockAndGetJackpot(tx *sql.Tx) (int64, error)
	IncreaseJackpot(tx *sql.Tx, amount int64) (int64, error)
	ResetJackpot(tx *sql.Tx, amount int64) error
}
