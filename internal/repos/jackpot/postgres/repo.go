package jackpot

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/fastprodman/cat0presale/internal/repos/jackpot"
)

var _ jackpot.Jackpot = (*jackpotRepo)(nil)

const singletonID = 1

type jackpotRepo struct{ db *sql.DB }

func New(db *sql.DB) *jackpotRepo {
	return &jackpotRepo{db: db}
}

func (r *jackpotRepo) GetJackpot(ctx context.Context) (int64, error) {
	var amount int64

	err := r.db.QueryRowContext(ctx, `SELECT amount FROM jackpot WHERE id = $1`, singletonID).Scan(&amount)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, jackpot.ErrJackpotNotFound
		}

		return 0, fmt.Errorf("get jackpot: %w", err)
	}

	return amount, nil
}

func (r *jackpotRepo) LockAndGetJackpot(tx *sql.Tx) (int64, error) {
	var amount int64

	err := tx.QueryRow(`SELECT amount FROM jackpot WHERE id = $1 FOR UPDATE`, singletonID).Scan(&amount)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, jackpot.ErrJackpotNotFound
		}

		return 0, fmt.Errorf("lock/get jackpot: %w", err)
	}

	return amount, nil
}

func (r *jackpotRepo) IncreaseJackpot(tx *sql.Tx, amount int64) (int64, error) {
	var total int64

	err := tx.QueryRow(`
		UPDATE jackpot
		SET amount = amount + $2,
		    updated_at = now()
		WHERE id = $1
		RETURNING amount
	`, singletonID, amount).Scan(&total)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, jackpot.ErrJackpotNotFound
		}

		return 0, fmt.Errorf("increase jackpot: %w", err)
	}

	return total, nil
}

func (r *jackpotRepo) ResetJackpot(tx *sql.Tx, amount int64) error {
	_, err := tx.Exec(`
		UPDATE jackpot
		SET amount = $2,
		    updated_at = now()
		WHERE id = $1
	`, singletonID, amount)
	if err != nil {
		return fmt.Errorf("reset jackpot: %w", err)
	}

	return nil
}
