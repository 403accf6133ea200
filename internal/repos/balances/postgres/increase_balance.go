package balances

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/fastprodman/cat0presale/internal/repos/balances"
)

func (r *balancesRepo) IncreaseBalance(tx *sql.Tx, address string, amount int64) (int64, error) {
	var newAmount int64

	err := tx.QueryRow(`
		UPDATE balances
		SET amount = amount + $2,
		    updated_at = now()
		WHERE address = $1
		RETURNING amount
	`, address, amount).Scan(&newAmount)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, balances.ErrBalanceNotFound
		}

		return 0, fmt.Errorf("increase balance: %w", err)
	}

	return newAmount, nil
}
