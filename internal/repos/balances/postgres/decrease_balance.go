package balances

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/fastprodman/cat0presale/internal/repos/balances"
)

func (r *balancesRepo) DecreaseBalance(tx *sql.Tx, address string, amount int64) (int64, error) {
	var newAmount int64

	err := tx.QueryRow(`
		UPDATE balances
		SET amount = amount - $2,
		    updated_at = now()
		WHERE address = $1
		  AND amount >= $2
		RETURNING amount
	`, address, amount).Scan(&newAmount)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, balances.ErrInsufficientFunds
		}

		return 0, fmt.Errorf("decrease balance: %w", err)
	}

	return newAmount, nil
}
