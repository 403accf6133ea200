package balances

import (
	"database/sql"
	"fmt"
)

func (r *balancesRepo) SetBalance(tx *sql.Tx, address string, amount int64) error {
	_, err := tx.Exec(`
		INSERT INTO balances (address, amount)
		VALUES ($1, $2)
		ON CONFLICT (address) DO UPDATE
		SET amount = EXCLUDED.amount,
		    updated_at = now()
	`, address, amount)
	if err != nil {
		return fmt.Errorf("set balance: %w", err)
	}

	return nil
}
