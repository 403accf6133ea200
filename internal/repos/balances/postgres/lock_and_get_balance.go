package balances

import (
	"database/sql"
	"fmt"
)

// LockAndGetBalance creates a zero row for a new address and then locks it
// until tx ends, so concurrent writers to one address serialize here.
func (r *balancesRepo) LockAndGetBalance(tx *sql.Tx, address string) (int64, error) {
	_, err := tx.Exec(`
		INSERT INTO balances (address, amount)
		VALUES ($1, 0)
		ON CONFLICT (address) DO NOTHING
	`, address)
	if err != nil {
		return 0, fmt.Errorf("ensure balance row: %w", err)
	}

	var amount int64

	err = tx.QueryRow(`
		SELECT amount
		FROM balances
		WHERE address = $1
		FOR UPDATE
	`, address).Scan(&amount)
	if err != nil {
		return 0, fmt.Errorf("lock/get balance: %w", err)
	}

	return amount, nil
}
