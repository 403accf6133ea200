package transactions

import (
	"database/sql"
	"fmt"
)

// SumAmount totals every transaction whose currency is not in excluded.
func (r *transactionsRepo) SumAmount(tx *sql.Tx, excluded []string) (int64, error) {
	var total int64

	err := tx.QueryRow(`
		SELECT COALESCE(SUM(amount), 0)::BIGINT
		FROM transactions
		WHERE currency <> ALL($1::text[])
	`, excluded).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("sum transactions: %w", err)
	}

	return total, nil
}
