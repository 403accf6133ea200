package transactions

import (
	"context"
	"fmt"

	"github.com/fastprodman/cat0presale/internal/repos/transactions"
)

// Recent returns up to limit rows, newest first. Rows written in the same
// instant are ordered by id.
func (r *transactionsRepo) Recent(ctx context.Context, limit int) ([]transactions.Transaction, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, address, amount, price, currency, created_at
		FROM transactions
		ORDER BY created_at DESC, id DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("query recent transactions: %w", err)
	}
	//nolint:errcheck
	defer rows.Close()

	out := make([]transactions.Transaction, 0, limit)

	for rows.Next() {
		var t transactions.Transaction

		err = rows.Scan(&t.ID, &t.Address, &t.Amount, &t.Price, &t.Currency, &t.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}

		out = append(out, t)
	}

	err = rows.Err()
	if err != nil {
		return nil, fmt.Errorf("iterate transactions: %w", err)
	}

	return out, nil
}
