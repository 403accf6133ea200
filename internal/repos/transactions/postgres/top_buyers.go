package transactions

import (
	"context"
	"fmt"

	"github.com/fastprodman/cat0presale/internal/repos/transactions"
)

// TopBuyers ranks addresses by summed amount over currencies not in excluded.
// Each entry carries the address's newest transaction from the same set.
func (r *transactionsRepo) TopBuyers(ctx context.Context, limit int, excluded []string) ([]transactions.TopBuyer, error) {
	rows, err := r.db.QueryContext(ctx, `
		WITH totals AS (
			SELECT address, SUM(amount)::BIGINT AS total
			FROM transactions
			WHERE currency <> ALL($1::text[])
			GROUP BY address
			ORDER BY total DESC, address
			LIMIT $2
		)
		SELECT t.total, l.id, t.address, l.amount, l.price, l.currency, l.created_at
		FROM totals t
		JOIN LATERAL (
			SELECT id, amount, price, currency, created_at
			FROM transactions x
			WHERE x.address = t.address
			  AND x.currency <> ALL($1::text[])
			ORDER BY x.created_at DESC, x.id DESC
			LIMIT 1
		) l ON true
		ORDER BY t.total DESC, t.address
	`, excluded, limit)
	if err != nil {
		return nil, fmt.Errorf("query top buyers: %w", err)
	}
	//nolint:errcheck
	defer rows.Close()

	var out []transactions.TopBuyer

	for rows.Next() {
		var b transactions.TopBuyer

		err = rows.Scan(&b.Total, &b.Latest.ID, &b.Latest.Address, &b.Latest.Amount,
			&b.Latest.Price, &b.Latest.Currency, &b.Latest.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("scan top buyer: %w", err)
		}

		out = append(out, b)
	}

	err = rows.Err()
	if err != nil {
		return nil, fmt.Errorf("iterate top buyers: %w", err)
	}

	return out, nil
}
