package balances

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/fastprodman/cat0presale/internal/repos/balances"
)

func (r *balancesRepo) GetBalance(ctx context.Context, address string) (int64, error) {
	var amount int64

	err := r.db.QueryRowContext(ctx, `
		SELECT amount
		FROM balances
		WHERE address = $1
	`, address).Scan(&amount)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, balances.ErrBalanceNotFound
		}

		return 0, fmt.Errorf("get balance: %w", err)
	}

	return amount, nil
}
