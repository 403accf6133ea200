package transactions

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/fastprodman/cat0presale/internal/repos/transactions"
	"github.com/jackc/pgx/v5/pgconn"
)

// Insert appends t and returns it with the generated id and timestamp.
func (r *transactionsRepo) Insert(tx *sql.Tx, t transactions.Transaction) (transactions.Transaction, error) {
	err := tx.QueryRow(`
		INSERT INTO transactions (address, amount, price, currency)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at
	`, t.Address, t.Amount, t.Price, t.Currency).Scan(&t.ID, &t.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) {
			if pgErr.Code == "23514" { // check_violation
				return transactions.Transaction{}, transactions.ErrNegativeAmount
			}
		}

		return transactions.Transaction{}, fmt.Errorf("insert transaction: %w", err)
	}

	return t, nil
}
