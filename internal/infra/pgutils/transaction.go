package pgutils

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
)

// commitError marks a failure of COMMIT itself. The server may have applied
// the transaction before the connection broke.
type commitError struct{ err error }

func (e *commitError) Error() string { return "commit tx: " + e.err.Error() }

func (e *commitError) Unwrap() error { return e.err }

// WithTx runs fn inside a transaction.
// It commits if fn returns nil, otherwise it rolls back.
func WithTx(ctx context.Context, db *sql.DB, fn func(*sql.Tx) error) error {
	tx, err := db.BeginTx(ctx, nil) // read committed; writers serialize on row locks
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}

	err = fn(tx)
	if err != nil {
		rbErr := tx.Rollback()
		if rbErr != nil {
			return fmt.Errorf("rollback after fn error: %v (fn err: %w)", rbErr, err)
		}

		return err
	}

	err = tx.Commit()
	if err != nil {
		return &commitError{err: err}
	}

	return nil
}

// WithRetryTx runs fn in a transaction, repeating the whole transaction when
// the connection is lost before COMMIT. A failed COMMIT is repeated only when
// the driver guarantees nothing reached the server.
func WithRetryTx(ctx context.Context, db *sql.DB, policy RetryPolicy, fn func(*sql.Tx) error) error {
	return withRetry(ctx, db, policy, isRetryableTxError, func(ctx context.Context) error {
		return WithTx(ctx, db, fn)
	})
}

func isRetryableTxError(err error) bool {
	var ce *commitError
	if errors.As(err, &ce) {
		return pgconn.SafeToRetry(ce.err)
	}

	return IsConnectionError(err)
}
