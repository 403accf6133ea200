package pgutils

import (
	"context"
	"database/sql/driver"
	"errors"
	"io"
	"log/slog"
	"net"
	"syscall"
	"time"

	"github.com/fastprodman/cat0presale/internal/config"
	"github.com/jackc/pgx/v5/pgconn"
)

// RetryPolicy bounds WithRetry. Delay doubles after every failed attempt and
// is capped at MaxDelay.
type RetryPolicy struct {
	Attempts  int
	BaseDelay time.Duration
	MaxDelay  time.Duration
}

func PolicyFromConfig(cfg config.RetryConfig) RetryPolicy {
	return RetryPolicy{
		Attempts:  cfg.Attempts,
		BaseDelay: cfg.BaseDelay,
		MaxDelay:  cfg.MaxDelay,
	}
}

// Pinger is satisfied by *sql.DB. A ping before a retry makes database/sql
// discard broken connections and dial a fresh one.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// WithRetry runs fn until it succeeds, fails with an error that is not a
// connection loss, or the policy is exhausted.
func WithRetry(ctx context.Context, p Pinger, policy RetryPolicy, fn func(ctx context.Context) error) error {
	return withRetry(ctx, p, policy, IsConnectionError, fn)
}

func withRetry(
	ctx context.Context,
	p Pinger,
	policy RetryPolicy,
	retryable func(error) bool,
	fn func(ctx context.Context) error,
) error {
	attempts := max(policy.Attempts, 1)
	delay := policy.BaseDelay

	var err error

	for attempt := 1; attempt <= attempts; attempt++ {
		err = fn(ctx)
		if err == nil || !retryable(err) || attempt == attempts {
			return err
		}

		slog.WarnContext(ctx, "database connection lost, retrying",
			"attempt", attempt, "max_attempts", attempts, "delay", delay, "error", err)

		select {
		case <-ctx.Done():
			return errors.Join(err, ctx.Err())
		case <-time.After(delay):
		}

		if p != nil {
			perr := p.PingContext(ctx)
			if perr != nil {
				slog.WarnContext(ctx, "reconnect ping failed", "error", perr)
			}
		}

		delay *= 2
		if policy.MaxDelay > 0 && delay > policy.MaxDelay {
			delay = policy.MaxDelay
		}
	}

	return err
}

// IsConnectionError reports whether err means the connection to Postgres
// was lost or never established, as opposed to a query or data error.
func IsConnectionError(err error) bool {
	if err == nil {
		return false
	}

	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}

	if errors.Is(err, driver.ErrBadConn) ||
		errors.Is(err, io.ErrUnexpectedEOF) ||
		errors.Is(err, syscall.ECONNREFUSED) ||
		errors.Is(err, syscall.ECONNRESET) ||
		errors.Is(err, syscall.EPIPE) {
		return true
	}

	if pgconn.SafeToRetry(err) {
		return true
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		// class 08: connection exception; 57P01..57P03: admin shutdown, crash, cannot connect now
		switch {
		case len(pgErr.Code) == 5 && pgErr.Code[:2] == "08":
			return true
		case pgErr.Code == "57P01", pgErr.Code == "57P02", pgErr.Code == "57P03":
			return true
		}

		return false
	}

	var opErr *net.OpError

	return errors.As(err, &opErr)
}
