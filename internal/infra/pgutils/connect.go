package pgutils

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/fastprodman/cat0presale/internal/config"
	_ "github.com/jackc/pgx/v5/stdlib" // PostgreSQL driver
)

// OpenDB opens the pool and pings it, retrying the ping with a fixed backoff
// up to cfg.ConnectAttempts times.
func OpenDB(ctx context.Context, cfg config.PostgresConfig) (*sql.DB, error) {
	db, err := sql.Open("pgx", cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("open connection: %w", err)
	}

	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	attempts := max(cfg.ConnectAttempts, 1)

	for attempt := 1; ; attempt++ {
		err = db.PingContext(ctx)
		if err == nil {
			return db, nil
		}

		if attempt >= attempts {
			break
		}

		slog.Warn("database not reachable, retrying",
			"attempt", attempt, "max_attempts", attempts, "backoff", cfg.ConnectBackoff, "error", err)

		select {
		case <-ctx.Done():
			_ = db.Close()

			return nil, fmt.Errorf("ping database: %w", ctx.Err())
		case <-time.After(cfg.ConnectBackoff):
		}
	}

	_ = db.Close()

	return nil, fmt.Errorf("ping database after %d attempts: %w", attempts, err)
}
