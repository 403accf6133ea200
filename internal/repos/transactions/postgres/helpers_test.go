package transactions

import (
	"database/sql"
	"testing"
	"time"
)

const (
	addrA = "0xaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa"
	addrB = "0xbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbb"
	addrC = "0xcccccccccccccccccccccccccccccccccccccccc"
	addrD = "0xdddddddddddddddddddddddddddddddddddddddd"
)

var excluded = []string{"REWARD", "BTC", "CAT0"}

func seedTx(t *testing.T, db *sql.DB, address string, amount int64, currency string, at time.Time) int64 {
	t.Helper()

	var id int64

	err := db.QueryRow(`
		INSERT INTO transactions (address, amount, price, currency, created_at)
		VALUES ($1, $2, 0, $3, $4)
		RETURNING id
	`, address, amount, currency, at).Scan(&id)
	if err != nil {
		t.Fatalf("seed transaction: %v", err)
	}

	return id
}
