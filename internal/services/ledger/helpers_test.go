package ledger

import (
	"database/sql"
	"testing"
	"time"

	"github.com/fastprodman/cat0presale/internal/cooldown"
	"github.com/fastprodman/cat0presale/internal/infra/pgtestutil"
	"github.com/fastprodman/cat0presale/internal/lootbox"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

const (
	addrA = "0xaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa"
	addrB = "0xbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbb"
	addrC = "0xcccccccccccccccccccccccccccccccccccccccc"
	addrD = "0xdddddddddddddddddddddddddddddddddddddddd"
)

func newTestService(t *testing.T, mutate ...func(*Options)) (*LedgerService, *sql.DB) {
	t.Helper()

	db, cleanup := pgtestutil.NewTestDB(t)
	t.Cleanup(cleanup)

	opts := DefaultOptions()
	opts.Cooldowns = cooldown.NewMemoryStore(time.Minute)
	opts.TopBuyersTTL = 0

	for _, m := range mutate {
		m(&opts)
	}

	return New(db, opts), db
}

// replay returns a lootbox source yielding vals in order.
func replay(vals ...float64) lootbox.Source {
	i := 0

	return lootbox.SourceFunc(func() float64 {
		v := vals[i%len(vals)]
		i++

		return v
	})
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func seedBalance(t *testing.T, db *sql.DB, address string, amount int64) {
	t.Helper()

	_, err := db.Exec(`INSERT INTO balances (address, amount) VALUES ($1, $2)`, address, amount)
	require.NoError(t, err)
}

type txRow struct {
	Amount   int64
	Currency string
}

func txRows(t *testing.T, db *sql.DB, address string) []txRow {
	t.Helper()

	rows, err := db.Query(`SELECT amount, currency FROM transactions WHERE address = $1 ORDER BY id`, address)
	require.NoError(t, err)

	defer func() { _ = rows.Close() }()

	var out []txRow

	for rows.Next() {
		var r txRow
		require.NoError(t, rows.Scan(&r.Amount, &r.Currency))
		out = append(out, r)
	}

	require.NoError(t, rows.Err())

	return out
}

func vipOf(t *testing.T, db *sql.DB, address string) string {
	t.Helper()

	var vip string

	err := db.QueryRow(`SELECT vip_status FROM power_levels WHERE address = $1`, address).Scan(&vip)
	require.NoError(t, err)

	return vip
}
