package balances

import (
	"context"
	"testing"
	"time"

	"github.com/fastprodman/cat0presale/internal/infra/pgtestutil"
)

func TestBalances_LockAndGetBalance_CreatesMissingRow(t *testing.T) {
	t.Parallel()

	db, cleanup := pgtestutil.NewTestDB(t)
	defer cleanup()

	repo := New(db)

	ctx, cancel := context.WithTimeout(t.Context(), 5*time.Second)
	defer cancel()

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		t.Fatalf("begin tx: %v", err)
	}
	defer func() { _ = tx.Rollback() }()

	got, err := repo.LockAndGetBalance(tx, addrA)
	if err != nil {
		t.Fatalf("lock/get: %v", err)
	}

	if got != 0 {
		t.Fatalf("want 0 for new address, got %d", got)
	}

	err = tx.Commit()
	if err != nil {
		t.Fatalf("commit: %v", err)
	}

	got, err = repo.GetBalance(ctx, addrA)
	if err != nil {
		t.Fatalf("get balance after ensure: %v", err)
	}

	if got != 0 {
		t.Fatalf("want 0, got %d", got)
	}
}

func TestBalances_LockAndGetBalance_ExistingRow(t *testing.T) {
	t.Parallel()

	db, cleanup := pgtestutil.NewTestDB(t)
	defer cleanup()

	seedBalance(t, db, addrA, 12_345)

	repo := New(db)

	tx, err := db.BeginTx(t.Context(), nil)
	if err != nil {
		t.Fatalf("begin tx: %v", err)
	}
	defer func() { _ = tx.Rollback() }()

	got, err := repo.LockAndGetBalance(tx, addrA)
	if err != nil {
		t.Fatalf("lock/get: %v", err)
	}

	if got != 12_345 {
		t.Fatalf("balance mismatch: want 12345, got %d", got)
	}
}

// A second FOR UPDATE on the same address must wait for the first tx.
func TestBalances_LockAndGetBalance_LocksRow(t *testing.T) {
	t.Parallel()

	db, cleanup := pgtestutil.NewTestDB(t)
	defer cleanup()

	seedBalance(t, db, addrA, 200)

	repo := New(db)

	ctx1, cancel1 := context.WithTimeout(t.Context(), 10*time.Second)
	defer cancel1()

	tx1, err := db.BeginTx(ctx1, nil)
	if err != nil {
		t.Fatalf("begin tx1: %v", err)
	}
	defer func() { _ = tx1.Rollback() }()

	_, err = repo.LockAndGetBalance(tx1, addrA)
	if err != nil {
		t.Fatalf("tx1 lock/get: %v", err)
	}

	_, err = repo.IncreaseBalance(tx1, addrA, 50)
	if err != nil {
		t.Fatalf("tx1 increase: %v", err)
	}

	type result struct {
		balance int64
		err     error
	}

	started := make(chan struct{})
	resCh := make(chan result, 1)

	go func() {
		ctx2, cancel2 := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel2()

		tx2, e := db.BeginTx(ctx2, nil)
		if e != nil {
			resCh <- result{err: e}
			return
		}
		defer func() { _ = tx2.Rollback() }()

		close(started)

		bal, e := repo.LockAndGetBalance(tx2, addrA)
		resCh <- result{balance: bal, err: e}
	}()

	select {
	case <-started:
	case <-time.After(2 * time.Second):
		t.Fatal("timeout waiting for tx2 to start")
	}

	select {
	case res := <-resCh:
		t.Fatalf("tx2 did not block on the row lock: %+v", res)
	case <-time.After(200 * time.Millisecond):
	}

	err = tx1.Commit()
	if err != nil {
		t.Fatalf("commit tx1: %v", err)
	}

	select {
	case res := <-resCh:
		if res.err != nil {
			t.Fatalf("tx2 error: %v", res.err)
		}

		// tx2 must observe tx1's committed write
		if res.balance != 250 {
			t.Fatalf("tx2 balance: want 250, got %d", res.balance)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("timeout waiting for tx2 after tx1 commit")
	}
}
