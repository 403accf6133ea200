package powerlevels

import (
	"database/sql"
	"errors"
	"testing"

	"github.com/fastprodman/cat0presale/internal/infra/pgtestutil"
	"github.com/fastprodman/cat0presale/internal/infra/pgutils"
	"github.com/fastprodman/cat0presale/internal/repos/powerlevels"
)

const addrA = "0xaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa"

func seedPowerLevel(t *testing.T, db *sql.DB, level int, multiplier float64, vip string) {
	t.Helper()

	_, err := db.Exec(`
		INSERT INTO power_levels (address, level, multiplier, vip_status) VALUES ($1, $2, $3, $4)
	`, addrA, level, multiplier, vip)
	if err != nil {
		t.Fatalf("seed power level: %v", err)
	}
}

func TestPowerLevels_GetPowerLevel_Missing(t *testing.T) {
	t.Parallel()

	db, cleanup := pgtestutil.NewTestDB(t)
	defer cleanup()

	_, err := New(db).GetPowerLevel(t.Context(), addrA)
	if !errors.Is(err, powerlevels.ErrPowerLevelNotFound) {
		t.Fatalf("want ErrPowerLevelNotFound, got %v", err)
	}
}

func TestPowerLevels_UpsertVipStatus(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		seed      func(t *testing.T, db *sql.DB)
		vip       string
		wantLevel int
		wantMult  float64
	}{
		{
			name:      "creates_with_defaults",
			seed:      func(*testing.T, *sql.DB) {},
			vip:       "Silver",
			wantLevel: 1,
			wantMult:  1.0,
		},
		{
			name:      "keeps_level_and_multiplier",
			seed:      func(t *testing.T, db *sql.DB) { seedPowerLevel(t, db, 4, 1.3, "Bronze") },
			vip:       "Diamond",
			wantLevel: 4,
			wantMult:  1.3,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			db, cleanup := pgtestutil.NewTestDB(t)
			defer cleanup()

			tt.seed(t, db)

			repo := New(db)

			err := pgutils.WithTx(t.Context(), db, func(tx *sql.Tx) error {
				return repo.UpsertVipStatus(tx, addrA, tt.vip)
			})
			if err != nil {
				t.Fatalf("upsert vip: %v", err)
			}

			got, err := repo.GetPowerLevel(t.Context(), addrA)
			if err != nil {
				t.Fatalf("get power level: %v", err)
			}

			if got.Level != tt.wantLevel || got.Multiplier != tt.wantMult || got.VipStatus != tt.vip {
				t.Fatalf("unexpected row: %+v", got)
			}
		})
	}
}

func TestPowerLevels_SetPowerLevel_KeepsExistingVip(t *testing.T) {
	t.Parallel()

	db, cleanup := pgtestutil.NewTestDB(t)
	defer cleanup()

	seedPowerLevel(t, db, 1, 1.0, "Gold")

	repo := New(db)

	var got powerlevels.PowerLevel

	err := pgutils.WithTx(t.Context(), db, func(tx *sql.Tx) error {
		var e error
		got, e = repo.SetPowerLevel(tx, addrA, 5, 1.4, "Bronze")

		return e
	})
	if err != nil {
		t.Fatalf("set power level: %v", err)
	}

	if got.Level != 5 || got.Multiplier != 1.4 || got.VipStatus != "Gold" {
		t.Fatalf("unexpected row: %+v", got)
	}
}

func TestPowerLevels_SetPowerLevel_NewRowUsesVip(t *testing.T) {
	t.Parallel()

	db, cleanup := pgtestutil.NewTestDB(t)
	defer cleanup()

	var got powerlevels.PowerLevel

	err := pgutils.WithTx(t.Context(), db, func(tx *sql.Tx) error {
		var e error
		got, e = New(db).SetPowerLevel(tx, addrA, 2, 1.1, "Platinum")

		return e
	})
	if err != nil {
		t.Fatalf("set power level: %v", err)
	}

	if got.Level != 2 || got.VipStatus != "Platinum" {
		t.Fatalf("unexpected row: %+v", got)
	}
}

func TestPowerLevels_RaiseLevel(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		seed      func(t *testing.T, db *sql.DB)
		wantLevel int
		wantMult  float64
		wantErr   error
	}{
		{
			name:      "missing_row_starts_at_one",
			seed:      func(*testing.T, *sql.DB) {},
			wantLevel: 2,
			wantMult:  1.1,
		},
		{
			name:      "multiplier_rounded",
			seed:      func(t *testing.T, db *sql.DB) { seedPowerLevel(t, db, 2, 1.1, "Bronze") },
			wantLevel: 3,
			wantMult:  1.2,
		},
		{
			name:    "at_max_level",
			seed:    func(t *testing.T, db *sql.DB) { seedPowerLevel(t, db, 10, 1.9, "Bronze") },
			wantErr: powerlevels.ErrMaxLevelReached,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			db, cleanup := pgtestutil.NewTestDB(t)
			defer cleanup()

			tt.seed(t, db)

			var got powerlevels.PowerLevel

			err := pgutils.WithTx(t.Context(), db, func(tx *sql.Tx) error {
				var e error
				got, e = New(db).RaiseLevel(tx, addrA, 10, "Bronze")

				return e
			})
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("want %v, got %v", tt.wantErr, err)
				}

				return
			}

			if err != nil {
				t.Fatalf("raise level: %v", err)
			}

			if got.Level != tt.wantLevel || got.Multiplier != tt.wantMult {
				t.Fatalf("want level=%d mult=%v, got %+v", tt.wantLevel, tt.wantMult, got)
			}
		})
	}
}

func TestPowerLevels_LockAndGetPowerLevel(t *testing.T) {
	t.Parallel()

	db, cleanup := pgtestutil.NewTestDB(t)
	defer cleanup()

	repo := New(db)

	tx, err := db.BeginTx(t.Context(), nil)
	if err != nil {
		t.Fatalf("begin tx: %v", err)
	}
	defer func() { _ = tx.Rollback() }()

	_, err = repo.LockAndGetPowerLevel(tx, addrA)
	if !errors.Is(err, powerlevels.ErrPowerLevelNotFound) {
		t.Fatalf("missing row: want ErrPowerLevelNotFound, got %v", err)
	}

	_ = tx.Rollback()

	seedPowerLevel(t, db, 6, 1.5, "Gold")

	tx, err = db.BeginTx(t.Context(), nil)
	if err != nil {
		t.Fatalf("begin tx: %v", err)
	}
	defer func() { _ = tx.Rollback() }()

	got, err := repo.LockAndGetPowerLevel(tx, addrA)
	if err != nil {
		t.Fatalf("lock/get: %v", err)
	}

	if got.Level != 6 || got.Multiplier != 1.5 || got.VipStatus != "Gold" {
		t.Fatalf("unexpected row: %+v", got)
	}
}
