package powerlevels

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/fastprodman/cat0presale/internal/repos/powerlevels"
)

func (r *powerLevelsRepo) GetPowerLevel(ctx context.Context, address string) (powerlevels.PowerLevel, error) {
	var pl powerlevels.PowerLevel

	err := r.db.QueryRowContext(ctx, `
		SELECT level, multiplier, vip_status, updated_at
		FROM power_levels
		WHERE address = $1
	`, address).Scan(&pl.Level, &pl.Multiplier, &pl.VipStatus, &pl.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return powerlevels.PowerLevel{}, powerlevels.ErrPowerLevelNotFound
		}

		return powerlevels.PowerLevel{}, fmt.Errorf("get power level: %w", err)
	}

	return pl, nil
}

func (r *powerLevelsRepo) LockAndGetPowerLevel(tx *sql.Tx, address string) (powerlevels.PowerLevel, error) {
	var pl powerlevels.PowerLevel

	err := tx.QueryRow(`
		SELECT level, multiplier, vip_status, updated_at
		FROM power_levels
		WHERE address = $1
		FOR UPDATE
	`, address).Scan(&pl.Level, &pl.Multiplier, &pl.VipStatus, &pl.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return powerlevels.PowerLevel{}, powerlevels.ErrPowerLevelNotFound
		}

		return powerlevels.PowerLevel{}, fmt.Errorf("lock/get power level: %w", err)
	}

	return pl, nil
}
