package powerlevels

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/fastprodman/cat0presale/internal/repos/powerlevels"
)

// RaiseLevel adds one level and 0.1 multiplier unless the row is already at
// maxLevel.
func (r *powerLevelsRepo) RaiseLevel(tx *sql.Tx, address string, maxLevel int, vipIfNew string) (powerlevels.PowerLevel, error) {
	_, err := tx.Exec(`
		INSERT INTO power_levels (address, level, multiplier, vip_status)
		VALUES ($1, 1, 1.0, $2)
		ON CONFLICT (address) DO NOTHING
	`, address, vipIfNew)
	if err != nil {
		return powerlevels.PowerLevel{}, fmt.Errorf("ensure power level row: %w", err)
	}

	var pl powerlevels.PowerLevel

	err = tx.QueryRow(`
		UPDATE power_levels
		SET level = level + 1,
		    multiplier = round((multiplier + 0.1)::numeric, 2)::double precision,
		    updated_at = now()
		WHERE address = $1
		  AND level < $2
		RETURNING level, multiplier, vip_status, updated_at
	`, address, maxLevel).Scan(&pl.Level, &pl.Multiplier, &pl.VipStatus, &pl.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return powerlevels.PowerLevel{}, powerlevels.ErrMaxLevelReached
		}

		return powerlevels.PowerLevel{}, fmt.Errorf("raise level: %w", err)
	}

	return pl, nil
}
