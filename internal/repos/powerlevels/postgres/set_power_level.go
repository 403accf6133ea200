package powerlevels

import (
	"database/sql"
	"fmt"

	"github.com/fastprodman/cat0presale/internal/repos/powerlevels"
)

// SetPowerLevel writes level and multiplier. vipIfNew is only used when the
// row does not exist yet.
func (r *powerLevelsRepo) SetPowerLevel(
	tx *sql.Tx,
	address string,
	level int,
	multiplier float64,
	vipIfNew string,
) (powerlevels.PowerLevel, error) {
	var pl powerlevels.PowerLevel

	err := tx.QueryRow(`
		INSERT INTO power_levels (address, level, multiplier, vip_status)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (address) DO UPDATE
		SET level = EXCLUDED.level,
		    multiplier = EXCLUDED.multiplier,
		    updated_at = now()
		RETURNING level, multiplier, vip_status, updated_at
	`, address, level, multiplier, vipIfNew).Scan(&pl.Level, &pl.Multiplier, &pl.VipStatus, &pl.UpdatedAt)
	if err != nil {
		return powerlevels.PowerLevel{}, fmt.Errorf("set power level: %w", err)
	}

	return pl, nil
}
