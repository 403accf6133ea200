package powerlevels

import (
	"database/sql"
	"fmt"
)

// UpsertVipStatus overwrites vip_status and leaves level and multiplier
// alone. A missing row is created at level 1, multiplier 1.0.
func (r *powerLevelsRepo) UpsertVipStatus(tx *sql.Tx, address string, vipStatus string) error {
	_, err := tx.Exec(`
		INSERT INTO power_levels (address, level, multiplier, vip_status)
		VALUES ($1, 1, 1.0, $2)
		ON CONFLICT (address) DO UPDATE
		SET vip_status = EXCLUDED.vip_status,
		    updated_at = now()
	`, address, vipStatus)
	if err != nil {
		return fmt.Errorf("upsert vip status: %w", err)
	}

	return nil
}
