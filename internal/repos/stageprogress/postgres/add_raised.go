package stageprogress

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/fastprodman/cat0presale/internal/repos/stageprogress"
)

// AddRaised adds cents to the running total and returns the updated row.
// The stage is left for the caller to derive and save.
func (r *progressRepo) AddRaised(tx *sql.Tx, cents int64) (stageprogress.StageProgress, error) {
	var p stageprogress.StageProgress

	err := tx.QueryRow(`
		UPDATE stage_progress
		SET amount_raised = amount_raised + $2,
		    updated_at = now()
		WHERE id = $1
		RETURNING amount_raised, target_amount, current_stage, updated_at
	`, singletonID, cents).Scan(&p.AmountRaised, &p.TargetAmount, &p.CurrentStage, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return stageprogress.StageProgress{}, stageprogress.ErrProgressNotFound
		}

		return stageprogress.StageProgress{}, fmt.Errorf("add raised: %w", err)
	}

	return p, nil
}
