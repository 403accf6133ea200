package stageprogress

import (
	"database/sql"
	"fmt"

	"github.com/fastprodman/cat0presale/internal/repos/stageprogress"
)

func (r *progressRepo) SaveProgress(tx *sql.Tx, amountRaised int64, stage int) error {
	res, err := tx.Exec(`
		UPDATE stage_progress
		SET amount_raised = $2,
		    current_stage = $3,
		    updated_at = now()
		WHERE id = $1
	`, singletonID, amountRaised, stage)
	if err != nil {
		return fmt.Errorf("save progress: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}

	if affected == 0 {
		return stageprogress.ErrProgressNotFound
	}

	return nil
}
