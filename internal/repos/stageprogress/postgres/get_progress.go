package stageprogress

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/fastprodman/cat0presale/internal/repos/stageprogress"
)

func (r *progressRepo) GetProgress(ctx context.Context) (stageprogress.StageProgress, error) {
	var p stageprogress.StageProgress

	err := r.db.QueryRowContext(ctx, `
		SELECT amount_raised, target_amount, current_stage, updated_at
		FROM stage_progress
		WHERE id = $1
	`, singletonID).Scan(&p.AmountRaised, &p.TargetAmount, &p.CurrentStage, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return stageprogress.StageProgress{}, stageprogress.ErrProgressNotFound
		}

		return stageprogress.StageProgress{}, fmt.Errorf("get progress: %w", err)
	}

	return p, nil
}

func (r *progressRepo) LockAndGetProgress(tx *sql.Tx) (stageprogress.StageProgress, error) {
	var p stageprogress.StageProgress

	err := tx.QueryRow(`
		SELECT amount_raised, target_amount, current_stage, updated_at
		FROM stage_progress
		WHERE id = $1
		FOR UPDATE
	`, singletonID).Scan(&p.AmountRaised, &p.TargetAmount, &p.CurrentStage, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return stageprogress.StageProgress{}, stageprogress.ErrProgressNotFound
		}

		return stageprogress.StageProgress{}, fmt.Errorf("lock/get progress: %w", err)
	}

	return p, nil
}
