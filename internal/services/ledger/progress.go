package ledger

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math"

	"github.com/fastprodman/cat0presale/internal/infra/logging"
	"github.com/fastprodman/cat0presale/internal/infra/pgutils"
	"github.com/fastprodman/cat0presale/internal/repos/stageprogress"
	"github.com/shopspring/decimal"
)

var errRaisedOverflow = errors.New("amount raised overflows int64 cents")

// toCents converts display units to the cents stored in stage_progress.
func toCents(amount int64) (int64, error) {
	if amount > math.MaxInt64/100 || amount < math.MinInt64/100 {
		return 0, fmt.Errorf("%w: %d", errRaisedOverflow, amount)
	}

	return amount * 100, nil
}

// addRaised adds amount, in display units, to the running total and updates
// the stage when it changes.
func (s *LedgerService) addRaised(tx *sql.Tx, amount int64) error {
	cents, err := toCents(amount)
	if err != nil {
		return err
	}

	p, err := s.progress.AddRaised(tx, cents)
	if err != nil {
		return fmt.Errorf("add raised: %w", err)
	}

	stage := StageFor(p.AmountRaised, p.TargetAmount)
	if stage == p.CurrentStage {
		return nil
	}

	err = s.progress.SaveProgress(tx, p.AmountRaised, stage)
	if err != nil {
		return fmt.Errorf("save stage: %w", err)
	}

	return nil
}

// GetProgress reads the cached singleton. It never recomputes.
func (s *LedgerService) GetProgress(ctx context.Context) (ProgressView, error) {
	var p stageprogress.StageProgress

	err := pgutils.WithRetry(ctx, s.db, s.opts.Retry, func(ctx context.Context) error {
		var e error
		p, e = s.progress.GetProgress(ctx)

		return e
	})
	if err != nil {
		if !errors.Is(err, stageprogress.ErrProgressNotFound) {
			return ProgressView{}, fmt.Errorf("get progress: %w", err)
		}

		p = stageprogress.StageProgress{TargetAmount: TargetAmountCents, CurrentStage: MinStage}
	}

	return progressView(p), nil
}

// ReconcileProgress rebuilds the singleton from the full transaction history.
func (s *LedgerService) ReconcileProgress(ctx context.Context) (ProgressView, error) {
	var p stageprogress.StageProgress

	err := pgutils.WithRetryTx(ctx, s.db, s.opts.Retry, func(tx *sql.Tx) error {
		var e error

		// lock first so concurrent writers queue behind the recount
		p, e = s.progress.LockAndGetProgress(tx)
		if e != nil {
			return fmt.Errorf("lock progress: %w", e)
		}

		total, e := s.txns.SumAmount(tx, stageExcluded)
		if e != nil {
			return fmt.Errorf("sum transactions: %w", e)
		}

		p.AmountRaised, e = toCents(total)
		if e != nil {
			return e
		}

		p.CurrentStage = StageFor(p.AmountRaised, p.TargetAmount)

		return s.progress.SaveProgress(tx, p.AmountRaised, p.CurrentStage)
	})
	if err != nil {
		return ProgressView{}, fmt.Errorf("reconcile progress: %w", err)
	}

	logging.FromContext(ctx).InfoContext(ctx, "stage progress reconciled",
		"amount_raised_cents", p.AmountRaised, "stage", p.CurrentStage)

	return progressView(p), nil
}

func progressView(p stageprogress.StageProgress) ProgressView {
	pct := decimal.Zero
	if p.TargetAmount > 0 {
		pct = decimal.NewFromInt(p.AmountRaised).Mul(decimal.NewFromInt(100)).Div(decimal.NewFromInt(p.TargetAmount))
	}

	return ProgressView{
		AmountRaised: decimal.New(p.AmountRaised, -2),
		TargetAmount: decimal.New(p.TargetAmount, -2),
		CurrentStage: p.CurrentStage,
		Progress:     pct.StringFixed(2),
	}
}
