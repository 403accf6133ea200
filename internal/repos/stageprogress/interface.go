package stageprogress

import (
	"context"
	"database/sql"
	"errors"
	"time"
)

var ErrProgressNotFound = errors.New("stage progress not found")

// StageProgress is the global singleton. Amounts are in cents.
type StageProgress struct {
	AmountRaised int64
	TargetAmount int64
	CurrentStage int
	UpdatedAt    time.Time
}

type Progress interface {
	GetProgress(ctx context.Context) (StageProgress, error)
	LockAndGetProgress(tx *sql.Tx) (StageProgress, error)
	AddRaised(tx *sql.Tx, cents int64) (StageProgress, error)
	SaveProgress(tx *sql.Tx, amountRaised int64, stage int) error
}
