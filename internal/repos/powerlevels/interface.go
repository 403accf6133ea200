package powerlevels

import (
	"context"
	"database/sql"
	"errors"
	"time"
)

var (
	ErrPowerLevelNotFound = errors.New("power level not found")
	ErrMaxLevelReached    = errors.New("max power level reached")
)

type PowerLevel struct {
	Level      int
	Multiplier float64
	VipStatus  string
	UpdatedAt  time.Time
}

type PowerLevels interface {
	GetPowerLevel(ctx context.Context, address string) (PowerLevel, error)
	LockAndGetPowerLevel(tx *sql.Tx, address string) (PowerLevel, error)
	UpsertVipStatus(tx *sql.Tx, address string, vipStatus string) error
	SetPowerLevel(tx *sql.Tx, address string, level int, multiplier float64, vipIfNew string) (PowerLevel, error)
	RaiseLevel(tx *sql.Tx, address string, maxLevel int, vipIfNew string) (PowerLevel, error)
}
