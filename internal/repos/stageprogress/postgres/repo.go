package stageprogress

import (
	"database/sql"

	"github.com/fastprodman/cat0presale/internal/repos/stageprogress"
)

var _ stageprogress.Progress = (*progressRepo)(nil)

// singletonID is the fixed key of the only stage_progress row.
const singletonID = 1

type progressRepo struct{ db *sql.DB }

func New(db *sql.DB) *progressRepo {
	return &progressRepo{db: db}
}
