package powerlevels

import (
	"database/sql"

	"github.com/fastprodman/cat0presale/internal/repos/powerlevels"
)

var _ powerlevels.PowerLevels = (*powerLevelsRepo)(nil)

type powerLevelsRepo struct{ db *sql.DB }

func New(db *sql.DB) *powerLevelsRepo {
	return &powerLevelsRepo{db: db}
}
