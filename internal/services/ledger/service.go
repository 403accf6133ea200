package ledger

import (
	"database/sql"
	"time"

	"github.com/fastprodman/cat0presale/internal/cooldown"
	"github.com/fastprodman/cat0presale/internal/infra/pgutils"
	"github.com/fastprodman/cat0presale/internal/lootbox"
	"github.com/fastprodman/cat0presale/internal/repos/balances"
	pgbalances "github.com/fastprodman/cat0presale/internal/repos/balances/postgres"
	"github.com/fastprodman/cat0presale/internal/repos/jackpot"
	pgjackpot "github.com/fastprodman/cat0presale/internal/repos/jackpot/postgres"
	"github.com/fastprodman/cat0presale/internal/repos/powerlevels"
	pgpowerlevels "github.com/fastprodman/cat0presale/internal/repos/powerlevels/postgres"
	"github.com/fastprodman/cat0presale/internal/repos/rewardbalances"
	pgrewardbalances "github.com/fastprodman/cat0presale/internal/repos/rewardbalances/postgres"
	"github.com/fastprodman/cat0presale/internal/repos/stageprogress"
	pgstageprogress "github.com/fastprodman/cat0presale/internal/repos/stageprogress/postgres"
	"github.com/fastprodman/cat0presale/internal/repos/transactions"
	pgtransactions "github.com/fastprodman/cat0presale/internal/repos/transactions/postgres"
	gocache "github.com/patrickmn/go-cache"
)

const (
	recentTransactionsLimit = 10
	topBuyersLimit          = 3

	// PowerUpCostBase is multiplied by the current level.
	PowerUpCostBase = 5_000
)

type Options struct {
	Retry pgutils.RetryPolicy

	Cooldowns      cooldown.Store
	ClaimCooldown  time.Duration
	MaxClaimAmount int64
	GiftCodeWindow time.Duration

	// TopBuyersTTL <= 0 disables caching.
	TopBuyersTTL time.Duration

	Random lootbox.Source
}

func DefaultOptions() Options {
	return Options{
		Retry:          pgutils.RetryPolicy{Attempts: 3, BaseDelay: 100 * time.Millisecond, MaxDelay: 2 * time.Second},
		ClaimCooldown:  50 * time.Second,
		MaxClaimAmount: 100_000,
		GiftCodeWindow: 24 * time.Hour,
		TopBuyersTTL:   5 * time.Second,
	}
}

// LedgerService owns every balance-affecting write and the derived VIP,
// stage and jackpot state.
type LedgerService struct {
	db          *sql.DB
	balances    balances.Balances
	txns        transactions.Transactions
	powerLevels powerlevels.PowerLevels
	progress    stageprogress.Progress
	rewards     rewardbalances.RewardBalances
	jackpot     jackpot.Jackpot

	cache *gocache.Cache
	opts  Options
}

func New(dbx *sql.DB, opts Options) *LedgerService {
	if opts.Cooldowns == nil {
		opts.Cooldowns = cooldown.NewMemoryStore(time.Minute)
	}

	if opts.Random == nil {
		opts.Random = lootbox.DefaultSource
	}

	return &LedgerService{
		db:          dbx,
		balances:    pgbalances.New(dbx),
		txns:        pgtransactions.New(dbx),
		powerLevels: pgpowerlevels.New(dbx),
		progress:    pgstageprogress.New(dbx),
		rewards:     pgrewardbalances.New(dbx),
		jackpot:     pgjackpot.New(dbx),
		cache:       gocache.New(opts.TopBuyersTTL, time.Minute),
		opts:        opts,
	}
}
