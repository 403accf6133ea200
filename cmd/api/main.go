package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fastprodman/cat0presale/internal/api"
	"github.com/fastprodman/cat0presale/internal/cooldown"
	"github.com/fastprodman/cat0presale/internal/infra/logging"
	"github.com/fastprodman/cat0presale/internal/infra/pgutils"
	"github.com/fastprodman/cat0presale/internal/infra/redisutil"
	"github.com/fastprodman/cat0presale/internal/services/ledger"
	"github.com/fastprodman/cat0presale/pkg/envconf"
	"github.com/fastprodman/cat0presale/pkg/shutdownqueue"
	"github.com/joho/godotenv"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err := run(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error running api: %v\n", err)
		//nolint:gocritic
		os.Exit(1)
	}
}

func run(ctx context.Context) (retErr error) {
	_ = godotenv.Load() // .env is optional

	cfg := new(apiConfig)

	err := envconf.Load(cfg)
	if err != nil {
		return fmt.Errorf("init config: %w", err)
	}

	logging.SetupJSON(cfg.LogLevel)

	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()

		serr := shutdownqueue.Shutdown(shutdownCtx)
		if serr != nil {
			retErr = errors.Join(retErr, serr)
		}
	}()

	// --- Infra ---
	dbConns, err := pgutils.OpenDB(ctx, cfg.Postgres)
	if err != nil {
		return fmt.Errorf("open db: %w", err)
	}

	shutdownqueue.Add("postgres", func(context.Context) error {
		return dbConns.Close()
	})

	cooldowns, err := newCooldownStore(ctx, cfg)
	if err != nil {
		return err
	}

	// --- Services ---
	opts := ledger.DefaultOptions()
	opts.Retry = pgutils.PolicyFromConfig(cfg.Postgres.Retry)
	opts.Cooldowns = cooldowns
	opts.ClaimCooldown = cfg.Rewards.ClaimCooldown
	opts.MaxClaimAmount = cfg.Rewards.MaxClaimAmount
	opts.GiftCodeWindow = cfg.Rewards.GiftCodeWindow
	opts.TopBuyersTTL = cfg.HTTP.TopBuyersCacheTTL

	ledgerSrv := ledger.New(dbConns, opts)

	// rebuild the cached stage row from history on every start
	_, err = ledgerSrv.ReconcileProgress(ctx)
	if err != nil {
		return fmt.Errorf("reconcile stage progress: %w", err)
	}

	// --- HTTP server ---
	srv := api.NewServer(cfg.Port, ledgerSrv, api.RouterConfig{
		DB:             dbConns,
		CORSOrigins:    cfg.HTTP.CORSOrigins,
		RateLimitRPS:   cfg.HTTP.RateLimitRPS,
		RateLimitBurst: cfg.HTTP.RateLimitBurst,
		Metrics:        api.NewMetrics(),
	})

	shutdownqueue.Add("http server", func(c context.Context) error {
		slog.Info("Shut down server")

		err := srv.Shutdown(c)
		if err != nil {
			return fmt.Errorf("shutdown srv: %w", err)
		}

		return nil
	})

	// Run server
	errCh := make(chan error, 1)

	go func() {
		serr := srv.ListenAndServe()
		// http.ErrServerClosed is the normal path during Shutdown
		if serr != nil && !errors.Is(serr, http.ErrServerClosed) {
			errCh <- serr
			return
		}

		errCh <- nil
	}()

	slog.Info("API started", "port", cfg.Port, "env", cfg.AppEnv)

	// --- Wait until either context cancels or server errors out ---
	select {
	case <-ctx.Done():
		// graceful path; deferred shutdownqueue.Shutdown will run
		return nil
	case serr := <-errCh:
		if serr != nil {
			return fmt.Errorf("server error: %w", serr)
		}

		return nil
	}
}

// newCooldownStore uses Redis when REDIS_ADDR is set so cooldowns hold across
// instances, and process memory otherwise.
func newCooldownStore(ctx context.Context, cfg *apiConfig) (cooldown.Store, error) {
	if cfg.Redis.Addr == "" {
		slog.Warn("REDIS_ADDR not set, cooldowns are per process")

		return cooldown.NewMemoryStore(time.Minute), nil
	}

	rdb, err := redisutil.Connect(ctx, cfg.Redis)
	if err != nil {
		return nil, fmt.Errorf("connect redis: %w", err)
	}

	shutdownqueue.Add("redis", func(context.Context) error {
		return rdb.Close()
	})

	return cooldown.NewRedisStore(rdb), nil
}
