package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

type RouterConfig struct {
	// DB backs /healthz. Nil skips the ping.
	DB Pinger

	CORSOrigins []string

	// RateLimitRPS <= 0 disables write rate limiting.
	RateLimitRPS   float64
	RateLimitBurst int

	// Metrics may be nil; /metrics is then not mounted.
	Metrics *Metrics
}

// NewRouter constructs a chi router with all API endpoints registered.
func NewRouter(svc LedgerService, cfg RouterConfig) http.Handler {
	h := NewHandler(svc, cfg.Metrics)
	limiter := newIPRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst)

	r := chi.NewRouter()
	r.Use(requestID, requestLogger, recoverer, cfg.Metrics.Middleware, cors(cfg.CORSOrigins))

	r.Get("/healthz", healthzHandler(cfg.DB))

	if cfg.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", cfg.Metrics.Handler())
	}

	r.Route("/api", func(r chi.Router) {
		r.Get("/progress", h.GetProgressHandler)
		r.Get("/transactions", h.GetTransactionsHandler)
		r.Get("/top-buyers", h.GetTopBuyersHandler)
		r.Get("/balance/{address}", h.GetBalanceHandler)
		r.Get("/reward-balance/{address}", h.GetRewardBalanceHandler)
		r.Get("/power-level/{address}", h.GetPowerLevelHandler)
		r.Get("/loot-box/jackpot", h.GetJackpotHandler)

		r.Group(func(r chi.Router) {
			r.Use(limiter.Middleware)

			r.Post("/balance/{address}", h.UpdateBalanceHandler)
			r.Post("/reward-balance/{address}", h.SetRewardBalanceHandler)
			r.Post("/power-level/{address}", h.SetPowerLevelHandler)
			r.Post("/power-up/{address}", h.PowerUpHandler)
			r.Post("/claim-rewards/{address}", h.ClaimRewardsHandler)
			r.Post("/loot-box/{address}/open", h.OpenLootBoxHandler)
		})
	})

	return r
}
