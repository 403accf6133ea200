package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/fastprodman/cat0presale/internal/infra/logging"
	"github.com/fastprodman/cat0presale/internal/services/ledger"
	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
)

const maxBodyBytes = 1 << 20

// LedgerService is the part of ledger.LedgerService the HTTP layer needs.
type LedgerService interface {
	GetProgress(ctx context.Context) (ledger.ProgressView, error)
	RecentTransactions(ctx context.Context) ([]ledger.TransactionView, error)
	TopBuyers(ctx context.Context) ([]ledger.TopBuyerView, error)

	GetBalance(ctx context.Context, address string) (int64, error)
	ApplyBalance(ctx context.Context, u ledger.BalanceUpdate) (int64, error)

	GetRewardBalance(ctx context.Context, address string) (decimal.Decimal, error)
	SetRewardBalance(ctx context.Context, address string, amount decimal.Decimal) (decimal.Decimal, error)
	ClaimRewards(ctx context.Context, address string, amount decimal.Decimal) (ledger.ClaimResult, error)

	GetPowerLevel(ctx context.Context, address string) (ledger.PowerLevelView, error)
	SetPowerLevel(ctx context.Context, address string, level int, multiplier float64) (ledger.PowerLevelView, error)
	PowerUp(ctx context.Context, address string) (ledger.PowerUpResult, error)

	OpenLootBox(ctx context.Context, address string) (ledger.LootBoxResult, error)
	Jackpot(ctx context.Context) (int64, error)
}

// HandlerProvider wraps a LedgerService and exposes HTTP handlers.
type HandlerProvider struct {
	svc     LedgerService
	metrics *Metrics
}

// NewHandler returns a new Handler provider. metrics may be nil.
func NewHandler(svc LedgerService, metrics *Metrics) *HandlerProvider {
	return &HandlerProvider{svc: svc, metrics: metrics}
}

// --- Helpers ---

var errEmptyBody = errors.New("empty body")

func writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	err := json.NewEncoder(w).Encode(v)
	if err != nil {
		logging.FromContext(r.Context()).Error("failed to encode JSON response", "error", err)
	}
}

// writeOK wraps fields in the success envelope.
func writeOK(w http.ResponseWriter, r *http.Request, fields map[string]any) {
	body := make(map[string]any, len(fields)+1)
	for k, v := range fields {
		body[k] = v
	}

	body["success"] = true

	writeJSON(w, r, http.StatusOK, body)
}

// writeFailure maps err to a status and writes the failure envelope with field
// set to its zero value. Internal errors are logged and not echoed.
func writeFailure(w http.ResponseWriter, r *http.Request, err error, field string, zero any) {
	status := statusFor(err)

	body := map[string]any{
		"success": false,
		"error":   err.Error(),
	}

	if field != "" {
		body[field] = zero
	}

	var cd *ledger.CooldownError
	if errors.As(err, &cd) {
		secs := int64(math.Ceil(cd.RetryAfter.Seconds()))
		body["retryAfter"] = secs
		w.Header().Set("Retry-After", strconv.FormatInt(secs, 10))
	}

	if status == http.StatusInternalServerError {
		logging.FromContext(r.Context()).Error("request failed", "error", err)

		body["error"] = "internal error"
	}

	writeJSON(w, r, status, body)
}

func statusFor(err error) int {
	var cd *ledger.CooldownError

	switch {
	case errors.As(err, &cd):
		return http.StatusTooManyRequests
	case errors.Is(err, errEmptyBody),
		errors.Is(err, errBadRequest),
		errors.Is(err, ledger.ErrInvalidAddress),
		errors.Is(err, ledger.ErrInvalidCurrency),
		errors.Is(err, ledger.ErrInvalidAmount),
		errors.Is(err, ledger.ErrUnknownGiftCode),
		errors.Is(err, ledger.ErrInvalidPowerLevel):
		return http.StatusBadRequest
	case errors.Is(err, ledger.ErrInsufficientFunds),
		errors.Is(err, ledger.ErrMaxPowerLevel),
		errors.Is(err, ledger.ErrNoPendingReward):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

var errBadRequest = errors.New("bad request")

// decodeJSON caps the body. Unknown fields are ignored: clients send extras
// such as chainId alongside the documented ones.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	//nolint:errcheck
	defer r.Body.Close()

	err := json.NewDecoder(r.Body).Decode(v)
	if err != nil {
		if errors.Is(err, io.EOF) {
			return errEmptyBody
		}

		return fmt.Errorf("%w: invalid JSON: %v", errBadRequest, err)
	}

	return nil
}

func addressParam(r *http.Request) string {
	return strings.TrimSpace(chi.URLParam(r, "address"))
}

// --- Handlers ---

// GetProgressHandler handles GET /api/progress
func (h *HandlerProvider) GetProgressHandler(w http.ResponseWriter, r *http.Request) {
	p, err := h.svc.GetProgress(r.Context())
	if err != nil {
		writeFailure(w, r, err, "data", nil)
		return
	}

	writeOK(w, r, map[string]any{"data": newProgressDTO(p)})
}

// GetTransactionsHandler handles GET /api/transactions
func (h *HandlerProvider) GetTransactionsHandler(w http.ResponseWriter, r *http.Request) {
	txs, err := h.svc.RecentTransactions(r.Context())
	if err != nil {
		writeFailure(w, r, err, "transactions", []any{})
		return
	}

	out := make([]transactionDTO, 0, len(txs))
	for _, t := range txs {
		out = append(out, newTransactionDTO(t))
	}

	writeOK(w, r, map[string]any{"transactions": out})
}

// GetTopBuyersHandler handles GET /api/top-buyers
func (h *HandlerProvider) GetTopBuyersHandler(w http.ResponseWriter, r *http.Request) {
	buyers, err := h.svc.TopBuyers(r.Context())
	if err != nil {
		writeFailure(w, r, err, "topBuyers", []any{})
		return
	}

	out := make([]topBuyerDTO, 0, len(buyers))
	for _, b := range buyers {
		out = append(out, topBuyerDTO{
			transactionDTO: newTransactionDTO(b.TransactionView),
			TotalAmount:    b.TotalAmount.InexactFloat64(),
		})
	}

	writeOK(w, r, map[string]any{"topBuyers": out})
}

// GetBalanceHandler handles GET /api/balance/{address}
func (h *HandlerProvider) GetBalanceHandler(w http.ResponseWriter, r *http.Request) {
	bal, err := h.svc.GetBalance(r.Context(), addressParam(r))
	if err != nil {
		writeFailure(w, r, err, "balance", 0)
		return
	}

	writeOK(w, r, map[string]any{"balance": bal})
}

// UpdateBalanceHandler handles POST /api/balance/{address}
func (h *HandlerProvider) UpdateBalanceHandler(w http.ResponseWriter, r *http.Request) {
	var req balanceRequest

	err := decodeJSON(w, r, &req)
	if err == nil && req.Balance == nil {
		err = fmt.Errorf("%w: balance required", errBadRequest)
	}

	if err != nil {
		writeFailure(w, r, err, "balance", 0)
		return
	}

	currency, err := ledger.ParseCurrency(req.Currency)
	if err != nil {
		writeFailure(w, r, err, "balance", 0)
		return
	}

	bal, err := h.svc.ApplyBalance(r.Context(), ledger.BalanceUpdate{
		Address:       addressParam(r),
		Amount:        *req.Balance,
		AddToBalance:  req.AddToBalance,
		Currency:      currency,
		Price:         req.Price.Decimal,
		IsReward:      req.IsReward,
		GiftCode:      req.GiftCode,
		GiftCodeBonus: req.GiftCodeBonus.Decimal,
	})
	h.metrics.observeWrite("balance", err)

	if err != nil {
		writeFailure(w, r, err, "balance", 0)
		return
	}

	writeOK(w, r, map[string]any{"balance": bal})
}

// GetRewardBalanceHandler handles GET /api/reward-balance/{address}
func (h *HandlerProvider) GetRewardBalanceHandler(w http.ResponseWriter, r *http.Request) {
	amount, err := h.svc.GetRewardBalance(r.Context(), addressParam(r))
	if err != nil {
		writeFailure(w, r, err, "rewardBalance", 0)
		return
	}

	writeOK(w, r, map[string]any{"rewardBalance": amount.InexactFloat64()})
}

// SetRewardBalanceHandler handles POST /api/reward-balance/{address}
func (h *HandlerProvider) SetRewardBalanceHandler(w http.ResponseWriter, r *http.Request) {
	var req amountRequest

	err := decodeJSON(w, r, &req)
	if err == nil && req.Amount == nil {
		err = fmt.Errorf("%w: amount required", errBadRequest)
	}

	if err != nil {
		writeFailure(w, r, err, "rewardBalance", 0)
		return
	}

	amount, err := h.svc.SetRewardBalance(r.Context(), addressParam(r), *req.Amount)
	h.metrics.observeWrite("reward_balance", err)

	if err != nil {
		writeFailure(w, r, err, "rewardBalance", 0)
		return
	}

	writeOK(w, r, map[string]any{"rewardBalance": amount.InexactFloat64()})
}

// ClaimRewardsHandler handles POST /api/claim-rewards/{address}
func (h *HandlerProvider) ClaimRewardsHandler(w http.ResponseWriter, r *http.Request) {
	var req amountRequest

	err := decodeJSON(w, r, &req)
	if err == nil && req.Amount == nil {
		err = fmt.Errorf("%w: amount required", errBadRequest)
	}

	if err != nil {
		writeFailure(w, r, err, "balance", 0)
		return
	}

	res, err := h.svc.ClaimRewards(r.Context(), addressParam(r), *req.Amount)
	h.metrics.observeWrite("claim_rewards", err)

	if err != nil {
		writeFailure(w, r, err, "balance", 0)
		return
	}

	writeOK(w, r, map[string]any{
		"balance":      res.Balance,
		"claimed":      res.Claimed,
		"resetRewards": true,
	})
}

// GetPowerLevelHandler handles GET /api/power-level/{address}
func (h *HandlerProvider) GetPowerLevelHandler(w http.ResponseWriter, r *http.Request) {
	pl, err := h.svc.GetPowerLevel(r.Context(), addressParam(r))
	if err != nil {
		writeFailure(w, r, err, "powerLevel", nil)
		return
	}

	writeOK(w, r, map[string]any{"powerLevel": newPowerLevelDTO(pl)})
}

// SetPowerLevelHandler handles POST /api/power-level/{address}
func (h *HandlerProvider) SetPowerLevelHandler(w http.ResponseWriter, r *http.Request) {
	var req powerLevelRequest

	err := decodeJSON(w, r, &req)
	if err == nil && (req.Level == nil || req.Multiplier == nil) {
		err = fmt.Errorf("%w: level and multiplier required", errBadRequest)
	}

	if err != nil {
		writeFailure(w, r, err, "powerLevel", nil)
		return
	}

	pl, err := h.svc.SetPowerLevel(r.Context(), addressParam(r), *req.Level, *req.Multiplier)
	h.metrics.observeWrite("power_level", err)

	if err != nil {
		writeFailure(w, r, err, "powerLevel", nil)
		return
	}

	writeOK(w, r, map[string]any{"powerLevel": newPowerLevelDTO(pl)})
}

// PowerUpHandler handles POST /api/power-up/{address}
func (h *HandlerProvider) PowerUpHandler(w http.ResponseWriter, r *http.Request) {
	res, err := h.svc.PowerUp(r.Context(), addressParam(r))
	h.metrics.observeWrite("power_up", err)

	if err != nil {
		writeFailure(w, r, err, "balance", 0)
		return
	}

	writeOK(w, r, map[string]any{
		"balance":    res.Balance,
		"cost":       res.Cost,
		"powerLevel": newPowerLevelDTO(res.PowerLevel),
	})
}

// OpenLootBoxHandler handles POST /api/loot-box/{address}/open
func (h *HandlerProvider) OpenLootBoxHandler(w http.ResponseWriter, r *http.Request) {
	res, err := h.svc.OpenLootBox(r.Context(), addressParam(r))
	h.metrics.observeWrite("loot_box", err)

	if err != nil {
		writeFailure(w, r, err, "balance", 0)
		return
	}

	body := map[string]any{
		"reward":  newRewardDTO(res),
		"balance": res.Balance,
		"jackpot": res.Jackpot,
	}

	if res.PowerLevel != nil {
		body["powerLevel"] = newPowerLevelDTO(*res.PowerLevel)
	}

	writeOK(w, r, body)
}

// GetJackpotHandler handles GET /api/loot-box/jackpot
func (h *HandlerProvider) GetJackpotHandler(w http.ResponseWriter, r *http.Request) {
	pool, err := h.svc.Jackpot(r.Context())
	if err != nil {
		writeFailure(w, r, err, "jackpot", 0)
		return
	}

	writeOK(w, r, map[string]any{"jackpot": pool})
}

// Pinger is satisfied by *sql.DB.
type Pinger interface {
	PingContext(ctx context.Context) error
}

func healthzHandler(db Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if db != nil {
			ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
			defer cancel()

			err := db.PingContext(ctx)
			if err != nil {
				logging.FromContext(r.Context()).Warn("health check failed", "error", err)
				writeJSON(w, r, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})

				return
			}
		}

		writeJSON(w, r, http.StatusOK, map[string]string{"status": "ok"})
	}
}
