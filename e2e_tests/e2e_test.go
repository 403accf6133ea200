package e2etests

import (
	"bytes"
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"io"
	"net/http"
	"os"
	"strings"
	"testing"
	"time"
)

const (
	defaultBaseURL = "http://localhost:3001"
	timeout        = 5 * time.Second
	waitReady      = 5 * time.Second
)

var httpClient = &http.Client{Timeout: timeout}

func baseURL() string {
	if u := os.Getenv("E2E_BASE_URL"); u != "" {
		return strings.TrimRight(u, "/")
	}

	return defaultBaseURL
}

func TestE2E_BalanceFlow(t *testing.T) {
	waitUntilReady(t)

	addr := freshAddress(t)

	t.Run("unknown_address_defaults", func(t *testing.T) {
		if got := getNumber(t, "/api/balance/"+addr, "balance"); got != 0 {
			t.Fatalf("initial balance: want 0, got %v", got)
		}

		if got := getNumber(t, "/api/reward-balance/"+addr, "rewardBalance"); got != 0 {
			t.Fatalf("initial reward balance: want 0, got %v", got)
		}

		code, body := request(t, http.MethodGet, "/api/power-level/"+addr, nil)
		if code != http.StatusOK {
			t.Fatalf("power level: want 200, got %d (%s)", code, body)
		}

		var payload struct {
			PowerLevel struct {
				Level      int     `json:"level"`
				Multiplier float64 `json:"multiplier"`
				VipStatus  string  `json:"vipStatus"`
			} `json:"powerLevel"`
		}
		mustDecode(t, body, &payload)

		if payload.PowerLevel.Level != 1 || payload.PowerLevel.Multiplier != 1 || payload.PowerLevel.VipStatus != "Bronze" {
			t.Fatalf("default power level: got %+v", payload.PowerLevel)
		}
	})

	t.Run("add_with_gift_code", func(t *testing.T) {
		got := postBalance(t, addr, map[string]any{"balance": 1000, "addToBalance": true, "giftCode": "CVB"})
		if got != 1070 {
			t.Fatalf("after add: want 1070, got %v", got)
		}

		code, body := request(t, http.MethodGet, "/api/transactions", nil)
		if code != http.StatusOK {
			t.Fatalf("transactions: want 200, got %d", code)
		}

		var payload struct {
			Transactions []struct {
				Address  string  `json:"address"`
				Amount   float64 `json:"amount"`
				Currency string  `json:"currency"`
			} `json:"transactions"`
		}
		mustDecode(t, body, &payload)

		if len(payload.Transactions) > 10 {
			t.Fatalf("transactions: want <= 10, got %d", len(payload.Transactions))
		}

		found := false

		for _, tx := range payload.Transactions {
			if tx.Address == addr && tx.Amount == 1000 && tx.Currency == "CAT0" {
				found = true
			}
		}

		if !found {
			t.Fatalf("bonus-free ledger row for %s not in recent transactions: %s", addr, body)
		}
	})

	t.Run("btc_does_not_change_balance", func(t *testing.T) {
		got := postBalance(t, addr, map[string]any{"balance": 5000, "addToBalance": true, "currency": "BTC", "price": "0.0000001"})
		if got != 1070 {
			t.Fatalf("after btc: want 1070, got %v", got)
		}
	})

	t.Run("set_absolute", func(t *testing.T) {
		got := postBalance(t, addr, map[string]any{"balance": 60000, "addToBalance": false})
		if got != 60000 {
			t.Fatalf("after set: want 60000, got %v", got)
		}

		code, body := request(t, http.MethodGet, "/api/power-level/"+addr, nil)
		if code != http.StatusOK || !strings.Contains(body, `"vipStatus":"Silver"`) {
			t.Fatalf("vip after set: got %d (%s)", code, body)
		}
	})

	t.Run("invalid_address", func(t *testing.T) {
		code, _ := request(t, http.MethodGet, "/api/balance/0x1234", nil)
		if code != http.StatusBadRequest {
			t.Fatalf("bad address: want 400, got %d", code)
		}
	})

	t.Run("reward_currency_rejected", func(t *testing.T) {
		code, _ := request(t, http.MethodPost, "/api/balance/"+addr, map[string]any{"balance": 1, "currency": "REWARD"})
		if code != http.StatusBadRequest {
			t.Fatalf("REWARD currency: want 400, got %d", code)
		}
	})
}

func TestE2E_SpendingAndClaims(t *testing.T) {
	waitUntilReady(t)

	addr := freshAddress(t)

	t.Run("loot_box_insufficient_funds", func(t *testing.T) {
		code, body := request(t, http.MethodPost, "/api/loot-box/"+addr+"/open", nil)
		if code != http.StatusConflict {
			t.Fatalf("loot box without funds: want 409, got %d (%s)", code, body)
		}
	})

	t.Run("power_up", func(t *testing.T) {
		code, _ := request(t, http.MethodPost, "/api/power-up/"+addr, nil)
		if code != http.StatusConflict {
			t.Fatalf("power up without funds: want 409, got %d", code)
		}

		postBalance(t, addr, map[string]any{"balance": 5000, "addToBalance": true, "currency": "ETH", "chainId": 1, "price": 0.5})

		code, body := request(t, http.MethodPost, "/api/power-up/"+addr, nil)
		if code != http.StatusOK {
			t.Fatalf("power up: want 200, got %d (%s)", code, body)
		}

		if got := getNumber(t, "/api/balance/"+addr, "balance"); got != 0 {
			t.Fatalf("after power up: want 0, got %v", got)
		}
	})

	t.Run("claim_once_per_cooldown", func(t *testing.T) {
		code, body := request(t, http.MethodPost, "/api/reward-balance/"+addr, map[string]any{"amount": 25.5})
		if code != http.StatusOK {
			t.Fatalf("set pending reward: want 200, got %d (%s)", code, body)
		}

		code, body = request(t, http.MethodPost, "/api/claim-rewards/"+addr, map[string]any{"amount": 25.5})
		if code != http.StatusOK {
			t.Fatalf("first claim: want 200, got %d (%s)", code, body)
		}

		code, body = request(t, http.MethodPost, "/api/claim-rewards/"+addr, map[string]any{"amount": 25})
		if code != http.StatusTooManyRequests {
			t.Fatalf("second claim: want 429, got %d (%s)", code, body)
		}

		if got := getNumber(t, "/api/balance/"+addr, "balance"); got != 25 {
			t.Fatalf("after claims: want 25, got %v", got)
		}
	})

	t.Run("loot_box_opens", func(t *testing.T) {
		postBalance(t, addr, map[string]any{"balance": 5000, "addToBalance": true})

		code, body := request(t, http.MethodPost, "/api/loot-box/"+addr+"/open", nil)
		if code != http.StatusOK {
			t.Fatalf("open loot box: want 200, got %d (%s)", code, body)
		}

		if got := getNumber(t, "/api/loot-box/jackpot", "jackpot"); got < 1_000_000 {
			t.Fatalf("jackpot: want >= 1000000, got %v", got)
		}
	})
}

func TestE2E_Aggregates(t *testing.T) {
	waitUntilReady(t)

	code, body := request(t, http.MethodGet, "/api/progress", nil)
	if code != http.StatusOK {
		t.Fatalf("progress: want 200, got %d (%s)", code, body)
	}

	var progress struct {
		Success bool `json:"success"`
		Data    struct {
			CurrentStage int     `json:"currentStage"`
			TargetAmount float64 `json:"targetAmount"`
		} `json:"data"`
	}
	mustDecode(t, body, &progress)

	if !progress.Success || progress.Data.CurrentStage < 1 || progress.Data.CurrentStage > 7 {
		t.Fatalf("progress payload: %s", body)
	}

	code, body = request(t, http.MethodGet, "/api/top-buyers", nil)
	if code != http.StatusOK {
		t.Fatalf("top buyers: want 200, got %d (%s)", code, body)
	}

	var buyers struct {
		TopBuyers []json.RawMessage `json:"topBuyers"`
	}
	mustDecode(t, body, &buyers)

	if len(buyers.TopBuyers) > 3 {
		t.Fatalf("top buyers: want <= 3, got %d", len(buyers.TopBuyers))
	}
}

/* -------------------- helpers -------------------- */

func request(t *testing.T, method, path string, body any) (int, string) {
	t.Helper()

	var rd io.Reader

	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal: %v", err)
		}

		rd = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, baseURL()+path, rd)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := httpClient.Do(req)
	if err != nil {
		t.Fatalf("do request: %v", err)
	}
	defer resp.Body.Close()

	b, _ := io.ReadAll(resp.Body)

	return resp.StatusCode, string(b)
}

func getNumber(t *testing.T, path, field string) float64 {
	t.Helper()

	code, body := request(t, http.MethodGet, path, nil)
	if code != http.StatusOK {
		t.Fatalf("GET %s: want 200, got %d (%s)", path, code, body)
	}

	var payload map[string]any
	mustDecode(t, body, &payload)

	v, ok := payload[field].(float64)
	if !ok {
		t.Fatalf("GET %s: field %q missing in %s", path, field, body)
	}

	return v
}

func postBalance(t *testing.T, addr string, body map[string]any) float64 {
	t.Helper()

	code, resp := request(t, http.MethodPost, "/api/balance/"+addr, body)
	if code != http.StatusOK {
		t.Fatalf("POST balance: want 200, got %d (%s)", code, resp)
	}

	var payload struct {
		Balance float64 `json:"balance"`
	}
	mustDecode(t, resp, &payload)

	return payload.Balance
}

func mustDecode(t *testing.T, body string, v any) {
	t.Helper()

	err := json.Unmarshal([]byte(body), v)
	if err != nil {
		t.Fatalf("decode json %q: %v", body, err)
	}
}

// freshAddress returns a random lowercase wallet address so runs do not
// collide with earlier data.
func freshAddress(t *testing.T) string {
	t.Helper()

	b := make([]byte, 20)

	_, err := rand.Read(b)
	if err != nil {
		t.Fatalf("rand: %v", err)
	}

	return "0x" + hex.EncodeToString(b)
}

// waitUntilReady polls /healthz and skips the test when the stack is not up.
func waitUntilReady(t *testing.T) {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), waitReady)
	defer cancel()

	u := baseURL() + "/healthz"

	tick := time.NewTicker(200 * time.Millisecond)
	defer tick.Stop()

	for {
		select {
		case <-ctx.Done():
			t.Skipf("service not ready at %s within %s", u, waitReady)
		case <-tick.C:
			req, _ := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)

			resp, err := httpClient.Do(req)
			if err != nil {
				continue
			}

			_ = resp.Body.Close()

			if resp.StatusCode == http.StatusOK {
				return
			}
		}
	}
}

