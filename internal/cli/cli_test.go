package cli

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"botdash/internal/domain"
)

func envelope(w http.ResponseWriter, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]interface{}{"status": "success", "data": data})
}

func newAPI(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/api/bots", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))
		assert.Equal(t, "active,error", r.URL.Query().Get("status"))
		envelope(w, map[string]interface{}{
			"items": []domain.Bot{{
				ID: uuid.New(), Name: "Alpha", Tier: domain.TierPremium, Status: domain.BotStatusActive,
				RiskLevel: domain.RiskLow, Metrics: domain.BotMetrics{WinRate: 61.5, TotalPnL: 1200},
			}},
			"page_info": map[string]int{"page": 1, "per_page": 20, "total": 1, "total_pages": 1},
		})
	})
	mux.HandleFunc("/api/subscriptions/me", func(w http.ResponseWriter, r *http.Request) {
		envelope(w, map[string]interface{}{
			"package_name":   "Premium Monthly",
			"status":         "active",
			"end_date":       time.Date(2030, 1, 31, 0, 0, 0, 0, time.UTC),
			"days_remaining": 12,
		})
	})
	mux.HandleFunc("/api/accounts/tree", func(w http.ResponseWriter, r *http.Request) {
		envelope(w, map[string]interface{}{
			"users": []map[string]interface{}{{
				"id": "u1", "name": "Ann",
				"csp_accounts": []map[string]interface{}{{
					"id": "c1", "user_id": "u1",
					"trading_accounts": []map[string]interface{}{{"id": "t1", "balance": 10.5, "is_live": true}},
				}},
			}},
			"totals": map[string]int{"users": 1, "csp_accounts": 1, "trading_accounts": 1},
		})
	})
	return httptest.NewServer(mux)
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := NewRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestBotsList(t *testing.T) {
	srv := newAPI(t)
	defer srv.Close()

	out, err := run(t, "--api", srv.URL, "--token", "secret", "bots", "list", "--status", "active,error")
	require.NoError(t, err)
	assert.Contains(t, out, "Alpha")
	assert.Contains(t, out, "premium")
	assert.Contains(t, out, "61.5%")
	assert.Contains(t, out, "page 1/1, 1 bots")
}

func TestSubscriptionsMeJSON(t *testing.T) {
	srv := newAPI(t)
	defer srv.Close()

	out, err := run(t, "--api", srv.URL, "--json", "subscriptions", "me")
	require.NoError(t, err)

	var got map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, "Premium Monthly", got["package_name"])
	assert.EqualValues(t, 12, got["days_remaining"])
}

func TestAccountsTree(t *testing.T) {
	srv := newAPI(t)
	defer srv.Close()

	out, err := run(t, "--api", srv.URL, "accounts", "tree")
	require.NoError(t, err)
	assert.Contains(t, out, "Ann (u1)")
	assert.Contains(t, out, "    t1  10.50")
	assert.Contains(t, out, "1 users, 1 CSP accounts, 1 trading accounts")
}

func TestAPIErrorIsReturned(t *testing.T) {
	srv := newAPI(t)
	defer srv.Close()

	_, err := run(t, "--api", srv.URL, "--retries", "0", "signals", "list")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "404")
}
