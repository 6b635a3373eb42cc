package provider

import (
	"context"
	"net/http"
	"testing"

	"marketdata-collector/internal/domain"

	"github.com/stretchr/testify/require"
)

func TestCoinGecko_JoinsPricesAndVolumes(t *testing.T) {
	// 2024-01-01 00:00, 2024-01-02 00:00 and a live point on 2024-01-02 14:00 UTC.
	body := `{
		"prices": [[1704067200000, 42280.2], [1704153600000, 44187.1], [1704204000000, 45000.0]],
		"market_caps": [],
		"total_volumes": [[1704067200000, 12345678901.4], [1704153600000, 2.5e10], [1704204000000, 2.6e10]]
	}`
	var req *http.Request
	c := &CoinGecko{BaseURL: "https://cg.test", APIKey: "demo", Client: stubClient(200, body, &req)}

	bars, err := c.FetchBars(context.Background(), domain.Series{Code: "bitcoin"}, domain.Window{Limit: 90, LookbackDays: 90})
	require.NoError(t, err)
	require.Len(t, bars, 3)
	require.Equal(t, "2024-01-01", bars[0].Date.String())
	require.Equal(t, 42280.2, bars[0].Close.Float64)
	require.Equal(t, int64(12345678901), bars[0].Volume.Int64)
	require.False(t, bars[0].Open.Valid)

	latest := domain.Latest(domain.Window{Limit: 90}, bars)
	require.Len(t, latest, 2)
	require.Equal(t, 45000.0, latest[1].Close.Float64)
	require.Equal(t, int64(26000000000), latest[1].Volume.Int64)

	require.Equal(t, "/api/v3/coins/bitcoin/market_chart", req.URL.Path)
	q := req.URL.Query()
	require.Equal(t, "usd", q.Get("vs_currency"))
	require.Equal(t, "90", q.Get("days"))
	require.Equal(t, "demo", q.Get("x_cg_demo_api_key"))
}

func TestCoinGecko_KeyOptional(t *testing.T) {
	var req *http.Request
	c := &CoinGecko{BaseURL: "https://cg.test", Client: stubClient(200, `{"prices": [], "total_volumes": []}`, &req)}
	bars, err := c.FetchBars(context.Background(), domain.Series{Code: "ripple"}, domain.Window{Limit: 90})
	require.NoError(t, err)
	require.Empty(t, bars)
	require.False(t, req.URL.Query().Has("x_cg_demo_api_key"))
}

func TestCoinGecko_RateLimited(t *testing.T) {
	c := &CoinGecko{BaseURL: "https://cg.test", Client: stubClient(429, `{"status": {"error_code": 429}}`, nil)}
	_, err := c.FetchBars(context.Background(), domain.Series{Code: "solana"}, domain.Window{Limit: 90})
	require.ErrorContains(t, err, "status 429")
}
