package provider

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net/url"
	"strconv"
	"time"

	"marketdata-collector/internal/application"
	"marketdata-collector/internal/domain"
	"marketdata-collector/internal/infrastructure/httpx"

	"github.com/guregu/null/v6"
)

// CoinGecko reads daily closes and volumes from market_chart. The series
// code is the coin id (bitcoin, ethereum, ...). The API key is optional.
type CoinGecko struct {
	BaseURL string
	APIKey  string
	Client  *httpx.Client
}

var _ application.BarSource = (*CoinGecko)(nil)

// Each point is [unix millis, value].
type cgChartResp struct {
	Prices       [][2]float64 `json:"prices"`
	TotalVolumes [][2]float64 `json:"total_volumes"`
}

func (*CoinGecko) Name() string { return SourceCoinGecko }

func (c *CoinGecko) FetchBars(ctx context.Context, s domain.Series, w domain.Window) ([]domain.Bar, error) {
	if c.BaseURL == "" {
		return nil, errors.New("coingecko: missing configuration")
	}
	q := url.Values{
		"vs_currency": {"usd"},
		"days":        {strconv.Itoa(w.Days())},
		"interval":    {"daily"},
	}
	if c.APIKey != "" {
		q.Set("x_cg_demo_api_key", c.APIKey)
	}
	var resp cgChartResp
	path := "/api/v3/coins/" + s.Code + "/market_chart"
	if err := c.Client.GetJSON(ctx, c.BaseURL, path, q, &resp); err != nil {
		return nil, fmt.Errorf("coingecko: %w", err)
	}

	// The last point of the series is the live price of the current day;
	// later points for a date overwrite earlier ones.
	volumes := make(map[domain.Date]null.Int, len(resp.TotalVolumes))
	for _, v := range resp.TotalVolumes {
		volumes[millisDate(v[0])] = null.IntFrom(int64(math.Round(v[1])))
	}
	out := make([]domain.Bar, 0, len(resp.Prices))
	for _, p := range resp.Prices {
		d := millisDate(p[0])
		b := domain.SpotBar(d, p[1])
		b.Volume = volumes[d]
		out = append(out, b)
	}
	return out, nil
}

func millisDate(ms float64) domain.Date {
	return domain.DateOf(time.UnixMilli(int64(ms)))
}
