package provider

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"marketdata-collector/internal/application"
	"marketdata-collector/internal/domain"
	"marketdata-collector/internal/infrastructure/httpx"
)

const alphaVantageQueryPath = "/query"

// AlphaVantage holds what the three Alpha Vantage sources share.
type AlphaVantage struct {
	BaseURL string
	APIKey  string
	Client  *httpx.Client
}

type avDaily struct {
	Open   string `json:"1. open"`
	High   string `json:"2. high"`
	Low    string `json:"3. low"`
	Close  string `json:"4. close"`
	Volume string `json:"5. volume"`
}

type avSeriesResp struct {
	Daily    map[string]avDaily `json:"Time Series (Daily)"`
	FXDaily  map[string]avDaily `json:"Time Series FX (Daily)"`
	Data     []avPoint          `json:"data"`
	Note     string             `json:"Note"`
	Info     string             `json:"Information"`
	ErrorMsg string             `json:"Error Message"`
}

type avPoint struct {
	Date  string `json:"date"`
	Value string `json:"value"`
}

// envelopeErr explains an answer without the expected payload. Alpha Vantage
// reports throttling and bad keys with status 200 and a message field.
func (r avSeriesResp) envelopeErr(envelope string) error {
	switch {
	case r.ErrorMsg != "":
		return fmt.Errorf("alphavantage: %s", r.ErrorMsg)
	case r.Note != "":
		return fmt.Errorf("alphavantage: %s", r.Note)
	case r.Info != "":
		return fmt.Errorf("alphavantage: %s", r.Info)
	}
	return fmt.Errorf("alphavantage: response has no %q", envelope)
}

func (a *AlphaVantage) query(ctx context.Context, q url.Values) (avSeriesResp, error) {
	if a.BaseURL == "" || a.APIKey == "" {
		return avSeriesResp{}, errors.New("alphavantage: missing configuration")
	}
	q.Set("apikey", a.APIKey)
	var out avSeriesResp
	if err := a.Client.GetJSON(ctx, a.BaseURL, alphaVantageQueryPath, q, &out); err != nil {
		return avSeriesResp{}, fmt.Errorf("alphavantage: %w", err)
	}
	return out, nil
}

func dailyBars(ts map[string]avDaily, withVolume bool) ([]domain.Bar, error) {
	out := make([]domain.Bar, 0, len(ts))
	for day, v := range ts {
		d, err := domain.ParseDate(day)
		if err != nil {
			return nil, fmt.Errorf("alphavantage: %w", err)
		}
		b := domain.Bar{Date: d}
		if b.Open, err = parseFloat(v.Open); err != nil {
			return nil, err
		}
		if b.High, err = parseFloat(v.High); err != nil {
			return nil, err
		}
		if b.Low, err = parseFloat(v.Low); err != nil {
			return nil, err
		}
		if b.Close, err = parseFloat(v.Close); err != nil {
			return nil, err
		}
		if withVolume {
			if b.Volume, err = parseInt(v.Volume); err != nil {
				return nil, err
			}
		}
		out = append(out, b)
	}
	return out, nil
}

// AlphaVantageEquity serves TIME_SERIES_DAILY for stocks and ETFs.
type AlphaVantageEquity struct{ *AlphaVantage }

var _ application.BarSource = AlphaVantageEquity{}

func (AlphaVantageEquity) Name() string { return SourceAlphaVantageEquity }

func (s AlphaVantageEquity) FetchBars(ctx context.Context, series domain.Series, _ domain.Window) ([]domain.Bar, error) {
	resp, err := s.query(ctx, url.Values{
		"function":   {"TIME_SERIES_DAILY"},
		"symbol":     {series.Code},
		"outputsize": {"compact"},
	})
	if err != nil {
		return nil, err
	}
	if resp.Daily == nil {
		return nil, resp.envelopeErr("Time Series (Daily)")
	}
	return dailyBars(resp.Daily, true)
}

// AlphaVantageFX serves FX_DAILY for codes shaped "FROM/TO". Spot metals
// such as XAU/USD go through here too.
type AlphaVantageFX struct{ *AlphaVantage }

var _ application.BarSource = AlphaVantageFX{}

func (AlphaVantageFX) Name() string { return SourceAlphaVantageFX }

func (s AlphaVantageFX) FetchBars(ctx context.Context, series domain.Series, _ domain.Window) ([]domain.Bar, error) {
	from, to, ok := strings.Cut(series.Code, "/")
	if !ok || from == "" || to == "" {
		return nil, fmt.Errorf("alphavantage: invalid fx pair %q", series.Code)
	}
	resp, err := s.query(ctx, url.Values{
		"function":    {"FX_DAILY"},
		"from_symbol": {from},
		"to_symbol":   {to},
		"outputsize":  {"compact"},
	})
	if err != nil {
		return nil, err
	}
	if resp.FXDaily == nil {
		return nil, resp.envelopeErr("Time Series FX (Daily)")
	}
	return dailyBars(resp.FXDaily, false)
}

// AlphaVantageCommodity serves the commodity functions (BRENT, WTI, ...),
// which return one value per day.
type AlphaVantageCommodity struct{ *AlphaVantage }

var _ application.BarSource = AlphaVantageCommodity{}

func (AlphaVantageCommodity) Name() string { return SourceAlphaVantageCommodity }

func (s AlphaVantageCommodity) FetchBars(ctx context.Context, series domain.Series, _ domain.Window) ([]domain.Bar, error) {
	resp, err := s.query(ctx, url.Values{
		"function": {series.Code},
		"interval": {"daily"},
	})
	if err != nil {
		return nil, err
	}
	if resp.Data == nil {
		return nil, resp.envelopeErr("data")
	}
	out := make([]domain.Bar, 0, len(resp.Data))
	for _, p := range resp.Data {
		v, err := parseFloat(p.Value)
		if err != nil {
			return nil, fmt.Errorf("alphavantage: %w", err)
		}
		if !v.Valid {
			continue
		}
		d, err := domain.ParseDate(p.Date)
		if err != nil {
			return nil, fmt.Errorf("alphavantage: %w", err)
		}
		out = append(out, domain.SpotBar(d, v.Float64))
	}
	return out, nil
}
