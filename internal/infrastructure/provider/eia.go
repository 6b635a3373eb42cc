package provider

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"

	"marketdata-collector/internal/application"
	"marketdata-collector/internal/domain"
	"marketdata-collector/internal/infrastructure/httpx"
)

const eiaSpotPricePath = "/v2/petroleum/pri/spt/data"

// EIA reads daily petroleum spot prices. The series code is the EIA facet
// (RBRTE for Brent). The API rejects clients without browser-like headers,
// which the bootstrap sets on Client.
type EIA struct {
	BaseURL string
	APIKey  string
	Client  *httpx.Client
}

var _ application.BarSource = (*EIA)(nil)

type eiaRow struct {
	Period string    `json:"period"`
	Value  flexFloat `json:"value"`
}

type eiaResp struct {
	Response struct {
		// Nil when the reply carries no data array at all.
		Data *[]eiaRow `json:"data"`
	} `json:"response"`
	Error string `json:"error"`
}

func (*EIA) Name() string { return SourceEIA }

func (e *EIA) FetchBars(ctx context.Context, s domain.Series, w domain.Window) ([]domain.Bar, error) {
	if e.BaseURL == "" || e.APIKey == "" {
		return nil, errors.New("eia: missing configuration")
	}
	q := url.Values{
		"api_key":            {e.APIKey},
		"frequency":          {"daily"},
		"data[0]":            {"value"},
		"facets[series][]":   {s.Code},
		"sort[0][column]":    {"period"},
		"sort[0][direction]": {"desc"},
		"length":             {strconv.Itoa(w.Limit)},
	}
	var resp eiaResp
	if err := e.Client.GetJSON(ctx, e.BaseURL, eiaSpotPricePath, q, &resp); err != nil {
		return nil, fmt.Errorf("eia: %w", err)
	}
	if resp.Error != "" {
		return nil, fmt.Errorf("eia: %s", resp.Error)
	}
	if resp.Response.Data == nil {
		return nil, fmt.Errorf("eia: %s: missing response.data", s.Code)
	}
	rows := *resp.Response.Data
	out := make([]domain.Bar, 0, len(rows))
	for _, row := range rows {
		if !row.Value.Valid {
			continue
		}
		d, err := domain.ParseDate(row.Period)
		if err != nil {
			return nil, fmt.Errorf("eia: %w", err)
		}
		out = append(out, domain.SpotBar(d, row.Value.Float64))
	}
	return out, nil
}
