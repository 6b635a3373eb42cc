package provider

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"time"

	"marketdata-collector/internal/application"
	"marketdata-collector/internal/domain"
	"marketdata-collector/internal/infrastructure/httpx"

	"github.com/guregu/null/v6"
)

const (
	fredObservationsPath = "/fred/series/observations"
	fredSourceLabel      = "FRED"
)

// FRED reads macro series observations from the St. Louis Fed.
type FRED struct {
	BaseURL string
	APIKey  string
	Client  *httpx.Client
	Now     func() time.Time
}

var _ application.MacroSource = (*FRED)(nil)

type fredResp struct {
	Units        string `json:"units"`
	Observations []struct {
		Date  string `json:"date"`
		Value string `json:"value"`
	} `json:"observations"`
	ErrorMessage string `json:"error_message"`
}

func (*FRED) Name() string { return SourceFRED }

func (f *FRED) FetchMacro(ctx context.Context, s domain.Series, w domain.Window) ([]domain.MacroPoint, error) {
	if f.BaseURL == "" || f.APIKey == "" {
		return nil, errors.New("fred: missing configuration")
	}
	now := time.Now
	if f.Now != nil {
		now = f.Now
	}
	q := url.Values{
		"series_id":         {s.Code},
		"api_key":           {f.APIKey},
		"file_type":         {"json"},
		"observation_start": {w.Start(now()).String()},
	}
	var resp fredResp
	if err := f.Client.GetJSON(ctx, f.BaseURL, fredObservationsPath, q, &resp); err != nil {
		return nil, fmt.Errorf("fred: %w", err)
	}
	if resp.ErrorMessage != "" {
		return nil, fmt.Errorf("fred: %s", resp.ErrorMessage)
	}

	unit := null.NewString(s.Unit, s.Unit != "")
	if !unit.Valid && resp.Units != "" {
		unit = null.StringFrom(resp.Units)
	}
	out := make([]domain.MacroPoint, 0, len(resp.Observations))
	for _, o := range resp.Observations {
		v, err := parseFloat(o.Value)
		if err != nil {
			return nil, fmt.Errorf("fred: %w", err)
		}
		if !v.Valid {
			continue
		}
		d, err := domain.ParseDate(o.Date)
		if err != nil {
			return nil, fmt.Errorf("fred: %w", err)
		}
		out = append(out, domain.MacroPoint{Date: d, Value: v.Float64, Unit: unit, Source: fredSourceLabel})
	}
	return out, nil
}
