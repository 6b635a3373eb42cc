package provider

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"marketdata-collector/internal/application"
	"marketdata-collector/internal/domain"
	"marketdata-collector/internal/infrastructure/httpx"

	"github.com/guregu/null/v6"
)

const yahooChartPath = "/v8/finance/chart/"

// Yahoo reads daily candles from the public chart endpoint.
type Yahoo struct {
	BaseURL string
	Client  *httpx.Client
}

var _ application.BarSource = (*Yahoo)(nil)

type yahooChartResp struct {
	Chart struct {
		Result []struct {
			Meta struct {
				GMTOffset int64 `json:"gmtoffset"`
			} `json:"meta"`
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				Quote []struct {
					Open   []null.Float `json:"open"`
					High   []null.Float `json:"high"`
					Low    []null.Float `json:"low"`
					Close  []null.Float `json:"close"`
					Volume []null.Int   `json:"volume"`
				} `json:"quote"`
			} `json:"indicators"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

func (*Yahoo) Name() string { return SourceYahoo }

func (y *Yahoo) FetchBars(ctx context.Context, s domain.Series, w domain.Window) ([]domain.Bar, error) {
	if y.BaseURL == "" {
		return nil, errors.New("yahoo: missing configuration")
	}
	q := url.Values{
		"range":    {strconv.Itoa(w.Days()) + "d"},
		"interval": {"1d"},
	}
	var resp yahooChartResp
	if err := y.Client.GetJSON(ctx, y.BaseURL, yahooChartPath+s.Code, q, &resp); err != nil {
		return nil, fmt.Errorf("yahoo: %w", err)
	}
	if e := resp.Chart.Error; e != nil {
		return nil, fmt.Errorf("yahoo: %s: %s", e.Code, e.Description)
	}
	if len(resp.Chart.Result) == 0 {
		return nil, errors.New("yahoo: empty chart result")
	}
	r := resp.Chart.Result[0]
	if len(r.Indicators.Quote) == 0 {
		return nil, fmt.Errorf("yahoo: %s: no quote indicators in chart", s.Code)
	}
	quote := r.Indicators.Quote[0]

	out := make([]domain.Bar, 0, len(r.Timestamp))
	for i, ts := range r.Timestamp {
		// Timestamps are session opens; shift into exchange time before
		// taking the calendar day so Asian sessions keep their own date.
		d := domain.DateOf(time.Unix(ts+r.Meta.GMTOffset, 0))
		// Holidays and the still-open session come back with a null close.
		if !floatAt(quote.Close, i).Valid {
			continue
		}
		out = append(out, domain.Bar{
			Date:   d,
			Open:   floatAt(quote.Open, i),
			High:   floatAt(quote.High, i),
			Low:    floatAt(quote.Low, i),
			Close:  floatAt(quote.Close, i),
			Volume: intAt(quote.Volume, i),
		})
	}
	return out, nil
}

func floatAt(xs []null.Float, i int) null.Float {
	if i < len(xs) {
		return xs[i]
	}
	return null.Float{}
}

func intAt(xs []null.Int, i int) null.Int {
	if i < len(xs) {
		return xs[i]
	}
	return null.Int{}
}
