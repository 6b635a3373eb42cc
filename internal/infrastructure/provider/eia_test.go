package provider

import (
	"context"
	"net/http"
	"testing"

	"marketdata-collector/internal/domain"

	"github.com/stretchr/testify/require"
)

func TestEIA_FlexibleValues(t *testing.T) {
	body := `{"response": {"total": 3, "data": [
		{"period": "2024-01-03", "series": "RBRTE", "value": 78.25},
		{"period": "2024-01-02", "series": "RBRTE", "value": "77.5"},
		{"period": "2024-01-01", "series": "RBRTE", "value": null}
	]}}`
	var req *http.Request
	e := &EIA{BaseURL: "https://eia.test", APIKey: "k", Client: stubClient(200, body, &req)}

	bars, err := e.FetchBars(context.Background(), domain.Series{Code: "RBRTE"}, domain.Window{Limit: 90})
	require.NoError(t, err)
	require.Len(t, bars, 2)
	require.Equal(t, 78.25, bars[0].Close.Float64)
	require.Equal(t, 77.5, bars[1].Close.Float64)
	require.False(t, bars[0].Open.Valid)

	q := req.URL.Query()
	require.Equal(t, "/v2/petroleum/pri/spt/data", req.URL.Path)
	require.Equal(t, "RBRTE", q.Get("facets[series][]"))
	require.Equal(t, "desc", q.Get("sort[0][direction]"))
	require.Equal(t, "90", q.Get("length"))
	require.Equal(t, "k", q.Get("api_key"))
}

func TestEIA_ErrorField(t *testing.T) {
	e := &EIA{BaseURL: "https://eia.test", APIKey: "k", Client: stubClient(200, `{"error": "invalid api_key"}`, nil)}
	_, err := e.FetchBars(context.Background(), domain.Series{Code: "RBRTE"}, domain.Window{Limit: 90})
	require.ErrorContains(t, err, "invalid api_key")
}

func TestEIA_BadNumber(t *testing.T) {
	body := `{"response": {"data": [{"period": "2024-01-03", "value": "n/a"}]}}`
	e := &EIA{BaseURL: "https://eia.test", APIKey: "k", Client: stubClient(200, body, nil)}
	_, err := e.FetchBars(context.Background(), domain.Series{Code: "RBRTE"}, domain.Window{Limit: 90})
	require.Error(t, err)
}

func TestEIA_MissingDataIsAnError(t *testing.T) {
	e := &EIA{BaseURL: "https://eia.test", APIKey: "k", Client: stubClient(200, `{"response": {"total": 0}}`, nil)}
	_, err := e.FetchBars(context.Background(), domain.Series{Code: "RBRTE"}, domain.Window{Limit: 90})
	require.ErrorContains(t, err, "missing response.data")
}

func TestEIA_EmptyDataIsNotAnError(t *testing.T) {
	e := &EIA{BaseURL: "https://eia.test", APIKey: "k", Client: stubClient(200, `{"response": {"data": []}}`, nil)}
	bars, err := e.FetchBars(context.Background(), domain.Series{Code: "RBRTE"}, domain.Window{Limit: 90})
	require.NoError(t, err)
	require.Empty(t, bars)
}
