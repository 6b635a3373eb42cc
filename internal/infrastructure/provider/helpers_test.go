package provider

import (
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"marketdata-collector/internal/infrastructure/httpx"
)

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(r *http.Request) (*http.Response, error) { return f(r) }

// stubClient answers every request with body and records the last request.
func stubClient(status int, body string, seen **http.Request) *httpx.Client {
	return &httpx.Client{HTTP: &http.Client{
		Timeout: 2 * time.Second,
		Transport: roundTripFunc(func(r *http.Request) (*http.Response, error) {
			if seen != nil {
				*seen = r
			}
			return &http.Response{
				StatusCode: status,
				Body:       io.NopCloser(strings.NewReader(body)),
				Header:     make(http.Header),
				Request:    r,
			}, nil
		}),
	}}
}

// avDailyJSON renders n consecutive days of Alpha Vantage daily series,
// newest first, ending on 2024-12-31.
func avDailyJSON(envelope string, n int, withVolume bool) string {
	end := time.Date(2024, 12, 31, 0, 0, 0, 0, time.UTC)
	var b strings.Builder
	fmt.Fprintf(&b, `{"Meta Data": {}, %q: {`, envelope)
	for i := 0; i < n; i++ {
		if i > 0 {
			b.WriteString(",")
		}
		d := end.AddDate(0, 0, -i).Format("2006-01-02")
		fmt.Fprintf(&b, `%q: {"1. open": "10.0", "2. high": "12.5", "3. low": "9.5", "4. close": "11.0"`, d)
		if withVolume {
			b.WriteString(`, "5. volume": "1000"`)
		}
		b.WriteString("}")
	}
	b.WriteString("}}")
	return b.String()
}
