package provider

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"

	"marketdata-collector/internal/config"

	json "github.com/goccy/go-json"
	"github.com/guregu/null/v6"
)

// Source names as referenced from pipelines.yaml.
const (
	SourceAlphaVantageEquity    = "alphavantage.equity"
	SourceAlphaVantageFX        = "alphavantage.fx"
	SourceAlphaVantageCommodity = "alphavantage.commodity"
	SourceYahoo                 = "yahoo"
	SourceEIA                   = "eia"
	SourceCoinGecko             = "coingecko"
	SourceFRED                  = "fred"
)

var requiredKeys = map[string]string{
	SourceAlphaVantageEquity:    config.KeyAlphaVantage,
	SourceAlphaVantageFX:        config.KeyAlphaVantage,
	SourceAlphaVantageCommodity: config.KeyAlphaVantage,
	SourceEIA:                   config.KeyEIA,
	SourceFRED:                  config.KeyFRED,
}

// RequiredKeys lists the API keys the named sources cannot work without.
func RequiredKeys(sources ...string) []string {
	seen := map[string]bool{}
	var out []string
	for _, s := range sources {
		k, ok := requiredKeys[s]
		if !ok || seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, k)
	}
	return out
}

// flexFloat accepts a JSON number, a numeric string or null.
// Empty strings and "." (the usual missing-value marker) decode as null.
type flexFloat struct{ null.Float }

func (f *flexFloat) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		f.Float = null.Float{}
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		v, err := parseFloat(s)
		if err != nil {
			return err
		}
		f.Float = v
		return nil
	}
	var v float64
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	f.Float = null.FloatFrom(v)
	return nil
}

func parseFloat(s string) (null.Float, error) {
	s = strings.TrimSpace(s)
	if s == "" || s == "." {
		return null.Float{}, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return null.Float{}, fmt.Errorf("parse number %q: %w", s, err)
	}
	return null.FloatFrom(v), nil
}

func parseInt(s string) (null.Int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return null.Int{}, nil
	}
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return null.Int{}, fmt.Errorf("parse integer %q: %w", s, err)
	}
	return null.IntFrom(v), nil
}
