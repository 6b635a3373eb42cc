package config

import (
	"testing"

	"marketdata-collector/internal/domain"

	"github.com/stretchr/testify/require"
)

func TestLoadPipelines_Default(t *testing.T) {
	pf, err := LoadPipelines("")
	require.NoError(t, err)

	names := make([]string, 0, len(pf.Pipelines))
	for _, p := range pf.Pipelines {
		names = append(names, p.Name)
	}
	require.Equal(t, []string{"equities", "commodities", "forex", "crypto", "macro"}, names)

	com, ok := pf.Lookup("commodities")
	require.True(t, ok)
	require.Equal(t, "GOLD", com.AliasTable().Canonical(domain.Series{Code: "XAU/USD"}))
	require.Equal(t, domain.Window{Limit: 90}, com.DomainWindow())
	require.Equal(t, "data/commodities_indexes.json", com.SnapshotPath("data"))
	require.ElementsMatch(t, []string{"alphavantage.commodity", "alphavantage.fx", "eia"}, com.Sources())
	require.Equal(t, "WTI", com.AliasTable().Canonical(com.DomainSeries()[2]))

	macro, _ := pf.Lookup("macro")
	require.Equal(t, KindMacro, macro.Kind)
	require.Empty(t, macro.SnapshotPath("data"))
	require.Equal(t, []string{"fred"}, macro.Sources())
	require.Equal(t, "CPI_US", macro.DomainSeries()[1].Symbol)
}

func TestParsePipelines_DefaultsLimit(t *testing.T) {
	pf, err := ParsePipelines([]byte(`
pipelines:
  - name: fx
    kind: market
    series:
      - {code: USD/EUR, source: alphavantage.fx}
`))
	require.NoError(t, err)
	require.Equal(t, domain.DefaultWindowLimit, pf.Pipelines[0].Window.Limit)
	require.Equal(t, "/tmp/x.json", PipelineConfig{Snapshot: "/tmp/x.json"}.SnapshotPath("data"))
}

func TestParsePipelines_Invalid(t *testing.T) {
	cases := map[string]string{
		"no series": `
pipelines:
  - name: fx
    kind: market
`,
		"bad kind": `
pipelines:
  - name: fx
    kind: bonds
    series: [{code: A, source: yahoo}]
`,
		"duplicate name": `
pipelines:
  - {name: fx, kind: market, series: [{code: A, source: yahoo}]}
  - {name: fx, kind: market, series: [{code: B, source: yahoo}]}
`,
		"missing source": `
pipelines:
  - {name: fx, kind: market, series: [{code: A}]}
`,
		"not yaml": "pipelines: [",
	}
	for name, doc := range cases {
		_, err := ParsePipelines([]byte(doc))
		require.Error(t, err, name)
	}
}
