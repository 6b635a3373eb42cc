package domain

// Series names one upstream series and the registry symbol it feeds.
type Series struct {
	// Code is the identifier the upstream provider understands.
	Code string
	// Symbol is the registry key; empty means resolve Code through the alias table.
	Symbol string
	// Source names the provider adapter, e.g. "alphavantage.equity".
	Source string
	// Unit is optional provenance for macro series.
	Unit string
}

// AliasTable maps upstream codes to canonical registry symbols for codes
// that differ from the ticker they describe (futures contracts, FX crosses).
type AliasTable map[string]string

// Canonical returns the registry symbol a series resolves through.
func (a AliasTable) Canonical(s Series) string {
	if s.Symbol != "" {
		return s.Symbol
	}
	if sym, ok := a[s.Code]; ok {
		return sym
	}
	return s.Code
}
