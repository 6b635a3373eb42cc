package domain

import "github.com/guregu/null/v6"

// MacroObservation is a single-valued macro indicator reading,
// stored apart from OHLC market data.
type MacroObservation struct {
	SymbolID int64       `json:"symbol_id"`
	Date     Date        `json:"date"`
	Value    float64     `json:"value"`
	Unit     null.String `json:"unit"`
	Source   string      `json:"source"`
}

func (o MacroObservation) Key() Key { return Key{SymbolID: o.SymbolID, Date: o.Date} }

func (o MacroObservation) SameValues(x MacroObservation) bool {
	return o.Value == x.Value && o.Unit.Equal(x.Unit) && o.Source == x.Source
}

// MergeMacro replaces value and source and keeps the stored unit when the
// incoming one is null.
func MergeMacro(stored, incoming MacroObservation) MacroObservation {
	out := incoming
	if !incoming.Unit.Valid {
		out.Unit = stored.Unit
	}
	return out
}

// MacroPoint is an upstream macro reading before symbol resolution.
type MacroPoint struct {
	Date   Date
	Value  float64
	Unit   null.String
	Source string
}

func (p MacroPoint) day() Date { return p.Date }

func (p MacroPoint) Observation(symbolID int64) MacroObservation {
	return MacroObservation{
		SymbolID: symbolID,
		Date:     p.Date,
		Value:    p.Value,
		Unit:     p.Unit,
		Source:   p.Source,
	}
}
