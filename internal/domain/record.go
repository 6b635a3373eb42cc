package domain

import "github.com/guregu/null/v6"

// CanonicalRecord is one daily observation of a tradable or quoted series.
// (SymbolID, Date) is the natural key. Absent prices are null, never zero.
type CanonicalRecord struct {
	SymbolID int64      `json:"symbol_id"`
	Date     Date       `json:"date"`
	Open     null.Float `json:"open"`
	High     null.Float `json:"high"`
	Low      null.Float `json:"low"`
	Close    null.Float `json:"close"`
	Volume   null.Int   `json:"volume"`
}

// Key identifies the stored row a record merges into.
type Key struct {
	SymbolID int64
	Date     Date
}

func (r CanonicalRecord) Key() Key { return Key{SymbolID: r.SymbolID, Date: r.Date} }

// SameValues reports whether r and o carry the same prices and volume.
func (r CanonicalRecord) SameValues(o CanonicalRecord) bool {
	return r.Open.Equal(o.Open) && r.High.Equal(o.High) && r.Low.Equal(o.Low) &&
		r.Close.Equal(o.Close) && r.Volume.Equal(o.Volume)
}

// MergeRecord applies incoming over stored: every non-null incoming field
// replaces the stored one, null incoming fields leave stored values untouched.
func MergeRecord(stored, incoming CanonicalRecord) CanonicalRecord {
	out := stored
	out.SymbolID, out.Date = incoming.SymbolID, incoming.Date
	if incoming.Open.Valid {
		out.Open = incoming.Open
	}
	if incoming.High.Valid {
		out.High = incoming.High
	}
	if incoming.Low.Valid {
		out.Low = incoming.Low
	}
	if incoming.Close.Valid {
		out.Close = incoming.Close
	}
	if incoming.Volume.Valid {
		out.Volume = incoming.Volume
	}
	return out
}

// Bar is an upstream observation before symbol resolution.
type Bar struct {
	Date   Date
	Open   null.Float
	High   null.Float
	Low    null.Float
	Close  null.Float
	Volume null.Int
}

func (b Bar) day() Date { return b.Date }

// Record attaches a resolved symbol id.
func (b Bar) Record(symbolID int64) CanonicalRecord {
	return CanonicalRecord{
		SymbolID: symbolID,
		Date:     b.Date,
		Open:     b.Open,
		High:     b.High,
		Low:      b.Low,
		Close:    b.Close,
		Volume:   b.Volume,
	}
}

// SpotBar builds a single-value observation: only close is present.
func SpotBar(d Date, value float64) Bar {
	return Bar{Date: d, Close: null.FloatFrom(value)}
}
