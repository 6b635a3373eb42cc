package domain

import "errors"

var (
	ErrInvalidRecord = errors.New("invalid record")
)

// Validate rejects records that cannot be keyed.
func (r CanonicalRecord) Validate() error {
	if r.SymbolID <= 0 || r.Date.IsZero() {
		return ErrInvalidRecord
	}
	return nil
}

func (o MacroObservation) Validate() error {
	if o.SymbolID <= 0 || o.Date.IsZero() {
		return ErrInvalidRecord
	}
	return nil
}
