package provider

import (
	"context"
	"time"

	"marketdata-collector/internal/application"
	"marketdata-collector/internal/domain"

	"github.com/guregu/null/v6"
)

var (
	_ application.BarSource   = (*Fake)(nil)
	_ application.MacroSource = (*Fake)(nil)
)

// Fake stands in for a named source with a flat synthetic series, one point
// per day for the window limit ending today. Used with PROVIDER=fake.
type Fake struct {
	name  string
	price float64
	Now   func() time.Time
}

func NewFake(name string, price float64) *Fake { return &Fake{name: name, price: price} }

func (f *Fake) Name() string { return f.name }

func (f *Fake) days(w domain.Window) []domain.Date {
	now := time.Now
	if f.Now != nil {
		now = f.Now
	}
	today := domain.DateOf(now())
	out := make([]domain.Date, 0, w.Limit)
	for i := w.Limit - 1; i >= 0; i-- {
		out = append(out, domain.DateOf(today.AddDate(0, 0, -i)))
	}
	return out
}

func (f *Fake) FetchBars(_ context.Context, _ domain.Series, w domain.Window) ([]domain.Bar, error) {
	days := f.days(w)
	out := make([]domain.Bar, 0, len(days))
	for _, d := range days {
		p := null.FloatFrom(f.price)
		out = append(out, domain.Bar{Date: d, Open: p, High: p, Low: p, Close: p, Volume: null.IntFrom(0)})
	}
	return out, nil
}

func (f *Fake) FetchMacro(_ context.Context, s domain.Series, w domain.Window) ([]domain.MacroPoint, error) {
	days := f.days(w)
	out := make([]domain.MacroPoint, 0, len(days))
	for _, d := range days {
		out = append(out, domain.MacroPoint{Date: d, Value: f.price, Unit: null.NewString(s.Unit, s.Unit != ""), Source: "fake"})
	}
	return out, nil
}
