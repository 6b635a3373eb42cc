package domain

import (
	"sort"
	"time"
)

// DefaultWindowLimit is the observation cap every source is held to.
const DefaultWindowLimit = 90

// Window bounds how much history a fetch requests and keeps.
type Window struct {
	// Limit is the maximum number of observations kept, most recent first.
	Limit int
	// LookbackDays is the calendar span asked from sources that filter by date.
	LookbackDays int
}

// Days is the lookback span, falling back to Limit when unset.
func (w Window) Days() int {
	if w.LookbackDays > 0 {
		return w.LookbackDays
	}
	return w.Limit
}

func (w Window) Start(now time.Time) Date {
	return DateOf(now.AddDate(0, 0, -w.Days()))
}

type dated interface{ day() Date }

// Latest collapses duplicate dates (last occurrence wins), keeps the most
// recent w.Limit items and returns them in ascending date order.
func Latest[T dated](w Window, items []T) []T {
	if len(items) == 0 {
		return nil
	}
	byDay := make(map[Date]int, len(items))
	out := make([]T, 0, len(items))
	for _, it := range items {
		if i, ok := byDay[it.day()]; ok {
			out[i] = it
			continue
		}
		byDay[it.day()] = len(out)
		out = append(out, it)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].day().Before(out[j].day()) })
	if w.Limit > 0 && len(out) > w.Limit {
		out = out[len(out)-w.Limit:]
	}
	return out
}
