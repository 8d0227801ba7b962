package metalsim

import (
	"errors"
	"fmt"
	"iter"
	"slices"
)

// ErrEmptyPriceTable is returned when a price table is built from no rows.
var ErrEmptyPriceTable = errors.New("empty price table")

// PriceRow is one raw observation: spot prices per troy ounce on a trading
// date. Metals may be missing from a row; gaps are resolved at table
// construction time.
type PriceRow struct {
	Date  Date
	Ounce map[Metal]float64
}

// PriceTable holds the complete spot price history for the four metals.
//
// After construction every trading date carries a full price record:
// gaps are forward-filled from the previous observation, and still-missing
// leading values are back-filled from the first observation. The table is
// immutable afterwards, so every lookup is a pure read.
type PriceTable struct {
	days  []Date // sorted unique trading dates
	ounce map[Metal]*History[float64]
}

// NewPriceTable builds a gap-free price table from raw rows.
// It fails on an empty input and on a metal with no observation at all.
func NewPriceTable(rows []PriceRow) (*PriceTable, error) {
	if len(rows) == 0 {
		return nil, ErrEmptyPriceTable
	}

	t := &PriceTable{ounce: make(map[Metal]*History[float64])}
	for _, m := range Metals() {
		t.ounce[m] = &History[float64]{}
	}

	// Collect observations. Later rows overwrite earlier ones on the same date.
	seen := &History[float64]{} // only used to build the unique sorted day list
	for _, row := range rows {
		seen.Append(row.Date, 0)
		for m, price := range row.Ounce {
			t.ounce[m].Append(row.Date, price)
		}
	}
	t.days = slices.Clone(seen.days)

	// Forward fill, then back fill the leading gap.
	for _, m := range Metals() {
		h := t.ounce[m]
		if h.Len() == 0 {
			return nil, fmt.Errorf("malformed price table: no %s price in any row", m)
		}
		filled := &History[float64]{}
		_, carry := h.First()
		for _, on := range t.days {
			if v, ok := h.Get(on); ok {
				carry = v
			}
			filled.Append(on, carry)
		}
		t.ounce[m] = filled
	}
	return t, nil
}

// Len returns the number of trading dates in the table.
func (t *PriceTable) Len() int { return len(t.days) }

// First returns the earliest trading date.
func (t *PriceTable) First() Date { return t.days[0] }

// Last returns the latest trading date.
func (t *PriceTable) Last() Date { return t.days[len(t.days)-1] }

// Resolve snaps a date to the nearest trading date on or after it.
// It returns false when the date is past the end of the history.
func (t *PriceTable) Resolve(d Date) (Date, bool) {
	i, _ := slices.BinarySearchFunc(t.days, d, compareDates)
	if i >= len(t.days) {
		return Date{}, false
	}
	return t.days[i], true
}

// Ounce returns the spot price per troy ounce on the nearest trading date on
// or after d, falling back to the last known price past the end of history.
func (t *PriceTable) Ounce(m Metal, d Date) float64 {
	if v, ok := t.ounce[m].ValueFrom(d); ok {
		return v
	}
	_, v := t.ounce[m].Latest()
	return v
}

// Gram is Ounce converted to a per-gram price.
func (t *PriceTable) Gram(m Metal, d Date) float64 {
	return t.Ounce(m, d) / GramsPerOunce
}

// Change returns the percentage price change of a metal over a date range.
// A zero starting price yields 0.
func (t *PriceTable) Change(m Metal, r Range) Percent {
	start := t.Ounce(m, r.From)
	end := t.Ounce(m, r.To)
	if start == 0 {
		return 0
	}
	return Percent(100 * (end - start) / start)
}

// Days returns an iterator over all trading dates in chronological order.
func (t *PriceTable) Days() iter.Seq[Date] {
	return func(yield func(Date) bool) {
		for _, on := range t.days {
			if !yield(on) {
				return
			}
		}
	}
}

// DaysIn returns an iterator over the trading dates within r.
func (t *PriceTable) DaysIn(r Range) iter.Seq[Date] {
	return func(yield func(Date) bool) {
		for _, on := range t.days {
			if on.Before(r.From) {
				continue
			}
			if on.After(r.To) {
				return
			}
			if !yield(on) {
				return
			}
		}
	}
}

// Trailing returns up to n spot prices of m at trading dates on or before
// 'until', oldest first. Fewer samples are returned when the history is
// shorter.
func (t *PriceTable) Trailing(m Metal, until Date, n int) []float64 {
	i, found := slices.BinarySearchFunc(t.days, until, compareDates)
	if !found {
		i-- // first date before 'until'
	}
	if i < 0 {
		return nil
	}
	lo := i - n + 1
	if lo < 0 {
		lo = 0
	}
	out := make([]float64, 0, i-lo+1)
	for _, on := range t.days[lo : i+1] {
		v, _ := t.ounce[m].Get(on)
		out = append(out, v)
	}
	return out
}

// TradingDaysBetween counts the trading dates within r, boundaries included.
func (t *PriceTable) TradingDaysBetween(r Range) int {
	count := 0
	for range t.DaysIn(r) {
		count++
	}
	return count
}

func compareDates(d, target Date) int {
	if d.After(target) {
		return 1
	}
	if d.Before(target) {
		return -1
	}
	return 0
}
