package metalsim

// InflationTable maps a calendar year to its inflation percentage.
// Missing years contribute 0% inflation.
type InflationTable map[int]Percent

// Rate returns the inflation percentage of a year, 0 for missing years.
func (t InflationTable) Rate(year int) Percent { return t[year] }

// Factor returns the cumulative inflation factor accrued from the start of
// 'from' until the start of 'to': the product of (1 + rate) over the years
// in [from, to). Rows inside the first simulated year are not deflated.
func (t InflationTable) Factor(from, to int) float64 {
	factor := 1.0
	for y := from; y < to; y++ {
		factor *= 1 + t.Rate(y).Fraction()
	}
	return factor
}

// AdjustForInflation enriches every ledger entry with its inflation-deflated
// real value, using the ledger's first entry year as the base. A degenerate
// zero factor falls back to the nominal value.
func (l *Ledger) AdjustForInflation(t InflationTable) {
	if len(l.entries) == 0 {
		return
	}
	base := l.entries[0].Date.Year()
	for i := range l.entries {
		e := &l.entries[i]
		factor := t.Factor(base, e.Date.Year())
		if factor == 0 {
			e.RealValue = e.Value
			continue
		}
		e.RealValue = M(e.Value.AsFloat()/factor, e.Value.Currency())
	}
}
