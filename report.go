package metalsim

import (
	"fmt"
	"math"

	"github.com/google/uuid"
)

// Report provides an at-a-glance overview of a completed simulation run.
type Report struct {
	RunID uuid.UUID
	Range Range

	Invested   Money
	FinalValue Money // at buyback prices
	RealValue  Money // inflation-deflated
	Gain       Money
	GainPct    Percent
	CAGR       Percent

	Holdings Holdings
	Shares   map[Metal]Percent // value share of each metal at the end
}

// NewReport summarizes a ledger. The price table provides the final
// per-metal value shares.
func NewReport(l *Ledger, prices *PriceTable) (*Report, error) {
	first, ok := l.First()
	if !ok {
		return nil, fmt.Errorf("cannot report on an empty ledger")
	}
	last, _ := l.Last()

	r := &Report{
		RunID:      l.ID,
		Range:      NewRange(first.Date, last.Date),
		Invested:   last.Invested,
		FinalValue: last.Value,
		RealValue:  last.RealValue,
		Gain:       last.Value.Sub(last.Invested),
		Holdings:   last.Holdings.clone(),
		Shares:     make(map[Metal]Percent, len(metals)),
	}

	invested := last.Invested.AsFloat()
	final := last.Value.AsFloat()
	if invested > 0 {
		r.GainPct = Percent(100 * (final - invested) / invested)
	}
	if years := float64(last.Date.Sub(first.Date)) / 365.25; years > 0 && invested > 0 && final > 0 {
		r.CAGR = Percent(100 * (math.Pow(final/invested, 1/years) - 1))
	}

	total := 0.0
	values := make(map[Metal]float64, len(metals))
	for _, m := range Metals() {
		values[m] = last.Holdings[m] * prices.Gram(m, last.Date)
		total += values[m]
	}
	for _, m := range Metals() {
		if total > 0 {
			r.Shares[m] = Percent(100 * values[m] / total)
		}
	}
	return r, nil
}
