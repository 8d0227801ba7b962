package metalsim

import (
	"encoding/csv"
	"fmt"
	"io"
	"iter"

	"github.com/google/uuid"
)

// Holdings maps each metal to a non-negative quantity in grams.
type Holdings map[Metal]float64

// clone returns an independent copy of the holdings.
func (h Holdings) clone() Holdings {
	c := make(Holdings, len(h))
	for m, g := range h {
		c[m] = g
	}
	return c
}

// LedgerEntry records the portfolio state after a state-changing action.
type LedgerEntry struct {
	Date     Date     `json:"date"`
	Invested Money    `json:"invested"`
	Holdings Holdings `json:"holdings"`
	// Value is the portfolio valuation at buyback prices.
	Value Money `json:"value"`
	// RealValue is Value deflated by cumulative inflation; filled by
	// Ledger.AdjustForInflation, nominal until then.
	RealValue Money `json:"realValue"`
	// Action holds the comma-joined labels of the actions on that date,
	// e.g. "recurring, rebalance_1".
	Action string `json:"action"`
}

// Ledger is the append-only output of one simulation run: one entry per
// date on which a state-changing action occurred, in chronological order,
// plus the trend audit trail when the trend strategy was active.
type Ledger struct {
	// ID tags the run the ledger belongs to.
	ID       uuid.UUID
	Currency string

	entries []LedgerEntry
	trend   []TrendRecord
}

// NewLedger creates an empty ledger with a fresh run identifier.
func NewLedger(currency string) *Ledger {
	return &Ledger{ID: uuid.New(), Currency: currency}
}

// append adds an entry. Entries arrive in chronological order by
// construction; nothing is ever rolled back.
func (l *Ledger) append(e LedgerEntry) {
	e.RealValue = e.Value // nominal until AdjustForInflation runs
	l.entries = append(l.entries, e)
}

func (l *Ledger) appendTrend(r TrendRecord) { l.trend = append(l.trend, r) }

// Len returns the number of ledger entries.
func (l *Ledger) Len() int { return len(l.entries) }

// First returns the initial entry, false on an empty ledger.
func (l *Ledger) First() (LedgerEntry, bool) {
	if len(l.entries) == 0 {
		return LedgerEntry{}, false
	}
	return l.entries[0], true
}

// Last returns the final entry, false on an empty ledger.
func (l *Ledger) Last() (LedgerEntry, bool) {
	if len(l.entries) == 0 {
		return LedgerEntry{}, false
	}
	return l.entries[len(l.entries)-1], true
}

// Entries returns an iterator over all entries in chronological order.
func (l *Ledger) Entries() iter.Seq[LedgerEntry] {
	return func(yield func(LedgerEntry) bool) {
		for _, e := range l.entries {
			if !yield(e) {
				return
			}
		}
	}
}

// TrendRecords returns an iterator over the trend audit trail.
func (l *Ledger) TrendRecords() iter.Seq[TrendRecord] {
	return func(yield func(TrendRecord) bool) {
		for _, r := range l.trend {
			if !yield(r) {
				return
			}
		}
	}
}

// WriteCSV writes the ledger as CSV, one row per entry.
func (l *Ledger) WriteCSV(w io.Writer) error {
	cw := csv.NewWriter(w)
	header := []string{"date", "invested", "value", "real_value", "action"}
	for _, m := range Metals() {
		header = append(header, m.String()+"_g")
	}
	if err := cw.Write(header); err != nil {
		return err
	}
	for _, e := range l.entries {
		row := []string{
			e.Date.String(),
			fmt.Sprintf("%.2f", e.Invested.AsFloat()),
			fmt.Sprintf("%.2f", e.Value.AsFloat()),
			fmt.Sprintf("%.2f", e.RealValue.AsFloat()),
			e.Action,
		}
		for _, m := range Metals() {
			row = append(row, fmt.Sprintf("%.4f", e.Holdings[m]))
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
