package renderer

import (
	"fmt"

	"github.com/etnz/metalsim"
)

// Summary is the view model behind the summary report. All fields are
// preformatted strings so the templates stay free of formatting logic.
type Summary struct {
	RunID    string
	From, To string

	Invested   string
	FinalValue string
	RealValue  string
	Gain       string
	GainPct    string
	CAGR       string

	Holdings []HoldingRow
}

// HoldingRow is one metal line of the final holdings table.
type HoldingRow struct {
	Metal string
	Grams string
	Share string
}

// NewSummary builds the summary view model from a report.
func NewSummary(r *metalsim.Report) *Summary {
	s := &Summary{
		RunID:      r.RunID.String(),
		From:       r.Range.From.String(),
		To:         r.Range.To.String(),
		Invested:   r.Invested.String(),
		FinalValue: r.FinalValue.String(),
		RealValue:  r.RealValue.String(),
		Gain:       r.Gain.SignedString(),
		GainPct:    r.GainPct.SignedString(),
		CAGR:       r.CAGR.SignedString(),
	}
	for _, m := range metalsim.Metals() {
		s.Holdings = append(s.Holdings, HoldingRow{
			Metal: m.String(),
			Grams: fmt.Sprintf("%.2f", r.Holdings[m]),
			Share: r.Shares[m].String(),
		})
	}
	return s
}

// LedgerTable is the view model behind the ledger report.
type LedgerTable struct {
	Currency string
	Rows     []LedgerRow
}

// LedgerRow is one dated line of the ledger table.
type LedgerRow struct {
	Date      string
	Action    string
	Invested  string
	Value     string
	RealValue string
	Grams     []string // in fixed metal order
}

// NewLedgerTable builds the ledger view model from a simulation ledger.
func NewLedgerTable(l *metalsim.Ledger) *LedgerTable {
	t := &LedgerTable{Currency: l.Currency}
	for e := range l.Entries() {
		row := LedgerRow{
			Date:      e.Date.String(),
			Action:    e.Action,
			Invested:  e.Invested.String(),
			Value:     e.Value.String(),
			RealValue: e.RealValue.String(),
		}
		for _, m := range metalsim.Metals() {
			row.Grams = append(row.Grams, fmt.Sprintf("%.2f", e.Holdings[m]))
		}
		t.Rows = append(t.Rows, row)
	}
	return t
}

// TrendTable is the view model behind the trend audit report.
type TrendTable struct {
	Rows []TrendRow
}

// TrendRow is one purchase line of the trend audit table.
type TrendRow struct {
	Date     string
	Window   string
	Strategy string
	Best     string
	Worst    string
	Weights  []string // in fixed metal order
}

// NewTrendTable builds the trend audit view model from a simulation ledger.
func NewTrendTable(l *metalsim.Ledger) *TrendTable {
	t := &TrendTable{}
	for r := range l.TrendRecords() {
		row := TrendRow{
			Date:     r.Date.String(),
			Window:   fmt.Sprintf("%s..%s", r.LookbackStart, r.Date),
			Strategy: r.Strategy.String(),
			Best:     fmt.Sprintf("%s (%s)", r.Best, r.BestChange.SignedString()),
			Worst:    fmt.Sprintf("%s (%s)", r.Worst, r.WorstChange.SignedString()),
		}
		for _, m := range metalsim.Metals() {
			row.Weights = append(row.Weights, fmt.Sprintf("%.0f%%", 100*r.Weights[m]))
		}
		t.Rows = append(t.Rows, row)
	}
	return t
}
