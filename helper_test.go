package metalsim

import (
	"testing"
	"time"
)

// testTable builds a gap-free price table over 'days' consecutive business
// days starting at 'start', with prices produced by the price function
// (per troy ounce, indexed by business day).
func testTable(t *testing.T, start Date, days int, price func(i int, m Metal) float64) *PriceTable {
	t.Helper()
	rows := make([]PriceRow, 0, days)
	on := start
	for i := 0; i < days; {
		if wd := on.Weekday(); wd != time.Saturday && wd != time.Sunday {
			row := PriceRow{Date: on, Ounce: make(map[Metal]float64)}
			for _, m := range Metals() {
				row.Ounce[m] = price(i, m)
			}
			rows = append(rows, row)
			i++
		}
		on = on.Add(1)
	}
	table, err := NewPriceTable(rows)
	if err != nil {
		t.Fatalf("NewPriceTable() = %v", err)
	}
	return table
}

// flatPrices returns a price function with one constant price per metal.
func flatPrices(gold, silver, platinum, palladium float64) func(int, Metal) float64 {
	prices := map[Metal]float64{Gold: gold, Silver: silver, Platinum: platinum, Palladium: palladium}
	return func(_ int, m Metal) float64 { return prices[m] }
}

// testConfig returns a minimal valid configuration over the given range.
func testConfig(start, end Date) Config {
	return Config{
		Currency:      "EUR",
		InitialAmount: 10000,
		Start:         start,
		End:           end,
		Frequency:     Monthly,
		PurchaseDay:   1,
		Tranche:       500,
		Target:        AllocationTarget{Gold: 0.4, Silver: 0.3, Platinum: 0.15, Palladium: 0.15},
	}
}

func almostEqual(a, b, tolerance float64) bool {
	d := a - b
	if d < 0 {
		d = -d
	}
	return d <= tolerance
}
