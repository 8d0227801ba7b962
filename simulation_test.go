package metalsim

import (
	"strings"
	"testing"
	"time"
)

func TestSimulation_InitialPurchase(t *testing.T) {
	table := testTable(t, MustParse("2024-01-01"), 90, flatPrices(1000, 23, 900, 1000))
	cfg := testConfig(MustParse("2024-01-01"), MustParse("2024-03-31"))
	cfg.InitialAmount = 100000
	cfg.PurchaseMarkup = map[Metal]Percent{Gold: 10}

	ledger, err := Run(table, nil, cfg)
	if err != nil {
		t.Fatalf("Run() = %v", err)
	}
	first, ok := ledger.First()
	if !ok {
		t.Fatal("empty ledger")
	}
	if first.Action != "initial" {
		t.Errorf("first action = %q, want initial", first.Action)
	}
	if first.Invested.AsFloat() != 100000 {
		t.Errorf("invested after initial purchase = %v, want 100000", first.Invested.AsFloat())
	}

	// 40% of the initial amount buys gold at spot plus the 10% markup.
	wantGold := 100000 * cfg.Target[Gold] / (table.Gram(Gold, first.Date) * 1.1)
	if !almostEqual(first.Holdings[Gold], wantGold, 1e-9) {
		t.Errorf("gold grams = %v, want %v", first.Holdings[Gold], wantGold)
	}
	// Silver carries no markup and is bought at spot.
	wantSilver := 100000 * cfg.Target[Silver] / table.Gram(Silver, first.Date)
	if !almostEqual(first.Holdings[Silver], wantSilver, 1e-9) {
		t.Errorf("silver grams = %v, want %v", first.Holdings[Silver], wantSilver)
	}
}

func TestSimulation_Invariants(t *testing.T) {
	table := testTable(t, MustParse("2024-01-01"), 300, func(i int, m Metal) float64 {
		slopes := map[Metal]float64{Gold: 1.2, Silver: -0.01, Platinum: 0.4, Palladium: -0.3}
		return 900 + slopes[m]*float64(i)
	})
	cfg := testConfig(MustParse("2024-01-01"), MustParse("2025-01-31"))
	cfg.Storage = StorageConfig{Fee: 1.5, VAT: 19, Policy: StorageProRata}
	cfg.Rules[0] = RebalanceRule{Enabled: true, AnchorMonth: time.July, AnchorDay: 1}
	cfg.Trend = TrendConfig{
		Enabled:     true,
		Lookback:    Lookback{Days: 60},
		Strategy:    TrendMomentum,
		RankWeights: [4]float64{0.4, 0.3, 0.2, 0.1},
		MaxShift:    15,
	}

	ledger, err := Run(table, InflationTable{2024: 3}, cfg)
	if err != nil {
		t.Fatalf("Run() = %v", err)
	}
	if ledger.Len() < 13 {
		t.Fatalf("ledger has %d entries, want at least 13 monthly purchases", ledger.Len())
	}

	prevInvested := 0.0
	var prevDate Date
	sawStorage, sawRebalance := false, false
	for e := range ledger.Entries() {
		if e.Invested.AsFloat() < prevInvested {
			t.Errorf("%s: invested %v dropped below %v", e.Date, e.Invested.AsFloat(), prevInvested)
		}
		prevInvested = e.Invested.AsFloat()

		if !prevDate.IsZero() && !prevDate.Before(e.Date) {
			t.Errorf("entries out of order: %s then %s", prevDate, e.Date)
		}
		prevDate = e.Date

		for m, g := range e.Holdings {
			if g < 0 {
				t.Errorf("%s: negative %s holdings %v", e.Date, m, g)
			}
		}
		if strings.Contains(e.Action, "storage_fee") {
			sawStorage = true
			if e.Date.Year() != 2025 {
				t.Errorf("storage fee charged on %s, want a 2025 date", e.Date)
			}
		}
		if e.Action == "rebalance_1" || strings.Contains(e.Action, ", rebalance_1") {
			sawRebalance = true
		}
	}
	if !sawStorage {
		t.Error("no storage fee was charged for the completed year")
	}
	if !sawRebalance {
		t.Error("the July rebalance never executed")
	}

	// The real value of the 2025 rows is deflated by the 2024 inflation.
	last, _ := ledger.Last()
	wantReal := last.Value.AsFloat() / 1.03
	if !almostEqual(last.RealValue.AsFloat(), wantReal, 0.01) {
		t.Errorf("real value = %v, want %v", last.RealValue.AsFloat(), wantReal)
	}
}

func TestSimulation_Deterministic(t *testing.T) {
	table := testTable(t, MustParse("2024-01-01"), 200, func(i int, m Metal) float64 {
		slopes := map[Metal]float64{Gold: 0.8, Silver: 1.1, Platinum: -0.2, Palladium: 0.3}
		return 700 + slopes[m]*float64(i)
	})
	cfg := testConfig(MustParse("2024-01-01"), MustParse("2024-09-30"))
	cfg.Trend = TrendConfig{
		Enabled:     true,
		Lookback:    Lookback{SincePurchase: true},
		Strategy:    TrendMACD,
		RankWeights: [4]float64{0.4, 0.3, 0.2, 0.1},
		MaxShift:    10,
	}

	run := func() *Ledger {
		l, err := Run(table, nil, cfg)
		if err != nil {
			t.Fatalf("Run() = %v", err)
		}
		return l
	}
	a, b := run(), run()

	if a.ID == b.ID {
		t.Error("two runs share a ledger ID")
	}
	if a.Len() != b.Len() {
		t.Fatalf("runs differ in length: %d vs %d", a.Len(), b.Len())
	}
	ea := make([]LedgerEntry, 0, a.Len())
	for e := range a.Entries() {
		ea = append(ea, e)
	}
	i := 0
	for e := range b.Entries() {
		prev := ea[i]
		if e.Date != prev.Date || e.Action != prev.Action ||
			e.Invested.AsFloat() != prev.Invested.AsFloat() ||
			e.Value.AsFloat() != prev.Value.AsFloat() {
			t.Fatalf("entry %d differs between identical runs:\n%+v\n%+v", i, prev, e)
		}
		for _, m := range Metals() {
			if e.Holdings[m] != prev.Holdings[m] {
				t.Fatalf("entry %d: %s holdings differ: %v vs %v", i, m, prev.Holdings[m], e.Holdings[m])
			}
		}
		i++
	}
}

func TestSimulation_ConfigErrors(t *testing.T) {
	table := testTable(t, MustParse("2024-01-01"), 30, flatPrices(2000, 23, 900, 1000))

	testCases := []struct {
		name string
		mod  func(*Config)
	}{
		{name: "bad allocation sum", mod: func(c *Config) { c.Target = AllocationTarget{Gold: 0.9} }},
		{name: "negative fraction", mod: func(c *Config) { c.Target = AllocationTarget{Gold: -0.5, Silver: 1.5} }},
		{name: "zero initial amount", mod: func(c *Config) { c.InitialAmount = 0 }},
		{name: "inverted range", mod: func(c *Config) { c.Start, c.End = c.End, c.Start }},
		{name: "bad rank weights", mod: func(c *Config) {
			c.Trend = TrendConfig{Enabled: true, Lookback: Lookback{Days: 30}, RankWeights: [4]float64{1, 1, 1, 1}}
		}},
		{name: "zero lookback", mod: func(c *Config) {
			c.Trend = TrendConfig{Enabled: true, RankWeights: [4]float64{0.4, 0.3, 0.2, 0.1}}
		}},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := testConfig(MustParse("2024-01-01"), MustParse("2024-03-31"))
			tc.mod(&cfg)
			if _, err := Run(table, nil, cfg); err == nil {
				t.Error("Run() with an invalid config succeeded, want error")
			}
		})
	}
}

func TestSimulation_NoPurchaseDates(t *testing.T) {
	table := testTable(t, MustParse("2024-01-01"), 30, flatPrices(2000, 23, 900, 1000))
	cfg := testConfig(MustParse("2026-01-01"), MustParse("2026-03-31"))
	if _, err := Run(table, nil, cfg); err == nil {
		t.Error("Run() with every purchase past the history succeeded, want error")
	}
}
