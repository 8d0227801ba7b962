package metalsim

import "testing"

// storageConfig returns a config charging a 1.5% fee plus 19% VAT, sold
// from gold at a 2% buyback discount.
func storageConfig() Config {
	cfg := testConfig(MustParse("2024-01-01"), MustParse("2024-12-31"))
	cfg.Storage = StorageConfig{Fee: 1.5, VAT: 19, Policy: StorageSingleMetal, Metal: Gold}
	cfg.BuybackDiscount = map[Metal]Percent{Gold: -2, Silver: -2, Platinum: -2, Palladium: -2}
	return cfg
}

func TestApplyStorageFee_SingleMetal(t *testing.T) {
	table := testTable(t, MustParse("2024-01-01"), 30, flatPrices(2000, 23, 900, 1000))
	cfg := storageConfig()

	ctx := &simContext{holdings: Holdings{Gold: 500}, invested: 50000}
	if !applyStorageFee(table, &cfg, ctx, 2024) {
		t.Fatal("applyStorageFee() = false, want true")
	}

	// cost = 50000 * 1.5% * 1.19 = 892.50, paid in gold at the discounted
	// buyback price of the year's last trading date.
	cost := 50000 * 0.015 * 1.19
	sellPrice := table.Gram(Gold, table.Last()) * 0.98
	wantGold := 500 - cost/sellPrice
	if !almostEqual(ctx.holdings[Gold], wantGold, 1e-9) {
		t.Errorf("gold after fee = %v, want %v", ctx.holdings[Gold], wantGold)
	}
	if ctx.invested != 50000 {
		t.Errorf("invested changed to %v, fees must not touch invested capital", ctx.invested)
	}
}

func TestApplyStorageFee_CappedAtHoldings(t *testing.T) {
	table := testTable(t, MustParse("2024-01-01"), 30, flatPrices(2000, 23, 900, 1000))
	cfg := storageConfig()

	// Holdings are worth far less than the fee; the debit drains them to
	// zero and never goes negative.
	ctx := &simContext{holdings: Holdings{Gold: 0.5}, invested: 50000}
	if !applyStorageFee(table, &cfg, ctx, 2024) {
		t.Fatal("applyStorageFee() = false, want true")
	}
	if ctx.holdings[Gold] != 0 {
		t.Errorf("gold after fee = %v, want 0", ctx.holdings[Gold])
	}
}

func TestApplyStorageFee_BestOfYear(t *testing.T) {
	// Silver gains the most over the year; the fee must come out of silver.
	table := testTable(t, MustParse("2024-01-01"), 30, func(i int, m Metal) float64 {
		switch m {
		case Silver:
			return 20 + float64(i)
		case Gold:
			return 2000 + float64(i)
		default:
			return 900 - float64(i)
		}
	})
	cfg := storageConfig()
	cfg.Storage.Policy = StorageBestOfYear

	ctx := &simContext{holdings: Holdings{Gold: 100, Silver: 100, Platinum: 100, Palladium: 100}, invested: 50000}
	if !applyStorageFee(table, &cfg, ctx, 2024) {
		t.Fatal("applyStorageFee() = false, want true")
	}
	if ctx.holdings[Silver] >= 100 {
		t.Errorf("silver after fee = %v, want < 100", ctx.holdings[Silver])
	}
	for _, m := range []Metal{Gold, Platinum, Palladium} {
		if ctx.holdings[m] != 100 {
			t.Errorf("%s after fee = %v, want untouched", m, ctx.holdings[m])
		}
	}
}

func TestApplyStorageFee_ProRata(t *testing.T) {
	table := testTable(t, MustParse("2024-01-01"), 30, flatPrices(2000, 2000, 900, 1000))
	cfg := storageConfig()
	cfg.Storage.Policy = StorageProRata

	// Gold and silver priced identically and held equally: each funds half
	// of the cost.
	ctx := &simContext{holdings: Holdings{Gold: 200, Silver: 200}, invested: 50000}
	if !applyStorageFee(table, &cfg, ctx, 2024) {
		t.Fatal("applyStorageFee() = false, want true")
	}

	cost := 50000 * 0.015 * 1.19
	sellPrice := table.Gram(Gold, table.Last()) * 0.98
	want := 200 - cost/2/sellPrice
	if !almostEqual(ctx.holdings[Gold], want, 1e-9) {
		t.Errorf("gold after fee = %v, want %v", ctx.holdings[Gold], want)
	}
	if !almostEqual(ctx.holdings[Silver], want, 1e-9) {
		t.Errorf("silver after fee = %v, want %v", ctx.holdings[Silver], want)
	}
}

func TestApplyStorageFee_Nothing(t *testing.T) {
	table := testTable(t, MustParse("2024-01-01"), 30, flatPrices(2000, 23, 900, 1000))

	cfg := storageConfig()
	cfg.Storage.Fee = 0
	ctx := &simContext{holdings: Holdings{Gold: 100}, invested: 50000}
	if applyStorageFee(table, &cfg, ctx, 2024) {
		t.Error("applyStorageFee() with a zero fee = true, want false")
	}

	cfg = storageConfig()
	if applyStorageFee(table, &cfg, ctx, 2030) {
		t.Error("applyStorageFee() for a year outside the history = true, want false")
	}
}
