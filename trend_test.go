package metalsim

import (
	"math"
	"testing"
)

func TestResolveLookback(t *testing.T) {
	on := MustParse("2024-06-15")
	testCases := []struct {
		name         string
		cfg          TrendConfig
		lastPurchase Date
		want         Date
	}{
		{
			name: "fixed window",
			cfg:  TrendConfig{Lookback: Lookback{Days: 90}},
			want: MustParse("2024-03-17"),
		},
		{
			name:         "since purchase",
			cfg:          TrendConfig{Lookback: Lookback{SincePurchase: true}},
			lastPurchase: MustParse("2024-05-15"),
			want:         MustParse("2024-05-15"),
		},
		{
			name:         "since purchase too recent widens to 30 days",
			cfg:          TrendConfig{Lookback: Lookback{SincePurchase: true}},
			lastPurchase: MustParse("2024-06-12"),
			want:         MustParse("2024-05-16"),
		},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if got := resolveLookback(tc.cfg, tc.lastPurchase, on); got != tc.want {
				t.Errorf("resolveLookback() = %s, want %s", got, tc.want)
			}
		})
	}
}

func TestComputeRanking_SimpleTieBreak(t *testing.T) {
	// Platinum rises, palladium falls, gold and silver stay flat. The flat
	// pair ties and must keep the fixed metal order, gold before silver.
	table := testTable(t, MustParse("2024-01-01"), 30, func(i int, m Metal) float64 {
		switch m {
		case Platinum:
			return 900 + float64(i)
		case Palladium:
			return 1000 - float64(i)
		default:
			return 100
		}
	})
	window := NewRange(table.First(), table.Last())

	ranking := computeRanking(table, TrendSimple, window)
	want := []Metal{Platinum, Gold, Silver, Palladium}
	for i, r := range ranking {
		if r.metal != want[i] {
			t.Errorf("ranking[%d] = %s, want %s", i, r.metal, want[i])
		}
	}
}

func TestTrendAllocation_RankWeights(t *testing.T) {
	table := testTable(t, MustParse("2024-01-01"), 30, func(i int, m Metal) float64 {
		// Distinct slopes: silver best, then gold, platinum, palladium.
		slopes := map[Metal]float64{Gold: 1, Silver: 2, Platinum: 0.5, Palladium: -1}
		return 500 + slopes[m]*float64(i)
	})

	cfg := TrendConfig{
		Enabled:     true,
		Strategy:    TrendSimple,
		RankWeights: [4]float64{0.4, 0.3, 0.2, 0.1},
		MaxShift:    100,
	}
	alloc, rec := trendAllocation(table, cfg, table.First(), table.Last(), nil)

	wantAlloc := AllocationTarget{Silver: 0.4, Gold: 0.3, Platinum: 0.2, Palladium: 0.1}
	for _, m := range Metals() {
		if !almostEqual(alloc[m], wantAlloc[m], 1e-12) {
			t.Errorf("alloc[%s] = %v, want %v", m, alloc[m], wantAlloc[m])
		}
	}
	if rec.Best != Silver || rec.Worst != Palladium {
		t.Errorf("record best/worst = %s/%s, want silver/palladium", rec.Best, rec.Worst)
	}
	if rec.BestChange <= 0 || rec.WorstChange >= 0 {
		t.Errorf("record changes = %s/%s, want positive best and negative worst", rec.BestChange, rec.WorstChange)
	}
}

func TestLimitShift(t *testing.T) {
	prev := AllocationTarget{Gold: 0.25, Silver: 0.25, Platinum: 0.25, Palladium: 0.25}
	next := AllocationTarget{Gold: 0.7, Silver: 0.3, Platinum: 0, Palladium: 0}

	got := limitShift(next, prev, 10)

	// Clamped to prev ± 0.10 then renormalized:
	// gold 0.35, silver 0.30, platinum 0.15, palladium 0.15, sum 0.95.
	want := AllocationTarget{Gold: 0.35 / 0.95, Silver: 0.30 / 0.95, Platinum: 0.15 / 0.95, Palladium: 0.15 / 0.95}
	sum := 0.0
	for _, m := range Metals() {
		if !almostEqual(got[m], want[m], 1e-12) {
			t.Errorf("limitShift[%s] = %v, want %v", m, got[m], want[m])
		}
		sum += got[m]
	}
	if !almostEqual(sum, 1, 1e-12) {
		t.Errorf("limitShift sum = %v, want 1", sum)
	}
}

func TestLimitShift_PassThrough(t *testing.T) {
	next := AllocationTarget{Gold: 0.7, Silver: 0.3, Platinum: 0, Palladium: 0}

	if got := limitShift(next, nil, 10); !sameAllocation(got, next) {
		t.Errorf("limitShift without previous allocation = %v, want unchanged", got)
	}
	prev := AllocationTarget{Gold: 0.25, Silver: 0.25, Platinum: 0.25, Palladium: 0.25}
	if got := limitShift(next, prev, 100); !sameAllocation(got, next) {
		t.Errorf("limitShift with 100%% limit = %v, want unchanged", got)
	}
}

func TestNormalize(t *testing.T) {
	got := normalize(map[Metal]float64{Gold: 10, Silver: 20, Platinum: 15, Palladium: 10})
	if got[Gold] != 0 || got[Silver] != 1 || !almostEqual(got[Platinum], 0.5, 1e-12) {
		t.Errorf("normalize() = %v", got)
	}

	// All equal values are degenerate; every metal gets the neutral 0.5.
	got = normalize(map[Metal]float64{Gold: 7, Silver: 7, Platinum: 7, Palladium: 7})
	for m, v := range got {
		if v != 0.5 {
			t.Errorf("normalize degenerate [%s] = %v, want 0.5", m, v)
		}
	}
}

func TestMACDScore(t *testing.T) {
	// A sustained exponential rise keeps MACD positive, rising, with a
	// widening histogram: the maximum score.
	rising := make([]float64, 60)
	for i := range rising {
		rising[i] = 100 * math.Pow(1.01, float64(i))
	}
	if got := macdScore(rising); !almostEqual(got, 1.8, 1e-12) {
		t.Errorf("macdScore(rising) = %v, want 1.8", got)
	}

	if got := macdScore(nil); got != 0 {
		t.Errorf("macdScore(nil) = %v, want 0", got)
	}
	// A single sample has zero MACD and no history: both deltas score low.
	if got := macdScore([]float64{100}); !almostEqual(got, -0.8, 1e-12) {
		t.Errorf("macdScore(single) = %v, want -0.8", got)
	}
}

func TestMomentumScores_Deterministic(t *testing.T) {
	table := testTable(t, MustParse("2024-01-01"), 60, func(i int, m Metal) float64 {
		slopes := map[Metal]float64{Gold: 0.5, Silver: 1.5, Platinum: -0.5, Palladium: 0.2}
		return 800 + slopes[m]*float64(i)
	})
	window := NewRange(table.First(), table.Last())

	first := computeRanking(table, TrendMomentum, window)
	second := computeRanking(table, TrendMomentum, window)
	for i := range first {
		if first[i] != second[i] {
			t.Fatalf("ranking differs between identical runs: %v vs %v", first, second)
		}
	}
	if first[0].metal != Silver {
		t.Errorf("best momentum metal = %s, want silver", first[0].metal)
	}
}

func sameAllocation(a, b AllocationTarget) bool {
	for _, m := range Metals() {
		if a[m] != b[m] {
			return false
		}
	}
	return true
}
