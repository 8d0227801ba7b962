package metalsim

import (
	"math"
	"slices"
)

// MACD parameters, standard technical-analysis spans.
const (
	macdFastSpan   = 12
	macdSlowSpan   = 26
	macdSignalSpan = 9
)

// TrendRecord is the audit trail of one trend-driven purchase. It is not
// consumed by the simulation itself.
type TrendRecord struct {
	Date          Date
	LookbackStart Date
	Strategy      TrendStrategy
	Best, Worst   Metal
	BestChange    Percent
	WorstChange   Percent
	Weights       AllocationTarget
}

// rankedMetal pairs a metal with its strategy score.
type rankedMetal struct {
	metal Metal
	score float64
}

// resolveLookback returns the start of the window a ranking looks at.
// In since-purchase mode the window is anchored at the previous purchase,
// clamped to a 30-day minimum window when fewer than 7 days have elapsed.
func resolveLookback(cfg TrendConfig, lastPurchase, on Date) Date {
	if !cfg.Lookback.SincePurchase {
		return on.Add(-cfg.Lookback.Days)
	}
	if on.Sub(lastPurchase) < 7 {
		return on.Add(-30)
	}
	return lastPurchase
}

// trendAllocation ranks the metals over the lookback window, maps the
// configured per-rank weights onto the ranking, and rate-limits the result
// against the previous trend-derived allocation.
func trendAllocation(prices *PriceTable, cfg TrendConfig, lookbackStart, on Date, prev AllocationTarget) (AllocationTarget, TrendRecord) {
	window := NewRange(lookbackStart, on)
	ranking := computeRanking(prices, cfg.Strategy, window)

	weights := make(AllocationTarget, len(ranking))
	for rank, r := range ranking {
		weights[r.metal] = cfg.RankWeights[rank]
	}
	weights = limitShift(weights, prev, cfg.MaxShift)

	best, worst := ranking[0].metal, ranking[len(ranking)-1].metal
	return weights, TrendRecord{
		Date:          on,
		LookbackStart: lookbackStart,
		Strategy:      cfg.Strategy,
		Best:          best,
		Worst:         worst,
		BestChange:    prices.Change(best, window),
		WorstChange:   prices.Change(worst, window),
		Weights:       weights.clone(),
	}
}

// computeRanking orders the four metals by recent performance, best first.
// Equal scores preserve the fixed metal order, keeping rankings deterministic.
func computeRanking(prices *PriceTable, strategy TrendStrategy, window Range) []rankedMetal {
	scores := make([]rankedMetal, 0, len(metals))
	switch strategy {
	case TrendSimple:
		for _, m := range Metals() {
			scores = append(scores, rankedMetal{m, float64(prices.Change(m, window))})
		}
	case TrendMomentum:
		scores = momentumScores(prices, window)
	case TrendMACD:
		for _, m := range Metals() {
			samples := prices.Trailing(m, window.To, 2*macdSlowSpan)
			scores = append(scores, rankedMetal{m, macdScore(samples)})
		}
	}
	slices.SortStableFunc(scores, func(a, b rankedMetal) int {
		switch {
		case a.score > b.score:
			return -1
		case a.score < b.score:
			return 1
		default:
			return 0
		}
	})
	return scores
}

// momentumScores combines a long-window change with a short-window
// acceleration, both min-max normalized across the four metals.
func momentumScores(prices *PriceTable, window Range) []rankedMetal {
	long := prices.TradingDaysBetween(window)
	if long < 1 {
		long = 1
	}
	short := long / 3
	if short < 7 {
		short = 7
	}
	if short > long {
		short = long
	}

	changes := make(map[Metal]float64, len(metals))
	accels := make(map[Metal]float64, len(metals))
	for _, m := range Metals() {
		longChange := float64(prices.Change(m, window))
		shortChange := trailingChange(prices, m, window.To, short)
		changes[m] = longChange
		accels[m] = shortChange - longChange*float64(short)/float64(long)
	}

	normChanges := normalize(changes)
	normAccels := normalize(accels)

	scores := make([]rankedMetal, 0, len(metals))
	for _, m := range Metals() {
		scores = append(scores, rankedMetal{m, 0.7*normChanges[m] + 0.3*normAccels[m]})
	}
	return scores
}

// trailingChange is the percentage change over the last n trading samples.
func trailingChange(prices *PriceTable, m Metal, until Date, n int) float64 {
	samples := prices.Trailing(m, until, n)
	if len(samples) < 2 || samples[0] == 0 {
		return 0
	}
	return 100 * (samples[len(samples)-1] - samples[0]) / samples[0]
}

// normalize min-max scales values to [0,1]. When all four values are equal
// the scale is degenerate and every metal gets the neutral 0.5.
func normalize(values map[Metal]float64) map[Metal]float64 {
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, v := range values {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	out := make(map[Metal]float64, len(values))
	if hi == lo {
		for m := range values {
			out[m] = 0.5
		}
		return out
	}
	for m, v := range values {
		out[m] = (v - lo) / (hi - lo)
	}
	return out
}

// macdScore scores the MACD state of a trailing price series:
// base (1.0 when MACD is positive) plus a direction term (±0.5 with the
// last MACD move) plus a histogram-strength term (±0.3 with the last
// change of |histogram|).
func macdScore(samples []float64) float64 {
	n := len(samples)
	if n == 0 {
		return 0
	}
	fast := ema(samples, macdFastSpan)
	slow := ema(samples, macdSlowSpan)
	macd := make([]float64, n)
	for i := range samples {
		macd[i] = fast[i] - slow[i]
	}
	signal := ema(macd, macdSignalSpan)

	score := 0.0
	if macd[n-1] > 0 {
		score += 1.0
	}
	if n >= 2 && macd[n-1] > macd[n-2] {
		score += 0.5
	} else {
		score -= 0.5
	}
	histLast := math.Abs(macd[n-1] - signal[n-1])
	histPrev := 0.0
	if n >= 2 {
		histPrev = math.Abs(macd[n-2] - signal[n-2])
	}
	if n >= 2 && histLast > histPrev {
		score += 0.3
	} else {
		score -= 0.3
	}
	return score
}

// ema computes the exponential moving average with the given span,
// seeded on the first sample.
func ema(values []float64, span int) []float64 {
	if len(values) == 0 {
		return nil
	}
	alpha := 2.0 / (float64(span) + 1)
	out := make([]float64, len(values))
	out[0] = values[0]
	for i := 1; i < len(values); i++ {
		out[i] = alpha*values[i] + (1-alpha)*out[i-1]
	}
	return out
}

// limitShift clamps each metal's fraction to at most maxShift percentage
// points away from its previous value, then renormalizes the four fractions
// to sum to 1. Without a previous allocation, or with a limit of 100% or
// more, the allocation passes through unchanged.
func limitShift(next, prev AllocationTarget, maxShift Percent) AllocationTarget {
	if prev == nil || maxShift >= 100 {
		return next
	}
	limit := maxShift.Fraction()
	clamped := make(AllocationTarget, len(next))
	sum := 0.0
	for _, m := range Metals() {
		f := next[m]
		if d := f - prev[m]; d > limit {
			f = prev[m] + limit
		} else if d < -limit {
			f = prev[m] - limit
		}
		clamped[m] = f
		sum += f
	}
	if sum == 0 {
		return prev.clone()
	}
	for m := range clamped {
		clamped[m] /= sum
	}
	return clamped
}
