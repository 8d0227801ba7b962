package metalsim

import (
	"fmt"
	"math"
)

// evaluateRebalance runs one rebalance rule against the current state.
//
// The rule only triggers on its anchor month/day, once the date has reached
// the rule's start. Skips (cooldown, empty portfolio, deviation below
// threshold) are reported with a distinct suffix on the action label so they
// stay visible in the ledger. It returns the action label, or "" when the
// rule was silent, and whether holdings changed.
func evaluateRebalance(prices *PriceTable, cfg *Config, idx int, ctx *simContext, on Date) (string, bool) {
	rule := cfg.Rules[idx]
	if !rule.Enabled {
		return "", false
	}
	start := rule.Start
	if start.IsZero() {
		start = cfg.Start
	}
	if on.Before(start) {
		return "", false
	}
	if on.Month() != rule.AnchorMonth || on.Day() != rule.AnchorDay {
		return "", false
	}

	label := fmt.Sprintf("rebalance_%d", idx+1)

	if last := ctx.lastRebalance[idx]; !last.IsZero() && on.Sub(last) < rebalanceCooldownDays {
		return label + "_too_soon", false
	}

	values := make(map[Metal]float64, len(metals))
	total := 0.0
	for _, m := range Metals() {
		values[m] = ctx.holdings[m] * prices.Gram(m, on)
		total += values[m]
	}
	if total == 0 {
		return label + "_no_value", false
	}

	if rule.OnDeviation {
		maxDeviation := 0.0
		for _, m := range Metals() {
			deviation := math.Abs(values[m]/total-cfg.Target[m]) * 100 // percentage points
			maxDeviation = math.Max(maxDeviation, deviation)
		}
		if maxDeviation < float64(rule.Threshold) {
			return label + "_no_deviation", false
		}
	}

	// Sell the over-weight metals at the buyback-discounted price. The
	// excess is measured at spot; the discount shrinks the proceeds.
	cash := 0.0
	for _, m := range Metals() {
		target := total * cfg.Target[m]
		if values[m] <= target {
			continue
		}
		spot := prices.Gram(m, on)
		grams := (values[m] - target) / spot
		if grams > ctx.holdings[m] {
			grams = ctx.holdings[m]
		}
		ctx.holdings[m] -= grams
		cash += grams * spot * (1 + markup(cfg.BuybackDiscount, m).Fraction())
	}

	// Buy into the under-weight metals at the rebalance markup, in metal
	// order, until the cash runs out. Unspent cash is left unconverted.
	for _, m := range Metals() {
		if cash <= 0 {
			break
		}
		target := total * cfg.Target[m]
		if values[m] >= target {
			continue
		}
		spend := math.Min(cash, target-values[m])
		price := prices.Gram(m, on) * (1 + markup(cfg.RebalanceMarkup, m).Fraction())
		if price > 0 {
			ctx.holdings[m] += spend / price
		}
		cash -= spend
	}

	ctx.lastRebalance[idx] = on
	return label, true
}
