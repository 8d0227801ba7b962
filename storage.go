package metalsim

// applyStorageFee liquidates holdings to cover the storage fee of a
// completed calendar year. Prices are taken at the year's last trading
// date. The fee never touches invested capital; it only debits grams,
// each debit capped at the available holdings. It returns false when
// there was nothing to charge or nothing to sell.
func applyStorageFee(prices *PriceTable, cfg *Config, ctx *simContext, year int) bool {
	cost := ctx.invested * cfg.Storage.Fee.Fraction() * (1 + cfg.Storage.VAT.Fraction())
	if cost <= 0 {
		return false
	}

	yearRange := NewRange(NewDate(year, 1, 1), NewDate(year, 12, 31))
	var first, last Date
	for on := range prices.DaysIn(yearRange) {
		if first.IsZero() {
			first = on
		}
		last = on
	}
	if last.IsZero() {
		return false // no trading date in that year
	}

	sellGram := func(m Metal) float64 {
		return prices.Gram(m, last) * (1 + markup(cfg.BuybackDiscount, m).Fraction())
	}
	sell := func(m Metal, amount float64) bool {
		price := sellGram(m)
		if price <= 0 {
			return false
		}
		grams := amount / price
		if grams > ctx.holdings[m] {
			grams = ctx.holdings[m]
		}
		ctx.holdings[m] -= grams
		return grams > 0
	}

	switch cfg.Storage.Policy {
	case StorageSingleMetal:
		return sell(cfg.Storage.Metal, cost)

	case StorageBestOfYear:
		best := Gold
		bestGain := Percent(0)
		for i, m := range Metals() {
			gain := prices.Change(m, NewRange(first, last))
			if i == 0 || gain > bestGain {
				best, bestGain = m, gain
			}
		}
		return sell(best, cost)

	case StorageProRata:
		// Shares come from the pre-liquidation value; each metal then
		// funds its share of the cost independently.
		values := make(map[Metal]float64, len(metals))
		total := 0.0
		for _, m := range Metals() {
			values[m] = ctx.holdings[m] * prices.Gram(m, last)
			total += values[m]
		}
		if total == 0 {
			return false
		}
		sold := false
		for _, m := range Metals() {
			if sell(m, cost*values[m]/total) {
				sold = true
			}
		}
		return sold
	}
	return false
}
