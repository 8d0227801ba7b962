package metalsim

import (
	"fmt"
	"strings"
)

// Simulation turns a price history, an inflation table and a configuration
// into a ledger. It is a pure function of its inputs: each invocation owns
// its portfolio state and holds nothing across runs.
type Simulation struct {
	prices    *PriceTable
	inflation InflationTable
	config    Config
}

// simContext carries the mutable state of one running simulation,
// threaded explicitly through the engine calls.
type simContext struct {
	holdings      Holdings
	invested      float64 // cumulative invested capital
	prevTrend     AllocationTarget
	lastPurchase  Date
	lastRebalance [2]Date // per rebalance rule
}

// NewSimulation validates the configuration and returns a ready simulation.
// Configuration errors are fatal and reported before the loop starts.
func NewSimulation(prices *PriceTable, inflation InflationTable, config Config) (*Simulation, error) {
	if err := config.Validate(prices); err != nil {
		return nil, err
	}
	if config.Currency == "" {
		config.Currency = "EUR"
	}
	return &Simulation{prices: prices, inflation: inflation, config: config}, nil
}

// Run is a convenience wrapper around NewSimulation and Simulation.Run.
func Run(prices *PriceTable, inflation InflationTable, config Config) (*Ledger, error) {
	s, err := NewSimulation(prices, inflation, config)
	if err != nil {
		return nil, err
	}
	return s.Run()
}

// Run walks the trading dates once, in a fixed per-date order: purchase,
// rebalance rule 1, rebalance rule 2, storage fee for a completed year.
// A ledger row is appended for every date on which an action occurred.
func (s *Simulation) Run() (*Ledger, error) {
	cfg := &s.config

	purchases := PurchaseDates(s.prices, cfg.Start, cfg.End, cfg.Frequency, cfg.PurchaseDay)
	if len(purchases) == 0 {
		return nil, fmt.Errorf("no purchase date between %s and %s falls within the price history", cfg.Start, cfg.End)
	}
	scheduled := make(map[Date]bool, len(purchases))
	for _, d := range purchases {
		scheduled[d] = true
	}

	ledger := NewLedger(cfg.Currency)
	ctx := &simContext{holdings: make(Holdings)}
	prevYear := 0

	for on := range s.prices.DaysIn(NewRange(purchases[0], cfg.End)) {
		var actions []string
		var audit *TrendRecord

		if scheduled[on] {
			if ctx.invested == 0 {
				// The initial purchase invests the full initial amount
				// at the static target allocation, unconditionally.
				s.buy(ctx, on, cfg.InitialAmount, cfg.Target)
				actions = append(actions, "initial")
			} else {
				alloc := cfg.Target
				if cfg.Trend.Enabled {
					lookback := resolveLookback(cfg.Trend, ctx.lastPurchase, on)
					a, rec := trendAllocation(s.prices, cfg.Trend, lookback, on, ctx.prevTrend)
					alloc, ctx.prevTrend, audit = a, a, &rec
				}
				s.buy(ctx, on, cfg.Tranche, alloc)
				actions = append(actions, "recurring")
			}
			ctx.lastPurchase = on
		}

		for idx := range cfg.Rules {
			if label, _ := evaluateRebalance(s.prices, cfg, idx, ctx, on); label != "" {
				actions = append(actions, label)
			}
		}

		if prevYear != 0 && on.Year() != prevYear {
			if applyStorageFee(s.prices, cfg, ctx, prevYear) {
				actions = append(actions, "storage_fee")
			}
		}
		prevYear = on.Year()

		if len(actions) > 0 {
			ledger.append(LedgerEntry{
				Date:     on,
				Invested: M(ctx.invested, cfg.Currency),
				Holdings: ctx.holdings.clone(),
				Value:    M(s.valueAt(ctx.holdings, on), cfg.Currency),
				Action:   strings.Join(actions, ", "),
			})
			if audit != nil {
				ledger.appendTrend(*audit)
			}
		}
	}

	ledger.AdjustForInflation(s.inflation)
	return ledger, nil
}

// buy acquires grams of every metal for amount split by the allocation,
// at the per-metal purchase markup over spot.
func (s *Simulation) buy(ctx *simContext, on Date, amount float64, alloc AllocationTarget) {
	for _, m := range Metals() {
		spend := amount * alloc[m]
		if spend <= 0 {
			continue
		}
		price := s.prices.Gram(m, on) * (1 + markup(s.config.PurchaseMarkup, m).Fraction())
		if price > 0 {
			ctx.holdings[m] += spend / price
		}
	}
	ctx.invested += amount
}

// valueAt computes the portfolio value at buyback prices on a date.
func (s *Simulation) valueAt(h Holdings, on Date) float64 {
	total := 0.0
	for _, m := range Metals() {
		total += h[m] * s.prices.Gram(m, on) * (1 + markup(s.config.BuybackDiscount, m).Fraction())
	}
	return total
}
