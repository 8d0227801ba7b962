package cmd

import (
	"flag"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/etnz/metalsim"
)

// configFlags gathers the simulation parameters shared by the
// subcommands that run a simulation (simulate, chart, assist).
type configFlags struct {
	start, end string
	currency   string
	initial    float64
	tranche    float64
	freq       string
	day        int

	alloc           string
	markup          string
	discount        string
	rebalanceMarkup string

	storageFee    float64
	storageVAT    float64
	storagePolicy string
	storageMetal  string

	rule1, rule2           string
	threshold1, threshold2 float64
	ruleStart1, ruleStart2 string

	trend         bool
	trendStrategy string
	trendLookback int
	trendSince    bool
	trendWeights  string
	trendMaxShift float64
}

func (c *configFlags) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.start, "start", "", "First purchase date (YYYY-MM-DD)")
	f.StringVar(&c.end, "end", metalsim.Today().String(), "Last purchase date (YYYY-MM-DD)")
	f.StringVar(&c.currency, "currency", "EUR", "Reporting currency")
	f.Float64Var(&c.initial, "initial", 10000, "Initial purchase amount")
	f.Float64Var(&c.tranche, "tranche", 500, "Recurring purchase amount")
	f.StringVar(&c.freq, "freq", "monthly", "Purchase frequency: none, weekly, monthly or quarterly")
	f.IntVar(&c.day, "day", 1, "Purchase day: weekday (weekly) or day of month")

	f.StringVar(&c.alloc, "alloc", "gold=40,silver=30,platinum=15,palladium=15", "Target allocation in percent per metal")
	f.StringVar(&c.markup, "markup", "", "Purchase markup in percent per metal, e.g. gold=7.5,silver=12")
	f.StringVar(&c.discount, "discount", "", "Buyback discount in percent per metal, e.g. gold=-1.5")
	f.StringVar(&c.rebalanceMarkup, "rebalance-markup", "", "Rebalance purchase markup in percent per metal")

	f.Float64Var(&c.storageFee, "storage-fee", 0, "Yearly storage fee in percent of invested capital")
	f.Float64Var(&c.storageVAT, "storage-vat", 0, "VAT applied to the storage fee, in percent")
	f.StringVar(&c.storagePolicy, "storage-policy", "single", "Storage funding policy: single, best or all")
	f.StringVar(&c.storageMetal, "storage-metal", "gold", "Metal sold by the 'single' storage policy")

	f.StringVar(&c.rule1, "rebalance1", "", "Yearly anchor of rebalance rule 1 as MM-DD, empty to disable")
	f.Float64Var(&c.threshold1, "rebalance1-threshold", 0, "Minimum deviation in percentage points, 0 for unconditional")
	f.StringVar(&c.ruleStart1, "rebalance1-start", "", "First date rule 1 may trigger (YYYY-MM-DD)")
	f.StringVar(&c.rule2, "rebalance2", "", "Yearly anchor of rebalance rule 2 as MM-DD, empty to disable")
	f.Float64Var(&c.threshold2, "rebalance2-threshold", 0, "Minimum deviation in percentage points, 0 for unconditional")
	f.StringVar(&c.ruleStart2, "rebalance2-start", "", "First date rule 2 may trigger (YYYY-MM-DD)")

	f.BoolVar(&c.trend, "trend", false, "Allocate recurring purchases by recent performance")
	f.StringVar(&c.trendStrategy, "trend-strategy", "simple", "Trend strategy: simple, momentum or macd")
	f.IntVar(&c.trendLookback, "trend-lookback", 90, "Trend lookback window in days")
	f.BoolVar(&c.trendSince, "trend-since-purchase", false, "Anchor the trend window at the previous purchase")
	f.StringVar(&c.trendWeights, "trend-weights", "40,30,20,10", "Per-rank weights in percent, best performer first")
	f.Float64Var(&c.trendMaxShift, "trend-max-shift", 100, "Maximum allocation shift per purchase in percentage points, 100 disables")
}

// Config builds and returns the simulation configuration from the flags.
func (c *configFlags) Config() (metalsim.Config, error) {
	var cfg metalsim.Config
	var err error

	if cfg.Start, err = metalsim.ParseDate(c.start); err != nil {
		return cfg, fmt.Errorf("invalid -start: %w", err)
	}
	if cfg.End, err = metalsim.ParseDate(c.end); err != nil {
		return cfg, fmt.Errorf("invalid -end: %w", err)
	}
	if cfg.Frequency, err = metalsim.ParseFrequency(c.freq); err != nil {
		return cfg, fmt.Errorf("invalid -freq: %w", err)
	}
	cfg.Currency = c.currency
	cfg.InitialAmount = c.initial
	cfg.Tranche = c.tranche
	cfg.PurchaseDay = c.day

	if cfg.Target, err = parseAllocation(c.alloc); err != nil {
		return cfg, fmt.Errorf("invalid -alloc: %w", err)
	}
	if cfg.PurchaseMarkup, err = parseMetalPercents(c.markup); err != nil {
		return cfg, fmt.Errorf("invalid -markup: %w", err)
	}
	if cfg.BuybackDiscount, err = parseMetalPercents(c.discount); err != nil {
		return cfg, fmt.Errorf("invalid -discount: %w", err)
	}
	if cfg.RebalanceMarkup, err = parseMetalPercents(c.rebalanceMarkup); err != nil {
		return cfg, fmt.Errorf("invalid -rebalance-markup: %w", err)
	}

	cfg.Storage.Fee = metalsim.Percent(c.storageFee)
	cfg.Storage.VAT = metalsim.Percent(c.storageVAT)
	if cfg.Storage.Policy, err = metalsim.ParseStoragePolicy(c.storagePolicy); err != nil {
		return cfg, fmt.Errorf("invalid -storage-policy: %w", err)
	}
	if cfg.Storage.Metal, err = metalsim.ParseMetal(c.storageMetal); err != nil {
		return cfg, fmt.Errorf("invalid -storage-metal: %w", err)
	}

	if cfg.Rules[0], err = parseRule(c.rule1, c.threshold1, c.ruleStart1); err != nil {
		return cfg, fmt.Errorf("invalid -rebalance1: %w", err)
	}
	if cfg.Rules[1], err = parseRule(c.rule2, c.threshold2, c.ruleStart2); err != nil {
		return cfg, fmt.Errorf("invalid -rebalance2: %w", err)
	}

	cfg.Trend.Enabled = c.trend
	if c.trend {
		if cfg.Trend.Strategy, err = metalsim.ParseTrendStrategy(c.trendStrategy); err != nil {
			return cfg, fmt.Errorf("invalid -trend-strategy: %w", err)
		}
		cfg.Trend.Lookback = metalsim.Lookback{SincePurchase: c.trendSince, Days: c.trendLookback}
		if cfg.Trend.RankWeights, err = parseRankWeights(c.trendWeights); err != nil {
			return cfg, fmt.Errorf("invalid -trend-weights: %w", err)
		}
		cfg.Trend.MaxShift = metalsim.Percent(c.trendMaxShift)
	}
	return cfg, nil
}

// parseAllocation parses "gold=40,silver=30,platinum=15,palladium=15"
// (percentages) into fractions.
func parseAllocation(s string) (metalsim.AllocationTarget, error) {
	percents, err := parseMetalPercents(s)
	if err != nil {
		return nil, err
	}
	target := make(metalsim.AllocationTarget, len(percents))
	for m, p := range percents {
		target[m] = p.Fraction()
	}
	return target, nil
}

// parseMetalPercents parses "gold=7.5,silver=12" into a per-metal
// percentage table. The empty string yields a nil table (all zeros).
func parseMetalPercents(s string) (map[metalsim.Metal]metalsim.Percent, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}
	out := make(map[metalsim.Metal]metalsim.Percent)
	for _, pair := range strings.Split(s, ",") {
		name, value, found := strings.Cut(pair, "=")
		if !found {
			return nil, fmt.Errorf("malformed entry %q, want metal=value", pair)
		}
		m, err := metalsim.ParseMetal(name)
		if err != nil {
			return nil, err
		}
		v, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
		if err != nil {
			return nil, fmt.Errorf("invalid value in %q: %w", pair, err)
		}
		out[m] = metalsim.Percent(v)
	}
	return out, nil
}

// parseRankWeights parses "40,30,20,10" (percentages, best first) into
// the four per-rank fractions.
func parseRankWeights(s string) ([4]float64, error) {
	var weights [4]float64
	parts := strings.Split(s, ",")
	if len(parts) != 4 {
		return weights, fmt.Errorf("want 4 comma-separated weights, got %d", len(parts))
	}
	for i, p := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return weights, fmt.Errorf("invalid weight %q: %w", p, err)
		}
		weights[i] = v / 100
	}
	return weights, nil
}

// parseRule parses a yearly "MM-DD" anchor into a rebalance rule. An
// empty anchor disables the rule; a zero threshold makes it
// unconditional.
func parseRule(anchor string, threshold float64, start string) (metalsim.RebalanceRule, error) {
	var rule metalsim.RebalanceRule
	if strings.TrimSpace(anchor) == "" {
		return rule, nil
	}
	ms, ds, found := strings.Cut(strings.TrimSpace(anchor), "-")
	if !found {
		return rule, fmt.Errorf("malformed anchor %q, want MM-DD", anchor)
	}
	month, err := strconv.Atoi(ms)
	if err != nil || month < 1 || month > 12 {
		return rule, fmt.Errorf("invalid month in anchor %q", anchor)
	}
	day, err := strconv.Atoi(ds)
	if err != nil || day < 1 || day > 31 {
		return rule, fmt.Errorf("invalid day in anchor %q", anchor)
	}
	rule.Enabled = true
	rule.AnchorMonth = time.Month(month)
	rule.AnchorDay = day
	rule.OnDeviation = threshold > 0
	rule.Threshold = metalsim.Percent(threshold)
	if strings.TrimSpace(start) != "" {
		if rule.Start, err = metalsim.ParseDate(start); err != nil {
			return rule, fmt.Errorf("invalid rule start: %w", err)
		}
	}
	return rule, nil
}
