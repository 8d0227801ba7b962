package metalsim

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"
)

// allocationTolerance is the accepted deviation of an allocation sum from 1.
const allocationTolerance = 1e-6

// minRangeDays is the minimum span between the first and last purchase dates.
const minRangeDays = 1

// rebalanceCooldownDays is the minimum gap between two executions of the
// same rebalance rule.
const rebalanceCooldownDays = 30

// AllocationTarget maps each metal to its target fraction of the portfolio.
// Fractions sum to 1 within a small tolerance.
type AllocationTarget map[Metal]float64

// Validate checks that all fractions are in [0,1] and sum to 1.
func (a AllocationTarget) Validate() error {
	var errs error
	sum := 0.0
	for _, m := range Metals() {
		f := a[m]
		if f < 0 || f > 1 {
			errs = errors.Join(errs, fmt.Errorf("allocation for %s is %v, want a fraction in [0,1]", m, f))
		}
		sum += f
	}
	if math.Abs(sum-1) > allocationTolerance {
		errs = errors.Join(errs, fmt.Errorf("allocation fractions sum to %v, want 1", sum))
	}
	return errs
}

// clone returns an independent copy of the allocation.
func (a AllocationTarget) clone() AllocationTarget {
	c := make(AllocationTarget, len(a))
	for m, f := range a {
		c[m] = f
	}
	return c
}

// StoragePolicy selects which holdings fund the yearly storage fee.
type StoragePolicy int

const (
	// StorageSingleMetal sells from one designated metal.
	StorageSingleMetal StoragePolicy = iota
	// StorageBestOfYear sells from the metal with the highest price gain
	// over the completed year.
	StorageBestOfYear
	// StorageProRata sells from every metal in proportion to its current
	// value share.
	StorageProRata
)

func (p StoragePolicy) String() string {
	switch p {
	case StorageSingleMetal:
		return "single"
	case StorageBestOfYear:
		return "best"
	case StorageProRata:
		return "all"
	default:
		return "unknown"
	}
}

// ParseStoragePolicy parses a storage funding policy from its name.
func ParseStoragePolicy(s string) (StoragePolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "single", "metal":
		return StorageSingleMetal, nil
	case "best", "best-of-year":
		return StorageBestOfYear, nil
	case "all", "pro-rata", "prorata":
		return StorageProRata, nil
	default:
		return StorageSingleMetal, fmt.Errorf("unknown storage policy %q", s)
	}
}

// TrendStrategy selects how metals are ranked by recent performance.
type TrendStrategy int

const (
	// TrendSimple ranks by percentage change since the lookback start.
	TrendSimple TrendStrategy = iota
	// TrendMomentum combines normalized change and acceleration.
	TrendMomentum
	// TrendMACD scores the MACD indicator state of each metal.
	TrendMACD
)

func (s TrendStrategy) String() string {
	switch s {
	case TrendSimple:
		return "simple"
	case TrendMomentum:
		return "momentum"
	case TrendMACD:
		return "macd"
	default:
		return "unknown"
	}
}

// ParseTrendStrategy parses a trend strategy from its name.
func ParseTrendStrategy(s string) (TrendStrategy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "simple":
		return TrendSimple, nil
	case "momentum":
		return TrendMomentum, nil
	case "macd":
		return TrendMACD, nil
	default:
		return TrendSimple, fmt.Errorf("unknown trend strategy %q", s)
	}
}

// Lookback selects the start of the window a trend ranking looks at.
type Lookback struct {
	// SincePurchase anchors the window at the previous purchase date
	// instead of a fixed number of days.
	SincePurchase bool
	// Days is the fixed window length when SincePurchase is false.
	Days int
}

// TrendConfig drives the dynamic allocation of recurring purchases.
type TrendConfig struct {
	Enabled  bool
	Lookback Lookback
	Strategy TrendStrategy
	// RankWeights are assigned to metals by rank, best performer first.
	// They are fractions summing to 1.
	RankWeights [4]float64
	// MaxShift bounds, in percentage points, how far each metal's fraction
	// may move between two consecutive purchases. 100 disables the limit.
	MaxShift Percent
}

// RebalanceRule is one of the two independent yearly rebalance triggers.
type RebalanceRule struct {
	Enabled bool
	// OnDeviation gates execution on the deviation threshold; when false
	// the rule executes unconditionally on its anchor date.
	OnDeviation bool
	// Threshold is the minimum absolute deviation, in percentage points,
	// of any metal's value share from its target share.
	Threshold Percent
	// AnchorMonth and AnchorDay repeat yearly.
	AnchorMonth time.Month
	AnchorDay   int
	// Start is the first date the rule may trigger. Zero means the
	// simulation start.
	Start Date
}

// StorageConfig describes the yearly storage fee.
type StorageConfig struct {
	Fee    Percent // annual fee on cumulative invested capital
	VAT    Percent
	Policy StoragePolicy
	Metal  Metal // designated metal for StorageSingleMetal
}

// Config gathers every parameter of a simulation run.
type Config struct {
	Currency string // reporting currency, e.g. "EUR"

	InitialAmount float64
	Start, End    Date // first and last purchase dates
	Frequency     Frequency
	// PurchaseDay is the weekday (weekly) or day of month (monthly,
	// quarterly) of recurring purchases.
	PurchaseDay int
	Tranche     float64 // single recurring purchase amount

	Target AllocationTarget

	PurchaseMarkup  map[Metal]Percent // added to spot when buying
	BuybackDiscount map[Metal]Percent // applied to spot when selling, typically negative
	RebalanceMarkup map[Metal]Percent // added to spot when buying during a rebalance

	Storage StorageConfig
	Rules   [2]RebalanceRule
	Trend   TrendConfig
}

// Validate performs the fail-fast configuration checks: allocation sums,
// date range, and price table coverage. Any error aborts the run before the
// simulation loop starts.
func (c *Config) Validate(prices *PriceTable) error {
	var errs error

	if prices == nil || prices.Len() == 0 {
		errs = errors.Join(errs, ErrEmptyPriceTable)
	}
	if err := c.Target.Validate(); err != nil {
		errs = errors.Join(errs, fmt.Errorf("invalid target allocation: %w", err))
	}
	if c.InitialAmount <= 0 {
		errs = errors.Join(errs, fmt.Errorf("initial amount is %v, want > 0", c.InitialAmount))
	}
	if c.Start.IsZero() || c.End.IsZero() || c.End.Sub(c.Start) < minRangeDays {
		errs = errors.Join(errs, fmt.Errorf("purchase date range %s..%s is shorter than %d day(s)", c.Start, c.End, minRangeDays))
	}
	if c.Trend.Enabled {
		sum := 0.0
		for _, w := range c.Trend.RankWeights {
			if w < 0 || w > 1 {
				errs = errors.Join(errs, fmt.Errorf("trend rank weight %v is not a fraction in [0,1]", w))
			}
			sum += w
		}
		if math.Abs(sum-1) > allocationTolerance {
			errs = errors.Join(errs, fmt.Errorf("trend rank weights sum to %v, want 1", sum))
		}
		if !c.Trend.Lookback.SincePurchase && c.Trend.Lookback.Days <= 0 {
			errs = errors.Join(errs, fmt.Errorf("trend lookback is %d days, want > 0", c.Trend.Lookback.Days))
		}
	}
	return errs
}

// markup returns the per-metal percentage from table, 0 when absent.
func markup(table map[Metal]Percent, m Metal) Percent {
	if table == nil {
		return 0
	}
	return table[m]
}
