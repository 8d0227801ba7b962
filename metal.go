package metalsim

import (
	"fmt"
	"strings"
)

// GramsPerOunce is the number of grams in one troy ounce.
// Spot prices are quoted per troy ounce and converted per gram internally.
const GramsPerOunce = 31.1034768

// Metal identifies one of the four simulated precious metals.
type Metal int

const (
	Gold Metal = iota
	Silver
	Platinum
	Palladium
)

// metals is the fixed iteration order used everywhere a deterministic
// per-metal walk matters (rebalance buys, pro-rata liquidation, reports).
var metals = [...]Metal{Gold, Silver, Platinum, Palladium}

// Metals returns the four metals in their fixed iteration order.
func Metals() []Metal { return metals[:] }

func (m Metal) String() string {
	switch m {
	case Gold:
		return "gold"
	case Silver:
		return "silver"
	case Platinum:
		return "platinum"
	case Palladium:
		return "palladium"
	default:
		return fmt.Sprintf("metal(%d)", int(m))
	}
}

// ParseMetal parses a metal from its name.
func ParseMetal(s string) (Metal, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "gold", "au":
		return Gold, nil
	case "silver", "ag":
		return Silver, nil
	case "platinum", "pt":
		return Platinum, nil
	case "palladium", "pd":
		return Palladium, nil
	default:
		return Gold, fmt.Errorf("unknown metal %q", s)
	}
}

// MarshalText makes Metal usable as a JSON value and map key.
func (m Metal) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

func (m *Metal) UnmarshalText(b []byte) error {
	v, err := ParseMetal(string(b))
	if err != nil {
		return err
	}
	*m = v
	return nil
}
