package model

import "fmt"

// Tier is a price-based product category
type Tier string

const (
	TierLow  Tier = "low"
	TierMid  Tier = "mid"
	TierHigh Tier = "high"
)

// Price thresholds, inclusive on the upper bound of each tier
const (
	LowPriceMax = 8_000_000
	MidPriceMax = 16_000_000
)

// Tiers lists all tiers in display order
var Tiers = []Tier{TierLow, TierMid, TierHigh}

// ClassifyPrice maps a price to its tier.
// Total: anything above MidPriceMax is high, nothing is rejected.
func ClassifyPrice(price float64) Tier {
	switch {
	case price <= LowPriceMax:
		return TierLow
	case price <= MidPriceMax:
		return TierMid
	default:
		return TierHigh
	}
}

// ParseTier parses a tier label
func ParseTier(s string) (Tier, error) {
	switch Tier(s) {
	case TierLow, TierMid, TierHigh:
		return Tier(s), nil
	}
	return "", fmt.Errorf("unknown tier %q", s)
}

// Title returns the tier label used in chart titles ("Low", "Mid", "High")
func (t Tier) Title() string {
	switch t {
	case TierLow:
		return "Low"
	case TierMid:
		return "Mid"
	case TierHigh:
		return "High"
	}
	return string(t)
}

func (t Tier) String() string {
	return string(t)
}
