// models/tier.go
package models

import "strings"

// Tier is the subscription level granted to a user.
type Tier string

const (
	TierFree  Tier = "free"
	TierPro   Tier = "pro"
	TierElite Tier = "elite"
)

// TierRank maps a tier onto the total order free(0) < pro(1) < elite(2).
// Unknown values rank as free so a bad row can never over-grant access.
func TierRank(t Tier) int {
	switch t {
	case TierElite:
		return 2
	case TierPro:
		return 1
	default:
		return 0
	}
}

// CompareTiers returns -1, 0 or 1 as a is below, equal to or above b.
func CompareTiers(a, b Tier) int {
	ra, rb := TierRank(a), TierRank(b)
	switch {
	case ra < rb:
		return -1
	case ra > rb:
		return 1
	default:
		return 0
	}
}

// MaxTier returns the higher of the two tiers.
func MaxTier(a, b Tier) Tier {
	if TierRank(b) > TierRank(a) {
		return b
	}
	return a
}

// ParseTier normalizes a raw string to a known tier, defaulting to free.
func ParseTier(raw string) Tier {
	switch Tier(strings.ToLower(strings.TrimSpace(raw))) {
	case TierPro:
		return TierPro
	case TierElite:
		return TierElite
	default:
		return TierFree
	}
}

// IsUpgradeTier reports whether t is a tier a day pass or temporary upgrade
// may grant (free is never granted, only fallen back to).
func IsUpgradeTier(t Tier) bool {
	return t == TierPro || t == TierElite
}
