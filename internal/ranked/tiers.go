// Package ranked maps ranked ratings onto named tiers via closed rating
// intervals.
package ranked

import (
	"arena_companion/internal/pkg/interval"
)

// Tier is a named ranked standing.
type Tier string

// Known tiers, lowest to highest.
const (
	TierTin      Tier = "Tin"
	TierBronze   Tier = "Bronze"
	TierSilver   Tier = "Silver"
	TierGold     Tier = "Gold"
	TierPlatinum Tier = "Platinum"
	TierDiamond  Tier = "Diamond"
)

// tierThresholds assigns each tier its inclusive rating interval.
var tierThresholds = []struct {
	ratings interval.Interval
	tier    Tier
}{
	{interval.New(0, 909), TierTin},
	{interval.New(910, 1129), TierBronze},
	{interval.New(1130, 1389), TierSilver},
	{interval.New(1390, 1679), TierGold},
	{interval.New(1680, 1999), TierPlatinum},
	{interval.New(2000, 4000), TierDiamond},
}

// overall spans the full threshold table; ratings outside it are clamped so
// TierFor is total over all int ratings.
var overall = interval.New(
	tierThresholds[0].ratings.Low,
	tierThresholds[len(tierThresholds)-1].ratings.High,
)

// TierFor returns the tier for a ranked rating.
func TierFor(rating int) Tier {
	rating = overall.Clamp(rating)
	for _, threshold := range tierThresholds {
		if threshold.ratings.Contains(rating) {
			return threshold.tier
		}
	}
	return TierTin
}
