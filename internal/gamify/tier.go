package gamify

// Tier is a discrete weekly performance band
type Tier string

const (
	TierBronze   Tier = "bronze"
	TierSilver   Tier = "silver"
	TierGold     Tier = "gold"
	TierPlatinum Tier = "platinum"
)

// TierThresholds holds the minimum weekly percentage for each band above
// bronze. Values are 0-100.
type TierThresholds struct {
	Silver   float64 `yaml:"silver"`
	Gold     float64 `yaml:"gold"`
	Platinum float64 `yaml:"platinum"`
}

// ResolveTier maps a weekly percentage and the number of scoring buckets
// that were present to a tier. A week with no present buckets is bronze.
// Platinum requires all three buckets: a single strong signal must not
// reach the top band on its own, so with fewer buckets the result is
// capped at gold.
func ResolveTier(weeklyPct float64, presentBuckets int, th TierThresholds) Tier {
	if presentBuckets <= 0 {
		return TierBronze
	}

	tier := TierBronze
	switch {
	case weeklyPct >= th.Platinum:
		tier = TierPlatinum
	case weeklyPct >= th.Gold:
		tier = TierGold
	case weeklyPct >= th.Silver:
		tier = TierSilver
	}

	if tier == TierPlatinum && presentBuckets < 3 {
		tier = TierGold
	}
	return tier
}

// EraForTrackLevel returns the highest era whose threshold is at or below
// the given track level. thresholds[i] is the minimum track level for era i;
// an empty table means everything is era 0.
func EraForTrackLevel(trackLevel int, thresholds []int) int {
	era := 0
	for i, required := range thresholds {
		if trackLevel >= required {
			era = i
		}
	}
	return era
}
