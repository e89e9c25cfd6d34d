package gamify

import "math/rand"

// WeightedIndex picks an index with probability proportional to its weight,
// using a cumulative-weight array and a single uniform draw. Negative
// weights are treated as zero. If every weight is zero the draw is uniform.
// Returns -1 for an empty slice.
func WeightedIndex(weights []float64, rnd *rand.Rand) int {
	if len(weights) == 0 {
		return -1
	}

	cumulative := make([]float64, len(weights))
	total := 0.0
	for i, w := range weights {
		if w > 0 {
			total += w
		}
		cumulative[i] = total
	}

	if total <= 0 {
		return rnd.Intn(len(weights))
	}

	r := rnd.Float64() * total
	for i, c := range cumulative {
		if r < c {
			return i
		}
	}
	return len(weights) - 1
}

// FilterWeeklyCatalog returns the catalog entries matching the tier whose
// minimum era is at or below era, excluding entries used within their own
// cooldown. recentKeys maps an event key to how many weeks ago it was last
// selected (1 = last week); an entry is excluded while weeksAgo <= its
// cooldown.
func FilterWeeklyCatalog(catalog []WeeklyEventDef, tier Tier, era int, recentKeys map[string]int) []WeeklyEventDef {
	var pool []WeeklyEventDef
	for _, def := range catalog {
		if def.Tier != tier || def.MinEra > era {
			continue
		}
		if weeksAgo, used := recentKeys[def.Key]; used && weeksAgo <= def.CooldownWeeks {
			continue
		}
		pool = append(pool, def)
	}
	return pool
}

// TierPool returns every catalog entry matching the tier, ignoring era and
// cooldown. This is the fallback pool when filtering empties the selection.
func TierPool(catalog []WeeklyEventDef, tier Tier) []WeeklyEventDef {
	var pool []WeeklyEventDef
	for _, def := range catalog {
		if def.Tier == tier {
			pool = append(pool, def)
		}
	}
	return pool
}

// SelectWeeklyEvent picks a narrative event key for the tier via
// cooldown-aware weighted random choice. Returns ok=false when even the
// unfiltered tier pool is empty; a week without a narrative event is valid.
func SelectWeeklyEvent(catalog []WeeklyEventDef, tier Tier, era int, recentKeys map[string]int, rnd *rand.Rand) (string, bool) {
	pool := FilterWeeklyCatalog(catalog, tier, era, recentKeys)
	if len(pool) == 0 {
		pool = TierPool(catalog, tier)
	}
	if len(pool) == 0 {
		return "", false
	}

	weights := make([]float64, len(pool))
	for i, def := range pool {
		weights[i] = def.Weight
	}
	return pool[WeightedIndex(weights, rnd)].Key, true
}
