package gamify

// Leveling is a pure mapping from the cumulative XP total to a level and
// intra-level progress, plus the set of cosmetic unlocks a level implies.
// None of these functions touch storage; the reward service feeds them the
// persisted totals.

// Level returns the level implied by a cumulative XP total
func Level(xp, xpPerLevel int) int {
	if xpPerLevel <= 0 || xp <= 0 {
		return 0
	}
	return xp / xpPerLevel
}

// Progress returns XP accumulated within the current level, always in
// [0, xpPerLevel)
func Progress(xp, xpPerLevel int) int {
	if xpPerLevel <= 0 || xp <= 0 {
		return 0
	}
	return xp % xpPerLevel
}

// UnlockedIndices returns every cosmetic image index whose unlock threshold
// is at or below the given level. thresholds[i] is the level required for
// index i.
func UnlockedIndices(level int, thresholds []int) []int {
	var indices []int
	for i, required := range thresholds {
		if required <= level {
			indices = append(indices, i)
		}
	}
	return indices
}

// NewUnlocks returns the indices unlocked at newLevel that are not already
// in existing. The result is disjoint from existing regardless of the order
// of either input.
func NewUnlocks(existing []int, newLevel int, thresholds []int) []int {
	owned := make(map[int]bool, len(existing))
	for _, idx := range existing {
		owned[idx] = true
	}

	var fresh []int
	for _, idx := range UnlockedIndices(newLevel, thresholds) {
		if !owned[idx] {
			fresh = append(fresh, idx)
		}
	}
	return fresh
}
