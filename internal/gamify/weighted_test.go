package gamify

import (
	"math/rand"
	"testing"
)

func TestWeightedIndex(t *testing.T) {
	rnd := rand.New(rand.NewSource(42))

	t.Run("empty slice", func(t *testing.T) {
		if got := WeightedIndex(nil, rnd); got != -1 {
			t.Errorf("WeightedIndex(nil) = %d, want -1", got)
		}
	})

	t.Run("single entry", func(t *testing.T) {
		if got := WeightedIndex([]float64{5}, rnd); got != 0 {
			t.Errorf("WeightedIndex single = %d, want 0", got)
		}
	})

	t.Run("zero weight entry never picked", func(t *testing.T) {
		weights := []float64{0, 1, 0}
		for i := 0; i < 1000; i++ {
			if got := WeightedIndex(weights, rnd); got != 1 {
				t.Fatalf("picked zero-weight index %d", got)
			}
		}
	})

	t.Run("all-zero weights draw uniformly", func(t *testing.T) {
		weights := []float64{0, 0, 0}
		seen := map[int]bool{}
		for i := 0; i < 1000; i++ {
			idx := WeightedIndex(weights, rnd)
			if idx < 0 || idx > 2 {
				t.Fatalf("index %d out of range", idx)
			}
			seen[idx] = true
		}
		if len(seen) != 3 {
			t.Errorf("uniform fallback should reach every index, saw %v", seen)
		}
	})

	t.Run("negative weights treated as zero", func(t *testing.T) {
		weights := []float64{-10, 1}
		for i := 0; i < 1000; i++ {
			if got := WeightedIndex(weights, rnd); got != 1 {
				t.Fatalf("picked negative-weight index %d", got)
			}
		}
	})
}

// Two entries weighted 1:99 should split close to 1%/99% over many draws
func TestWeightedIndexDistribution(t *testing.T) {
	rnd := rand.New(rand.NewSource(7))
	weights := []float64{1, 99}

	const draws = 10000
	counts := [2]int{}
	for i := 0; i < draws; i++ {
		counts[WeightedIndex(weights, rnd)]++
	}

	proportion := float64(counts[1]) / draws
	// ~3 standard deviations around 0.99 for n=10000
	if proportion < 0.985 || proportion > 0.995 {
		t.Errorf("heavy entry picked %.4f of the time, expected ~0.99", proportion)
	}
}

func TestFilterWeeklyCatalog(t *testing.T) {
	catalog := []WeeklyEventDef{
		{Key: "a", Tier: TierGold, MinEra: 0, Weight: 1, CooldownWeeks: 2},
		{Key: "b", Tier: TierGold, MinEra: 1, Weight: 1, CooldownWeeks: 0},
		{Key: "c", Tier: TierSilver, MinEra: 0, Weight: 1, CooldownWeeks: 0},
	}

	t.Run("tier and era filter", func(t *testing.T) {
		pool := FilterWeeklyCatalog(catalog, TierGold, 0, nil)
		if len(pool) != 1 || pool[0].Key != "a" {
			t.Errorf("expected only entry a, got %v", pool)
		}
	})

	t.Run("per-entry cooldown", func(t *testing.T) {
		recent := map[string]int{"a": 1}
		pool := FilterWeeklyCatalog(catalog, TierGold, 1, recent)
		if len(pool) != 1 || pool[0].Key != "b" {
			t.Errorf("entry a is inside its 2-week cooldown, got %v", pool)
		}

		recent = map[string]int{"a": 3}
		pool = FilterWeeklyCatalog(catalog, TierGold, 1, recent)
		if len(pool) != 2 {
			t.Errorf("entry a is past its cooldown, got %v", pool)
		}
	})

	t.Run("cooldown is per entry not global", func(t *testing.T) {
		// b has no cooldown: last week's use does not exclude it
		recent := map[string]int{"b": 1}
		pool := FilterWeeklyCatalog(catalog, TierGold, 1, recent)
		found := false
		for _, def := range pool {
			if def.Key == "b" {
				found = true
			}
		}
		if !found {
			t.Error("zero-cooldown entry should never be excluded")
		}
	})
}

func TestSelectWeeklyEvent(t *testing.T) {
	rnd := rand.New(rand.NewSource(1))
	catalog := []WeeklyEventDef{
		{Key: "a", Tier: TierGold, MinEra: 2, Weight: 1, CooldownWeeks: 0},
		{Key: "c", Tier: TierSilver, MinEra: 0, Weight: 1, CooldownWeeks: 0},
	}

	t.Run("falls back to tier pool when filter empties", func(t *testing.T) {
		// Era 0 excludes "a", but the tier pool still contains it
		key, ok := SelectWeeklyEvent(catalog, TierGold, 0, nil, rnd)
		if !ok || key != "a" {
			t.Errorf("expected fallback to pick a, got %q ok=%v", key, ok)
		}
	})

	t.Run("empty tier pool yields no event", func(t *testing.T) {
		key, ok := SelectWeeklyEvent(catalog, TierPlatinum, 3, nil, rnd)
		if ok || key != "" {
			t.Errorf("expected no selection, got %q ok=%v", key, ok)
		}
	})
}
