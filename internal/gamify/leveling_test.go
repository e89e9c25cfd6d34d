package gamify

import "testing"

func TestLevel(t *testing.T) {
	tests := []struct {
		name       string
		xp         int
		xpPerLevel int
		expected   int
	}{
		{"zero xp", 0, 100, 0},
		{"just below threshold", 99, 100, 0},
		{"exactly one level", 100, 100, 1},
		{"several levels", 1050, 100, 10},
		{"negative xp clamps to zero", -5, 100, 0},
		{"zero divisor is safe", 500, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Level(tt.xp, tt.xpPerLevel); got != tt.expected {
				t.Errorf("Level(%d, %d) = %d, want %d", tt.xp, tt.xpPerLevel, got, tt.expected)
			}
		})
	}
}

func TestLevelMonotonic(t *testing.T) {
	prev := 0
	for xp := 0; xp <= 2500; xp++ {
		level := Level(xp, 100)
		if level < prev {
			t.Fatalf("level decreased from %d to %d at xp=%d", prev, level, xp)
		}
		prev = level
	}
}

func TestProgressBounds(t *testing.T) {
	for xp := 0; xp <= 2500; xp++ {
		p := Progress(xp, 100)
		if p < 0 || p >= 100 {
			t.Fatalf("Progress(%d, 100) = %d, want value in [0, 100)", xp, p)
		}
	}
}

func TestUnlockedIndices(t *testing.T) {
	thresholds := []int{0, 1, 3, 5}

	tests := []struct {
		name     string
		level    int
		expected []int
	}{
		{"level 0 unlocks base only", 0, []int{0}},
		{"level 1 unlocks second", 1, []int{0, 1}},
		{"level 4 skips threshold 5", 4, []int{0, 1, 2}},
		{"level 10 unlocks everything", 10, []int{0, 1, 2, 3}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := UnlockedIndices(tt.level, thresholds)
			if len(got) != len(tt.expected) {
				t.Fatalf("UnlockedIndices(%d) = %v, want %v", tt.level, got, tt.expected)
			}
			for i := range got {
				if got[i] != tt.expected[i] {
					t.Errorf("UnlockedIndices(%d) = %v, want %v", tt.level, got, tt.expected)
					break
				}
			}
		})
	}
}

func TestNewUnlocks(t *testing.T) {
	thresholds := []int{0, 1, 3, 5}

	t.Run("disjoint from existing", func(t *testing.T) {
		existing := []int{0, 1}
		fresh := NewUnlocks(existing, 5, thresholds)
		owned := map[int]bool{0: true, 1: true}
		for _, idx := range fresh {
			if owned[idx] {
				t.Errorf("NewUnlocks returned already-owned index %d", idx)
			}
			if thresholds[idx] > 5 {
				t.Errorf("NewUnlocks returned index %d above the level", idx)
			}
		}
		if len(fresh) != 2 {
			t.Errorf("expected indices 2 and 3, got %v", fresh)
		}
	})

	t.Run("order independent", func(t *testing.T) {
		a := NewUnlocks([]int{1, 0}, 3, thresholds)
		b := NewUnlocks([]int{0, 1}, 3, thresholds)
		if len(a) != len(b) {
			t.Fatalf("order of existing changed the result: %v vs %v", a, b)
		}
	})

	t.Run("idempotent once merged", func(t *testing.T) {
		existing := []int{0}
		first := NewUnlocks(existing, 5, thresholds)
		merged := append(existing, first...)
		second := NewUnlocks(merged, 5, thresholds)
		if len(second) != 0 {
			t.Errorf("second diff after merging should be empty, got %v", second)
		}
	})
}

// The scenario from the reward path: 95 xp, +10 crosses the level boundary
func TestLevelUpScenario(t *testing.T) {
	thresholds := []int{0, 1, 3}

	before := Level(95, 100)
	after := Level(105, 100)
	if before != 0 || after != 1 {
		t.Fatalf("expected level 0 -> 1, got %d -> %d", before, after)
	}

	existing := UnlockedIndices(before, thresholds)
	fresh := NewUnlocks(existing, after, thresholds)
	if len(fresh) != 1 || fresh[0] != 1 {
		t.Errorf("expected the threshold-1 unlock to be newly returned, got %v", fresh)
	}
}
