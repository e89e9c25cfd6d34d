package gamify

import "testing"

func TestResolveTier(t *testing.T) {
	th := TierThresholds{Silver: 40, Gold: 70, Platinum: 90}

	tests := []struct {
		name           string
		pct            float64
		presentBuckets int
		expected       Tier
	}{
		{"no buckets is bronze regardless of pct", 100, 0, TierBronze},
		{"below silver", 20, 3, TierBronze},
		{"silver boundary", 40, 3, TierSilver},
		{"gold boundary", 70, 3, TierGold},
		{"platinum with all buckets", 95, 3, TierPlatinum},
		{"perfect week", 100, 3, TierPlatinum},
		{"platinum pct capped with two buckets", 95, 2, TierGold},
		{"platinum pct capped with one bucket", 100, 1, TierGold},
		{"gold reachable with one bucket", 75, 1, TierGold},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ResolveTier(tt.pct, tt.presentBuckets, th); got != tt.expected {
				t.Errorf("ResolveTier(%v, %d) = %v, want %v", tt.pct, tt.presentBuckets, got, tt.expected)
			}
		})
	}
}

// ResolveTier must be total: any float input maps to some tier
func TestResolveTierTotal(t *testing.T) {
	th := TierThresholds{Silver: 40, Gold: 70, Platinum: 90}
	for _, pct := range []float64{-50, 0, 39.999, 1000} {
		for buckets := -1; buckets <= 4; buckets++ {
			tier := ResolveTier(pct, buckets, th)
			switch tier {
			case TierBronze, TierSilver, TierGold, TierPlatinum:
			default:
				t.Fatalf("ResolveTier(%v, %d) returned unknown tier %q", pct, buckets, tier)
			}
		}
	}
}

func TestEraForTrackLevel(t *testing.T) {
	thresholds := []int{0, 3, 8, 15}

	tests := []struct {
		level    int
		expected int
	}{
		{0, 0},
		{2, 0},
		{3, 1},
		{7, 1},
		{8, 2},
		{14, 2},
		{15, 3},
		{100, 3},
	}

	for _, tt := range tests {
		if got := EraForTrackLevel(tt.level, thresholds); got != tt.expected {
			t.Errorf("EraForTrackLevel(%d) = %d, want %d", tt.level, got, tt.expected)
		}
	}

	if got := EraForTrackLevel(5, nil); got != 0 {
		t.Errorf("empty threshold table should always be era 0, got %d", got)
	}
}
