package gamify

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultConfigValid(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("shipped defaults must validate: %v", err)
	}
}

func TestCurveScore(t *testing.T) {
	curve := Curve{
		{MinRatio: 0.5, Points: 40},
		{MinRatio: 0.8, Points: 70},
		{MinRatio: 1.0, Points: 100},
	}

	tests := []struct {
		ratio    float64
		expected int
	}{
		{0, 0},
		{0.49, 0},
		{0.5, 40},
		{0.79, 40},
		{0.8, 70},
		{0.99, 70},
		{1.0, 100},
	}

	for _, tt := range tests {
		if got := curve.Score(tt.ratio); got != tt.expected {
			t.Errorf("Score(%v) = %d, want %d", tt.ratio, got, tt.expected)
		}
	}
}

func TestCurveScoreMonotonic(t *testing.T) {
	curve := DefaultConfig().AttendanceCurve
	prev := -1
	for i := 0; i <= 100; i++ {
		score := curve.Score(float64(i) / 100)
		if score < prev {
			t.Fatalf("curve decreased at ratio %v: %d -> %d", float64(i)/100, prev, score)
		}
		prev = score
	}
}

func TestDailyEventKeyDeterministic(t *testing.T) {
	keys := []string{"a", "b", "c"}

	if DailyEventKey(0, keys) != "a" || DailyEventKey(1, keys) != "b" || DailyEventKey(3, keys) != "a" {
		t.Error("key selection should cycle through the catalog in order")
	}

	// Same day index always yields the same key
	for i := 0; i < 10; i++ {
		if DailyEventKey(19875, keys) != DailyEventKey(19875, keys) {
			t.Fatal("selection must be deterministic")
		}
	}

	if DailyEventKey(-4, keys) != DailyEventKey(4, keys) {
		t.Error("negative day index should use its absolute value")
	}

	if DailyEventKey(5, nil) != "" {
		t.Error("empty catalog should yield empty key")
	}
}

func TestLoadConfig(t *testing.T) {
	t.Run("missing file falls back to defaults", func(t *testing.T) {
		cfg, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
		if err != nil {
			t.Fatalf("LoadConfig() failed: %v", err)
		}
		if cfg.XPPerLevel != DefaultConfig().XPPerLevel {
			t.Error("expected shipped defaults for a missing file")
		}
	})

	t.Run("valid file overrides defaults", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "catalog.yaml")
		content := `
xp_per_level: 250
track_points_per_level: 20
unlock_thresholds: [0, 2, 4]
daily_event_keys: [one, two]
daily_event_xp: 7
tier_thresholds:
  silver: 30
  gold: 60
  platinum: 85
sources:
  daily_login:
    xp: 3
    daily_cap: 3
`
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatalf("failed to write test catalog: %v", err)
		}

		cfg, err := LoadConfig(path)
		if err != nil {
			t.Fatalf("LoadConfig() failed: %v", err)
		}
		if cfg.XPPerLevel != 250 {
			t.Errorf("XPPerLevel = %d, want 250", cfg.XPPerLevel)
		}
		rule, ok := cfg.Source("daily_login")
		if !ok || rule.XP != 3 || rule.DailyCap != 3 {
			t.Errorf("unexpected daily_login rule: %+v ok=%v", rule, ok)
		}
	})

	t.Run("invalid file is rejected", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "catalog.yaml")
		// xp_per_level missing (zero) fails validation
		if err := os.WriteFile(path, []byte("daily_event_keys: [x]\n"), 0o644); err != nil {
			t.Fatalf("failed to write test catalog: %v", err)
		}
		if _, err := LoadConfig(path); err == nil {
			t.Error("expected validation error")
		}
	})
}
