// ABOUTME: Tests for tier and flag enumerations.
// ABOUTME: Validates labels, ordering and round-trip parsing.
package models

import (
	"testing"
)

func TestTierLabel(t *testing.T) {
	tests := []struct {
		tier   Tier
		metric Metric
		want   string
	}{
		{TierLow, MetricCalories, "Low Calorie"},
		{TierModerate, MetricCalories, "Moderate Calorie"},
		{TierHigh, MetricCalories, "High Calorie"},
		{TierHigh, MetricSugar, "High Sugar"},
		{TierLow, MetricFat, "Low Fat"},
		{TierUnknown, MetricSugar, "Unknown"},
		{TierHigh, Metric("salt"), "Unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			if got := tt.tier.Label(tt.metric); got != tt.want {
				t.Errorf("Label(%s) = %q, want %q", tt.metric, got, tt.want)
			}
		})
	}
}

func TestTierOrdering(t *testing.T) {
	if !(TierUnknown < TierLow && TierLow < TierModerate && TierModerate < TierHigh) {
		t.Error("tiers are not in ascending order")
	}
	for i, tier := range AllTiers {
		if tier.Rank() != i+1 {
			t.Errorf("%s rank = %d, want %d", tier, tier.Rank(), i+1)
		}
	}
	if TierUnknown.Rank() != 0 {
		t.Errorf("unknown rank = %d, want 0", TierUnknown.Rank())
	}
}

func TestParseTierRoundTrip(t *testing.T) {
	for _, m := range AllMetrics {
		for _, tier := range append([]Tier{TierUnknown}, AllTiers...) {
			got, err := ParseTier(m, tier.Label(m))
			if err != nil {
				t.Fatalf("ParseTier(%s, %q) failed: %v", m, tier.Label(m), err)
			}
			if got != tier {
				t.Errorf("ParseTier(%s, %q) = %v, want %v", m, tier.Label(m), got, tier)
			}
		}
	}

	if _, err := ParseTier(MetricSugar, "High Calorie"); err == nil {
		t.Error("expected error for label of another metric")
	}
}

func TestFlag(t *testing.T) {
	if FlagOf(true) != FlagYes || FlagOf(false) != FlagNo {
		t.Error("FlagOf mapped booleans incorrectly")
	}
	if FlagUnknown.Known() {
		t.Error("unknown flag reported as known")
	}

	for _, f := range []Flag{FlagUnknown, FlagNo, FlagYes} {
		got, err := ParseFlag(f.String())
		if err != nil {
			t.Fatalf("ParseFlag(%q) failed: %v", f.String(), err)
		}
		if got != f {
			t.Errorf("ParseFlag(%q) = %v, want %v", f.String(), got, f)
		}
	}

	if _, err := ParseFlag("maybe"); err == nil {
		t.Error("expected error for invalid flag")
	}
}

func TestIsValidMetric(t *testing.T) {
	if !IsValidMetric("sugar") {
		t.Error("sugar should be valid")
	}
	if IsValidMetric("salt") {
		t.Error("salt should not be valid")
	}
}
